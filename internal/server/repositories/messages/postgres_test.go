package messages

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/pairchat/internal/common"
	"github.com/dmitrijs2005/pairchat/internal/server/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	appendQ = `(?s)^INSERT\s+INTO\s+messages\s*\(id,\s*sender_id,\s*receiver_id,\s*text,\s*attachment_ref\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4,\s*\$5\)\s*RETURNING\s+created_at$`
	convQ   = `(?s)^SELECT\s+id,\s*sender_id,\s*receiver_id,\s*text,\s*attachment_ref,\s*created_at\s+FROM\s+messages\s+WHERE\s+\(sender_id\s*=\s*\$1\s+AND\s+receiver_id\s*=\s*\$2\)\s+OR\s+\(sender_id\s*=\s*\$2\s+AND\s+receiver_id\s*=\s*\$1\)\s+ORDER\s+BY\s+created_at,\s*id$`
)

var msgCols = []string{"id", "sender_id", "receiver_id", "text", "attachment_ref", "created_at"}

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresRepository(db), mock
}

func TestAppend(t *testing.T) {
	created := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)

	t.Run("assigns id and created_at", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectQuery(appendQ).
			WithArgs(sqlmock.AnyArg(), "a", "b", "hello", "").
			WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(created))

		got, err := repo.Append(context.Background(), &models.Message{SenderID: "a", ReceiverID: "b", Text: "hello"})
		require.NoError(t, err)
		_, perr := uuid.Parse(got.ID)
		assert.NoError(t, perr)
		assert.Equal(t, created, got.CreatedAt)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("keeps preset id", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectQuery(appendQ).
			WithArgs("m-1", "a", "b", "", "http://x/att.png").
			WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(created))

		got, err := repo.Append(context.Background(), &models.Message{ID: "m-1", SenderID: "a", ReceiverID: "b", AttachmentRef: "http://x/att.png"})
		require.NoError(t, err)
		assert.Equal(t, "m-1", got.ID)
	})

	t.Run("failure is a persistence error", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectQuery(appendQ).WillReturnError(errors.New("connection refused"))

		_, err := repo.Append(context.Background(), &models.Message{SenderID: "a", ReceiverID: "b", Text: "x"})
		assert.ErrorIs(t, err, common.ErrPersistence)
		assert.Contains(t, err.Error(), "connection refused")
	})
}

func TestQueryConversation(t *testing.T) {
	t1 := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Second)

	rows := func() *sqlmock.Rows {
		return sqlmock.NewRows(msgCols).
			AddRow("m1", "a", "b", "hi", "", t1).
			AddRow("m2", "b", "a", "", "http://x/1.png", t2)
	}

	t.Run("both directions in order", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectQuery(convQ).WithArgs("a", "b").WillReturnRows(rows())

		got, err := repo.QueryConversation(context.Background(), "a", "b")
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "m1", got[0].ID)
		assert.Equal(t, "m2", got[1].ID)
		assert.Equal(t, "http://x/1.png", got[1].AttachmentRef)
		for _, m := range got {
			assert.True(t, m.Involves("a", "b"))
		}
	})

	t.Run("query is symmetric", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectQuery(convQ).WithArgs("a", "b").WillReturnRows(rows())
		mock.ExpectQuery(convQ).WithArgs("b", "a").WillReturnRows(rows())

		ab, err := repo.QueryConversation(context.Background(), "a", "b")
		require.NoError(t, err)
		ba, err := repo.QueryConversation(context.Background(), "b", "a")
		require.NoError(t, err)
		assert.Equal(t, ab, ba)
	})

	t.Run("empty conversation", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectQuery(convQ).WithArgs("a", "c").WillReturnRows(sqlmock.NewRows(msgCols))

		got, err := repo.QueryConversation(context.Background(), "a", "c")
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("failure is a persistence error", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectQuery(convQ).WillReturnError(errors.New("timeout"))

		_, err := repo.QueryConversation(context.Background(), "a", "b")
		assert.ErrorIs(t, err, common.ErrPersistence)
	})
}
