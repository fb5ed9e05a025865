// Package repomanager vends repositories bound to a DB handle (pool or
// transaction) and owns schema migrations.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/pairchat/internal/dbx"
	"github.com/dmitrijs2005/pairchat/internal/server/repositories/messages"
	"github.com/dmitrijs2005/pairchat/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/pairchat/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	Messages(db dbx.DBTX) messages.Repository
}
