package attachments

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/pairchat/internal/common"
	"github.com/gabriel-vasile/mimetype"
)

// Image is a decoded, type-checked image payload.
type Image struct {
	Data []byte
	MIME *mimetype.MIME
}

// DecodeImage accepts a data URI ("data:image/png;base64,...") or bare
// base64 and returns the bytes once they are sniffed as an image no larger
// than maxSize. The declared type of a data URI is ignored in favour of the
// sniffed one. Any rejection wraps common.ErrInvalidAttachment.
func DecodeImage(payload string, maxSize int64) (*Image, error) {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return nil, fmt.Errorf("%w: empty payload", common.ErrInvalidAttachment)
	}

	if strings.HasPrefix(payload, "data:") {
		comma := strings.IndexByte(payload, ',')
		if comma < 0 || !strings.HasSuffix(payload[:comma], ";base64") {
			return nil, fmt.Errorf("%w: only base64 data URIs are supported", common.ErrInvalidAttachment)
		}
		payload = payload[comma+1:]
	}

	if maxSize > 0 && int64(base64.StdEncoding.DecodedLen(len(payload))) > maxSize+2 {
		return nil, fmt.Errorf("%w: larger than %d bytes", common.ErrInvalidAttachment, maxSize)
	}

	data, err := decodeBase64(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrInvalidAttachment, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty payload", common.ErrInvalidAttachment)
	}
	if maxSize > 0 && int64(len(data)) > maxSize {
		return nil, fmt.Errorf("%w: larger than %d bytes", common.ErrInvalidAttachment, maxSize)
	}

	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return nil, fmt.Errorf("%w: unsupported type %s", common.ErrInvalidAttachment, mt.String())
	}

	return &Image{Data: data, MIME: mt}, nil
}

func decodeBase64(s string) ([]byte, error) {
	if strings.ContainsAny(s, "-_") {
		if strings.HasSuffix(s, "=") {
			return base64.URLEncoding.DecodeString(s)
		}
		return base64.RawURLEncoding.DecodeString(s)
	}
	if strings.HasSuffix(s, "=") || len(s)%4 == 0 {
		return base64.StdEncoding.DecodeString(s)
	}
	return base64.RawStdEncoding.DecodeString(s)
}
