package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
)

// ErrPresignUnsupported is returned by backends that cannot issue
// presigned upload URLs.
var ErrPresignUnsupported = errors.New("presigned uploads not supported by this storage backend")

// Store writes uploaded files under opaque keys.
type Store interface {
	Save(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
}

// Presigner issues time-limited upload URLs so clients can write
// directly to object storage.
type Presigner interface {
	PresignPut(ctx context.Context, key string) (string, error)
}

// RandomKey returns a date-partitioned storage key.
func RandomKey(prefix string) string {
	d := time.Now()
	return fmt.Sprintf("%s/%d/%02d/%02d/%s", prefix, d.Year(), d.Month(), d.Day(), uuid.NewString())
}
