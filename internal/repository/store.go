package repository

import (
	"context"

	"github.com/KarthikRajS32/vsurvey/internal/docstore"
)

// Store is the slice of the document store the repositories depend on.
type Store interface {
	Set(ctx context.Context, key string, doc any) error
	SetNX(ctx context.Context, key, value string) (bool, error)
	Get(ctx context.Context, key string, out any) error
	Delete(ctx context.Context, keys ...string) error
	Scan(ctx context.Context, pattern string) ([]string, error)
	Publish(ctx context.Context, channel string, event any) error
}

var _ Store = (*docstore.Client)(nil)
