package store

import (
	"context"

	"github.com/curionlab/emergency-call-server/internal/model"
)

// Store persists the relay's single state document. Every mutation is a
// full load-mutate-save cycle over the whole document; concurrent savers
// race and the last save wins. Implementations may add durability (file,
// embedded KV) without the lifecycle code changing.
type Store interface {
	Load(ctx context.Context) (model.Document, error)
	Save(ctx context.Context, doc model.Document) error
}
