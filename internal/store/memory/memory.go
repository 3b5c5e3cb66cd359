// Package memory holds the relay document in process memory. It backs the
// handler tests; the file store is the system of record in production.
package memory

import (
	"context"
	"sync"

	"github.com/curionlab/emergency-call-server/internal/model"
)

type Store struct {
	mu  sync.Mutex
	doc model.Document
}

func NewStore() *Store {
	return &Store{doc: model.NewDocument()}
}

func (s *Store) Load(_ context.Context) (model.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clone(s.doc), nil
}

func (s *Store) Save(_ context.Context, doc model.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc = clone(doc)
	return nil
}

// clone copies the maps so callers can mutate a loaded document without
// touching the stored one, matching the read-entire/write-entire contract
// of the file store.
func clone(doc model.Document) model.Document {
	out := model.NewDocument()
	for k, v := range doc.AuthCodes {
		out.AuthCodes[k] = v
	}
	for k, v := range doc.Registrations {
		out.Registrations[k] = v
	}
	return out
}
