// Package file stores the relay document as a single JSON file on disk.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/curionlab/emergency-call-server/internal/model"
)

type Store struct {
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load reads the whole document. A missing file is a first run and yields
// an empty document.
func (s *Store) Load(_ context.Context) (model.Document, error) {
	b, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return model.NewDocument(), nil
		}
		return model.Document{}, fmt.Errorf("read %s: %w", s.path, err)
	}

	var doc model.Document
	if err := json.Unmarshal(b, &doc); err != nil {
		return model.Document{}, fmt.Errorf("parse %s: %w", s.path, err)
	}
	if doc.AuthCodes == nil {
		doc.AuthCodes = make(map[string]model.AuthCode)
	}
	if doc.Registrations == nil {
		doc.Registrations = make(map[string]model.Registration)
	}
	return doc, nil
}

// Save overwrites the backing file with the full document. There is no
// locking; when savers race, the last write wins.
func (s *Store) Save(_ context.Context, doc model.Document) error {
	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}
	if err := os.WriteFile(s.path, b, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", s.path, err)
	}
	return nil
}
