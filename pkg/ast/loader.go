package ast

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// Store holds template documents keyed by name.
type Store struct {
	documents map[string]Document
}

// LoadFS walks the provided filesystem and decodes every JSON/YAML template
// document. A document without a name is keyed by its path without the
// extension. When fsys is nil the returned store is empty.
func LoadFS(fsys fs.FS) (*Store, error) {
	store := &Store{documents: make(map[string]Document)}
	if fsys == nil {
		return store, nil
	}

	err := fs.WalkDir(fsys, ".", func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !isDocumentFile(path) {
			return nil
		}

		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("ast: read %s: %w", path, err)
		}

		doc, err := Decode(data, path)
		if err != nil {
			return err
		}
		if doc.Name == path {
			doc.Name = strings.TrimSuffix(path, filepath.Ext(path))
		}
		if _, exists := store.documents[doc.Name]; exists {
			return fmt.Errorf("ast: duplicate template %q (file %s)", doc.Name, path)
		}
		store.documents[doc.Name] = doc
		return nil
	})
	if err != nil {
		return nil, err
	}

	return store, nil
}

// Document returns the document registered under name.
func (s *Store) Document(name string) (Document, bool) {
	if s == nil {
		return Document{}, false
	}
	doc, ok := s.documents[name]
	return doc, ok
}

// Names returns the registered template names in sorted order.
func (s *Store) Names() []string {
	if s == nil {
		return nil
	}
	names := make([]string, 0, len(s.documents))
	for name := range s.documents {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Empty reports whether the store holds any documents.
func (s *Store) Empty() bool {
	return s == nil || len(s.documents) == 0
}

func isDocumentFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}
