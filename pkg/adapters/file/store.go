package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/aretw0/nodeweave/pkg/document"
	"github.com/aretw0/nodeweave/pkg/domain"
	"github.com/aretw0/nodeweave/pkg/ports"
)

// Store implements ports.GraphStore using the local filesystem.
// Each graph is one document file in BasePath; Format selects the encoding
// of new saves. Load and List accept files in either format.
type Store struct {
	BasePath string
	Format   document.Format
}

// New creates a new Store with the given base path.
// If basePath is empty, it defaults to ".nodeweave/graphs".
func New(basePath string, format document.Format) *Store {
	if basePath == "" {
		basePath = filepath.Join(".nodeweave", "graphs")
	}
	if format == "" {
		format = document.FormatJSON
	}
	return &Store{BasePath: basePath, Format: format}
}

var extensions = []string{".json", ".yaml", ".yml"}

func (s *Store) ext() string {
	if s.Format == document.FormatYAML {
		return ".yaml"
	}
	return ".json"
}

// Save persists the document atomically.
// It writes to a temporary file first, syncs via fsync, and then renames it to the destination.
// Copies of the graph in the other format are removed so Load stays unambiguous.
func (s *Store) Save(ctx context.Context, name string, doc *document.Document) error {
	if err := ports.ValidateName(name); err != nil {
		return err
	}

	data, err := document.Encode(doc, s.Format)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(s.BasePath, 0755); err != nil {
		return fmt.Errorf("failed to ensure graph directory: %w", err)
	}

	destPath := filepath.Join(s.BasePath, name+s.ext())

	// Same directory so the rename stays on one filesystem.
	tmpFile, err := os.CreateTemp(s.BasePath, "tmp-"+name+"-*"+s.ext())
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}
	// Windows cannot rename an open file.
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	// On Windows, os.Rename fails if dest exists.
	if _, err := os.Stat(destPath); err == nil {
		if err := os.Remove(destPath); err != nil {
			return fmt.Errorf("failed to remove existing graph file for overwrite: %w", err)
		}
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file to graph file: %w", err)
	}

	for _, ext := range extensions {
		if ext == s.ext() {
			continue
		}
		if err := os.Remove(filepath.Join(s.BasePath, name+ext)); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to remove stale graph file: %w", err)
		}
	}
	return nil
}

// Load reads the document stored under name.
func (s *Store) Load(ctx context.Context, name string) (*document.Document, error) {
	if err := ports.ValidateName(name); err != nil {
		return nil, err
	}

	for _, ext := range extensions {
		path := filepath.Join(s.BasePath, name+ext)
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("failed to read graph file: %w", err)
		}
		doc, err := document.Decode(data, document.FormatFromPath(path))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return doc, nil
	}
	return nil, domain.ErrGraphNotFound
}

// Delete removes the graph file in every format.
func (s *Store) Delete(ctx context.Context, name string) error {
	if err := ports.ValidateName(name); err != nil {
		return err
	}

	for _, ext := range extensions {
		err := os.Remove(filepath.Join(s.BasePath, name+ext))
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to delete graph file: %w", err)
		}
	}
	return nil
}

// List returns the names of all stored graphs.
func (s *Store) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.BasePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list graphs: %w", err)
	}

	names := []string{}
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), "tmp-") {
			continue
		}
		ext := filepath.Ext(entry.Name())
		if !slices.Contains(extensions, ext) {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), ext))
	}
	slices.Sort(names)
	return slices.Compact(names), nil
}
