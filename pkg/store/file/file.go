// Package file reads assessment records from JSON or YAML files.
//
// A directory store holds one record per file named <id>.json, <id>.yaml
// or <id>.yml. Files use the row form of a record: scalar columns plus
// structured columns, inline or as JSON-encoded strings.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/secassess/pkg/errors"
	"github.com/matzehuels/secassess/pkg/record"
	"github.com/matzehuels/secassess/pkg/store"
)

var extensions = []string{".json", ".yaml", ".yml"}

// Store reads records from a directory.
type Store struct {
	dir string
}

// New returns a store over dir. The directory must exist.
func New(dir string) (*Store, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "open record directory")
	}
	if !info.IsDir() {
		return nil, errors.New(errors.ErrCodeStorage, "%s is not a directory", dir)
	}
	return &Store{dir: dir}, nil
}

// Get loads the record stored as <id> with any supported extension.
func (s *Store) Get(ctx context.Context, id string) (*record.Assessment, error) {
	if err := errors.ValidateRecordID(id); err != nil {
		return nil, err
	}
	for _, ext := range extensions {
		path := filepath.Join(s.dir, id+ext)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		rec, err := Load(path)
		if err != nil {
			return nil, err
		}
		if rec.ID == "" {
			rec.ID = id
		}
		return rec, nil
	}
	return nil, store.NotFound(id)
}

// List loads every record file in the directory. Files that fail to parse
// are skipped.
func (s *Store) List(ctx context.Context) ([]store.Summary, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "list records")
	}
	var out []store.Summary
	for _, e := range entries {
		ext := filepath.Ext(e.Name())
		if e.IsDir() || !slices.Contains(extensions, ext) {
			continue
		}
		rec, err := Load(filepath.Join(s.dir, e.Name()))
		if err != nil {
			continue
		}
		if rec.ID == "" {
			rec.ID = strings.TrimSuffix(e.Name(), ext)
		}
		out = append(out, store.Summarize(rec))
	}
	slices.SortStableFunc(out, func(a, b store.Summary) int {
		return b.UpdatedAt.Compare(a.UpdatedAt)
	})
	return out, nil
}

// Ping checks that the directory is still readable.
func (s *Store) Ping(ctx context.Context) error {
	_, err := os.Stat(s.dir)
	return err
}

// Close does nothing for file stores.
func (s *Store) Close() error { return nil }

// Load reads one record file. The format follows the extension; anything
// other than .yaml or .yml is read as JSON.
func Load(path string) (*record.Assessment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "record file %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "read record")
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yamlToJSON(data)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse %s", filepath.Base(path))
		}
	}

	var rec record.Assessment
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse %s", filepath.Base(path))
	}
	return &rec, nil
}

// yamlToJSON converts a YAML record to JSON. Timestamps keep their source
// text, so a date such as 2026-03-01 stays a date.
func yamlToJSON(data []byte) ([]byte, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return nil, fmt.Errorf("empty document")
	}
	v, err := yamlValue(doc.Content[0])
	if err != nil {
		return nil, err
	}
	return json.Marshal(v)
}

func yamlValue(n *yaml.Node) (any, error) {
	switch n.Kind {
	case yaml.AliasNode:
		return yamlValue(n.Alias)
	case yaml.MappingNode:
		m := make(map[string]any, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			v, err := yamlValue(n.Content[i+1])
			if err != nil {
				return nil, err
			}
			m[n.Content[i].Value] = v
		}
		return m, nil
	case yaml.SequenceNode:
		out := make([]any, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := yamlValue(c)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	}
	var v any
	if err := n.Decode(&v); err != nil {
		return nil, err
	}
	if _, ok := v.(time.Time); ok {
		return n.Value, nil
	}
	return v, nil
}

var _ store.Store = (*Store)(nil)
