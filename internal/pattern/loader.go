package pattern

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// schemaDefinition is the on-disk JSON form of one Schema.
type schemaDefinition struct {
	Name              string          `json:"name"`
	Detection         json.RawMessage `json:"detection"`
	SourceLangPath    string          `json:"source_lang_path"`
	TranslatablePaths []string        `json:"translatable_paths"`
}

// LoadSchemaFile reads one schema definition and registers it.
func LoadSchemaFile(r *Registry, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read schema file: %w", err)
	}

	var def schemaDefinition
	if err := json.Unmarshal(data, &def); err != nil {
		return fmt.Errorf("parse schema file %s: %w", path, err)
	}

	return r.Register(Schema{
		Name:              def.Name,
		Detection:         string(def.Detection),
		SourceLangPath:    def.SourceLangPath,
		TranslatablePaths: def.TranslatablePaths,
	})
}

// LoadSchemaDir builds a registry from every .json file in dir, in
// lexical filename order so precedence is predictable.
func LoadSchemaDir(dir string) (*Registry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read schema directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".json") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	r := NewRegistry()
	for _, name := range names {
		if err := LoadSchemaFile(r, filepath.Join(dir, name)); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// DefaultRegistry recognizes the common locale-catalog shape: an object
// declaring its language in a top-level "locale" string, with every other
// string leaf translatable down to four levels of nesting.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	err := r.Register(Schema{
		Name:           "locale-document",
		Detection:      `{"type":"object","required":["locale"],"properties":{"locale":{"type":"string"}}}`,
		SourceLangPath: "locale",
		TranslatablePaths: []string{
			"*",
			"*.*",
			"*.*.*",
			"*.*.*.*",
		},
	})
	if err != nil {
		// The built-in schema is a constant; a registration failure is a
		// programming error.
		panic(err)
	}
	return r
}
