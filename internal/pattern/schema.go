package pattern

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// Schema describes one recognized JSON document shape: how to detect it,
// where its source language lives, and which paths are translatable.
type Schema struct {
	Name string

	// Detection is a JSON Schema document; a parsed input matches this
	// Schema when it validates against Detection.
	Detection string

	// SourceLangPath locates the field holding the document's source
	// language code (e.g. "locale"). Empty means the document does not
	// declare one.
	SourceLangPath string

	// TranslatablePaths are dot-joined path patterns selecting the leaves
	// eligible for translation. "*" and "[*]" match any array index or
	// object key at that position.
	TranslatablePaths []string

	compiled *gojsonschema.Schema
}

// Registry holds the registered JSON schemas in registration order.
type Registry struct {
	schemas []*Schema
}

// NewRegistry creates an empty schema registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register compiles the schema's detection predicate and adds it to the
// registry. Registration order decides match precedence.
func (r *Registry) Register(s Schema) error {
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("schema name is required")
	}
	if strings.TrimSpace(s.Detection) == "" {
		return fmt.Errorf("schema %q: detection predicate is required", s.Name)
	}

	compiled, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(s.Detection))
	if err != nil {
		return fmt.Errorf("schema %q: failed to compile detection predicate: %w", s.Name, err)
	}

	registered := s
	registered.compiled = compiled
	r.schemas = append(r.schemas, &registered)
	return nil
}

// Match returns the first registered schema whose detection predicate
// validates the given parsed JSON value.
func (r *Registry) Match(value interface{}) (*Schema, bool) {
	for _, s := range r.schemas {
		result, err := s.compiled.Validate(gojsonschema.NewGoLoader(value))
		if err != nil {
			continue
		}
		if result.Valid() {
			return s, true
		}
	}
	return nil, false
}

// PathMatches reports whether the normalized JSON path (dot-joined, array
// indices as decimal segments) matches any of the schema's translatable
// path patterns.
func (s *Schema) PathMatches(path string) bool {
	for _, pattern := range s.TranslatablePaths {
		if MatchPath(pattern, path) {
			return true
		}
	}
	return false
}

// MatchPath compares a dot-joined path against a pattern where "*" and
// "[*]" segments match any single key or array index.
func MatchPath(pattern, path string) bool {
	patSegs := strings.Split(pattern, ".")
	pathSegs := strings.Split(path, ".")

	if len(patSegs) != len(pathSegs) {
		return false
	}

	for i, p := range patSegs {
		if p == "*" || p == "[*]" {
			continue
		}
		if p != pathSegs[i] {
			return false
		}
	}
	return true
}

// JoinPath appends a key segment to a normalized path.
func JoinPath(parent, key string) string {
	if parent == "" {
		return key
	}
	return parent + "." + key
}

// JoinIndex appends an array index segment to a normalized path.
func JoinIndex(parent string, idx int) string {
	return JoinPath(parent, strconv.Itoa(idx))
}
