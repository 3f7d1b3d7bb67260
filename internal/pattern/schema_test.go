package pattern

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const courseSchema = `{
	"type": "object",
	"required": ["title", "locale"],
	"properties": {
		"title": {"type": "string"},
		"locale": {"type": "string"}
	}
}`

func TestRegistry_MatchFirstRegistered(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(Schema{
		Name:              "course",
		Detection:         courseSchema,
		SourceLangPath:    "locale",
		TranslatablePaths: []string{"title", "sections.*.heading"},
	}))

	var doc interface{}
	require.NoError(t, json.Unmarshal([]byte(`{"title":"Intro","locale":"en-US"}`), &doc))

	s, ok := r.Match(doc)
	require.True(t, ok)
	assert.Equal(t, "course", s.Name)
}

func TestRegistry_NoMatch(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(Schema{Name: "course", Detection: courseSchema}))

	var doc interface{}
	require.NoError(t, json.Unmarshal([]byte(`{"unrelated":true}`), &doc))

	_, ok := r.Match(doc)
	assert.False(t, ok)
}

func TestRegister_RejectsMissingPredicate(t *testing.T) {
	r := NewRegistry()
	assert.Error(t, r.Register(Schema{Name: "empty"}))
}

func TestMatchPath(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		path    string
		want    bool
	}{
		{"exact", "title", "title", true},
		{"wildcard index", "sections.*.heading", "sections.0.heading", true},
		{"wildcard bracket", "sections.[*].heading", "sections.3.heading", true},
		{"wildcard key", "labels.*", "labels.submit", true},
		{"length mismatch", "sections.*.heading", "sections.0.heading.extra", false},
		{"segment mismatch", "sections.*.heading", "sections.0.body", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MatchPath(tt.pattern, tt.path))
		})
	}
}

func TestJoinPath(t *testing.T) {
	assert.Equal(t, "a.b", JoinPath("a", "b"))
	assert.Equal(t, "b", JoinPath("", "b"))
	assert.Equal(t, "a.2", JoinIndex("a", 2))
}
