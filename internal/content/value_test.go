package content

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseValue_PreservesMemberOrder(t *testing.T) {
	raw := `{"zebra":1,"alpha":2,"mango":3}`
	v, err := ParseValue([]byte(raw))
	require.NoError(t, err)

	require.Equal(t, KindObject, v.Kind)
	keys := make([]string, len(v.Members))
	for i, m := range v.Members {
		keys[i] = m.Key
	}
	assert.Equal(t, []string{"zebra", "alpha", "mango"}, keys)

	out, err := json.Marshal(v)
	require.NoError(t, err)
	assert.Equal(t, raw, string(out))
}

func TestParseValue_PreservesNumberFormat(t *testing.T) {
	raw := `{"big":12345678901234567890,"frac":0.1}`
	v, err := ParseValue([]byte(raw))
	require.NoError(t, err)

	out, err := json.Marshal(v)
	require.NoError(t, err)
	assert.Equal(t, raw, string(out))
}

func TestParseValue_RejectsTrailingContent(t *testing.T) {
	_, err := ParseValue([]byte(`{"a":1} {"b":2}`))
	assert.Error(t, err)
}

func TestValue_Lookup(t *testing.T) {
	v, err := ParseValue([]byte(`{"sections":[{"heading":"Intro"}]}`))
	require.NoError(t, err)

	heading, ok := v.Lookup("sections.0.heading")
	require.True(t, ok)
	assert.Equal(t, "Intro", heading.Str)

	_, ok = v.Lookup("sections.1.heading")
	assert.False(t, ok)
	_, ok = v.Lookup("missing")
	assert.False(t, ok)
}

func TestValue_CloneIsDeep(t *testing.T) {
	v, err := ParseValue([]byte(`{"a":["x"]}`))
	require.NoError(t, err)

	clone := v.Clone()
	elem, ok := clone.Lookup("a.0")
	require.True(t, ok)
	elem.Str = "changed"

	orig, _ := v.Lookup("a.0")
	assert.Equal(t, "x", orig.Str)
}
