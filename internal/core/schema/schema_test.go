package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type reflectArgs struct {
	Amount   float64 `json:"amount" jsonschema:"exclusiveMinimum=0"`
	Category string  `json:"category" jsonschema:"enum=food,enum=other"`
	Note     string  `json:"note,omitempty" jsonschema:"maxLength=10"`
}

func TestCompile_ValidatesDecodedDocument(t *testing.T) {
	s, err := Compile(map[string]any{
		"type": "object",
		"properties": map[string]any{
			"name": map[string]any{"type": "string", "minLength": 1},
		},
		"required":             []string{"name"},
		"additionalProperties": false,
	})
	require.NoError(t, err)

	ok, err := Decode([]byte(`{"name":"lunch"}`))
	require.NoError(t, err)
	assert.NoError(t, s.Validate(ok))

	missing, err := Decode([]byte(`{}`))
	require.NoError(t, err)
	err = s.Validate(missing)
	require.Error(t, err)

	var ve *ValidationError
	assert.ErrorAs(t, err, &ve)
	assert.Contains(t, err.Error(), "schema validation failed")
	assert.NotContains(t, err.Error(), "\n")

	extra, err := Decode([]byte(`{"name":"x","other":1}`))
	require.NoError(t, err)
	assert.Error(t, s.Validate(extra))
}

func TestDecode_RejectsTrailingContent(t *testing.T) {
	_, err := Decode([]byte(`{"a":1} {"b":2}`))
	assert.Error(t, err)

	_, err = Decode([]byte(`{"a":1} trailing`))
	assert.Error(t, err)

	doc, err := Decode([]byte("{\"a\":1}\n"))
	require.NoError(t, err)
	assert.IsType(t, map[string]any{}, doc)
}

func TestCompile_NilSchemaAcceptsAnything(t *testing.T) {
	s, err := Compile(nil)
	require.NoError(t, err)
	assert.Nil(t, s)
	assert.NoError(t, s.Validate(map[string]any{"x": 1}))
	assert.Nil(t, s.Raw())
	assert.Equal(t, "{}", s.JSON())
}

func TestCompile_InvalidSchema(t *testing.T) {
	_, err := Compile(map[string]any{"type": 12})
	assert.Error(t, err)
}

func TestReflect_StructTags(t *testing.T) {
	raw, err := Reflect[reflectArgs]()
	require.NoError(t, err)

	assert.Equal(t, "object", raw["type"])
	assert.NotContains(t, raw, "$id")
	assert.ElementsMatch(t, []any{"amount", "category"}, raw["required"])

	s, err := Compile(raw)
	require.NoError(t, err)

	valid := map[string]any{"amount": 12.5, "category": "food"}
	assert.NoError(t, s.Validate(valid))

	assert.Error(t, s.Validate(map[string]any{"amount": 0, "category": "food"}))
	assert.Error(t, s.Validate(map[string]any{"amount": 3, "category": "cars"}))
	assert.Error(t, s.Validate(map[string]any{"amount": 3, "category": "food", "note": "far too long for this"}))
	assert.Error(t, s.Validate(map[string]any{"amount": 3, "category": "food", "extra": true}))
}

func TestReflect_EmptyStruct(t *testing.T) {
	raw, err := Reflect[struct{}]()
	require.NoError(t, err)
	assert.Contains(t, raw, "properties")

	s, err := Compile(raw)
	require.NoError(t, err)
	assert.NoError(t, s.Validate(map[string]any{}))
}
