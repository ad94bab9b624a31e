package dbtypes

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONScanAndValue(t *testing.T) {
	var j JSON
	require.NoError(t, j.Scan([]byte(`{"items":[{"productId":1}]}`)))

	v, err := j.Value()
	require.NoError(t, err)
	assert.JSONEq(t, `{"items":[{"productId":1}]}`, v.(string))

	require.NoError(t, j.Scan(`[1,2]`))
	assert.Equal(t, `[1,2]`, string(j))

	require.NoError(t, j.Scan(nil))
	assert.True(t, j.IsNull())
	v, err = j.Value()
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestJSONRejectsInvalidDocument(t *testing.T) {
	_, err := JSON(`{broken`).Value()
	assert.Error(t, err)
	assert.Error(t, new(JSON).Scan(42))
}

func TestJSONEmbedsVerbatimInParentDocument(t *testing.T) {
	doc, err := NewJSON(map[string]any{"quantity": 3})
	require.NoError(t, err)

	out, err := json.Marshal(struct {
		Dados JSON `json:"dados"`
	}{Dados: doc})
	require.NoError(t, err)
	assert.JSONEq(t, `{"dados":{"quantity":3}}`, string(out))

	var decoded map[string]int
	require.NoError(t, doc.Decode(&decoded))
	assert.Equal(t, 3, decoded["quantity"])
}
