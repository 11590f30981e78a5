package optional

import (
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type patch struct {
	Name     Field[string] `json:"name"`
	PartyRef Field[int64]  `json:"partyRef"`
}

func TestFieldTracksPresence(t *testing.T) {
	var p patch
	require.NoError(t, json.Unmarshal([]byte(`{"name":""}`), &p))

	assert.True(t, p.Name.Set)
	assert.False(t, p.Name.Null)
	assert.Equal(t, "", p.Name.Value)
	assert.False(t, p.PartyRef.Set)
}

func TestFieldDecodesValue(t *testing.T) {
	var p patch
	require.NoError(t, json.Unmarshal([]byte(`{"partyRef":7}`), &p))

	require.True(t, p.PartyRef.Set)
	require.NotNil(t, p.PartyRef.Ptr())
	assert.Equal(t, int64(7), *p.PartyRef.Ptr())
}

func TestFieldDecodesNull(t *testing.T) {
	var p patch
	require.NoError(t, json.Unmarshal([]byte(`{"partyRef":null}`), &p))

	assert.True(t, p.PartyRef.Set)
	assert.True(t, p.PartyRef.Null)
	assert.Nil(t, p.PartyRef.Ptr())
	assert.False(t, p.Name.Set)
}

func TestFieldNullResetsPreviousValue(t *testing.T) {
	p := patch{PartyRef: Of[int64](7)}
	require.NoError(t, json.Unmarshal([]byte(`{"partyRef":null}`), &p))

	assert.True(t, p.PartyRef.Null)
	assert.Equal(t, int64(0), p.PartyRef.Value)
}

func TestFieldRejectsWrongType(t *testing.T) {
	var p patch
	assert.Error(t, json.Unmarshal([]byte(`{"partyRef":"seven"}`), &p))
}

func TestNullHasNoPointer(t *testing.T) {
	f := Null[string]()
	assert.True(t, f.Set)
	assert.Nil(t, f.Ptr())

	v := Of("x")
	assert.Equal(t, "x", *v.Ptr())
}
