package httputil

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionalString_TriState(t *testing.T) {
	type body struct {
		Description OptionalString `json:"description"`
	}

	tests := []struct {
		name        string
		payload     string
		wantPresent bool
		wantValue   *string
	}{
		{name: "absent", payload: `{}`, wantPresent: false},
		{name: "null", payload: `{"description": null}`, wantPresent: true},
		{name: "empty", payload: `{"description": ""}`, wantPresent: true, wantValue: ptr("")},
		{name: "value", payload: `{"description": "rock"}`, wantPresent: true, wantValue: ptr("rock")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var b body
			require.NoError(t, json.Unmarshal([]byte(tt.payload), &b))
			assert.Equal(t, tt.wantPresent, b.Description.Present)
			assert.Equal(t, tt.wantValue, b.Description.Value)
		})
	}
}

func TestOptionalString_RejectsNonString(t *testing.T) {
	var o OptionalString
	assert.Error(t, json.Unmarshal([]byte(`42`), &o))
}

func TestOptionalString_Helpers(t *testing.T) {
	assert.Equal(t, "x", Some("x").OrEmpty())
	assert.Equal(t, "", Null().OrEmpty())
	assert.True(t, Null().Present)

	out, err := json.Marshal(Null())
	require.NoError(t, err)
	assert.Equal(t, "null", string(out))
}

func ptr(s string) *string { return &s }
