package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		name     string
		envelope *Envelope
		expected string
	}{
		{
			name:     "html preferred",
			envelope: &Envelope{Status: "error", MessageHTML: "<b>html</b>", MessagePlain: "plain"},
			expected: "<b>html</b>",
		},
		{
			name:     "plain fallback",
			envelope: &Envelope{Status: "error", MessagePlain: "plain"},
			expected: "plain",
		},
		{
			name:     "generic fallback",
			envelope: &Envelope{Status: "error"},
			expected: GenericServerError,
		},
		{
			name:     "nil envelope",
			envelope: nil,
			expected: GenericServerError,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.envelope.ErrorMessage())
		})
	}
}

func TestDecodeData(t *testing.T) {
	env := &Envelope{
		Status: StatusOK,
		Data: map[string]any{
			"has_services_enabled": true,
			"has_advisory":         "true", // server is loose about bools
			"is_guest":             false,
		},
	}

	var ent Entitlements
	require.NoError(t, env.DecodeData(&ent))
	assert.True(t, ent.HasServicesEnabled)
	assert.True(t, ent.HasAdvisory)
	assert.False(t, ent.IsGuest)
}

func TestDecodeDataList(t *testing.T) {
	env := &Envelope{
		Status: StatusOK,
		Data: []any{
			map[string]any{"id": "m1", "sender": "advisor", "body": "hello"},
			map[string]any{"id": "m2", "sender": "me", "body": "hi", "mine": true},
		},
	}

	var msgs []Message
	require.NoError(t, env.DecodeData(&msgs))
	require.Len(t, msgs, 2)
	assert.Equal(t, "m1", msgs[0].EntryID())
	assert.True(t, msgs[1].Mine)
}

func TestStatusHelpers(t *testing.T) {
	assert.True(t, (&Envelope{Status: StatusOK}).OK())
	assert.False(t, (&Envelope{Status: "error"}).OK())
	assert.True(t, (&Envelope{Status: StatusGuest}).IsGuest())

	var nilEnv *Envelope
	assert.False(t, nilEnv.OK())
	assert.False(t, nilEnv.IsGuest())
}
