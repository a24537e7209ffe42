package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvelopeRoundTrip(t *testing.T) {
	e := New("CHAT_CREATED", map[string]interface{}{"chat_id": "c1"})

	data, err := Marshal(e)
	require.NoError(t, err)

	decoded, err := Unmarshal(data)
	require.NoError(t, err)
	assert.Equal(t, "CHAT_CREATED", decoded.EventType())
	assert.Equal(t, "c1", decoded.Payload()["chat_id"])
	assert.True(t, e.Timestamp().Equal(decoded.Timestamp()))
}

func TestUnmarshal_Invalid(t *testing.T) {
	_, err := Unmarshal([]byte("not json"))
	assert.Error(t, err)
}
