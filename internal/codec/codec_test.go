package codec

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	actions := []Action{
		ActionVariant1, ActionVariant2, ActionVariant3, ActionVariant4,
		ActionUpscale1, ActionUpscale2, ActionUpscale3, ActionUpscale4,
		ActionSpeak,
	}
	payloads := []string{
		"",
		"1125899906842624",
		"msg-abc-123",
		"id with spaces",
		"ünïcode-идентификатор",
	}

	for _, action := range actions {
		for _, payload := range payloads {
			token, err := Encode(action, payload)
			require.NoError(t, err)

			gotAction, gotData, err := Decode(token)
			require.NoError(t, err)
			assert.Equal(t, action, gotAction)
			assert.Equal(t, payload, gotData)
		}
	}
}

func TestEncodeKeepsTokensShort(t *testing.T) {
	// Telegram callback payloads max out at 64 bytes; a message ID sized
	// payload has to fit with room to spare.
	token, err := Encode(ActionVariant4, "1125899906842624")
	require.NoError(t, err)
	assert.LessOrEqual(t, len(token), 64)
}

func TestDecodeBareAction(t *testing.T) {
	action, data, err := Decode("Speak")
	require.NoError(t, err)
	assert.Equal(t, ActionSpeak, action)
	assert.Empty(t, data)
}

func TestDecodeMalformedPayload(t *testing.T) {
	tests := []struct {
		name  string
		token string
	}{
		{name: "not base64", token: "V1|%%%not-base64%%%"},
		{name: "base64 but not msgpack string", token: "V1|" + strings.Repeat("/", 8)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			action, data, err := Decode(tt.token)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformedToken))
			assert.Equal(t, ActionVariant1, action)
			assert.Empty(t, data)
		})
	}
}

func TestDecodeEmptyPayloadSegment(t *testing.T) {
	action, data, err := Decode("V2|")
	require.NoError(t, err)
	assert.Equal(t, ActionVariant2, action)
	assert.Empty(t, data)
}

func TestActionNumbers(t *testing.T) {
	assert.Equal(t, 3, ActionVariant3.VariantNumber())
	assert.Equal(t, 0, ActionUpscale3.VariantNumber())
	assert.Equal(t, 2, ActionUpscale2.UpscaleNumber())
	assert.Equal(t, 0, ActionSpeak.UpscaleNumber())

	got, ok := VariantAction(4)
	require.True(t, ok)
	assert.Equal(t, ActionVariant4, got)

	_, ok = VariantAction(5)
	assert.False(t, ok)
}
