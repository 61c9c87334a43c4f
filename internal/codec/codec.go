// Package codec packs button actions and their payloads into short
// transport-safe callback tokens.
package codec

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
)

// Action identifies the follow-up operation a button press requests.
type Action string

// Button actions carried on callback tokens. The upscale values are bare
// digits so the button labels can double as the wire value.
const (
	ActionVariant1 Action = "V1"
	ActionVariant2 Action = "V2"
	ActionVariant3 Action = "V3"
	ActionVariant4 Action = "V4"
	ActionUpscale1 Action = "1"
	ActionUpscale2 Action = "2"
	ActionUpscale3 Action = "3"
	ActionUpscale4 Action = "4"
	ActionSpeak    Action = "Speak"
)

// delimiter separates the action tag from the encoded payload. Base64 never
// produces it, so the first occurrence is unambiguous.
const delimiter = "|"

// ErrMalformedToken indicates the payload segment of a token could not be
// decoded. Callers must treat this as "no usable payload", not as fatal.
var ErrMalformedToken = fmt.Errorf("codec: malformed action token")

// VariantNumber returns the 1-4 index of a variant action, or 0 if the
// action is not a variant.
func (a Action) VariantNumber() int {
	switch a {
	case ActionVariant1:
		return 1
	case ActionVariant2:
		return 2
	case ActionVariant3:
		return 3
	case ActionVariant4:
		return 4
	default:
		return 0
	}
}

// UpscaleNumber returns the 1-4 index of an upscale action, or 0 if the
// action is not an upscale.
func (a Action) UpscaleNumber() int {
	switch a {
	case ActionUpscale1:
		return 1
	case ActionUpscale2:
		return 2
	case ActionUpscale3:
		return 3
	case ActionUpscale4:
		return 4
	default:
		return 0
	}
}

// VariantAction maps a 1-4 index to the matching variant action.
func VariantAction(n int) (Action, bool) {
	switch n {
	case 1:
		return ActionVariant1, true
	case 2:
		return ActionVariant2, true
	case 3:
		return ActionVariant3, true
	case 4:
		return ActionVariant4, true
	default:
		return "", false
	}
}

// Encode packs an action and a small payload into a callback token. The
// payload is msgpack-encoded then base64-encoded; callers keep it to a
// single short identifier so the token stays within the transport's
// payload ceiling.
func Encode(action Action, data string) (string, error) {
	packed, err := msgpack.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("failed to pack action data: %w", err)
	}
	encoded := base64.StdEncoding.EncodeToString(packed)
	return string(action) + delimiter + encoded, nil
}

// Decode unpacks a callback token. A token without a delimiter is a bare
// action with no payload. A token whose payload segment does not decode
// returns the action together with ErrMalformedToken.
func Decode(token string) (Action, string, error) {
	tag, encoded, found := strings.Cut(token, delimiter)
	action := Action(tag)
	if !found || encoded == "" {
		return action, "", nil
	}

	packed, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return action, "", fmt.Errorf("%w: %w", ErrMalformedToken, err)
	}

	var data string
	if err := msgpack.Unmarshal(packed, &data); err != nil {
		return action, "", fmt.Errorf("%w: %w", ErrMalformedToken, err)
	}
	return action, data, nil
}
