package protocol

import (
	"encoding/json"
	"fmt"
)

// validClientTypes is the set of allowed client→server message types.
var validClientTypes = map[string]bool{
	TypeDigitPress:     true,
	TypeDigitBackspace: true,
	TypeTimerStart:     true,
	TypeTimerStop:      true,
	TypePresetLoad:     true,
}

// ValidateDigit checks that d is a single decimal digit.
func ValidateDigit(d int) error {
	if d < 0 || d > 9 {
		return fmt.Errorf("digit out of range 0-9: %d", d)
	}
	return nil
}

// ValidateClientMessage validates a raw JSON message from a client.
// Returns the parsed Message and any validation error.
func ValidateClientMessage(raw []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}

	if msg.Type == "" {
		return nil, fmt.Errorf("missing 'type' field")
	}

	if !validClientTypes[msg.Type] {
		return nil, fmt.Errorf("unknown message type: %s", msg.Type)
	}

	// Intents without arguments may omit the payload.
	switch msg.Type {
	case TypeDigitPress:
		if msg.Payload == nil {
			return nil, fmt.Errorf("missing 'payload' field")
		}
		var p DigitPressPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return nil, fmt.Errorf("invalid payload for %s: %w", msg.Type, err)
		}
		if p.Digit == nil {
			return nil, fmt.Errorf("missing required field 'digit' in %s payload", msg.Type)
		}
		if err := ValidateDigit(*p.Digit); err != nil {
			return nil, fmt.Errorf("invalid payload for %s: %w", msg.Type, err)
		}

	case TypePresetLoad:
		if msg.Payload == nil {
			return nil, fmt.Errorf("missing 'payload' field")
		}
		var p PresetLoadPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return nil, fmt.Errorf("invalid payload for %s: %w", msg.Type, err)
		}
		if p.Name == "" {
			return nil, fmt.Errorf("missing required field 'name' in %s payload", msg.Type)
		}
	}

	return &msg, nil
}

// NewErrorMessage creates an error message ready to send to the client.
func NewErrorMessage(code, message string) (*Message, error) {
	return NewMessage(TypeError, ErrorPayload{
		Code:    code,
		Message: message,
	})
}
