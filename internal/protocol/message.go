package protocol

import (
	"encoding/json"
	"fmt"
	"time"
)

// Message is the envelope for all WebSocket messages.
type Message struct {
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewMessage creates a server-originated message with the current timestamp.
func NewMessage(msgType string, payload interface{}) (*Message, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	return &Message{
		Type:      msgType,
		Payload:   data,
		Timestamp: time.Now().UTC(),
	}, nil
}

// Server → Client message types.
const (
	TypeTimerUpdate = "timer.update"
	TypeError       = "error"
)

// Client → Server message types.
const (
	TypeDigitPress     = "digit.press"
	TypeDigitBackspace = "digit.backspace"
	TypeTimerStart     = "timer.start"
	TypeTimerStop      = "timer.stop"
	TypePresetLoad     = "preset.load"
)

// Error codes.
const (
	ErrInvalidMessage = "INVALID_MESSAGE"
	ErrRateLimited    = "RATE_LIMITED"
	ErrPresetNotFound = "PRESET_NOT_FOUND"
	ErrTimerRunning   = "TIMER_RUNNING"
)

// Server → Client payloads.

// TimerUpdatePayload carries one published engine state.
type TimerUpdatePayload struct {
	Event            string  `json:"event"`
	Running          bool    `json:"running"`
	Hours            int     `json:"hours"`
	Minutes          int     `json:"minutes"`
	Seconds          int     `json:"seconds"`
	SecondsRemaining int     `json:"secondsRemaining"`
	TotalSeconds     int     `json:"totalSeconds"`
	PercentRemaining float64 `json:"percentRemaining"`
	Entry            string  `json:"entry"`
}

type ErrorPayload struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Client → Server payloads.

// DigitPressPayload uses a pointer so a missing digit is distinguishable
// from zero.
type DigitPressPayload struct {
	Digit *int `json:"digit"`
}

type PresetLoadPayload struct {
	Name string `json:"name"`
}
