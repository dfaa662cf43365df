package timer

import "time"

// EventType distinguishes the transitions the engine publishes.
type EventType string

const (
	EventEntry   EventType = "entry"
	EventStarted EventType = "started"
	EventTick    EventType = "tick"
	EventStopped EventType = "stopped"
	EventExpired EventType = "expired"
)

// Snapshot is the observable state of an engine at one instant.
//
// Hours, Minutes and Seconds mirror the entry buffer while idle and the
// countdown while running.
type Snapshot struct {
	Running          bool    `json:"running"`
	Hours            int     `json:"hours"`
	Minutes          int     `json:"minutes"`
	Seconds          int     `json:"seconds"`
	SecondsRemaining int     `json:"secondsRemaining"`
	TotalSeconds     int     `json:"totalSeconds"`
	PercentRemaining float64 `json:"percentRemaining"`
	Entry            string  `json:"entry"`
}

// Event is a published state change.
type Event struct {
	Type      EventType `json:"type"`
	Snapshot  Snapshot  `json:"snapshot"`
	Timestamp time.Time `json:"timestamp"`
}
