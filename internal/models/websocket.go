package models

// WebSocket event types
const (
	EventCallState  = "call.state"
	EventCallTick   = "call.tick"
	EventCallEnded  = "call.ended"
	EventCallHangup = "call.hangup"
	EventCallPause  = "call.pause"
	EventCallResume = "call.resume"
	EventMediaEnded = "media.ended"
	EventMediaError = "media.error"
	EventError      = "error"
)

type WSMessage struct {
	Event   string      `json:"event"`
	Payload interface{} `json:"payload"`
}

// WSCallStatePayload is pushed to the call screen on every state change and
// on each countdown tick.
type WSCallStatePayload struct {
	State     string `json:"state"`
	Remaining int    `json:"remaining_seconds"`
	Formatted string `json:"formatted"`
	Warning   bool   `json:"warning"`
}

type WSMediaErrorPayload struct {
	Message string `json:"message"`
}

type WSErrorPayload struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}
