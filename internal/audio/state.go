package audio

// State is the recorder's position in its lifecycle:
// Idle -> RequestingPermission -> Recording -> Finalizing -> Idle.
type State int

const (
	// StateIdle means no microphone is held.
	StateIdle State = iota
	// StateRequestingPermission is while the microphone is being opened.
	StateRequestingPermission
	// StateRecording means audio chunks are being captured.
	StateRecording
	// StateFinalizing is while the stream is released and chunks are assembled.
	StateFinalizing
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateRequestingPermission:
		return "Requesting Permission"
	case StateRecording:
		return "Recording"
	case StateFinalizing:
		return "Finalizing"
	default:
		return "Unknown"
	}
}
