package transcript

import (
	"errors"
	"sync"
)

// User-visible messages for failed actions.
const (
	MsgUploadFailed = "Failed to upload and transcribe the audio."
	MsgClearFailed  = "Failed to clear transcription history."
)

// Record is one transcription produced by the backend.
type Record struct {
	ID   string `json:"_id,omitempty"`
	Text string `json:"text"`
}

// History is the ordered list of transcriptions shown to the user, newest
// upload first.
type History struct {
	mu      sync.RWMutex
	records []Record
}

// Replace swaps in the list fetched from the backend, keeping its order.
func (h *History) Replace(records []Record) {
	h.mu.Lock()
	h.records = append([]Record(nil), records...)
	h.mu.Unlock()
}

// Prepend puts a freshly uploaded record at index 0.
func (h *History) Prepend(r Record) {
	h.mu.Lock()
	h.records = append([]Record{r}, h.records...)
	h.mu.Unlock()
}

func (h *History) Clear() {
	h.mu.Lock()
	h.records = nil
	h.mu.Unlock()
}

// Records returns a copy of the list.
func (h *History) Records() []Record {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return append([]Record(nil), h.records...)
}

func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.records)
}

// Status is the view's busy flag and the message shown for the last failed
// action.
type Status struct {
	mu      sync.Mutex
	busy    bool
	message string
	cause   error
}

// Begin marks the view busy. It returns false if it already was.
func (s *Status) Begin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy {
		return false
	}
	s.busy = true
	return true
}

func (s *Status) End() {
	s.mu.Lock()
	s.busy = false
	s.mu.Unlock()
}

func (s *Status) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}

func (s *Status) SetError(msg string) {
	s.Fail(nil, msg)
}

// Fail records msg as the message for the action that failed with cause.
func (s *Status) Fail(cause error, msg string) {
	s.mu.Lock()
	s.message = msg
	s.cause = cause
	s.mu.Unlock()
}

func (s *Status) ClearError() {
	s.Fail(nil, "")
}

// Error returns the current message, or "" when the last action succeeded.
func (s *Status) Error() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.message
}

// MessageFor returns the current message only if it was recorded for err,
// so a message left by an earlier action is never reported for a new one.
func (s *Status) MessageFor(err error) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil || s.cause == nil || !errors.Is(err, s.cause) {
		return ""
	}
	return s.message
}
