package web

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"net/http"
	"time"

	"github.com/cjeanneret/DoorGo/internal/command"
)

// CommandRequest is the POST /command body.
type CommandRequest struct {
	Command string `json:"command"`
}

// MotionInfo is the GET /config response: the fixed sequencing parameters.
type MotionInfo struct {
	StepCount    int64   `json:"step_count"`
	DwellMs      int     `json:"dwell_ms"`
	MaxSpeed     float64 `json:"max_speed_steps_per_s"`
	Acceleration float64 `json:"acceleration_steps_per_s2"`
}

// PushCommandFunc injects a command token into the sequencer's queue.
// It returns false when the queue is full and the token was dropped.
type PushCommandFunc func(token string) bool

// Handlers holds dependencies for HTTP handlers.
type Handlers struct {
	Broadcaster *StatusBroadcaster
	PushCommand PushCommandFunc
	Motion      MotionInfo
	staticFS    fs.FS
}

// NewHandlers creates handlers with the given dependencies.
// If pushCommand is nil, POST /command will return 503 Service Unavailable.
func NewHandlers(broadcaster *StatusBroadcaster, pushCommand PushCommandFunc, motion MotionInfo, staticFS fs.FS) *Handlers {
	return &Handlers{
		Broadcaster: broadcaster,
		PushCommand: pushCommand,
		Motion:      motion,
		staticFS:    staticFS,
	}
}

// ValidateCommand checks that a token is one of the two known commands.
// Normalization (trim, lowercase) happens before the check, so "#ON" is fine.
func ValidateCommand(raw string) (string, error) {
	token := command.Normalize(raw)
	switch token {
	case command.TokenOn, command.TokenOff:
		return token, nil
	case "":
		return "", fmt.Errorf("command is empty")
	default:
		return "", fmt.Errorf("unknown command %q, use %q or %q", raw, command.TokenOn, command.TokenOff)
	}
}

// HandleConfig returns the motion parameters as JSON.
func (h *Handlers) HandleConfig(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.Motion)
}

// ServeIndex serves the main HTML page (root path only).
func (h *Handlers) ServeIndex(w http.ResponseWriter, r *http.Request) {
	data, err := fs.ReadFile(h.staticFS, "index.html")
	if err != nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(data)
}

// HandleCommand handles POST /command: validate the token and push it into
// the sequencer's queue. Whether the command is legal in the current state
// is the sequencer's call; the answer arrives on the status stream.
func (h *Handlers) HandleCommand(w http.ResponseWriter, r *http.Request) {
	var req CommandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	token, err := ValidateCommand(req.Command)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if h.PushCommand == nil {
		http.Error(w, "sequencer not configured", http.StatusServiceUnavailable)
		return
	}
	if !h.PushCommand(token) {
		http.Error(w, "command queue full", http.StatusTooManyRequests)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]string{"status": "queued", "command": token})
}

// HandleStatusStream handles GET /status/stream for SSE.
func (h *Handlers) HandleStatusStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // nginx

	ch, unsub := h.Broadcaster.Subscribe()
	defer unsub()

	// Send initial comment to establish connection
	w.Write([]byte(": connected\n\n"))
	flusher.Flush()

	// Heartbeat while idle
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return
			}
			w.Write([]byte("data: " + msg + "\n\n"))
			flusher.Flush()

		case <-ticker.C:
			w.Write([]byte(": heartbeat\n\n"))
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}
