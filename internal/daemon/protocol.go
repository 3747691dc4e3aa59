package daemon

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// RequestType identifies what a connected client is asking for.
type RequestType string

const (
	// RequestSubscribe attaches the client to the broadcast stream. The
	// reply carries the assigned client id; a bootstrap frame with the
	// full current state follows immediately when any section has data.
	RequestSubscribe RequestType = "subscribe"
	// RequestStatus returns daemon metadata and the section snapshot.
	RequestStatus RequestType = "status"
	// RequestRefresh re-polls every backend now and repaints the full
	// surface at interactive priority.
	RequestRefresh RequestType = "refresh"
	// RequestUpdate merges a partial value into one section.
	RequestUpdate RequestType = "update"
	// RequestPing checks liveness.
	RequestPing RequestType = "ping"
)

// Response types that do not echo a request type.
const (
	// TypeFrame marks a pushed state frame; its payload is the projected
	// message the rendering surface applies.
	TypeFrame = "frame"
	// TypePong answers a ping.
	TypePong = "pong"
)

// Request is one client-to-daemon message, a single JSON line on the
// socket. ClientID is an optional client-chosen label used in logs;
// identity is assigned by the daemon.
type Request struct {
	Type     RequestType `json:"type"`
	ClientID string      `json:"client_id,omitempty"`
	Payload  any         `json:"payload,omitempty"`
}

// Response is one daemon-to-client message. Type echoes the request
// type, or is TypeFrame/TypePong for pushes and ping answers.
type Response struct {
	Type    string `json:"type"`
	OK      bool   `json:"ok"`
	Error   string `json:"error,omitempty"`
	Payload any    `json:"payload,omitempty"`
}

// UpdatePayload is the payload of an update request. Priority is a
// name from the engine priority table; empty means normal.
type UpdatePayload struct {
	Section  string         `json:"section"`
	Priority string         `json:"priority,omitempty"`
	Fields   map[string]any `json:"fields"`
}

// SubscribePayload is the payload of a successful subscribe response.
type SubscribePayload struct {
	ClientID string `json:"client_id"`
}

// StatusPayload is the payload of a status response. Clients counts
// subscribed consumers, not open connections; Sections is the current
// engine snapshot.
type StatusPayload struct {
	Version   string                    `json:"version" yaml:"version"`
	PID       int                       `json:"pid" yaml:"pid"`
	StartedAt time.Time                 `json:"started_at" yaml:"started_at"`
	Clients   int                       `json:"clients" yaml:"clients"`
	Sections  map[string]map[string]any `json:"sections" yaml:"sections"`
}

// SocketPath returns the default daemon socket path for this user.
func SocketPath() string {
	return filepath.Join(runtimeDir(), fmt.Sprintf("companion-%d.sock", os.Getuid()))
}

// PidPath returns the default pidfile path for this user.
func PidPath() string {
	return filepath.Join(runtimeDir(), fmt.Sprintf("companion-%d.pid", os.Getuid()))
}

func runtimeDir() string {
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return dir
	}
	return "/tmp"
}

// DecodePayload re-encodes a generically decoded JSON payload into a
// typed struct. Payloads arrive as map[string]any because Request and
// Response carry them untyped.
func DecodePayload(payload any, into any) error {
	if payload == nil {
		return fmt.Errorf("missing payload")
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode payload: %w", err)
	}
	if err := json.Unmarshal(data, into); err != nil {
		return fmt.Errorf("failed to decode payload: %w", err)
	}
	return nil
}
