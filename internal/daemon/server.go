// Package daemon exposes the synchronization engine over a per-user
// unix socket. Clients speak newline-delimited JSON: they issue
// requests (subscribe, status, refresh, update, ping) and, once
// subscribed, receive every flushed state frame as a push.
package daemon

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/B-Whitt/redhat-ai-workflow-sub002/internal/engine"
	"github.com/B-Whitt/redhat-ai-workflow-sub002/pkg/logging"
)

// outboxSize bounds the per-client send queue. A stalled consumer loses
// frames instead of stalling the dispatch path; the next flush carries
// current state anyway.
const outboxSize = 64

// Core is the engine surface the daemon drives.
type Core interface {
	Update(section string, partial map[string]any, priority engine.Priority) bool
	Snapshot() map[string]map[string]any
	Invalidate(priority engine.Priority)
	Flush()
	ProjectAll() *engine.Message
}

// Refresher forces the configured producers to poll now. Implementations
// must tolerate concurrent calls.
type Refresher interface {
	ForceAll(ctx context.Context)
}

// Config carries the daemon's listen paths and build identity. Empty
// paths fall back to the per-user defaults.
type Config struct {
	SocketPath string
	PidPath    string
	Version    string
}

// Server owns the socket, the connected clients, and the request
// handlers. It implements engine.Sink, so the engine's flushed frames
// broadcast to every subscribed client.
type Server struct {
	cfg       Config
	core      Core
	refresher Refresher

	mu        sync.Mutex
	running   bool
	listener  net.Listener
	startedAt time.Time
	ctx       context.Context
	cancel    context.CancelFunc

	clientsMu sync.RWMutex
	clients   map[string]*client

	done chan struct{}
}

// client is one accepted connection. Writes go through the outbox so
// request replies and broadcast frames share a single writer and never
// interleave mid-line. The outbox is never closed; the writer exits
// via done.
type client struct {
	id     string
	conn   net.Conn
	outbox chan []byte
	done   chan struct{}

	subscribed bool // guarded by Server.clientsMu
}

// New returns a server for core. refresher may be nil when no pollers
// are configured; refresh requests then only repaint.
func New(cfg Config, core Core, refresher Refresher) *Server {
	if cfg.SocketPath == "" {
		cfg.SocketPath = SocketPath()
	}
	if cfg.PidPath == "" {
		cfg.PidPath = PidPath()
	}
	return &Server{
		cfg:       cfg,
		core:      core,
		refresher: refresher,
		clients:   make(map[string]*client),
		done:      make(chan struct{}),
	}
}

// SocketPath returns the socket this server serves on.
func (s *Server) SocketPath() string {
	return s.cfg.SocketPath
}

// Start claims the pidfile, binds the socket, and begins serving. ctx
// bounds background work spawned for requests. Calling Start on a
// running server is a no-op.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return nil
	}
	if err := s.checkAndClaimPid(); err != nil {
		return err
	}
	// Safe to clear a leftover socket now that the pidfile is ours.
	os.Remove(s.cfg.SocketPath)

	listener, err := net.Listen("unix", s.cfg.SocketPath)
	if err != nil {
		os.Remove(s.cfg.PidPath)
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.SocketPath, err)
	}
	s.listener = listener
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.startedAt = time.Now()
	s.running = true

	go s.acceptLoop(listener)
	logging.Info("Daemon", "Listening on %s", s.cfg.SocketPath)
	return nil
}

// checkAndClaimPid refuses to start while another daemon owns the
// pidfile, and reclaims it when the recorded process is gone.
func (s *Server) checkAndClaimPid() error {
	if data, err := os.ReadFile(s.cfg.PidPath); err == nil {
		pidStr := strings.TrimSpace(string(data))
		if pid, err := strconv.Atoi(pidStr); err == nil && pid > 0 {
			if process, err := os.FindProcess(pid); err == nil {
				// FindProcess always succeeds on unix; signal 0
				// probes whether the process exists.
				if err := process.Signal(syscall.Signal(0)); err == nil {
					return fmt.Errorf("daemon already running with pid %d", pid)
				}
			}
		}
		logging.Info("Daemon", "Removing stale pidfile %s", s.cfg.PidPath)
		os.Remove(s.cfg.PidPath)
	}
	if err := os.WriteFile(s.cfg.PidPath, []byte(strconv.Itoa(os.Getpid())), 0o644); err != nil {
		return fmt.Errorf("failed to write pidfile: %w", err)
	}
	return nil
}

// Stop closes the listener, disconnects every client, and releases the
// socket and pidfile. The server cannot be restarted afterwards.
func (s *Server) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	listener := s.listener
	cancel := s.cancel
	s.mu.Unlock()

	close(s.done)
	cancel()
	if listener != nil {
		listener.Close()
	}

	s.clientsMu.Lock()
	for id, c := range s.clients {
		c.conn.Close()
		delete(s.clients, id)
	}
	s.clientsMu.Unlock()

	os.Remove(s.cfg.SocketPath)
	os.Remove(s.cfg.PidPath)
	logging.Info("Daemon", "Stopped")
	return nil
}

// SubscriberCount returns how many clients receive broadcasts.
func (s *Server) SubscriberCount() int {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	n := 0
	for _, c := range s.clients {
		if c.subscribed {
			n++
		}
	}
	return n
}

// Send implements engine.Sink: fan one flushed frame out to every
// subscribed client. It runs under the engine's lock, so it only
// enqueues and never blocks.
func (s *Server) Send(m engine.Message) error {
	data, err := encodeResponse(Response{Type: TypeFrame, OK: true, Payload: m})
	if err != nil {
		return fmt.Errorf("failed to encode frame: %w", err)
	}

	s.clientsMu.RLock()
	targets := make([]*client, 0, len(s.clients))
	for _, c := range s.clients {
		if c.subscribed {
			targets = append(targets, c)
		}
	}
	s.clientsMu.RUnlock()

	for _, c := range targets {
		c.enqueue(data)
	}
	logging.Debug("Daemon", "Frame %s fanned out to %d client(s)", m.Type, len(targets))
	return nil
}

func (s *Server) acceptLoop(listener net.Listener) {
	for {
		conn, err := listener.Accept()
		if err != nil {
			select {
			case <-s.done:
				return
			default:
			}
			logging.Debug("Daemon", "Accept failed: %v", err)
			continue
		}
		go s.handleClient(conn)
	}
}

// handleClient is the per-connection reader loop. One line in, one
// request dispatched; replies and pushes leave through the writer.
func (s *Server) handleClient(conn net.Conn) {
	c := &client{
		id:     uuid.NewString(),
		conn:   conn,
		outbox: make(chan []byte, outboxSize),
		done:   make(chan struct{}),
	}
	s.addClient(c)
	go c.writeLoop()
	defer s.removeClient(c)

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		var req Request
		if err := json.Unmarshal(scanner.Bytes(), &req); err != nil {
			logging.Debug("Daemon", "Client %s sent a malformed line: %v", c.shortID(), err)
			continue
		}
		s.dispatch(c, req)
	}
}

func (s *Server) dispatch(c *client, req Request) {
	switch req.Type {
	case RequestSubscribe:
		s.handleSubscribe(c, req)
	case RequestStatus:
		s.handleStatus(c)
	case RequestRefresh:
		s.handleRefresh(c)
	case RequestUpdate:
		s.handleUpdate(c, req)
	case RequestPing:
		s.respond(c, Response{Type: TypePong, OK: true})
	default:
		s.respond(c, Response{
			Type:  string(req.Type),
			OK:    false,
			Error: fmt.Sprintf("unknown request type %q", req.Type),
		})
	}
}

func (s *Server) handleSubscribe(c *client, req Request) {
	s.clientsMu.Lock()
	c.subscribed = true
	attached := 0
	for _, other := range s.clients {
		if other.subscribed {
			attached++
		}
	}
	s.clientsMu.Unlock()

	if req.ClientID != "" {
		logging.Info("Daemon", "Client %s subscribed as %q (%d attached)", c.shortID(), req.ClientID, attached)
	} else {
		logging.Info("Daemon", "Client %s subscribed (%d attached)", c.shortID(), attached)
	}
	s.respond(c, Response{
		Type:    string(RequestSubscribe),
		OK:      true,
		Payload: SubscribePayload{ClientID: c.id},
	})

	// A consumer attaching mid-run gets the full current state without
	// waiting for the next change.
	if frame := s.core.ProjectAll(); frame != nil {
		s.push(c, *frame)
	}
}

func (s *Server) handleStatus(c *client) {
	s.mu.Lock()
	startedAt := s.startedAt
	s.mu.Unlock()

	s.respond(c, Response{
		Type: string(RequestStatus),
		OK:   true,
		Payload: StatusPayload{
			Version:   s.cfg.Version,
			PID:       os.Getpid(),
			StartedAt: startedAt,
			Clients:   s.SubscriberCount(),
			Sections:  s.core.Snapshot(),
		},
	})
}

// handleRefresh acknowledges immediately and re-polls in the
// background; a forced full repaint follows once polling finishes.
func (s *Server) handleRefresh(c *client) {
	s.mu.Lock()
	ctx := s.ctx
	s.mu.Unlock()

	go func() {
		if s.refresher != nil {
			s.refresher.ForceAll(ctx)
		}
		s.core.Invalidate(engine.PriorityInteractive)
		s.core.Flush()
	}()
	s.respond(c, Response{Type: string(RequestRefresh), OK: true})
}

func (s *Server) handleUpdate(c *client, req Request) {
	var p UpdatePayload
	if err := DecodePayload(req.Payload, &p); err != nil {
		s.respond(c, Response{
			Type:  string(RequestUpdate),
			OK:    false,
			Error: fmt.Sprintf("invalid update payload: %v", err),
		})
		return
	}
	if p.Section == "" {
		s.respond(c, Response{Type: string(RequestUpdate), OK: false, Error: "section is required"})
		return
	}
	priority, err := engine.ParsePriority(p.Priority)
	if err != nil {
		logging.Warn("Daemon", "Client %s sent %v, using %s", c.shortID(), err, priority)
	}
	changed := s.core.Update(p.Section, p.Fields, priority)
	s.respond(c, Response{
		Type:    string(RequestUpdate),
		OK:      true,
		Payload: map[string]any{"changed": changed},
	})
}

func (s *Server) respond(c *client, resp Response) {
	data, err := encodeResponse(resp)
	if err != nil {
		logging.Error("Daemon", err, "Failed to encode response")
		return
	}
	c.enqueue(data)
}

func (s *Server) push(c *client, m engine.Message) {
	data, err := encodeResponse(Response{Type: TypeFrame, OK: true, Payload: m})
	if err != nil {
		logging.Error("Daemon", err, "Failed to encode frame")
		return
	}
	c.enqueue(data)
}

func (s *Server) addClient(c *client) {
	s.clientsMu.Lock()
	s.clients[c.id] = c
	s.clientsMu.Unlock()
}

func (s *Server) removeClient(c *client) {
	s.clientsMu.Lock()
	wasSubscribed := false
	if cur, ok := s.clients[c.id]; ok {
		wasSubscribed = cur.subscribed
		delete(s.clients, c.id)
	}
	s.clientsMu.Unlock()

	close(c.done)
	c.conn.Close()
	if wasSubscribed {
		logging.Info("Daemon", "Client %s detached", c.shortID())
	}
}

// encodeResponse renders one wire line, newline included, so a
// broadcast shares the same bytes across every client.
func encodeResponse(resp Response) ([]byte, error) {
	data, err := json.Marshal(resp)
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

func (c *client) shortID() string {
	if len(c.id) > 8 {
		return c.id[:8]
	}
	return c.id
}

// enqueue hands one encoded line to the writer without blocking.
func (c *client) enqueue(data []byte) {
	select {
	case c.outbox <- data:
	default:
		logging.Warn("Daemon", "Client %s is not keeping up, dropping a message", c.shortID())
	}
}

func (c *client) writeLoop() {
	for {
		select {
		case data := <-c.outbox:
			c.conn.SetWriteDeadline(time.Now().Add(time.Second))
			if _, err := c.conn.Write(data); err != nil {
				logging.Debug("Daemon", "Write to client %s failed: %v", c.shortID(), err)
			}
		case <-c.done:
			return
		}
	}
}
