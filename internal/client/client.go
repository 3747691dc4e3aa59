// Package client is the request side of the companion socket protocol,
// used by the CLI commands and by consumers embedding the companion.
package client

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/B-Whitt/redhat-ai-workflow-sub002/internal/daemon"
)

const (
	dialAttempts = 5
	dialBackoff  = 100 * time.Millisecond
	replyTimeout = 5 * time.Second
)

// ErrClosed reports that the daemon ended the connection.
var ErrClosed = errors.New("daemon closed the connection")

// Client is one connection to the companion daemon. Methods must not be
// called concurrently; Subscribe consumes the connection.
type Client struct {
	conn    net.Conn
	scanner *bufio.Scanner
}

// Connect dials the daemon socket, retrying briefly so a caller racing
// daemon startup still attaches. An empty path uses the per-user
// default.
func Connect(socketPath string) (*Client, error) {
	if socketPath == "" {
		socketPath = daemon.SocketPath()
	}
	var conn net.Conn
	var err error
	for attempt := 0; attempt < dialAttempts; attempt++ {
		conn, err = net.Dial("unix", socketPath)
		if err == nil {
			break
		}
		time.Sleep(dialBackoff)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to daemon at %s: %w", socketPath, err)
	}
	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	return &Client{conn: conn, scanner: scanner}, nil
}

// Close hangs up.
func (c *Client) Close() error {
	return c.conn.Close()
}

// Do sends one request and returns its reply, skipping any pushed
// frames that arrive in between.
func (c *Client) Do(req daemon.Request) (daemon.Response, error) {
	if err := c.send(req); err != nil {
		return daemon.Response{}, err
	}
	for {
		resp, err := c.read(replyTimeout)
		if err != nil {
			return daemon.Response{}, err
		}
		if resp.Type == daemon.TypeFrame {
			continue
		}
		return resp, nil
	}
}

// Ping checks that the daemon answers.
func (c *Client) Ping() error {
	resp, err := c.Do(daemon.Request{Type: daemon.RequestPing})
	if err != nil {
		return err
	}
	if !resp.OK {
		return fmt.Errorf("ping failed: %s", resp.Error)
	}
	return nil
}

// Status fetches daemon metadata and the current section snapshot.
func (c *Client) Status() (daemon.StatusPayload, error) {
	var status daemon.StatusPayload
	resp, err := c.Do(daemon.Request{Type: daemon.RequestStatus})
	if err != nil {
		return status, err
	}
	if !resp.OK {
		return status, fmt.Errorf("status failed: %s", resp.Error)
	}
	if err := daemon.DecodePayload(resp.Payload, &status); err != nil {
		return status, err
	}
	return status, nil
}

// Refresh asks the daemon to re-poll every backend and repaint.
func (c *Client) Refresh() error {
	resp, err := c.Do(daemon.Request{Type: daemon.RequestRefresh})
	if err != nil {
		return err
	}
	if !resp.OK {
		return fmt.Errorf("refresh failed: %s", resp.Error)
	}
	return nil
}

// Update merges fields into one section at the named priority and
// reports whether the stored value changed.
func (c *Client) Update(section, priority string, fields map[string]any) (bool, error) {
	resp, err := c.Do(daemon.Request{Type: daemon.RequestUpdate, Payload: daemon.UpdatePayload{
		Section:  section,
		Priority: priority,
		Fields:   fields,
	}})
	if err != nil {
		return false, err
	}
	if !resp.OK {
		return false, fmt.Errorf("update rejected: %s", resp.Error)
	}
	var result struct {
		Changed bool `json:"changed"`
	}
	if err := daemon.DecodePayload(resp.Payload, &result); err != nil {
		return false, err
	}
	return result.Changed, nil
}

// Subscribe attaches to the push stream and invokes onFrame for every
// frame until ctx ends or the connection drops. The daemon sends a
// bootstrap frame first when it already holds state. The client cannot
// be reused for requests afterwards.
func (c *Client) Subscribe(ctx context.Context, clientID string, onFrame func(frame map[string]any)) error {
	if err := c.send(daemon.Request{Type: daemon.RequestSubscribe, ClientID: clientID}); err != nil {
		return err
	}
	resp, err := c.read(replyTimeout)
	if err != nil {
		return err
	}
	if !resp.OK {
		return fmt.Errorf("subscribe refused: %s", resp.Error)
	}

	// Frames are pushed whenever state changes, so reads block without
	// a deadline; cancellation interrupts them by expiring one. The
	// deadline is cleared here once, not per read, so a cancellation
	// landing mid-loop is never overwritten.
	c.conn.SetReadDeadline(time.Time{})
	watcherDone := make(chan struct{})
	defer close(watcherDone)
	go func() {
		select {
		case <-ctx.Done():
			c.conn.SetReadDeadline(time.Now())
		case <-watcherDone:
		}
	}()

	for {
		resp, err := c.read(0)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		if resp.Type != daemon.TypeFrame {
			continue
		}
		if frame, ok := resp.Payload.(map[string]any); ok {
			onFrame(frame)
		}
	}
}

func (c *Client) send(req daemon.Request) error {
	data, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}
	c.conn.SetWriteDeadline(time.Now().Add(time.Second))
	if _, err := c.conn.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	return nil
}

// read returns the next line. A zero timeout blocks until a line or a
// deadline set elsewhere interrupts the read.
func (c *Client) read(timeout time.Duration) (daemon.Response, error) {
	if timeout > 0 {
		c.conn.SetReadDeadline(time.Now().Add(timeout))
	}
	if !c.scanner.Scan() {
		if err := c.scanner.Err(); err != nil {
			return daemon.Response{}, fmt.Errorf("connection lost: %w", err)
		}
		return daemon.Response{}, ErrClosed
	}
	var resp daemon.Response
	if err := json.Unmarshal(c.scanner.Bytes(), &resp); err != nil {
		return daemon.Response{}, fmt.Errorf("malformed response: %w", err)
	}
	return resp, nil
}
