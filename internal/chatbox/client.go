// Package chatbox delivers rendered messages to VRChat's chatbox over OSC.
// VRChat listens for OSC on UDP 9000 and expects /chatbox/input with three
// arguments: the text, a bool that bypasses the in-game keyboard, and a bool
// that triggers the notification sound.
package chatbox

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/hypebeast/go-osc/osc"
)

const (
	// InputAddress is the OSC address VRChat reads chatbox text from.
	InputAddress = "/chatbox/input"

	// MaxMessageRunes is VRChat's chatbox limit; the game silently drops
	// longer messages, so the client truncates instead.
	MaxMessageRunes = 144

	defaultWriteTimeout = 2 * time.Second
)

type Options struct {
	// Notify plays the in-game notification sound on every update.
	Notify bool
	// WriteTimeout bounds a single UDP write.
	WriteTimeout time.Duration
}

// Client sends chatbox updates to a single OSC destination. Sends are
// fire-and-forget: UDP gives no acknowledgment and the client never retries.
type Client struct {
	mu           sync.Mutex
	logger       *slog.Logger
	conn         *net.UDPConn
	dest         string
	notify       bool
	writeTimeout time.Duration
}

func NewClient(host string, port int, opts Options, logger *slog.Logger) (*Client, error) {
	dest := net.JoinHostPort(host, strconv.Itoa(port))
	addr, err := net.ResolveUDPAddr("udp", dest)
	if err != nil {
		return nil, fmt.Errorf("resolve chatbox destination %s: %w", dest, err)
	}
	conn, err := net.DialUDP("udp", nil, addr)
	if err != nil {
		return nil, fmt.Errorf("dial chatbox destination %s: %w", dest, err)
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = defaultWriteTimeout
	}
	return &Client{
		logger:       logger,
		conn:         conn,
		dest:         dest,
		notify:       opts.Notify,
		writeTimeout: opts.WriteTimeout,
	}, nil
}

func (c *Client) Destination() string {
	return c.dest
}

// Send transmits one chatbox update, truncated to the chatbox limit.
func (c *Client) Send(ctx context.Context, message string) error {
	if truncated := Truncate(message); truncated != message {
		c.logger.Debug("chatbox message truncated", "runes", len([]rune(message)))
		message = truncated
	}
	return c.send(ctx, message)
}

// Clear pushes an empty update so the last message does not linger in the
// chatbox after shutdown.
func (c *Client) Clear(ctx context.Context) error {
	return c.send(ctx, "")
}

func (c *Client) send(ctx context.Context, message string) error {
	msg := osc.NewMessage(InputAddress)
	msg.Append(message)
	msg.Append(true)
	msg.Append(c.notify)
	payload, err := msg.MarshalBinary()
	if err != nil {
		return fmt.Errorf("encode chatbox message: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return fmt.Errorf("chatbox client is closed")
	}
	deadline := time.Now().Add(c.writeTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := c.conn.SetWriteDeadline(deadline); err != nil {
		return fmt.Errorf("set write deadline: %w", err)
	}
	if _, err := c.conn.Write(payload); err != nil {
		return fmt.Errorf("send osc packet to %s: %w", c.dest, err)
	}
	return nil
}

func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}

// Truncate caps a message at the chatbox limit without splitting runes.
func Truncate(message string) string {
	if len(message) <= MaxMessageRunes {
		return message
	}
	runes := []rune(message)
	if len(runes) <= MaxMessageRunes {
		return message
	}
	return string(runes[:MaxMessageRunes])
}
