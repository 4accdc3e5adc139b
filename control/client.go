// SPDX-License-Identifier: EPL-2.0

package control

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"strings"
	"sync"
)

// Client sends commands to a Server.
type Client struct {
	c net.Conn
	r *bufio.Reader

	// OnEvent receives the JSON of EVENT lines read while waiting for a
	// reply. It may be nil.
	OnEvent func(payload string)

	mtx sync.Mutex
}

// Dial connects to a control server, e.g. Dial(ctx, "unix", path).
func Dial(ctx context.Context, network, addr string) (*Client, error) {
	var d net.Dialer
	c, err := d.DialContext(ctx, network, addr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	return NewClient(c), nil
}

func NewClient(c net.Conn) *Client {
	return &Client{c: c, r: bufio.NewReader(c)}
}

// Do sends one command line and returns the reply. "ERR" replies are
// returned as errors wrapping ErrRemote.
func (c *Client) Do(line string) (string, error) {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	if _, err := c.c.Write([]byte(strings.TrimSpace(line) + "\n")); err != nil {
		return "", fmt.Errorf("send: %w", err)
	}

	for {
		reply, err := c.r.ReadString('\n')
		if err != nil {
			return "", fmt.Errorf("receive: %w", err)
		}
		reply = strings.TrimRight(reply, "\r\n")

		if payload, ok := strings.CutPrefix(reply, "EVENT "); ok {
			if c.OnEvent != nil {
				c.OnEvent(payload)
			}
			continue
		}
		if msg, ok := strings.CutPrefix(reply, "ERR "); ok {
			return "", fmt.Errorf("%w: %s", ErrRemote, msg)
		}
		return reply, nil
	}
}

func (c *Client) Close() error { return c.c.Close() }
