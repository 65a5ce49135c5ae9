// Package protocols implements the compositor side of text-input-v1,
// text-input-v3, input-method-v2 and virtual-keyboard-v1 as in-memory
// objects. Requests are plain method calls; outgoing events are written
// to a transcript.
package protocols

import "github.com/bnema/wayime/internal/ime"

// Client is a connected protocol client.
type Client struct {
	name string
}

func NewClient(name string) *Client {
	return &Client{name: name}
}

func (c *Client) Name() string {
	return c.name
}

func (c *Client) String() string {
	return c.name
}

// Surface is a client surface that can hold keyboard focus.
type Surface struct {
	id     string
	client *Client
}

func NewSurface(id string, client *Client) *Surface {
	return &Surface{id: id, client: client}
}

func (s *Surface) ID() string {
	return s.id
}

func (s *Surface) Client() ime.Client {
	return s.client
}

func (s *Surface) String() string {
	return s.id
}
