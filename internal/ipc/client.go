package ipc

import (
	"errors"
	"fmt"
	"net"
	"syscall"
	"time"

	"github.com/bnema/wayime/internal/logger"
	"github.com/bnema/wayime/internal/scenario"
)

// ErrServerNotRunning is returned when no server listens on the socket.
var ErrServerNotRunning = errors.New("wayime server is not running")

// Client handles IPC communication with a running wayime server
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient creates a client for socketPath, or for the default path when
// socketPath is empty.
func NewClient(socketPath string) (*Client, error) {
	if socketPath == "" {
		path, err := GetSocketPath()
		if err != nil {
			return nil, fmt.Errorf("failed to get socket path: %w", err)
		}
		socketPath = path
	}

	return &Client{
		socketPath: socketPath,
		timeout:    5 * time.Second,
	}, nil
}

// NewClientWithTimeout creates a new IPC client with custom timeout
func NewClientWithTimeout(socketPath string, timeout time.Duration) (*Client, error) {
	client, err := NewClient(socketPath)
	if err != nil {
		return nil, err
	}
	client.timeout = timeout
	return client, nil
}

// SendStatus queries the server's state.
func (c *Client) SendStatus() (*StatusResponse, error) {
	response, err := c.sendMessage(NewStatusMessage())
	if err != nil {
		return nil, err
	}

	switch response.Type {
	case MessageTypeStatusResponse:
		return GetStatusResponse(response)
	case MessageTypeError:
		return nil, serverError(response)
	default:
		return nil, fmt.Errorf("unexpected response type: %s", response.Type)
	}
}

// SendStep injects step into the server and returns the events it
// produced.
func (c *Client) SendStep(step scenario.Step) (*StepResponse, error) {
	msg, err := NewStepMessage(step)
	if err != nil {
		return nil, fmt.Errorf("failed to create step message: %w", err)
	}

	response, err := c.sendMessage(msg)
	if err != nil {
		return nil, err
	}

	switch response.Type {
	case MessageTypeStepResponse:
		return GetStepResponse(response)
	case MessageTypeError:
		return nil, serverError(response)
	default:
		return nil, fmt.Errorf("unexpected response type: %s", response.Type)
	}
}

// SendRelease asks the server to end the active keyboard grab. It
// reports whether a grab was released.
func (c *Client) SendRelease() (bool, error) {
	response, err := c.sendMessage(NewReleaseMessage())
	if err != nil {
		return false, err
	}

	switch response.Type {
	case MessageTypeReleaseResponse:
		return GetReleaseResponse(response)
	case MessageTypeError:
		return false, serverError(response)
	default:
		return false, fmt.Errorf("unexpected response type: %s", response.Type)
	}
}

// IsRunning checks if a server answers on the socket.
func (c *Client) IsRunning() bool {
	_, err := c.SendStatus()
	return err == nil
}

func (c *Client) sendMessage(msg *Message) (*Message, error) {
	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		if isNotListening(err) {
			return nil, ErrServerNotRunning
		}
		return nil, fmt.Errorf("failed to connect to wayime: %w", err)
	}
	defer func() {
		if err := conn.Close(); err != nil {
			logger.Errorf("Failed to close IPC connection: %v", err)
		}
	}()

	if err := conn.SetDeadline(time.Now().Add(c.timeout)); err != nil {
		logger.Warnf("Failed to set connection deadline: %v", err)
	}

	if err := writeMessage(conn, msg); err != nil {
		return nil, fmt.Errorf("failed to send message: %w", err)
	}

	response, err := readMessage(conn)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	return response, nil
}

func serverError(msg *Message) error {
	text, _ := GetError(msg)
	return fmt.Errorf("server error: %s", text)
}

// isNotListening reports whether dialing failed because nothing listens
// on the socket.
func isNotListening(err error) bool {
	return errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ENOENT)
}
