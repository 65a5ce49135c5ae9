package ipc

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"os/user"
	"path/filepath"
	"sync"

	"github.com/bnema/wayime/internal/logger"
	"github.com/bnema/wayime/internal/scenario"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// maxMessageSize bounds a single frame.
const maxMessageSize = 1 << 20

// SocketServer handles incoming IPC connections
type SocketServer struct {
	mu         sync.Mutex
	listener   net.Listener
	socketPath string
	handler    MessageHandler
	wg         sync.WaitGroup
	cancel     context.CancelFunc
	running    bool
}

// MessageHandler answers the requests of IPC clients.
type MessageHandler interface {
	HandleStatus(ctx context.Context) (*StatusResponse, error)
	HandleStep(ctx context.Context, step scenario.Step) (*StepResponse, error)
	HandleRelease(ctx context.Context) (bool, error)
}

// NewSocketServer creates a socket server listening on socketPath, or on
// the default path when socketPath is empty.
func NewSocketServer(handler MessageHandler, socketPath string) (*SocketServer, error) {
	if socketPath == "" {
		path, err := GetSocketPath()
		if err != nil {
			return nil, fmt.Errorf("failed to get socket path: %w", err)
		}
		socketPath = path
	}

	return &SocketServer{
		socketPath: socketPath,
		handler:    handler,
	}, nil
}

func (s *SocketServer) SocketPath() string {
	return s.socketPath
}

// Start starts the socket server
func (s *SocketServer) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}

	// Remove a stale socket left by a previous run
	if err := os.RemoveAll(s.socketPath); err != nil {
		return fmt.Errorf("failed to remove existing socket: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.socketPath), 0755); err != nil {
		return fmt.Errorf("failed to create socket directory: %w", err)
	}

	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create socket listener: %w", err)
	}

	// User only
	if err := os.Chmod(s.socketPath, 0600); err != nil {
		listener.Close()
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	s.listener = listener
	s.running = true

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	s.wg.Add(1)
	go s.acceptConnections(ctx)

	logger.Infof("IPC socket server started at %s", s.socketPath)
	return nil
}

// Stop stops the socket server
func (s *SocketServer) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	s.running = false
	if s.cancel != nil {
		s.cancel()
	}

	if s.listener != nil {
		s.listener.Close()
	}

	s.wg.Wait()

	os.RemoveAll(s.socketPath)

	logger.Info("IPC socket server stopped")
}

func (s *SocketServer) acceptConnections(ctx context.Context) {
	defer s.wg.Done()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return
			default:
			}
			if errors.Is(err, net.ErrClosed) {
				return
			}
			logger.Errorf("Failed to accept connection: %v", err)
			continue
		}

		s.wg.Add(1)
		go s.handleConnection(ctx, conn)
	}
}

func (s *SocketServer) handleConnection(ctx context.Context, conn net.Conn) {
	defer s.wg.Done()
	defer conn.Close()

	// Unblock the read below when the server stops.
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	logger.Debug("New IPC connection established")

	for {
		msg, err := readMessage(conn)
		if err != nil {
			logger.Debugf("Connection closed or read error: %v", err)
			return
		}

		response := s.handleMessage(ctx, msg)
		if err := writeMessage(conn, response); err != nil {
			logger.Errorf("Failed to send response: %v", err)
			return
		}
	}
}

// handleMessage processes a single message and returns a response
func (s *SocketServer) handleMessage(ctx context.Context, msg *Message) *Message {
	switch msg.Type {
	case MessageTypeStatus:
		st, err := s.handler.HandleStatus(ctx)
		if err != nil {
			return NewErrorMessage(err.Error())
		}
		response, err := NewStatusResponseMessage(st)
		if err != nil {
			return NewErrorMessage(err.Error())
		}
		return response

	case MessageTypeStep:
		step, err := GetStep(msg)
		if err != nil {
			return NewErrorMessage(fmt.Sprintf("Invalid step: %v", err))
		}
		resp, err := s.handler.HandleStep(ctx, step)
		if err != nil {
			return NewErrorMessage(err.Error())
		}
		response, err := NewStepResponseMessage(resp)
		if err != nil {
			return NewErrorMessage(err.Error())
		}
		return response

	case MessageTypeRelease:
		released, err := s.handler.HandleRelease(ctx)
		if err != nil {
			return NewErrorMessage(err.Error())
		}
		return NewReleaseResponseMessage(released)

	default:
		return NewErrorMessage(fmt.Sprintf("Unknown message type: %s", msg.Type))
	}
}

// readMessage reads one length-prefixed frame.
func readMessage(r io.Reader) (*Message, error) {
	var length uint32
	if err := binary.Read(r, binary.BigEndian, &length); err != nil {
		return nil, fmt.Errorf("failed to read message length: %w", err)
	}
	if length > maxMessageSize {
		return nil, fmt.Errorf("message of %d bytes exceeds limit", length)
	}

	data := make([]byte, length)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, fmt.Errorf("failed to read message data: %w", err)
	}

	var envelope structpb.Struct
	if err := proto.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("failed to unmarshal message: %w", err)
	}
	return messageFromStruct(&envelope)
}

// writeMessage writes one length-prefixed frame.
func writeMessage(w io.Writer, msg *Message) error {
	data, err := proto.Marshal(msg.toStruct())
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	length := uint32(len(data)) //nolint:gosec // bounded by maxMessageSize on read
	if err := binary.Write(w, binary.BigEndian, length); err != nil {
		return fmt.Errorf("failed to write message length: %w", err)
	}

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write message data: %w", err)
	}

	return nil
}

// GetSocketPath returns the default socket path:
// $XDG_RUNTIME_DIR/wayime-{username}.sock, or /tmp when the runtime
// directory is not set.
func GetSocketPath() (string, error) {
	currentUser, err := user.Current()
	if err != nil {
		return "", fmt.Errorf("failed to get current user: %w", err)
	}

	dir := os.Getenv("XDG_RUNTIME_DIR")
	if dir == "" {
		dir = "/tmp"
	}
	return filepath.Join(dir, fmt.Sprintf("wayime-%s.sock", currentUser.Username)), nil
}
