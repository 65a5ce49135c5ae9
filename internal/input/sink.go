// Package input mirrors key events that reach the seat's default grab to
// the host, through a uinput keyboard or an external injection tool.
package input

import (
	"errors"
	"fmt"

	"github.com/bnema/wayime/internal/logger"
	"github.com/bnema/wayime/internal/seat"
)

var (
	// ErrSinkClosed is returned when operating on a closed sink
	ErrSinkClosed = errors.New("sink is closed")
	// ErrInvalidEvent is returned for events that cannot be injected
	ErrInvalidEvent = errors.New("invalid event")
	// ErrUnknownSink is returned for an unknown sink kind
	ErrUnknownSink = errors.New("unknown sink")
)

// Sink kinds accepted by NewSink.
const (
	SinkNone   = "none"
	SinkAuto   = "auto"
	SinkUInput = "uinput"
	SinkTool   = "tool"
)

// DefaultUInputPath is the uinput device node.
const DefaultUInputPath = "/dev/uinput"

// NewSink creates the sink named by kind. SinkNone returns a nil sink.
// SinkAuto tries uinput first and falls back to an external tool.
func NewSink(kind, uinputPath string) (seat.KeySink, error) {
	switch kind {
	case SinkNone, "":
		return nil, nil

	case SinkUInput:
		sink, err := newUInputSink(uinputPath)
		if err != nil {
			return nil, err
		}
		return sink, nil

	case SinkTool:
		sink, err := newToolSink()
		if err != nil {
			return nil, err
		}
		return sink, nil

	case SinkAuto:
		sink, err := newUInputSink(uinputPath)
		if err == nil {
			return sink, nil
		}
		logger.Debugf("uinput unavailable, trying external tools: %v", err)

		tool, toolErr := newToolSink()
		if toolErr == nil {
			return tool, nil
		}
		return nil, fmt.Errorf("failed to create key sink: uinput: %v, tool: %v", err, toolErr)

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSink, kind)
	}
}
