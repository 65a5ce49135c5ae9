package input

import (
	"bytes"
	"fmt"
	"os/exec"
	"strconv"
	"sync"

	"github.com/bnema/wayime/internal/ime"
	"github.com/bnema/wayime/internal/seat"
)

// runner executes tool with args, feeding it stdin.
type runner func(tool string, args []string, stdin string) error

// toolSink injects keys through dotool or ydotool.
type toolSink struct {
	tool   string
	run    runner
	mu     sync.Mutex
	closed bool
}

var _ seat.KeySink = (*toolSink)(nil)

var injectionTools = []string{"dotool", "ydotool"}

func newToolSink() (*toolSink, error) {
	for _, tool := range injectionTools {
		if _, err := exec.LookPath(tool); err == nil {
			return &toolSink{tool: tool, run: execTool}, nil
		}
	}
	return nil, fmt.Errorf("no input tool found (tried: %v)", injectionTools)
}

func (s *toolSink) Key(ev ime.KeyEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSinkClosed
	}

	args, stdin, err := s.command(ev)
	if err != nil {
		return err
	}
	return s.run(s.tool, args, stdin)
}

// command builds the invocation injecting ev. dotool reads actions on
// stdin; ydotool takes "code:state" arguments.
func (s *toolSink) command(ev ime.KeyEvent) ([]string, string, error) {
	if ev.Key == 0 {
		return nil, "", fmt.Errorf("%w: key code 0", ErrInvalidEvent)
	}
	if ev.State != ime.KeyPressed && ev.State != ime.KeyReleased {
		return nil, "", fmt.Errorf("%w: key state %d", ErrInvalidEvent, ev.State)
	}

	switch s.tool {
	case "dotool":
		action := "keyup"
		if ev.State == ime.KeyPressed {
			action = "keydown"
		}
		return nil, fmt.Sprintf("%s k:%d\n", action, ev.Key), nil
	case "ydotool":
		return []string{"key", strconv.FormatUint(uint64(ev.Key), 10) + ":" + strconv.Itoa(int(ev.State))}, "", nil
	default:
		return nil, "", fmt.Errorf("unsupported tool %q", s.tool)
	}
}

func (s *toolSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	return nil
}

func execTool(tool string, args []string, stdin string) error {
	// #nosec G204 - tool is one of injectionTools
	cmd := exec.Command(tool, args...)
	if stdin != "" {
		cmd.Stdin = bytes.NewBufferString(stdin)
	}
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to execute %s: %w", tool, err)
	}
	return nil
}
