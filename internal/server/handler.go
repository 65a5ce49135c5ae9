package server

import (
	"context"

	"github.com/bnema/wayime/internal/ipc"
	"github.com/bnema/wayime/internal/logger"
	"github.com/bnema/wayime/internal/scenario"
)

// IPCHandler answers IPC requests by posting them to the event loop.
type IPCHandler struct {
	server *Server
}

var _ ipc.MessageHandler = (*IPCHandler)(nil)

func NewIPCHandler(s *Server) *IPCHandler {
	return &IPCHandler{server: s}
}

func (h *IPCHandler) HandleStatus(ctx context.Context) (*ipc.StatusResponse, error) {
	st, err := h.server.Status(ctx)
	if err != nil {
		return nil, err
	}
	return &ipc.StatusResponse{
		Seat:             st.Seat,
		KeyboardFocus:    st.KeyboardFocus,
		Keyboard:         st.Keyboard,
		FocusedTextInput: st.FocusedTextInput,
		InputMethod:      st.InputMethod,
		KeyboardGrab:     st.KeyboardGrab,
		TextInputs:       st.TextInputs,
		Popups:           st.Popups,
		VirtualKeyboards: st.VirtualKeyboards,
		Transcript:       st.Transcript,
		Objects:          st.Objects,
	}, nil
}

func (h *IPCHandler) HandleStep(ctx context.Context, step scenario.Step) (*ipc.StepResponse, error) {
	entries, err := h.server.Step(ctx, step)
	if err != nil {
		logger.Debug("Injected step failed", "step", step, "error", err)
		return nil, err
	}
	resp := &ipc.StepResponse{Events: make([]string, len(entries))}
	for i, e := range entries {
		resp.Events[i] = e.String()
	}
	return resp, nil
}

func (h *IPCHandler) HandleRelease(ctx context.Context) (bool, error) {
	var released bool
	err := h.server.Do(ctx, func() { released = h.server.ReleaseGrab() })
	return released, err
}
