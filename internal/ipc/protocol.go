package ipc

import (
	"fmt"

	"github.com/bnema/wayime/internal/scenario"
	"google.golang.org/protobuf/types/known/structpb"
	"gopkg.in/yaml.v3"
)

// MessageType tells what a message carries.
type MessageType string

const (
	MessageTypeStatus          MessageType = "status"
	MessageTypeStep            MessageType = "step"
	MessageTypeRelease         MessageType = "release"
	MessageTypeStatusResponse  MessageType = "status_response"
	MessageTypeStepResponse    MessageType = "step_response"
	MessageTypeReleaseResponse MessageType = "release_response"
	MessageTypeError           MessageType = "error"
)

// Message is one IPC frame: a type and a free-form payload. On the wire
// it is a protobuf Struct with "type" and "payload" fields.
type Message struct {
	Type    MessageType
	Payload *structpb.Struct
}

// StatusResponse describes a running server.
type StatusResponse struct {
	Seat             string
	KeyboardFocus    string
	Keyboard         string
	FocusedTextInput string
	InputMethod      string
	KeyboardGrab     string
	TextInputs       int
	Popups           int
	VirtualKeyboards int
	Transcript       int
	Objects          map[string]int
}

// StepResponse lists the events a step produced.
type StepResponse struct {
	Events []string
}

func (m *Message) toStruct() *structpb.Struct {
	payload := m.Payload
	if payload == nil {
		payload = &structpb.Struct{Fields: map[string]*structpb.Value{}}
	}
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"type":    structpb.NewStringValue(string(m.Type)),
		"payload": structpb.NewStructValue(payload),
	}}
}

func messageFromStruct(s *structpb.Struct) (*Message, error) {
	typ := s.GetFields()["type"].GetStringValue()
	if typ == "" {
		return nil, fmt.Errorf("message has no type")
	}
	return &Message{
		Type:    MessageType(typ),
		Payload: s.GetFields()["payload"].GetStructValue(),
	}, nil
}

// NewStatusMessage creates a status query.
func NewStatusMessage() *Message {
	return &Message{Type: MessageTypeStatus}
}

// NewReleaseMessage asks the server to end the active keyboard grab.
func NewReleaseMessage() *Message {
	return &Message{Type: MessageTypeRelease}
}

// NewStepMessage creates a step injection message.
func NewStepMessage(step scenario.Step) (*Message, error) {
	// Steps travel with their scenario field names.
	data, err := yaml.Marshal(step)
	if err != nil {
		return nil, fmt.Errorf("encode step: %w", err)
	}
	var fields map[string]any
	if err := yaml.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("encode step: %w", err)
	}
	payload, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, fmt.Errorf("encode step: %w", err)
	}
	return &Message{Type: MessageTypeStep, Payload: payload}, nil
}

// GetStep extracts the step of a step message.
func GetStep(msg *Message) (scenario.Step, error) {
	if msg.Type != MessageTypeStep {
		return scenario.Step{}, fmt.Errorf("message is not a step")
	}
	if msg.Payload == nil {
		return scenario.Step{}, fmt.Errorf("step message has no payload")
	}
	data, err := yaml.Marshal(msg.Payload.AsMap())
	if err != nil {
		return scenario.Step{}, fmt.Errorf("decode step: %w", err)
	}
	return scenario.DecodeStep(data)
}

// NewStatusResponseMessage wraps a status response.
func NewStatusResponseMessage(st *StatusResponse) (*Message, error) {
	objects := make(map[string]any, len(st.Objects))
	for kind, n := range st.Objects {
		objects[kind] = n
	}
	payload, err := structpb.NewStruct(map[string]any{
		"seat":               st.Seat,
		"keyboard_focus":     st.KeyboardFocus,
		"keyboard":           st.Keyboard,
		"focused_text_input": st.FocusedTextInput,
		"input_method":       st.InputMethod,
		"keyboard_grab":      st.KeyboardGrab,
		"text_inputs":        st.TextInputs,
		"popups":             st.Popups,
		"virtual_keyboards":  st.VirtualKeyboards,
		"transcript":         st.Transcript,
		"objects":            objects,
	})
	if err != nil {
		return nil, fmt.Errorf("encode status: %w", err)
	}
	return &Message{Type: MessageTypeStatusResponse, Payload: payload}, nil
}

// GetStatusResponse extracts a status response.
func GetStatusResponse(msg *Message) (*StatusResponse, error) {
	if msg.Type != MessageTypeStatusResponse {
		return nil, fmt.Errorf("message is not a status response")
	}
	f := msg.Payload.GetFields()
	st := &StatusResponse{
		Seat:             f["seat"].GetStringValue(),
		KeyboardFocus:    f["keyboard_focus"].GetStringValue(),
		Keyboard:         f["keyboard"].GetStringValue(),
		FocusedTextInput: f["focused_text_input"].GetStringValue(),
		InputMethod:      f["input_method"].GetStringValue(),
		KeyboardGrab:     f["keyboard_grab"].GetStringValue(),
		TextInputs:       int(f["text_inputs"].GetNumberValue()),
		Popups:           int(f["popups"].GetNumberValue()),
		VirtualKeyboards: int(f["virtual_keyboards"].GetNumberValue()),
		Transcript:       int(f["transcript"].GetNumberValue()),
		Objects:          make(map[string]int),
	}
	for kind, v := range f["objects"].GetStructValue().GetFields() {
		st.Objects[kind] = int(v.GetNumberValue())
	}
	return st, nil
}

// NewStepResponseMessage wraps the events produced by a step.
func NewStepResponseMessage(resp *StepResponse) (*Message, error) {
	events := make([]any, len(resp.Events))
	for i, e := range resp.Events {
		events[i] = e
	}
	payload, err := structpb.NewStruct(map[string]any{"events": events})
	if err != nil {
		return nil, fmt.Errorf("encode step response: %w", err)
	}
	return &Message{Type: MessageTypeStepResponse, Payload: payload}, nil
}

// GetStepResponse extracts a step response.
func GetStepResponse(msg *Message) (*StepResponse, error) {
	if msg.Type != MessageTypeStepResponse {
		return nil, fmt.Errorf("message is not a step response")
	}
	resp := &StepResponse{}
	for _, v := range msg.Payload.GetFields()["events"].GetListValue().GetValues() {
		resp.Events = append(resp.Events, v.GetStringValue())
	}
	return resp, nil
}

// NewReleaseResponseMessage reports whether a grab was released.
func NewReleaseResponseMessage(released bool) *Message {
	return &Message{
		Type: MessageTypeReleaseResponse,
		Payload: &structpb.Struct{Fields: map[string]*structpb.Value{
			"released": structpb.NewBoolValue(released),
		}},
	}
}

// GetReleaseResponse extracts whether a grab was released.
func GetReleaseResponse(msg *Message) (bool, error) {
	if msg.Type != MessageTypeReleaseResponse {
		return false, fmt.Errorf("message is not a release response")
	}
	return msg.Payload.GetFields()["released"].GetBoolValue(), nil
}

// NewErrorMessage creates an error response.
func NewErrorMessage(errMsg string) *Message {
	return &Message{
		Type: MessageTypeError,
		Payload: &structpb.Struct{Fields: map[string]*structpb.Value{
			"error": structpb.NewStringValue(errMsg),
		}},
	}
}

// GetError extracts the text of an error response.
func GetError(msg *Message) (string, error) {
	if msg.Type != MessageTypeError {
		return "", fmt.Errorf("message is not an error response")
	}
	return msg.Payload.GetFields()["error"].GetStringValue(), nil
}
