// Package scenario reads scenario files: an ordered list of decoded
// protocol requests and seat changes to replay against a seat.
package scenario

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	ErrUnknownOp    = errors.New("unknown op")
	ErrMissingField = errors.New("missing field")
	ErrInvalidValue = errors.New("invalid value")
)

// Scenario is a parsed scenario file.
type Scenario struct {
	Name  string `yaml:"name,omitempty"`
	Seat  string `yaml:"seat,omitempty"`
	Steps []Step `yaml:"steps"`
}

// Step is one request or seat change. Which fields are meaningful
// depends on Op.
type Step struct {
	Op string `yaml:"op"`

	ID          string `yaml:"id,omitempty"`
	Client      string `yaml:"client,omitempty"`
	Surface     string `yaml:"surface,omitempty"`
	Seat        string `yaml:"seat,omitempty"`
	Version     string `yaml:"version,omitempty"`
	InputMethod string `yaml:"input_method,omitempty"`

	Text   string `yaml:"text,omitempty"`
	Cursor uint32 `yaml:"cursor,omitempty"`
	Anchor uint32 `yaml:"anchor,omitempty"`
	Cause  string `yaml:"cause,omitempty"`

	Hints   uint32 `yaml:"hints,omitempty"`
	Purpose uint32 `yaml:"purpose,omitempty"`

	X      int32 `yaml:"x,omitempty"`
	Y      int32 `yaml:"y,omitempty"`
	Width  int32 `yaml:"width,omitempty"`
	Height int32 `yaml:"height,omitempty"`

	Serial uint32 `yaml:"serial,omitempty"`
	Begin  int32  `yaml:"begin,omitempty"`
	End    int32  `yaml:"end,omitempty"`
	Before uint32 `yaml:"before,omitempty"`
	After  uint32 `yaml:"after,omitempty"`

	Time  uint32 `yaml:"time,omitempty"`
	Key   uint32 `yaml:"key,omitempty"`
	State string `yaml:"state,omitempty"`

	Depressed uint32 `yaml:"depressed,omitempty"`
	Latched   uint32 `yaml:"latched,omitempty"`
	Locked    uint32 `yaml:"locked,omitempty"`
	Group     uint32 `yaml:"group,omitempty"`
}

func (s Step) String() string {
	if s.ID == "" {
		return s.Op
	}
	return s.Op + " " + s.ID
}

// required lists the fields each op needs, by yaml name.
var required = map[string][]string{
	"client.focus":       {"client", "surface"},
	"client.unfocus":     nil,
	"keyboard.add":       {"id"},
	"keyboard.key":       {"id", "state"},
	"keyboard.modifiers": {"id"},

	"text_input.create":           {"id", "client", "version"},
	"text_input.enable":           {"id"},
	"text_input.disable":          {"id"},
	"text_input.set_surrounding":  {"id"},
	"text_input.set_cause":        {"id", "cause"},
	"text_input.set_content_type": {"id"},
	"text_input.set_cursor_rect":  {"id"},
	"text_input.commit":           {"id"},
	"text_input.activate":         {"id", "surface"},
	"text_input.deactivate":       {"id"},
	"text_input.destroy":          {"id"},

	"input_method.create":             {"id", "client"},
	"input_method.commit_string":      {"id"},
	"input_method.preedit":            {"id"},
	"input_method.delete_surrounding": {"id"},
	"input_method.commit":             {"id"},
	"input_method.grab_keyboard":      {"id", "input_method"},
	"input_method.popup":              {"id", "input_method", "surface"},
	"input_method.destroy":            {"id"},

	"grab.release":  {"id"},
	"popup.destroy": {"id"},

	"virtual_keyboard.create":    {"id", "client"},
	"virtual_keyboard.key":       {"id", "state"},
	"virtual_keyboard.modifiers": {"id"},
	"virtual_keyboard.destroy":   {"id"},
}

// Ops returns every known op name, sorted.
func Ops() []string {
	ops := make([]string, 0, len(required))
	for op := range required {
		ops = append(ops, op)
	}
	slices.Sort(ops)
	return ops
}

// Validate checks that the op is known and its required fields are set.
func (s Step) Validate() error {
	fields, ok := required[s.Op]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownOp, s.Op)
	}
	for _, f := range fields {
		if s.field(f) == "" {
			return fmt.Errorf("%s: %w %q", s.Op, ErrMissingField, f)
		}
	}
	if s.Version != "" && s.Version != "v1" && s.Version != "v3" {
		return fmt.Errorf("%s: %w: version %q", s.Op, ErrInvalidValue, s.Version)
	}
	if s.State != "" && s.State != "pressed" && s.State != "released" {
		return fmt.Errorf("%s: %w: state %q", s.Op, ErrInvalidValue, s.State)
	}
	if s.Cause != "" && s.Cause != "input_method" && s.Cause != "other" {
		return fmt.Errorf("%s: %w: cause %q", s.Op, ErrInvalidValue, s.Cause)
	}
	return nil
}

func (s Step) field(name string) string {
	switch name {
	case "id":
		return s.ID
	case "client":
		return s.Client
	case "surface":
		return s.Surface
	case "version":
		return s.Version
	case "input_method":
		return s.InputMethod
	case "state":
		return s.State
	case "cause":
		return s.Cause
	}
	return ""
}

// Validate checks every step and reports the first failure with its
// index.
func (sc *Scenario) Validate() error {
	for i, step := range sc.Steps {
		if err := step.Validate(); err != nil {
			return fmt.Errorf("step %d: %w", i, err)
		}
	}
	return nil
}

// Parse decodes and validates a scenario.
func Parse(data []byte) (*Scenario, error) {
	var sc Scenario
	if err := decodeStrict(data, &sc); err != nil {
		return nil, fmt.Errorf("decode scenario: %w", err)
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

// Load reads and parses the scenario file at path.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	sc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if sc.Name == "" {
		sc.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return sc, nil
}

// Marshal encodes sc as YAML.
func Marshal(sc *Scenario) ([]byte, error) {
	return yaml.Marshal(sc)
}

// ParseStep builds a step from an op and key=value arguments, as typed
// on a command line. Values are resolved like plain YAML scalars.
func ParseStep(op string, args []string) (Step, error) {
	doc := &yaml.Node{Kind: yaml.MappingNode}
	add := func(key, value string) {
		doc.Content = append(doc.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: key},
			&yaml.Node{Kind: yaml.ScalarNode, Value: value},
		)
	}
	add("op", op)
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok || key == "" {
			return Step{}, fmt.Errorf("%w: argument %q is not key=value", ErrInvalidValue, arg)
		}
		add(key, value)
	}

	data, err := yaml.Marshal(doc)
	if err != nil {
		return Step{}, fmt.Errorf("decode step: %w", err)
	}
	step, err := DecodeStep(data)
	if err != nil {
		return Step{}, err
	}
	if err := step.Validate(); err != nil {
		return Step{}, err
	}
	return step, nil
}

// DecodeStep decodes a single YAML step without validating it. Keys
// that name no step field are rejected.
func DecodeStep(data []byte) (Step, error) {
	var step Step
	if err := decodeStrict(data, &step); err != nil {
		return Step{}, fmt.Errorf("decode step: %w", err)
	}
	return step, nil
}

// decodeStrict decodes data into v, rejecting unknown keys. Type errors,
// unknown keys included, wrap ErrInvalidValue.
func decodeStrict(data []byte, v any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	err := dec.Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	var typeErr *yaml.TypeError
	if errors.As(err, &typeErr) {
		return fmt.Errorf("%w: %w", ErrInvalidValue, err)
	}
	return err
}
