package model

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/cockroachdb/errors"
)

// StepKind names one kind of snapshot a Step can carry.
type StepKind string

const (
	KindArray StepKind = "array"
	KindList  StepKind = "list"
	KindTree  StepKind = "tree"
)

// Step is one immutable frame of an algorithm visualization. Each snapshot field is
// nil when the frame does not carry that kind.
type Step struct {
	Message string
	Array   *ArraySnapshot
	List    *ListSnapshot
	Tree    *TreeSnapshot
	Output  *Scalar
}

type ArraySnapshot struct {
	Values []Scalar
	// Highlight indexes into Values; indices out of range never match.
	Highlight []int
}

// ListSnapshot is either preformatted Text or a sequence of Items.
type ListSnapshot struct {
	Text         string
	Items        []Scalar
	Preformatted bool
}

type TreeSnapshot struct {
	Text string
}

// Kinds reports the snapshot kinds present, in render order.
func (s Step) Kinds() []StepKind {
	var kinds []StepKind
	if s.Array != nil {
		kinds = append(kinds, KindArray)
	}
	if s.List != nil {
		kinds = append(kinds, KindList)
	}
	if s.Tree != nil {
		kinds = append(kinds, KindTree)
	}
	return kinds
}

// IsZero reports whether the step carries nothing at all.
func (s Step) IsZero() bool {
	return s.Message == "" && s.Array == nil && s.List == nil && s.Tree == nil && s.Output == nil
}

// Scalar is a single display value from a step payload. Strings keep their text,
// other JSON values keep their literal form.
type Scalar struct {
	text string
	raw  json.RawMessage
}

func StringScalar(s string) Scalar {
	raw, _ := json.Marshal(s)
	return Scalar{text: s, raw: raw}
}

func NumberScalar(f float64) Scalar {
	text := strconv.FormatFloat(f, 'f', -1, 64)
	return Scalar{text: text, raw: json.RawMessage(text)}
}

func (v Scalar) String() string { return v.text }

// Float returns the numeric value when the scalar is a JSON number.
func (v Scalar) Float() (float64, bool) {
	if len(v.raw) == 0 || v.raw[0] == '"' {
		return 0, false
	}
	f, err := strconv.ParseFloat(string(v.raw), 64)
	return f, err == nil
}

func (v Scalar) MarshalJSON() ([]byte, error) {
	if len(v.raw) == 0 {
		return []byte("null"), nil
	}
	return v.raw, nil
}

func (v *Scalar) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	raw := append(json.RawMessage(nil), data...)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return errors.Wrap(err, "scalar")
		}
		*v = Scalar{text: s, raw: raw}
		return nil
	}
	var compact bytes.Buffer
	if err := json.Compact(&compact, data); err != nil {
		return errors.Wrap(err, "scalar")
	}
	*v = Scalar{text: compact.String(), raw: raw}
	return nil
}

// stepWire is the stored JSON shape of a step.
type stepWire struct {
	Message   string          `json:"message,omitempty"`
	Array     *[]Scalar       `json:"array,omitempty"`
	Highlight []int           `json:"highlight,omitempty"`
	List      json.RawMessage `json:"list,omitempty"`
	Tree      *string         `json:"tree,omitempty"`
	Output    json.RawMessage `json:"output,omitempty"`
}

func (s Step) MarshalJSON() ([]byte, error) {
	w := stepWire{Message: s.Message}
	if s.Array != nil {
		values := s.Array.Values
		if values == nil {
			values = []Scalar{}
		}
		w.Array = &values
		w.Highlight = s.Array.Highlight
	}
	if s.List != nil {
		var err error
		if s.List.Preformatted {
			w.List, err = json.Marshal(s.List.Text)
		} else {
			items := s.List.Items
			if items == nil {
				items = []Scalar{}
			}
			w.List, err = json.Marshal(items)
		}
		if err != nil {
			return nil, err
		}
	}
	if s.Tree != nil {
		w.Tree = &s.Tree.Text
	}
	if s.Output != nil {
		w.Output, _ = s.Output.MarshalJSON()
	}
	return json.Marshal(w)
}

func (s *Step) UnmarshalJSON(data []byte) error {
	var w struct {
		Message   *string         `json:"message"`
		Array     *[]Scalar       `json:"array"`
		Highlight []int           `json:"highlight"`
		List      json.RawMessage `json:"list"`
		Tree      *string         `json:"tree"`
		Output    json.RawMessage `json:"output"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return errors.Wrap(err, "step")
	}
	*s = Step{}
	if w.Message != nil {
		s.Message = *w.Message
	}
	if w.Array != nil {
		s.Array = &ArraySnapshot{Values: *w.Array, Highlight: w.Highlight}
	}
	if list := bytes.TrimSpace(w.List); len(list) > 0 && !bytes.Equal(list, []byte("null")) {
		switch list[0] {
		case '"':
			var text string
			if err := json.Unmarshal(list, &text); err != nil {
				return errors.Wrap(err, "step list")
			}
			s.List = &ListSnapshot{Text: text, Preformatted: true}
		case '[':
			var items []Scalar
			if err := json.Unmarshal(list, &items); err != nil {
				return errors.Wrap(err, "step list")
			}
			s.List = &ListSnapshot{Items: items}
		default:
			// Anything else is not a renderable list; ignore it like other unknown hints.
		}
	}
	if w.Tree != nil {
		s.Tree = &TreeSnapshot{Text: *w.Tree}
	}
	if out := bytes.TrimSpace(w.Output); len(out) > 0 && !bytes.Equal(out, []byte("null")) {
		var v Scalar
		if err := v.UnmarshalJSON(out); err != nil {
			return errors.Wrap(err, "step output")
		}
		s.Output = &v
	}
	return nil
}
