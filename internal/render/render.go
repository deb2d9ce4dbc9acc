// Package render formats a single visualization step as terminal text.
package render

import (
	"strings"

	"algoprep/internal/domain/model"

	"github.com/guptarohit/asciigraph"
)

const (
	listSeparator = " -> "
	listSentinel  = "null"
)

// Frame is the rendered text of one step. Empty fields are omitted from Lines.
type Frame struct {
	Prompt string `json:"prompt"`
	Array  string `json:"array,omitempty"`
	List   string `json:"list,omitempty"`
	Tree   string `json:"tree,omitempty"`
	Output string `json:"output,omitempty"`
}

// Render is pure and total: absent fields render nothing and the prompt line is
// always present.
func Render(step model.Step) Frame {
	f := Frame{Prompt: "$ " + step.Message}
	for _, kind := range step.Kinds() {
		switch kind {
		case model.KindArray:
			f.Array = Array(step.Array)
		case model.KindList:
			f.List = List(step.List)
		case model.KindTree:
			f.Tree = step.Tree.Text
		}
	}
	if step.Output != nil {
		f.Output = "output: " + step.Output.String()
	}
	return f
}

// Array renders values as "[ 1 [2] 3 ]", wrapping highlighted indices.
func Array(a *model.ArraySnapshot) string {
	if a == nil {
		return ""
	}
	if len(a.Values) == 0 {
		return "[ ]"
	}
	hl := make(map[int]bool, len(a.Highlight))
	for _, i := range a.Highlight {
		hl[i] = true
	}
	parts := make([]string, len(a.Values))
	for i, v := range a.Values {
		if hl[i] {
			parts[i] = "[" + v.String() + "]"
		} else {
			parts[i] = v.String()
		}
	}
	return "[ " + strings.Join(parts, " ") + " ]"
}

// List passes preformatted text through and joins items with an arrow, ending in
// the null sentinel.
func List(l *model.ListSnapshot) string {
	if l == nil {
		return ""
	}
	if l.Preformatted {
		return l.Text
	}
	parts := make([]string, 0, len(l.Items)+1)
	for _, item := range l.Items {
		parts = append(parts, item.String())
	}
	parts = append(parts, listSentinel)
	return strings.Join(parts, listSeparator)
}

func (f Frame) Lines() []string {
	lines := []string{f.Prompt}
	for _, s := range []string{f.Array, f.List, f.Tree, f.Output} {
		if s != "" {
			lines = append(lines, s)
		}
	}
	return lines
}

func (f Frame) String() string {
	return strings.Join(f.Lines(), "\n")
}

// Frames renders every step of a sequence in order.
func Frames(steps []model.Step) []Frame {
	out := make([]Frame, len(steps))
	for i, s := range steps {
		out[i] = Render(s)
	}
	return out
}

// Plot draws the numeric values of the step's array as an ASCII chart. It returns
// "" when the step has no array or any value is not a number.
func Plot(step model.Step, height int) string {
	if step.Array == nil || len(step.Array.Values) == 0 {
		return ""
	}
	data := make([]float64, len(step.Array.Values))
	for i, v := range step.Array.Values {
		f, ok := v.Float()
		if !ok {
			return ""
		}
		data[i] = f
	}
	if height < 1 {
		height = 1
	}
	return asciigraph.Plot(data, asciigraph.Height(height))
}
