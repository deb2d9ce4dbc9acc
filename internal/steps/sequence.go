// Package steps holds the read-only step sequences the playback engine walks.
package steps

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"algoprep/internal/domain/model"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

// Sequence is an immutable, 0-indexed list of steps. The zero value is an empty
// sequence.
type Sequence struct {
	steps []model.Step
}

// New copies steps so later changes to the caller's slice are not observed.
func New(steps []model.Step) Sequence {
	if len(steps) == 0 {
		return Sequence{}
	}
	return Sequence{steps: append([]model.Step(nil), steps...)}
}

func (s Sequence) Len() int { return len(s.steps) }

// At returns the step at i, or the zero Step and false when i is out of range.
func (s Sequence) At(i int) (model.Step, bool) {
	if i < 0 || i >= len(s.steps) {
		return model.Step{}, false
	}
	return s.steps[i], true
}

// Steps returns a copy of the underlying steps.
func (s Sequence) Steps() []model.Step {
	return append([]model.Step(nil), s.steps...)
}

// Decode parses a JSON array of steps.
func Decode(data []byte) (Sequence, error) {
	var raw []model.Step
	if err := json.Unmarshal(data, &raw); err != nil {
		return Sequence{}, errors.Wrap(err, "decode steps")
	}
	return New(raw), nil
}

// DecodeYAML parses a YAML list of steps. The document is normalised to JSON so the
// list-as-string-or-items handling lives in one place.
func DecodeYAML(data []byte) (Sequence, error) {
	var doc interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Sequence{}, errors.Wrap(err, "decode yaml steps")
	}
	if doc == nil {
		return Sequence{}, nil
	}
	// A wrapping {steps: [...]} document is accepted as well as a bare list.
	if m, ok := doc.(map[string]interface{}); ok {
		inner, ok := m["steps"]
		if !ok {
			return Sequence{}, errors.New("yaml steps: expected a list or a 'steps' key")
		}
		doc = inner
	}
	asJSON, err := json.Marshal(doc)
	if err != nil {
		return Sequence{}, errors.Wrap(err, "normalise yaml steps")
	}
	return Decode(asJSON)
}

// LoadFile reads a .json, .yaml or .yml step file.
func LoadFile(path string) (Sequence, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Sequence{}, errors.Wrapf(err, "read steps file %s", path)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return DecodeYAML(data)
	default:
		return Decode(data)
	}
}
