package content

import (
	"encoding/json"
	"fmt"
)

// JSONMode edits the whole content object as one text blob. Invalid
// intermediate states stay in the text buffer so keystrokes are never
// lost, but only valid parses propagate through onChange.
type JSONMode struct {
	text     string
	parseErr error
	onChange func(map[string]any)
}

func NewJSONMode(obj map[string]any, onChange func(map[string]any)) (*JSONMode, error) {
	data, err := json.MarshalIndent(obj, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("serialize content object: %w", err)
	}
	return &JSONMode{text: string(data), onChange: onChange}, nil
}

func (j *JSONMode) Text() string { return j.text }

// Err returns the current inline parse error, nil when the text is valid.
func (j *JSONMode) Err() error { return j.parseErr }

// SetText replaces the buffer. Valid JSON objects propagate; anything
// else is retained with a parse error and no onChange call.
func (j *JSONMode) SetText(text string) {
	j.text = text

	var obj map[string]any
	if err := json.Unmarshal([]byte(text), &obj); err != nil {
		j.parseErr = fmt.Errorf("invalid JSON: %w", err)
		return
	}
	j.parseErr = nil
	if j.onChange != nil {
		j.onChange(obj)
	}
}

// Format pretty-prints the buffer in place. Formatting valid text never
// changes its parsed value; invalid text is left alone and the parse
// error returned.
func (j *JSONMode) Format() error {
	var obj map[string]any
	if err := json.Unmarshal([]byte(j.text), &obj); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	data, err := json.MarshalIndent(obj, "", "  ")
	if err != nil {
		return fmt.Errorf("format content object: %w", err)
	}
	j.text = string(data)
	j.parseErr = nil
	return nil
}
