package content

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Editor is the structured (per-field) edit mode. Every mutation rebuilds
// the whole object from the in-memory field list and hands it to
// onChange; callers never receive partial patches.
type Editor struct {
	fields   []Field
	onChange func(map[string]any)
}

func NewEditor(obj map[string]any, onChange func(map[string]any)) *Editor {
	return &Editor{fields: FieldsOf(obj), onChange: onChange}
}

// Reset re-derives the field list from a new content object, discarding
// in-progress state. Called whenever the source object changes.
func (e *Editor) Reset(obj map[string]any) {
	e.fields = FieldsOf(obj)
}

func (e *Editor) Fields() []Field {
	out := make([]Field, len(e.fields))
	copy(out, e.fields)
	return out
}

// Object reconstructs the current content object.
func (e *Editor) Object() map[string]any {
	return Rebuild(e.fields)
}

func (e *Editor) SetValue(key string, value any) error {
	for i := range e.fields {
		if e.fields[i].Key != key {
			continue
		}
		e.fields[i].Value = value
		e.fields[i].Kind = InferKind(value)
		e.emit()
		return nil
	}
	return fmt.Errorf("no field %q", key)
}

// AddField appends a new key with the zero value of its kind. Duplicate
// and empty keys are rejected as inline validation failures.
func (e *Editor) AddField(key string, kind Kind) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("field key is required")
	}
	for _, f := range e.fields {
		if f.Key == key {
			return fmt.Errorf("field %q already exists", key)
		}
	}
	e.fields = append(e.fields, Field{Key: key, Kind: kind, Value: zeroValue(kind)})
	e.emit()
	return nil
}

func (e *Editor) RemoveField(key string) error {
	for i := range e.fields {
		if e.fields[i].Key != key {
			continue
		}
		e.fields = append(e.fields[:i], e.fields[i+1:]...)
		e.emit()
		return nil
	}
	return fmt.Errorf("no field %q", key)
}

// SetObjectText edits an object sub-field as raw JSON text. Invalid text
// is a validation error and leaves the field untouched.
func (e *Editor) SetObjectText(key, text string) error {
	var obj map[string]any
	if err := json.Unmarshal([]byte(text), &obj); err != nil {
		return fmt.Errorf("invalid JSON for field %q: %w", key, err)
	}
	return e.SetValue(key, obj)
}

func (e *Editor) emit() {
	if e.onChange != nil {
		e.onChange(e.Object())
	}
}

// ParseArrayItem interprets array-item input: literal JSON (objects,
// arrays, numbers, booleans) when it parses, otherwise the raw string.
func ParseArrayItem(text string) any {
	trimmed := strings.TrimSpace(text)
	if trimmed != "" {
		var v any
		if err := json.Unmarshal([]byte(trimmed), &v); err == nil {
			return v
		}
	}
	return text
}

func zeroValue(kind Kind) any {
	switch kind {
	case KindBoolean:
		return false
	case KindNumber:
		return float64(0)
	case KindArray:
		return []any{}
	case KindObject:
		return map[string]any{}
	default:
		return ""
	}
}
