package content

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInferKind(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want Kind
	}{
		{name: "boolean", in: true, want: KindBoolean},
		{name: "number", in: float64(3), want: KindNumber},
		{name: "array", in: []any{"a"}, want: KindArray},
		{name: "object", in: map[string]any{"a": 1}, want: KindObject},
		{name: "plain text", in: "hello world", want: KindText},
		{name: "text with stray angle bracket", in: "a < b", want: KindText},
		{name: "rich text", in: "<p>Welcome to <strong>Lumen</strong></p>", want: KindRichText},
		{name: "image url absolute", in: "https://cdn.example.com/hero.webp", want: KindImageURL},
		{name: "image url rooted with query", in: "/media/banner.png?v=2", want: KindImageURL},
		{name: "non-image url", in: "https://example.com/about", want: KindText},
		{name: "nil", in: nil, want: KindText},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, InferKind(tc.in))
		})
	}
}

func sampleContent() map[string]any {
	return map[string]any{
		"title":    "Our Services",
		"body":     "<p>What we do</p>",
		"image":    "/media/services.webp",
		"count":    float64(4),
		"enabled":  true,
		"items":    []any{"design", "build"},
		"settings": map[string]any{"columns": float64(2)},
	}
}

func TestFieldsOfRebuildRoundTrip(t *testing.T) {
	obj := sampleContent()
	fields := FieldsOf(obj)
	require.Len(t, fields, len(obj))
	assert.Equal(t, obj, Rebuild(fields))
}

func TestRemoveThenReAddRoundTrips(t *testing.T) {
	// Removing and re-adding a key with a same-typed value must restore
	// the original object, for every inferred kind.
	obj := sampleContent()
	for key, original := range obj {
		var latest map[string]any
		ed := NewEditor(sampleContent(), func(o map[string]any) { latest = o })

		require.NoError(t, ed.RemoveField(key))
		_, stillThere := latest[key]
		require.False(t, stillThere, "removed key %q must be gone", key)

		require.NoError(t, ed.AddField(key, InferKind(original)))
		require.NoError(t, ed.SetValue(key, original))
		assert.Equal(t, obj, latest, "round-trip for key %q", key)
	}
}

func TestAddFieldRejectsDuplicateAndEmptyKeys(t *testing.T) {
	ed := NewEditor(sampleContent(), nil)
	err := ed.AddField("title", KindText)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	err = ed.AddField("   ", KindText)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required")
}

func TestSetValueReInfersKind(t *testing.T) {
	ed := NewEditor(map[string]any{"headline": "plain"}, nil)
	require.NoError(t, ed.SetValue("headline", "<h1>Big</h1>"))
	fields := ed.Fields()
	require.Len(t, fields, 1)
	assert.Equal(t, KindRichText, fields[0].Kind)
}

func TestSetObjectTextValidatesJSON(t *testing.T) {
	var calls int
	ed := NewEditor(map[string]any{"settings": map[string]any{"columns": float64(2)}}, func(map[string]any) { calls++ })

	err := ed.SetObjectText("settings", `{"columns": 3`)
	require.Error(t, err)
	assert.Zero(t, calls, "invalid JSON must not emit a change")
	assert.Equal(t, map[string]any{"columns": float64(2)}, ed.Object()["settings"])

	require.NoError(t, ed.SetObjectText("settings", `{"columns": 3}`))
	assert.Equal(t, 1, calls)
	assert.Equal(t, map[string]any{"columns": float64(3)}, ed.Object()["settings"])
}

func TestParseArrayItem(t *testing.T) {
	assert.Equal(t, map[string]any{"label": "Go"}, ParseArrayItem(`{"label":"Go"}`))
	assert.Equal(t, []any{float64(1), float64(2)}, ParseArrayItem(`[1,2]`))
	assert.Equal(t, float64(7), ParseArrayItem(`7`))
	// Unparseable literals fall back to the raw string.
	assert.Equal(t, `{"label": broken`, ParseArrayItem(`{"label": broken`))
	assert.Equal(t, "plain entry", ParseArrayItem("plain entry"))
}

func TestJSONModePropagatesOnlyValidParses(t *testing.T) {
	var latest map[string]any
	var calls int
	mode, err := NewJSONMode(map[string]any{"title": "A"}, func(o map[string]any) {
		latest = o
		calls++
	})
	require.NoError(t, err)

	mode.SetText(`{"title": "B"`)
	assert.Error(t, mode.Err())
	assert.Equal(t, `{"title": "B"`, mode.Text(), "invalid text must be retained")
	assert.Zero(t, calls)

	mode.SetText(`{"title": "B"}`)
	require.NoError(t, mode.Err())
	assert.Equal(t, 1, calls)
	assert.Equal(t, map[string]any{"title": "B"}, latest)
}

func TestJSONModeFormatIsValuePreserving(t *testing.T) {
	mode, err := NewJSONMode(map[string]any{}, nil)
	require.NoError(t, err)

	raw := `{"b":2,"a":{"nested":[1,2,3]}}`
	mode.SetText(raw)
	require.NoError(t, mode.Format())

	var original, formatted map[string]any
	require.NoError(t, json.Unmarshal([]byte(raw), &original))
	require.NoError(t, json.Unmarshal([]byte(mode.Text()), &formatted))
	assert.Equal(t, original, formatted)

	// Formatting invalid text fails and leaves the buffer alone.
	mode.SetText(`{"broken":`)
	require.Error(t, mode.Format())
	assert.Equal(t, `{"broken":`, mode.Text())
}
