package output

import (
	"bytes"
	"strings"
	"testing"
)

func TestParseFormat(t *testing.T) {
	for _, tc := range []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{in: "", want: FormatTable},
		{in: "table", want: FormatTable},
		{in: "JSON", want: FormatJSON},
		{in: " yaml ", want: FormatYAML},
		{in: "xml", wantErr: true},
	} {
		got, err := ParseFormat(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("ParseFormat(%q) expected error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseFormat(%q) error = %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("ParseFormat(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestWriteStructuredJSON(t *testing.T) {
	var buf bytes.Buffer
	payload := map[string]any{"title": "Home", "status": "published"}
	if err := WriteStructured(&buf, FormatJSON, payload); err != nil {
		t.Fatalf("WriteStructured() error = %v", err)
	}
	if !strings.Contains(buf.String(), `"title": "Home"`) {
		t.Fatalf("unexpected json output %q", buf.String())
	}
}

func TestWriteTableRejectsRaggedRows(t *testing.T) {
	var buf bytes.Buffer
	err := WriteTable(&buf, []string{"A", "B"}, [][]string{{"only-one"}})
	if err == nil {
		t.Fatalf("expected ragged-row error")
	}
}

func TestKB(t *testing.T) {
	if got := KB(512); got != "512 KB" {
		t.Fatalf("KB(512) = %q", got)
	}
	if got := KB(2048); got != "2.0 MB" {
		t.Fatalf("KB(2048) = %q", got)
	}
}
