package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func sampleTable() *Table {
	t := &Table{Headers: []string{"PROVIDER", "STATUS"}}
	t.Append("gemini", "blocked")
	t.Append("openai", "available")
	return t
}

func TestParseOutputFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    OutputFormat
		wantErr bool
	}{
		{"", FormatText, false},
		{"text", FormatText, false},
		{"JSON", FormatJSON, false},
		{" csv ", FormatCSV, false},
		{"yaml", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseOutputFormat(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTextFormatter(t *testing.T) {
	t.Run("plain value", func(t *testing.T) {
		out, err := (&TextFormatter{}).Format("test message")
		if err != nil {
			t.Fatalf("Format() error = %v", err)
		}
		if string(out) != "test message\n" {
			t.Errorf("Format() = %q", out)
		}
	})

	t.Run("table", func(t *testing.T) {
		var buf bytes.Buffer
		if err := (&TextFormatter{}).FormatTo(&buf, sampleTable()); err != nil {
			t.Fatalf("FormatTo() error = %v", err)
		}
		want := "PROVIDER  STATUS\ngemini    blocked\nopenai    available\n"
		if buf.String() != want {
			t.Errorf("FormatTo() = %q, want %q", buf.String(), want)
		}
	})
}

func TestJSONFormatter(t *testing.T) {
	t.Run("table as records", func(t *testing.T) {
		out, err := (&JSONFormatter{}).Format(sampleTable())
		if err != nil {
			t.Fatalf("Format() error = %v", err)
		}
		var recs []map[string]string
		if err := json.Unmarshal(out, &recs); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if len(recs) != 2 || recs[0]["provider"] != "gemini" || recs[1]["status"] != "available" {
			t.Errorf("records = %v", recs)
		}
	})

	t.Run("indent", func(t *testing.T) {
		var buf bytes.Buffer
		if err := (&JSONFormatter{Indent: true}).FormatTo(&buf, map[string]string{"key": "value"}); err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(buf.String(), "\n  \"key\": \"value\"") {
			t.Errorf("output not indented: %q", buf.String())
		}
	})
}

func TestCSVFormatter(t *testing.T) {
	out, err := (&CSVFormatter{}).Format(sampleTable())
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	want := "PROVIDER,STATUS\ngemini,blocked\nopenai,available\n"
	if string(out) != want {
		t.Errorf("Format() = %q, want %q", out, want)
	}

	if _, err := (&CSVFormatter{}).Format("not a table"); err == nil {
		t.Error("expected error for non-table data")
	}
}

func TestNewFormatter(t *testing.T) {
	tests := []struct {
		format OutputFormat
		want   string
	}{
		{FormatText, "*cli.TextFormatter"},
		{FormatJSON, "*cli.JSONFormatter"},
		{FormatCSV, "*cli.CSVFormatter"},
		{"unknown", "*cli.TextFormatter"},
	}
	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			if got := typeName(NewFormatter(tt.format)); got != tt.want {
				t.Errorf("NewFormatter(%q) = %s, want %s", tt.format, got, tt.want)
			}
		})
	}
}

func typeName(v any) string {
	switch v.(type) {
	case *TextFormatter:
		return "*cli.TextFormatter"
	case *JSONFormatter:
		return "*cli.JSONFormatter"
	case *CSVFormatter:
		return "*cli.CSVFormatter"
	default:
		return "unknown"
	}
}
