package intake

import (
	"encoding/json"
	"testing"
)

func TestParsePrice(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected float64
		wantErr  bool
	}{
		{"plain integer", "1700", 1700, false},
		{"decimal", "1700.5", 1700.5, false},
		{"thousands separator", "1,700", 1700, false},
		{"currency suffix", "1700원", 1700, false},
		{"separator and suffix", "12,300원", 12300, false},
		{"tilde range midpoint", "1700~1800", 1750, false},
		{"dash range midpoint", "1700-1800", 1750, false},
		{"range with spaces", "1700 ~ 1800", 1750, false},
		{"annotated string", "about 1700 or so", 1700, false},
		{"empty", "", 0, true},
		{"no number", "to be determined", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePrice(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q, got %v", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParsePrice(%q): %v", tt.input, err)
			}
			if got != tt.expected {
				t.Errorf("ParsePrice(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestFlexPrice_UnmarshalJSON(t *testing.T) {
	var doc struct {
		A FlexPrice  `json:"a"`
		B FlexPrice  `json:"b"`
		C *FlexPrice `json:"c"`
	}
	raw := `{"a": 1700, "b": "1,700~1,800", "c": null}`
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if doc.A != 1700 {
		t.Errorf("numeric price: got %v", doc.A)
	}
	if doc.B != 1750 {
		t.Errorf("range string price: got %v", doc.B)
	}
	if doc.C != nil {
		t.Errorf("null price should stay nil")
	}
}

func TestExtractJSON(t *testing.T) {
	fenced := "```json\n{\"x\": 1}\n```"
	if got := string(ExtractJSON([]byte(fenced))); got != `{"x": 1}` {
		t.Errorf("fenced: got %q", got)
	}
	bare := `  {"x": 1}  `
	if got := string(ExtractJSON([]byte(bare))); got != `{"x": 1}` {
		t.Errorf("bare: got %q", got)
	}
}
