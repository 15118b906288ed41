package shared

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestGenerateID(t *testing.T) {
	seen := make(map[string]bool)
	for range 100 {
		id := GenerateID()
		if id == "" {
			t.Fatal("GenerateID() returned empty string")
		}
		if seen[id] {
			t.Fatalf("GenerateID() returned duplicate %s", id)
		}
		seen[id] = true
	}
}

func TestGenerateState(t *testing.T) {
	a := GenerateState()
	b := GenerateState()

	if a == "" || b == "" {
		t.Fatal("GenerateState() returned empty string")
	}
	if a == b {
		t.Error("GenerateState() should produce fresh values per call")
	}
}

func TestMarshalJSON(t *testing.T) {
	payload := map[string]any{"name": "sift", "count": 3}

	tc := []struct {
		name   string
		indent bool
	}{
		{name: "compact", indent: false},
		{name: "indented", indent: true},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			data, err := MarshalJSON(payload, tt.indent)
			if err != nil {
				t.Fatalf("MarshalJSON() error = %v", err)
			}

			var decoded map[string]any
			if err := json.Unmarshal(data, &decoded); err != nil {
				t.Fatalf("output should be valid JSON: %v", err)
			}

			if decoded["name"] != "sift" {
				t.Errorf("round-trip name = %v, want sift", decoded["name"])
			}

			indented := strings.Contains(string(data), "\n")
			if indented != tt.indent {
				t.Errorf("indented = %v, want %v", indented, tt.indent)
			}
		})
	}
}
