package dataset

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFieldForMethod(t *testing.T) {
	cases := []struct {
		method string
		want   string
	}{
		{"", "prompt"},
		{"none", "prompt"},
		{"None", "prompt"},
		{"nja", "nja_format"},
		{"cipher", "cipher_format"},
	}
	for _, tc := range cases {
		if got := FieldForMethod(tc.method); got != tc.want {
			t.Errorf("FieldForMethod(%q) = %q, want %q", tc.method, got, tc.want)
		}
	}
}

func TestSelectSkipsEmptyAndKeepsIDGaps(t *testing.T) {
	items := []Item{
		{"prompt": "first"},
		{"prompt": ""},
		{"category": "no prompt field"},
		{"prompt": "fourth"},
	}

	got := Select(items, "none")
	if len(got) != 2 {
		t.Fatalf("Select() returned %d records, want 2", len(got))
	}
	if got[0].SequenceID != 1 || got[0].PromptText != "first" {
		t.Fatalf("record[0] = %+v, want id 1 text %q", got[0], "first")
	}
	if got[1].SequenceID != 4 || got[1].PromptText != "fourth" {
		t.Fatalf("record[1] = %+v, want id 4 text %q", got[1], "fourth")
	}
}

func TestSelectMethodField(t *testing.T) {
	items := []Item{
		{"prompt": "plain", "nja_format": "wrapped"},
		{"prompt": "plain only"},
	}

	got := Select(items, "nja")
	if len(got) != 1 {
		t.Fatalf("Select() returned %d records, want 1", len(got))
	}
	if got[0].SequenceID != 1 || got[0].PromptText != "wrapped" {
		t.Fatalf("record[0] = %+v, want id 1 text %q", got[0], "wrapped")
	}
}

func TestSelectIgnoresNonStringValues(t *testing.T) {
	items := []Item{
		{"prompt": 42},
		{"prompt": "real"},
	}

	got := Select(items, "none")
	if len(got) != 1 || got[0].SequenceID != 2 {
		t.Fatalf("Select() = %+v, want single record with id 2", got)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	payload := `[{"prompt": "a", "category": "x"}, {"prompt": "b"}]`
	if err := os.WriteFile(path, []byte(payload), 0o644); err != nil {
		t.Fatal(err)
	}

	items, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("Load() returned %d items, want 2", len(items))
	}
	if items[0]["category"] != "x" {
		t.Fatalf("items[0][category] = %v, want x", items[0]["category"])
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("Load() error = nil, want error")
	}
}

func TestLoadInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte(`{"not": "a list"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("Load() error = nil, want error")
	}
}
