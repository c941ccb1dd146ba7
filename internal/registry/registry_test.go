package registry

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

const sampleJSON = `{
  "agent-1": {"focus": [100, 200], "input": [100, 240]},
  "agent-2": {"focus": [500, 200]},
  "agent-3": {"capabilities": ["review"]}
}`

func TestParse_GetTargets(t *testing.T) {
	r, err := Parse([]byte(sampleJSON), 0, 0)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	tgt, ok := r.Get("agent-1")
	if !ok {
		t.Fatal("agent-1 should have a target")
	}
	if tgt.Focus != (Point{100, 200}) {
		t.Errorf("focus = %+v", tgt.Focus)
	}
	if tgt.InputPoint() != (Point{100, 240}) {
		t.Errorf("input = %+v", tgt.InputPoint())
	}

	// No explicit input point: focus doubles as input.
	tgt2, ok := r.Get("agent-2")
	if !ok {
		t.Fatal("agent-2 should have a target")
	}
	if tgt2.InputPoint() != (Point{500, 200}) {
		t.Errorf("agent-2 input = %+v", tgt2.InputPoint())
	}

	// Roster-only agent: no target, ok=false, no error.
	if _, ok := r.Get("agent-3"); ok {
		t.Error("agent-3 should have no resolvable target")
	}
	if _, ok := r.Get("agent-99"); ok {
		t.Error("unknown agent should have no target")
	}
}

func TestParse_Roster(t *testing.T) {
	r, err := Parse([]byte(sampleJSON), 0, 0)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want := []string{"agent-1", "agent-2", "agent-3"}
	if got := r.AgentIDs(); !reflect.DeepEqual(got, want) {
		t.Errorf("AgentIDs = %v, want %v", got, want)
	}
	if caps := r.Capabilities("agent-3"); len(caps) != 1 || caps[0] != "review" {
		t.Errorf("Capabilities(agent-3) = %v", caps)
	}
}

func TestParse_MalformedFocus(t *testing.T) {
	_, err := Parse([]byte(`{"a": {"focus": [1]}}`), 0, 0)
	if err == nil {
		t.Fatal("expected error for one-element focus")
	}
}

func TestValidateAll(t *testing.T) {
	data := `{
	  "dup-a": {"focus": [10, 10]},
	  "dup-b": {"focus": [10, 10]},
	  "oob":   {"focus": [9999, 10]},
	  "neg":   {"focus": [-1, 10]},
	  "bare":  {}
	}`
	r, err := Parse([]byte(data), 1920, 1080)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	issues := r.ValidateAll()
	byAgent := make(map[string]int)
	for _, is := range issues {
		byAgent[is.AgentID]++
	}
	if byAgent["bare"] != 1 {
		t.Errorf("bare issues = %d, want 1", byAgent["bare"])
	}
	if byAgent["oob"] == 0 {
		t.Error("expected out-of-range issue for oob")
	}
	if byAgent["neg"] == 0 {
		t.Error("expected out-of-range issue for neg")
	}
	// Exactly one of the duplicate pair is flagged (the second one seen).
	if byAgent["dup-a"]+byAgent["dup-b"] != 1 {
		t.Errorf("duplicate issues = %d, want 1", byAgent["dup-a"]+byAgent["dup-b"])
	}
}

func TestValidateAll_DuplicateInputPoints(t *testing.T) {
	data := `{
	  "a": {"focus": [10, 10], "input": [50, 50]},
	  "b": {"focus": [20, 20], "input": [50, 50]}
	}`
	r, err := Parse([]byte(data), 1920, 1080)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	issues := r.ValidateAll()
	if len(issues) != 1 {
		t.Fatalf("issues = %v, want exactly 1", issues)
	}
	if issues[0].AgentID != "b" || !strings.Contains(issues[0].Problem, "duplicates agent a") {
		t.Errorf("issue = %v", issues[0])
	}
}

func TestValidateAll_Clean(t *testing.T) {
	r, err := Parse([]byte(`{"a": {"focus": [1, 2], "input": [1, 3]}}`), 1920, 1080)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if issues := r.ValidateAll(); len(issues) != 0 {
		t.Errorf("issues = %v, want none", issues)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "coords.json")
	if err := os.WriteFile(path, []byte(sampleJSON), 0o644); err != nil {
		t.Fatal(err)
	}
	r, err := Load(path, 0, 0)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, ok := r.Get("agent-1"); !ok {
		t.Error("agent-1 missing after Load")
	}

	if _, err := Load(filepath.Join(dir, "missing.json"), 0, 0); err == nil {
		t.Error("expected error for missing file")
	}
}
