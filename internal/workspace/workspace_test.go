package workspace

import (
	"encoding/json"
	"testing"
)

func sampleLayout() Layout {
	return Layout{
		"main": NewContainer("root", NodeSplit,
			NewContainer("tabs-1", NodeTabs,
				NewLeaf("leaf-a", "notes/a.md"),
				NewLeaf("leaf-b", "notes/b.md"),
			),
			NewLeaf("leaf-c", ""),
		),
		"left":   NewContainer("left", NodeSplit, NewLeaf("explorer", "")),
		"active": "leaf-a",
	}
}

func TestIsMode(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"mode:Writing", true},
		{"Mode: Writing", true},
		{"MODE:x", true},
		{"writing mode", false},
		{"", false},
		{"modes", false},
	}
	for _, tt := range tests {
		if got := IsMode(tt.name); got != tt.want {
			t.Errorf("IsMode(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestModeNaming(t *testing.T) {
	if got := ModeName("Draft"); got != "mode: Draft" {
		t.Errorf("ModeName(Draft) = %q", got)
	}
	if got := ModeName("mode:Draft"); got != "mode:Draft" {
		t.Errorf("ModeName should keep existing prefix, got %q", got)
	}
	if got := DisplayName("Mode: Draft"); got != "Draft" {
		t.Errorf("DisplayName = %q, want Draft", got)
	}
	if got := DisplayName("Research"); got != "Research" {
		t.Errorf("DisplayName of plain name = %q", got)
	}
}

func TestWorkspace_JSONAttachesMetadata(t *testing.T) {
	ws := New(sampleLayout())
	ws.Metadata().Description = "daily review"
	ws.Metadata().Mode = "mode: Focus"

	data, err := json.Marshal(ws)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal raw: %v", err)
	}
	if _, ok := raw[MetadataKey]; !ok {
		t.Fatalf("serialized workspace missing %s key", MetadataKey)
	}
	if _, ok := raw["main"]; !ok {
		t.Fatal("serialized workspace missing main region")
	}

	var back Workspace
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.Meta == nil || back.Meta.Mode != "mode: Focus" || back.Meta.Description != "daily review" {
		t.Errorf("metadata not restored: %+v", back.Meta)
	}
	if _, ok := back.Layout[MetadataKey]; ok {
		t.Error("metadata key leaked into layout regions")
	}
}

func TestWorkspace_CloneIsIndependent(t *testing.T) {
	ws := New(sampleLayout())
	ws.Metadata().FileOverrides = map[string]string{"leaf-a": "{{date}}.md"}

	cp, err := ws.Clone()
	if err != nil {
		t.Fatalf("Clone: %v", err)
	}
	cp.Layout.SetLeafFile("leaf-a", "other.md")
	cp.Meta.FileOverrides["leaf-b"] = "x.md"

	if f, _ := ws.Layout.LeafFile("leaf-a"); f != "notes/a.md" {
		t.Errorf("original leaf changed to %q", f)
	}
	if len(ws.Meta.FileOverrides) != 1 {
		t.Errorf("original overrides changed: %v", ws.Meta.FileOverrides)
	}
}

func TestLayout_SetLeafFile(t *testing.T) {
	l := sampleLayout()

	if !l.SetLeafFile("leaf-b", "journal/today.md") {
		t.Fatal("leaf-b inside tabs should be found")
	}
	if f, ok := l.LeafFile("leaf-b"); !ok || f != "journal/today.md" {
		t.Errorf("LeafFile(leaf-b) = %q, %v", f, ok)
	}

	if !l.SetLeafFile("leaf-c", "") {
		t.Fatal("leaf-c should be found")
	}
	if f, _ := l.LeafFile("leaf-c"); f != "" {
		t.Errorf("cleared leaf file = %q", f)
	}

	if l.SetLeafFile("missing", "x.md") {
		t.Error("unknown leaf reported as found")
	}
	if !l.SetLeafFile("explorer", "sidebar.md") {
		t.Error("leaf in left region should be found")
	}
}

func TestLayout_FindLeafAfterJSON(t *testing.T) {
	data, _ := json.Marshal(sampleLayout())
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		t.Fatal(err)
	}
	if l.FindLeaf("leaf-b") == nil {
		t.Error("FindLeaf should walk []any children after decoding")
	}
}
