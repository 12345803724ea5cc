package layoutdiff

import (
	"testing"

	"github.com/marcus/wsplus/internal/workspace"
)

func sampleLayout() workspace.Layout {
	main := workspace.NewContainer("root", workspace.NodeSplit,
		workspace.NewContainer("tabs1", workspace.NodeTabs,
			workspace.NewLeaf("leaf1", "notes/a.md"),
			workspace.NewLeaf("leaf2", "notes/b.md"),
		),
	)
	main["dimension"] = 50.0
	return workspace.Layout{
		"main": main,
		"left": map[string]any{
			"id":    "left",
			"type":  "split",
			"width": 300.0,
			"children": []any{
				workspace.NewLeaf("explorer", ""),
			},
		},
		"active":        "leaf1",
		"lastOpenFiles": []any{"notes/a.md"},
	}
}

func TestIsModified_Reflexive(t *testing.T) {
	d := New(nil)
	l := sampleLayout()
	if d.IsModified(l, l, true) {
		t.Error("layout compared to itself should not be modified")
	}
	clone, err := l.Clone()
	if err != nil {
		t.Fatal(err)
	}
	if d.IsModified(l, clone, true) {
		t.Error("layout compared to its clone should not be modified")
	}
}

func TestIsModified_VolatileOnly(t *testing.T) {
	d := New(nil)
	saved := sampleLayout()
	live := sampleLayout()

	live["active"] = "leaf2"
	live["left"].(map[string]any)["width"] = 420.0
	live["main"].(map[string]any)["dimension"] = 70.0
	live["lastOpenFiles"] = []any{"notes/b.md", "notes/a.md"}
	leaf := live.FindLeaf("leaf1")
	leaf["history"] = []any{"x"}
	leaf["state"].(map[string]any)["eState"] = map[string]any{"cursor": 12.0}

	if d.IsModified(live, saved, true) {
		t.Error("changing only volatile keys should not count as modified")
	}
}

func TestIsModified_FileChange(t *testing.T) {
	d := New(nil)
	saved := sampleLayout()
	live := sampleLayout()
	live.SetLeafFile("leaf2", "notes/c.md")

	if !d.IsModified(live, saved, true) {
		t.Error("changing a file reference should count as modified")
	}
}

func TestIsModified_NotInStore(t *testing.T) {
	d := New(nil)
	l := sampleLayout()
	if !d.IsModified(l, l, false) {
		t.Error("workspace missing from the store should always be modified")
	}
}

func TestIsModified_SerializationFailure(t *testing.T) {
	d := New(nil)
	live := sampleLayout()
	live["bad"] = make(chan int)
	if d.IsModified(live, sampleLayout(), true) {
		t.Error("unserializable layout should report not modified")
	}
}

func TestIsModified_ExtraVolatileKeys(t *testing.T) {
	saved := sampleLayout()
	live := sampleLayout()
	live.FindLeaf("leaf1")["scroll"] = 200.0

	if !New(nil).IsModified(live, saved, true) {
		t.Fatal("scroll is not volatile by default")
	}
	if New(nil, "scroll").IsModified(live, saved, true) {
		t.Error("configured volatile key should be ignored")
	}
}

func TestIsModified_IgnoresMetadataAttachment(t *testing.T) {
	d := New(nil)
	saved := sampleLayout()
	live := sampleLayout()
	saved[workspace.MetadataKey] = map[string]any{"description": "x"}
	if d.IsModified(live, saved, true) {
		t.Error("metadata attachment should not affect comparison")
	}
}

func TestIsModified_DoesNotMutateInputs(t *testing.T) {
	d := New(nil)
	live := sampleLayout()
	d.IsModified(live, sampleLayout(), true)
	if live["active"] != "leaf1" {
		t.Error("detector stripped keys from the caller's layout")
	}
}

func TestFingerprint(t *testing.T) {
	d := New(nil)
	a := sampleLayout()
	b := sampleLayout()
	b["active"] = "leaf2"

	fa, err := d.Fingerprint(a)
	if err != nil {
		t.Fatal(err)
	}
	fb, err := d.Fingerprint(b)
	if err != nil {
		t.Fatal(err)
	}
	if fa != fb {
		t.Error("fingerprints differ on volatile-only change")
	}
}
