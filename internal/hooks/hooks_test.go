package hooks

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/marcus/wsplus/internal/clock"
	"github.com/marcus/wsplus/internal/event"
	"github.com/marcus/wsplus/internal/host"
	"github.com/marcus/wsplus/internal/host/hosttest"
	"github.com/marcus/wsplus/internal/workspace"
)

type recorder struct {
	log []string
}

func (r *recorder) add(s string) { r.log = append(r.log, s) }

type fakeModes struct {
	rec   *recorder
	names []string
	err   error
}

func (m *fakeModes) ToggleMode(_ context.Context, name string) error {
	m.names = append(m.names, name)
	if m.rec != nil {
		m.rec.add("toggle:" + name)
	}
	return m.err
}

type fakeSuppressor struct{ rec *recorder }

func (s *fakeSuppressor) SuppressAutosave() { s.rec.add("suppress") }

type fakeOverrides struct {
	rec  *recorder
	live *hosttest.Layout
	err  error
}

func (o *fakeOverrides) Apply(_ context.Context, meta *workspace.Metadata, l workspace.Layout, _ time.Time) error {
	o.rec.add("overrides")
	if o.live.ChangeCount != 0 {
		o.rec.add("overrides-after-swap")
	}
	for leaf, file := range meta.FileOverrides {
		l.SetLeafFile(leaf, file)
	}
	return o.err
}

type fixture struct {
	fakes *hosttest.Fakes
	ws    host.Workspaces
	rec   *recorder
	modes *fakeModes
	over  *fakeOverrides
}

func newFixture() *fixture {
	fakes := hosttest.New()
	rec := &recorder{}
	modes := &fakeModes{rec: rec}
	over := &fakeOverrides{rec: rec, live: fakes.Layout}
	ws := Install(fakes.Workspaces, Deps{
		Events:     fakes.Events,
		Modes:      modes,
		Suppressor: &fakeSuppressor{rec: rec},
		Overrides:  over,
		Clock:      clock.NewFake(time.Unix(0, 0)),
	})
	for _, typ := range []event.Type{event.WorkspaceSave, event.WorkspaceDelete, event.WorkspaceLoad} {
		fakes.Events.On(typ, func(ev event.Event) { rec.add(string(ev.Type) + ":" + ev.Name) })
	}
	return &fixture{fakes: fakes, ws: ws, rec: rec, modes: modes, over: over}
}

func (f *fixture) assertLog(t *testing.T, want ...string) {
	t.Helper()
	if len(f.rec.log) != len(want) {
		t.Fatalf("log = %v, want %v", f.rec.log, want)
	}
	for i := range want {
		if f.rec.log[i] != want[i] {
			t.Fatalf("log = %v, want %v", f.rec.log, want)
		}
	}
}

func TestInstall_Idempotent(t *testing.T) {
	f := newFixture()
	again := Install(f.ws, Deps{Events: f.fakes.Events})
	if again != f.ws {
		t.Fatal("second Install wrapped the store again")
	}
	if err := again.DeleteWorkspace("missing"); err != nil {
		t.Fatal(err)
	}
	// A double wrap would emit twice.
	f.assertLog(t, "workspace-delete:missing")
}

func TestSaveWorkspace_KeepsMetadataAndEmits(t *testing.T) {
	f := newFixture()
	meta := &workspace.Metadata{Description: "deep work"}
	f.fakes.Workspaces.Put("Research", workspace.Layout{"main": "old"}, meta)
	f.fakes.Layout.Live = workspace.Layout{"main": "new"}

	var got *workspace.Metadata
	persistAtEvent := -1
	f.fakes.Events.On(event.WorkspaceSave, func(ev event.Event) {
		got = ev.Meta
		persistAtEvent = f.fakes.Workspaces.PersistCount
		ev.Meta.ExplorerFoldState = []string{"notes"}
	})

	if err := f.ws.SaveWorkspace("Research"); err != nil {
		t.Fatalf("SaveWorkspace: %v", err)
	}

	saved := f.fakes.Workspaces.Get("Research")
	if saved.Layout["main"] != "new" {
		t.Errorf("layout not captured: %v", saved.Layout)
	}
	if got != meta || saved.Meta != meta {
		t.Fatal("listener and stored workspace should share the pre-save metadata object")
	}
	if saved.Meta.ExplorerFoldState[0] != "notes" {
		t.Error("listener mutation lost")
	}
	if f.fakes.Workspaces.PersistCount <= persistAtEvent {
		t.Error("store not persisted after listeners ran")
	}
}

func TestSaveWorkspace_NewNameGetsMetadata(t *testing.T) {
	f := newFixture()
	if err := f.ws.SaveWorkspace("Fresh"); err != nil {
		t.Fatal(err)
	}
	if f.fakes.Workspaces.Get("Fresh").Meta == nil {
		t.Error("new workspace should carry a metadata object")
	}
	f.assertLog(t, "workspace-save:Fresh")
}

func TestGuards(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	for _, err := range []error{f.ws.SaveWorkspace(""), f.ws.DeleteWorkspace(""), f.ws.LoadWorkspace(ctx, "")} {
		if err != nil {
			t.Errorf("empty name should be a silent no-op, got %v", err)
		}
	}

	f.fakes.Workspaces.Disabled = true
	f.fakes.Workspaces.Put("A", nil, nil)
	_ = f.ws.SaveWorkspace("A")
	_ = f.ws.DeleteWorkspace("A")
	_ = f.ws.LoadWorkspace(ctx, "A")
	_ = f.ws.LoadWorkspace(ctx, "mode: Focus")

	if len(f.fakes.Workspaces.Calls) != 0 {
		t.Errorf("native calls while guarded: %v", f.fakes.Workspaces.Calls)
	}
	f.assertLog(t)
}

func TestDeleteWorkspace(t *testing.T) {
	f := newFixture()
	f.fakes.Workspaces.Put("Old", nil, nil)

	if err := f.ws.DeleteWorkspace("Old"); err != nil {
		t.Fatal(err)
	}
	if f.fakes.Workspaces.Get("Old") != nil {
		t.Error("workspace not deleted")
	}
	f.assertLog(t, "workspace-delete:Old")
}

func TestDeleteWorkspace_ErrorNotSwallowed(t *testing.T) {
	f := newFixture()
	f.fakes.Workspaces.DeleteErr = errors.New("disk")
	err := f.ws.DeleteWorkspace("Old")
	if !errors.Is(err, f.fakes.Workspaces.DeleteErr) {
		t.Fatalf("err = %v", err)
	}
	f.assertLog(t)
}

func TestLoadWorkspace_Ordering(t *testing.T) {
	f := newFixture()
	main := workspace.NewContainer("root", workspace.NodeSplit, workspace.NewLeaf("leaf1", "a.md"))
	f.fakes.Workspaces.Put("Daily", workspace.Layout{"main": main}, &workspace.Metadata{
		FileOverrides: map[string]string{"leaf1": "today.md"},
	})

	if err := f.ws.LoadWorkspace(context.Background(), "Daily"); err != nil {
		t.Fatalf("LoadWorkspace: %v", err)
	}

	f.assertLog(t, "suppress", "overrides", "workspace-load:Daily")
	if file, _ := f.fakes.Layout.Live.LeafFile("leaf1"); file != "today.md" {
		t.Errorf("applied layout leaf1 = %q, want override", file)
	}
	if f.fakes.Workspaces.Active() != "Daily" {
		t.Errorf("active = %q", f.fakes.Workspaces.Active())
	}
}

func TestLoadWorkspace_ModeDelegates(t *testing.T) {
	f := newFixture()
	f.fakes.Workspaces.Put("mode: Writing", nil, &workspace.Metadata{})

	if err := f.ws.LoadWorkspace(context.Background(), "MODE: Writing"); err != nil {
		t.Fatal(err)
	}
	if len(f.fakes.Workspaces.Calls) != 0 {
		t.Errorf("mode load reached native store: %v", f.fakes.Workspaces.Calls)
	}
	f.assertLog(t, "toggle:MODE: Writing")
}

func TestLoadWorkspace_Errors(t *testing.T) {
	f := newFixture()
	f.fakes.Workspaces.Put("A", nil, &workspace.Metadata{FileOverrides: map[string]string{"x": "y"}})

	f.over.err = errors.New("create failed")
	err := f.ws.LoadWorkspace(context.Background(), "A")
	if !errors.Is(err, f.over.err) {
		t.Fatalf("override error = %v", err)
	}
	if len(f.fakes.Workspaces.Calls) != 0 {
		t.Error("native load ran after override failure")
	}

	f.over.err = nil
	f.fakes.Workspaces.LoadErr = errors.New("io")
	err = f.ws.LoadWorkspace(context.Background(), "A")
	if !errors.Is(err, f.fakes.Workspaces.LoadErr) {
		t.Fatalf("native error = %v", err)
	}
	for _, entry := range f.rec.log {
		if entry == "workspace-load:A" {
			t.Error("load event emitted for failed load")
		}
	}
}

func TestWrapLocalStorage(t *testing.T) {
	fakes := hosttest.New()
	var keys []string
	ls := WrapLocalStorage(fakes.Storage, func(key string) { keys = append(keys, key) })
	if WrapLocalStorage(ls, nil) != ls {
		t.Error("double wrap")
	}

	if err := ls.Save(host.FoldStateKey, []string{"a"}); err != nil {
		t.Fatal(err)
	}
	if len(keys) != 1 || keys[0] != host.FoldStateKey {
		t.Errorf("observed keys = %v", keys)
	}
	if v, ok := ls.Load(host.FoldStateKey); !ok || len(v.([]string)) != 1 {
		t.Errorf("value not stored: %v", v)
	}
}
