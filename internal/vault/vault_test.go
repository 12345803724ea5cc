package vault

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/marcus/wsplus/internal/config"
	"github.com/marcus/wsplus/internal/event"
	"github.com/marcus/wsplus/internal/host"
	"github.com/marcus/wsplus/internal/plugin"
	"github.com/marcus/wsplus/internal/state"
	"github.com/marcus/wsplus/internal/workspace"
)

func openVault(t *testing.T, root string) *Vault {
	t.Helper()
	v, err := Open(root, Options{PrefersDark: func() bool { return true }})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { v.Close() })
	return v
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func testLayout(file string) workspace.Layout {
	return workspace.Layout{
		"main": workspace.NewContainer("m1", workspace.NodeSplit, workspace.NewLeaf("leaf-1", file)),
		"left": workspace.NewContainer("l1", workspace.NodeSplit),
	}
}

func TestOpen_RejectsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file")
	writeFile(t, path, "x")
	if _, err := Open(path, Options{}); err == nil {
		t.Error("opening a file as a vault should fail")
	}
}

func TestOpen_DefaultLayout(t *testing.T) {
	v := openVault(t, t.TempDir())
	live := v.Layout.Current()
	if _, ok := live[workspace.RegionMain]; !ok {
		t.Errorf("default layout has no main region: %v", live)
	}
	if !v.Layout.Ready() {
		t.Error("layout not ready")
	}
	if v.Env.Platform() != host.Desktop || !v.Env.PrefersDark() {
		t.Error("env defaults wrong")
	}
}

func TestStore_PersistsAcrossOpen(t *testing.T) {
	root := t.TempDir()
	v := openVault(t, root)
	if err := v.Layout.Change(testLayout("a.md")); err != nil {
		t.Fatal(err)
	}
	if err := v.Store.SaveWorkspace("Daily"); err != nil {
		t.Fatal(err)
	}
	v.Store.Get("Daily").Metadata().Description = "morning"
	if err := v.Store.Persist(); err != nil {
		t.Fatal(err)
	}
	if err := v.Close(); err != nil {
		t.Fatal(err)
	}

	again := openVault(t, root)
	ws := again.Store.Get("Daily")
	if ws == nil {
		t.Fatal("workspace not persisted")
	}
	if ws.Meta == nil || ws.Meta.Description != "morning" {
		t.Errorf("meta = %+v", ws.Meta)
	}
	if file, ok := ws.Layout.LeafFile("leaf-1"); !ok || file != "a.md" {
		t.Errorf("leaf file = %q %v", file, ok)
	}
	if again.Store.Active() != "Daily" {
		t.Errorf("active = %q", again.Store.Active())
	}
	if _, ok := again.Store.UpdatedAt("Daily"); !ok {
		t.Error("updated_at not persisted")
	}
	if !again.Store.Enabled() {
		t.Error("store disabled after reopen")
	}
}

func TestStore_LoadAndDelete(t *testing.T) {
	v := openVault(t, t.TempDir())
	ctx := context.Background()

	if err := v.Layout.Change(testLayout("a.md")); err != nil {
		t.Fatal(err)
	}
	if err := v.Store.SaveWorkspace("A"); err != nil {
		t.Fatal(err)
	}
	if err := v.Layout.Change(testLayout("b.md")); err != nil {
		t.Fatal(err)
	}
	if err := v.Store.LoadWorkspace(ctx, "A"); err != nil {
		t.Fatal(err)
	}
	if file, _ := v.Layout.Current().LeafFile("leaf-1"); file != "a.md" {
		t.Errorf("live file = %q after load", file)
	}

	if err := v.Store.LoadWorkspace(ctx, "Nope"); !errors.Is(err, workspace.ErrNotFound) {
		t.Errorf("load missing: err = %v", err)
	}
	if err := v.Store.DeleteWorkspace("A"); err != nil {
		t.Fatal(err)
	}
	if v.Store.Active() != "" || len(v.Store.Names()) != 0 {
		t.Errorf("after delete: active=%q names=%v", v.Store.Active(), v.Store.Names())
	}
	if err := v.Store.DeleteWorkspace("A"); !errors.Is(err, workspace.ErrNotFound) {
		t.Errorf("delete missing: err = %v", err)
	}
}

func TestStore_Disabled(t *testing.T) {
	root := t.TempDir()
	v := openVault(t, root)
	v.Store.SetEnabled(false)
	if err := v.Store.Persist(); err != nil {
		t.Fatal(err)
	}
	v.Close()
	if openVault(t, root).Store.Enabled() {
		t.Error("disabled flag not persisted")
	}
}

func TestSettings_ExternalChange(t *testing.T) {
	v := openVault(t, t.TempDir())
	v.Settings.Set("theme", "obsidian")
	if err := v.Settings.Persist(); err != nil {
		t.Fatal(err)
	}
	if _, ok := v.externalChange(AppFile); ok {
		t.Fatal("own write reported as external")
	}

	writeFile(t, v.Path(AppFile), `{"theme": "moonstone", "baseFontSize": 14}`)
	ev, ok := v.externalChange(AppFile)
	if !ok || ev.Type != event.ConfigChanged {
		t.Fatalf("event = %+v, %v", ev, ok)
	}
	if v.Settings.Get("theme") != "moonstone" || v.Settings.FontSize() != 14 {
		t.Errorf("settings not reloaded: %v", v.Settings.Snapshot())
	}
}

func TestLayout_ExternalChange(t *testing.T) {
	v := openVault(t, t.TempDir())
	if err := v.Layout.Change(testLayout("a.md")); err != nil {
		t.Fatal(err)
	}
	if _, ok := v.externalChange(LayoutFile); ok {
		t.Fatal("own write reported as external")
	}

	writeFile(t, v.Path(LayoutFile), `{"main": {"id": "m", "type": "leaf", "state": {"type": "markdown", "state": {"file": "z.md"}}}}`)
	ev, ok := v.externalChange(LayoutFile)
	if !ok || ev.Type != event.LayoutChange {
		t.Fatalf("event = %+v, %v", ev, ok)
	}
	if file, _ := v.Layout.Current().LeafFile("m"); file != "z.md" {
		t.Errorf("layout not reloaded, file = %q", file)
	}

	if _, ok := v.externalChange("other.json"); ok {
		t.Error("unrelated file produced an event")
	}
}

func TestWatch_DispatchesExternalEdits(t *testing.T) {
	v := openVault(t, t.TempDir())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events := make(chan event.Event, 4)
	done := make(chan error, 1)
	go func() {
		done <- v.Watch(ctx, func(c Change) {
			if ev, ok := c(); ok {
				events <- ev
			}
		})
	}()
	// Give the watcher time to register the directory.
	time.Sleep(100 * time.Millisecond)

	writeFile(t, v.Path(AppFile), `{"theme": "moonstone"}`)
	select {
	case ev := <-events:
		if ev.Type != event.ConfigChanged {
			t.Errorf("event = %+v", ev)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("no event for external app.json edit")
	}
	if v.Settings.Get("theme") != "moonstone" {
		t.Errorf("theme = %v, want reloaded", v.Settings.Get("theme"))
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Watch = %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Watch did not return after cancel")
	}
}

func TestSnapshotIsDeepCopy(t *testing.T) {
	v := openVault(t, t.TempDir())
	v.Settings.Replace(map[string]any{"nested": map[string]any{"a": 1.0}})
	snap := v.Settings.Snapshot()
	snap["nested"].(map[string]any)["a"] = 2.0
	if v.Settings.Get("nested").(map[string]any)["a"] != 1.0 {
		t.Error("snapshot aliases the live settings")
	}
}

func TestFiles(t *testing.T) {
	root := t.TempDir()
	v := openVault(t, root)
	writeFile(t, filepath.Join(root, "notes", "today.md"), "")

	tests := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{"notes/today.md", "notes/today.md", true},
		{"notes/today", "notes/today.md", true},
		{"./notes//today.md", "notes/today.md", true},
		{"notes/missing.md", "", false},
		{"notes", "", false},
	}
	for _, tt := range tests {
		got, ok := v.Files.Resolve(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("Resolve(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestFiles_StaysInsideRoot(t *testing.T) {
	parent := t.TempDir()
	root := filepath.Join(parent, "vault")
	writeFile(t, filepath.Join(parent, "secret.md"), "")
	writeFile(t, filepath.Join(root, "keep.md"), "")
	v := openVault(t, root)

	if err := os.Symlink(filepath.Join(parent, "secret.md"), filepath.Join(root, "link.md")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}
	if v.Files.Exists("../secret.md") {
		t.Error("relative path escaped the vault")
	}
	if v.Files.Exists("link.md") {
		t.Error("symlink escaped the vault")
	}
}

func TestPeriodic(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, Dir, PeriodicFile), `{"day": {"enabled": true, "folder": "daily"}, "week": {"enabled": false}}`)
	v := openVault(t, root)

	date := time.Date(2024, 3, 5, 9, 0, 0, 0, time.Local)
	if _, ok := v.Periodic.Settings(host.Week); ok {
		t.Error("disabled series reported enabled")
	}
	if p, exists := v.Periodic.Get(host.Day, date); p != "daily/2024-03-05.md" || exists {
		t.Fatalf("Get = %q, %v", p, exists)
	}
	p, err := v.Periodic.Create(context.Background(), host.Day, date)
	if err != nil {
		t.Fatal(err)
	}
	if _, exists := v.Periodic.Get(host.Day, date); !exists || !v.Files.Exists(p) {
		t.Error("note not created")
	}
	if _, err := v.Periodic.Create(context.Background(), host.Day, date); err != nil {
		t.Errorf("second create: %v", err)
	}
	if _, err := v.Periodic.Create(context.Background(), host.Week, date); err == nil {
		t.Error("create for disabled series should fail")
	}
}

func TestTemplatesDefaults(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, Dir, TemplatesFile), `{"timeFormat": "HH:mm:ss"}`)
	v := openVault(t, root)
	if v.Templates.DateFormat() != "YYYY-MM-DD" || v.Templates.TimeFormat() != "HH:mm:ss" {
		t.Errorf("templates = %+v", v.Templates)
	}
}

func TestCommandsHotkeysPersist(t *testing.T) {
	root := t.TempDir()
	v := openVault(t, root)
	v.Commands.Add(host.Command{ID: "load:Daily", Name: "Load: Daily"})
	v.Commands.SetHotkeys("load:Daily", []string{"mod+1"})
	v.Commands.SetHotkeys("load:Other", []string{"mod+2"})
	v.Commands.RemoveHotkeys("load:Other")
	if !slices.Equal(v.Commands.IDs(), []string{"load:Daily"}) {
		t.Errorf("ids = %v", v.Commands.IDs())
	}
	v.Close()

	again := openVault(t, root)
	if got := again.Commands.Hotkeys("load:Daily"); !slices.Equal(got, []string{"mod+1"}) {
		t.Errorf("hotkeys = %v", got)
	}
	if got := again.Commands.Hotkeys("load:Other"); got != nil {
		t.Errorf("removed hotkeys came back: %v", got)
	}
	if _, ok := again.Commands.Get("load:Daily"); ok {
		t.Error("commands should not persist")
	}
}

func TestEnvReload(t *testing.T) {
	root := t.TempDir()
	v := openVault(t, root)
	if !v.Env.LivePreviewLoaded() {
		t.Error("live preview should default on")
	}
	writeFile(t, v.Path(AppFile), `{"livePreview": false}`)
	if err := v.Env.Reload(); err != nil {
		t.Fatal(err)
	}
	if v.Env.LivePreviewLoaded() || v.Env.Reloads() != 1 {
		t.Errorf("livePreview=%v reloads=%d", v.Env.LivePreviewLoaded(), v.Env.Reloads())
	}
}

func TestPluginOnVault_FileOverrides(t *testing.T) {
	root := t.TempDir()
	v := openVault(t, root)
	writeFile(t, filepath.Join(root, "notes", "plan.md"), "")
	if err := v.Layout.Change(testLayout("start.md")); err != nil {
		t.Fatal(err)
	}

	cfg := config.Default()
	cfg.WorkspaceSettings = true
	p, err := plugin.New(&plugin.Context{Host: v.Host(), Config: cfg, Store: state.NewMemory()})
	if err != nil {
		t.Fatal(err)
	}
	defer p.Close()

	if err := p.Save("Daily"); err != nil {
		t.Fatal(err)
	}
	ws := v.Store.Get("Daily")
	ws.Metadata().FileOverrides = map[string]string{"leaf-1": "notes/plan", "gone": "notes/plan.md"}
	if err := v.Store.Persist(); err != nil {
		t.Fatal(err)
	}

	if err := p.Load(context.Background(), "Daily"); err != nil {
		t.Fatal(err)
	}
	if file, _ := v.Layout.Current().LeafFile("leaf-1"); file != "notes/plan.md" {
		t.Errorf("live leaf file = %q", file)
	}
	if _, ok := ws.Meta.FileOverrides["gone"]; ok {
		t.Error("override for a missing leaf was kept")
	}
	if _, ok := v.Commands.Get(plugin.CommandID("Daily")); !ok {
		t.Error("load command not registered")
	}
}
