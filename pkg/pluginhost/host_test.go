package pluginhost

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/opd-ai/ecshost/pkg/ecs"
)

func newTestHost(t *testing.T) (*Host, string) {
	t.Helper()
	dir := t.TempDir()
	tmp := filepath.Join(dir, "tmp")
	world := ecs.NewWorld(8, nil)
	h, err := NewHost(world, dir, tmp, nil)
	if err != nil {
		t.Fatalf("new host: %v", err)
	}
	t.Cleanup(func() { h.Close() })
	return h, dir
}

func TestNewHostCreatesTempDir(t *testing.T) {
	h, _ := newTestHost(t)
	if _, err := os.Stat(h.tmpDir); err != nil {
		t.Fatalf("expected temp dir to exist: %v", err)
	}
}

func TestCopyToTempProducesUniquePaths(t *testing.T) {
	h, dir := newTestHost(t)
	source := filepath.Join(dir, "fake.so")
	if err := os.WriteFile(source, []byte("not a real plugin"), 0o644); err != nil {
		t.Fatalf("write fake source: %v", err)
	}

	p1, err := h.copyToTemp(source)
	if err != nil {
		t.Fatalf("copy 1: %v", err)
	}
	p2, err := h.copyToTemp(source)
	if err != nil {
		t.Fatalf("copy 2: %v", err)
	}
	if p1 == p2 {
		t.Fatal("expected distinct temp paths per copy, so re-opening the same logical plugin doesn't hit the plugin package's path cache")
	}
	for _, p := range []string{p1, p2} {
		data, err := os.ReadFile(p)
		if err != nil {
			t.Fatalf("read copy: %v", err)
		}
		if string(data) != "not a real plugin" {
			t.Fatalf("copy contents mismatch: %q", data)
		}
	}
}

func TestUnloadUnknownPathIsNoop(t *testing.T) {
	h, _ := newTestHost(t)
	if err := h.Unload("/does/not/exist.so"); err != nil {
		t.Fatalf("expected nil error unloading an unknown path, got %v", err)
	}
}

func TestLoadedEmptyInitially(t *testing.T) {
	h, _ := newTestHost(t)
	if len(h.Loaded()) != 0 {
		t.Fatalf("expected no plugins loaded initially, got %v", h.Loaded())
	}
}

func TestNewHostScansExistingFilesWithoutFailingOnBadOnes(t *testing.T) {
	dir := t.TempDir()
	tmp := filepath.Join(dir, "tmp")
	if err := os.WriteFile(filepath.Join(dir, "stale.so"), []byte("not a real plugin"), 0o644); err != nil {
		t.Fatalf("write fake plugin: %v", err)
	}
	world := ecs.NewWorld(8, nil)

	h, err := NewHost(world, dir, tmp, nil)
	if err != nil {
		t.Fatalf("expected NewHost to tolerate an unopenable .so already present, got %v", err)
	}
	t.Cleanup(func() { h.Close() })

	if len(h.Loaded()) != 0 {
		t.Fatalf("expected the invalid plugin to fail loading silently, got %v", h.Loaded())
	}
}
