package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/entitymap/pkg/cache"
)

func TestCachePathCommand(t *testing.T) {
	base := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", base)

	var out bytes.Buffer
	cmd := New(&bytes.Buffer{}, LogInfo).cachePathCommand()
	cmd.SetOut(&out)
	cmd.SetArgs(nil)
	if err := cmd.Execute(); err != nil {
		t.Fatalf("cache path: %v", err)
	}

	want := filepath.Join(base, "entitymap")
	if got := strings.TrimSpace(out.String()); got != want {
		t.Errorf("cache path = %q, want %q", got, want)
	}
}

func TestCacheClearCommand(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	dir, err := cache.DefaultDir()
	if err != nil {
		t.Fatal(err)
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	for _, key := range []string{"artifact:a", "artifact:b"} {
		if err := fc.Set(ctx, key, []byte("<svg/>"), time.Hour); err != nil {
			t.Fatal(err)
		}
	}

	cmd := New(&bytes.Buffer{}, LogInfo).cacheClearCommand()
	cmd.SetArgs(nil)
	if err := cmd.Execute(); err != nil {
		t.Fatalf("cache clear: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("cache dir still has %d entries", len(entries))
	}
	if _, ok, _ := fc.Get(ctx, "artifact:a"); ok {
		t.Error("entry survived clear")
	}
}

func TestCacheClearCommand_Missing(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", filepath.Join(t.TempDir(), "absent"))

	cmd := New(&bytes.Buffer{}, LogInfo).cacheClearCommand()
	cmd.SetArgs(nil)
	if err := cmd.Execute(); err != nil {
		t.Fatalf("clearing a missing cache should succeed: %v", err)
	}
}

func TestCachePruneCommand(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	dir, _ := cache.DefaultDir()
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	if err := fc.Set(ctx, "artifact:stale", []byte("x"), time.Nanosecond); err != nil {
		t.Fatal(err)
	}
	if err := fc.Set(ctx, "artifact:fresh", []byte("y"), time.Hour); err != nil {
		t.Fatal(err)
	}
	time.Sleep(5 * time.Millisecond)

	cmd := New(&bytes.Buffer{}, LogInfo).cachePruneCommand()
	cmd.SetArgs(nil)
	if err := cmd.Execute(); err != nil {
		t.Fatalf("cache prune: %v", err)
	}

	files := 0
	filepath.WalkDir(dir, func(_ string, d os.DirEntry, err error) error {
		if err == nil && !d.IsDir() {
			files++
		}
		return nil
	})
	if files != 1 {
		t.Errorf("%d files left after prune, want 1", files)
	}
	if _, ok, _ := fc.Get(ctx, "artifact:fresh"); !ok {
		t.Error("fresh entry was pruned")
	}
}
