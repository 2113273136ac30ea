package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/entitymap/pkg/buildinfo"
)

func TestSetVersion(t *testing.T) {
	saved := buildinfo.Version
	savedCommit := buildinfo.Commit
	savedDate := buildinfo.Date
	t.Cleanup(func() {
		buildinfo.Version, buildinfo.Commit, buildinfo.Date = saved, savedCommit, savedDate
	})

	SetVersion("1.0.0", "abc123", "2024-01-01")

	if buildinfo.Version != "1.0.0" {
		t.Errorf("Version = %q, want %q", buildinfo.Version, "1.0.0")
	}
	if buildinfo.Commit != "abc123" {
		t.Errorf("Commit = %q, want %q", buildinfo.Commit, "abc123")
	}
	if buildinfo.Date != "2024-01-01" {
		t.Errorf("Date = %q, want %q", buildinfo.Date, "2024-01-01")
	}
}

func TestSetVersionEmpty(t *testing.T) {
	saved := buildinfo.Version
	t.Cleanup(func() { buildinfo.Version = saved })

	buildinfo.Version = "v0.1.0"
	SetVersion("", "", "")

	if buildinfo.Version != "v0.1.0" {
		t.Errorf("empty SetVersion overwrote Version: got %q", buildinfo.Version)
	}
}

func TestRootCommand_Subcommands(t *testing.T) {
	root := New(&bytes.Buffer{}, LogInfo).RootCommand()

	want := []string{"render", "explore", "shell", "serve", "catalog", "cache", "completion"}
	for _, name := range want {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}

func TestRootCommand_Version(t *testing.T) {
	var out bytes.Buffer
	root := New(&bytes.Buffer{}, LogInfo).RootCommand()
	root.SetOut(&out)
	root.SetArgs([]string{"--version"})

	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("--version: %v", err)
	}
	if !strings.HasPrefix(out.String(), "entitymap version ") {
		t.Errorf("version output = %q", out.String())
	}
}

func TestRootCommand_BadResolve(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	root := New(&bytes.Buffer{}, LogInfo).RootCommand()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"--resolve", "fuzzy", "catalog", "list"})

	if err := root.ExecuteContext(context.Background()); err == nil {
		t.Fatal("expected error for unknown resolve mode")
	}
}

func complete(t *testing.T, args ...string) string {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	var out bytes.Buffer
	root := New(&bytes.Buffer{}, LogInfo).RootCommand()
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(append([]string{"__complete"}, args...))
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("__complete %v: %v", args, err)
	}
	return out.String()
}

func TestCompletion_Classes(t *testing.T) {
	got := complete(t, "catalog", "show", "shop.Cu")
	if !strings.Contains(got, "shop.Customer") {
		t.Errorf("completion %q missing shop.Customer", got)
	}
	if strings.Contains(got, "shop.Order") {
		t.Errorf("completion %q ignores the prefix", got)
	}

	got = complete(t, "render", "--root", "")
	if !strings.Contains(got, "shop.Order") {
		t.Errorf("--root completion %q missing shop.Order", got)
	}
}

func TestCompletion_Formats(t *testing.T) {
	got := complete(t, "render", "--format", "svg,")
	if !strings.Contains(got, "svg,json") {
		t.Errorf("format completion %q does not extend the list", got)
	}

	got = complete(t, "--resolve", "")
	for _, mode := range []string{"id", "short-name"} {
		if !strings.Contains(got, mode) {
			t.Errorf("resolve completion %q missing %s", got, mode)
		}
	}
}
