package version

import (
	"runtime"
	"testing"
)

func TestGet(t *testing.T) {
	info := Get()

	if info.Name != Name {
		t.Errorf("Name = %q, want %q", info.Name, Name)
	}
	if info.Version == "" {
		t.Error("Version should not be empty")
	}
	if info.Commit == "" {
		t.Error("Commit should not be empty")
	}
	if info.GoVersion != runtime.Version() {
		t.Errorf("GoVersion = %q, want %q", info.GoVersion, runtime.Version())
	}
}

func TestGet_ReflectsLdflagOverrides(t *testing.T) {
	orig := Version
	t.Cleanup(func() { Version = orig })

	Version = "2.3.4"
	if got := Get().Version; got != "2.3.4" {
		t.Errorf("Version = %q, want 2.3.4", got)
	}
}

func TestInfoString(t *testing.T) {
	info := Info{Name: "svc", Version: "1.2.3", Commit: "abc123", BuildTime: "2025-06-01T12:00:00Z", GoVersion: "go1.25.1"}

	want := "svc 1.2.3 (commit abc123, built 2025-06-01T12:00:00Z, go1.25.1)"
	if got := info.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
