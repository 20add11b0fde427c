package version

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

// withBuild sets the build variables for one test.
func withBuild(t *testing.T, v, c, b string) {
	t.Helper()
	origVersion, origCommit, origBuildTime := Version, Commit, BuildTime
	t.Cleanup(func() {
		Version, Commit, BuildTime = origVersion, origCommit, origBuildTime
	})
	Version, Commit, BuildTime = v, c, b
}

func TestString(t *testing.T) {
	t.Run("default values", func(t *testing.T) {
		withBuild(t, "dev", "unknown", "unknown")

		if got, want := String(), "dev (unknown) built unknown"; got != want {
			t.Errorf("String() = %q, want %q", got, want)
		}
	})

	t.Run("custom values", func(t *testing.T) {
		withBuild(t, "1.2.3", "abc1234", "2026-01-15T10:00:00Z")

		if got, want := String(), "1.2.3 (abc1234) built 2026-01-15T10:00:00Z"; got != want {
			t.Errorf("String() = %q, want %q", got, want)
		}
	})
}

func TestUserAgent(t *testing.T) {
	withBuild(t, "0.4.0", "abc", "now")

	if got := UserAgent("futures-stream"); got != "futures-stream/0.4.0" {
		t.Errorf("UserAgent() = %q", got)
	}
}

func TestAttr(t *testing.T) {
	withBuild(t, "0.4.0", "abc1234", "2026-01-15T10:00:00Z")

	var buf bytes.Buffer
	slog.New(slog.NewTextHandler(&buf, nil)).Info("starting", Attr())

	out := buf.String()
	for _, want := range []string{"build.version=0.4.0", "build.commit=abc1234", "build.built=2026-01-15T10:00:00Z"} {
		if !strings.Contains(out, want) {
			t.Errorf("log line %q missing %q", out, want)
		}
	}
}

func TestDefaultValues(t *testing.T) {
	// Might be overwritten by ldflags in production builds.
	if Version == "" {
		t.Error("Version should not be empty")
	}
	if Commit == "" {
		t.Error("Commit should not be empty")
	}
	if BuildTime == "" {
		t.Error("BuildTime should not be empty")
	}
}
