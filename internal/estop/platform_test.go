package estop

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func writeCPUInfo(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cpuinfo")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDetectPlatformPiModels(t *testing.T) {
	cases := []struct {
		body string
		want string
	}{
		{"Hardware\t: BCM2712\n", "Raspberry Pi 5"},
		{"Hardware\t: BCM2711\n", "Raspberry Pi 4"},
		{"Hardware\t: BCM2835\n", "Raspberry Pi (older model)"},
	}
	for _, tc := range cases {
		path := writeCPUInfo(t, tc.body)
		if got := detectPlatform(path); got != tc.want {
			t.Errorf("detectPlatform(%q): got %q, want %q", tc.body, got, tc.want)
		}
	}
}

func TestDetectPlatformNonPi(t *testing.T) {
	path := writeCPUInfo(t, "model name\t: generic x86\n")
	got := detectPlatform(path)

	want := "Non-Pi system"
	if runtime.GOOS == "darwin" {
		want = "macOS (simulation)"
	}
	if got != want {
		t.Errorf("detectPlatform: got %q, want %q", got, want)
	}
}

func TestDetectPlatformMissingFile(t *testing.T) {
	got := detectPlatform(filepath.Join(t.TempDir(), "nope"))
	if got == "" {
		t.Error("detectPlatform should never return empty")
	}
}
