package estop

import (
	"os"
	"runtime"
	"strings"
)

const cpuinfoPath = "/proc/cpuinfo"

// detectPlatform identifies the board for the status record. Raspberry Pi
// models are recognized by their SoC in /proc/cpuinfo; anything else is
// reported generically.
func detectPlatform(path string) string {
	data, err := os.ReadFile(path)
	if err == nil {
		info := string(data)
		switch {
		case strings.Contains(info, "BCM2712"):
			return "Raspberry Pi 5"
		case strings.Contains(info, "BCM2711"):
			return "Raspberry Pi 4"
		case strings.Contains(info, "BCM"):
			return "Raspberry Pi (older model)"
		}
	}

	if runtime.GOOS == "darwin" {
		return "macOS (simulation)"
	}
	return "Non-Pi system"
}
