//go:build !windows

package setup

import "os"

// processElevated reports whether the process runs as root.
func processElevated() bool {
	return os.Geteuid() == 0
}
