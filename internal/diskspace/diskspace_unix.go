//go:build !windows

package diskspace

import "syscall"

// Available returns the bytes available to this user on dir's volume,
// or 0 when the volume cannot be inspected.
func Available(dir string) int64 {
	var stat syscall.Statfs_t
	if err := syscall.Statfs(dir, &stat); err != nil {
		return 0
	}
	// Bavail counts blocks available to unprivileged users.
	return int64(stat.Bavail) * int64(stat.Bsize)
}
