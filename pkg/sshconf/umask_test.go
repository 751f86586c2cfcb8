//go:build !windows

package sshconf

import "syscall"

// umask swaps the process umask, returning the previous value. Permission
// tests use it to prove modes are enforced explicitly rather than inherited.
func umask(mask int) int {
	return syscall.Umask(mask)
}
