//go:build !windows

package process

import "syscall"

// killTree sends SIGKILL to the process group led by pid. Chrome is started
// as a group leader, so its helpers share the group.
func killTree(pid int) error {
	return syscall.Kill(-pid, syscall.SIGKILL)
}
