//go:build !windows

package processutil

import (
	"os/exec"
	"syscall"
)

// HideConsoleWindow is a no-op outside Windows.
func HideConsoleWindow(cmd *exec.Cmd) {}

// OwnProcessGroup starts cmd in a new process group, so a Ctrl+C in the
// terminal reaches only this program. The child is then stopped the
// orderly way, by closing its stdin.
func OwnProcessGroup(cmd *exec.Cmd) {
	if cmd == nil {
		return
	}
	if cmd.SysProcAttr == nil {
		cmd.SysProcAttr = &syscall.SysProcAttr{}
	}
	cmd.SysProcAttr.Setpgid = true
}
