//go:build windows

package process

import "os/exec"

// setDetached is a no-op on Windows: there is no POSIX process-group
// equivalent wired here, so background processes are killed
// individually via killGroup.
func setDetached(cmd *exec.Cmd) {}

func killGroup(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return nil
	}
	return cmd.Process.Kill()
}
