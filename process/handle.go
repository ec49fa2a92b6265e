package process

import (
	"fmt"
	"os/exec"
)

// Handle is the fine-grained process control spec.md §4.8's
// `spawn_process` returns: the caller owns waiting for and, if needed,
// killing the process.
type Handle struct {
	cmd *exec.Cmd
	Pid int
}

// SpawnProcess starts argv[0] with argv[1:] and returns a Handle
// without waiting for it, per spec.md §4.8's `spawn_process`.
func SpawnProcess(argv []string, opts Options) (*Handle, error) {
	if len(argv) == 0 {
		return nil, fmt.Errorf("process: spawn_process: empty command")
	}
	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Dir = opts.Dir
	if env := opts.envSlice(); env != nil {
		cmd.Env = env
	}
	setDetached(cmd)
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("process: %s: %w", argv[0], err)
	}
	return &Handle{cmd: cmd, Pid: cmd.Process.Pid}, nil
}

// Wait blocks until the process exits and returns its exit code.
func (h *Handle) Wait() (int, error) {
	err := h.cmd.Wait()
	if err == nil {
		return 0, nil
	}
	if exitErr, ok := err.(*exec.ExitError); ok {
		return exitErr.ExitCode(), nil
	}
	return -1, fmt.Errorf("process: wait: %w", err)
}

// Kill terminates the process (and, where supported, its process
// group) immediately.
func (h *Handle) Kill() error {
	return killGroup(h.cmd)
}
