//go:build unix

package export

import (
	"os"
	"os/exec"
	"syscall"
)

// setProcessGroup puts the backend in its own process group and replaces the
// default context cancel with a kill of that group, so ffmpeg's descendants
// die with it instead of keeping the stderr pipe open.
func setProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		if cmd.Process == nil {
			return nil
		}
		err := syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
		if err == syscall.ESRCH {
			return os.ErrProcessDone
		}
		return err
	}
}
