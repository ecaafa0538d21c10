//go:build windows

package export

import "os/exec"

// setProcessGroup is a no-op on Windows; exec.CommandContext's default kill
// plus WaitDelay covers pipe shutdown there.
func setProcessGroup(cmd *exec.Cmd) {}
