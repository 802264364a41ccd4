//go:build linux

package bootstrap

import (
	"os/exec"
	"syscall"
)

// setPlatformSpecificAttrs configures process attributes specifically for Linux systems.
// It uses Pdeathsig to ensure that a child process (chatbot or tool server) is
// automatically terminated by the kernel if the parent launcher exits.
func setPlatformSpecificAttrs(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Pdeathsig: syscall.SIGKILL,
	}
}
