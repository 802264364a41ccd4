//go:build !linux

package bootstrap

import "os/exec"

// setPlatformSpecificAttrs is a no-op outside Linux.
// Pdeathsig is not supported there; child lifecycle is managed via the
// context's termination signal provided by exec.CommandContext.
func setPlatformSpecificAttrs(cmd *exec.Cmd) {
	_ = cmd
}
