//go:build !unix

package cli

import "os/exec"

func configureProcessGroup(cmd *exec.Cmd) {}
