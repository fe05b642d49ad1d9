/* This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at https://mozilla.org/MPL/2.0/. */

package supervisor

import (
	"os"
	"os/exec"

	"github.com/kr/pty"
	"github.com/pkg/errors"
)

// StartPty is Start for interactive sessions: the child runs attached to a
// fresh pseudo-terminal whose master side is returned for the caller to pump.
// Any streams set on cmd are replaced by the pty. Unlike Start, StartPty
// returns as soon as the child is running; the wait happens on an internal
// goroutine and onExit fires from there.
func (s *Supervisor) StartPty(cmd *exec.Cmd, onExit func(*exec.Cmd, error)) (*os.File, error) {
	// pty.Start only attaches the tty to streams that are nil; clear any
	// previously set streams so the pty replaces them as documented.
	cmd.Stdin = nil
	cmd.Stdout = nil
	cmd.Stderr = nil

	master, err := pty.Start(cmd)
	if err != nil {
		err = errors.Wrapf(err, "failed to start %s on a pty", cmd.Path)
		onExit(cmd, err)
		return nil, err
	}

	h := s.track(cmd.Process)

	go func() {
		err := cmd.Wait()
		s.forget(cmd.Process.Pid)
		close(h.done)

		onExit(cmd, err)
	}()

	return master, nil
}
