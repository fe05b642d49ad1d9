/* This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at https://mozilla.org/MPL/2.0/. */

// Package supervisor spawns the entry process of an environment with a
// controlled variable set and drives its graceful-then-forced termination.
package supervisor

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/Aeliux/penv/internal/env"
	"github.com/Aeliux/penv/internal/log"
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// NotFoundError is returned by Terminate for a PID the supervisor is not
// tracking.
type NotFoundError struct {
	Pid int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no live supervised process with pid %d", e.Pid)
}

// handle tracks one live child. done closes once Wait has reaped the process,
// which is how Terminate races the grace timer against the exit without a
// second Wait on the same process.
type handle struct {
	process *os.Process
	done    chan struct{}
}

type Supervisor struct {
	ambient *env.Map

	mu      sync.Mutex
	handles map[int]*handle
}

// New returns a supervisor drawing launch environments from ambient.
func New(ambient *env.Map) *Supervisor {
	return &Supervisor{
		ambient: ambient,
		handles: make(map[int]*handle),
	}
}

// Command builds the child process description. The launch environment is an
// independent copy of the ambient set with overrides applied on top; an
// override always wins on key collision. Nil streams inherit the supervisor
// process's own standard streams. No shell is involved at this layer.
func (s *Supervisor) Command(executable string, argv []string, overrides map[string]string, stdin io.Reader, stdout, stderr io.Writer) *exec.Cmd {
	cmd := exec.Command(executable, argv...)

	launch := s.ambient.Copy()
	for key, value := range overrides {
		launch.Set(key, value)
	}

	cmd.Env = launch.List()

	if stdin == nil {
		cmd.Stdin = os.Stdin
	} else {
		cmd.Stdin = stdin
	}

	if stdout == nil {
		cmd.Stdout = os.Stdout
	} else {
		cmd.Stdout = stdout
	}

	if stderr == nil {
		cmd.Stderr = os.Stderr
	} else {
		cmd.Stderr = stderr
	}

	return cmd
}

// Start runs cmd and blocks until it exits, then invokes onExit with the wait
// result (nil on a clean exit). If the OS fails to spawn the process, onExit
// fires with the start error and no PID is ever tracked. Start does not
// background anything; run it in your own goroutine for a non-blocking
// launch.
func (s *Supervisor) Start(cmd *exec.Cmd, onExit func(*exec.Cmd, error)) {
	if err := cmd.Start(); err != nil {
		onExit(cmd, errors.Wrapf(err, "failed to start %s", cmd.Path))
		return
	}

	h := s.track(cmd.Process)
	err := cmd.Wait()
	s.forget(cmd.Process.Pid)
	close(h.done)

	onExit(cmd, err)
}

func (s *Supervisor) track(process *os.Process) *handle {
	h := &handle{process: process, done: make(chan struct{})}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.handles[process.Pid] = h
	return h
}

func (s *Supervisor) forget(pid int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.handles, pid)
}

// Pids returns the PIDs of all currently tracked children.
func (s *Supervisor) Pids() []int {
	s.mu.Lock()
	defer s.mu.Unlock()

	pids := make([]int, 0, len(s.handles))
	for pid := range s.handles {
		pids = append(pids, pid)
	}

	return pids
}

// Terminate asks the process to exit with SIGHUP and gives it grace to
// comply. If the grace period lapses first, the process is killed with
// SIGKILL, which it cannot ignore. Either way the exit itself is still
// reported through the onExit callback of the original Start call; Terminate
// does not report it a second time.
func (s *Supervisor) Terminate(pid int, grace time.Duration) error {
	s.mu.Lock()
	h, ok := s.handles[pid]
	s.mu.Unlock()

	if !ok {
		return &NotFoundError{Pid: pid}
	}

	if err := h.process.Signal(unix.SIGHUP); err != nil {
		if errors.Is(err, os.ErrProcessDone) {
			return &NotFoundError{Pid: pid}
		}

		return errors.Wrapf(err, "failed to signal pid %d", pid)
	}

	timer := time.NewTimer(grace)
	defer timer.Stop()

	select {
	case <-h.done:
		// Exited within the grace period; nothing left to do.
		return nil
	case <-timer.C:
		if err := h.process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
			return errors.Wrapf(err, "failed to kill pid %d", pid)
		}

		return nil
	}
}

// TerminateAll applies Terminate to every tracked child, best-effort: one
// stubborn PID does not stop the sweep, and tracking is always cleared
// afterwards so no handle leaks into a later session.
func (s *Supervisor) TerminateAll(grace time.Duration) {
	for _, pid := range s.Pids() {
		if err := s.Terminate(pid, grace); err != nil {
			log.Debugf("terminate %d: %v", pid, err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.handles = make(map[int]*handle)
}

// ResolveExecutable looks name up against PATH, giving callers a clear
// not-found answer before Start turns it into a spawn failure.
func ResolveExecutable(name string) (bool, string) {
	path, err := exec.LookPath(name)
	return err == nil, path
}
