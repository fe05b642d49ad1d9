/* This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at https://mozilla.org/MPL/2.0/. */

package supervisor

import (
	"bufio"
	"bytes"
	"errors"
	"os"
	"os/exec"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/Aeliux/penv/internal/env"
)

func newTestAmbient() *env.Map {
	return env.NewAmbient()
}

func newTestSupervisor() *Supervisor {
	return New(newTestAmbient())
}

// startShell spawns a shell script under the supervisor and blocks until the
// script has printed "ready", so signal tests never race the trap setup. The
// returned channel carries the wait result once the child exits.
func startShell(t *testing.T, s *Supervisor, script string) (int, <-chan error) {
	t.Helper()

	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}

	cmd := s.Command("/bin/sh", []string{"-c", script}, nil, nil, w, nil)

	exited := make(chan error, 1)
	started := make(chan int, 1)

	go s.Start(cmd, func(cmd *exec.Cmd, err error) {
		exited <- err
	})

	go func() {
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			if scanner.Text() == "ready" {
				started <- cmd.Process.Pid
				return
			}
		}

		started <- -1
	}()

	select {
	case pid := <-started:
		w.Close()
		if pid < 0 {
			t.Fatal("child exited before signaling readiness")
		}

		return pid, exited
	case <-time.After(10 * time.Second):
		t.Fatal("timed out waiting for child readiness")
		return -1, nil
	}
}

func TestStartMissingExecutable(t *testing.T) {
	s := newTestSupervisor()

	cmd := s.Command("/does/not/exist", nil, nil, nil, nil, nil)

	var gotErr error
	s.Start(cmd, func(cmd *exec.Cmd, err error) {
		gotErr = err
	})

	if gotErr == nil {
		t.Fatal("expected a spawn failure")
	}

	if pids := s.Pids(); len(pids) != 0 {
		t.Errorf("spawn failure left tracked pids behind: %v", pids)
	}
}

func TestCommandEnvironment(t *testing.T) {
	ambient := newTestAmbient()
	ambient.Set("FROM_AMBIENT", "ambient")
	ambient.Set("SHADOWED", "ambient loses")

	s := New(ambient)

	var stdout bytes.Buffer
	overrides := map[string]string{
		"SHADOWED":      "override wins",
		"FROM_OVERRIDE": "override",
	}

	cmd := s.Command("/bin/sh", []string{"-c", `printf '%s|%s|%s' "$FROM_AMBIENT" "$SHADOWED" "$FROM_OVERRIDE"`}, overrides, nil, &stdout, nil)

	done := make(chan error, 1)
	s.Start(cmd, func(cmd *exec.Cmd, err error) {
		done <- err
	})

	if err := <-done; err != nil {
		t.Fatalf("child failed: %v", err)
	}

	if got := stdout.String(); got != "ambient|override wins|override" {
		t.Errorf("child saw %q", got)
	}

	// Building the command must not mutate the ambient set.
	if value, _ := ambient.Get("SHADOWED"); value != "ambient loses" {
		t.Errorf("ambient SHADOWED became %q", value)
	}
}

func TestStartReportsExitFailure(t *testing.T) {
	s := newTestSupervisor()

	cmd := s.Command("/bin/sh", []string{"-c", "exit 3"}, nil, nil, nil, nil)

	var gotErr error
	s.Start(cmd, func(cmd *exec.Cmd, err error) {
		gotErr = err
	})

	var exit *exec.ExitError
	if !errors.As(gotErr, &exit) {
		t.Fatalf("expected an ExitError, got %v", gotErr)
	}

	if code := exit.ExitCode(); code != 3 {
		t.Errorf("exit code = %d, want 3", code)
	}

	if pids := s.Pids(); len(pids) != 0 {
		t.Errorf("exited child still tracked: %v", pids)
	}
}

func TestTerminateGraceful(t *testing.T) {
	s := newTestSupervisor()

	pid, exited := startShell(t, s, `trap 'exit 0' HUP; echo ready; while :; do sleep 0.1; done`)

	// Generous grace; a cooperating child must never run it out.
	start := time.Now()
	if err := s.Terminate(pid, 5*time.Second); err != nil {
		t.Fatalf("failed to terminate: %v", err)
	}

	if err := <-exited; err != nil {
		t.Errorf("graceful exit reported an error: %v", err)
	}

	if elapsed := time.Since(start); elapsed > 3*time.Second {
		t.Errorf("graceful termination took %v", elapsed)
	}
}

func TestTerminateForceKillsAfterGrace(t *testing.T) {
	s := newTestSupervisor()

	pid, exited := startShell(t, s, `trap '' HUP; echo ready; while :; do sleep 0.1; done`)

	grace := time.Second
	start := time.Now()
	if err := s.Terminate(pid, grace); err != nil {
		t.Fatalf("failed to terminate: %v", err)
	}

	err := <-exited

	if elapsed := time.Since(start); elapsed < grace {
		t.Errorf("killed after %v, before the %v grace lapsed", elapsed, grace)
	}

	var exit *exec.ExitError
	if !errors.As(err, &exit) {
		t.Fatalf("expected an ExitError from the kill, got %v", err)
	}

	status, ok := exit.Sys().(syscall.WaitStatus)
	if !ok {
		t.Fatalf("unexpected wait status type %T", exit.Sys())
	}

	if !status.Signaled() || status.Signal() != syscall.SIGKILL {
		t.Errorf("child did not die from SIGKILL: %v", status)
	}
}

func TestTerminateUnknownPid(t *testing.T) {
	s := newTestSupervisor()

	err := s.Terminate(999999, time.Second)

	var notFound *NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected a NotFoundError, got %v", err)
	}

	if notFound.Pid != 999999 {
		t.Errorf("Pid = %d, want 999999", notFound.Pid)
	}
}

func TestTerminateAll(t *testing.T) {
	s := newTestSupervisor()

	_, first := startShell(t, s, `trap 'exit 0' HUP; echo ready; while :; do sleep 0.1; done`)
	_, second := startShell(t, s, `trap 'exit 0' HUP; echo ready; while :; do sleep 0.1; done`)

	if got := len(s.Pids()); got != 2 {
		t.Fatalf("tracking %d pids, want 2", got)
	}

	s.TerminateAll(5 * time.Second)

	<-first
	<-second

	if pids := s.Pids(); len(pids) != 0 {
		t.Errorf("TerminateAll left tracked pids: %v", pids)
	}
}

func TestResolveExecutable(t *testing.T) {
	if ok, path := ResolveExecutable("sh"); !ok || !strings.HasSuffix(path, "/sh") {
		t.Errorf("ResolveExecutable(sh) = %v, %q", ok, path)
	}

	if ok, _ := ResolveExecutable("penv-no-such-binary"); ok {
		t.Error("resolved a binary that does not exist")
	}
}
