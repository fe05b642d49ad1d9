/* This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at https://mozilla.org/MPL/2.0/. */

package main

import (
	"flag"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/Aeliux/penv/internal/args"
	"github.com/Aeliux/penv/internal/hooks"
	"github.com/Aeliux/penv/internal/supervisor"
	"github.com/google/subcommands"
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

type runCommand struct {
	pty     bool
	grace   int
	envVars stringList
	name    string
	argv    []string
}

func newRunCommand(app args.App) subcommands.Command {
	return args.WrapSimpleCommand(app, &runCommand{})
}

func (*runCommand) Name() string {
	return "run"
}

func (*runCommand) Synopsis() string {
	return "run a command supervised in an environment"
}

func (*runCommand) Usage() string {
	return `run [-pty] [-grace <seconds>] [-e KEY=VALUE]... <env> <exec> [<args>...]:
	Runs the executable under the supervisor with the environment's variables applied. When penv
	itself receives SIGINT or SIGTERM, the child is asked to exit and killed after the grace
	period if it refuses.
`
}

func (cmd *runCommand) SetFlags(fs *flag.FlagSet) {
	fs.BoolVar(&cmd.pty, "pty", false, "Attach the process to a fresh pseudo-terminal")
	fs.IntVar(&cmd.grace, "grace", 10, "Grace period in seconds before a stubborn process is killed")
	fs.Var(&cmd.envVars, "e", "Set an environment variable for the process (KEY=VALUE, may be repeated)")
}

func (cmd *runCommand) ParsePositional(fs *flag.FlagSet) error {
	if fs.NArg() < 2 {
		return errors.New("expected an environment name and an executable")
	}

	cmd.name = fs.Arg(0)
	cmd.argv = fs.Args()[1:]
	return nil
}

func (cmd *runCommand) overrides(envPath, rootfs string) (map[string]string, error) {
	// Hook scripts communicate variables back through signal files; apply
	// those first so an explicit -e still wins.
	overrides, err := hooks.ReadSignals(filepath.Join(envPath, "signals"))
	if err != nil {
		return nil, err
	}

	if overrides == nil {
		overrides = make(map[string]string)
	}

	for _, pair := range cmd.envVars {
		parts := strings.SplitN(pair, "=", 2)
		if len(parts) != 2 {
			return nil, errors.Errorf("invalid -e value %q (expected KEY=VALUE)", pair)
		}

		overrides[parts[0]] = parts[1]
	}

	overrides["PENV_NAME"] = cmd.name
	overrides["PENV_ROOTFS"] = rootfs

	return overrides, nil
}

func (cmd *runCommand) Execute(app args.App, fs *flag.FlagSet) subcommands.ExitStatus {
	papp := app.(*penvApp)

	env, err := papp.store.Open(cmd.name)
	if err != nil {
		return args.HandleError(err)
	}

	overrides, err := cmd.overrides(env.Path, env.Rootfs())
	if err != nil {
		return args.HandleError(err)
	}

	found, executable := supervisor.ResolveExecutable(cmd.argv[0])
	if !found {
		return args.HandleError(errors.Errorf("executable %s not found in PATH", cmd.argv[0]))
	}

	child := papp.super.Command(executable, cmd.argv[1:], overrides, nil, nil, nil)

	exited := make(chan error, 1)
	onExit := func(_ *exec.Cmd, err error) {
		exited <- err
	}

	if cmd.pty {
		master, err := papp.super.StartPty(child, onExit)
		if err != nil {
			return args.HandleError(err)
		}

		defer master.Close()

		go io.Copy(master, os.Stdin)
		go io.Copy(os.Stdout, master)
	} else {
		go papp.super.Start(child, onExit)
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, unix.SIGINT, unix.SIGTERM)
	defer signal.Stop(sigs)

	grace := time.Duration(cmd.grace) * time.Second

	for {
		select {
		case <-sigs:
			// Drive the escalating shutdown without blocking exit delivery.
			go papp.super.TerminateAll(grace)
		case err := <-exited:
			return exitStatus(err)
		}
	}
}

func exitStatus(err error) subcommands.ExitStatus {
	if err == nil {
		return subcommands.ExitSuccess
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() > 0 {
		return subcommands.ExitStatus(exitErr.ExitCode())
	}

	return args.HandleError(err)
}
