/* This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at https://mozilla.org/MPL/2.0/. */

package main

import (
	"flag"
	"fmt"
	"runtime"

	"github.com/Aeliux/penv/internal/args"
	"github.com/google/subcommands"
)

const appVersion = "3.0.0"

type versionCommand struct{}

func newVersionCommand(app args.App) subcommands.Command {
	return args.WrapSimpleCommand(app, &versionCommand{})
}

func (*versionCommand) Name() string {
	return "version"
}

func (*versionCommand) Synopsis() string {
	return "show the penv version"
}

func (*versionCommand) Usage() string {
	return `version:
	Shows the penv version.
`
}

func (*versionCommand) SetFlags(fs *flag.FlagSet) {}

func (*versionCommand) ParsePositional(fs *flag.FlagSet) error {
	return args.ExpectArgs(fs)
}

func (*versionCommand) Execute(app args.App, fs *flag.FlagSet) subcommands.ExitStatus {
	fmt.Printf("penv %s (%s)\n", appVersion, runtime.GOARCH)
	return subcommands.ExitSuccess
}
