/* This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at https://mozilla.org/MPL/2.0/. */

package main

import (
	"flag"

	"github.com/Aeliux/penv/internal/args"
	"github.com/google/subcommands"
)

type deleteCommand struct {
	name string
}

func newDeleteCommand(app args.App) subcommands.Command {
	return args.WrapSimpleCommand(app, &deleteCommand{})
}

func (*deleteCommand) Name() string {
	return "delete"
}

func (*deleteCommand) Synopsis() string {
	return "delete an environment"
}

func (*deleteCommand) Usage() string {
	return `delete <env>:
	Deletes the environment and its rootfs, staged or not.
`
}

func (*deleteCommand) SetFlags(fs *flag.FlagSet) {}

func (cmd *deleteCommand) ParsePositional(fs *flag.FlagSet) error {
	return args.ExpectArgs(fs, &cmd.name)
}

func (cmd *deleteCommand) Execute(app args.App, fs *flag.FlagSet) subcommands.ExitStatus {
	return args.HandleError(app.(*penvApp).store.Remove(cmd.name))
}
