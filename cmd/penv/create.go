/* This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at https://mozilla.org/MPL/2.0/. */

package main

import (
	"context"
	"flag"

	"github.com/Aeliux/penv/internal/args"
	"github.com/Aeliux/penv/internal/create"
	"github.com/google/subcommands"
)

type createCommand struct {
	constraint string
	addons     stringList
	name       string
}

func newCreateCommand(app args.App) subcommands.Command {
	return args.WrapSimpleCommand(app, &createCommand{})
}

func (*createCommand) Name() string {
	return "create"
}

func (*createCommand) Synopsis() string {
	return "create a new environment"
}

func (*createCommand) Usage() string {
	return `create [-constraint <expr>] [-addon <name>]... <name>:
	Creates a new environment from the latest catalog distribution that satisfies the version
	constraint and is usable on this machine, then applies the requested addons.
`
}

func (cmd *createCommand) SetFlags(fs *flag.FlagSet) {
	fs.StringVar(&cmd.constraint, "constraint", ">=0", "The distro version constraint (e.g. \">=20.04, <22.00\")")
	fs.Var(&cmd.addons, "addon", "An addon to apply (may be repeated)")
}

func (cmd *createCommand) ParsePositional(fs *flag.FlagSet) error {
	return args.ExpectArgs(fs, &cmd.name)
}

func (cmd *createCommand) Execute(app args.App, fs *flag.FlagSet) subcommands.ExitStatus {
	papp := app.(*penvApp)

	err := create.Create(context.Background(), papp.store, papp.client, create.Options{
		Name:       cmd.name,
		Constraint: cmd.constraint,
		Addons:     cmd.addons,
		CatalogURL: papp.catalogURL,
	})

	return args.HandleError(err)
}
