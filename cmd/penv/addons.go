/* This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at https://mozilla.org/MPL/2.0/. */

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/Aeliux/penv/internal/args"
	"github.com/google/subcommands"
)

type addonsCommand struct {
	name string
}

func newAddonsCommand(app args.App) subcommands.Command {
	return args.WrapSimpleCommand(app, &addonsCommand{})
}

func (*addonsCommand) Name() string {
	return "addons"
}

func (*addonsCommand) Synopsis() string {
	return "list addons compatible with an environment"
}

func (*addonsCommand) Usage() string {
	return `addons <env>:
	Lists the catalog addons applicable to the given installed environment on this machine.
`
}

func (*addonsCommand) SetFlags(fs *flag.FlagSet) {}

func (cmd *addonsCommand) ParsePositional(fs *flag.FlagSet) error {
	return args.ExpectArgs(fs, &cmd.name)
}

func (cmd *addonsCommand) Execute(app args.App, fs *flag.FlagSet) subcommands.ExitStatus {
	papp := app.(*penvApp)

	env, err := papp.store.Open(cmd.name)
	if err != nil {
		return args.HandleError(err)
	}

	cat, err := papp.client.Catalog(context.Background(), papp.catalogURL)
	if err != nil {
		return args.HandleError(err)
	}

	writer := tabwriter.NewWriter(os.Stdout, 0, 2, 2, ' ', 0)
	defer writer.Flush()

	for _, entry := range cat.CompatibleAddons(env.Distro) {
		fmt.Fprintf(writer, "%s\t%s\t%s\n",
			entry.Info.Name, entry.Info.Version, entry.Info.Description)
	}

	return subcommands.ExitSuccess
}
