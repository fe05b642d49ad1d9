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
	"github.com/Aeliux/penv/internal/log"
	"github.com/dustin/go-humanize"
	"github.com/google/subcommands"
	"github.com/hashicorp/go-version"
)

type listCommand struct {
	local      bool
	constraint string
}

func newListCommand(app args.App) subcommands.Command {
	return args.WrapSimpleCommand(app, &listCommand{})
}

func (*listCommand) Name() string {
	return "list"
}

func (*listCommand) Synopsis() string {
	return "list available distributions or installed environments"
}

func (*listCommand) Usage() string {
	return `list [-l] [-constraint <expr>]:
	Lists the distributions in the catalog that are usable on this machine. With -l, lists the
	locally installed environments instead.
`
}

func (cmd *listCommand) SetFlags(fs *flag.FlagSet) {
	fs.BoolVar(&cmd.local, "l", false, "List installed environments instead of the catalog")
	fs.StringVar(&cmd.constraint, "constraint", ">=0", "Only show distros satisfying this version constraint")
}

func (cmd *listCommand) ParsePositional(fs *flag.FlagSet) error {
	return args.ExpectArgs(fs)
}

func (cmd *listCommand) Execute(app args.App, fs *flag.FlagSet) subcommands.ExitStatus {
	if cmd.local {
		return cmd.executeLocal(app.(*penvApp))
	}

	return cmd.executeRemote(app.(*penvApp))
}

func (cmd *listCommand) executeLocal(app *penvApp) subcommands.ExitStatus {
	envs, err := app.store.List()
	if err != nil {
		return args.HandleError(err)
	}

	writer := tabwriter.NewWriter(os.Stdout, 0, 2, 2, ' ', 0)
	defer writer.Flush()

	for _, env := range envs {
		size, err := env.Size()
		if err != nil {
			log.Debug("failed to size ", env.Name, ": ", err)
		}

		fmt.Fprintf(writer, "%s\t%s %s\t%s\n",
			env.Name, env.Distro.Name, env.Distro.Version, humanize.Bytes(uint64(size)))
	}

	return subcommands.ExitSuccess
}

func (cmd *listCommand) executeRemote(app *penvApp) subcommands.ExitStatus {
	constraints, err := version.NewConstraint(cmd.constraint)
	if err != nil {
		return args.HandleError(err)
	}

	cat, err := app.client.Catalog(context.Background(), app.catalogURL)
	if err != nil {
		return args.HandleError(err)
	}

	writer := tabwriter.NewWriter(os.Stdout, 0, 2, 2, ' ', 0)
	defer writer.Flush()

	for _, entry := range cat.CompatibleDistros(constraints) {
		fmt.Fprintf(writer, "%s\t%s\t%s\t%s\n",
			entry.Info.Name, entry.Info.Family, entry.Info.Version, entry.Info.Description)
	}

	return subcommands.ExitSuccess
}
