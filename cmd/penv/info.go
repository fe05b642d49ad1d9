/* This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at https://mozilla.org/MPL/2.0/. */

package main

import (
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/Aeliux/penv/internal/args"
	"github.com/Aeliux/penv/internal/log"
	"github.com/dustin/go-humanize"
	"github.com/google/subcommands"
)

type infoCommand struct {
	name string
}

func newInfoCommand(app args.App) subcommands.Command {
	return args.WrapSimpleCommand(app, &infoCommand{})
}

func (*infoCommand) Name() string {
	return "info"
}

func (*infoCommand) Synopsis() string {
	return "show details about an environment"
}

func (*infoCommand) Usage() string {
	return `info <env>:
	Shows the environment's distribution metadata and disk usage.
`
}

func (*infoCommand) SetFlags(fs *flag.FlagSet) {}

func (cmd *infoCommand) ParsePositional(fs *flag.FlagSet) error {
	return args.ExpectArgs(fs, &cmd.name)
}

func (cmd *infoCommand) Execute(app args.App, fs *flag.FlagSet) subcommands.ExitStatus {
	env, err := app.(*penvApp).store.Open(cmd.name)
	if err != nil {
		return args.HandleError(err)
	}

	size, err := env.Size()
	if err != nil {
		log.Debug("failed to size ", env.Name, ": ", err)
	}

	writer := tabwriter.NewWriter(os.Stdout, 0, 2, 1, ' ', tabwriter.AlignRight)
	defer writer.Flush()

	fmt.Fprintln(writer, "Name:\t", env.Name)
	fmt.Fprintln(writer, "Distro:\t", env.Distro.Name)
	fmt.Fprintln(writer, "Family:\t", env.Distro.Family)
	fmt.Fprintln(writer, "Version:\t", env.Distro.Version)

	if env.Distro.DistroCodename != "" {
		fmt.Fprintln(writer, "Codename:\t", env.Distro.DistroCodename)
	}

	fmt.Fprintln(writer, "Size:\t", humanize.Bytes(uint64(size)))
	fmt.Fprintln(writer, "Path:\t", env.Path)

	return subcommands.ExitSuccess
}
