/* This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at https://mozilla.org/MPL/2.0/. */

package main

import (
	"flag"
	"strings"

	"github.com/Aeliux/penv/internal/args"
	"github.com/Aeliux/penv/internal/env"
	"github.com/Aeliux/penv/internal/fetch"
	"github.com/Aeliux/penv/internal/store"
	"github.com/Aeliux/penv/internal/supervisor"
	"github.com/google/subcommands"
	"github.com/pkg/errors"
)

type penvApp struct {
	store      *store.Store
	client     *fetch.Client
	ambient    *env.Map
	super      *supervisor.Supervisor
	catalogURL string
}

func (app *penvApp) SetGlobalFlags(fs *flag.FlagSet) {
	fs.StringVar(&app.catalogURL, "catalog", fetch.DefaultCatalogURL, "The catalog URL")
}

// stringList is a repeatable string flag.
type stringList []string

func (l *stringList) String() string {
	return strings.Join(*l, ",")
}

func (l *stringList) Set(value string) error {
	if value == "" {
		return errors.New("empty value")
	}

	*l = append(*l, value)
	return nil
}

func main() {
	ambient := env.NewAmbient()

	app := &penvApp{
		store:   store.Default(),
		client:  fetch.NewClient(),
		ambient: ambient,
		super:   supervisor.New(ambient),
	}

	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(subcommands.CommandsCommand(), "")

	subcommands.Register(newListCommand(app), "")
	subcommands.Register(newAddonsCommand(app), "")
	subcommands.Register(newCreateCommand(app), "")
	subcommands.Register(newRunCommand(app), "")
	subcommands.Register(newDeleteCommand(app), "")
	subcommands.Register(newInfoCommand(app), "")
	subcommands.Register(newVersionCommand(app), "")

	args.Execute(app)
}
