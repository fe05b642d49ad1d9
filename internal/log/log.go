/* This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at https://mozilla.org/MPL/2.0/. */

package log

import (
	"flag"
	"fmt"
	"os"

	"github.com/coreos/go-systemd/journal"
)

// Why not use another logger? Well, we have two specific requirements we want to settle:
// - We don't want a timestamp prefix, since logs will ever only go to the CLI (where the prefix
// 	 is insignificant) or to the journal (where timestamps are already added).
// - We want basic leveled logs.
// - We *don't* need overly fancy functionality.
// When stdio is already connected to the journal, messages go through the journal socket
// instead so each entry keeps its priority.

var verbose bool

// Set when running under a systemd unit with stdio pointed at the journal.
var journaled = os.Getenv("JOURNAL_STREAM") != "" && journal.Enabled()

func SetFlags(fs *flag.FlagSet) {
	fs.BoolVar(&verbose, "v", verbose, "Be verbose")
}

func Verbose() bool {
	return verbose
}

func SetVerbose(newVerbose bool) {
	verbose = newVerbose
}

func send(priority journal.Priority, message string) bool {
	if !journaled {
		return false
	}

	return journal.Send(message, priority, nil) == nil
}

func Info(args ...interface{}) {
	if send(journal.PriInfo, fmt.Sprint(args...)) {
		return
	}

	fmt.Println(args...)
}

func Infof(format string, args ...interface{}) {
	if send(journal.PriInfo, fmt.Sprintf(format, args...)) {
		return
	}

	fmt.Printf(format+"\n", args...)
}

func Debug(args ...interface{}) {
	if !verbose {
		return
	}

	if send(journal.PriDebug, fmt.Sprint(args...)) {
		return
	}

	Alert(args...)
}

func Debugf(format string, args ...interface{}) {
	if !verbose {
		return
	}

	if send(journal.PriDebug, fmt.Sprintf(format, args...)) {
		return
	}

	Alertf(format, args...)
}

func Alert(args ...interface{}) {
	if send(journal.PriErr, fmt.Sprint(args...)) {
		return
	}

	fmt.Fprintln(os.Stderr, args...)
}

func Alertf(format string, args ...interface{}) {
	if send(journal.PriErr, fmt.Sprintf(format, args...)) {
		return
	}

	fmt.Fprintf(os.Stderr, format+"\n", args...)
}

func Fatal(args ...interface{}) {
	Alert(args...)
	os.Exit(1)
}

func Fatalf(format string, args ...interface{}) {
	Alertf(format, args...)
	os.Exit(1)
}
