/* This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at https://mozilla.org/MPL/2.0/. */

// Package hooks is the boundary to the per-distribution shell hook scripts.
// The scripts themselves are opaque to penv; all that crosses the boundary is
// the lifecycle mode they run for, a verbosity flag, and a signal-file
// directory the scripts drop KEY=value files into for penv to apply before
// acting.
package hooks

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// Mode names the lifecycle stage hook scripts are being driven for.
type Mode string

const (
	ModePrepare Mode = "prepare"
	ModePatch   Mode = "patch"
	ModeCleanup Mode = "cleanup"
	ModeStartup Mode = "startup"
)

func (m Mode) Valid() bool {
	switch m {
	case ModePrepare, ModePatch, ModeCleanup, ModeStartup:
		return true
	}

	return false
}

// Options is everything the hook subsystem is told about an invocation.
type Options struct {
	Mode      Mode
	Verbose   bool
	SignalDir string
}

// ReadSignals collects KEY=value lines from the files hooks dropped into dir.
// Files are read in directory order with later assignments winning; blank
// lines and #-comments are skipped. A missing directory just means no
// signals.
func ReadSignals(dir string) (map[string]string, error) {
	items, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}

		return nil, errors.Wrapf(err, "failed to read signal directory %s", dir)
	}

	signals := make(map[string]string)

	for _, item := range items {
		if item.IsDir() {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, item.Name()))
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read signal file %s", item.Name())
		}

		for _, line := range strings.Split(string(data), "\n") {
			line = strings.TrimSpace(line)
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}

			parts := strings.SplitN(line, "=", 2)
			if len(parts) != 2 {
				return nil, errors.Errorf("malformed signal line %q in %s", line, item.Name())
			}

			signals[parts[0]] = parts[1]
		}
	}

	return signals, nil
}
