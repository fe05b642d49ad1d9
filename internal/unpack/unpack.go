/* This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at https://mozilla.org/MPL/2.0/. */

// Package unpack extracts downloaded rootfs and addon tarballs into an
// environment directory.
package unpack

import (
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/Aeliux/penv/internal/selinux"
	"github.com/artyom/untar"
	"github.com/briandowns/spinner"
	"github.com/pkg/errors"
)

// Tar extracts a gzip-compressed tar stream into destdir.
func Tar(reader io.Reader, destdir string) error {
	gunzip, err := gzip.NewReader(reader)
	if err != nil {
		return errors.Wrap(err, "failed to open compressed stream")
	}

	defer gunzip.Close()

	if err := os.MkdirAll(destdir, 0755); err != nil {
		return errors.Wrapf(err, "failed to create %s", destdir)
	}

	if err := untar.Untar(gunzip, destdir); err != nil {
		return errors.Wrap(err, "failed to extract archive")
	}

	return nil
}

// Archive extracts the .tar.gz at path into destdir with a spinner on the
// terminal, then relabels the tree when SELinux wants it.
func Archive(path, destdir string) error {
	file, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "failed to open %s", path)
	}

	defer file.Close()

	spin := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	spin.Suffix = " Extracting " + filepath.Base(path) + "..."
	spin.Start()
	defer spin.Stop()

	if err := Tar(file, destdir); err != nil {
		return errors.Wrapf(err, "failed to extract %s", filepath.Base(path))
	}

	return selinux.RelabelContent(destdir)
}
