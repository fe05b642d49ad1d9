/* This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at https://mozilla.org/MPL/2.0/. */

package selinux

import (
	"github.com/Aeliux/penv/internal/log"
	"github.com/opencontainers/selinux/go-selinux"
	"github.com/opencontainers/selinux/go-selinux/label"
	"github.com/pkg/errors"
)

func Enforcing() bool {
	return selinux.EnforceMode() == selinux.Enforcing
}

// RelabelContent gives an unpacked rootfs a file label the entry process can
// work under. A disabled SELinux is not an error.
func RelabelContent(path string) error {
	if selinux.EnforceMode() == selinux.Disabled {
		log.Debug("SELinux is disabled")
		return nil
	}

	processLabel, fileLabel, err := label.InitLabels(nil)
	if err != nil {
		return errors.Wrap(err, "failed to derive labels")
	}

	defer label.ReleaseLabel(processLabel)

	log.Debugf("relabel %s as %s", path, fileLabel)

	if err := label.Relabel(path, fileLabel, false); err != nil {
		return errors.Wrapf(err, "failed to relabel %s", path)
	}

	return nil
}
