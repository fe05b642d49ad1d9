/* This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at https://mozilla.org/MPL/2.0/. */

package catalog

import (
	"encoding/json"

	"github.com/hashicorp/go-version"
	"github.com/pkg/errors"
)

// Distro describes one distribution image in the catalog. It is also the
// metadata written next to an unpacked environment, so the field names are a
// wire contract shared with the catalog publisher. Distros are value objects;
// nothing mutates them after parse.
type Distro struct {
	Family         string           `json:"family"`
	Name           string           `json:"name"`
	Description    string           `json:"description"`
	Version        *version.Version `json:"version"`
	DistroVersion  string           `json:"distro_version"`
	DistroCodename string           `json:"distro_codename"`
}

func (d *Distro) ToJSON() ([]byte, error) {
	return json.Marshal(d)
}

// IsCompatible reports whether the distro version satisfies the given
// version constraints.
func (d *Distro) IsCompatible(constraints version.Constraints) bool {
	return constraints.Check(d.Version)
}

func DistroFromJSON(data []byte) (*Distro, error) {
	var distro Distro
	if err := json.Unmarshal(data, &distro); err != nil {
		return nil, errors.Wrap(err, "failed to parse distro metadata")
	}

	return &distro, nil
}
