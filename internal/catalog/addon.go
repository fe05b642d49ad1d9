/* This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at https://mozilla.org/MPL/2.0/. */

package catalog

import (
	"encoding/json"

	"github.com/hashicorp/go-version"
	"github.com/pkg/errors"
)

// Addon describes one optional add-on layered on top of a distribution image.
type Addon struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Version     *version.Version `json:"version"`
}

func (a *Addon) ToJSON() ([]byte, error) {
	return json.Marshal(a)
}

func AddonFromJSON(data []byte) (*Addon, error) {
	var addon Addon
	if err := json.Unmarshal(data, &addon); err != nil {
		return nil, errors.Wrap(err, "failed to parse addon metadata")
	}

	return &addon, nil
}
