/* This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at https://mozilla.org/MPL/2.0/. */

// Package catalog holds the in-memory form of the published penv catalog: the
// distribution images and add-ons available for download, each with one or
// more filtered variants, plus the compatibility resolution over them.
//
// A Catalog is a read-only snapshot. Refreshing it means fetching a brand-new
// value; nothing here mutates a catalog in place, so concurrent readers never
// see a half-updated one.
package catalog

import (
	"encoding/json"

	"github.com/hashicorp/go-version"
	"github.com/pkg/errors"
)

// DistroVariant is one downloadable asset for a distribution, scoped by a
// filter. Hash is the publisher's lowercase hex SHA-256 commitment over the
// asset bytes.
type DistroVariant struct {
	URL    string       `json:"url"`
	Hash   string       `json:"hash"`
	Size   int64        `json:"size"`
	Filter DistroFilter `json:"filter"`
}

type AddonVariant struct {
	URL    string      `json:"url"`
	Hash   string      `json:"hash"`
	Size   int64       `json:"size"`
	Filter AddonFilter `json:"filter"`
}

type DistroEntry struct {
	Info Distro          `json:"info"`
	Urls []DistroVariant `json:"urls"`
}

type AddonEntry struct {
	Info Addon          `json:"info"`
	Urls []AddonVariant `json:"urls"`
}

type Catalog struct {
	Distros []DistroEntry `json:"distros"`
	Addons  []AddonEntry  `json:"addons"`
}

func FromJSON(data []byte) (*Catalog, error) {
	var cat Catalog
	if err := json.Unmarshal(data, &cat); err != nil {
		return nil, errors.Wrap(err, "failed to parse catalog")
	}

	return &cat, nil
}

func (c *Catalog) ToJSON() ([]byte, error) {
	return json.Marshal(c)
}

// MatchingVariant returns the first variant usable on the running
// architecture.
func (e *DistroEntry) MatchingVariant() (*DistroVariant, bool) {
	for i := range e.Urls {
		if e.Urls[i].Filter.Matches() {
			return &e.Urls[i], true
		}
	}

	return nil, false
}

// MatchingVariant returns the first variant applicable to distro on the
// running architecture.
func (e *AddonEntry) MatchingVariant(distro *Distro) (*AddonVariant, bool) {
	for i := range e.Urls {
		if e.Urls[i].Filter.Matches(distro) {
			return &e.Urls[i], true
		}
	}

	return nil, false
}

// CompatibleDistros returns, in catalog order, the distro entries whose
// version satisfies constraints and that have at least one variant usable on
// the running architecture. An entry we cannot download is excluded even when
// its version fits. No ranking happens here; a caller wanting the latest
// compatible version sorts the result itself.
func (c *Catalog) CompatibleDistros(constraints version.Constraints) []DistroEntry {
	var compatible []DistroEntry

	for _, entry := range c.Distros {
		if !entry.Info.IsCompatible(constraints) {
			continue
		}

		if _, ok := entry.MatchingVariant(); ok {
			compatible = append(compatible, entry)
		}
	}

	return compatible
}

// CompatibleAddons returns, in catalog order, the addon entries with at least
// one variant whose filter accepts distro on the running architecture.
func (c *Catalog) CompatibleAddons(distro *Distro) []AddonEntry {
	var compatible []AddonEntry

	for _, entry := range c.Addons {
		if _, ok := entry.MatchingVariant(distro); ok {
			compatible = append(compatible, entry)
		}
	}

	return compatible
}
