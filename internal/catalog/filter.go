/* This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at https://mozilla.org/MPL/2.0/. */

package catalog

import (
	"regexp"
	"runtime"
)

// matchPattern reports whether value satisfies pattern. An empty pattern matches
// everything; a variant published without a filter is universally applicable.
// Non-empty patterns are regular expressions anchored over the whole value, so a
// version pattern of "1" matches "1" but not "10.2". A pattern that does not
// compile never matches.
func matchPattern(pattern, value string) bool {
	if pattern == "" {
		return true
	}

	matched, err := regexp.MatchString("^(?:"+pattern+")$", value)
	return err == nil && matched
}

// matchArch evaluates pattern against the architecture penv is running on.
func matchArch(pattern string) bool {
	return matchPattern(pattern, runtime.GOARCH)
}

// DistroFilter gates a distribution variant on the machine architecture.
type DistroFilter struct {
	Architecture string `json:"architecture"`
}

func (f *DistroFilter) Matches() bool {
	return matchArch(f.Architecture)
}

// AddonFilter gates an addon variant on the machine architecture and on the
// distribution the addon would be applied to. Every non-empty field must match.
type AddonFilter struct {
	Architecture string `json:"architecture"`
	Family       string `json:"family"`
	Name         string `json:"name"`
	Version      string `json:"version"`
}

func (f *AddonFilter) Matches(distro *Distro) bool {
	if !matchArch(f.Architecture) {
		return false
	}

	if !matchPattern(f.Family, distro.Family) {
		return false
	}

	if !matchPattern(f.Name, distro.Name) {
		return false
	}

	return matchPattern(f.Version, distro.Version.String())
}
