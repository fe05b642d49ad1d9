/* This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at https://mozilla.org/MPL/2.0/. */

package fetch

import "fmt"

// TransportError means the network transfer itself failed (connection error or
// a non-200 response). Nothing here retries; that choice belongs to the caller.
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("failed to fetch %s: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// FormatError means the bytes arrived but the catalog document was malformed.
type FormatError struct {
	URL string
	Err error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("malformed catalog from %s: %v", e.URL, e.Err)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

// IntegrityError means the recomputed digest of a downloaded asset does not
// match the hash the catalog committed to. The asset must be discarded.
type IntegrityError struct {
	Want string
	Got  string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("checksum mismatch: want %s, got %s", e.Want, e.Got)
}
