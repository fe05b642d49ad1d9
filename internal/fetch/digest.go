/* This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at https://mozilla.org/MPL/2.0/. */

package fetch

import (
	"crypto/sha256"
	"encoding/hex"
	"io"

	"github.com/pkg/errors"
)

// Digest streams reader through SHA-256 and returns the lowercase hex digest.
// SHA-256 is the algorithm the catalog publisher commits to; changing it would
// invalidate every published catalog.
func Digest(reader io.Reader) (string, error) {
	hasher := sha256.New()
	if _, err := io.Copy(hasher, reader); err != nil {
		return "", errors.Wrap(err, "failed to digest stream")
	}

	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// Verify recomputes the digest of reader and compares it against the hash the
// catalog declared, returning an IntegrityError on mismatch.
func Verify(declared string, reader io.Reader) error {
	got, err := Digest(reader)
	if err != nil {
		return err
	}

	if got != declared {
		return &IntegrityError{Want: declared, Got: got}
	}

	return nil
}
