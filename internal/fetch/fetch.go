/* This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at https://mozilla.org/MPL/2.0/. */

// Package fetch retrieves the published catalog and its assets over HTTP and
// verifies asset integrity. Cancellation comes from the caller's context; no
// operation retries on its own.
package fetch

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/Aeliux/penv/internal/catalog"
	"github.com/pkg/errors"
	"gopkg.in/cheggaaa/pb.v1"
)

// DefaultCatalogURL is where the published catalog document lives.
const DefaultCatalogURL = "https://raw.githubusercontent.com/Aeliux/penv/master/index3.json"

type Client struct {
	http *http.Client
}

func NewClient() *Client {
	return &Client{http: &http.Client{}}
}

func (c *Client) get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &TransportError{URL: url, Err: err}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &TransportError{URL: url, Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, &TransportError{URL: url, Err: errors.Errorf("unexpected response code %d", resp.StatusCode)}
	}

	return resp, nil
}

// Catalog fetches and decodes the catalog document at url.
func (c *Client) Catalog(ctx context.Context, url string) (*catalog.Catalog, error) {
	resp, err := c.get(ctx, url)
	if err != nil {
		return nil, err
	}

	defer resp.Body.Close()

	var cat catalog.Catalog
	if err := json.NewDecoder(resp.Body).Decode(&cat); err != nil {
		return nil, &FormatError{URL: url, Err: err}
	}

	return &cat, nil
}

// Asset streams the asset body at url into target. The declared checksum is
// not checked here; verification is a separate step (see Verify) so callers
// can checksum incrementally or skip re-verification of cached files.
func (c *Client) Asset(ctx context.Context, url string, target io.Writer) error {
	resp, err := c.get(ctx, url)
	if err != nil {
		return err
	}

	defer resp.Body.Close()

	if _, err := io.Copy(target, resp.Body); err != nil {
		return &TransportError{URL: url, Err: err}
	}

	return nil
}

// AssetWithProgress is Asset with a byte-count progress bar on stdout.
func (c *Client) AssetWithProgress(ctx context.Context, url string, target io.Writer) error {
	resp, err := c.get(ctx, url)
	if err != nil {
		return err
	}

	defer resp.Body.Close()

	bar := pb.New64(resp.ContentLength).SetUnits(pb.U_BYTES)
	bar.Start()
	defer bar.Finish()

	reader := bar.NewProxyReader(resp.Body)

	if _, err := io.Copy(target, reader); err != nil {
		return &TransportError{URL: url, Err: err}
	}

	return nil
}

// AssetSize asks for the asset's content length without downloading the body,
// for pre-flight disk-space checks. -1 means the server did not say.
func (c *Client) AssetSize(ctx context.Context, url string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return 0, &TransportError{URL: url, Err: err}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, &TransportError{URL: url, Err: err}
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, &TransportError{URL: url, Err: errors.Errorf("unexpected response code %d", resp.StatusCode)}
	}

	return resp.ContentLength, nil
}
