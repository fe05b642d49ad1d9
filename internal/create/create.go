/* This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at https://mozilla.org/MPL/2.0/. */

// Package create provisions a new environment: resolve the catalog against
// the requested version constraint, download and verify the chosen image and
// addons, and unpack everything into the store.
package create

import (
	"context"
	"os"
	"path"
	"path/filepath"

	"github.com/Aeliux/penv/internal/catalog"
	"github.com/Aeliux/penv/internal/fetch"
	"github.com/Aeliux/penv/internal/log"
	"github.com/Aeliux/penv/internal/store"
	"github.com/Aeliux/penv/internal/unpack"
	"github.com/dustin/go-humanize"
	"github.com/hashicorp/go-version"
	"github.com/pkg/errors"
	"github.com/refi64/go-lxtempdir"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sys/unix"
)

type Options struct {
	Name       string
	Constraint string
	Addons     []string
	CatalogURL string
}

// Latest returns the entry with the highest version. The resolver itself
// keeps catalog order and never ranks; picking "latest compatible" is this
// caller's tie-break.
func Latest(entries []catalog.DistroEntry) *catalog.DistroEntry {
	best := &entries[0]
	for i := range entries {
		if entries[i].Info.Version.GreaterThan(best.Info.Version) {
			best = &entries[i]
		}
	}

	return best
}

type pickedAddon struct {
	entry   catalog.AddonEntry
	variant *catalog.AddonVariant
}

func pickAddons(cat *catalog.Catalog, distro *catalog.Distro, names []string) ([]pickedAddon, error) {
	compatible := cat.CompatibleAddons(distro)

	var picked []pickedAddon

	for _, name := range names {
		var found *catalog.AddonEntry

		for i := range compatible {
			if compatible[i].Info.Name == name {
				found = &compatible[i]
				break
			}
		}

		if found == nil {
			return nil, errors.Errorf("no addon %s is compatible with %s %s", name, distro.Name, distro.Version)
		}

		variant, _ := found.MatchingVariant(distro)
		picked = append(picked, pickedAddon{entry: *found, variant: variant})
	}

	return picked, nil
}

// checkSpace fails early when the filesystem holding the store cannot hold
// need more bytes. Sizes in the catalog are of the compressed archives, so
// this is a lower bound, not a guarantee.
func checkSpace(root string, need int64) error {
	if need == 0 {
		return nil
	}

	var fs unix.Statfs_t
	if err := unix.Statfs(root, &fs); err != nil {
		return errors.Wrapf(err, "failed to stat filesystem of %s", root)
	}

	free := int64(fs.Bavail) * int64(fs.Bsize)
	if free < need {
		return errors.Errorf("not enough space in %s: need at least %s, have %s",
			root, humanize.Bytes(uint64(need)), humanize.Bytes(uint64(free)))
	}

	return nil
}

func fetchVerified(ctx context.Context, client *fetch.Client, url, hash, dest string, progress bool) error {
	file, err := os.Create(dest)
	if err != nil {
		return errors.Wrapf(err, "failed to create %s", dest)
	}

	if progress {
		err = client.AssetWithProgress(ctx, url, file)
	} else {
		err = client.Asset(ctx, url, file)
	}

	if closeErr := file.Close(); err == nil {
		err = closeErr
	}

	if err != nil {
		return err
	}

	file, err = os.Open(dest)
	if err != nil {
		return errors.Wrapf(err, "failed to reopen %s", dest)
	}

	defer file.Close()

	return fetch.Verify(hash, file)
}

func Create(ctx context.Context, st *store.Store, client *fetch.Client, opts Options) error {
	constraints, err := version.NewConstraint(opts.Constraint)
	if err != nil {
		return errors.Wrapf(err, "invalid version constraint %q", opts.Constraint)
	}

	log.Debug("fetching catalog from ", opts.CatalogURL)

	cat, err := client.Catalog(ctx, opts.CatalogURL)
	if err != nil {
		return err
	}

	compatible := cat.CompatibleDistros(constraints)
	if len(compatible) == 0 {
		return errors.Errorf("no compatible distribution satisfies %q on this machine", opts.Constraint)
	}

	entry := Latest(compatible)
	variant, _ := entry.MatchingVariant()

	addons, err := pickAddons(cat, &entry.Info, opts.Addons)
	if err != nil {
		return err
	}

	log.Infof("Selected %s %s (%s)", entry.Info.Name, entry.Info.Version, entry.Info.Description)

	need := variant.Size
	for _, addon := range addons {
		need += addon.variant.Size
	}

	if err := os.MkdirAll(st.Root, 0755); err != nil {
		return errors.Wrap(err, "failed to create store directory")
	}

	if err := checkSpace(st.Root, need); err != nil {
		return err
	}

	env, err := st.CreateStaged(opts.Name, &entry.Info)
	if err != nil {
		return err
	}

	tmp, err := lxtempdir.Create("", "penv-")
	if err != nil {
		return errors.Wrap(err, "failed to create temporary directory")
	}

	defer func() {
		if err := os.RemoveAll(tmp.Path); err != nil {
			log.Info("failed to remove temporary directory: ", err)
		}

		if err := tmp.Close(); err != nil {
			log.Info("failed to close temporary directory: ", err)
		}
	}()

	log.Infof("Downloading %s...", path.Base(variant.URL))

	imageDest := filepath.Join(tmp.Path, path.Base(variant.URL))
	if err := fetchVerified(ctx, client, variant.URL, variant.Hash, imageDest, true); err != nil {
		return err
	}

	// Addon archives are small next to the image; fetch them in parallel
	// while keeping extraction (below) sequential.
	grp, grpCtx := errgroup.WithContext(ctx)
	addonDests := make([]string, len(addons))

	for i, addon := range addons {
		i, addon := i, addon
		addonDests[i] = filepath.Join(tmp.Path, path.Base(addon.variant.URL))

		grp.Go(func() error {
			log.Infof("Downloading addon %s...", addon.entry.Info.Name)
			return fetchVerified(grpCtx, client, addon.variant.URL, addon.variant.Hash, addonDests[i], false)
		})
	}

	if err := grp.Wait(); err != nil {
		return err
	}

	if err := unpack.Archive(imageDest, env.Rootfs()); err != nil {
		return err
	}

	for _, dest := range addonDests {
		if err := unpack.Archive(dest, env.Rootfs()); err != nil {
			return err
		}
	}

	if err := env.Unstage(); err != nil {
		return err
	}

	log.Info("Done!")

	return nil
}
