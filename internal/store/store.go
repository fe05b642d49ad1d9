/* This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at https://mozilla.org/MPL/2.0/. */

// Package store manages the local inventory of unpacked environments. Each
// environment is a directory holding the distro metadata file and the rootfs
// the hooks and the external sandbox operate on.
package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/Aeliux/penv/internal/catalog"
	"github.com/Aeliux/penv/internal/log"
	"github.com/adrg/xdg"
	"github.com/pkg/errors"
)

const metadataJSON = "metadata.json"

// StageSuffix marks an environment still being provisioned. A crash leaves
// the stage directory behind; the next create of the same name removes it.
const StageSuffix = ".stage"

type Env struct {
	Name   string
	Path   string
	Distro *catalog.Distro
}

type Store struct {
	Root string
}

// Default returns the store at $PENV_HOME/envs, or under the XDG data home
// when PENV_HOME is not set.
func Default() *Store {
	if home := os.Getenv("PENV_HOME"); home != "" {
		return &Store{Root: filepath.Join(home, "envs")}
	}

	return &Store{Root: filepath.Join(xdg.DataHome, "penv", "envs")}
}

func validateName(name string) error {
	if matched, _ := regexp.MatchString(`^[a-zA-Z0-9_-]+$`, name); !matched {
		return errors.Errorf("invalid environment name: %s", name)
	}

	return nil
}

func (s *Store) path(name string) string {
	return filepath.Join(s.Root, name)
}

// CreateStaged makes a new staged environment directory with the distro
// metadata written out. The caller unpacks the rootfs into it and then calls
// Unstage to make the environment visible.
func (s *Store) CreateStaged(name string, distro *catalog.Distro) (*Env, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}

	path := s.path(name)
	if _, err := os.Stat(filepath.Join(path, metadataJSON)); err == nil {
		return nil, errors.Errorf("environment %s already exists", name)
	}

	staged := path + StageSuffix

	if err := os.RemoveAll(staged); err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrap(err, "failed to remove old staged environment")
	}

	if err := os.MkdirAll(staged, 0700); err != nil {
		return nil, errors.Wrap(err, "failed to create environment directory")
	}

	if err := os.MkdirAll(filepath.Join(staged, "rootfs"), 0755); err != nil {
		return nil, errors.Wrap(err, "failed to create rootfs directory")
	}

	file, err := os.Create(filepath.Join(staged, metadataJSON))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create environment metadata")
	}

	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(distro); err != nil {
		return nil, errors.Wrap(err, "failed to save environment metadata")
	}

	return &Env{
		Name:   name,
		Path:   staged,
		Distro: distro,
	}, nil
}

func openPath(path, name string) (*Env, error) {
	data, err := os.ReadFile(filepath.Join(path, metadataJSON))
	if err != nil {
		return nil, errors.Wrap(err, "failed to read environment metadata")
	}

	distro, err := catalog.DistroFromJSON(data)
	if err != nil {
		return nil, err
	}

	return &Env{
		Name:   name,
		Path:   path,
		Distro: distro,
	}, nil
}

func (s *Store) Open(name string) (*Env, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}

	return openPath(s.path(name), name)
}

// List returns the finished environments in the store. Stage directories are
// skipped; unreadable entries get a warning and are skipped too.
func (s *Store) List() ([]*Env, error) {
	items, err := os.ReadDir(s.Root)
	if err != nil {
		if os.IsNotExist(err) {
			log.Debug("environment directory does not exist")
			return nil, nil
		}

		return nil, errors.Wrap(err, "failed to read environment inventory")
	}

	var envs []*Env

	for _, item := range items {
		if !item.IsDir() || strings.HasSuffix(item.Name(), StageSuffix) {
			log.Debug("skipping item ", item.Name())
			continue
		}

		env, err := openPath(filepath.Join(s.Root, item.Name()), item.Name())
		if err != nil {
			log.Alertf("warning: failed to open %s: %v", item.Name(), err)
			continue
		}

		envs = append(envs, env)
	}

	return envs, nil
}

// Remove deletes an environment, staged or not.
func (s *Store) Remove(name string) error {
	if err := validateName(name); err != nil {
		return err
	}

	path := s.path(name)

	if err := os.RemoveAll(path + StageSuffix); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "failed to remove staged environment")
	}

	if err := os.RemoveAll(path); err != nil {
		return errors.Wrapf(err, "failed to remove environment %s", name)
	}

	return nil
}

func (e *Env) Rootfs() string {
	return filepath.Join(e.Path, "rootfs")
}

func (e *Env) Staged() bool {
	return strings.HasSuffix(e.Path, StageSuffix)
}

// Unstage renames the staged directory to its final name, making the
// environment visible to Open and List.
func (e *Env) Unstage() error {
	if !e.Staged() {
		panic("cannot unstage unstaged environment (?)")
	}

	final := strings.TrimSuffix(e.Path, StageSuffix)
	if err := os.Rename(e.Path, final); err != nil {
		return errors.Wrap(err, "failed to unstage environment")
	}

	e.Path = final
	return nil
}

// Size walks the environment directory and sums file sizes.
func (e *Env) Size() (int64, error) {
	var total int64

	err := filepath.Walk(e.Path, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.Mode().IsRegular() {
			total += info.Size()
		}

		return nil
	})

	return total, err
}
