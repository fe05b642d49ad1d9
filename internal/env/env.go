/* This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at https://mozilla.org/MPL/2.0/. */

// Package env holds the variable set injected into spawned entry processes.
// One ambient Map is built at startup from the penv process's own environment
// and handed to the supervisor; every launch works on an independent copy, so
// concurrent launches cannot corrupt each other's variables.
package env

import (
	"os"
	"sort"
	"strings"
	"sync"
)

type Map struct {
	mu   sync.RWMutex
	vars map[string]string
}

func New() *Map {
	return &Map{vars: make(map[string]string)}
}

// NewAmbient returns a map seeded from the current process environment.
func NewAmbient() *Map {
	m := New()
	m.ResetFromAmbient()
	return m
}

func (m *Map) Set(key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.vars[key] = value
}

func (m *Map) Get(key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	value, ok := m.vars[key]
	return value, ok
}

func (m *Map) Delete(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.vars, key)
}

func (m *Map) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.vars)
}

// Copy returns an independent map sharing no storage with the original.
func (m *Map) Copy() *Map {
	m.mu.RLock()
	defer m.mu.RUnlock()

	copied := New()
	for key, value := range m.vars {
		copied.vars[key] = value
	}

	return copied
}

// List returns the variables as KEY=value strings, sorted by key so the
// serialized form handed to a child process is deterministic.
func (m *Map) List() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	list := make([]string, 0, len(m.vars))
	for key, value := range m.vars {
		list = append(list, key+"="+value)
	}

	sort.Strings(list)
	return list
}

// ResetFromAmbient clears the map and reseeds it from the process's own
// environment. Entries split at the first '=' only; values may themselves
// contain '='.
func (m *Map) ResetFromAmbient() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.vars = make(map[string]string)

	for _, entry := range os.Environ() {
		parts := strings.SplitN(entry, "=", 2)
		if len(parts) != 2 {
			continue
		}

		m.vars[parts[0]] = parts[1]
	}
}
