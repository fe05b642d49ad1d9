/* This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at https://mozilla.org/MPL/2.0/. */

package catalog

import (
	"encoding/json"
	"testing"

	"github.com/hashicorp/go-version"
)

const catalogDoc = `{
  "distros": [
    {
      "info": {
        "family": "debian",
        "name": "debian-12-vanilla",
        "description": "Debian 12 base rootfs",
        "version": "12.0",
        "distro_version": "12",
        "distro_codename": "bookworm"
      },
      "urls": [
        {
          "url": "https://example.com/debian-12.tar.gz",
          "hash": "aa11",
          "size": 1024,
          "filter": {"architecture": ""}
        }
      ]
    },
    {
      "info": {
        "family": "debian",
        "name": "debian-11-vanilla",
        "description": "Debian 11 base rootfs",
        "version": "11.0",
        "distro_version": "11",
        "distro_codename": "bullseye"
      },
      "urls": [
        {
          "url": "https://example.com/debian-11.tar.gz",
          "hash": "bb22",
          "size": 2048,
          "filter": {"architecture": "no-such-arch"}
        }
      ]
    }
  ],
  "addons": [
    {
      "info": {
        "name": "devtools",
        "description": "Compilers and build tools",
        "version": "1.2"
      },
      "urls": [
        {
          "url": "https://example.com/devtools.tar.gz",
          "hash": "cc33",
          "size": 512,
          "filter": {"architecture": "", "family": "debian", "name": "", "version": ""}
        }
      ]
    },
    {
      "info": {
        "name": "alpine-extras",
        "description": "Alpine-only extras",
        "version": "0.3"
      },
      "urls": [
        {
          "url": "https://example.com/alpine-extras.tar.gz",
          "hash": "dd44",
          "size": 256,
          "filter": {"architecture": "", "family": "alpine", "name": "", "version": ""}
        }
      ]
    }
  ]
}`

func mustConstraint(t *testing.T, expr string) version.Constraints {
	t.Helper()

	constraints, err := version.NewConstraint(expr)
	if err != nil {
		t.Fatalf("bad test constraint %q: %v", expr, err)
	}

	return constraints
}

func parseTestCatalog(t *testing.T) *Catalog {
	t.Helper()

	cat, err := FromJSON([]byte(catalogDoc))
	if err != nil {
		t.Fatalf("failed to parse catalog: %v", err)
	}

	return cat
}

func TestCatalogRoundTrip(t *testing.T) {
	cat := parseTestCatalog(t)

	first, err := cat.ToJSON()
	if err != nil {
		t.Fatalf("failed to serialize catalog: %v", err)
	}

	again, err := FromJSON(first)
	if err != nil {
		t.Fatalf("failed to reparse catalog: %v", err)
	}

	second, err := again.ToJSON()
	if err != nil {
		t.Fatalf("failed to reserialize catalog: %v", err)
	}

	if string(first) != string(second) {
		t.Errorf("round trip changed the document:\n%s\nvs\n%s", first, second)
	}
}

// The field names are a wire contract with the catalog publisher; a renamed
// struct tag would silently break every published catalog.
func TestCatalogWireFields(t *testing.T) {
	cat := parseTestCatalog(t)

	data, err := cat.ToJSON()
	if err != nil {
		t.Fatalf("failed to serialize catalog: %v", err)
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("failed to decode serialized catalog: %v", err)
	}

	for _, key := range []string{"distros", "addons"} {
		if _, ok := doc[key]; !ok {
			t.Errorf("missing top-level key %q", key)
		}
	}

	var distros []struct {
		Info map[string]json.RawMessage `json:"info"`
		Urls []map[string]json.RawMessage `json:"urls"`
	}
	if err := json.Unmarshal(doc["distros"], &distros); err != nil {
		t.Fatalf("failed to decode distros: %v", err)
	}

	for _, key := range []string{"family", "name", "description", "version", "distro_version", "distro_codename"} {
		if _, ok := distros[0].Info[key]; !ok {
			t.Errorf("missing distro info key %q", key)
		}
	}

	for _, key := range []string{"url", "hash", "size", "filter"} {
		if _, ok := distros[0].Urls[0][key]; !ok {
			t.Errorf("missing variant key %q", key)
		}
	}
}

func TestCompatibleDistros(t *testing.T) {
	cat := parseTestCatalog(t)

	t.Run("wildcard variant included", func(t *testing.T) {
		got := cat.CompatibleDistros(mustConstraint(t, ">=12"))
		if len(got) != 1 || got[0].Info.Name != "debian-12-vanilla" {
			t.Fatalf("got %+v, want just debian-12-vanilla", got)
		}
	})

	t.Run("version fits but no variant is downloadable", func(t *testing.T) {
		// debian-11 only ships a no-such-arch variant, so it is excluded
		// even though its version satisfies the constraint.
		got := cat.CompatibleDistros(mustConstraint(t, ">=11, <12"))
		if len(got) != 0 {
			t.Fatalf("got %+v, want none", got)
		}
	})

	t.Run("constraint excludes everything", func(t *testing.T) {
		if got := cat.CompatibleDistros(mustConstraint(t, ">=99")); len(got) != 0 {
			t.Fatalf("got %+v, want none", got)
		}
	})

	t.Run("empty catalog yields empty result", func(t *testing.T) {
		empty := &Catalog{}
		if got := empty.CompatibleDistros(mustConstraint(t, ">=0")); len(got) != 0 {
			t.Fatalf("got %+v, want none", got)
		}
	})
}

func TestCompatibleAddons(t *testing.T) {
	cat := parseTestCatalog(t)

	t.Run("family wildcard fields", func(t *testing.T) {
		// A {family: debian, name: "", version: ""} filter accepts any
		// debian-family distro regardless of name or version.
		distro := testDistro(t, "debian", "some-unrelated-name", "999.9")

		got := cat.CompatibleAddons(distro)
		if len(got) != 1 || got[0].Info.Name != "devtools" {
			t.Fatalf("got %+v, want just devtools", got)
		}
	})

	t.Run("no family match", func(t *testing.T) {
		distro := testDistro(t, "arch", "arch-rolling", "1.0")
		if got := cat.CompatibleAddons(distro); len(got) != 0 {
			t.Fatalf("got %+v, want none", got)
		}
	})

	t.Run("empty catalog yields empty result", func(t *testing.T) {
		empty := &Catalog{}
		if got := empty.CompatibleAddons(testDistro(t, "debian", "x", "1.0")); len(got) != 0 {
			t.Fatalf("got %+v, want none", got)
		}
	})
}

func TestCatalogOrderPreserved(t *testing.T) {
	cat := parseTestCatalog(t)

	// Make the second entry downloadable too and check declaration order
	// survives resolution.
	cat.Distros[1].Urls[0].Filter.Architecture = ""

	got := cat.CompatibleDistros(mustConstraint(t, ">=0"))
	if len(got) != 2 {
		t.Fatalf("got %d entries, want 2", len(got))
	}

	if got[0].Info.Name != "debian-12-vanilla" || got[1].Info.Name != "debian-11-vanilla" {
		t.Errorf("catalog order not preserved: %s, %s", got[0].Info.Name, got[1].Info.Name)
	}
}

func TestDistroMetadataRoundTrip(t *testing.T) {
	distro := testDistro(t, "debian", "debian-12-vanilla", "12.0")
	distro.Description = "Debian 12 base rootfs"
	distro.DistroVersion = "12"
	distro.DistroCodename = "bookworm"

	data, err := distro.ToJSON()
	if err != nil {
		t.Fatalf("failed to serialize distro: %v", err)
	}

	parsed, err := DistroFromJSON(data)
	if err != nil {
		t.Fatalf("failed to parse distro: %v", err)
	}

	if parsed.Family != distro.Family || parsed.Name != distro.Name ||
		parsed.DistroVersion != distro.DistroVersion || parsed.DistroCodename != distro.DistroCodename {
		t.Errorf("got %+v, want %+v", parsed, distro)
	}

	if !parsed.Version.Equal(distro.Version) {
		t.Errorf("version changed in round trip: %s vs %s", parsed.Version, distro.Version)
	}
}

func TestDistroFromJSONMalformed(t *testing.T) {
	if _, err := DistroFromJSON([]byte("{")); err == nil {
		t.Error("expected an error for malformed metadata")
	}
}
