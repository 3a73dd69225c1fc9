package vmconfig_test

import (
	"testing"

	"github.com/funvibe/ecmacore/internal/vmconfig"
)

func TestParseManifestValid(t *testing.T) {
	data := []byte(`
plugins:
  - name: object
  - name: array
  - name: console
`)
	m, err := vmconfig.ParseManifest(data, "vm.yaml")
	if err != nil {
		t.Fatalf("ParseManifest: %v", err)
	}
	names := m.Names()
	want := []string{"object", "array", "console"}
	if len(names) != len(want) {
		t.Fatalf("Names() = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("Names()[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}

func TestParseManifestRejectsEmpty(t *testing.T) {
	_, err := vmconfig.ParseManifest([]byte(`plugins: []`), "vm.yaml")
	if err == nil {
		t.Fatal("expected an error for an empty plugin list")
	}
}

func TestParseManifestRejectsMissingName(t *testing.T) {
	data := []byte(`
plugins:
  - name: object
  - options:
      foo: bar
`)
	_, err := vmconfig.ParseManifest(data, "vm.yaml")
	if err == nil {
		t.Fatal("expected an error for an entry missing a name")
	}
}

func TestParseManifestRejectsDuplicateName(t *testing.T) {
	data := []byte(`
plugins:
  - name: object
  - name: object
`)
	_, err := vmconfig.ParseManifest(data, "vm.yaml")
	if err == nil {
		t.Fatal("expected an error for a duplicate plugin name")
	}
}

func TestDefaultManifestIncludesEveryBuiltinPlugin(t *testing.T) {
	m := vmconfig.DefaultManifest()
	names := m.Names()
	for _, want := range []string{"object", "function", "iterator", "array", "boolean", "set", "console"} {
		found := false
		for _, n := range names {
			if n == want {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("DefaultManifest() missing plugin %q, got %v", want, names)
		}
	}
}

func TestLoadManifestMissingFile(t *testing.T) {
	if _, err := vmconfig.LoadManifest("/nonexistent/vm.yaml"); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}
