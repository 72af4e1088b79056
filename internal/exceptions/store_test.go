package exceptions

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// writeFile writes content into dir/name and returns the path
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func TestParseEntry(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Entry
		wantErr bool
	}{
		{"name only", "numpy", Entry{Name: "numpy"}, false},
		{"pinned", "requests==2.31.0", Entry{Name: "requests", Version: "2.31.0"}, false},
		{"surrounding whitespace", "  requests == 2.31.0  ", Entry{Name: "requests", Version: "2.31.0"}, false},
		{"three parts is name only", "a==1==2", Entry{Name: "a"}, false},
		{"trailing separator", "flask==", Entry{Name: "flask"}, false},
		{"empty line", "", Entry{}, true},
		{"version only", "==1.0", Entry{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseEntry(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidEntry) {
					t.Errorf("expected ErrInvalidEntry, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseEntry(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}

func TestLoadLineFormat(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "exceptions.txt", `# pinned for the legacy API
requests==2.31.0

numpy
Typing_Extensions
numpy==1.26.4
`)

	store, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if store.Len() != 3 {
		t.Fatalf("expected 3 entries, got %d", store.Len())
	}

	e, ok := store.Lookup("requests")
	if !ok || !e.Frozen() || e.Version != "2.31.0" {
		t.Errorf("requests: got %+v, %v", e, ok)
	}

	// first line wins
	e, ok = store.Lookup("numpy")
	if !ok || e.Frozen() {
		t.Errorf("numpy: expected first (skip) line to win, got %+v", e)
	}

	// lookup is by normalized name
	e, ok = store.Lookup("typing-extensions")
	if !ok || e.Frozen() {
		t.Errorf("typing-extensions: got %+v, %v", e, ok)
	}

	if _, ok := store.Lookup("flask"); ok {
		t.Error("flask should not be an exception")
	}

	wantOrder := []string{"requests", "numpy", "Typing_Extensions"}
	var gotOrder []string
	for _, e := range store.Entries() {
		gotOrder = append(gotOrder, e.Name)
	}
	if !reflect.DeepEqual(gotOrder, wantOrder) {
		t.Errorf("Entries order = %v, want %v", gotOrder, wantOrder)
	}
}

func TestLoadDuplicateKeepsFirstLine(t *testing.T) {
	path := writeFile(t, t.TempDir(), "exceptions.txt", "requests\nrequests==2.31.0\nFlask==3.0.0\nflask\n")

	store, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if store.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", store.Len())
	}

	if e, ok := store.Lookup("requests"); !ok || e.Frozen() {
		t.Errorf("requests: expected skip from first line, got %+v", e)
	}
	if e, ok := store.Lookup("flask"); !ok || e.Version != "3.0.0" {
		t.Errorf("flask: expected pin from first line, got %+v", e)
	}

	// Set still replaces an existing entry
	if err := store.Set(Entry{Name: "requests", Version: "2.31.0"}); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if e, _ := store.Lookup("requests"); e.Version != "2.31.0" {
		t.Errorf("Set should replace the entry, got %+v", e)
	}
}

func TestLoadMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exceptions.txt")

	_, err := Load(path)
	if !errors.Is(err, ErrExceptionsNotFound) {
		t.Fatalf("expected ErrExceptionsNotFound, got %v", err)
	}

	store, err := LoadOrEmpty(path)
	if err != nil {
		t.Fatalf("LoadOrEmpty failed: %v", err)
	}
	if store.Len() != 0 || store.Path() != path {
		t.Errorf("expected empty store bound to %s, got %d entries at %s", path, store.Len(), store.Path())
	}
}

func TestLoadTOMLFormat(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "exceptions.toml", `[exceptions]
numpy = ""
requests = "2.31.0"
"zope.interface" = "6.1"
`)

	store, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if store.Len() != 3 {
		t.Fatalf("expected 3 entries, got %d", store.Len())
	}
	if e, _ := store.Lookup("numpy"); e.Frozen() {
		t.Error("numpy should be skip-only")
	}
	if e, _ := store.Lookup("zope-interface"); e.Version != "6.1" {
		t.Errorf("zope.interface: expected 6.1, got %q", e.Version)
	}
}

func TestLoadInvalidTOML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "exceptions.toml", "[exceptions\nnumpy=")
	_, err := Load(path)
	if err == nil {
		t.Fatal("expected parse error")
	}
	if errors.Is(err, ErrExceptionsNotFound) {
		t.Error("parse error should not be reported as missing file")
	}
}

func TestSetRemoveSave(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "exceptions.txt")
	store := NewStore(path)

	if err := store.Set(Entry{Name: "requests", Version: "2.31.0"}); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := store.Set(Entry{Name: "numpy"}); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := store.Set(Entry{Name: "Requests", Version: "2.32.0"}); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := store.Set(Entry{Name: " "}); !errors.Is(err, ErrInvalidEntry) {
		t.Errorf("expected ErrInvalidEntry for blank name, got %v", err)
	}
	for _, bad := range []Entry{
		{Name: "a==b"},
		{Name: "requests>=2.0"},
		{Name: "requests~=2.0"},
		{Name: "requests!=2.0"},
		{Name: "requests<3"},
		{Name: "requests;python_version<'3.8'"},
		{Name: "requests,flask"},
		{Name: "requests flask"},
		{Name: "requests", Version: ">=2.0"},
		{Name: "requests", Version: "2.0==3"},
	} {
		if err := store.Set(bad); !errors.Is(err, ErrInvalidEntry) {
			t.Errorf("Set(%+v): expected ErrInvalidEntry, got %v", bad, err)
		}
	}
	if err := store.Set(Entry{Name: "zope.interface", Version: "6.*"}); err != nil {
		t.Errorf("wildcard pin should be accepted: %v", err)
	}
	store.Remove("zope.interface")

	if !store.Remove("NUMPY") {
		t.Error("Remove should report existing entry")
	}
	if store.Remove("numpy") {
		t.Error("Remove should report missing entry")
	}
	if err := store.Set(Entry{Name: "flask"}); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	if err := store.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading saved file: %v", err)
	}
	want := "Requests==2.32.0\nflask\n"
	if string(data) != want {
		t.Errorf("saved content = %q, want %q", data, want)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temp file should not remain after Save")
	}
}

func TestSaveTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exceptions.toml")
	store := NewStore(path)
	store.Set(Entry{Name: "requests", Version: "2.31.0"})
	store.Set(Entry{Name: "numpy"})

	if err := store.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "[exceptions]") {
		t.Errorf("expected [exceptions] table, got:\n%s", data)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if e, ok := loaded.Lookup("requests"); !ok || e.Version != "2.31.0" {
		t.Errorf("requests not preserved: %+v", e)
	}
	if e, ok := loaded.Lookup("numpy"); !ok || e.Frozen() {
		t.Errorf("numpy not preserved: %+v", e)
	}
}

// genEntry generates exception entries with optional pins
func genEntry() gopter.Gen {
	return gopter.CombineGens(
		gen.RegexMatch(`^[a-z][a-z0-9]{0,10}([-_.][a-z0-9]{1,5})?$`),
		gen.Bool(),
		gen.RegexMatch(`^[0-9]{1,2}\.[0-9]{1,2}(\.[0-9]{1,2})?$`),
	).Map(func(values []interface{}) Entry {
		e := Entry{Name: values[0].(string)}
		if values[1].(bool) {
			e.Version = values[2].(string)
		}
		return e
	})
}

// TestSaveLoadPreservesLookups checks that every entry survives a save/load
// cycle in both formats, with later Set calls replacing earlier ones
func TestSaveLoadPreservesLookups(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	check := func(ext string) func(entries []Entry) bool {
		return func(entries []Entry) bool {
			path := filepath.Join(t.TempDir(), "exceptions"+ext)
			store := NewStore(path)
			for _, e := range entries {
				if err := store.Set(e); err != nil {
					t.Logf("Set failed: %v", err)
					return false
				}
			}
			if err := store.Save(); err != nil {
				t.Logf("Save failed: %v", err)
				return false
			}

			loaded, err := LoadOrEmpty(path)
			if err != nil {
				t.Logf("Load failed: %v", err)
				return false
			}
			if loaded.Len() != store.Len() {
				t.Logf("expected %d entries, got %d", store.Len(), loaded.Len())
				return false
			}
			for _, e := range store.Entries() {
				got, ok := loaded.Lookup(e.Name)
				if !ok || got.Version != e.Version {
					t.Logf("entry %+v lost, got %+v", e, got)
					return false
				}
			}
			return true
		}
	}

	properties.Property("line format round-trip preserves lookups", prop.ForAll(
		check(".txt"), gen.SliceOfN(6, genEntry()),
	))
	properties.Property("toml format round-trip preserves lookups", prop.ForAll(
		check(".toml"), gen.SliceOfN(6, genEntry()),
	))

	properties.TestingRun(t)
}
