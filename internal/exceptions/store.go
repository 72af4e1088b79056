// Package exceptions manages the user-maintained list of packages that must
// not be upgraded to latest.
//
// The list is a plain text file with one package per line:
//
//	# comments and blank lines are ignored
//	numpy           skip numpy entirely
//	requests==2.31.0 freeze requests at 2.31.0
//
// A path ending in .toml is read and written as a TOML table instead:
//
//	[exceptions]
//	numpy = ""
//	requests = "2.31.0"
package exceptions

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/obentoo/pip-updater/internal/pip"
)

var (
	// ErrExceptionsNotFound is returned when the exceptions file does not exist
	ErrExceptionsNotFound = errors.New("exceptions file not found")
	// ErrInvalidEntry is returned when an entry has no package name
	ErrInvalidEntry = errors.New("invalid exception entry")
)

const (
	// pinSeparator separates a package name from its frozen version
	pinSeparator = "=="
	// specifierChars cannot appear in a name or a pinned version
	specifierChars = "<>=!~;, \t"
)

// Entry is one exception: a package to skip, or to freeze when Version is set
type Entry struct {
	Name    string
	Version string
}

// Frozen reports whether the entry pins a version
func (e Entry) Frozen() bool {
	return e.Version != ""
}

// String renders the entry in line format
func (e Entry) String() string {
	if e.Frozen() {
		return e.Name + pinSeparator + e.Version
	}
	return e.Name
}

// ParseEntry parses "name" or "name==version".
// Only an exact two-part split carries a version; anything else is name-only.
func ParseEntry(line string) (Entry, error) {
	line = strings.TrimSpace(line)
	parts := strings.Split(line, pinSeparator)

	var e Entry
	if len(parts) == 2 {
		e = Entry{Name: strings.TrimSpace(parts[0]), Version: strings.TrimSpace(parts[1])}
	} else {
		e = Entry{Name: strings.TrimSpace(parts[0])}
	}

	if e.Name == "" {
		return Entry{}, fmt.Errorf("%w: %q", ErrInvalidEntry, line)
	}
	return e, nil
}

// tomlFile is the on-disk shape of a .toml exceptions file
type tomlFile struct {
	Exceptions map[string]string `toml:"exceptions"`
}

// Store holds the exception list keyed by normalized package name.
// Entry order from the file is preserved on Save.
type Store struct {
	path    string
	entries map[string]Entry
	order   []string
	mu      sync.RWMutex
}

// NewStore creates an empty store bound to path
func NewStore(path string) *Store {
	return &Store{
		path:    path,
		entries: make(map[string]Entry),
	}
}

// Load reads the exceptions file at path.
// A missing file returns ErrExceptionsNotFound.
func Load(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrExceptionsNotFound, path)
		}
		return nil, fmt.Errorf("failed to read exceptions file: %w", err)
	}

	s := NewStore(path)
	if isTOML(path) {
		err = s.decodeTOML(data)
	} else {
		err = s.decodeLines(bytes.NewReader(data))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}
	return s, nil
}

// LoadOrEmpty is like Load but returns an empty store for a missing file
func LoadOrEmpty(path string) (*Store, error) {
	s, err := Load(path)
	if errors.Is(err, ErrExceptionsNotFound) {
		return NewStore(path), nil
	}
	return s, err
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

// decodeLines parses the line format. Blank lines and # comments are skipped;
// the first line for a package wins and later duplicates are ignored.
func (s *Store) decodeLines(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		e, err := ParseEntry(line)
		if err != nil {
			return err
		}
		if _, dup := s.entries[pip.NormalizeName(e.Name)]; dup {
			continue
		}
		s.setUnsafe(e)
	}
	return scanner.Err()
}

// decodeTOML parses the TOML format; names are sorted for a stable order
func (s *Store) decodeTOML(data []byte) error {
	var f tomlFile
	if err := toml.Unmarshal(data, &f); err != nil {
		return err
	}

	names := make([]string, 0, len(f.Exceptions))
	for name := range f.Exceptions {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		e := Entry{Name: strings.TrimSpace(name), Version: strings.TrimSpace(f.Exceptions[name])}
		if e.Name == "" {
			return fmt.Errorf("%w: empty package name", ErrInvalidEntry)
		}
		s.setUnsafe(e)
	}
	return nil
}

// Path returns the file the store reads from and writes to
func (s *Store) Path() string {
	return s.path
}

// Lookup returns the exception for a package, matched by normalized name
func (s *Store) Lookup(name string) (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[pip.NormalizeName(name)]
	return e, ok
}

// Entries returns all exceptions in file order
func (s *Store) Entries() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]Entry, 0, len(s.order))
	for _, key := range s.order {
		entries = append(entries, s.entries[key])
	}
	return entries
}

// Len returns the number of exceptions
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// Set adds or replaces the exception for e.Name.
// Names and versions may not carry requirement specifier characters.
func (s *Store) Set(e Entry) error {
	e.Name = strings.TrimSpace(e.Name)
	e.Version = strings.TrimSpace(e.Version)
	if e.Name == "" || strings.ContainsAny(e.Name, specifierChars) {
		return fmt.Errorf("%w: %q", ErrInvalidEntry, e.Name)
	}
	if strings.ContainsAny(e.Version, specifierChars) {
		return fmt.Errorf("%w: version %q", ErrInvalidEntry, e.Version)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.setUnsafe(e)
	return nil
}

// setUnsafe stores e without locking. Caller must hold the write lock.
func (s *Store) setUnsafe(e Entry) {
	key := pip.NormalizeName(e.Name)
	if _, exists := s.entries[key]; !exists {
		s.order = append(s.order, key)
	}
	s.entries[key] = e
}

// Remove deletes the exception for name and reports whether it existed
func (s *Store) Remove(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := pip.NormalizeName(name)
	if _, exists := s.entries[key]; !exists {
		return false
	}
	delete(s.entries, key)
	for i, k := range s.order {
		if k == key {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

// encode renders the store in the format matching its path
func (s *Store) encode() ([]byte, error) {
	var buf bytes.Buffer

	if isTOML(s.path) {
		f := tomlFile{Exceptions: make(map[string]string, len(s.order))}
		for _, key := range s.order {
			e := s.entries[key]
			f.Exceptions[e.Name] = e.Version
		}
		if err := toml.NewEncoder(&buf).Encode(f); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}

	for _, key := range s.order {
		buf.WriteString(s.entries[key].String())
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}

// Save writes the store back to its path.
// Comments in a line-format file are not preserved.
func (s *Store) Save() error {
	s.mu.RLock()
	data, err := s.encode()
	s.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("failed to encode exceptions: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create exceptions directory: %w", err)
	}

	// Write to temp file first, then rename for atomicity
	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write exceptions file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename exceptions file: %w", err)
	}
	return nil
}
