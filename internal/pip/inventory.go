package pip

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
)

var (
	ErrInvalidInventory = errors.New("invalid outdated package list")
)

// OutdatedPackage is one entry of `pip list --outdated --format=json`
type OutdatedPackage struct {
	Name           string `json:"name"`
	Version        string `json:"version"`
	LatestVersion  string `json:"latest_version"`
	LatestFiletype string `json:"latest_filetype,omitempty"`
}

// IsSelf reports whether the package is the package manager itself
func (p OutdatedPackage) IsSelf() bool {
	return NormalizeName(p.Name) == "pip"
}

// nameSeparators matches runs of characters PEP 503 treats as equivalent
var nameSeparators = regexp.MustCompile(`[-_.]+`)

// NormalizeName returns the canonical form of a distribution name:
// lowercase with runs of "-", "_" and "." collapsed to "-".
func NormalizeName(name string) string {
	return nameSeparators.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "-")
}

// ParseOutdated decodes pip's JSON inventory.
// Entries without a name are dropped; the result is sorted by normalized name.
func ParseOutdated(data []byte) ([]OutdatedPackage, error) {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" {
		return nil, fmt.Errorf("%w: empty output", ErrInvalidInventory)
	}

	var raw []OutdatedPackage
	if err := json.Unmarshal([]byte(trimmed), &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInventory, err)
	}

	packages := make([]OutdatedPackage, 0, len(raw))
	for _, p := range raw {
		if strings.TrimSpace(p.Name) == "" {
			continue
		}
		packages = append(packages, p)
	}

	sort.SliceStable(packages, func(i, j int) bool {
		return NormalizeName(packages[i].Name) < NormalizeName(packages[j].Name)
	})

	return packages, nil
}

// Collect runs the executor and parses its outdated package list
func Collect(ctx context.Context, exec Executor) ([]OutdatedPackage, error) {
	data, err := exec.Outdated(ctx)
	if err != nil {
		return nil, err
	}
	return ParseOutdated(data)
}
