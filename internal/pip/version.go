package pip

import (
	"errors"
	"fmt"

	pep440 "github.com/aquasecurity/go-pep440-version"
)

// ErrInvalidVersion is returned when a string is not a PEP 440 version.
// Wildcard pins such as "1.*" are requirement specifiers, not versions.
var ErrInvalidVersion = errors.New("invalid version")

// CompareVersions compares two PEP 440 version strings.
// Returns -1 if v1 < v2, 0 if v1 == v2, 1 if v1 > v2.
func CompareVersions(v1, v2 string) (int, error) {
	a, err := pep440.Parse(v1)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", ErrInvalidVersion, v1, err)
	}
	b, err := pep440.Parse(v2)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", ErrInvalidVersion, v2, err)
	}
	return a.Compare(b), nil
}
