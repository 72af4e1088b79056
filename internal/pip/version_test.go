package pip

import (
	"errors"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestCompareVersions(t *testing.T) {
	tests := []struct {
		v1, v2 string
		want   int
	}{
		{"1.0", "1.0", 0},
		{"1.0", "1.0.0", 0},
		{"1.0", "1.1", -1},
		{"2.0", "1.9.9", 1},
		{"1.10", "1.9", 1},
		{"1.0a1", "1.0", -1},
		{"1.0a1", "1.0b1", -1},
		{"1.0b2", "1.0rc1", -1},
		{"1.0rc1", "1.0", -1},
		{"1.0.dev1", "1.0a1", -1},
		{"1.0a1.dev1", "1.0a1", -1},
		{"1.0", "1.0.post1", -1},
		{"1.0.post1", "1.0.post2", -1},
		{"1.0-1", "1.0.post1", 0},
		{"1!0.5", "2.0", 1},
		{"1.0+local.7", "1.0", 1},
		{"V1.2", "1.2", 0},
		{"24.0", "23.3.1", 1},
	}

	for _, tt := range tests {
		t.Run(tt.v1+"_vs_"+tt.v2, func(t *testing.T) {
			got, err := CompareVersions(tt.v1, tt.v2)
			if err != nil {
				t.Fatalf("CompareVersions(%q, %q) failed: %v", tt.v1, tt.v2, err)
			}
			if got != tt.want {
				t.Errorf("CompareVersions(%q, %q) = %d, want %d", tt.v1, tt.v2, got, tt.want)
			}
		})
	}
}

func TestCompareVersionsRejectsNonVersions(t *testing.T) {
	tests := []struct {
		v1, v2 string
	}{
		{"1.*", "1.0"},
		{"garbage", "0"},
		{"1.0", ">=2.0"},
		{"", "1.0"},
	}

	for _, tt := range tests {
		t.Run(tt.v1+"_vs_"+tt.v2, func(t *testing.T) {
			if _, err := CompareVersions(tt.v1, tt.v2); !errors.Is(err, ErrInvalidVersion) {
				t.Errorf("CompareVersions(%q, %q): expected ErrInvalidVersion, got %v", tt.v1, tt.v2, err)
			}
		})
	}
}

// mustCompare compares generated versions, which are always valid
func mustCompare(a, b string) int {
	n, err := CompareVersions(a, b)
	if err != nil {
		panic(err)
	}
	return n
}

// genReleaseVersion generates dotted numeric versions
func genReleaseVersion() gopter.Gen {
	return gen.RegexMatch(`^[0-9]{1,3}\.[0-9]{1,3}(\.[0-9]{1,3})?$`)
}

// genVersion generates versions with optional pre/post/dev segments
func genVersion() gopter.Gen {
	return gen.RegexMatch(`^[0-9]{1,2}\.[0-9]{1,2}((a|b|rc)[0-9])?(\.post[0-9])?(\.dev[0-9])?$`)
}

func TestCompareVersionsProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("comparison is reflexive", prop.ForAll(
		func(v string) bool {
			return mustCompare(v, v) == 0
		},
		genVersion(),
	))

	properties.Property("comparison is antisymmetric", prop.ForAll(
		func(a, b string) bool {
			return mustCompare(a, b) == -mustCompare(b, a)
		},
		genVersion(),
		genVersion(),
	))

	properties.Property("pre-release sorts before its final release", prop.ForAll(
		func(v string, tag string) bool {
			return mustCompare(v+tag+"1", v) == -1
		},
		genReleaseVersion(),
		gen.OneConstOf("a", "b", "rc"),
	))

	properties.Property("post-release sorts after its final release", prop.ForAll(
		func(v string) bool {
			return mustCompare(v+".post1", v) == 1
		},
		genReleaseVersion(),
	))

	properties.TestingRun(t)
}
