package pip

import "context"

// Executor defines the interface for package manager operations.
// This interface allows for mocking pip in tests.
type Executor interface {
	// Outdated returns the raw JSON from `pip list --outdated --format=json`
	Outdated(ctx context.Context) ([]byte, error)

	// OutdatedTable returns the human-readable `pip list --outdated` table
	OutdatedTable(ctx context.Context) (string, error)

	// Install installs name at exactly version
	Install(ctx context.Context, name, version string) error

	// UpgradeSelf upgrades the package manager itself
	UpgradeSelf(ctx context.Context) error
}
