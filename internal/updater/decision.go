// Package updater decides what to do with each outdated package and carries
// the decision out through the package manager.
package updater

import (
	"github.com/obentoo/pip-updater/internal/exceptions"
	"github.com/obentoo/pip-updater/internal/pip"
)

// Action is what the engine will do with one outdated package
type Action string

const (
	// ActionSkip leaves the package untouched (exception without a version)
	ActionSkip Action = "skip"
	// ActionFreeze installs the version pinned in the exception list
	ActionFreeze Action = "freeze"
	// ActionPrompt asks the user before upgrading to latest
	ActionPrompt Action = "prompt"
	// ActionUpgrade upgrades to latest without asking
	ActionUpgrade Action = "upgrade"
)

// ExceptionLookup finds the exception entry for a package name.
// *exceptions.Store satisfies it.
type ExceptionLookup interface {
	Lookup(name string) (exceptions.Entry, bool)
}

// Decision is the outcome of Decide for a single package
type Decision struct {
	Package pip.OutdatedPackage
	Action  Action
	// Target is the version that will be installed; empty for ActionSkip
	Target string
}

// Decide applies the exception list and interactivity flag to one package.
// A nil lookup means exceptions are disabled.
//
//	exception without version -> skip
//	exception with version    -> freeze at that version
//	no exception, interactive -> prompt, then latest
//	no exception              -> upgrade to latest
func Decide(pkg pip.OutdatedPackage, lookup ExceptionLookup, interactive bool) Decision {
	if lookup != nil {
		if e, ok := lookup.Lookup(pkg.Name); ok {
			if !e.Frozen() {
				return Decision{Package: pkg, Action: ActionSkip}
			}
			return Decision{Package: pkg, Action: ActionFreeze, Target: e.Version}
		}
	}

	if interactive {
		return Decision{Package: pkg, Action: ActionPrompt, Target: pkg.LatestVersion}
	}
	return Decision{Package: pkg, Action: ActionUpgrade, Target: pkg.LatestVersion}
}

// Plan decides every package in order
func Plan(packages []pip.OutdatedPackage, lookup ExceptionLookup, interactive bool) []Decision {
	decisions := make([]Decision, 0, len(packages))
	for _, pkg := range packages {
		decisions = append(decisions, Decide(pkg, lookup, interactive))
	}
	return decisions
}
