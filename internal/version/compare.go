package version

import (
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
)

// CheckConstraint checks that current satisfies the semver constraint a run config requires,
// e.g. "^1.0", ">= 1.2, < 2" or "1.x".
//
// Development builds ("main") satisfy every constraint.
func CheckConstraint(current, constraint string) error {
	current = strings.TrimPrefix(strings.TrimSpace(current), "v")

	if current == "main" {
		return nil
	}

	required, err := semver.NewConstraint(constraint)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "invalid version constraint '%s'", constraint)
	}

	currentSemver, err := semver.NewVersion(current)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "invalid backtester version '%s'", current)
	}

	if !required.Check(currentSemver) {
		return errors.Newf(errors.ErrCodeInvalidConfiguration, "backtester version %s does not satisfy '%s'", currentSemver, constraint)
	}

	return nil
}
