// Package enginecheck verifies the local Docker daemon is recent
// enough before a release starts pushing to it.
package enginecheck

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/adatari/shipit/internal/logs"
)

// MinEngineVersion is the oldest daemon we release through. Older
// engines predate the push progress format this tool consumes.
const MinEngineVersion = "20.10.0"

var ErrEngineTooOld = errors.New("docker engine too old")

// VersionReporter is the one daemon call this package needs.
type VersionReporter interface {
	EngineVersion(ctx context.Context) (string, error)
}

// Verify fails when the daemon version is below MinEngineVersion.
// Versions that don't parse as semver (forks, distro builds) are let
// through with a warning rather than blocking the release.
func Verify(ctx context.Context, engine VersionReporter) error {
	raw, err := engine.EngineVersion(ctx)
	if err != nil {
		return fmt.Errorf("engine version: %w", err)
	}

	v, err := semver.NewVersion(strings.TrimPrefix(raw, "v"))
	if err != nil {
		logs.Warnf("can't parse engine version %q, skipping version check", raw)
		return nil
	}

	constraint, err := semver.NewConstraint(">= " + MinEngineVersion)
	if err != nil {
		return fmt.Errorf("engine version constraint: %w", err)
	}

	if !constraint.Check(v) {
		return fmt.Errorf("%w: have %s, need >= %s", ErrEngineTooOld, raw, MinEngineVersion)
	}

	logs.Debugf("engine version %s satisfies >= %s", raw, MinEngineVersion)
	return nil
}
