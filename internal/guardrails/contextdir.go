// Package guardrails stops a release from using an obviously wrong
// build context, like a system directory or the user's home. The whole
// context gets tarred and shipped to the daemon, so a bad path is both
// slow and a credential leak.
package guardrails

import (
	"errors"
	"fmt"
	"os/user"
	"path/filepath"
	"strings"

	hostappconfig "github.com/adatari/shipit/internal/apps/shipit/config"
	"github.com/adatari/shipit/internal/utils"
)

var ErrForbiddenContext = errors.New("forbidden build context")

// A forbidden rule: either exact path or prefix path.
type forbiddenRule struct {
	Path   string // normalized absolute path
	Exact  bool   // forbid ONLY this exact path
	Prefix bool   // forbid this path AND any child paths
}

var forbiddenRules []forbiddenRule

func init() {
	home := mustHome()

	raw := []forbiddenRule{
		// system directories: exact matches only, a project checked out
		// under e.g. /opt/src is legitimate
		{Path: "/", Exact: true},
		{Path: "/bin", Exact: true},
		{Path: "/sbin", Exact: true},
		{Path: "/lib", Exact: true},
		{Path: "/usr", Exact: true},
		{Path: "/etc", Prefix: true},
		{Path: "/dev", Prefix: true},
		{Path: "/proc", Prefix: true},
		{Path: "/sys", Prefix: true},
		{Path: "/run", Prefix: true},
		{Path: "/var", Exact: true},
		{Path: "/opt", Exact: true},
		{Path: "/boot", Prefix: true},
		{Path: "/tmp", Exact: true},

		// a whole home directory is never a build context
		{Path: home, Exact: true},

		// credential material must never end up in an image layer
		{Path: filepath.Join(home, ".ssh"), Prefix: true},
		{Path: filepath.Join(home, ".gnupg"), Prefix: true},
		{Path: filepath.Join(home, ".aws"), Prefix: true},
		{Path: filepath.Join(home, ".azure"), Prefix: true},
		{Path: filepath.Join(home, ".docker"), Prefix: true},
		{Path: filepath.Join(home, ".kube"), Prefix: true},
		{Path: filepath.Join(home, ".config", "gcloud"), Prefix: true},
		{Path: filepath.Join(home, ".config", "gh"), Prefix: true},

		// our own state
		{Path: hostappconfig.ConfigBasePath(), Prefix: true},
	}

	for _, r := range raw {
		r.Path = filepath.Clean(r.Path)
		forbiddenRules = append(forbiddenRules, r)
	}
}

func mustHome() string {
	usr, err := user.Current()
	if err != nil {
		panic(err)
	}
	return usr.HomeDir
}

// ValidateContextDir resolves rawPath and rejects forbidden locations.
// Returns the resolved absolute path on success.
func ValidateContextDir(rawPath string) (string, error) {
	if rawPath == "" {
		rawPath = "."
	}

	p, err := utils.ResolveFolderStrict(rawPath)
	if err != nil {
		return "", fmt.Errorf("can't resolve build context %s: %w", rawPath, err)
	}

	for _, rule := range forbiddenRules {
		if rule.Exact && p == rule.Path {
			return "", fmt.Errorf("%w: %s", ErrForbiddenContext, p)
		}
		if rule.Prefix && isUnderPrefix(rule.Path, p) {
			return "", fmt.Errorf("%w: %s is under %s", ErrForbiddenContext, p, rule.Path)
		}
	}

	return p, nil
}

func isUnderPrefix(base, path string) bool {
	rel, err := filepath.Rel(base, path)
	if err != nil {
		return false
	}
	return rel == "." || !strings.HasPrefix(rel, "..")
}
