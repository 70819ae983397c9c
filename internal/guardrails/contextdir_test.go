package guardrails

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/adatari/shipit/internal/utils"
)

func TestValidateContextDirAcceptsProjectDir(t *testing.T) {
	dir := t.TempDir()

	got, err := ValidateContextDir(dir)
	if err != nil {
		t.Fatalf("ValidateContextDir(%s): %v", dir, err)
	}
	if !filepath.IsAbs(got) {
		t.Errorf("expected absolute path, got %s", got)
	}
}

func TestValidateContextDirDefaultsToCwd(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	got, err := ValidateContextDir("")
	if err != nil {
		t.Fatalf("ValidateContextDir(\"\"): %v", err)
	}
	// TempDir may itself be behind a symlink (macOS /tmp)
	resolved, err := filepath.EvalSymlinks(dir)
	if err != nil {
		t.Fatal(err)
	}
	if got != resolved {
		t.Errorf("got %s, want %s", got, resolved)
	}
}

func TestValidateContextDirRejectsSystemPaths(t *testing.T) {
	for _, p := range []string{"/", "/etc", "/proc"} {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		_, err := ValidateContextDir(p)
		if !errors.Is(err, ErrForbiddenContext) {
			t.Errorf("ValidateContextDir(%s) = %v, want ErrForbiddenContext", p, err)
		}
	}
}

func TestValidateContextDirRejectsMissingPath(t *testing.T) {
	_, err := ValidateContextDir(filepath.Join(t.TempDir(), "nope"))
	if err == nil {
		t.Fatal("expected error for nonexistent path")
	}
	if errors.Is(err, ErrForbiddenContext) {
		t.Fatalf("missing path must not be reported as forbidden: %v", err)
	}
}

func TestValidateContextDirPointsAtFileUsesParent(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "Dockerfile")
	if err := os.WriteFile(file, []byte("FROM scratch\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := ValidateContextDir(file)
	if err != nil {
		t.Fatalf("ValidateContextDir(%s): %v", file, err)
	}
	want, err := utils.ResolveFolderStrict(dir)
	if err != nil {
		t.Fatal(err)
	}
	if got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}
