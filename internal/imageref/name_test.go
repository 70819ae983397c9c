package imageref

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNameFromPath(t *testing.T) {
	cases := []struct {
		path string
		want string
	}{
		{"/srv/projects/acme/billing-api", "acme_billing-api"},
		{"/srv/billing-api", "srv_billing-api"},
		{"/Billing API!", "billingapi"},
		{"", "unnamed-image"},
		{"///", "unnamed-image"},
	}

	for _, tc := range cases {
		if got := NameFromPath(tc.path); got != tc.want {
			t.Errorf("NameFromPath(%q) = %q, want %q", tc.path, got, tc.want)
		}
	}
}

func TestNameFromPathTrimsHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home dir")
	}

	got := NameFromPath(filepath.Join(home, "billing-api"))
	if got != "billing-api" {
		t.Errorf("got %q, want billing-api", got)
	}
}

func TestNameFromPathIsValidRepositoryName(t *testing.T) {
	for _, p := range []string{"/srv/projects/acme/billing-api", "/Billing API!", "~/x"} {
		name := NameFromPath(p)
		if _, err := Local(name, "20260823-101500"); err != nil {
			t.Errorf("NameFromPath(%q) = %q is not a valid repository name: %v", p, name, err)
		}
	}
}
