package imageref

import (
	"errors"
	"testing"
)

func TestStringRendersQualifiedAndLocalForms(t *testing.T) {
	t.Parallel()

	qualified, err := New("registry.example.com", "ip-service", "20240101-120000")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if got, want := qualified.String(), "registry.example.com/ip-service:20240101-120000"; got != want {
		t.Fatalf("String returned %q, want %q", got, want)
	}

	local, err := Local("ip-service", "latest")
	if err != nil {
		t.Fatalf("Local failed: %v", err)
	}
	if got, want := local.String(), "ip-service:latest"; got != want {
		t.Fatalf("String returned %q, want %q", got, want)
	}
}

func TestWithTagKeepsRegistryAndName(t *testing.T) {
	t.Parallel()

	ref, err := New("registry.example.com", "ip-service", "20240101-120000")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	latest := ref.WithTag(LatestTag)
	if latest.Registry != ref.Registry || latest.Name != ref.Name {
		t.Fatalf("WithTag changed registry/name: %+v", latest)
	}
	if latest.Tag != "latest" {
		t.Fatalf("WithTag returned tag %q, want latest", latest.Tag)
	}
	// original is unchanged
	if ref.Tag != "20240101-120000" {
		t.Fatalf("WithTag mutated receiver: %+v", ref)
	}
}

func TestValidateRejectsMalformedReferences(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		ref  Reference
	}{
		{"empty name", Reference{Registry: "registry.example.com", Tag: "latest"}},
		{"empty tag", Reference{Registry: "registry.example.com", Name: "ip-service"}},
		{"uppercase name", Reference{Name: "IP-Service", Tag: "latest"}},
		{"bad tag chars", Reference{Name: "ip-service", Tag: "v1 beta"}},
		{"tag starts with dash", Reference{Name: "ip-service", Tag: "-x"}},
	}

	for _, tc := range cases {
		if err := tc.ref.Validate(); !errors.Is(err, ErrInvalid) {
			t.Fatalf("%s: Validate returned %v, want ErrInvalid", tc.name, err)
		}
	}
}

func TestNewAcceptsRegistryWithPort(t *testing.T) {
	t.Parallel()

	ref, err := New("localhost:5000", "team/ip-service", "20240101-120000")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if got, want := ref.String(), "localhost:5000/team/ip-service:20240101-120000"; got != want {
		t.Fatalf("String returned %q, want %q", got, want)
	}
}
