// Package imageref models registry image references as an explicit
// {registry, name, tag} triple and validates them against the reference
// grammar the Docker ecosystem uses.
package imageref

import (
	"errors"
	"fmt"

	"github.com/distribution/reference"
)

// ErrInvalid marks a reference that does not satisfy the registry
// reference grammar. Check with errors.Is.
var ErrInvalid = errors.New("invalid image reference")

// LatestTag is the floating alias every release publishes alongside
// its versioned tag.
const LatestTag = "latest"

// Reference is one fully qualified image reference. Registry may be
// empty for references that only exist in the local image store.
type Reference struct {
	Registry string
	Name     string
	Tag      string
}

// New builds and validates a registry-qualified reference.
func New(registry, name, tag string) (Reference, error) {
	ref := Reference{Registry: registry, Name: name, Tag: tag}
	if err := ref.Validate(); err != nil {
		return Reference{}, err
	}
	return ref, nil
}

// Local builds and validates a reference without a registry host,
// addressing the local image store only.
func Local(name, tag string) (Reference, error) {
	return New("", name, tag)
}

// String renders the reference in the canonical pull/push form:
// [registry/]name[:tag].
func (r Reference) String() string {
	s := r.Name
	if r.Registry != "" {
		s = r.Registry + "/" + s
	}
	if r.Tag != "" {
		s = s + ":" + r.Tag
	}
	return s
}

// WithTag returns a copy of the reference pointing at a different tag.
func (r Reference) WithTag(tag string) Reference {
	r.Tag = tag
	return r
}

// Validate checks the assembled reference against the distribution
// reference grammar. An empty name or tag is always invalid: this
// package has no use for digest-only or tag-less references.
func (r Reference) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalid)
	}
	if r.Tag == "" {
		return fmt.Errorf("%w: empty tag", ErrInvalid)
	}

	named, err := reference.ParseNormalizedNamed(r.String())
	if err != nil {
		return fmt.Errorf("%w: %q: %v", ErrInvalid, r.String(), err)
	}
	if _, err := reference.WithTag(named, r.Tag); err != nil {
		return fmt.Errorf("%w: tag %q: %v", ErrInvalid, r.Tag, err)
	}
	return nil
}
