// Package credentials resolves registry credentials from the
// environment first and an interactive prompt second.
package credentials

import (
	"errors"
	"fmt"
	"os"

	"github.com/adatari/shipit/internal/logs"
)

const (
	EnvUsername = "SHIPIT_REGISTRY_USERNAME"
	EnvPassword = "SHIPIT_REGISTRY_PASSWORD"
)

var ErrNotFound = errors.New("registry credentials not found")

type Credentials struct {
	Username string
	Password string
}

func (c Credentials) IsZero() bool {
	return c.Username == "" && c.Password == ""
}

// Source yields credentials or ErrNotFound when it has none to offer.
type Source interface {
	Resolve() (Credentials, error)
}

// EnvSource reads both values from the process environment. Partial
// pairs (username without password or vice versa) are an error rather
// than a silent fallthrough, so a typo'd variable name is caught early.
type EnvSource struct{}

func (EnvSource) Resolve() (Credentials, error) {
	user, userSet := os.LookupEnv(EnvUsername)
	pass, passSet := os.LookupEnv(EnvPassword)

	if !userSet && !passSet {
		return Credentials{}, ErrNotFound
	}
	if user == "" || pass == "" {
		return Credentials{}, fmt.Errorf("both %s and %s must be set", EnvUsername, EnvPassword)
	}
	return Credentials{Username: user, Password: pass}, nil
}

// PromptSource asks interactively. The password never reaches the logs.
type PromptSource struct {
	Registry string
}

func (s PromptSource) Resolve() (Credentials, error) {
	user, err := logs.PromptInput(fmt.Sprintf("Username for %s", s.Registry))
	if err != nil {
		return Credentials{}, fmt.Errorf("failed to read username: %w", err)
	}
	pass, err := logs.PromptSecret(fmt.Sprintf("Password for %s", s.Registry))
	if err != nil {
		return Credentials{}, fmt.Errorf("failed to read password: %w", err)
	}
	if user == "" || pass == "" {
		return Credentials{}, errors.New("username and password must not be empty")
	}
	return Credentials{Username: user, Password: pass}, nil
}

// Chain tries each source in order, skipping ones that report
// ErrNotFound.
type Chain []Source

func (c Chain) Resolve() (Credentials, error) {
	for _, s := range c {
		creds, err := s.Resolve()
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				continue
			}
			return Credentials{}, err
		}
		return creds, nil
	}
	return Credentials{}, ErrNotFound
}
