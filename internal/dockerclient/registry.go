package dockerclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"

	cerrdefs "github.com/containerd/errdefs"
	"github.com/docker/docker/api/types/image"
	apiregistry "github.com/docker/docker/api/types/registry"
	"github.com/docker/docker/pkg/jsonmessage"

	"github.com/adatari/shipit/internal/credentials"
	"github.com/adatari/shipit/internal/release"
)

type RegistryClient interface {
	Authenticate(ctx context.Context, registryAddr string, creds credentials.Credentials) (string, error)
	TagImage(ctx context.Context, src, dst string) error
	PushImage(ctx context.Context, ref string, auth string, out io.Writer) error
}

// Authenticate verifies credentials against the registry and returns
// the encoded auth header to attach to subsequent pushes.
func (dc *dockerClient) Authenticate(ctx context.Context, registryAddr string, creds credentials.Credentials) (string, error) {
	authConfig := apiregistry.AuthConfig{
		Username:      creds.Username,
		Password:      creds.Password,
		ServerAddress: registryAddr,
	}

	if _, err := dc.client.RegistryLogin(ctx, authConfig); err != nil {
		if isNetworkErr(err) {
			return "", fmt.Errorf("%w: registry %s unreachable: %v", release.ErrNetwork, registryAddr, err)
		}
		return "", fmt.Errorf("%w: login to %s: %v", release.ErrAuth, registryAddr, err)
	}

	auth, err := apiregistry.EncodeAuthConfig(authConfig)
	if err != nil {
		return "", fmt.Errorf("%w: encode auth: %v", release.ErrAuth, err)
	}
	return auth, nil
}

// TagImage points dst at the image src resolves to. Tagging is local
// and cheap; it never touches the network.
func (dc *dockerClient) TagImage(ctx context.Context, src, dst string) error {
	if err := dc.client.ImageTag(ctx, src, dst); err != nil {
		return classifyDaemonErr(fmt.Sprintf("tag %s as %s", src, dst), err)
	}
	return nil
}

// PushImage pushes ref, streaming daemon progress lines into out.
func (dc *dockerClient) PushImage(ctx context.Context, ref string, auth string, out io.Writer) error {
	rc, err := dc.client.ImagePush(ctx, ref, image.PushOptions{RegistryAuth: auth})
	if err != nil {
		return classifyDaemonErr(fmt.Sprintf("push %s", ref), err)
	}
	defer rc.Close()

	// Push errors surface mid-stream as JSON error messages, not as the
	// ImagePush return value.
	if err := jsonmessage.DisplayJSONMessagesStream(rc, out, 0, false, nil); err != nil {
		return classifyPushStreamErr(ref, err)
	}
	return nil
}

func classifyDaemonErr(op string, err error) error {
	switch {
	case cerrdefs.IsNotFound(err):
		return fmt.Errorf("%w: %s: %v", release.ErrImageNotFound, op, err)
	case cerrdefs.IsInvalidArgument(err):
		return fmt.Errorf("%w: %s: %v", release.ErrInvalidReference, op, err)
	case cerrdefs.IsUnauthorized(err):
		return fmt.Errorf("%w: %s: %v", release.ErrAuth, op, err)
	case cerrdefs.IsUnavailable(err), isNetworkErr(err):
		return fmt.Errorf("%w: %s: %v", release.ErrNetwork, op, err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

func classifyPushStreamErr(ref string, err error) error {
	var jerr *jsonmessage.JSONError
	if errors.As(err, &jerr) {
		msg := strings.ToLower(jerr.Message)
		if strings.Contains(msg, "unauthorized") || strings.Contains(msg, "authentication required") {
			return fmt.Errorf("%w: push %s: %v", release.ErrAuth, ref, err)
		}
		return fmt.Errorf("%w: push %s: %v", release.ErrRegistryRejected, ref, err)
	}
	if isNetworkErr(err) {
		return fmt.Errorf("%w: push %s: %v", release.ErrNetwork, ref, err)
	}
	return fmt.Errorf("push %s: %w", ref, err)
}

func isNetworkErr(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr)
}
