// Package dockerclient talks to the local Docker engine: context
// builds, tagging, registry auth and pushes. Errors coming back from
// the daemon are classified into the release package's taxonomy so the
// pipeline never inspects daemon error strings itself.
package dockerclient

import (
	"context"
	"log/slog"
	"os"

	"github.com/docker/go-sdk/client"
)

type dockerClient struct {
	client client.SDKClient
}

type DockerClient interface {
	ImageBuilder
	RegistryClient
	ImageExists(context.Context, string) bool
	EngineVersion(context.Context) (string, error)
}

func NewDockerClient() (*dockerClient, error) {
	client, err := client.New(
		context.Background(),
		client.WithLogger(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{}))),
	)
	if err != nil {
		return nil, err
	}

	return &dockerClient{
		client: client,
	}, nil
}

func (dc *dockerClient) ImageExists(ctx context.Context, imageRef string) bool {
	_, err := dc.client.ImageInspect(ctx, imageRef)

	return err == nil
}

// EngineVersion returns the daemon's reported version string.
func (dc *dockerClient) EngineVersion(ctx context.Context) (string, error) {
	v, err := dc.client.ServerVersion(ctx)
	if err != nil {
		return "", classifyDaemonErr("server version", err)
	}
	return v.Version, nil
}
