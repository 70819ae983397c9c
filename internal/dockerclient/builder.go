package dockerclient

import (
	"archive/tar"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/docker/docker/api/types/build"
	sdkimage "github.com/docker/go-sdk/image"

	"github.com/adatari/shipit/internal/release"
)

type ImageBuilder interface {
	BuildImage(ctx context.Context, contextDir string, tag string) (string, error)
}

// BuildImage tars contextDir and builds it with the daemon, tagging the
// result. The Dockerfile must sit at the context root. The tar stream
// is piped rather than buffered so large contexts don't live in memory.
func (dc *dockerClient) BuildImage(ctx context.Context, contextDir string, tag string) (string, error) {
	dockerfile := filepath.Join(contextDir, "Dockerfile")
	if _, err := os.Stat(dockerfile); err != nil {
		return "", fmt.Errorf("%w: no Dockerfile in %s", release.ErrBuild, contextDir)
	}

	pr, pw := io.Pipe()
	go func() {
		pw.CloseWithError(tarDirectory(contextDir, pw))
	}()

	buildTag, err := sdkimage.Build(
		ctx,
		pr,
		tag,
		sdkimage.WithBuildClient(dc.client),
		sdkimage.WithBuildOptions(build.ImageBuildOptions{
			Dockerfile: "Dockerfile",
			Remove:     true, // remove intermediate containers
		}),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", release.ErrBuild, err)
	}

	return buildTag, nil
}

// tarDirectory writes root's contents into w with paths relative to
// root. Symlinks are preserved as links, .git is skipped.
func tarDirectory(root string, w io.Writer) error {
	tw := tar.NewWriter(w)

	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		if d.IsDir() && d.Name() == ".git" {
			return filepath.SkipDir
		}

		info, err := d.Info()
		if err != nil {
			return err
		}

		link := ""
		if info.Mode()&os.ModeSymlink != 0 {
			if link, err = os.Readlink(path); err != nil {
				return err
			}
		}

		hdr, err := tar.FileInfoHeader(info, link)
		if err != nil {
			return err
		}
		hdr.Name = filepath.ToSlash(rel)
		if d.IsDir() {
			hdr.Name += "/"
		}

		if err := tw.WriteHeader(hdr); err != nil {
			return err
		}
		if !info.Mode().IsRegular() {
			return nil
		}

		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()

		_, err = io.Copy(tw, f)
		return err
	})
	if err != nil {
		return fmt.Errorf("tar build context: %w", err)
	}

	return tw.Close()
}
