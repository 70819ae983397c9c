// Package descriptor writes the deployment descriptor: the flat
// KEY=VALUE record downstream deployment tooling reads to learn which
// image version was last published. The file always describes the most
// recent successful release only; every write truncates prior content.
package descriptor

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// DefaultPath is where the descriptor lands unless the operator points
// the release elsewhere. Relative to the working directory, next to the
// build context, where deploy tooling expects it.
const DefaultPath = "deploy.env"

// Field names, in the exact form deploy tooling greps for.
const (
	KeyImageTag  = "IMAGE_TAG"
	KeyRegistry  = "REGISTRY"
	KeyImageName = "IMAGE_NAME"
)

// Descriptor carries the three facts a release publishes.
type Descriptor struct {
	Registry  string
	ImageName string
	Version   string
}

// Writer persists descriptors to some durable location.
type Writer interface {
	Write(d Descriptor) error
}

type fileWriter struct {
	path string
}

// NewFileWriter returns a Writer that overwrites the file at path on
// every call.
func NewFileWriter(path string) Writer {
	if path == "" {
		path = DefaultPath
	}
	return &fileWriter{path: path}
}

func (w *fileWriter) Write(d Descriptor) error {
	f, err := os.OpenFile(w.path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("descriptor: open %s: %w", w.path, err)
	}

	bw := bufio.NewWriter(f)
	fmt.Fprintf(bw, "%s=%s\n", KeyImageTag, d.Version)
	fmt.Fprintf(bw, "%s=%s\n", KeyRegistry, d.Registry)
	fmt.Fprintf(bw, "%s=%s\n", KeyImageName, d.ImageName)

	if err := bw.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("descriptor: write %s: %w", w.path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("descriptor: close %s: %w", w.path, err)
	}
	return nil
}

// Read parses a descriptor file back into a Descriptor. Unknown keys
// are ignored so the format can grow without breaking old readers.
func Read(path string) (Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Descriptor{}, fmt.Errorf("descriptor: read %s: %w", path, err)
	}

	var d Descriptor
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		switch key {
		case KeyImageTag:
			d.Version = value
		case KeyRegistry:
			d.Registry = value
		case KeyImageName:
			d.ImageName = value
		}
	}
	return d, nil
}
