package descriptor

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWriteProducesExactKeyValueLines(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "deploy.env")
	w := NewFileWriter(path)

	err := w.Write(Descriptor{
		Registry:  "registry.example.com",
		ImageName: "ip-service",
		Version:   "20240101-120000",
	})
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}

	want := "IMAGE_TAG=20240101-120000\nREGISTRY=registry.example.com\nIMAGE_NAME=ip-service\n"
	if string(data) != want {
		t.Fatalf("descriptor content = %q, want %q", string(data), want)
	}
}

func TestWriteOverwritesPriorContent(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "deploy.env")
	if err := os.WriteFile(path, []byte("IMAGE_TAG=stale\nGARBAGE\nMORE GARBAGE LONGER THAN THE NEW FILE\n"), 0o644); err != nil {
		t.Fatalf("seed write failed: %v", err)
	}

	w := NewFileWriter(path)
	err := w.Write(Descriptor{
		Registry:  "registry.example.com",
		ImageName: "ip-service",
		Version:   "20240102-000000",
	})
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	d, err := Read(path)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if d.Version != "20240102-000000" || d.Registry != "registry.example.com" || d.ImageName != "ip-service" {
		t.Fatalf("Read returned %+v", d)
	}

	data, _ := os.ReadFile(path)
	if len(data) != len("IMAGE_TAG=20240102-000000\nREGISTRY=registry.example.com\nIMAGE_NAME=ip-service\n") {
		t.Fatalf("old content not truncated: %q", string(data))
	}
}

func TestWriteFailsOnUnwritablePath(t *testing.T) {
	t.Parallel()

	w := NewFileWriter(filepath.Join(t.TempDir(), "missing-dir", "deploy.env"))
	if err := w.Write(Descriptor{Registry: "r", ImageName: "n", Version: "v"}); err == nil {
		t.Fatal("expected error writing into a missing directory")
	}
}

func TestReadIgnoresUnknownKeysAndBlankLines(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "deploy.env")
	content := "\nIMAGE_TAG=20240101-120000\nEXTRA=ignored\n\nREGISTRY=registry.example.com\nIMAGE_NAME=ip-service\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("seed write failed: %v", err)
	}

	d, err := Read(path)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if d.Version != "20240101-120000" || d.Registry != "registry.example.com" || d.ImageName != "ip-service" {
		t.Fatalf("Read returned %+v", d)
	}
}
