package archive

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/newthinker/stocksim/internal/core"
)

func TestLocalFS_ImplementsSink(t *testing.T) {
	var _ Sink = (*LocalFS)(nil)
}

func TestLocalFS_Put(t *testing.T) {
	dir := t.TempDir()
	fs, err := NewLocalFS(dir)
	if err != nil {
		t.Fatalf("NewLocalFS: %v", err)
	}

	ctx := context.Background()
	data := []byte("<svg/>")

	location, err := fs.Put(ctx, "charts/aapl.svg", "image/svg+xml", data)
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if location != filepath.Join(dir, "charts", "aapl.svg") {
		t.Errorf("location = %q", location)
	}

	got, err := os.ReadFile(location)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(got) != string(data) {
		t.Errorf("got %q, want %q", got, data)
	}
}

func TestLocalFS_PutRejectsEscapingNames(t *testing.T) {
	fs, _ := NewLocalFS(t.TempDir())
	ctx := context.Background()

	for _, name := range []string{"../outside.svg", "/etc/passwd", "", "a/../../b.svg"} {
		if _, err := fs.Put(ctx, name, "", []byte("x")); !errors.Is(err, core.ErrInvalidInput) {
			t.Errorf("Put(%q) error = %v, want ErrInvalidInput", name, err)
		}
	}
}

func TestLocalFS_Exists(t *testing.T) {
	dir := t.TempDir()
	fs, _ := NewLocalFS(dir)
	ctx := context.Background()

	exists, _ := fs.Exists(ctx, "nonexistent.svg")
	if exists {
		t.Error("expected false for nonexistent file")
	}

	fs.Put(ctx, "exists.svg", "", []byte("data"))
	exists, _ = fs.Exists(ctx, "exists.svg")
	if !exists {
		t.Error("expected true for existing file")
	}
}

func TestLocalFS_List(t *testing.T) {
	dir := t.TempDir()
	fs, _ := NewLocalFS(dir)
	ctx := context.Background()

	fs.Put(ctx, "2024/01/a.svg", "", []byte("a"))
	fs.Put(ctx, "2024/01/b.svg", "", []byte("b"))
	fs.Put(ctx, "2024/02/c.svg", "", []byte("c"))

	paths, err := fs.List(ctx, "2024/01")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(paths) != 2 {
		t.Errorf("expected 2 paths, got %d", len(paths))
	}

	all, err := fs.List(ctx, "")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("expected 3 paths, got %d", len(all))
	}
}

func TestOpen(t *testing.T) {
	sink, err := Open("localfs", t.TempDir(), S3Config{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, ok := sink.(*LocalFS); !ok {
		t.Errorf("expected *LocalFS, got %T", sink)
	}

	if _, err := Open("ftp", "", S3Config{}); !errors.Is(err, core.ErrConfigInvalid) {
		t.Errorf("expected ErrConfigInvalid, got %v", err)
	}
	if _, err := Open("s3", "", S3Config{}); !errors.Is(err, core.ErrConfigMissing) {
		t.Errorf("expected ErrConfigMissing, got %v", err)
	}
}
