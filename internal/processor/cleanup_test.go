package processor

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/nguyentantai21042004/vidscribe/internal/logger"
)

func TestRemoveFiles(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "a.mp3")
	other := filepath.Join(dir, "b.mp4")
	sub := filepath.Join(dir, "sub")
	for _, f := range []string{file, other} {
		if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}

	log := logger.NewWithWriter("error", io.Discard)
	removed, err := RemoveFiles(context.Background(), log, []string{file, filepath.Join(dir, "missing.mp3"), sub, other})
	if err != nil {
		t.Fatalf("RemoveFiles() error = %v", err)
	}
	if removed != 2 {
		t.Errorf("removed = %d, want 2", removed)
	}
	if exists(file) || exists(other) {
		t.Error("regular files should be removed")
	}
	if !exists(sub) {
		t.Error("directories must be left alone")
	}
}

func TestRemoveFilesEmpty(t *testing.T) {
	removed, err := RemoveFiles(context.Background(), logger.NewWithWriter("error", io.Discard), nil)
	if removed != 0 || err != nil {
		t.Errorf("RemoveFiles(nil) = %d, %v", removed, err)
	}
}
