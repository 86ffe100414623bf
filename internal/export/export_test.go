package export

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

var stamp = time.Date(2026, 3, 7, 9, 4, 5, 0, time.UTC)

func TestFileName(t *testing.T) {
	tests := []struct {
		ext  string
		want string
	}{
		{"png", "asciicam-20260307-090405.png"},
		{".webm", "asciicam-20260307-090405.webm"},
		{"mp4", "asciicam-20260307-090405.mp4"},
	}
	for _, tt := range tests {
		if got := FileName(stamp, tt.ext); got != tt.want {
			t.Fatalf("FileName(%q) = %q, want %q", tt.ext, got, tt.want)
		}
	}
}

func TestWritePNG(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "shots")
	data := []byte("\x89PNG fake")

	first, err := WritePNG(dir, stamp, data)
	if err != nil {
		t.Fatalf("WritePNG() error = %v", err)
	}
	if filepath.Base(first) != "asciicam-20260307-090405.png" {
		t.Fatalf("path = %q", first)
	}
	got, err := os.ReadFile(first)
	if err != nil || !bytes.Equal(got, data) {
		t.Fatalf("file contents = %q, %v", got, err)
	}

	second, err := WritePNG(dir, stamp, data)
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(second) != "asciicam-20260307-090405-2.png" {
		t.Fatalf("second capture in the same second = %q", second)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 2 {
		t.Fatalf("dir has %d entries, want 2 (no temp files left)", len(entries))
	}
}

func TestWritePNGEmpty(t *testing.T) {
	if _, err := WritePNG(t.TempDir(), stamp, nil); !errors.Is(err, ErrEmpty) {
		t.Fatalf("WritePNG(nil) error = %v, want ErrEmpty", err)
	}
}

func TestWriteText(t *testing.T) {
	dir := t.TempDir()
	path, err := WriteText(dir, stamp, "#*.\n .@\n")
	if err != nil {
		t.Fatalf("WriteText() error = %v", err)
	}
	if filepath.Ext(path) != ".txt" {
		t.Fatalf("path = %q, want .txt", path)
	}
	got, _ := os.ReadFile(path)
	if string(got) != "#*.\n .@\n" {
		t.Fatalf("contents = %q", got)
	}
	if _, err := WriteText(dir, stamp, "  \n \n"); !errors.Is(err, ErrEmpty) {
		t.Fatalf("WriteText(blank) error = %v, want ErrEmpty", err)
	}
}
