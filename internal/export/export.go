package export

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ErrEmpty is returned when there are no bytes to write.
var ErrEmpty = errors.New("nothing to export")

const prefix = "asciicam"

// FileName returns the capture name for t with extension ext ("png", ".webm").
func FileName(t time.Time, ext string) string {
	ext = strings.TrimPrefix(ext, ".")
	return fmt.Sprintf("%s-%s.%s", prefix, t.Format("20060102-150405"), ext)
}

// Path returns a capture path in dir that does not exist yet. Captures made
// within the same second get a numeric suffix.
func Path(dir string, t time.Time, ext string) string {
	name := FileName(t, ext)
	path := filepath.Join(dir, name)
	base := strings.TrimSuffix(name, filepath.Ext(name))
	for i := 2; fileExists(path); i++ {
		path = filepath.Join(dir, fmt.Sprintf("%s-%d%s", base, i, filepath.Ext(name)))
	}
	return path
}

// WritePNG stores encoded PNG bytes in dir and returns the file path.
func WritePNG(dir string, t time.Time, data []byte) (string, error) {
	if len(data) == 0 {
		return "", ErrEmpty
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating capture dir: %w", err)
	}
	path := Path(dir, t, "png")
	if err := writeFileAtomic(path, data); err != nil {
		return "", err
	}
	return path, nil
}

// WriteText stores a plain-text rendering in dir and returns the file path.
func WriteText(dir string, t time.Time, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", ErrEmpty
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating capture dir: %w", err)
	}
	path := Path(dir, t, "txt")
	if err := writeFileAtomic(path, []byte(text)); err != nil {
		return "", err
	}
	return path, nil
}

// writeFileAtomic writes through a temp file in the same directory.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".asciicam-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
