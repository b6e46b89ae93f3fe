package media

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// LocalStore writes images under baseDir and serves them from staticBase.
type LocalStore struct {
	baseDir    string
	staticBase string
}

func NewLocalStore(baseDir, staticBase string) *LocalStore {
	return &LocalStore{baseDir: baseDir, staticBase: strings.TrimRight(staticBase, "/")}
}

func (s *LocalStore) BaseDir() string { return s.baseDir }

// Upload stores the file at <baseDir>/YYYY/MM/DD/<uuid>_<name><ext> and
// returns its public URL.
func (s *LocalStore) Upload(_ context.Context, _ string, fh *multipart.FileHeader) (string, error) {
	img, err := openImage(fh)
	if err != nil {
		return "", err
	}
	defer img.file.Close()

	now := time.Now()
	relDir := fmt.Sprintf("%d/%02d/%02d", now.Year(), now.Month(), now.Day())
	absDir := filepath.Join(s.baseDir, relDir)
	if err := os.MkdirAll(absDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	filename := fmt.Sprintf("%s_%s%s", uuid.NewString(), sanitizeName(fh.Filename), img.ext)
	absPath := filepath.Join(absDir, filename)
	dst, err := os.Create(absPath)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, img.file); err != nil {
		_ = os.Remove(absPath)
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	return s.staticBase + "/" + relDir + "/" + filename, nil
}
