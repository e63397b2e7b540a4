package storage

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// LocalStorage writes uploads under root, sharded by year/month/user so no
// directory grows unbounded. Filenames embed a random identifier, so
// concurrent uploads cannot collide.
type LocalStorage struct {
	root    string
	baseURL string
}

type StoredFile struct {
	Filename string
	Path     string
	URL      string
}

func NewLocalStorage(root, baseURL string) *LocalStorage {
	return &LocalStorage{root: root, baseURL: strings.TrimSuffix(baseURL, "/")}
}

func (s *LocalStorage) Store(file multipart.File, originalName string, userID uint, now time.Time) (*StoredFile, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	filename := uuid.NewString() + ext
	relDir := filepath.Join("videos", fmt.Sprintf("%04d", now.Year()), fmt.Sprintf("%02d", int(now.Month())), fmt.Sprintf("%d", userID))

	dir := filepath.Join(s.root, relDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	path := filepath.Join(dir, filename)

	dst, err := os.Create(path)
	if err != nil {
		return nil, err
	}

	if _, err := io.Copy(dst, file); err != nil {
		dst.Close()
		os.Remove(path)
		return nil, err
	}

	if err := dst.Close(); err != nil {
		os.Remove(path)
		return nil, err
	}

	return &StoredFile{
		Filename: filename,
		Path:     path,
		URL:      s.baseURL + "/" + filepath.ToSlash(filepath.Join(relDir, filename)),
	}, nil
}

// Delete removes a previously stored file by its public URL. Paths that
// resolve outside the storage root are refused.
func (s *LocalStorage) Delete(url string) error {
	rel := strings.TrimPrefix(url, s.baseURL+"/")

	if rel == url {
		return errors.New("url does not belong to this storage")
	}

	path := filepath.Join(s.root, filepath.FromSlash(rel))

	absRoot, err := filepath.Abs(s.root)
	if err != nil {
		return err
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	if !strings.HasPrefix(absPath, absRoot+string(os.PathSeparator)) {
		return errors.New("path escapes storage root")
	}

	err = os.Remove(absPath)
	if os.IsNotExist(err) {
		return nil
	}

	return err
}

// Root exposes the storage directory for static file serving.
func (s *LocalStorage) Root() string {
	return s.root
}

// BaseURL is the public prefix files are served under.
func (s *LocalStorage) BaseURL() string {
	return s.baseURL
}
