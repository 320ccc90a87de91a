package blobstore

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrNotFound   = errors.New("attachment not found")
	ErrInvalidRef = errors.New("invalid attachment reference")
)

var refPattern = regexp.MustCompile(`^(voice|image)/[0-9a-f-]{36}(\.[a-z0-9]{1,8})?$`)

// DiskStore keeps voice and image attachments on the local filesystem.
// Callers hold opaque refs of the form "<kind>/<uuid>[.ext]"; the refs
// travel inside broadcast intents and are resolved back through Open.
type DiskStore struct {
	root string
}

// NewDiskStore creates the backing directories under root.
func NewDiskStore(root string) (*DiskStore, error) {
	for _, kind := range []string{"voice", "image"} {
		if err := os.MkdirAll(filepath.Join(root, kind), 0o755); err != nil {
			return nil, fmt.Errorf("create attachment dir: %w", err)
		}
	}
	return &DiskStore{root: root}, nil
}

// Save streams an attachment to disk and returns its ref. kind must be
// "voice" or "image"; ext is the optional file extension without dot.
func (s *DiskStore) Save(kind, ext string, r io.Reader, maxBytes int64) (string, error) {
	if kind != "voice" && kind != "image" {
		return "", ErrInvalidRef
	}
	name := uuid.New().String()
	if ext != "" {
		name += "." + strings.ToLower(ext)
	}
	ref := kind + "/" + name
	if !refPattern.MatchString(ref) {
		return "", ErrInvalidRef
	}

	f, err := os.CreateTemp(filepath.Join(s.root, kind), "upload-*")
	if err != nil {
		return "", fmt.Errorf("create attachment: %w", err)
	}
	tmp := f.Name()
	n, err := io.Copy(f, io.LimitReader(r, maxBytes+1))
	closeErr := f.Close()
	if err == nil {
		err = closeErr
	}
	if err == nil && n > maxBytes {
		err = fmt.Errorf("attachment exceeds %d bytes", maxBytes)
	}
	if err != nil {
		os.Remove(tmp)
		return "", err
	}
	if err := os.Rename(tmp, filepath.Join(s.root, filepath.FromSlash(ref))); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("store attachment: %w", err)
	}
	return ref, nil
}

// Open returns a reader for a stored attachment.
func (s *DiskStore) Open(ref string) (io.ReadCloser, error) {
	if !refPattern.MatchString(ref) {
		return nil, ErrInvalidRef
	}
	f, err := os.Open(filepath.Join(s.root, filepath.FromSlash(ref)))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return f, nil
}

// Delete removes a stored attachment. Deleting a missing ref is not an
// error.
func (s *DiskStore) Delete(ref string) error {
	if !refPattern.MatchString(ref) {
		return ErrInvalidRef
	}
	err := os.Remove(filepath.Join(s.root, filepath.FromSlash(ref)))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Exists reports whether a ref resolves to a stored attachment.
func (s *DiskStore) Exists(ref string) bool {
	if !refPattern.MatchString(ref) {
		return false
	}
	_, err := os.Stat(filepath.Join(s.root, filepath.FromSlash(ref)))
	return err == nil
}
