// Package storage persists recipe images on the local filesystem.
package storage

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var log = logrus.New()

func init() {
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(logrus.InfoLevel)
}

// ErrInvalidImage is returned when the payload is not a decodable image
var ErrInvalidImage = errors.New("invalid image")

// MaxImageSize bounds the decoded size of an uploaded image
const MaxImageSize = 10 << 20

// ImageStore saves recipe images and resolves their public URLs
type ImageStore interface {
	// Save decodes a base64 image (optionally a data URL) and returns its reference
	Save(ctx context.Context, encoded string) (string, error)
	// Delete removes a previously saved image; missing files are ignored
	Delete(ctx context.Context, ref string) error
	// URL returns the public URL for a reference, or "" for an empty reference
	URL(ref string) string
}

type localImageStore struct {
	root    string
	baseURL string
	dir     string
}

// NewLocalImageStore stores images under root/recipes and serves them below baseURL
func NewLocalImageStore(root, baseURL string) ImageStore {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &localImageStore{root: root, baseURL: baseURL, dir: "recipes"}
}

func (s *localImageStore) Save(ctx context.Context, encoded string) (string, error) {
	data, err := decodeImage(encoded)
	if err != nil {
		return "", err
	}

	mtype := mimetype.Detect(data)
	if !strings.HasPrefix(mtype.String(), "image/") {
		return "", fmt.Errorf("%w: unsupported content type %s", ErrInvalidImage, mtype.String())
	}

	if err := os.MkdirAll(filepath.Join(s.root, s.dir), 0o755); err != nil {
		return "", fmt.Errorf("create media directory: %w", err)
	}

	ref := path.Join(s.dir, uuid.NewString()+mtype.Extension())
	if err := os.WriteFile(filepath.Join(s.root, filepath.FromSlash(ref)), data, 0o644); err != nil {
		return "", fmt.Errorf("write image: %w", err)
	}

	log.WithFields(logrus.Fields{
		"ref":       ref,
		"mime_type": mtype.String(),
		"bytes":     len(data),
	}).Debug("Image stored")
	return ref, nil
}

func (s *localImageStore) Delete(ctx context.Context, ref string) error {
	if ref == "" {
		return nil
	}
	clean := path.Clean("/" + ref)[1:]
	if !strings.HasPrefix(clean, s.dir+"/") {
		return fmt.Errorf("refusing to delete %q outside the media directory", ref)
	}
	err := os.Remove(filepath.Join(s.root, filepath.FromSlash(clean)))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func (s *localImageStore) URL(ref string) string {
	if ref == "" {
		return ""
	}
	return s.baseURL + ref
}

// decodeImage accepts either raw base64 or a data URL ("data:image/png;base64,...")
func decodeImage(encoded string) ([]byte, error) {
	payload := strings.TrimSpace(encoded)
	if payload == "" {
		return nil, fmt.Errorf("%w: empty payload", ErrInvalidImage)
	}
	if strings.HasPrefix(payload, "data:") {
		comma := strings.Index(payload, ",")
		if comma < 0 || !strings.HasSuffix(payload[:comma], ";base64") {
			return nil, fmt.Errorf("%w: malformed data URL", ErrInvalidImage)
		}
		payload = payload[comma+1:]
	}
	if base64.StdEncoding.DecodedLen(len(payload)) > MaxImageSize {
		return nil, fmt.Errorf("%w: larger than %d bytes", ErrInvalidImage, MaxImageSize)
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	return data, nil
}
