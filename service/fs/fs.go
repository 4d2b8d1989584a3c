// Package fs exposes file storage over the duplex wire methods: GET reads a
// file or lists a folder, HEAD returns metadata, PUT uploads content and
// DELETE removes an object. Targets are resolved against a configured base
// location, so any storage scheme supported by afs works.
package fs

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"github.com/viant/afs"
	"github.com/viant/afs/storage"
	"github.com/viant/afs/url"
	"github.com/viant/duplex/schema"
	"github.com/viant/duplex/server"
)

// Config describes the served location.
type Config struct {
	BaseURL string
	Options []storage.Option
}

// Target names an object relative to the base location.
type Target struct {
	URL string `json:"url"`
}

// Entry describes one stored object.
type Entry struct {
	URL      string    `json:"url"`
	Name     string    `json:"name"`
	MimeType string    `json:"mimeType,omitempty"`
	Size     int64     `json:"size"`
	ModTime  time.Time `json:"modTime"`
	Dir      bool      `json:"dir,omitempty"`
}

// Content carries file data; binary payloads travel base64-encoded in Blob.
type Content struct {
	URL      string `json:"url"`
	MimeType string `json:"mimeType,omitempty"`
	Text     string `json:"text,omitempty"`
	Blob     string `json:"blob,omitempty"`
}

// Upload carries content for a PUT; exactly one of Text or Blob is used.
type Upload struct {
	URL  string `json:"url"`
	Text string `json:"text,omitempty"`
	Blob string `json:"blob,omitempty"`
}

// Service implements the storage handlers.
type Service struct {
	config *Config
	fs     afs.Service
}

// New creates a storage service rooted at config.BaseURL.
func New(config *Config) *Service {
	return &Service{config: config, fs: afs.New()}
}

// Handlers maps wire methods to this service's operations.
func (s *Service) Handlers() map[string]server.HandlerFunc {
	return map[string]server.HandlerFunc{
		schema.MethodGet:    s.Get,
		schema.MethodHead:   s.Head,
		schema.MethodPut:    s.Put,
		schema.MethodDelete: s.Delete,
	}
}

// Get reads the named object; a folder target returns its file entries.
func (s *Service) Get(ctx context.Context, request *schema.Request) (any, error) {
	target, err := s.target(request.Data)
	if err != nil {
		return nil, err
	}
	object, err := s.fs.Object(ctx, target, s.config.Options...)
	if err != nil {
		return nil, fmt.Errorf("failed to locate %v: %w", target, err)
	}
	if object.IsDir() {
		return s.list(ctx, target)
	}
	data, err := s.fs.DownloadWithURL(ctx, target, s.config.Options...)
	if err != nil {
		return nil, fmt.Errorf("failed to read %v: %w", target, err)
	}
	content := &Content{URL: object.URL(), MimeType: mimeTypeOf(object.Name())}
	if isBinary(data) {
		content.Blob = base64.StdEncoding.EncodeToString(data)
	} else {
		content.Text = string(data)
	}
	return content, nil
}

// Head returns metadata for the named object without its content.
func (s *Service) Head(ctx context.Context, request *schema.Request) (any, error) {
	target, err := s.target(request.Data)
	if err != nil {
		return nil, err
	}
	object, err := s.fs.Object(ctx, target, s.config.Options...)
	if err != nil {
		return nil, fmt.Errorf("failed to locate %v: %w", target, err)
	}
	return entryOf(object), nil
}

// Put uploads text or base64 blob content to the named object.
func (s *Service) Put(ctx context.Context, request *schema.Request) (any, error) {
	upload := &Upload{}
	if len(request.Data) > 0 {
		if err := json.Unmarshal(request.Data, upload); err != nil {
			return nil, fmt.Errorf("invalid upload: %w", err)
		}
	}
	target, err := s.resolve(upload.URL)
	if err != nil {
		return nil, err
	}
	data := []byte(upload.Text)
	if upload.Blob != "" {
		if data, err = base64.StdEncoding.DecodeString(upload.Blob); err != nil {
			return nil, fmt.Errorf("invalid blob: %w", err)
		}
	}
	if err := s.fs.Upload(ctx, target, 0o644, bytes.NewReader(data), s.config.Options...); err != nil {
		return nil, fmt.Errorf("failed to upload %v: %w", target, err)
	}
	return &Target{URL: target}, nil
}

// Delete removes the named object.
func (s *Service) Delete(ctx context.Context, request *schema.Request) (any, error) {
	target, err := s.target(request.Data)
	if err != nil {
		return nil, err
	}
	if err := s.fs.Delete(ctx, target, s.config.Options...); err != nil {
		return nil, fmt.Errorf("failed to delete %v: %w", target, err)
	}
	return &Target{URL: target}, nil
}

func (s *Service) list(ctx context.Context, target string) (any, error) {
	objects, err := s.fs.List(ctx, target, s.config.Options...)
	if err != nil {
		return nil, fmt.Errorf("failed to list %v: %w", target, err)
	}
	entries := make([]*Entry, 0, len(objects))
	for _, object := range objects {
		if object.IsDir() {
			continue
		}
		entries = append(entries, entryOf(object))
	}
	return entries, nil
}

// target decodes a Target or a bare string from data and resolves it.
func (s *Service) target(data json.RawMessage) (string, error) {
	aTarget := &Target{}
	if len(data) > 0 {
		if err := json.Unmarshal(data, aTarget); err != nil {
			if err := json.Unmarshal(data, &aTarget.URL); err != nil {
				return "", fmt.Errorf("invalid target: %w", err)
			}
		}
	}
	return s.resolve(aTarget.URL)
}

// resolve joins location with the base URL; parent traversal is refused.
func (s *Service) resolve(location string) (string, error) {
	if strings.Contains(location, "..") {
		return "", errors.New("fs: target escapes base location")
	}
	if location == "" {
		return s.config.BaseURL, nil
	}
	return url.Join(s.config.BaseURL, location), nil
}

func entryOf(object storage.Object) *Entry {
	entry := &Entry{
		URL:     object.URL(),
		Name:    object.Name(),
		Size:    object.Size(),
		ModTime: object.ModTime(),
		Dir:     object.IsDir(),
	}
	if !entry.Dir {
		entry.MimeType = mimeTypeOf(object.Name())
	}
	return entry
}

func mimeTypeOf(name string) string {
	mimeType := mime.TypeByExtension(filepath.Ext(name))
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	return mimeType
}

// isBinary returns true if data has non-printable ratio > 30%.
func isBinary(data []byte) bool {
	const maxBytes = 8000
	n := maxBytes
	if len(data) < n {
		n = len(data)
	}
	non := 0
	for i := 0; i < n; i++ {
		b := data[i]
		if (b < 32 || b > 126) && b != '\n' && b != '\r' && b != '\t' {
			non++
		}
	}
	return float64(non)/float64(n) > 0.3
}
