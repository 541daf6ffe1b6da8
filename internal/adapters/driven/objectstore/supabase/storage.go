// Package supabase provides an object storage adapter for the Supabase
// Storage HTTP API. Each watched area maps to a storage bucket.
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/meridian-labs/docsight/internal/core/domain"
	"github.com/meridian-labs/docsight/internal/core/ports/driven"
)

// Ensure Storage implements the interface.
var _ driven.ObjectStorage = (*Storage)(nil)

// Default configuration values.
const (
	DefaultTimeout = 60 * time.Second

	// listPageSize is the number of entries requested per list call.
	// The API caps pages, so listing walks offsets until a short page.
	listPageSize = 100
)

// Config holds configuration for the Supabase storage adapter.
type Config struct {
	// ProjectURL is the Supabase project URL, e.g. https://xyz.supabase.co
	// (required).
	ProjectURL string

	// ServiceKey is the service role API key (required).
	ServiceKey string

	// Timeout is the per-request timeout (default: 60s).
	Timeout time.Duration
}

// Storage lists and fetches objects from Supabase Storage buckets.
type Storage struct {
	client  *http.Client
	baseURL string
	apiKey  string
}

// listRequest is the storage list endpoint request format.
type listRequest struct {
	Prefix string   `json:"prefix"`
	Limit  int      `json:"limit"`
	Offset int      `json:"offset"`
	SortBy listSort `json:"sortBy"`
}

type listSort struct {
	Column string `json:"column"`
	Order  string `json:"order"`
}

// listEntry is one object in a list response. Folders come back with a nil
// metadata block and are skipped.
type listEntry struct {
	Name      string     `json:"name"`
	ID        *string    `json:"id"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	Metadata  *entryMeta `json:"metadata"`
}

type entryMeta struct {
	MimeType string `json:"mimetype"`
	Size     int64  `json:"size"`
}

// apiError is the storage API error response format.
type apiError struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// NewStorage creates a Supabase storage adapter.
func NewStorage(cfg Config) (*Storage, error) {
	if cfg.ProjectURL == "" {
		return nil, fmt.Errorf("supabase: project URL is required")
	}
	if cfg.ServiceKey == "" {
		return nil, fmt.Errorf("supabase: service key is required")
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Storage{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL: cfg.ProjectURL + "/storage/v1",
		apiKey:  cfg.ServiceKey,
	}, nil
}

// List returns the refs of all objects in a bucket, walking pages until the
// API returns a short one.
func (s *Storage) List(ctx context.Context, area string) ([]domain.ObjectRef, error) {
	if area == "" {
		return nil, fmt.Errorf("%w: area is required", domain.ErrInvalidInput)
	}

	var refs []domain.ObjectRef
	for offset := 0; ; offset += listPageSize {
		entries, err := s.listPage(ctx, area, offset)
		if err != nil {
			return nil, err
		}

		for _, entry := range entries {
			// Entries without an ID or metadata are folder placeholders.
			if entry.ID == nil || entry.Metadata == nil {
				continue
			}
			ref := domain.ObjectRef{
				Area:      area,
				Path:      entry.Name,
				MediaType: entry.Metadata.MimeType,
				CreatedAt: entry.CreatedAt,
				UpdatedAt: entry.UpdatedAt,
				Metadata: map[string]any{
					"size": entry.Metadata.Size,
					"url":  s.PublicURL(area, entry.Name),
				},
			}
			refs = append(refs, ref)
		}

		if len(entries) < listPageSize {
			return refs, nil
		}
	}
}

// listPage fetches one page of the bucket listing.
func (s *Storage) listPage(ctx context.Context, area string, offset int) ([]listEntry, error) {
	reqBody := listRequest{
		Prefix: "",
		Limit:  listPageSize,
		Offset: offset,
		SortBy: listSort{Column: "name", Order: "asc"},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	endpoint := s.baseURL + "/object/list/" + url.PathEscape(area)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	s.authorise(req)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", area, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, storageError("list "+area, resp.StatusCode, body)
	}

	var entries []listEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return entries, nil
}

// Download fetches an object's raw bytes.
func (s *Storage) Download(ctx context.Context, area, path string) ([]byte, error) {
	if area == "" || path == "" {
		return nil, fmt.Errorf("%w: area and path are required", domain.ErrInvalidInput)
	}

	endpoint := s.baseURL + "/object/" + url.PathEscape(area) + "/" + escapePath(path)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	s.authorise(req)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download %s/%s: %w", area, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("object %s/%s: %w", area, path, domain.ErrNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, storageError("download "+area+"/"+path, resp.StatusCode, body)
	}
	return body, nil
}

// PublicURL returns the public object URL. The bucket must be public for
// the URL to resolve; the pipeline only stores it as metadata.
func (s *Storage) PublicURL(area, path string) string {
	return s.baseURL + "/object/public/" + url.PathEscape(area) + "/" + escapePath(path)
}

func (s *Storage) authorise(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("apikey", s.apiKey)
}

// storageError turns a non-200 response into an error, preferring the API's
// own message when the body parses.
func storageError(op string, status int, body []byte) error {
	var apiErr apiError
	if err := json.Unmarshal(body, &apiErr); err == nil {
		msg := apiErr.Message
		if msg == "" {
			msg = apiErr.Error
		}
		if msg != "" {
			return fmt.Errorf("supabase: %s failed (status %d): %s", op, status, msg)
		}
	}
	return fmt.Errorf("supabase: %s failed (status %d): %s", op, status, string(body))
}

// escapePath escapes each path segment while keeping the separators.
func escapePath(path string) string {
	segments := strings.Split(path, "/")
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}
	return strings.Join(segments, "/")
}
