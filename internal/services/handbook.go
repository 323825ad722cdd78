package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"

	"github.com/storeops/faxbridge/internal/config"
)

// HandbookService serves the static handbook assets out of a GCS bucket:
// a manifest listing plus the files themselves. No state machine, read only.
type HandbookService struct {
	storageClient *storage.Client
	bucket        string
	prefix        string
}

// NewHandbook returns a HandbookService over the configured bucket.
func NewHandbook(client *storage.Client, cfg *config.Config) (*HandbookService, error) {
	if cfg.HandbookBucket == "" {
		return nil, fmt.Errorf("HANDBOOK_BUCKET must be set")
	}
	return &HandbookService{
		storageClient: client,
		bucket:        cfg.HandbookBucket,
		prefix:        cfg.HandbookPrefix,
	}, nil
}

type manifestEntry struct {
	Name    string    `json:"name"`
	Size    int64     `json:"size"`
	Updated time.Time `json:"updated"`
}

// ServeHTTP answers GET <path> with the object under the handbook prefix and
// GET /manifest.json (or /) with the listing.
func (h *HandbookService) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/")
	if path == "" || path == "manifest.json" {
		h.serveManifest(w, r)
		return
	}
	if strings.Contains(path, "..") {
		http.Error(w, "invalid path", http.StatusBadRequest)
		return
	}

	obj := h.storageClient.Bucket(h.bucket).Object(h.prefix + path)
	reader, err := obj.NewReader(r.Context())
	if errors.Is(err, storage.ErrObjectNotExist) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		slog.Error("Failed to open handbook object.", "object", path, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	defer reader.Close()

	if ct := reader.Attrs.ContentType; ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	w.Header().Set("Cache-Control", "public, max-age=300")
	if _, err := io.Copy(w, reader); err != nil {
		slog.Error("Failed to stream handbook object.", "object", path, "error", err)
	}
}

func (h *HandbookService) serveManifest(w http.ResponseWriter, r *http.Request) {
	query := &storage.Query{Prefix: h.prefix}
	it := h.storageClient.Bucket(h.bucket).Objects(r.Context(), query)

	var files []manifestEntry
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			slog.Error("Failed to list handbook objects.", "error", err)
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}
		files = append(files, manifestEntry{
			Name:    strings.TrimPrefix(attrs.Name, h.prefix),
			Size:    attrs.Size,
			Updated: attrs.Updated,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "public, max-age=60")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"count":   len(files),
		"files":   files,
	})
}
