package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/soyeahso/agentwiz/internal/version"
)

// DefaultIndexFile is the catalog index path relative to the source root.
const DefaultIndexFile = "catalog-index.json"

// maxFileSize bounds a single catalog file read.
const maxFileSize = 8 << 20

// ErrNotExist is returned by a Source when the requested path is missing.
var ErrNotExist = errors.New("catalog file does not exist")

// Source fetches raw catalog files by path relative to the catalog root.
type Source interface {
	Fetch(ctx context.Context, path string) ([]byte, error)
	// Location describes where files come from, for logs and error messages.
	Location() string
}

// HTTPSource reads catalog files over HTTP(S).
type HTTPSource struct {
	baseURL string
	client  *http.Client
}

// NewHTTPSource creates a source rooted at baseURL.
func NewHTTPSource(baseURL string, timeout time.Duration) *HTTPSource {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPSource{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// GitHubRawURL returns the raw-content base URL for a repository branch.
func GitHubRawURL(owner, repo, branch string) string {
	if branch == "" {
		branch = "main"
	}
	return fmt.Sprintf("https://raw.githubusercontent.com/%s/%s/%s", owner, repo, branch)
}

// Fetch performs a GET for path under the base URL.
func (s *HTTPSource) Fetch(ctx context.Context, p string) ([]byte, error) {
	url := s.baseURL + "/" + strings.TrimLeft(path.Clean("/"+p), "/")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", version.UserAgent())

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", p, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("fetching %s: %w", p, ErrNotExist)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching %s: %s", p, resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", p, err)
	}
	if len(data) > maxFileSize {
		return nil, fmt.Errorf("reading %s: file too large (over %d bytes)", p, maxFileSize)
	}
	return data, nil
}

func (s *HTTPSource) Location() string { return s.baseURL }

// DirSource reads catalog files from a local directory tree, such as a
// checkout of the component library.
type DirSource struct {
	root string
}

// NewDirSource creates a source rooted at dir.
func NewDirSource(dir string) *DirSource {
	return &DirSource{root: dir}
}

// Fetch reads path under the root. Paths may not escape the root.
func (s *DirSource) Fetch(ctx context.Context, p string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	clean := filepath.FromSlash(path.Clean("/" + p))
	full := filepath.Join(s.root, clean)

	info, err := os.Stat(full)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("reading %s: %w", p, ErrNotExist)
		}
		return nil, fmt.Errorf("reading %s: %w", p, err)
	}
	if info.Size() > maxFileSize {
		return nil, fmt.Errorf("reading %s: file too large (%d bytes)", p, info.Size())
	}
	return os.ReadFile(full)
}

func (s *DirSource) Location() string { return s.root }

// Root returns the directory the source reads from.
func (s *DirSource) Root() string { return s.root }
