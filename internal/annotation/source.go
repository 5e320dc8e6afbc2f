package annotation

import (
	"bufio"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"
)

// Source loads a GTF lazily on first use and keeps the parsed Index for the life
// of the process. A failed load is not cached.
type Source struct {
	location   string
	httpClient *http.Client

	mu  sync.Mutex
	idx *Index
}

func NewSource(location string, httpClient *http.Client) *Source {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Minute}
	}
	return &Source{location: location, httpClient: httpClient}
}

// NewStaticSource wraps an already parsed index.
func NewStaticSource(idx *Index) *Source {
	return &Source{location: "static", idx: idx}
}

func (s *Source) Enabled() bool { return s != nil && s.location != "" }

func (s *Source) Index(ctx context.Context) (*Index, error) {
	if !s.Enabled() {
		return nil, fmt.Errorf("gene annotation is not configured")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.idx != nil {
		return s.idx, nil
	}

	slog.Info("Loading gene annotation", "source", s.location)
	start := time.Now()
	rc, err := s.open(ctx)
	if err != nil {
		return nil, fmt.Errorf("open gene annotation %s: %w", s.location, err)
	}
	defer rc.Close()

	r, err := maybeGunzip(rc, strings.HasSuffix(s.location, ".gz"))
	if err != nil {
		return nil, fmt.Errorf("open gene annotation %s: %w", s.location, err)
	}
	idx, err := Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse gene annotation %s: %w", s.location, err)
	}
	slog.Info("Gene annotation loaded", "genes", idx.Len(), "duration", time.Since(start))
	s.idx = idx
	return idx, nil
}

func (s *Source) open(ctx context.Context) (io.ReadCloser, error) {
	if strings.HasPrefix(s.location, "http://") || strings.HasPrefix(s.location, "https://") {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.location, nil)
		if err != nil {
			return nil, err
		}
		resp, err := s.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("unexpected status %s", resp.Status)
		}
		return resp.Body, nil
	}
	return os.Open(s.location)
}

// maybeGunzip detects gzip by magic number (1F 8B) or by the .gz suffix.
func maybeGunzip(r io.Reader, gzSuffix bool) (io.Reader, error) {
	br := bufio.NewReader(r)
	sig, _ := br.Peek(2)
	if (len(sig) == 2 && sig[0] == 0x1f && sig[1] == 0x8b) || gzSuffix {
		return gzip.NewReader(br)
	}
	return br, nil
}
