package linkverify

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/zkcodehub/sitectl/internal/config"
)

// BrokenLink describes one link that failed verification.
type BrokenLink struct {
	Page   string `json:"page"`
	URL    string `json:"url"`
	Reason string `json:"reason"`
}

// Report is the outcome of one verification run.
type Report struct {
	PagesChecked int          `json:"pages_checked"`
	LinksChecked int          `json:"links_checked"`
	Broken       []BrokenLink `json:"broken,omitempty"`
}

// OK reports whether every link verified.
func (r *Report) OK() bool { return len(r.Broken) == 0 }

// Service verifies the links in a rendered output tree.
type Service struct {
	cfg        config.LinkVerifyConfig
	httpClient *http.Client
}

// NewService creates a verification service from config.
func NewService(cfg config.LinkVerifyConfig) *Service {
	timeout, err := time.ParseDuration(cfg.RequestTimeout)
	if err != nil || timeout <= 0 {
		timeout = 10 * time.Second
	}
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = 10
	}
	return &Service{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 5 {
					return fmt.Errorf("too many redirects")
				}
				return nil
			},
		},
	}
}

// Verify walks every rendered page under outputDir and checks its links.
// Internal links must resolve to files in the output tree; external links
// are checked over HTTP when enabled.
func (s *Service) Verify(ctx context.Context, outputDir, baseURL string) (*Report, error) {
	report := &Report{}
	var externals []BrokenLink // candidates: page+url pairs to check over HTTP

	err := filepath.WalkDir(outputDir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() || !strings.HasSuffix(path, ".html") {
			return nil
		}

		rel, err := filepath.Rel(outputDir, path)
		if err != nil {
			return err
		}
		links, err := ExtractLinks(path, baseURL)
		if err != nil {
			return err
		}

		report.PagesChecked++
		for _, link := range links {
			report.LinksChecked++
			if link.IsInternal {
				if reason, ok := s.checkInternal(outputDir, link.URL); !ok {
					report.Broken = append(report.Broken, BrokenLink{Page: rel, URL: link.URL, Reason: reason})
				}
				continue
			}
			if s.cfg.External {
				externals = append(externals, BrokenLink{Page: rel, URL: link.URL})
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("verify links: %w", err)
	}

	if len(externals) > 0 {
		report.Broken = append(report.Broken, s.checkExternals(ctx, externals)...)
	}

	slog.Debug("Link verification complete",
		"pages", report.PagesChecked,
		"links", report.LinksChecked,
		"broken", len(report.Broken))
	return report, nil
}

// checkInternal resolves a site-relative link against the output tree.
func (s *Service) checkInternal(outputDir, raw string) (string, bool) {
	if strings.HasPrefix(raw, "#") || strings.HasPrefix(raw, "mailto:") || strings.HasPrefix(raw, "tel:") {
		return "", true
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "unparseable URL", false
	}
	path := strings.TrimPrefix(u.Path, "/")
	if path == "" {
		return "", true
	}

	candidates := []string{
		path,
		path + ".html",
		filepath.Join(path, "index.html"),
	}
	for _, c := range candidates {
		if _, err := os.Stat(filepath.Join(outputDir, filepath.FromSlash(c))); err == nil {
			return "", true
		}
	}
	return "target not found in output tree", false
}

// checkExternals probes external links over HTTP with bounded concurrency.
// Each distinct URL is fetched once.
func (s *Service) checkExternals(ctx context.Context, candidates []BrokenLink) []BrokenLink {
	type outcome struct {
		reason string
		bad    bool
	}
	results := make(map[string]*outcome)
	var mu sync.Mutex
	var wg sync.WaitGroup
	sem := make(chan struct{}, s.cfg.MaxConcurrent)

	seen := map[string]struct{}{}
	for _, c := range candidates {
		if _, dup := seen[c.URL]; dup {
			continue
		}
		seen[c.URL] = struct{}{}

		wg.Add(1)
		go func(target string) {
			defer wg.Done()
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				return
			}

			reason, bad := s.probe(ctx, target)
			mu.Lock()
			results[target] = &outcome{reason: reason, bad: bad}
			mu.Unlock()
		}(c.URL)
	}
	wg.Wait()

	var broken []BrokenLink
	for _, c := range candidates {
		if o := results[c.URL]; o != nil && o.bad {
			broken = append(broken, BrokenLink{Page: c.Page, URL: c.URL, Reason: o.reason})
		}
	}
	return broken
}

func (s *Service) probe(ctx context.Context, target string) (string, bool) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "invalid URL", true
	}
	req.Header.Set("User-Agent", "sitectl-linkcheck/1.0")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return err.Error(), true
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode >= 400 {
		return fmt.Sprintf("HTTP %d", resp.StatusCode), true
	}
	return "", false
}
