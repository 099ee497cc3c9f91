package content

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/zkcodehub/sitectl/internal/frontmatter"
)

// Discovery scans the content directory for pages and assets.
type Discovery struct {
	contentDir string
	ignore     map[string]struct{}
}

// NewDiscovery creates a discovery over the given content directory.
// Entries in ignore are matched by base filename, case-insensitively.
func NewDiscovery(contentDir string, ignore []string) *Discovery {
	ignoreSet := make(map[string]struct{}, len(ignore))
	for _, name := range ignore {
		ignoreSet[strings.ToLower(name)] = struct{}{}
	}
	return &Discovery{contentDir: contentDir, ignore: ignoreSet}
}

// Discover walks the content tree and returns every page and asset. A page
// with malformed front matter or a missing title/description is a build
// error; all such errors are collected so one run reports every bad file.
func (d *Discovery) Discover() ([]Page, error) {
	info, err := os.Stat(d.contentDir)
	if err != nil {
		return nil, fmt.Errorf("content directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("content path is not a directory: %s", d.contentDir)
	}

	var pages []Page
	var problems []error

	walkErr := filepath.WalkDir(d.contentDir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		name := entry.Name()
		if strings.HasPrefix(name, ".") && name != "." {
			if entry.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if entry.IsDir() {
			return nil
		}
		if _, skip := d.ignore[strings.ToLower(name)]; skip {
			return nil
		}

		switch {
		case isMarkdownFile(path):
			page, err := d.loadPage(path)
			if err != nil {
				problems = append(problems, err)
				return nil
			}
			pages = append(pages, *page)
		case isAssetFile(path):
			rel, err := filepath.Rel(d.contentDir, path)
			if err != nil {
				return err
			}
			pages = append(pages, Page{
				Path:         path,
				RelativePath: rel,
				Section:      sectionOf(rel),
				IsAsset:      true,
			})
		}
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("scan content directory: %w", walkErr)
	}
	if len(problems) > 0 {
		return nil, errors.Join(problems...)
	}

	slog.Debug("Content discovery complete", "dir", d.contentDir, "pages", len(pages))
	return pages, nil
}

// BySection groups pages by their top-level section directory.
func BySection(pages []Page) map[string][]Page {
	sections := make(map[string][]Page)
	for _, page := range pages {
		sections[page.Section] = append(sections[page.Section], page)
	}
	return sections
}

func (d *Discovery) loadPage(path string) (*Page, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	rel, err := filepath.Rel(d.contentDir, path)
	if err != nil {
		return nil, err
	}

	doc, err := frontmatter.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", rel, err)
	}

	page := &Page{
		Path:         path,
		RelativePath: rel,
		Section:      sectionOf(rel),
		Title:        doc.Title(),
		Description:  doc.Description(),
		Meta:         doc.Meta,
		Body:         doc.Body,
		Hash:         hashContent(raw),
	}
	if page.Title == "" {
		return nil, fmt.Errorf("%s: front matter is missing a title", rel)
	}
	if page.Description == "" {
		return nil, fmt.Errorf("%s: front matter is missing a description", rel)
	}
	return page, nil
}

func sectionOf(rel string) string {
	rel = filepath.ToSlash(rel)
	if idx := strings.Index(rel, "/"); idx > 0 {
		return rel[:idx]
	}
	return ""
}
