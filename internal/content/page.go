package content

import (
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
	"strings"
)

// Page is one discovered content file.
type Page struct {
	Path         string         // absolute path
	RelativePath string         // path relative to the content directory
	Section      string         // top-level directory, "" for root pages
	Title        string         // from front matter
	Description  string         // from front matter
	Meta         map[string]any // full front matter
	Body         []byte         // markdown body without front matter
	Hash         string         // sha256 of the raw file, for change detection
	IsAsset      bool           // images and other non-markdown files
}

// Slug returns the URL slug for the page within its section.
func (p *Page) Slug() string {
	name := strings.TrimSuffix(filepath.Base(p.RelativePath), filepath.Ext(p.RelativePath))
	return Slugify(name)
}

// OutputPath returns the page's path in the rendered output tree.
func (p *Page) OutputPath() string {
	if p.IsAsset {
		return p.RelativePath
	}
	rel := strings.TrimSuffix(p.RelativePath, filepath.Ext(p.RelativePath))
	return rel + ".html"
}

func hashContent(raw []byte) string {
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}

var assetExtensions = map[string]struct{}{
	".png": {}, ".jpg": {}, ".jpeg": {}, ".gif": {}, ".svg": {}, ".webp": {}, ".ico": {},
}

func isAssetFile(path string) bool {
	_, ok := assetExtensions[strings.ToLower(filepath.Ext(path))]
	return ok
}

func isMarkdownFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".md" || ext == ".markdown"
}
