// Package site writes the build output: the generated site configuration
// the external framework consumes, plus a rendered HTML preview of the
// content corpus.
package site

import (
	"fmt"
	"html"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/zkcodehub/sitectl/internal/codeimport"
	"github.com/zkcodehub/sitectl/internal/config"
	"github.com/zkcodehub/sitectl/internal/content"
	"github.com/zkcodehub/sitectl/internal/markdown"
)

// Generator produces the site output directory.
type Generator struct {
	cfg       *config.Config
	outputDir string
	resolver  *codeimport.Resolver
}

// NewGenerator creates a generator writing into outputDir. resolver may be
// nil when no repositories are configured; pages with code-import
// directives then fail the render.
func NewGenerator(cfg *config.Config, outputDir string, resolver *codeimport.Resolver) *Generator {
	return &Generator{cfg: cfg, outputDir: outputDir, resolver: resolver}
}

// Generate builds the full output tree from the discovered pages.
func (g *Generator) Generate(pages []content.Page) (*BuildReport, error) {
	report := &BuildReport{
		BuildID:   uuid.NewString(),
		StartedAt: time.Now(),
		SiteURL:   config.SelectSiteURL(),
	}

	if g.cfg.Output.Clean {
		if err := os.RemoveAll(g.outputDir); err != nil {
			return nil, fmt.Errorf("clean output directory: %w", err)
		}
	}
	if err := os.MkdirAll(g.outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	if err := g.writeSiteConfig(); err != nil {
		return nil, err
	}

	for _, page := range pages {
		if page.IsAsset {
			if err := g.copyAsset(page); err != nil {
				return nil, err
			}
			report.Assets++
			continue
		}
		if err := g.renderPage(page); err != nil {
			return nil, err
		}
		report.Pages++
	}

	report.Duration = time.Since(report.StartedAt)
	slog.Info("Site generated",
		"build_id", report.BuildID,
		"pages", report.Pages,
		"assets", report.Assets,
		"output", g.outputDir,
		"duration", report.Duration)
	return report, nil
}

func (g *Generator) renderPage(page content.Page) error {
	body := page.Body
	if g.resolver != nil {
		spliced, err := codeimport.Splice(page.RelativePath, body, g.resolver)
		if err != nil {
			return err
		}
		body = spliced
	}

	html, err := markdown.Render(body)
	if err != nil {
		return fmt.Errorf("render %s: %w", page.RelativePath, err)
	}

	outPath := filepath.Join(g.outputDir, page.OutputPath())
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return err
	}

	doc := wrapHTML(page.Title, page.Description, html)
	if err := os.WriteFile(outPath, doc, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", outPath, err)
	}
	return nil
}

func (g *Generator) copyAsset(page content.Page) error {
	outPath := filepath.Join(g.outputDir, page.OutputPath())
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return err
	}

	src, err := os.Open(page.Path)
	if err != nil {
		return fmt.Errorf("open asset %s: %w", page.Path, err)
	}
	defer src.Close()

	dst, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create asset %s: %w", outPath, err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("copy asset %s: %w", page.RelativePath, err)
	}
	return nil
}

// wrapHTML puts the rendered body into a minimal document carrying the
// front-matter contract fields, enough for link verification and local
// preview.
func wrapHTML(title, description string, body []byte) []byte {
	head := fmt.Sprintf("<!DOCTYPE html>\n<html>\n<head>\n<title>%s</title>\n<meta name=\"description\" content=\"%s\">\n</head>\n<body>\n",
		html.EscapeString(title), html.EscapeString(description))
	out := make([]byte, 0, len(head)+len(body)+len("</body>\n</html>\n"))
	out = append(out, head...)
	out = append(out, body...)
	out = append(out, "</body>\n</html>\n"...)
	return out
}
