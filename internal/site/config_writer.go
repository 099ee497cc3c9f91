package site

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/zkcodehub/sitectl/internal/config"
)

// SiteConfigFileName is the generated configuration file the external
// framework reads from the output root.
const SiteConfigFileName = "site.config.yaml"

func (g *Generator) writeSiteConfig() error {
	sc := config.BuildSiteConfig(g.cfg)

	data, err := yaml.Marshal(&sc)
	if err != nil {
		return fmt.Errorf("marshal site config: %w", err)
	}

	path := filepath.Join(g.outputDir, SiteConfigFileName)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write site config: %w", err)
	}
	return nil
}
