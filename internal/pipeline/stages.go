package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/zkcodehub/sitectl/internal/codeimport"
	"github.com/zkcodehub/sitectl/internal/content"
	"github.com/zkcodehub/sitectl/internal/gitrepo"
	"github.com/zkcodehub/sitectl/internal/linkverify"
	"github.com/zkcodehub/sitectl/internal/metrics"
	"github.com/zkcodehub/sitectl/internal/site"
)

// DefaultStages assembles the standard build: clone external repositories,
// discover content, verify code imports, render, verify links.
func DefaultStages(recorder metrics.Recorder) []Stage {
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	return []Stage{
		&CloneStage{recorder: recorder},
		&DiscoverStage{recorder: recorder},
		&ImportsStage{},
		&RenderStage{},
		&VerifyStage{},
	}
}

// CloneStage materializes the configured external repositories.
type CloneStage struct {
	recorder metrics.Recorder
}

func (s *CloneStage) Name() StageName           { return StageClone }
func (s *CloneStage) Dependencies() []StageName { return nil }

func (s *CloneStage) Execute(ctx context.Context, bc *BuildContext) error {
	bc.RepoPaths = map[string]string{}
	if len(bc.Config.Repositories) == 0 {
		bc.Resolver = codeimport.NewResolver(bc.RepoPaths)
		return nil
	}

	client := gitrepo.NewClient(bc.WorkspaceDir)
	var observe func(name string, elapsed time.Duration, err error)
	if s.recorder != nil {
		observe = func(name string, elapsed time.Duration, err error) {
			s.recorder.ObserveCloneDuration(name, elapsed, err == nil)
		}
	}
	paths, err := client.MaterializeAll(ctx, bc.Config.Repositories, bc.Incremental, observe)
	if err != nil {
		return err
	}
	bc.RepoPaths = paths
	bc.Resolver = codeimport.NewResolver(bc.RepoPaths)
	return nil
}

// DiscoverStage scans the content corpus.
type DiscoverStage struct {
	recorder metrics.Recorder
}

func (s *DiscoverStage) Name() StageName           { return StageDiscover }
func (s *DiscoverStage) Dependencies() []StageName { return nil }

func (s *DiscoverStage) Execute(_ context.Context, bc *BuildContext) error {
	discovery := content.NewDiscovery(bc.Config.Content.Dir, bc.Config.Content.Ignore)
	pages, err := discovery.Discover()
	if err != nil {
		return err
	}
	bc.Pages = pages
	if s.recorder != nil {
		s.recorder.SetPagesDiscovered(len(pages))
	}
	return nil
}

// ImportsStage scans every page for code-import directives and verifies the
// referenced paths exist in their repositories.
type ImportsStage struct{}

func (s *ImportsStage) Name() StageName           { return StageImports }
func (s *ImportsStage) Dependencies() []StageName { return []StageName{StageClone, StageDiscover} }

func (s *ImportsStage) Execute(_ context.Context, bc *BuildContext) error {
	bc.Directives = nil
	for _, page := range bc.Pages {
		if page.IsAsset {
			continue
		}
		directives, err := codeimport.Scan(page.RelativePath, page.Body)
		if err != nil {
			return err
		}
		bc.Directives = append(bc.Directives, directives...)
	}
	if len(bc.Directives) == 0 {
		return nil
	}
	if bc.Resolver == nil {
		return fmt.Errorf("pages declare code-import directives but no repositories are configured")
	}
	return bc.Resolver.Verify(bc.Directives)
}

// RenderStage generates the output tree.
type RenderStage struct{}

func (s *RenderStage) Name() StageName           { return StageRender }
func (s *RenderStage) Dependencies() []StageName { return []StageName{StageImports} }

func (s *RenderStage) Execute(_ context.Context, bc *BuildContext) error {
	generator := site.NewGenerator(bc.Config, bc.OutputDir, bc.Resolver)
	report, err := generator.Generate(bc.Pages)
	if err != nil {
		return err
	}
	report.BuildID = bc.BuildID
	bc.Report = report
	return nil
}

// VerifyStage checks links in the rendered output.
type VerifyStage struct{}

func (s *VerifyStage) Name() StageName           { return StageVerify }
func (s *VerifyStage) Dependencies() []StageName { return []StageName{StageRender} }

func (s *VerifyStage) Execute(ctx context.Context, bc *BuildContext) error {
	svc := linkverify.NewService(bc.Config.LinkVerify)
	report, err := svc.Verify(ctx, bc.OutputDir, bc.Report.SiteURL)
	if err != nil {
		return err
	}
	bc.LinkReport = report
	if !report.OK() {
		first := report.Broken[0]
		return fmt.Errorf("%d broken link(s); first: %s -> %s (%s)", len(report.Broken), first.Page, first.URL, first.Reason)
	}
	return nil
}
