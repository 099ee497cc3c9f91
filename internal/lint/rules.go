package lint

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/zkcodehub/sitectl/internal/codeimport"
	"github.com/zkcodehub/sitectl/internal/frontmatter"
)

// Rule checks one file and reports issues. raw is nil for files the linter
// did not read (assets).
type Rule interface {
	Name() string
	AppliesTo(path string) bool
	Check(path string, raw []byte) []Issue
}

// FrontMatterRule enforces the front-matter contract: well-formed YAML with
// non-empty title and description.
type FrontMatterRule struct{}

func (r *FrontMatterRule) Name() string { return "frontmatter" }

func (r *FrontMatterRule) AppliesTo(path string) bool { return isMarkdown(path) }

func (r *FrontMatterRule) Check(path string, raw []byte) []Issue {
	doc, err := frontmatter.Parse(raw)
	if err != nil {
		return []Issue{{
			FilePath: path,
			Severity: SeverityError,
			Rule:     r.Name(),
			Message:  fmt.Sprintf("malformed front matter: %v", err),
			Fix:      "Open the file and repair the `---` delimited YAML block",
		}}
	}

	var issues []Issue
	if !doc.Had {
		issues = append(issues, Issue{
			FilePath: path,
			Severity: SeverityError,
			Rule:     r.Name(),
			Message:  "file has no front matter",
			Fix:      "Add a `---` delimited block declaring title and description",
		})
		return issues
	}
	if doc.Title() == "" {
		issues = append(issues, Issue{
			FilePath: path,
			Severity: SeverityError,
			Rule:     r.Name(),
			Message:  "front matter is missing a title",
			Fix:      "Add `title:` to the front matter",
		})
	}
	if doc.Description() == "" {
		issues = append(issues, Issue{
			FilePath: path,
			Severity: SeverityError,
			Rule:     r.Name(),
			Message:  "front matter is missing a description",
			Fix:      "Add `description:` to the front matter",
		})
	}
	return issues
}

// FilenameRule enforces lowercase filenames without spaces so generated
// URLs stay predictable.
type FilenameRule struct{}

func (r *FilenameRule) Name() string { return "filename" }

func (r *FilenameRule) AppliesTo(string) bool { return true }

func (r *FilenameRule) Check(path string, _ []byte) []Issue {
	name := filepath.Base(path)
	var issues []Issue

	if strings.ContainsAny(name, " \t") {
		issues = append(issues, Issue{
			FilePath: path,
			Severity: SeverityError,
			Rule:     r.Name(),
			Message:  "filename contains whitespace",
			Fix:      fmt.Sprintf("Rename to %q", strings.ReplaceAll(name, " ", "-")),
		})
	}
	for _, ch := range name {
		if unicode.IsUpper(ch) {
			issues = append(issues, Issue{
				FilePath: path,
				Severity: SeverityWarning,
				Rule:     r.Name(),
				Message:  "filename contains uppercase letters",
				Fix:      fmt.Sprintf("Rename to %q", strings.ToLower(name)),
			})
			break
		}
	}
	return issues
}

// CodeImportRule validates code-import directive syntax and, when a
// repository registry is known, that directives reference configured
// repositories.
type CodeImportRule struct {
	KnownRepos map[string]struct{} // nil disables the registry check
}

func (r *CodeImportRule) Name() string { return "code-import" }

func (r *CodeImportRule) AppliesTo(path string) bool { return isMarkdown(path) }

func (r *CodeImportRule) Check(path string, raw []byte) []Issue {
	doc, err := frontmatter.Parse(raw)
	if err != nil {
		return nil // the front-matter rule reports this
	}

	directives, err := codeimport.Scan(path, doc.Body)
	if err != nil {
		return []Issue{{
			FilePath: path,
			Severity: SeverityError,
			Rule:     r.Name(),
			Message:  err.Error(),
			Fix:      "Fix the code-import directive syntax",
		}}
	}

	if r.KnownRepos == nil {
		return nil
	}
	var issues []Issue
	for _, d := range directives {
		if _, ok := r.KnownRepos[d.Repo]; !ok {
			issues = append(issues, Issue{
				FilePath: path,
				Severity: SeverityError,
				Rule:     r.Name(),
				Message:  fmt.Sprintf("code-import references unconfigured repository %q", d.Repo),
				Fix:      "Add the repository to site.yaml or fix the directive prefix",
				Line:     d.Line,
			})
		}
	}
	return issues
}

func isMarkdown(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".md" || ext == ".markdown"
}
