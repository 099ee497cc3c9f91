package lint

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Linter applies rules to content files.
type Linter struct {
	rules []Rule
}

// NewLinter creates a linter with the default rule set. knownRepos enables
// the code-import registry check when non-nil.
func NewLinter(knownRepos map[string]struct{}) *Linter {
	return &Linter{
		rules: []Rule{
			&FrontMatterRule{},
			&FilenameRule{},
			&CodeImportRule{KnownRepos: knownRepos},
		},
	}
}

// WithRules replaces the rule set. Intended for tests and callers composing
// their own policy.
func (l *Linter) WithRules(rules ...Rule) *Linter {
	l.rules = rules
	return l
}

// LintPath lints a file or directory tree.
func (l *Linter) LintPath(path string) (*Result, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	result := &Result{Issues: []Issue{}}
	if !info.IsDir() {
		if err := l.lintFile(path, result); err != nil {
			return nil, err
		}
		result.FilesTotal = 1
		return result, nil
	}

	err = filepath.WalkDir(path, func(p string, entry fs.DirEntry, err error) error {
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
		result.FilesTotal++
		return l.lintFile(p, result)
	})
	if err != nil {
		return nil, fmt.Errorf("lint %s: %w", path, err)
	}
	return result, nil
}

func (l *Linter) lintFile(path string, result *Result) error {
	var raw []byte
	if isMarkdown(path) {
		var err error
		raw, err = os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
	}

	for _, rule := range l.rules {
		if !rule.AppliesTo(path) {
			continue
		}
		result.Issues = append(result.Issues, rule.Check(path, raw)...)
	}
	return nil
}
