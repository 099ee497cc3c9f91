package lint

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
)

// Formatter renders lint results for output.
type Formatter interface {
	Format(w io.Writer, result *Result, root string) error
}

// NewFormatter returns the formatter for a configured format name.
func NewFormatter(format string) Formatter {
	if format == "json" {
		return &JSONFormatter{}
	}
	return &TextFormatter{}
}

// TextFormatter renders human-readable text grouped by file.
type TextFormatter struct{}

func (f *TextFormatter) Format(w io.Writer, result *Result, root string) error {
	if _, err := fmt.Fprintf(w, "Linting content in: %s\n%s\n", root, strings.Repeat("-", 60)); err != nil {
		return err
	}

	byFile := make(map[string][]Issue)
	var files []string
	for _, issue := range result.Issues {
		if _, seen := byFile[issue.FilePath]; !seen {
			files = append(files, issue.FilePath)
		}
		byFile[issue.FilePath] = append(byFile[issue.FilePath], issue)
	}
	sort.Strings(files)

	for _, file := range files {
		for _, issue := range byFile[file] {
			loc := file
			if issue.Line > 0 {
				loc = fmt.Sprintf("%s:%d", file, issue.Line)
			}
			if _, err := fmt.Fprintf(w, "%-7s %s [%s] %s\n", issue.Severity, loc, issue.Rule, issue.Message); err != nil {
				return err
			}
			if issue.Fix != "" {
				if _, err := fmt.Fprintf(w, "        fix: %s\n", issue.Fix); err != nil {
					return err
				}
			}
		}
	}

	infos, warnings, errs := result.Counts()
	_, err := fmt.Fprintf(w, "%s\n%d files, %d errors, %d warnings, %d info\n",
		strings.Repeat("-", 60), result.FilesTotal, errs, warnings, infos)
	return err
}

// JSONFormatter renders the result as indented JSON.
type JSONFormatter struct{}

func (f *JSONFormatter) Format(w io.Writer, result *Result, _ string) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
