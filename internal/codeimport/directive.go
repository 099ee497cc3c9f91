// Package codeimport handles the build-time placeholder that splices an
// external source file into a fenced code block. The directive looks like
//
//	```solidity
//	:code-import{filePath="contracts/paymasters/GeneralPaymaster.sol"}
//	```
//
// where the first path element names a configured external repository and an
// optional ":<start>-<end>" suffix selects a line range.
package codeimport

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/zkcodehub/sitectl/internal/markdown"
)

// Directive is one parsed code-import placeholder.
type Directive struct {
	PagePath  string // relative path of the page that declares it
	Line      int    // 1-based line within the page body
	Repo      string // first path element, keys the repository registry
	Path      string // path within the repository
	StartLine int    // optional line range, 0 when absent
	EndLine   int
	Raw       string // original filePath attribute value
}

var (
	directiveRe = regexp.MustCompile(`:code-import\{filePath="([^"]*)"\}`)
	rangeRe     = regexp.MustCompile(`^(.*):(\d+)-(\d+)$`)
)

// Scan extracts all code-import directives from a page body. Directives are
// only recognized inside fenced code blocks; a placeholder in running text
// is reported as an error because the framework would render it verbatim.
func Scan(pagePath string, body []byte) ([]Directive, error) {
	var directives []Directive

	for _, block := range markdown.ExtractCodeBlocks(body) {
		for i, line := range strings.Split(string(block.Content), "\n") {
			m := directiveRe.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			d, err := parseDirective(m[1])
			if err != nil {
				return nil, fmt.Errorf("%s: line %d: %w", pagePath, block.Line+1+i, err)
			}
			d.PagePath = pagePath
			d.Line = block.Line + 1 + i
			directives = append(directives, d)
		}
	}

	if loose := countOutsideFences(body, len(directives)); loose > 0 {
		return nil, fmt.Errorf("%s: %d code-import directive(s) outside a fenced code block", pagePath, loose)
	}
	return directives, nil
}

func parseDirective(filePath string) (Directive, error) {
	if filePath == "" {
		return Directive{}, fmt.Errorf("code-import has an empty filePath")
	}

	d := Directive{Raw: filePath}
	if m := rangeRe.FindStringSubmatch(filePath); m != nil {
		start, _ := strconv.Atoi(m[2])
		end, _ := strconv.Atoi(m[3])
		if start < 1 || end < start {
			return Directive{}, fmt.Errorf("code-import %q has an invalid line range", filePath)
		}
		filePath = m[1]
		d.StartLine = start
		d.EndLine = end
	}

	repo, rest, found := strings.Cut(filePath, "/")
	if !found || repo == "" || rest == "" {
		return Directive{}, fmt.Errorf("code-import %q must be <repository>/<path>", d.Raw)
	}
	for _, segment := range strings.Split(filePath, "/") {
		if segment == ".." {
			return Directive{}, fmt.Errorf("code-import %q must not traverse outside the repository", d.Raw)
		}
	}
	d.Repo = repo
	d.Path = rest
	return d, nil
}

// countOutsideFences returns how many directive tokens appear in the body
// beyond those found inside fenced blocks.
func countOutsideFences(body []byte, inFences int) int {
	total := len(directiveRe.FindAll(body, -1))
	if total > inFences {
		return total - inFences
	}
	return 0
}
