package codeimport

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrUnknownRepository indicates a directive references a repository name
// absent from the configuration.
var ErrUnknownRepository = errors.New("unknown repository")

// ResolveError describes a directive that could not be satisfied.
type ResolveError struct {
	Directive Directive
	Reason    error
}

func (e *ResolveError) Error() string {
	return fmt.Sprintf("%s: line %d: code-import %q: %v", e.Directive.PagePath, e.Directive.Line, e.Directive.Raw, e.Reason)
}

func (e *ResolveError) Unwrap() error { return e.Reason }

// Resolver checks directives against materialized repository checkouts and
// splices referenced file contents.
type Resolver struct {
	repoRoots map[string]string // repository name -> local checkout path
}

// NewResolver creates a resolver over already-cloned repository roots.
func NewResolver(repoRoots map[string]string) *Resolver {
	return &Resolver{repoRoots: repoRoots}
}

// Verify confirms every directive's path exists in its repository. All
// failures are returned so one run reports every dangling reference.
func (r *Resolver) Verify(directives []Directive) error {
	var problems []error
	for _, d := range directives {
		if _, err := r.statTarget(d); err != nil {
			problems = append(problems, &ResolveError{Directive: d, Reason: err})
		}
	}
	return errors.Join(problems...)
}

// Resolve returns the referenced file contents, reduced to the directive's
// line range when one is declared.
func (r *Resolver) Resolve(d Directive) ([]byte, error) {
	target, err := r.statTarget(d)
	if err != nil {
		return nil, &ResolveError{Directive: d, Reason: err}
	}

	raw, err := os.ReadFile(target)
	if err != nil {
		return nil, &ResolveError{Directive: d, Reason: err}
	}
	if d.StartLine == 0 {
		return raw, nil
	}

	lines := strings.Split(string(raw), "\n")
	if d.StartLine > len(lines) {
		return nil, &ResolveError{Directive: d, Reason: fmt.Errorf("line range %d-%d exceeds file length %d", d.StartLine, d.EndLine, len(lines))}
	}
	end := d.EndLine
	if end > len(lines) {
		end = len(lines)
	}
	out := strings.Join(lines[d.StartLine-1:end], "\n")
	if !strings.HasSuffix(out, "\n") {
		out += "\n"
	}
	return []byte(out), nil
}

func (r *Resolver) statTarget(d Directive) (string, error) {
	root, ok := r.repoRoots[d.Repo]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownRepository, d.Repo)
	}

	target := filepath.Join(root, filepath.FromSlash(d.Path))
	info, err := os.Stat(target)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("file does not exist in repository %s: %s", d.Repo, d.Path)
		}
		return "", err
	}
	if info.IsDir() {
		return "", fmt.Errorf("path is a directory, not a file: %s", d.Path)
	}
	return target, nil
}
