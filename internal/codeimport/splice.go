package codeimport

import (
	"bytes"
	"fmt"
)

// Splice replaces every code-import placeholder in a page body with the
// referenced file contents. The body's directives must already have passed
// Scan; unknown or dangling references surface as ResolveErrors.
func Splice(pagePath string, body []byte, resolver *Resolver) ([]byte, error) {
	directives, err := Scan(pagePath, body)
	if err != nil {
		return nil, err
	}
	if len(directives) == 0 {
		return body, nil
	}

	out := body
	for _, d := range directives {
		content, err := resolver.Resolve(d)
		if err != nil {
			return nil, err
		}
		token := []byte(fmt.Sprintf(`:code-import{filePath=%q}`, d.Raw))
		// The token occupies its own line inside the fence; drop the line
		// break it carried since the spliced content ends with one.
		out = bytes.Replace(out, append(token, '\n'), content, 1)
		out = bytes.Replace(out, token, bytes.TrimRight(content, "\n"), 1)
	}
	return out, nil
}
