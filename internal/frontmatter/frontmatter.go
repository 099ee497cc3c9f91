package frontmatter

import (
	"bytes"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// ErrMissingClosingDelimiter indicates the document opened a front-matter
// block but never closed it.
var ErrMissingClosingDelimiter = errors.New("front matter opening delimiter found but closing delimiter is missing")

// Style captures the newline shape of a document so rewrites stay stable.
type Style struct {
	Newline            string
	HasTrailingNewline bool
}

// Document is a markdown file split into front matter and body.
type Document struct {
	Meta  map[string]any
	Body  []byte
	Had   bool
	Style Style
}

// Split separates `---` delimited YAML front matter from the markdown body.
// If the document does not start with a delimiter, had is false and body is
// the full input.
func Split(content []byte) (meta []byte, body []byte, had bool, style Style, err error) {
	style = detectStyle(content)

	nl := style.Newline
	open := []byte("---" + nl)
	if !bytes.HasPrefix(content, open) {
		return nil, content, false, style, nil
	}

	metaStart := len(open)
	closeLine := []byte("---" + nl)
	if bytes.HasPrefix(content[metaStart:], closeLine) {
		bodyStart := metaStart + len(closeLine)
		return []byte{}, content[bodyStart:], true, style, nil
	}

	closeSeq := []byte(nl + "---" + nl)
	idx := bytes.Index(content[metaStart:], closeSeq)
	if idx < 0 {
		return nil, nil, false, style, ErrMissingClosingDelimiter
	}

	metaEnd := metaStart + idx + len(nl)
	bodyStart := metaStart + idx + len(closeSeq)
	return content[metaStart:metaEnd], content[bodyStart:], true, style, nil
}

// Parse splits a document and decodes its front matter into a map.
func Parse(content []byte) (*Document, error) {
	raw, body, had, style, err := Split(content)
	if err != nil {
		return nil, err
	}

	doc := &Document{Body: body, Had: had, Style: style, Meta: map[string]any{}}
	if !had || len(raw) == 0 {
		return doc, nil
	}

	if err := yaml.Unmarshal(raw, &doc.Meta); err != nil {
		return nil, fmt.Errorf("decode front matter: %w", err)
	}
	if doc.Meta == nil {
		doc.Meta = map[string]any{}
	}
	return doc, nil
}

// Join reassembles a document from raw front matter and body.
func Join(meta []byte, body []byte, had bool, style Style) []byte {
	if !had {
		return body
	}

	nl := style.Newline
	if nl == "" {
		nl = "\n"
	}

	open := []byte("---" + nl)
	closing := []byte("---" + nl)

	out := make([]byte, 0, len(open)+len(meta)+len(closing)+len(body))
	out = append(out, open...)
	out = append(out, meta...)
	out = append(out, closing...)
	out = append(out, body...)
	return out
}

// String returns the string value stored under key, or "" when absent or of
// a different type.
func (d *Document) String(key string) string {
	if d == nil || d.Meta == nil {
		return ""
	}
	v, ok := d.Meta[key]
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

// Title returns the page title declared in front matter.
func (d *Document) Title() string { return d.String("title") }

// Description returns the page description declared in front matter.
func (d *Document) Description() string { return d.String("description") }

func detectStyle(content []byte) Style {
	newline := "\n"
	for i := 0; i+1 < len(content); i++ {
		if content[i] == '\r' && content[i+1] == '\n' {
			newline = "\r\n"
			break
		}
		if content[i] == '\n' {
			newline = "\n"
			break
		}
	}

	hasTrailingNewline := len(content) > 0 && content[len(content)-1] == '\n'

	return Style{
		Newline:            newline,
		HasTrailingNewline: hasTrailingNewline,
	}
}
