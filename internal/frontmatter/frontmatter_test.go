package frontmatter

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSplit_NoFrontMatter_ReturnsBodyOnly(t *testing.T) {
	input := []byte("# Title\n\nHello\n")

	meta, body, had, _, err := Split(input)
	require.NoError(t, err)
	require.False(t, had)
	require.Empty(t, meta)
	require.Equal(t, input, body)
}

func TestSplit_YAMLFrontMatter_SplitsMetaAndBody(t *testing.T) {
	input := []byte("---\ntitle: Paymaster tutorial\n---\n# Intro\n")

	meta, body, had, _, err := Split(input)
	require.NoError(t, err)
	require.True(t, had)
	require.Equal(t, []byte("title: Paymaster tutorial\n"), meta)
	require.Equal(t, []byte("# Intro\n"), body)
}

func TestSplit_MissingClosingDelimiter_ReturnsError(t *testing.T) {
	input := []byte("---\ntitle: Broken\n# Intro\n")

	_, _, had, _, err := Split(input)
	require.Error(t, err)
	require.False(t, had)
	require.True(t, errors.Is(err, ErrMissingClosingDelimiter))
}

func TestSplit_CRLF_SplitsMetaAndBody(t *testing.T) {
	input := []byte("---\r\ntitle: Windows\r\n---\r\n# Intro\r\n")

	meta, body, had, style, err := Split(input)
	require.NoError(t, err)
	require.True(t, had)
	require.Equal(t, "\r\n", style.Newline)
	require.Equal(t, []byte("title: Windows\r\n"), meta)
	require.Equal(t, []byte("# Intro\r\n"), body)
}

func TestSplit_EmptyFrontMatterBlock_SplitsAsHadWithEmptyMeta(t *testing.T) {
	input := []byte("---\n---\n# Intro\n")

	meta, body, had, _, err := Split(input)
	require.NoError(t, err)
	require.True(t, had)
	require.Empty(t, meta)
	require.Equal(t, []byte("# Intro\n"), body)
}

func TestParse_DecodesTitleAndDescription(t *testing.T) {
	input := []byte("---\ntitle: Build a paymaster\ndescription: Sponsor gas for your users.\n---\nBody text\n")

	doc, err := Parse(input)
	require.NoError(t, err)
	require.True(t, doc.Had)
	require.Equal(t, "Build a paymaster", doc.Title())
	require.Equal(t, "Sponsor gas for your users.", doc.Description())
	require.Equal(t, []byte("Body text\n"), doc.Body)
}

func TestParse_NoFrontMatter_EmptyMeta(t *testing.T) {
	doc, err := Parse([]byte("plain body\n"))
	require.NoError(t, err)
	require.False(t, doc.Had)
	require.Empty(t, doc.Title())
	require.Empty(t, doc.Description())
}

func TestParse_InvalidYAML_ReturnsError(t *testing.T) {
	_, err := Parse([]byte("---\ntitle: [unclosed\n---\nbody\n"))
	require.Error(t, err)
}

func TestJoin_RoundTripsDocument(t *testing.T) {
	meta := []byte("title: X\n")
	body := []byte("# X\n")

	out := Join(meta, body, true, Style{Newline: "\n"})
	require.Equal(t, []byte("---\ntitle: X\n---\n# X\n"), out)

	out = Join(nil, body, false, Style{})
	require.Equal(t, body, out)
}
