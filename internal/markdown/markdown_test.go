package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractLinks_CollectsInlineImageAutoAndReference(t *testing.T) {
	body := []byte(`# Page

[inline](https://example.com/a) and <https://example.com/b>

![diagram](/images/flow.png)

[ref]: /other-page
`)

	links := ExtractLinks(body)

	var dests []string
	for _, l := range links {
		dests = append(dests, l.Destination)
	}
	assert.Contains(t, dests, "https://example.com/a")
	assert.Contains(t, dests, "https://example.com/b")
	assert.Contains(t, dests, "/images/flow.png")
	assert.Contains(t, dests, "/other-page")
}

func TestExtractLinks_EmptyBody_NoLinks(t *testing.T) {
	assert.Empty(t, ExtractLinks([]byte("plain text, no links\n")))
}

func TestExtractCodeBlocks_ReturnsLanguageInfoAndContent(t *testing.T) {
	body := []byte("intro\n\n```solidity [MyPaymaster.sol]\ncontract MyPaymaster {}\n```\n")

	blocks := ExtractCodeBlocks(body)
	require.Len(t, blocks, 1)
	assert.Equal(t, "solidity", blocks[0].Language)
	assert.Equal(t, "solidity [MyPaymaster.sol]", blocks[0].Info)
	assert.Equal(t, "contract MyPaymaster {}\n", string(blocks[0].Content))
	assert.Equal(t, 3, blocks[0].Line)
}

func TestExtractCodeBlocks_MultipleBlocksInDocumentOrder(t *testing.T) {
	body := []byte("```bash\nnpm install\n```\n\ntext\n\n```ts\nconsole.log(1)\n```\n")

	blocks := ExtractCodeBlocks(body)
	require.Len(t, blocks, 2)
	assert.Equal(t, "bash", blocks[0].Language)
	assert.Equal(t, "ts", blocks[1].Language)
	assert.Less(t, blocks[0].Line, blocks[1].Line)
}

func TestRender_ProducesHTML(t *testing.T) {
	out, err := Render([]byte("# Heading\n\nSome *text*.\n"))
	require.NoError(t, err)
	assert.Contains(t, string(out), "<h1")
	assert.Contains(t, string(out), "<em>text</em>")
}
