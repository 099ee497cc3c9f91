package markdown

import (
	"bytes"

	gmast "github.com/yuin/goldmark/ast"
)

// CodeBlock is a fenced code block lifted out of a page body.
type CodeBlock struct {
	Language string
	Info     string // full info string after the opening fence
	Content  []byte
	Line     int // 1-based line of the opening fence in the body
}

// ExtractCodeBlocks returns all fenced code blocks in document order.
func ExtractCodeBlocks(body []byte) []CodeBlock {
	root := ParseBody(body)

	blocks := make([]CodeBlock, 0)
	_ = gmast.Walk(root, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		fence, ok := n.(*gmast.FencedCodeBlock)
		if !ok {
			return gmast.WalkContinue, nil
		}

		block := CodeBlock{
			Language: string(fence.Language(body)),
		}
		if fence.Info != nil {
			block.Info = string(fence.Info.Value(body))
		}

		var content bytes.Buffer
		lines := fence.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			content.Write(seg.Value(body))
		}
		block.Content = content.Bytes()

		if lines.Len() > 0 {
			// The opening fence is the line before the first content line.
			block.Line = lineOfOffset(body, lines.At(0).Start) - 1
		} else if fence.Info != nil {
			block.Line = lineOfOffset(body, fence.Info.Segment.Start)
		}

		blocks = append(blocks, block)
		return gmast.WalkContinue, nil
	})
	return blocks
}

func lineOfOffset(body []byte, offset int) int {
	if offset > len(body) {
		offset = len(body)
	}
	return bytes.Count(body[:offset], []byte("\n")) + 1
}
