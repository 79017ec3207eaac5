// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package extract

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

// defaultMaxCodeTextSize is the default limit applied by truncateCodeText.
// ExtractFile captures no function or class body text, so nothing in this
// package calls truncateCodeText.
const defaultMaxCodeTextSize = 64 * 1024

// TreeSitterParser extracts an unresolved module IR from Python source
// using go-tree-sitter's Python grammar. It is the package's one stateful
// type; create one per goroutine when parsing files concurrently.
type TreeSitterParser struct {
	parser          *sitter.Parser
	logger          *slog.Logger
	maxCodeTextSize int64
	truncatedCount  int64
}

// NewTreeSitterParser creates a parser bound to the Python grammar.
func NewTreeSitterParser(logger *slog.Logger) *TreeSitterParser {
	if logger == nil {
		logger = slog.Default()
	}
	p := sitter.NewParser()
	p.SetLanguage(python.GetLanguage())
	return &TreeSitterParser{
		parser:          p,
		logger:          logger,
		maxCodeTextSize: defaultMaxCodeTextSize,
	}
}

// SetMaxCodeTextSize sets the byte limit used by truncateCodeText. ExtractFile
// captures no body text, so the limit does not change its output.
func (p *TreeSitterParser) SetMaxCodeTextSize(size int64) {
	p.maxCodeTextSize = size
}

// GetTruncatedCount returns how many code-text captures were truncated
// since the parser was created or last reset.
func (p *TreeSitterParser) GetTruncatedCount() int {
	return int(atomic.LoadInt64(&p.truncatedCount))
}

// ResetTruncatedCount zeroes the truncation counter.
func (p *TreeSitterParser) ResetTruncatedCount() {
	atomic.StoreInt64(&p.truncatedCount, 0)
}

func (p *TreeSitterParser) truncateCodeText(text string) string {
	if int64(len(text)) <= p.maxCodeTextSize {
		return text
	}
	atomic.AddInt64(&p.truncatedCount, 1)
	return text[:p.maxCodeTextSize]
}

// parseTree parses content and returns the tree; the caller must Close it.
func (p *TreeSitterParser) parseTree(content []byte) (*sitter.Tree, error) {
	tree, err := p.parser.ParseCtx(context.Background(), nil, content)
	if err != nil {
		return nil, fmt.Errorf("tree-sitter parse: %w", err)
	}
	return tree, nil
}

// countErrors counts ERROR nodes in a subtree, used only for diagnostic
// logging of partially-unparseable files; the extractor never aborts on
// syntax errors, it best-effort extracts what it can.
func countErrors(node *sitter.Node) int {
	if node == nil {
		return 0
	}
	count := 0
	if node.IsError() || node.Type() == "ERROR" {
		count++
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		count += countErrors(node.Child(i))
	}
	return count
}

// findNodeAtPosition returns the smallest node whose start position
// matches (row, col) exactly. No extraction path calls it.
func findNodeAtPosition(node *sitter.Node, row, col uint32) *sitter.Node {
	if node == nil {
		return nil
	}
	start := node.StartPoint()
	if start.Row == row && start.Column == col {
		return node
	}
	var best *sitter.Node
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		cs, ce := child.StartPoint(), child.EndPoint()
		if (cs.Row < row || (cs.Row == row && cs.Column <= col)) &&
			(ce.Row > row || (ce.Row == row && ce.Column >= col)) {
			if found := findNodeAtPosition(child, row, col); found != nil {
				best = found
			}
		}
	}
	return best
}

func nodeText(node *sitter.Node, content []byte) string {
	if node == nil {
		return ""
	}
	return string(content[node.StartByte():node.EndByte()])
}

func lineOf(node *sitter.Node) int {
	return int(node.StartPoint().Row) + 1
}

func endLineOf(node *sitter.Node) int {
	return int(node.EndPoint().Row) + 1
}
