package parser

import (
	"strings"
	"testing"

	"github.com/riverfjs/streamdown-go/internal/types"
)

func TestEmptyInput(t *testing.T) {
	p := New()
	blocks := p.Parse("")
	if len(blocks) != 0 {
		t.Errorf("expected empty block list, got %d blocks", len(blocks))
	}
}

func TestBasicBlockTypes(t *testing.T) {
	markdown := "# Title\n\nSome paragraph text.\n\n- item one\n- item two\n\n> quoted\n\n```go\npackage main\n```\n\n---\n"

	p := New()
	blocks := p.Parse(markdown)

	want := []types.BlockType{
		types.BlockHeading,
		types.BlockParagraph,
		types.BlockList,
		types.BlockQuote,
		types.BlockCodeBlock,
		types.BlockThematicBreak,
	}
	if len(blocks) != len(want) {
		t.Fatalf("expected %d blocks, got %d: %+v", len(want), len(blocks), blocks)
	}
	for i, b := range blocks {
		if b.Type != want[i] {
			t.Errorf("block %d: expected type %s, got %s", i, want[i], b.Type)
		}
		if b.Position != i {
			t.Errorf("block %d: expected position %d, got %d", i, i, b.Position)
		}
		if !b.IsComplete {
			t.Errorf("block %d (%s): expected complete", i, b.Type)
		}
		if b.ID == "" {
			t.Errorf("block %d: missing id", i)
		}
	}
}

func TestCodeBlockExtraction(t *testing.T) {
	markdown := "```go\npackage main\n\nfunc main() {}\n```\n"

	p := New()
	blocks := p.Parse(markdown)
	if len(blocks) != 1 {
		t.Fatalf("expected 1 block, got %d", len(blocks))
	}
	b := blocks[0]
	if b.Type != types.BlockCodeBlock {
		t.Fatalf("expected code_block, got %s", b.Type)
	}
	if b.Language != "go" {
		t.Errorf("expected language go, got %q", b.Language)
	}
	if b.RawContent != "package main\n\nfunc main() {}" {
		t.Errorf("unexpected raw content: %q", b.RawContent)
	}
	if !strings.HasPrefix(b.Content, "```go") {
		t.Errorf("content should include the opening fence: %q", b.Content)
	}
	if !b.IsComplete {
		t.Error("closed fence should be complete")
	}
}

func TestUnterminatedFenceStaysIncomplete(t *testing.T) {
	p := New()
	blocks := p.Parse("```ts\nconst a = 1;")
	if len(blocks) != 1 {
		t.Fatalf("expected 1 block, got %d", len(blocks))
	}
	b := blocks[0]
	if b.Type != types.BlockCodeBlock {
		t.Fatalf("expected code_block, got %s", b.Type)
	}
	if b.IsComplete {
		t.Error("unterminated fence must stay incomplete")
	}
	if b.Language != "typescript" {
		t.Errorf("expected alias ts -> typescript, got %q", b.Language)
	}
	if b.RawContent != "const a = 1;" {
		t.Errorf("unexpected raw content: %q", b.RawContent)
	}
}

// TestStableIDsAcrossGrowingStream 测试流式增长时块 ID 保持稳定
func TestStableIDsAcrossGrowingStream(t *testing.T) {
	p := New()

	first := p.Parse("# Title\n\nSome text")
	if len(first) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(first))
	}
	if first[1].IsComplete {
		t.Error("trailing paragraph without blank line should be incomplete")
	}

	second := p.Parse("# Title\n\nSome text that keeps growing")
	if len(second) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(second))
	}
	if second[0].ID != first[0].ID {
		t.Errorf("heading id changed: %s -> %s", first[0].ID, second[0].ID)
	}
	if second[1].ID != first[1].ID {
		t.Errorf("growing paragraph id changed: %s -> %s", first[1].ID, second[1].ID)
	}

	// A terminated paragraph plus a new block: old ids survive, the new
	// block gets a fresh id.
	third := p.Parse("# Title\n\nSome text that keeps growing\n\n```go\nx := 1\n```\n")
	if len(third) != 3 {
		t.Fatalf("expected 3 blocks, got %d", len(third))
	}
	if third[0].ID != first[0].ID || third[1].ID != first[1].ID {
		t.Error("leading block ids must be stable")
	}
	if third[2].ID == third[1].ID || third[2].ID == third[0].ID {
		t.Error("new block must get a fresh id")
	}
}

func TestChangedBlockGetsFreshID(t *testing.T) {
	p := New()
	first := p.Parse("Some text\n\n")
	second := p.Parse("Different text\n\n")
	if len(first) != 1 || len(second) != 1 {
		t.Fatalf("expected single blocks, got %d and %d", len(first), len(second))
	}
	if second[0].ID == first[0].ID {
		t.Error("rewritten content is a different logical block")
	}
}

// TestTwoChunkCodeFenceKeepsID 测试代码围栏跨分片保持同一 ID
func TestTwoChunkCodeFenceKeepsID(t *testing.T) {
	// chunk1 打开围栏，chunk2 补上第二行并闭合
	p := New()

	chunk1 := "```ts\nconst a=1;"
	blocks := p.Parse(chunk1)
	if len(blocks) != 1 {
		t.Fatalf("chunk1: expected 1 block, got %d", len(blocks))
	}
	id := blocks[0].ID
	if blocks[0].IsComplete {
		t.Error("chunk1: fence is still open")
	}

	chunk2 := "```ts\nconst a=1;\nconst b=2;\n```"
	blocks = p.Parse(chunk2)
	if len(blocks) != 1 {
		t.Fatalf("chunk2: expected 1 block, got %d", len(blocks))
	}
	if blocks[0].ID != id {
		t.Errorf("code block id changed across chunks: %s -> %s", id, blocks[0].ID)
	}
	if !blocks[0].IsComplete {
		t.Error("chunk2: closed fence should be complete")
	}
	if blocks[0].RawContent != "const a=1;\nconst b=2;" {
		t.Errorf("unexpected raw content: %q", blocks[0].RawContent)
	}
}

func TestLanguageNormalization(t *testing.T) {
	cases := map[string]string{
		"Go":         "go",
		"golang":     "go",
		"JS":         "javascript",
		"py":         "python",
		"sh":         "bash",
		"yml":        "yaml",
		"":           "",
		"rust":       "rust",
		"go {hl=3}":  "go",
		"dockerfile": "docker",
	}
	for in, want := range cases {
		if got := NormalizeLanguage(in); got != want {
			t.Errorf("NormalizeLanguage(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestOnlyTrailingBlockIncomplete(t *testing.T) {
	p := New()
	blocks := p.Parse("First paragraph.\n\nSecond paragraph still typing")
	if len(blocks) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(blocks))
	}
	if !blocks[0].IsComplete {
		t.Error("terminated leading paragraph must be complete")
	}
	if blocks[1].IsComplete {
		t.Error("trailing paragraph must be incomplete")
	}
}

func TestResetDiscardsIdentity(t *testing.T) {
	p := New()
	first := p.Parse("Some text\n\n")
	p.Reset()
	second := p.Parse("Some text\n\n")
	if len(first) != 1 || len(second) != 1 {
		t.Fatalf("expected single blocks")
	}
	if first[0].ID == second[0].ID {
		t.Error("reset must discard prior identity")
	}
}
