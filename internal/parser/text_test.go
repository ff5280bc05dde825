package parser

import (
	"context"
	"strings"
	"testing"
)

func TestTextParser_BasicParagraphSplitting(t *testing.T) {
	input := "First paragraph line one.\nFirst paragraph line two.\n\nSecond paragraph.\n\nThird paragraph."
	p := &TextParser{}
	ext, err := p.Parse(context.Background(), strings.NewReader(input), "notes.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if ext.Title != "notes" {
		t.Errorf("expected title %q, got %q", "notes", ext.Title)
	}
	if ext.Text != input {
		t.Errorf("expected %q, got %q", input, ext.Text)
	}
}

func TestTextParser_EmptyInput(t *testing.T) {
	p := &TextParser{}
	ext, err := p.Parse(context.Background(), strings.NewReader(""), "empty.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ext.Title != "empty" {
		t.Errorf("expected title %q, got %q", "empty", ext.Title)
	}
	if ext.Text != "" {
		t.Errorf("expected empty text, got %q", ext.Text)
	}
}

func TestTextParser_MultipleBlankLines(t *testing.T) {
	// Runs of blank lines collapse to one paragraph break.
	input := "Para one.\n\n\n\nPara two."
	p := &TextParser{}
	ext, err := p.Parse(context.Background(), strings.NewReader(input), "gaps.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ext.Text != "Para one.\n\nPara two." {
		t.Errorf("unexpected text %q", ext.Text)
	}
}

func TestTextParser_WhitespaceOnlyLines(t *testing.T) {
	// Lines with only whitespace should be treated as blank.
	input := "Para one.\n   \nPara two."
	p := &TextParser{}
	ext, err := p.Parse(context.Background(), strings.NewReader(input), "ws.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ext.Text != "Para one.\n\nPara two." {
		t.Errorf("unexpected text %q", ext.Text)
	}
}
