package parser

import (
	"context"
	"fmt"
	"io"

	"golang.org/x/net/html"

	"github.com/dgallion1/cohere/internal/doctree"
)

// HTMLParser handles HTML files. h1-h6 become "#" lines and block elements
// become paragraphs; scripts and page chrome are skipped.
type HTMLParser struct{}

func (p *HTMLParser) Parse(_ context.Context, r io.Reader, filename string) (*doctree.Extraction, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	ext := &doctree.Extraction{Title: trimExt(filename)}
	if title := findTitle(doc); title != "" {
		ext.Title = title
	}

	var out outline
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if level := headingLevel(n.Data); level > 0 {
				out.heading(level, textContent(n))
				return
			}
			switch n.Data {
			case "script", "style", "nav", "footer", "header", "head":
				return
			case "p", "li", "td", "blockquote", "pre", "figcaption":
				out.paragraph(textContent(n))
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	if body := findBody(doc); body != nil {
		walk(body)
	} else {
		walk(doc)
	}

	ext.Text = out.String()
	return ext, nil
}

func headingLevel(tag string) int {
	if len(tag) == 2 && tag[0] == 'h' && tag[1] >= '1' && tag[1] <= '6' {
		return int(tag[1] - '0')
	}
	return 0
}

func textContent(n *html.Node) string {
	var buf []byte
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf = append(buf, n.Data...)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return collapseSpace(string(buf))
}

func findTitle(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "title" {
		return textContent(n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if t := findTitle(c); t != "" {
			return t
		}
	}
	return ""
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}
