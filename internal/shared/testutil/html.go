package testutil

import (
	"bytes"
	"testing"

	"golang.org/x/net/html"
)

// ImageSources parses an HTML document and returns the decoded src
// attribute of every img element in document order
func ImageSources(t *testing.T, doc []byte) []string {
	t.Helper()

	root, err := html.Parse(bytes.NewReader(doc))
	if err != nil {
		t.Fatalf("parse html: %v", err)
	}

	var srcs []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "img" {
			for _, a := range n.Attr {
				if a.Key == "src" {
					srcs = append(srcs, a.Val)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return srcs
}
