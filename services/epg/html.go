package epg

import (
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/html"
)

// Node helpers shared by the provider parsers.

func attrVal(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attrVal(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

func isElement(n *html.Node, tag string) bool {
	return n.Type == html.ElementNode && n.Data == tag
}

// findAll walks the subtree depth-first and collects every node matching the
// predicate. Matching nodes' subtrees are not descended into, so nested
// matches collapse to their outermost node.
func findAll(n *html.Node, pred func(*html.Node) bool) []*html.Node {
	var result []*html.Node
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if pred(node) {
			result = append(result, node)
			return
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return result
}

func findFirst(n *html.Node, pred func(*html.Node) bool) *html.Node {
	if nodes := findAll(n, pred); len(nodes) > 0 {
		return nodes[0]
	}
	return nil
}

// nodeText returns the concatenated, whitespace-collapsed text content of a
// subtree.
func nodeText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.TextNode {
			sb.WriteString(node.Data)
			sb.WriteString(" ")
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(sb.String()), " ")
}

// parseClock parses an "HH:MM" string into a time on the same day as base.
func parseClock(s string, base time.Time) (time.Time, bool) {
	s = strings.TrimSpace(s)
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return time.Time{}, false
	}
	hour, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || hour < 0 || hour > 23 {
		return time.Time{}, false
	}
	min, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil || min < 0 || min > 59 {
		return time.Time{}, false
	}
	year, month, day := base.Date()
	return time.Date(year, month, day, hour, min, 0, 0, base.Location()), true
}
