package parser

import (
	"regexp"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"
	"golang.org/x/net/html"
)

var excessiveLinesRe = regexp.MustCompile(`\n{3,}`)

type htmlResult struct {
	Title    string
	Markdown string
}

// convertHTML renders the document body as markdown with script, style and
// page chrome removed.
func convertHTML(content []byte) (htmlResult, error) {
	doc, err := html.Parse(strings.NewReader(string(content)))
	if err != nil {
		return htmlResult{}, err
	}
	title := findTitle(doc)
	removeElements(doc, map[string]bool{
		"script": true, "style": true, "noscript": true, "nav": true,
		"iframe": true, "object": true, "embed": true, "form": true, "title": true,
	})

	var sb strings.Builder
	if err := html.Render(&sb, doc); err != nil {
		return htmlResult{}, err
	}

	conv := md.NewConverter("", true, nil)
	conv.Use(plugin.GitHubFlavored())
	out, err := conv.ConvertString(sb.String())
	if err != nil {
		return htmlResult{}, err
	}
	return htmlResult{Title: title, Markdown: cleanMarkdown(out)}, nil
}

func findTitle(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "title" && n.FirstChild != nil {
		return strings.TrimSpace(n.FirstChild.Data)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if t := findTitle(c); t != "" {
			return t
		}
	}
	return ""
}

func removeElements(n *html.Node, tags map[string]bool) {
	var toRemove []*html.Node
	var collect func(*html.Node)
	collect = func(node *html.Node) {
		if node.Type == html.ElementNode && tags[node.Data] {
			toRemove = append(toRemove, node)
			return
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(n)
	for _, node := range toRemove {
		if node.Parent != nil {
			node.Parent.RemoveChild(node)
		}
	}
}

func cleanMarkdown(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	s = excessiveLinesRe.ReplaceAllString(strings.Join(lines, "\n"), "\n\n")
	return strings.TrimSpace(s)
}
