// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package crawl

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/Mohammed-Abed-Alkareem/LLM-Institution-Profiler/pkg/types"
)

// ParseArtifact turns one page's raw HTML into the artifact bundle:
// title, metadata, JSON-LD blocks, located images, media and link lists,
// cleaned HTML, and markdown renderings. Parsing never fails hard; an
// unparseable page yields an artifact carrying only the raw HTML.
func ParseArtifact(pageURL, rawHTML string) types.CrawlArtifact {
	artifact := types.CrawlArtifact{
		URL:       pageURL,
		RawHTML:   rawHTML,
		SizeBytes: len(rawHTML),
		Metadata:  map[string]string{},
	}

	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return artifact
	}
	base, _ := url.Parse(pageURL)

	w := &pageWalker{artifact: &artifact, base: base}
	w.walk(doc, "")

	artifact.CleanedHTML = renderCleaned(doc)
	body := findElement(doc, atom.Body)
	main := findMainRegion(doc)
	if main == nil {
		main = body
	}
	artifact.Markdown = types.MarkdownBundle{
		Raw:            renderMarkdown(body, false),
		Fit:            renderMarkdown(main, true),
		PrimaryContent: renderMarkdown(main, false),
	}
	return artifact
}

// pageWalker accumulates artifact fields during one DOM traversal.
// region tracks the nearest structural ancestor for image placement.
type pageWalker struct {
	artifact *types.CrawlArtifact
	base     *url.URL
}

func (w *pageWalker) walk(n *html.Node, region string) {
	if n.Type == html.ElementNode {
		switch n.DataAtom {
		case atom.Header:
			region = "header"
		case atom.Nav:
			region = "nav"
		case atom.Main, atom.Article:
			region = "main-content"
		case atom.Footer:
			region = "footer"
		case atom.H1, atom.H2:
			if region == "" || region == "main-content" {
				region = "near-title"
			}
		case atom.Title:
			if w.artifact.Title == "" {
				w.artifact.Title = strings.TrimSpace(textContent(n))
			}
		case atom.Meta:
			w.meta(n)
		case atom.Script:
			if strings.EqualFold(attr(n, "type"), "application/ld+json") {
				w.jsonLD(n)
			}
			return
		case atom.Img:
			w.image(n, region)
		case atom.A:
			w.link(n)
		case atom.Video:
			w.media(n, &w.artifact.Videos)
		case atom.Audio:
			w.media(n, &w.artifact.Audio)
		case atom.Iframe:
			src := strings.ToLower(attr(n, "src"))
			if strings.Contains(src, "youtube") || strings.Contains(src, "vimeo") {
				w.artifact.Videos = append(w.artifact.Videos, w.resolve(attr(n, "src")))
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.walk(c, region)
	}
}

func (w *pageWalker) meta(n *html.Node) {
	name := attr(n, "name")
	if name == "" {
		name = attr(n, "property")
	}
	if content := attr(n, "content"); name != "" && content != "" {
		w.artifact.Metadata[strings.ToLower(name)] = content
	}
}

func (w *pageWalker) jsonLD(n *html.Node) {
	raw := strings.TrimSpace(textContent(n))
	if raw == "" {
		return
	}
	var compact bytes.Buffer
	if err := json.Compact(&compact, []byte(raw)); err != nil {
		return
	}
	w.artifact.StructuredData = append(w.artifact.StructuredData, compact.String())
}

func (w *pageWalker) image(n *html.Node, region string) {
	src := w.resolve(attr(n, "src"))
	if src == "" {
		return
	}
	img := types.ImageRef{
		Src:         src,
		Alt:         attr(n, "alt"),
		Width:       atoiAttr(n, "width"),
		Height:      atoiAttr(n, "height"),
		DOMLocation: region,
	}
	if n.Parent != nil {
		img.SurroundingText = snippet(textContent(n.Parent), 160)
	}
	w.artifact.Images = append(w.artifact.Images, img)
}

func (w *pageWalker) link(n *html.Node) {
	href := attr(n, "href")
	if href == "" || strings.HasPrefix(href, "#") ||
		strings.HasPrefix(href, "mailto:") || strings.HasPrefix(href, "javascript:") {
		return
	}
	resolved := w.resolve(href)
	if resolved == "" {
		return
	}
	u, err := url.Parse(resolved)
	if err != nil {
		return
	}
	if w.base != nil && u.Host == w.base.Host {
		w.artifact.InternalLinks = append(w.artifact.InternalLinks, resolved)
	} else {
		w.artifact.ExternalLinks = append(w.artifact.ExternalLinks, resolved)
	}
}

func (w *pageWalker) media(n *html.Node, out *[]string) {
	if src := w.resolve(attr(n, "src")); src != "" {
		*out = append(*out, src)
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.DataAtom == atom.Source {
			if src := w.resolve(attr(c, "src")); src != "" {
				*out = append(*out, src)
				return
			}
		}
	}
}

func (w *pageWalker) resolve(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if w.base == nil {
		return raw
	}
	ref, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return w.base.ResolveReference(ref).String()
}

// renderCleaned serializes the document without script, style, noscript,
// and iframe subtrees.
func renderCleaned(doc *html.Node) string {
	clone := cloneWithout(doc, map[atom.Atom]bool{
		atom.Script: true, atom.Style: true, atom.Noscript: true, atom.Iframe: true,
	})
	var b bytes.Buffer
	if err := html.Render(&b, clone); err != nil {
		return ""
	}
	return b.String()
}

func cloneWithout(n *html.Node, skip map[atom.Atom]bool) *html.Node {
	clone := &html.Node{
		Type: n.Type, DataAtom: n.DataAtom, Data: n.Data,
		Namespace: n.Namespace, Attr: append([]html.Attribute(nil), n.Attr...),
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && skip[c.DataAtom] {
			continue
		}
		clone.AppendChild(cloneWithout(c, skip))
	}
	return clone
}

// findMainRegion returns the main or article element, preferring main.
func findMainRegion(doc *html.Node) *html.Node {
	if n := findElement(doc, atom.Main); n != nil {
		return n
	}
	return findElement(doc, atom.Article)
}

func findElement(n *html.Node, a atom.Atom) *html.Node {
	if n == nil {
		return nil
	}
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, a); found != nil {
			return found
		}
	}
	return nil
}

// renderMarkdown converts a subtree to markdown. plain drops link targets
// and keeps only their text, for the fit rendering.
func renderMarkdown(n *html.Node, plain bool) string {
	if n == nil {
		return ""
	}
	var b strings.Builder
	markdownNode(&b, n, plain)
	return collapseBlankLines(strings.TrimSpace(b.String()))
}

func markdownNode(b *strings.Builder, n *html.Node, plain bool) {
	if n.Type == html.TextNode {
		if t := strings.Join(strings.Fields(n.Data), " "); t != "" {
			b.WriteString(t)
			b.WriteByte(' ')
		}
		return
	}
	if n.Type != html.ElementNode && n.Type != html.DocumentNode {
		return
	}

	switch n.DataAtom {
	case atom.Script, atom.Style, atom.Noscript, atom.Nav, atom.Footer:
		return
	case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		level := int(n.Data[1] - '0')
		b.WriteString("\n\n" + strings.Repeat("#", level) + " ")
		markdownChildren(b, n, plain)
		b.WriteString("\n\n")
		return
	case atom.P, atom.Div, atom.Section, atom.Table, atom.Tr:
		b.WriteString("\n")
		markdownChildren(b, n, plain)
		b.WriteString("\n")
		return
	case atom.Li:
		b.WriteString("\n- ")
		markdownChildren(b, n, plain)
		return
	case atom.Br:
		b.WriteString("\n")
		return
	case atom.A:
		if plain {
			markdownChildren(b, n, plain)
			return
		}
		href := attr(n, "href")
		text := strings.TrimSpace(textContent(n))
		if href != "" && text != "" {
			fmt.Fprintf(b, "[%s](%s) ", text, href)
			return
		}
	case atom.Img:
		return
	}
	markdownChildren(b, n, plain)
}

func markdownChildren(b *strings.Builder, n *html.Node, plain bool) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		markdownNode(b, c, plain)
	}
}

func collapseBlankLines(s string) string {
	lines := strings.Split(s, "\n")
	var out []string
	blank := false
	for _, line := range lines {
		line = strings.TrimRight(line, " ")
		if strings.TrimSpace(line) == "" {
			if !blank && len(out) > 0 {
				out = append(out, "")
			}
			blank = true
			continue
		}
		blank = false
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(b.String()), " ")
}

func snippet(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := s[:max]
	if i := strings.LastIndexByte(cut, ' '); i > 0 {
		cut = cut[:i]
	}
	return cut
}

func attr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}

func atoiAttr(n *html.Node, name string) int {
	v, err := strconv.Atoi(strings.TrimSpace(attr(n, name)))
	if err != nil || v < 0 {
		return 0
	}
	return v
}
