// Package markdown renders translation results for the web UI.
package markdown

import (
	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// ToHTML renders text as HTML. The text comes from users and models: raw
// HTML is dropped and links are rendered only for http(s), ftp, mailto and
// relative targets. Single line breaks are kept.
func ToHTML(md string) string {
	opts := html.RendererOptions{
		Flags: html.CommonFlags | html.HrefTargetBlank | html.SkipHTML |
			html.Safelink | html.NofollowLinks | html.NoreferrerLinks,
	}
	renderer := html.NewRenderer(opts)
	ext := parser.CommonExtensions | parser.HardLineBreak
	p := parser.NewWithExtensions(ext)
	doc := p.Parse([]byte(md))
	return string(markdown.Render(doc, renderer))
}
