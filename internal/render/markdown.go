package render

import (
	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/microcosm-cc/bluemonday"
)

var ugc = bluemonday.UGCPolicy()

// Markdown renders user supplied markdown to HTML that is safe to embed.
func Markdown(src string) string {
	if src == "" {
		return ""
	}

	// parsers are stateful, never reuse them across documents
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs | parser.NoEmptyLineBeforeBlock)
	doc := p.Parse([]byte(src))

	renderer := html.NewRenderer(html.RendererOptions{
		Flags: html.CommonFlags | html.HrefTargetBlank | html.NofollowLinks | html.NoreferrerLinks,
	})

	return string(ugc.SanitizeBytes(markdown.Render(doc, renderer)))
}
