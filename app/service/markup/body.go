package markup

import "strings"

const (
	FormatMarkdown = "markdown"
	FormatStorage  = "storage"
	FormatWiki     = "wiki"
)

// NormalizeBody prepares page or comment content for the wiki API and returns
// the body together with its representation. Storage and wiki markup pass
// through untouched; anything else is treated as Markdown.
func NormalizeBody(content, format string) (body, representation string) {
	switch strings.ToLower(format) {
	case FormatStorage:
		return content, FormatStorage
	case FormatWiki:
		return content, FormatWiki
	default:
		return ToStorage(content), FormatStorage
	}
}
