package markup

import (
	"regexp"
	"strings"
)

type substitution struct {
	re   *regexp.Regexp
	repl string
}

// Order matters: block tags first, then inline, then whatever is left is
// stripped. Tag names are matched whole so <p> never eats <pre>.
var displayRules = []substitution{
	{regexp.MustCompile(`(?is)<h1(?:\s[^>]*)?>(.*?)</h1>`), "# ${1}\n\n"},
	{regexp.MustCompile(`(?is)<h2(?:\s[^>]*)?>(.*?)</h2>`), "## ${1}\n\n"},
	{regexp.MustCompile(`(?is)<h3(?:\s[^>]*)?>(.*?)</h3>`), "### ${1}\n\n"},
	{regexp.MustCompile(`(?is)<p(?:\s[^>]*)?>(.*?)</p>`), "${1}\n\n"},
	{regexp.MustCompile(`(?i)<br\s*/?>`), "\n"},
	{regexp.MustCompile(`(?is)<strong(?:\s[^>]*)?>(.*?)</strong>`), "**${1}**"},
	{regexp.MustCompile(`(?is)<b(?:\s[^>]*)?>(.*?)</b>`), "**${1}**"},
	{regexp.MustCompile(`(?is)<em(?:\s[^>]*)?>(.*?)</em>`), "*${1}*"},
	{regexp.MustCompile(`(?is)<i(?:\s[^>]*)?>(.*?)</i>`), "*${1}*"},
	{regexp.MustCompile(`(?is)<a [^>]*href="([^"]+)"[^>]*>(.*?)</a>`), "[${2}](${1})"},
	{regexp.MustCompile(`(?is)<li(?:\s[^>]*)?>(.*?)</li>`), "- ${1}\n"},
	{regexp.MustCompile(`(?i)</?ul(?:\s[^>]*)?>`), "\n"},
	{regexp.MustCompile(`(?i)</?ol(?:\s[^>]*)?>`), "\n"},
	{regexp.MustCompile(`(?is)<pre(?:\s[^>]*)?><code(?:\s[^>]*)?>(.*?)\n?</code></pre>`), "```\n${1}\n```\n\n"},
	{regexp.MustCompile(`(?is)<code(?:\s[^>]*)?>(.*?)</code>`), "`${1}`"},
	{regexp.MustCompile(`(?s)<[^>]+>`), ""},
	{regexp.MustCompile(`\n{3,}`), "\n\n"},
}

// ToDisplayMarkdown turns storage or export-view HTML into light Markdown for
// reading. It is lossy and not an inverse of ToStorage.
func ToDisplayMarkdown(html string) string {
	text := html
	for _, rule := range displayRules {
		text = rule.re.ReplaceAllString(text, rule.repl)
	}
	return strings.TrimSpace(text)
}
