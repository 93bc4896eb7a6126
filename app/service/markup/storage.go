package markup

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	fenceRe     = regexp.MustCompile("^```")
	separatorRe = regexp.MustCompile(`^\|?\s*:?-{3,}:?\s*(\|\s*:?-{3,}:?\s*)+\|?\s*$`)
	hrRe        = regexp.MustCompile(`^\s*(\*{3,}|-{3,}|_{3,})\s*$`)
	headingRe   = regexp.MustCompile(`^(#{1,6})\s+(.*)$`)
	ulRe        = regexp.MustCompile(`^[-*]\s+(.+)$`)
	olRe        = regexp.MustCompile(`^\d+\.\s+(.+)$`)

	linkRe       = regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`)
	inlineCodeRe = regexp.MustCompile("`([^`]+)`")
	boldStarRe   = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	boldUnderRe  = regexp.MustCompile(`__([^_]+)__`)

	// emitted link openings and whole code spans; input is escaped first, so
	// these can only come from earlier passes
	emittedRe = regexp.MustCompile(`<code>.*?</code>|<a href="[^"]*">|</a>`)
)

var htmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

func escapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}

// ToStorage converts a small Markdown dialect into wiki storage markup.
// Literal &, < and > are escaped before any tag is emitted.
func ToStorage(markdown string) string {
	markdown = strings.ReplaceAll(markdown, "\r\n", "\n")
	markdown = strings.ReplaceAll(markdown, "\r", "\n")

	c := &converter{lines: strings.Split(markdown, "\n")}
	for c.pos < len(c.lines) {
		c.step()
	}
	c.closeAll()

	return strings.TrimSpace(c.out.String())
}

type converter struct {
	lines []string
	pos   int
	out   strings.Builder

	inPara  bool
	inUl    bool
	inOl    bool
	inQuote bool
	inCode  bool
}

// step consumes one or more lines starting at pos. Rules are tried in
// precedence order and the first one that matches wins.
func (c *converter) step() {
	raw := c.lines[c.pos]
	line := strings.TrimRight(raw, " \t")

	switch {
	case c.code(raw, line):
	case c.blank(line):
	case c.table(line):
	case c.rule(line):
	case c.heading(line):
	case c.quote(line):
	case c.listItem(line):
	default:
		c.paragraph(line)
	}
}

func (c *converter) code(raw, line string) bool {
	if c.inCode {
		if line == "```" {
			c.out.WriteString("</code></pre>\n")
			c.inCode = false
		} else {
			c.out.WriteString(escapeHTML(raw))
			c.out.WriteByte('\n')
		}
		c.pos++
		return true
	}

	if !fenceRe.MatchString(line) {
		return false
	}

	// the language tag has no storage equivalent and is dropped
	c.closeAll()
	c.out.WriteString("<pre><code>")
	c.inCode = true
	c.pos++
	return true
}

func (c *converter) blank(line string) bool {
	if strings.TrimSpace(line) != "" {
		return false
	}
	c.closeAll()
	c.pos++
	return true
}

func (c *converter) table(line string) bool {
	if !strings.Contains(line, "|") || c.pos+1 >= len(c.lines) {
		return false
	}
	if !separatorRe.MatchString(strings.TrimSpace(c.lines[c.pos+1])) {
		return false
	}

	c.closeAll()

	header := splitCells(line)
	c.pos += 2

	var rows [][]string
	for c.pos < len(c.lines) {
		row := c.lines[c.pos]
		if !strings.Contains(row, "|") || strings.HasPrefix(strings.TrimSpace(row), "#") {
			break
		}
		rows = append(rows, splitCells(row))
		c.pos++
	}

	c.out.WriteString("<table>\n<thead><tr>")
	for _, cell := range header {
		c.out.WriteString("<th>" + renderInline(cell) + "</th>")
	}
	c.out.WriteString("</tr></thead>\n<tbody>\n")
	for _, row := range rows {
		c.out.WriteString("<tr>")
		for _, cell := range row {
			c.out.WriteString("<td>" + renderInline(cell) + "</td>")
		}
		c.out.WriteString("</tr>\n")
	}
	c.out.WriteString("</tbody>\n</table>\n")
	return true
}

func (c *converter) rule(line string) bool {
	if !hrRe.MatchString(line) {
		return false
	}
	c.closeAll()
	c.out.WriteString("<hr/>\n")
	c.pos++
	return true
}

func (c *converter) heading(line string) bool {
	m := headingRe.FindStringSubmatch(line)
	if m == nil {
		return false
	}
	c.closeAll()

	level := strconv.Itoa(len(m[1]))
	c.out.WriteString("<h" + level + ">" + renderInline(m[2]) + "</h" + level + ">\n")
	c.pos++
	return true
}

func (c *converter) quote(line string) bool {
	if !strings.HasPrefix(line, ">") {
		c.closeQuote()
		return false
	}

	if !c.inQuote {
		c.closePara()
		c.closeLists()
		c.out.WriteString("<blockquote>\n")
		c.inQuote = true
	}
	c.appendPara(strings.TrimLeft(strings.TrimPrefix(line, ">"), " \t"))
	c.pos++
	return true
}

func (c *converter) listItem(line string) bool {
	if m := ulRe.FindStringSubmatch(line); m != nil {
		if !c.inUl {
			c.closePara()
			if c.inOl {
				c.out.WriteString("</ol>\n")
				c.inOl = false
			}
			c.out.WriteString("<ul>\n")
			c.inUl = true
		}
		c.out.WriteString("<li>" + renderInline(m[1]) + "</li>\n")
		c.pos++
		return true
	}

	if m := olRe.FindStringSubmatch(line); m != nil {
		if !c.inOl {
			c.closePara()
			if c.inUl {
				c.out.WriteString("</ul>\n")
				c.inUl = false
			}
			c.out.WriteString("<ol>\n")
			c.inOl = true
		}
		c.out.WriteString("<li>" + renderInline(m[1]) + "</li>\n")
		c.pos++
		return true
	}

	return false
}

func (c *converter) paragraph(line string) {
	c.closeLists()
	c.appendPara(line)
	c.pos++
}

// appendPara adds inline-rendered text to the open paragraph, opening one
// when needed. Consecutive lines are joined by a single space.
func (c *converter) appendPara(text string) {
	if c.inPara {
		c.out.WriteByte(' ')
	} else {
		c.out.WriteString("<p>")
		c.inPara = true
	}
	c.out.WriteString(renderInline(text))
}

func (c *converter) closePara() {
	if c.inPara {
		c.out.WriteString("</p>\n")
		c.inPara = false
	}
}

func (c *converter) closeLists() {
	if c.inUl {
		c.out.WriteString("</ul>\n")
		c.inUl = false
	}
	if c.inOl {
		c.out.WriteString("</ol>\n")
		c.inOl = false
	}
}

// closeQuote also closes the paragraph nested inside the quote.
func (c *converter) closeQuote() {
	if c.inQuote {
		c.closePara()
		c.out.WriteString("</blockquote>\n")
		c.inQuote = false
	}
}

func (c *converter) closeAll() {
	if c.inCode {
		c.out.WriteString("</code></pre>\n")
		c.inCode = false
	}
	c.closeQuote()
	c.closePara()
	c.closeLists()
}

// splitCells splits a table row on unescaped pipes. Outer pipes are optional.
func splitCells(row string) []string {
	row = strings.Trim(strings.TrimSpace(row), "|")

	var (
		cells []string
		cell  strings.Builder
	)
	for i := 0; i < len(row); i++ {
		switch {
		case row[i] == '\\' && i+1 < len(row) && row[i+1] == '|':
			cell.WriteByte('|')
			i++
		case row[i] == '|':
			cells = append(cells, strings.TrimSpace(cell.String()))
			cell.Reset()
		default:
			cell.WriteByte(row[i])
		}
	}

	return append(cells, strings.TrimSpace(cell.String()))
}

func renderInline(raw string) string {
	s := escapeHTML(raw)

	s = linkRe.ReplaceAllStringFunc(s, func(m string) string {
		parts := linkRe.FindStringSubmatch(m)
		// & < > were escaped above; only the attribute quote is left
		return `<a href="` + strings.ReplaceAll(parts[2], `"`, "&quot;") + `">` + parts[1] + "</a>"
	})
	s = outsideEmitted(s, func(text string) string {
		return inlineCodeRe.ReplaceAllString(text, "<code>${1}</code>")
	})
	s = outsideEmitted(s, func(text string) string {
		text = boldStarRe.ReplaceAllString(text, "<strong>${1}</strong>")
		text = boldUnderRe.ReplaceAllString(text, "<strong>${1}</strong>")
		text = replaceSingle(text, '*', "em")
		return replaceSingle(text, '_', "em")
	})

	return s
}

// outsideEmitted applies fn to the text between tags produced by earlier
// passes. Hrefs and code span contents are copied unchanged.
func outsideEmitted(s string, fn func(string) string) string {
	var out strings.Builder
	out.Grow(len(s))

	last := 0
	for _, loc := range emittedRe.FindAllStringIndex(s, -1) {
		out.WriteString(fn(s[last:loc[0]]))
		out.WriteString(s[loc[0]:loc[1]])
		last = loc[1]
	}
	out.WriteString(fn(s[last:]))

	return out.String()
}

// replaceSingle wraps text between single delim characters in tag. A
// delimiter that touches another copy of itself on the outer side is left
// alone, so leftover doubled markers are never split in half.
func replaceSingle(s string, delim byte, tag string) string {
	var out strings.Builder
	out.Grow(len(s))

	i := 0
	for i < len(s) {
		if s[i] != delim || (i > 0 && s[i-1] == delim) {
			out.WriteByte(s[i])
			i++
			continue
		}

		end := strings.IndexByte(s[i+1:], delim)
		if end <= 0 {
			out.WriteByte(s[i])
			i++
			continue
		}
		end += i + 1

		if end+1 < len(s) && s[end+1] == delim {
			out.WriteByte(s[i])
			i++
			continue
		}

		out.WriteString("<" + tag + ">" + s[i+1:end] + "</" + tag + ">")
		i = end + 1
	}

	return out.String()
}
