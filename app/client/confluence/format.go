package confluence

import (
	"devmcp/app/service/markup"

	"github.com/elliotchance/pie/v2"
)

func optional(values ...string) *string {
	v := pie.FindFirstUsing(values, func(s string) bool { return s != "" })
	if v < 0 {
		return nil
	}
	return &values[v]
}

func pageURL(baseURL string, spaceKey, pageID *string) *string {
	if baseURL == "" || spaceKey == nil || pageID == nil {
		return nil
	}
	u := baseURL + "/spaces/" + *spaceKey + "/pages/" + *pageID
	return &u
}

func (c *Client) simplifyResults(items []searchItem) []SearchResult {
	return pie.Map(items, func(item searchItem) SearchResult {
		var (
			cID, cAltID, cTitle, cExcerpt, cSpace string
			spaceKey                              string
		)
		if item.Content != nil {
			cID, cAltID, cTitle, cExcerpt = item.Content.ID, item.Content.AltID, item.Content.Title, item.Content.Excerpt
			if item.Content.Space != nil {
				cSpace = item.Content.Space.Key
			}
		}
		if item.Space != nil {
			spaceKey = item.Space.Key
		}

		id := optional(item.ID, cID, cAltID)
		key := optional(spaceKey, cSpace)

		return SearchResult{
			ID:       id,
			Title:    optional(item.Title, cTitle),
			SpaceKey: key,
			URL:      pageURL(c.baseURL, key, id),
			Excerpt:  optional(item.Excerpt, cExcerpt),
		}
	})
}

// simplifyPage flattens a content object. The body prefers the export view
// and is converted to Markdown unless asHTML is set.
func (c *Client) simplifyPage(page *content, labels []string, asHTML bool) *Page {
	html := ""
	switch {
	case page.Body.ExportView != nil:
		html = page.Body.ExportView.Value
	case page.Body.Storage != nil:
		html = page.Body.Storage.Value
	}

	format, body := "markdown", markup.ToDisplayMarkdown(html)
	if asHTML {
		format, body = "html", html
	}

	var spaceKey string
	if page.Space != nil {
		spaceKey = page.Space.Key
	}
	id := optional(page.ID)
	key := optional(spaceKey)

	result := &Page{
		ID:       id,
		Title:    optional(page.Title),
		SpaceKey: key,
		URL:      pageURL(c.baseURL, key, id),
		Format:   format,
		Body:     body,
		Labels:   labels,
	}
	if result.Labels == nil {
		result.Labels = []string{}
	}

	if v := page.Version; v != nil {
		result.Version.Number = v.Number
		result.Version.When = v.When
		if v.By != nil {
			result.Version.By = v.By.DisplayName
		}
	}
	if h := page.History; h != nil {
		result.CreatedAt = h.CreatedDate
		if h.LastUpdated != nil {
			result.LastUpdatedAt = h.LastUpdated.When
		}
	}

	return result
}
