package confluence

import (
	"strings"

	"github.com/elliotchance/pie/v2"
)

var cqlMarkers = []string{"=", "~", ">", "<", " AND ", " OR ", "currentUser()"}

// WrapQuery turns plain text into a siteSearch CQL clause. Queries that
// already look like CQL are returned unchanged.
func WrapQuery(query string) string {
	for _, marker := range cqlMarkers {
		if strings.Contains(query, marker) {
			return query
		}
	}

	return `siteSearch ~ "` + escapeQuotes(query) + `"`
}

var quoteEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}

// ApplySpacesFilter restricts cql to the comma separated space keys.
func ApplySpacesFilter(cql, spaces string) string {
	keys := pie.Filter(pie.Map(strings.Split(spaces, ","), strings.TrimSpace), func(k string) bool {
		return k != ""
	})
	if len(keys) == 0 {
		return cql
	}

	clauses := pie.Map(keys, func(k string) string {
		return `space = "` + escapeQuotes(k) + `"`
	})

	return "(" + strings.Join(clauses, " OR ") + ") AND (" + cql + ")"
}
