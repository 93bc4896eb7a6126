package rest

import (
	"net/http"
	"strconv"
)

type Pagination struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// ParsePagination reads GitLab style x-page headers. Missing or unparsable
// values fall back to page 1 of 20 with unknown totals.
func ParsePagination(h http.Header) Pagination {
	return Pagination{
		Page:       headerInt(h, "x-page", 1),
		PerPage:    headerInt(h, "x-per-page", 20),
		Total:      headerInt(h, "x-total", 0),
		TotalPages: headerInt(h, "x-total-pages", 0),
	}
}

func headerInt(h http.Header, key string, fallback int) int {
	v, err := strconv.Atoi(h.Get(key))
	if err != nil {
		return fallback
	}
	return v
}
