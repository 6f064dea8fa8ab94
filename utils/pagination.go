package utils

import (
	"net/http"
	"strconv"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
)

// Paginate derives page, limit and skip from the request query. Both values
// are clamped to integers >= 1 and limit is capped at maxLimit.
func Paginate(r *http.Request, maxLimit int64) (page, limit, skip int64) {
	page = readInt(r, "page", DefaultPage)
	limit = readInt(r, "limit", DefaultLimit)
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 1
	}
	if maxLimit > 0 && limit > maxLimit {
		limit = maxLimit
	}
	skip = (page - 1) * limit
	return page, limit, skip
}

// TotalPages is ceil(totalRecords / limit), never less than 1 so the client
// always has a last page to land on.
func TotalPages(totalRecords, limit int64) int64 {
	pages := (totalRecords + limit - 1) / limit
	if pages < 1 {
		return 1
	}
	return pages
}

func readInt(r *http.Request, key string, fallback int64) int64 {
	s := r.URL.Query().Get(key)
	if s == "" {
		return fallback
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fallback
	}
	return n
}
