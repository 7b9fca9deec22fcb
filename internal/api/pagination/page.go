// Package pagination parses page/size/sort query parameters and builds the
// HAL navigation links for paged collections.
package pagination

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/gatherly/server/internal/api/hal"
	"github.com/gatherly/server/internal/domain/events"
)

const (
	DefaultSize = 20
	MaxSize     = 100
)

// ParamError reports an unusable pagination parameter.
type ParamError struct {
	Param   string
	Message string
}

func (e ParamError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Param, e.Message)
}

// sortKeys whitelists the columns a client may sort by. The repository
// interpolates the key into ORDER BY, so nothing outside this set may pass.
var sortKeys = map[string]bool{
	"id":                 true,
	"name":               true,
	"beginEventDateTime": true,
	"basePrice":          true,
	"eventStatus":        true,
}

// Parse reads page, size, and sort from values. page is zero-based; sort has
// the form "key" or "key,DESC".
func Parse(values url.Values) (events.Page, error) {
	page := events.Page{
		Number:    0,
		Size:      DefaultSize,
		SortKey:   "id",
		Direction: events.SortAsc,
	}

	if raw := strings.TrimSpace(values.Get("page")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			return page, ParamError{Param: "page", Message: "must be a non-negative number"}
		}
		page.Number = parsed
	}

	if raw := strings.TrimSpace(values.Get("size")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > MaxSize {
			return page, ParamError{Param: "size", Message: fmt.Sprintf("must be between 1 and %d", MaxSize)}
		}
		page.Size = parsed
	}

	if raw := strings.TrimSpace(values.Get("sort")); raw != "" {
		key, direction, err := parseSort(raw)
		if err != nil {
			return page, err
		}
		page.SortKey = key
		page.Direction = direction
	}

	return page, nil
}

func parseSort(raw string) (string, events.SortDirection, error) {
	parts := strings.Split(raw, ",")
	key := strings.TrimSpace(parts[0])
	if !sortKeys[key] {
		return "", "", ParamError{Param: "sort", Message: fmt.Sprintf("unsupported sort key %q", key)}
	}

	direction := events.SortAsc
	if len(parts) > 1 {
		switch strings.ToUpper(strings.TrimSpace(parts[1])) {
		case "ASC", "":
			direction = events.SortAsc
		case "DESC":
			direction = events.SortDesc
		default:
			return "", "", ParamError{Param: "sort", Message: "direction must be ASC or DESC"}
		}
	}
	return key, direction, nil
}

// PageMeta is the page object on a paged HAL collection.
type PageMeta struct {
	Size          int `json:"size"`
	TotalElements int `json:"totalElements"`
	TotalPages    int `json:"totalPages"`
	Number        int `json:"number"`
}

func Meta(page events.Page, totalElements int) PageMeta {
	return PageMeta{
		Size:          page.Size,
		TotalElements: totalElements,
		TotalPages:    events.ListResult{TotalElements: totalElements}.TotalPages(page.Size),
		Number:        page.Number,
	}
}

// Links builds the navigation links for the collection at path. self, first,
// and last are always present; prev appears only when a previous page exists
// and next only when a page follows.
func Links(path string, page events.Page, totalElements int) hal.Links {
	totalPages := events.ListResult{TotalElements: totalElements}.TotalPages(page.Size)
	lastPage := totalPages - 1
	if lastPage < 0 {
		lastPage = 0
	}

	links := hal.NewLinks().Add("self", pageHref(path, page, page.Number))
	links.Add("first", pageHref(path, page, 0))
	if page.Number > 0 {
		links.Add("prev", pageHref(path, page, page.Number-1))
	}
	if page.Number < lastPage {
		links.Add("next", pageHref(path, page, page.Number+1))
	}
	links.Add("last", pageHref(path, page, lastPage))
	return links
}

func pageHref(path string, page events.Page, number int) string {
	query := url.Values{}
	query.Set("page", strconv.Itoa(number))
	query.Set("size", strconv.Itoa(page.Size))
	query.Set("sort", fmt.Sprintf("%s,%s", page.SortKey, page.Direction))
	return path + "?" + query.Encode()
}
