package usecase

import (
	"sort"
	"strings"

	"filehub/internal/domain/entity"
)

const (
	DefaultPageSize = 30

	SortAsc  = "asc"
	SortDesc = "desc"
)

// QueryOptions are the list parameters accepted by GET /api/files.
type QueryOptions struct {
	Search    string
	SortBy    string
	SortOrder string
	Page      int
	Limit     int
}

// QueryResult is one page of a filtered, sorted record set.
type QueryResult struct {
	Files       []*entity.FileRecord `json:"files"`
	TotalCount  int                  `json:"totalCount"`
	CurrentPage int                  `json:"currentPage"`
	TotalPages  int                  `json:"totalPages"`
}

type recordLess func(a, b *entity.FileRecord) bool

var sortFields = map[string]recordLess{
	"id":         func(a, b *entity.FileRecord) bool { return a.ID < b.ID },
	"filename":   func(a, b *entity.FileRecord) bool { return a.Filename < b.Filename },
	"storageKey": func(a, b *entity.FileRecord) bool { return a.StorageKey < b.StorageKey },
	"size":       func(a, b *entity.FileRecord) bool { return a.Size < b.Size },
	"mimetype":   func(a, b *entity.FileRecord) bool { return a.Mimetype < b.Mimetype },
	"uploadDate": func(a, b *entity.FileRecord) bool { return a.UploadDate.Before(b.UploadDate) },
	"favorite":   func(a, b *entity.FileRecord) bool { return !a.Favorite && b.Favorite },
}

// Normalize fills in defaults and clamps page and limit to at least 1.
func (o QueryOptions) Normalize() QueryOptions {
	if o.Page < 1 {
		o.Page = 1
	}
	if o.Limit < 1 {
		o.Limit = DefaultPageSize
	}
	if o.SortOrder != SortAsc {
		o.SortOrder = SortDesc
	}
	return o
}

// QueryFiles filters, sorts and paginates records. The input slice is not
// modified. Sorting is stable in both directions, so records with equal keys
// keep their filtered order.
func QueryFiles(records []*entity.FileRecord, opts QueryOptions) *QueryResult {
	opts = opts.Normalize()

	filtered := make([]*entity.FileRecord, 0, len(records))
	needle := strings.ToLower(opts.Search)
	for _, record := range records {
		if needle != "" && !strings.Contains(strings.ToLower(record.Filename), needle) {
			continue
		}
		filtered = append(filtered, record)
	}

	if less, ok := sortFields[opts.SortBy]; ok {
		if opts.SortOrder == SortAsc {
			sort.SliceStable(filtered, func(i, j int) bool { return less(filtered[i], filtered[j]) })
		} else {
			sort.SliceStable(filtered, func(i, j int) bool { return less(filtered[j], filtered[i]) })
		}
	}

	total := len(filtered)
	totalPages := total / opts.Limit
	if total%opts.Limit != 0 {
		totalPages++
	}

	page := []*entity.FileRecord{}
	if opts.Page <= totalPages {
		start := (opts.Page - 1) * opts.Limit
		end := total
		if opts.Limit < total-start {
			end = start + opts.Limit
		}
		page = filtered[start:end]
	}

	return &QueryResult{
		Files:       page,
		TotalCount:  total,
		CurrentPage: opts.Page,
		TotalPages:  totalPages,
	}
}
