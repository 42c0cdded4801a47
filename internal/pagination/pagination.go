package pagination

import "strconv"

const (
	defaultSize = 20
	maxSize     = 100
)

// Params is a zero-based page request parsed from query parameters.
type Params struct {
	Page int
	Size int
}

// Parse clamps raw page/size query values into a usable range. Bad or
// missing input falls back to page 0 with the default size.
func Parse(pageStr, sizeStr string) Params {
	page, err := strconv.Atoi(pageStr)
	if err != nil || page < 0 {
		page = 0
	}
	size, err := strconv.Atoi(sizeStr)
	if err != nil || size <= 0 {
		size = defaultSize
	}
	if size > maxSize {
		size = maxSize
	}
	return Params{Page: page, Size: size}
}

func (p Params) Offset() int {
	return p.Page * p.Size
}

func (p Params) Limit() int {
	return p.Size
}

// Page is the response envelope for paginated listings.
type Page struct {
	Content       interface{} `json:"content"`
	Page          int         `json:"page"`
	Size          int         `json:"size"`
	TotalElements int64       `json:"total_elements"`
	TotalPages    int64       `json:"total_pages"`
}

func NewPage(content interface{}, p Params, total int64) Page {
	pages := total / int64(p.Size)
	if total%int64(p.Size) != 0 {
		pages++
	}
	return Page{
		Content:       content,
		Page:          p.Page,
		Size:          p.Size,
		TotalElements: total,
		TotalPages:    pages,
	}
}
