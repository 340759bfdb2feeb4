package api

import (
	"math"
	"strconv"

	"timebank/internal/apperr"

	"github.com/gin-gonic/gin"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100

	// MaxPage keeps Page*Size within int range for any accepted size.
	MaxPage = math.MaxInt32 / MaxPageSize
)

var ErrInvalidPage = apperr.InvalidArgument("page and size must be non-negative integers in range")

type PageRequest struct {
	Page int
	Size int
}

func (p PageRequest) Limit() int {
	return p.Size
}

func (p PageRequest) Offset() int {
	return p.Page * p.Size
}

// ParsePageRequest reads ?page= (zero based) and ?size= from the query string.
func ParsePageRequest(c *gin.Context) (PageRequest, error) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "0"))
	if err != nil || page < 0 || page > MaxPage {
		return PageRequest{}, ErrInvalidPage
	}

	size, err := strconv.Atoi(c.DefaultQuery("size", strconv.Itoa(DefaultPageSize)))
	if err != nil || size < 0 {
		return PageRequest{}, ErrInvalidPage
	}
	if size == 0 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}

	return PageRequest{Page: page, Size: size}, nil
}

type Page[T any] struct {
	Content       []T   `json:"content"`
	Page          int   `json:"page"`
	Size          int   `json:"size"`
	TotalElements int64 `json:"total_elements"`
	TotalPages    int   `json:"total_pages"`
}

func NewPage[T any](content []T, req PageRequest, total int64) Page[T] {
	if content == nil {
		content = []T{}
	}

	totalPages := 0
	if req.Size > 0 {
		totalPages = int((total + int64(req.Size) - 1) / int64(req.Size))
	}

	return Page[T]{
		Content:       content,
		Page:          req.Page,
		Size:          req.Size,
		TotalElements: total,
		TotalPages:    totalPages,
	}
}
