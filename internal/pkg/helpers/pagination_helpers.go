package helpers

import (
	"math"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yigit/abroadcrm/internal/app/models"
	"github.com/yigit/abroadcrm/internal/app/models/dto"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
	DefaultPage     = 1 // Default page is 1-based
)

// NormalizePage clamps page number and size into their valid ranges
func NormalizePage(p models.Page) models.Page {
	if p.Number < 1 {
		p.Number = DefaultPage
	}
	if p.Size <= 0 || p.Size > MaxPageSize {
		p.Size = DefaultPageSize
	}
	return p
}

// NewPaginationInfo creates a standard PaginationInfo DTO.
// page should be the 1-based page number.
func NewPaginationInfo(totalItems int64, p models.Page) dto.PaginationInfo {
	p = NormalizePage(p)

	totalPages := 0
	if totalItems > 0 {
		totalPages = int(math.Ceil(float64(totalItems) / float64(p.Size)))
	} else if p.Number == 1 {
		totalPages = 1
	}

	return dto.PaginationInfo{
		CurrentPage: p.Number,
		TotalPages:  totalPages,
		PageSize:    p.Size,
		TotalItems:  totalItems,
	}
}

// NewPaginatedResponse pairs a page of items with its pagination metadata
func NewPaginatedResponse(items interface{}, totalItems int64, p models.Page) dto.PaginatedResponse {
	return dto.PaginatedResponse{
		Items:      items,
		Pagination: NewPaginationInfo(totalItems, p),
	}
}

// ParsePaginationParams extracts and validates pagination parameters from the request
func ParsePaginationParams(c *gin.Context) models.Page {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = DefaultPage
	}

	size, err := strconv.Atoi(c.DefaultQuery("size", strconv.Itoa(DefaultPageSize)))
	if err != nil || size <= 0 || size > MaxPageSize {
		size = DefaultPageSize
	}

	return models.Page{Number: page, Size: size}
}

// CalculateSliceIndices calculates the start and end indices for slicing an array for pagination
func CalculateSliceIndices(p models.Page, totalItems int) (start, end int) {
	p = NormalizePage(p)

	start = (p.Number - 1) * p.Size
	end = start + p.Size

	if start >= totalItems {
		return totalItems, totalItems
	}
	if end > totalItems {
		end = totalItems
	}
	return start, end
}

// OptionalInt64Query parses an optional integer query parameter. Invalid values are ignored.
func OptionalInt64Query(c *gin.Context, key string) *int64 {
	raw := c.Query(key)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil
	}
	return &v
}

// ParseIDParam parses a positive integer path parameter
func ParseIDParam(c *gin.Context, key string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(key), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
