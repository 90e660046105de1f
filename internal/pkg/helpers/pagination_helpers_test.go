package helpers

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/yigit/abroadcrm/internal/app/models"
)

func TestNewPaginationInfo(t *testing.T) {
	info := NewPaginationInfo(47, models.Page{Number: 2, Size: 20})
	assert.Equal(t, 3, info.TotalPages)
	assert.Equal(t, 2, info.CurrentPage)
	assert.Equal(t, int64(47), info.TotalItems)

	empty := NewPaginationInfo(0, models.Page{})
	assert.Equal(t, 1, empty.TotalPages)
	assert.Equal(t, DefaultPageSize, empty.PageSize)
}

func TestCalculateSliceIndices(t *testing.T) {
	start, end := CalculateSliceIndices(models.Page{Number: 2, Size: 10}, 15)
	assert.Equal(t, 10, start)
	assert.Equal(t, 15, end)

	start, end = CalculateSliceIndices(models.Page{Number: 5, Size: 10}, 15)
	assert.Equal(t, 15, start)
	assert.Equal(t, 15, end)
}

func TestParsePaginationParams(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/?page=3&size=500&student=7&university=x", nil)

	p := ParsePaginationParams(c)
	assert.Equal(t, models.Page{Number: 3, Size: DefaultPageSize}, p)

	student := OptionalInt64Query(c, "student")
	if assert.NotNil(t, student) {
		assert.Equal(t, int64(7), *student)
	}
	assert.Nil(t, OptionalInt64Query(c, "university"))
	assert.Nil(t, OptionalInt64Query(c, "missing"))
}

func TestParseDuration(t *testing.T) {
	assert.Equal(t, 90*time.Minute, ParseDuration("90m", time.Hour))
	assert.Equal(t, time.Hour, ParseDuration("soon", time.Hour))
}
