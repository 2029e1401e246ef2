package helpers

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	page, info := Paginate(items, 2, 2)
	assert.Equal(t, []int{3, 4}, page)
	assert.Equal(t, 3, info.TotalPages)
	assert.Equal(t, int64(5), info.TotalItems)

	page, info = Paginate(items, 3, 2)
	assert.Equal(t, []int{5}, page)
	assert.Equal(t, 3, info.CurrentPage)

	page, info = Paginate(items, 9, 2)
	assert.Empty(t, page)
	assert.Equal(t, 3, info.CurrentPage)

	page, info = Paginate([]int{}, 1, 10)
	assert.Empty(t, page)
	assert.Equal(t, 1, info.TotalPages)
}

func TestParsePaginationParams(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/?page=0&pageSize=500", nil)

	page, size := ParsePaginationParams(c)
	assert.Equal(t, DefaultPage, page)
	assert.Equal(t, DefaultPageSize, size)

	c.Request = httptest.NewRequest("GET", "/?page=3&pageSize=5", nil)
	page, size = ParsePaginationParams(c)
	assert.Equal(t, 3, page)
	assert.Equal(t, 5, size)

	// the documented name is the only one honoured
	c.Request = httptest.NewRequest("GET", "/?size=5", nil)
	_, size = ParsePaginationParams(c)
	assert.Equal(t, DefaultPageSize, size)
}

func TestParseDuration(t *testing.T) {
	assert.Equal(t, 2*time.Hour, ParseDuration("2h", time.Minute))
	assert.Equal(t, time.Minute, ParseDuration("soon", time.Minute))
	assert.Equal(t, time.Minute, ParseDuration("-1h", time.Minute))
}

func TestOptionalString(t *testing.T) {
	blank := "  "
	assert.Nil(t, OptionalString(&blank))
	assert.Nil(t, OptionalString(nil))
	v := " d1 "
	assert.Equal(t, "d1", *OptionalString(&v))
	assert.Equal(t, "", StringValue(nil))
}
