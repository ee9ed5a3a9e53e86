package shared

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestNormalizePagination(t *testing.T) {
	cases := []struct {
		page, size         int
		wantPage, wantSize int
	}{
		{0, 0, 1, defaultPageSize},
		{-3, 10, 1, 10},
		{2, 500, 2, maxPageSize},
		{5, 30, 5, 30},
	}
	for _, tc := range cases {
		page, size := NormalizePagination(tc.page, tc.size)
		if page != tc.wantPage || size != tc.wantSize {
			t.Fatalf("NormalizePagination(%d,%d)=(%d,%d) want (%d,%d)", tc.page, tc.size, page, size, tc.wantPage, tc.wantSize)
		}
	}
}

func TestPageQuery(t *testing.T) {
	gin.SetMode(gin.TestMode)

	newCtx := func(target string) *gin.Context {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, target, nil)
		return c
	}

	page, size := PageQuery(newCtx("/daily"), 30)
	if page != 1 || size != 30 {
		t.Fatalf("defaults want (1,30) got (%d,%d)", page, size)
	}
	page, size = PageQuery(newCtx("/daily?page=3&page_size=abc"), 30)
	if page != 3 || size != 30 {
		t.Fatalf("bad page_size should fall back, got (%d,%d)", page, size)
	}
	if got := QueryInt(newCtx("/top?limit=7"), "limit", 10); got != 7 {
		t.Fatalf("QueryInt want 7 got %d", got)
	}
}
