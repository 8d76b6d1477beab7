package pagination

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestNew(t *testing.T) {
	tests := []struct {
		page, limit             int
		wantPage, wantLimit, wo int
	}{
		{0, 0, 1, 20, 0},
		{3, 10, 3, 10, 20},
		{2, 500, 2, 100, 100},
		{-4, -1, 1, 20, 0},
	}
	for _, tt := range tests {
		p := New(tt.page, tt.limit)
		if p.Page != tt.wantPage || p.Limit != tt.wantLimit || p.Offset != tt.wo {
			t.Errorf("New(%d, %d) = %+v, want page=%d limit=%d offset=%d",
				tt.page, tt.limit, p, tt.wantPage, tt.wantLimit, tt.wo)
		}
	}
}

func TestParse(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/api/debts?page=2&limit=5", nil)

	p := Parse(c)
	if p.Page != 2 || p.Limit != 5 || p.Offset != 5 {
		t.Errorf("Parse() = %+v, want page=2 limit=5 offset=5", p)
	}
}
