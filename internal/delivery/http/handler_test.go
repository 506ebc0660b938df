package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cjfeed/backend/internal/domain"
	"github.com/gin-gonic/gin"
)

func TestParseFeedQuery(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  domain.FeedQuery
	}{
		{
			name:  "all parameters",
			query: "kw=lamp&ids=A,B&pageNum=3&pageSize=20",
			want:  domain.FeedQuery{Keyword: "lamp", IDs: "A,B", PageNum: 3, PageSize: 20},
		},
		{
			name:  "missing paging left at zero",
			query: "kw=lamp",
			want:  domain.FeedQuery{Keyword: "lamp"},
		},
		{
			name:  "non-numeric paging left at zero",
			query: "ids=A&pageNum=abc&pageSize=1.5",
			want:  domain.FeedQuery{IDs: "A"},
		},
		{
			name:  "negative paging passed through",
			query: "pageNum=-1&pageSize=-5",
			want:  domain.FeedQuery{PageNum: -1, PageSize: -5},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request, _ = http.NewRequest("GET", "/api/feed?"+tt.query, nil)

			if got := parseFeedQuery(c); got != tt.want {
				t.Errorf("parseFeedQuery() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
