package domain

// Paging defaults applied when a request omits or mangles pageNum/pageSize
const (
	DefaultPageNum  = 1
	DefaultPageSize = 50
)

// FeedQuery describes which upstream products a feed request wants.
// Keyword takes precedence over IDs; with neither set the feed is empty.
type FeedQuery struct {
	Keyword  string
	IDs      string
	PageNum  int
	PageSize int
}

// HasKeyword reports whether the query is a keyword search
func (q FeedQuery) HasKeyword() bool {
	return q.Keyword != ""
}

// HasIDs reports whether the query is a batch of detail lookups
func (q FeedQuery) HasIDs() bool {
	return q.IDs != ""
}
