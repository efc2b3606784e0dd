package handlers

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	domain "github.com/yungbote/stockmedia-backend/internal/domain/catalog"
)

// listQuery is the query string accepted by the fetchAll endpoints.
type listQuery struct {
	ChannelID string   `form:"channel_id"`
	Search    string   `form:"search"`
	Genre     string   `form:"genre"`
	Tags      []string `form:"tags"`
	Page      *int     `form:"page" binding:"omitempty,min=1"`
	Limit     *int     `form:"limit" binding:"omitempty,min=1,max=100"`
	SortBy    string   `form:"sortBy"`
	SortOrder string   `form:"sortOrder"`
}

// bindListQuery binds the query string. sortOrder is matched case-insensitively
// against asc and desc.
func bindListQuery(c *gin.Context) (listQuery, error) {
	var q listQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		return q, err
	}
	q.SortOrder = strings.ToLower(strings.TrimSpace(q.SortOrder))
	switch domain.SortOrder(q.SortOrder) {
	case "", domain.SortAsc, domain.SortDesc:
	default:
		return q, fmt.Errorf("sortOrder must be one of asc, desc; got %q", q.SortOrder)
	}
	return q, nil
}

func (q listQuery) params() domain.ListParams {
	return domain.ListParams{
		Filter: domain.ListFilter{
			ChannelID: q.ChannelID,
			Search:    q.Search,
			Genre:     q.Genre,
			Tags:      splitTags(q.Tags),
		},
		SortBy:    q.SortBy,
		SortOrder: domain.ParseSortOrder(q.SortOrder),
		Page:      intOr(q.Page, 0),
		Limit:     intOr(q.Limit, 0),
	}
}

// splitTags accepts both ?tags=a&tags=b and ?tags=a,b.
func splitTags(raw []string) []string {
	var out []string
	for _, r := range raw {
		for _, t := range strings.Split(r, ",") {
			if t = strings.TrimSpace(t); t != "" {
				out = append(out, t)
			}
		}
	}
	return out
}

func intOr(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}
