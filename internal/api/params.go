package api

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/wirechat/messenger/internal/pagination"
)

// pageLimitParams reads ?page and ?limit with their defaults. Zero and
// negative values are passed through (the pagination policy defines them as
// empty results); only non-numeric input is an error.
func pageLimitParams(c *gin.Context) (page, limit int, err error) {
	page, limit = 1, pagination.DefaultLimit

	if v := c.Query("page"); v != "" {
		page, err = strconv.Atoi(v)
		if err != nil {
			return 0, 0, fmt.Errorf("invalid page %q", v)
		}
	}
	if v := c.Query("limit"); v != "" {
		limit, err = strconv.Atoi(v)
		if err != nil {
			return 0, 0, fmt.Errorf("invalid limit %q", v)
		}
	}
	return page, limit, nil
}

func conversationIDParam(c *gin.Context) (int, error) {
	id, err := strconv.Atoi(c.Param("conversationID"))
	if err != nil {
		return 0, fmt.Errorf("invalid conversation ID")
	}
	return id, nil
}
