package utils

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// GetLimitParam reads the "limit" query parameter, falling back to def when
// missing or malformed. Values are capped at 200.
func GetLimitParam(c *gin.Context, def int64) int64 {
	raw := c.Query("limit")
	if raw == "" {
		return def
	}

	limit, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || limit <= 0 {
		return def
	}
	if limit > 200 {
		return 200
	}
	return limit
}
