package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

func queryBool(c *gin.Context, name string) *bool {
	switch c.Query(name) {
	case "true":
		v := true
		return &v
	case "false":
		v := false
		return &v
	default:
		return nil
	}
}

func queryPage(c *gin.Context) (page, size int) {
	page, size = 1, 20
	if v, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		page = v
	}
	if v, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		size = v
	}
	return page, size
}
