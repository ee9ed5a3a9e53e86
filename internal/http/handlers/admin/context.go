package admin

import (
	"strconv"
	"strings"

	"github.com/clickpulse/internal/http/response"
	"github.com/clickpulse/internal/service"

	"github.com/gin-gonic/gin"
)

func parsePostID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "invalid post id", nil)
		return 0, false
	}
	return uint(id), true
}

func parseDateRange(c *gin.Context) service.DateRange {
	return service.DateRange{
		From: c.Query("from"),
		To:   c.Query("to"),
	}
}
