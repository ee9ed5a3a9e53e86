package admin

import (
	handlershared "github.com/clickpulse/internal/http/handlers/shared"
	"github.com/clickpulse/internal/http/response"
	"github.com/clickpulse/internal/service"

	"github.com/gin-gonic/gin"
)

var statsErrorRules = []handlershared.MappedError{
	{Target: service.ErrInvalidPostID, Code: response.CodeBadRequest, Msg: "invalid post id"},
	{Target: service.ErrInvalidDateRange, Code: response.CodeBadRequest, Msg: "invalid date range"},
}

func respondError(c *gin.Context, code int, msg string, err error) {
	handlershared.RespondError(c, code, msg, err)
}

func respondStatsError(c *gin.Context, err error) {
	handlershared.RespondMappedError(c, err, statsErrorRules, response.CodeInternal, "stats fetch failed")
}
