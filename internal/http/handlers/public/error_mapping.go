package public

import (
	handlershared "github.com/clickpulse/internal/http/handlers/shared"
	"github.com/clickpulse/internal/http/response"
	"github.com/clickpulse/internal/service"

	"github.com/gin-gonic/gin"
)

var trackErrorRules = []handlershared.MappedError{
	{Target: service.ErrInvalidView, Code: response.CodeBadRequest, Msg: "invalid view"},
	{Target: service.ErrClickCommitFailed, Code: response.CodeServiceUnavailable, Msg: "click commit failed"},
}

func respondTrackError(c *gin.Context, err error) {
	handlershared.RespondMappedError(c, err, trackErrorRules, response.CodeInternal, "track failed")
}
