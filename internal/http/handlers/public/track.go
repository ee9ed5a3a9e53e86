package public

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	handlershared "github.com/clickpulse/internal/http/handlers/shared"
	"github.com/clickpulse/internal/http/response"
	"github.com/clickpulse/internal/service"

	"github.com/gin-gonic/gin"
)

// transparentGIF 1x1 透明 GIF
var transparentGIF = []byte{
	0x47, 0x49, 0x46, 0x38, 0x39, 0x61, 0x01, 0x00, 0x01, 0x00, 0x80, 0x00, 0x00, 0x00, 0x00, 0x00,
	0xff, 0xff, 0xff, 0x21, 0xf9, 0x04, 0x01, 0x00, 0x00, 0x00, 0x00, 0x2c, 0x00, 0x00, 0x00, 0x00,
	0x01, 0x00, 0x01, 0x00, 0x00, 0x02, 0x02, 0x44, 0x01, 0x00, 0x3b,
}

// TrackViewRequest 访问上报请求
type TrackViewRequest struct {
	PostID       uint                 `json:"post_id"`
	ClientIP     string               `json:"client_ip"`
	UserAgent    *string              `json:"user_agent"`
	Referrer     string               `json:"referrer"`
	Timestamp    *time.Time           `json:"timestamp"`
	PostLanguage string               `json:"post_language"`
	Headers      *TrackHeadersRequest `json:"headers"`
}

// TrackHeadersRequest 调用方转发的请求头
type TrackHeadersRequest struct {
	Accept         string `json:"accept"`
	AcceptLanguage string `json:"accept_language"`
	AcceptEncoding string `json:"accept_encoding"`
	DNT            string `json:"dnt"`
}

// TrackView 上报一次文章访问
//
// 可信转发方携带 client_ip 时视为服务端转发，只使用请求体中的字段；
// 否则视为浏览器直接上报，client_ip 被忽略，缺省字段取自当前请求。
// timestamp 只接受可信转发方的值，其余调用一律按服务端当前时间计。
func (h *Handler) TrackView(c *gin.Context) {
	var req TrackViewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", nil)
		return
	}
	input := h.buildViewInput(c, req)
	if err := h.ClickService.RecordView(c.Request.Context(), input); err != nil {
		respondTrackError(c, err)
		return
	}
	response.Accepted(c)
}

// TrackPixel 图片信标上报，无论结果如何都返回透明 GIF
func (h *Handler) TrackPixel(c *gin.Context) {
	defer writePixel(c)

	postID, err := strconv.ParseUint(strings.TrimSpace(c.Query("post_id")), 10, 64)
	if err != nil || postID == 0 {
		requestLog(c).Debugw("track_pixel_invalid_post_id", "post_id", c.Query("post_id"))
		return
	}
	input := h.buildViewInput(c, TrackViewRequest{
		PostID:       uint(postID),
		Referrer:     c.Query("ref"),
		PostLanguage: c.Query("lang"),
	})
	if err := h.ClickService.RecordView(c.Request.Context(), input); err != nil {
		if errors.Is(err, service.ErrInvalidView) {
			requestLog(c).Debugw("track_pixel_invalid_view", "post_id", postID, "error", err)
			return
		}
		requestLog(c).Warnw("track_pixel_record_failed", "post_id", postID, "error", err)
	}
}

func (h *Handler) buildViewInput(c *gin.Context, req TrackViewRequest) service.ViewInput {
	input := service.ViewInput{
		PostID:       req.PostID,
		Referrer:     req.Referrer,
		PostLanguage: req.PostLanguage,
	}
	forwarder := h.Forwarders.Contains(c.Request.RemoteAddr)
	if req.Timestamp != nil {
		if forwarder {
			input.Timestamp = *req.Timestamp
		} else {
			requestLog(c).Debugw("track_timestamp_ignored", "remote_addr", c.Request.RemoteAddr)
		}
	}
	if req.Headers != nil {
		input.Headers = &service.ViewHeaders{
			Accept:         req.Headers.Accept,
			AcceptLanguage: req.Headers.AcceptLanguage,
			AcceptEncoding: req.Headers.AcceptEncoding,
			DNT:            req.Headers.DNT,
		}
	}
	if req.UserAgent != nil {
		input.UserAgent = *req.UserAgent
	}

	if strings.TrimSpace(req.ClientIP) != "" {
		if forwarder {
			input.ClientIP = req.ClientIP
			return input
		}
		requestLog(c).Debugw("track_client_ip_ignored", "remote_addr", c.Request.RemoteAddr)
	}

	// 浏览器直接上报
	resolved := handlershared.ClientResolution(c)
	input.ClientIP = resolved.IP
	input.ViaTrustedProxy = resolved.ViaTrustedProxy
	if req.UserAgent == nil {
		input.UserAgent = c.Request.UserAgent()
	}
	if input.Headers == nil {
		input.Headers = &service.ViewHeaders{
			Accept:         c.GetHeader("Accept"),
			AcceptLanguage: c.GetHeader("Accept-Language"),
			AcceptEncoding: c.GetHeader("Accept-Encoding"),
			DNT:            c.GetHeader("DNT"),
		}
	}
	return input
}

func writePixel(c *gin.Context) {
	c.Header("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
	c.Header("Pragma", "no-cache")
	c.Data(http.StatusOK, "image/gif", transparentGIF)
}
