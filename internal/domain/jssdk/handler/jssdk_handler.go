package handler

import (
	"errors"
	"net/http"

	"wechat_gateway/internal/domain/jssdk/service"
	"wechat_gateway/internal/pkg/common"
	"wechat_gateway/internal/wechat"
	"wechat_gateway/pkg/response"

	"github.com/gin-gonic/gin"
)

type JssdkHandler struct {
	service service.JssdkService
}

func NewJssdkHandler(s service.JssdkService) *JssdkHandler {
	return &JssdkHandler{service: s}
}

// Sign 给前端页面签发 js-sdk 签名包
func (h *JssdkHandler) Sign(c *gin.Context) {
	pageURL := c.Query("url")
	if pageURL == "" {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, "url is required")
		return
	}

	sign, err := h.service.Sign(c.Request.Context(), pageURL)
	if err != nil {
		common.WriteWechatError(c, err)
		return
	}

	response.Success(c, sign)
}

type MsgCheckInput struct {
	Content string `json:"content" binding:"required"`
}

// MsgCheck 文本内容安全检测
// 检出违规返回业务码而非 HTTP 错误，前端据此提示用户
func (h *JssdkHandler) MsgCheck(c *gin.Context) {
	var input MsgCheckInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	if err := h.service.CheckContent(c.Request.Context(), input.Content); err != nil {
		var perr *wechat.PlatformError
		if errors.As(err, &perr) {
			response.Fail(c, response.ErrContentRisk, perr.Msg)
			return
		}
		common.WriteWechatError(c, err)
		return
	}

	response.Success(c, gin.H{"pass": true})
}
