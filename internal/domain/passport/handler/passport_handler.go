package handler

import (
	"net/http"

	"wechat_gateway/internal/domain/passport/service"
	"wechat_gateway/internal/pkg/common"
	"wechat_gateway/pkg/response"

	"github.com/gin-gonic/gin"
)

type PassportHandler struct {
	service service.PassportService
}

func NewPassportHandler(s service.PassportService) *PassportHandler {
	return &PassportHandler{service: s}
}

type LoginInput struct {
	Code string `json:"code" binding:"required"`
}

// Login 小程序登录，code 换 openid 并签发会话 Token
func (h *PassportHandler) Login(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	result, err := h.service.Login(c.Request.Context(), input.Code)
	if err != nil {
		common.WriteWechatError(c, err)
		return
	}

	response.Success(c, result)
}

// GetUserInfo 网页授权拉取用户资料
func (h *PassportHandler) GetUserInfo(c *gin.Context) {
	code := c.Query("code")
	if code == "" {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, "code is required")
		return
	}

	info, err := h.service.GetUserInfo(c.Request.Context(), code, c.Query("lang"))
	if err != nil {
		common.WriteWechatError(c, err)
		return
	}

	response.Success(c, info)
}
