package common

import (
	"errors"
	"net/http"

	"wechat_gateway/internal/wechat"
	"wechat_gateway/pkg/response"

	"github.com/gin-gonic/gin"
)

// WriteWechatError 将客户端错误分类映射为统一响应
// 参数错误给 400，平台业务失败给 200 + 业务码，链路故障给 502
func WriteWechatError(c *gin.Context, err error) {
	var verr *wechat.ValidationError
	var perr *wechat.PlatformError
	var terr *wechat.TransportError

	switch {
	case errors.As(err, &verr):
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, verr.Msg)
	case errors.As(err, &perr):
		response.Fail(c, response.ErrPlatform, perr.Msg)
	case errors.As(err, &terr):
		response.Error(c, http.StatusBadGateway, response.ErrServerInternal, "wechat platform unreachable")
	default:
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, err.Error())
	}
}
