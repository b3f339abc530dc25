package handler

import (
	"net/http"

	"wechat_gateway/internal/domain/payment/service"
	"wechat_gateway/internal/pkg/common"
	"wechat_gateway/internal/pkg/middleware"
	"wechat_gateway/pkg/response"

	"github.com/gin-gonic/gin"
)

type PaymentHandler struct {
	service service.PaymentService
}

func NewPaymentHandler(s service.PaymentService) *PaymentHandler {
	return &PaymentHandler{service: s}
}

type PayInput struct {
	Body     string `json:"body" binding:"required"`
	TotalFee int    `json:"total_fee" binding:"required,gt=0"` // 单位分
}

// PayJsAPI 小程序内发起支付，openid 取自登录态
func (h *PaymentHandler) PayJsAPI(c *gin.Context) {
	var input PayInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	openID := middleware.GetOpenID(c)
	if openID == "" {
		response.Error(c, http.StatusUnauthorized, response.ErrTokenInvalid, "login required")
		return
	}

	pkg, err := h.service.PayJsAPI(c.Request.Context(), openID, input.Body, input.TotalFee)
	if err != nil {
		common.WriteWechatError(c, err)
		return
	}

	response.Success(c, pkg)
}

// PayH5 h5 发起支付，spbill_create_ip 取终端用户 IP
func (h *PaymentHandler) PayH5(c *gin.Context) {
	var input PayInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	result, err := h.service.PayH5(c.Request.Context(), input.Body, input.TotalFee, c.ClientIP())
	if err != nil {
		common.WriteWechatError(c, err)
		return
	}

	response.Success(c, result)
}

// OrderStatus 查询订单支付状态
// out_trade_no 与 transaction_id 二选一，都传时商户订单号优先
func (h *PaymentHandler) OrderStatus(c *gin.Context) {
	outTradeNo := c.Query("out_trade_no")
	transactionID := c.Query("transaction_id")

	paid, err := h.service.OrderStatus(c.Request.Context(), outTradeNo, transactionID)
	if err != nil {
		common.WriteWechatError(c, err)
		return
	}

	response.Success(c, gin.H{"paid": paid})
}
