package payment

import (
	"wechat_gateway/internal/domain/payment/handler"
	"wechat_gateway/internal/domain/payment/service"
	"wechat_gateway/internal/pkg/config"
	"wechat_gateway/internal/pkg/middleware"
	"wechat_gateway/internal/pkg/registry"
	"wechat_gateway/internal/pkg/worker"
	"wechat_gateway/pkg/logger"

	"github.com/gin-gonic/gin"
)

// PaymentModule 支付模块
type PaymentModule struct{}

func init() {
	registry.Register(&PaymentModule{})
}

func (m *PaymentModule) Name() string {
	return "payment"
}

func (m *PaymentModule) Priority() int {
	// 支付模块依赖登录态模块，所以优先级较低
	return 20
}

func (m *PaymentModule) Init(ctx *registry.ModuleContext) error {
	// 缺少商户配置时跳过注册，其余模块不受影响
	cfg := config.GlobalConfig.Wechat
	if cfg.MchID == "" || cfg.MchKey == "" {
		logger.L().Warn("wechat merchant config missing, payment module disabled")
		return nil
	}

	// 1. 依赖注入
	watcher := worker.NewWatcherPool(ctx.Wechat, 2, 256)
	watcher.Start()

	pService := service.NewPaymentService(ctx.Wechat, watcher)
	pHandler := handler.NewPaymentHandler(pService)

	// 2. 路由注册
	setupRoutes(ctx.Router, pHandler)

	return nil
}

func setupRoutes(r *gin.Engine, h *handler.PaymentHandler) {
	g := r.Group("/payment")

	// h5 支付在浏览器内发起，不要求小程序登录态
	g.POST("/h5", h.PayH5)
	g.GET("/order/status", h.OrderStatus)

	// 需要鉴权的接口
	auth := g.Group("")
	auth.Use(middleware.AuthMiddleware())
	{
		auth.POST("/jsapi", h.PayJsAPI)
	}
}
