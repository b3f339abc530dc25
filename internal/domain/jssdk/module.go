package jssdk

import (
	"wechat_gateway/internal/domain/jssdk/handler"
	"wechat_gateway/internal/domain/jssdk/service"
	"wechat_gateway/internal/pkg/middleware"
	"wechat_gateway/internal/pkg/registry"

	"github.com/gin-gonic/gin"
)

// JssdkModule js-sdk 模块
type JssdkModule struct{}

func init() {
	registry.Register(&JssdkModule{})
}

func (m *JssdkModule) Name() string {
	return "jssdk"
}

func (m *JssdkModule) Priority() int {
	return 30
}

func (m *JssdkModule) Init(ctx *registry.ModuleContext) error {
	// 1. 依赖注入
	jService := service.NewJssdkService(ctx.Wechat)
	jHandler := handler.NewJssdkHandler(jService)

	// 2. 路由注册
	setupRoutes(ctx.Router, jHandler)

	return nil
}

func setupRoutes(r *gin.Engine, h *handler.JssdkHandler) {
	g := r.Group("/jssdk")

	// 签名包给公众号页面使用，无登录态
	g.GET("/sign", h.Sign)

	// 内容检测要求登录态，额度有限
	auth := g.Group("")
	auth.Use(middleware.AuthMiddleware())
	{
		auth.POST("/msgcheck", h.MsgCheck)
	}
}
