package passport

import (
	"wechat_gateway/internal/domain/passport/handler"
	"wechat_gateway/internal/domain/passport/service"
	"wechat_gateway/internal/pkg/registry"

	"github.com/gin-gonic/gin"
)

// PassportModule 登录态模块
type PassportModule struct{}

func init() {
	// 自动注册模块
	registry.Register(&PassportModule{})
}

func (m *PassportModule) Name() string {
	return "passport"
}

func (m *PassportModule) Priority() int {
	// 登录态模块优先级最高，支付等模块的鉴权依赖它签发的会话
	return 1
}

func (m *PassportModule) Init(ctx *registry.ModuleContext) error {
	// 1. 依赖注入
	pService := service.NewPassportService(ctx.Wechat)
	pHandler := handler.NewPassportHandler(pService)

	// 2. 路由注册
	setupRoutes(ctx.Router, pHandler)

	return nil
}

func setupRoutes(r *gin.Engine, h *handler.PassportHandler) {
	g := r.Group("/passport")
	{
		g.POST("/login", h.Login)        // 小程序登录
		g.GET("/userinfo", h.GetUserInfo) // 网页授权用户资料
	}
}
