package main

import (
	"time"

	"wechat_gateway/internal/pkg/config"
	"wechat_gateway/internal/pkg/middleware"
	"wechat_gateway/internal/pkg/registry"
	"wechat_gateway/internal/wechat"
	"wechat_gateway/pkg/cache"
	"wechat_gateway/pkg/database"
	"wechat_gateway/pkg/logger"

	// 模块自动注册
	_ "wechat_gateway/internal/domain/common"
	_ "wechat_gateway/internal/domain/jssdk"
	_ "wechat_gateway/internal/domain/passport"
	_ "wechat_gateway/internal/domain/payment"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	config.LoadConfig()

	logger.Init(config.GlobalConfig.Server.Mode)
	defer logger.Log.Sync()

	rdb := database.InitRedis()

	cfg := config.GlobalConfig.Wechat
	wx := wechat.New(wechat.Config{
		AppID:     cfg.AppID,
		Secret:    cfg.Secret,
		MchID:     cfg.MchID,
		MchKey:    cfg.MchKey,
		NotifyURL: cfg.NotifyURL,
		ServerIP:  cfg.ServerIP,
		Timeout:   time.Duration(cfg.TimeoutSeconds) * time.Second,
	}, cache.NewRedisCache(rdb), wechat.WithLogger(logger.Log))

	gin.SetMode(config.GlobalConfig.Server.Mode)
	r := gin.New()
	r.Use(
		gin.Recovery(),
		middleware.TraceMiddleware(),
		middleware.LoggerMiddleware(),
		middleware.RateLimitMiddleware(),
		cors.Default(),
	)

	if err := registry.InitModules(&registry.ModuleContext{
		Redis:  rdb,
		Router: r,
		Wechat: wx,
	}); err != nil {
		logger.Log.Fatal("failed to init modules", zap.Error(err))
	}

	addr := ":" + config.GlobalConfig.Server.Port
	logger.Log.Info("server starting", zap.String("addr", addr))
	if err := r.Run(addr); err != nil {
		logger.Log.Fatal("server exited", zap.Error(err))
	}
}
