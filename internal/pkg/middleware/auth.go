package middleware

import (
	"net/http"
	"strings"

	"wechat_gateway/pkg/response"
	"wechat_gateway/pkg/utils"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware JWT认证中间件
// 校验通过后将 openid 写入请求上下文
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
			c.Abort()
			return
		}

		// 检查格式 "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header format"})
			c.Abort()
			return
		}

		claims, err := utils.ParseToken(parts[1])
		if err != nil {
			response.Error(c, http.StatusUnauthorized, response.ErrTokenInvalid, "Invalid or expired token")
			c.Abort()
			return
		}

		c.Set("openid", claims.OpenID)
		c.Next()
	}
}

// GetOpenID 从请求上下文取出登录用户的 openid
func GetOpenID(c *gin.Context) string {
	val, _ := c.Get("openid")
	if str, ok := val.(string); ok {
		return str
	}
	return ""
}
