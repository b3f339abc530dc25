package wechat

import (
	"strconv"
	"time"

	"wechat_gateway/pkg/cache"

	"go.uber.org/zap"
)

// Config 客户端凭证
// MchID/MchKey 仅支付相关操作需要
type Config struct {
	AppID     string
	Secret    string
	MchID     string
	MchKey    string
	NotifyURL string        // 默认支付回调地址
	ServerIP  string        // JSAPI 下单填写的服务端 IP
	Timeout   time.Duration // 平台接口超时，零值取 10s
}

// 相关接口，固定 HTTPS 地址
var defaultEndpoints = map[string]string{
	"openid":            "https://api.weixin.qq.com/sns/jscode2session",
	"access_token":      "https://api.weixin.qq.com/cgi-bin/token",
	"user_access_token": "https://api.weixin.qq.com/sns/oauth2/access_token",
	"userinfo":          "https://api.weixin.qq.com/sns/userinfo",
	"msg_sec_check":     "https://api.weixin.qq.com/wxa/msg_sec_check",
	"prepay":            "https://api.mch.weixin.qq.com/pay/unifiedorder",
	"query_order":       "https://api.mch.weixin.qq.com/pay/orderquery",
	"jsapi_ticket":      "https://api.weixin.qq.com/cgi-bin/ticket/getticket",
}

// Client 微信小程序/支付客户端
// 无内部可变状态（令牌缓存除外），可被并发使用
type Client struct {
	cfg    Config
	api    map[string]string
	http   transport
	tokens *tokenCache
	log    *zap.Logger
}

type Option func(*Client)

// WithEndpoint 覆盖单个平台接口地址（测试用）
func WithEndpoint(name, url string) Option {
	return func(c *Client) {
		c.api[name] = url
	}
}

// WithLogger 指定日志实例
func WithLogger(log *zap.Logger) Option {
	return func(c *Client) {
		c.log = log
	}
}

// withTransport 替换出站 HTTP 实现（测试用）
func withTransport(t transport) Option {
	return func(c *Client) {
		c.http = t
	}
}

// New 创建客户端，store 承载令牌缓存
func New(cfg Config, store cache.CacheService, opts ...Option) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	api := make(map[string]string, len(defaultEndpoints))
	for name, url := range defaultEndpoints {
		api[name] = url
	}

	c := &Client{
		cfg: cfg,
		api: api,
		log: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = newRestyTransport(cfg.Timeout)
	}
	c.tokens = newTokenCache(store, c.log)
	return c
}

// platformResult 检查 JSON 接口的 errcode，非 0 返回 PlatformError
func platformResult(res map[string]interface{}) error {
	v, ok := res["errcode"]
	if !ok {
		return nil
	}
	code := asInt64(v)
	if code == 0 {
		return nil
	}
	msg := asString(res["errmsg"])
	if msg == "" {
		msg = "unknown platform error"
	}
	return &PlatformError{Code: code, Msg: msg}
}

func asString(v interface{}) string {
	s, _ := v.(string)
	return s
}

// asInt64 JSON 数字反序列化为 float64，平台偶有字符串数字
func asInt64(v interface{}) int64 {
	switch n := v.(type) {
	case float64:
		return int64(n)
	case int64:
		return n
	case int:
		return int64(n)
	case string:
		parsed, _ := strconv.ParseInt(n, 10, 64)
		return parsed
	}
	return 0
}
