package service

import (
	"context"

	"wechat_gateway/internal/wechat"
)

// WechatJs js-sdk 依赖的微信客户端能力
type WechatJs interface {
	JsSignPackage(ctx context.Context, pageURL string) (*wechat.JsSignature, error)
	CheckContent(ctx context.Context, content string) error
}

type JssdkService interface {
	Sign(ctx context.Context, pageURL string) (*wechat.JsSignature, error)
	CheckContent(ctx context.Context, content string) error
}

type jssdkService struct {
	wx WechatJs
}

func NewJssdkService(wx WechatJs) JssdkService {
	return &jssdkService{wx: wx}
}

// Sign 生成 js-sdk 签名包，票据走缓存
func (s *jssdkService) Sign(ctx context.Context, pageURL string) (*wechat.JsSignature, error) {
	return s.wx.JsSignPackage(ctx, pageURL)
}

// CheckContent 文本内容安全检测
func (s *jssdkService) CheckContent(ctx context.Context, content string) error {
	return s.wx.CheckContent(ctx, content)
}
