package service

import (
	"context"
	"time"

	"wechat_gateway/internal/wechat"
	"wechat_gateway/pkg/utils"
)

// WechatAuth 登录依赖的微信客户端能力
type WechatAuth interface {
	GetOpenID(ctx context.Context, code string) (*wechat.SessionInfo, error)
	GetUserInfo(ctx context.Context, code, lang string) (*wechat.UserInfo, error)
}

// LoginResult 登录结果
type LoginResult struct {
	Token    string    `json:"token"`
	ExpireAt time.Time `json:"expire_at"`
	OpenID   string    `json:"openid"`
	UnionID  string    `json:"unionid,omitempty"`
}

type PassportService interface {
	Login(ctx context.Context, jsCode string) (*LoginResult, error)
	GetUserInfo(ctx context.Context, code, lang string) (*wechat.UserInfo, error)
}

type passportService struct {
	wx WechatAuth
}

func NewPassportService(wx WechatAuth) PassportService {
	return &passportService{wx: wx}
}

// Login 小程序 code 换取登录态
// openid 不下发给前端明文使用，封装进 JWT 作为后续请求的身份
func (s *passportService) Login(ctx context.Context, jsCode string) (*LoginResult, error) {
	session, err := s.wx.GetOpenID(ctx, jsCode)
	if err != nil {
		return nil, err
	}

	token, expireAt, err := utils.GenerateToken(session.OpenID)
	if err != nil {
		return nil, err
	}

	return &LoginResult{
		Token:    token,
		ExpireAt: *expireAt,
		OpenID:   session.OpenID,
		UnionID:  session.UnionID,
	}, nil
}

// GetUserInfo 网页授权拉取用户资料
func (s *passportService) GetUserInfo(ctx context.Context, code, lang string) (*wechat.UserInfo, error) {
	return s.wx.GetUserInfo(ctx, code, lang)
}
