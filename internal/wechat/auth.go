package wechat

import (
	"context"
	"time"

	"wechat_gateway/pkg/utils"
)

// SessionInfo 小程序登录态
type SessionInfo struct {
	OpenID     string `json:"openid"`
	SessionKey string `json:"session_key"`
	UnionID    string `json:"unionid,omitempty"`
}

// UserAccessToken 网页授权令牌，用户级别，不走缓存
type UserAccessToken struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	OpenID       string `json:"openid"`
	Scope        string `json:"scope"`
	ExpiresIn    int64  `json:"expires_in"`
}

// UserInfo 网页授权拉取的用户资料
type UserInfo struct {
	OpenID     string `json:"openid"`
	Nickname   string `json:"nickname"`
	Sex        int64  `json:"sex"`
	Province   string `json:"province"`
	City       string `json:"city"`
	Country    string `json:"country"`
	HeadImgURL string `json:"headimgurl"`
	UnionID    string `json:"unionid,omitempty"`
}

// JsSignature js-sdk 签名包
type JsSignature struct {
	AppID     string `json:"appId"`
	NonceStr  string `json:"nonceStr"`
	Timestamp int64  `json:"timestamp"`
	URL       string `json:"url"`
	Signature string `json:"signature"`
	RawString string `json:"rawString"`
}

// GetOpenID 小程序 code 换取用户 OpenID
func (c *Client) GetOpenID(ctx context.Context, code string) (*SessionInfo, error) {
	if code == "" {
		return nil, &ValidationError{Msg: "js_code is required"}
	}

	res, err := c.http.getJSON(ctx, "openid", c.api["openid"], map[string]string{
		"appid":      c.cfg.AppID,
		"secret":     c.cfg.Secret,
		"grant_type": "authorization_code",
		"js_code":    code,
	})
	if err != nil {
		return nil, err
	}
	if err := platformResult(res); err != nil {
		return nil, err
	}

	return &SessionInfo{
		OpenID:     asString(res["openid"]),
		SessionKey: asString(res["session_key"]),
		UnionID:    asString(res["unionid"]),
	}, nil
}

// GetAccessToken 获取小程序全局接口调用凭据
// 有效期内走缓存，过期后按平台返回的 expires_in 重新缓存
func (c *Client) GetAccessToken(ctx context.Context) (string, error) {
	return c.tokens.getOrFetch(ctx, cacheKeyAccessToken, func(ctx context.Context) (string, time.Duration, error) {
		res, err := c.http.getJSON(ctx, "access_token", c.api["access_token"], map[string]string{
			"grant_type": "client_credential",
			"appid":      c.cfg.AppID,
			"secret":     c.cfg.Secret,
		})
		if err != nil {
			return "", 0, err
		}
		if err := platformResult(res); err != nil {
			return "", 0, err
		}

		ttl := time.Duration(asInt64(res["expires_in"])) * time.Second
		return asString(res["access_token"]), ttl, nil
	})
}

// GetUserAccessToken 获取用户级网页授权令牌
func (c *Client) GetUserAccessToken(ctx context.Context, code string) (*UserAccessToken, error) {
	if code == "" {
		return nil, &ValidationError{Msg: "oauth code is required"}
	}

	res, err := c.http.getJSON(ctx, "user_access_token", c.api["user_access_token"], map[string]string{
		"appid":      c.cfg.AppID,
		"secret":     c.cfg.Secret,
		"code":       code,
		"grant_type": "authorization_code",
	})
	if err != nil {
		return nil, err
	}
	if err := platformResult(res); err != nil {
		return nil, err
	}

	return &UserAccessToken{
		AccessToken:  asString(res["access_token"]),
		RefreshToken: asString(res["refresh_token"]),
		OpenID:       asString(res["openid"]),
		Scope:        asString(res["scope"]),
		ExpiresIn:    asInt64(res["expires_in"]),
	}, nil
}

// GetUserInfo 网页授权拉取用户资料，lang 为空时取 zh_CN
func (c *Client) GetUserInfo(ctx context.Context, code, lang string) (*UserInfo, error) {
	token, err := c.GetUserAccessToken(ctx, code)
	if err != nil {
		return nil, err
	}
	if lang == "" {
		lang = "zh_CN"
	}

	res, err := c.http.getJSON(ctx, "userinfo", c.api["userinfo"], map[string]string{
		"access_token": token.AccessToken,
		"openid":       token.OpenID,
		"lang":         lang,
	})
	if err != nil {
		return nil, err
	}
	if err := platformResult(res); err != nil {
		return nil, err
	}

	return &UserInfo{
		OpenID:     asString(res["openid"]),
		Nickname:   asString(res["nickname"]),
		Sex:        asInt64(res["sex"]),
		Province:   asString(res["province"]),
		City:       asString(res["city"]),
		Country:    asString(res["country"]),
		HeadImgURL: asString(res["headimgurl"]),
		UnionID:    asString(res["unionid"]),
	}, nil
}

// GetJsAPITicket 获取 jsapi_ticket，调用微信 JS 接口的临时票据
// 依赖 GetAccessToken，自身同样走缓存
func (c *Client) GetJsAPITicket(ctx context.Context) (string, error) {
	return c.tokens.getOrFetch(ctx, cacheKeyJsTicket, func(ctx context.Context) (string, time.Duration, error) {
		token, err := c.GetAccessToken(ctx)
		if err != nil {
			return "", 0, err
		}

		res, err := c.http.getJSON(ctx, "jsapi_ticket", c.api["jsapi_ticket"], map[string]string{
			"type":         "jsapi",
			"access_token": token,
		})
		if err != nil {
			return "", 0, err
		}
		if err := platformResult(res); err != nil {
			return "", 0, err
		}

		ttl := time.Duration(asInt64(res["expires_in"])) * time.Second
		return asString(res["ticket"]), ttl, nil
	})
}

// JsSignPackage 生成 js-sdk 签名包
// url 必须是调用页面的完整 URL（含 query，不含 fragment）
func (c *Client) JsSignPackage(ctx context.Context, pageURL string) (*JsSignature, error) {
	ticket, err := c.GetJsAPITicket(ctx)
	if err != nil {
		return nil, err
	}

	nonceStr := utils.RandString(32)
	timestamp := time.Now().Unix()
	signature, rawString := JsSign(ticket, nonceStr, timestamp, pageURL)

	return &JsSignature{
		AppID:     c.cfg.AppID,
		NonceStr:  nonceStr,
		Timestamp: timestamp,
		URL:       pageURL,
		Signature: signature,
		RawString: rawString,
	}, nil
}

// CheckContent 文本内容安全检测，返回 nil 表示未检出违规
func (c *Client) CheckContent(ctx context.Context, content string) error {
	token, err := c.GetAccessToken(ctx)
	if err != nil {
		return err
	}

	url := c.api["msg_sec_check"] + "?access_token=" + token
	res, err := c.http.postJSON(ctx, "msg_sec_check", url, map[string]string{
		"content": content,
	})
	if err != nil {
		return err
	}
	return platformResult(res)
}
