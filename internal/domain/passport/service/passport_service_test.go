package service

import (
	"context"
	"testing"
	"time"

	"wechat_gateway/internal/pkg/config"
	"wechat_gateway/internal/wechat"
	"wechat_gateway/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockAuth struct {
	mock.Mock
}

func (m *mockAuth) GetOpenID(ctx context.Context, code string) (*wechat.SessionInfo, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*wechat.SessionInfo), args.Error(1)
}

func (m *mockAuth) GetUserInfo(ctx context.Context, code, lang string) (*wechat.UserInfo, error) {
	args := m.Called(ctx, code, lang)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*wechat.UserInfo), args.Error(1)
}

func setupTestJWT(t *testing.T) {
	t.Helper()
	old := config.GlobalConfig.JWT
	config.GlobalConfig.JWT = config.JWTConfig{
		Secret: "unit-test-secret-key-0123456789abcdef",
		Expire: 24,
	}
	t.Cleanup(func() { config.GlobalConfig.JWT = old })
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("Success issues a parsable token", func(t *testing.T) {
		setupTestJWT(t)

		auth := new(mockAuth)
		auth.On("GetOpenID", ctx, "js-code").Return(&wechat.SessionInfo{
			OpenID:  "o123",
			UnionID: "u456",
		}, nil)

		svc := NewPassportService(auth)
		res, err := svc.Login(ctx, "js-code")

		assert.NoError(t, err)
		assert.Equal(t, "o123", res.OpenID)
		assert.Equal(t, "u456", res.UnionID)
		assert.True(t, res.ExpireAt.After(time.Now()))

		claims, err := utils.ParseToken(res.Token)
		assert.NoError(t, err)
		assert.Equal(t, "o123", claims.OpenID)
	})

	t.Run("Code exchange failure propagates", func(t *testing.T) {
		setupTestJWT(t)

		auth := new(mockAuth)
		auth.On("GetOpenID", ctx, "bad-code").
			Return(nil, &wechat.PlatformError{Code: 40029, Msg: "invalid code"})

		svc := NewPassportService(auth)
		_, err := svc.Login(ctx, "bad-code")

		var perr *wechat.PlatformError
		assert.ErrorAs(t, err, &perr)
		assert.EqualValues(t, 40029, perr.Code)
	})
}

func TestPassportGetUserInfo(t *testing.T) {
	ctx := context.Background()

	t.Run("Delegates to the platform client", func(t *testing.T) {
		auth := new(mockAuth)
		auth.On("GetUserInfo", ctx, "oauth-code", "en").
			Return(&wechat.UserInfo{OpenID: "o123", Nickname: "Mon"}, nil)

		svc := NewPassportService(auth)
		info, err := svc.GetUserInfo(ctx, "oauth-code", "en")

		assert.NoError(t, err)
		assert.Equal(t, "Mon", info.Nickname)
		auth.AssertExpectations(t)
	})
}
