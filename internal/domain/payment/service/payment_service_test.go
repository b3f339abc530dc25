package service

import (
	"context"
	"testing"

	"wechat_gateway/internal/wechat"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockPayer struct {
	mock.Mock
}

func (m *mockPayer) PayViaApp(ctx context.Context, body string, totalFee int, outTradeNo, openID, notifyURL string) (*wechat.PayPackage, error) {
	args := m.Called(ctx, body, totalFee, outTradeNo, openID, notifyURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*wechat.PayPackage), args.Error(1)
}

func (m *mockPayer) PayViaWeb(ctx context.Context, body string, totalFee int, outTradeNo, notifyURL, clientIP string) (wechat.OrderResult, error) {
	args := m.Called(ctx, body, totalFee, outTradeNo, notifyURL, clientIP)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(wechat.OrderResult), args.Error(1)
}

func (m *mockPayer) QueryOrder(ctx context.Context, outTradeNo, transactionID string) error {
	args := m.Called(ctx, outTradeNo, transactionID)
	return args.Error(0)
}

func TestPayJsAPI(t *testing.T) {
	ctx := context.Background()

	t.Run("Success returns pay package", func(t *testing.T) {
		payer := new(mockPayer)
		pkg := &wechat.PayPackage{Package: "prepay_id=wx1", SignType: "MD5"}
		payer.On("PayViaApp", ctx, "t-shirt", 100, mock.AnythingOfType("string"), "openid-1", "").
			Return(pkg, nil)

		svc := NewPaymentService(payer, nil)
		got, err := svc.PayJsAPI(ctx, "openid-1", "t-shirt", 100)

		assert.NoError(t, err)
		assert.Equal(t, pkg, got)
		payer.AssertExpectations(t)
	})

	t.Run("Order failure propagates", func(t *testing.T) {
		payer := new(mockPayer)
		payer.On("PayViaApp", ctx, "t-shirt", 100, mock.AnythingOfType("string"), "openid-1", "").
			Return(nil, &wechat.PlatformError{Msg: "NOTENOUGH"})

		svc := NewPaymentService(payer, nil)
		_, err := svc.PayJsAPI(ctx, "openid-1", "t-shirt", 100)

		var perr *wechat.PlatformError
		assert.ErrorAs(t, err, &perr)
	})
}

func TestPayH5(t *testing.T) {
	ctx := context.Background()

	t.Run("Success returns order no and redirect url", func(t *testing.T) {
		payer := new(mockPayer)
		payer.On("PayViaWeb", ctx, "t-shirt", 100, mock.AnythingOfType("string"), "", "203.0.113.9").
			Return(wechat.OrderResult{"MWEB_URL": "https://wx.tenpay.com/pay"}, nil)

		svc := NewPaymentService(payer, nil)
		res, err := svc.PayH5(ctx, "t-shirt", 100, "203.0.113.9")

		assert.NoError(t, err)
		assert.NotEmpty(t, res.OutTradeNo)
		assert.Equal(t, "https://wx.tenpay.com/pay", res.MwebURL)
	})
}

func TestOrderStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("No error means paid", func(t *testing.T) {
		payer := new(mockPayer)
		payer.On("QueryOrder", ctx, "1001", "").Return(nil)

		svc := NewPaymentService(payer, nil)
		paid, err := svc.OrderStatus(ctx, "1001", "")

		assert.NoError(t, err)
		assert.True(t, paid)
	})

	t.Run("Platform error means unpaid, not failure", func(t *testing.T) {
		payer := new(mockPayer)
		payer.On("QueryOrder", ctx, "1001", "").
			Return(&wechat.PlatformError{Msg: "order not paid or does not exist"})

		svc := NewPaymentService(payer, nil)
		paid, err := svc.OrderStatus(ctx, "1001", "")

		assert.NoError(t, err)
		assert.False(t, paid)
	})

	t.Run("Transport error bubbles up", func(t *testing.T) {
		payer := new(mockPayer)
		payer.On("QueryOrder", ctx, "1001", "").
			Return(&wechat.TransportError{Op: "query_order", Err: assert.AnError})

		svc := NewPaymentService(payer, nil)
		_, err := svc.OrderStatus(ctx, "1001", "")

		var terr *wechat.TransportError
		assert.ErrorAs(t, err, &terr)
	})
}
