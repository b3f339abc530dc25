package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"wechat_gateway/internal/pkg/worker"
	"wechat_gateway/internal/wechat"

	"github.com/google/uuid"
)

// WechatPayer 支付依赖的微信客户端能力
type WechatPayer interface {
	PayViaApp(ctx context.Context, body string, totalFee int, outTradeNo, openID, notifyURL string) (*wechat.PayPackage, error)
	PayViaWeb(ctx context.Context, body string, totalFee int, outTradeNo, notifyURL, clientIP string) (wechat.OrderResult, error)
	QueryOrder(ctx context.Context, outTradeNo, transactionID string) error
}

// H5PayResult h5 下单结果
type H5PayResult struct {
	OutTradeNo string `json:"out_trade_no"`
	MwebURL    string `json:"mweb_url"`
}

type PaymentService interface {
	PayJsAPI(ctx context.Context, openID, body string, totalFee int) (*wechat.PayPackage, error)
	PayH5(ctx context.Context, body string, totalFee int, clientIP string) (*H5PayResult, error)
	OrderStatus(ctx context.Context, outTradeNo, transactionID string) (bool, error)
}

type paymentService struct {
	wx      WechatPayer
	watcher *worker.WatcherPool
}

func NewPaymentService(wx WechatPayer, watcher *worker.WatcherPool) PaymentService {
	return &paymentService{wx: wx, watcher: watcher}
}

// newOrderNo 生成商户订单号
func newOrderNo() string {
	return fmt.Sprintf("%s%s", time.Now().Format("20060102150405"), uuid.New().String()[:8])
}

// PayJsAPI 小程序内支付
// 下单成功后登记轮询任务，等待前端确认支付
func (s *paymentService) PayJsAPI(ctx context.Context, openID, body string, totalFee int) (*wechat.PayPackage, error) {
	orderNo := newOrderNo()

	pkg, err := s.wx.PayViaApp(ctx, body, totalFee, orderNo, openID, "")
	if err != nil {
		return nil, err
	}

	if s.watcher != nil {
		s.watcher.Watch(orderNo)
	}
	return pkg, nil
}

// PayH5 h5 支付，clientIP 必须是终端用户 IP
func (s *paymentService) PayH5(ctx context.Context, body string, totalFee int, clientIP string) (*H5PayResult, error) {
	orderNo := newOrderNo()

	orders, err := s.wx.PayViaWeb(ctx, body, totalFee, orderNo, "", clientIP)
	if err != nil {
		return nil, err
	}

	if s.watcher != nil {
		s.watcher.Watch(orderNo)
	}
	return &H5PayResult{
		OutTradeNo: orderNo,
		MwebURL:    orders.MwebURL(),
	}, nil
}

// OrderStatus 查询订单是否已支付
// 平台侧"未支付/不存在"归为 paid=false，不作为错误上抛
func (s *paymentService) OrderStatus(ctx context.Context, outTradeNo, transactionID string) (bool, error) {
	err := s.wx.QueryOrder(ctx, outTradeNo, transactionID)
	if err == nil {
		return true, nil
	}

	var perr *wechat.PlatformError
	if errors.As(err, &perr) {
		return false, nil
	}
	return false, err
}
