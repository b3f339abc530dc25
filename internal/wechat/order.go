package wechat

import (
	"context"
	"strconv"
	"time"

	"wechat_gateway/pkg/utils"
)

// 交易类型
const (
	TradeTypeJsAPI = "JSAPI" // 小程序/公众号内支付
	TradeTypeMWeb  = "MWEB"  // 移动端浏览器 h5 支付
)

// OrderRequest 统一下单请求
type OrderRequest struct {
	TradeType  string
	OutTradeNo string // 商户订单号
	Body       string // 商品描述
	TotalFee   int    // 金额，单位分，整数
	ClientIP   string // 发起支付请求的 IP，h5 为客户端 IP，其余为服务端 IP
	OpenID     string // JSAPI 必填，MWEB 留空
	NotifyURL  string
	NonceStr   string // 留空时自动生成
}

// OrderResult 平台返回的下单结果，键名全部大写，收到后不再修改
type OrderResult map[string]string

// PrepayID 预支付交易会话标识
func (r OrderResult) PrepayID() string {
	return r["PREPAY_ID"]
}

// MwebURL h5 支付跳转链接
func (r OrderResult) MwebURL() string {
	return r["MWEB_URL"]
}

// PayPackage JSAPI 拉起支付的前端参数包
type PayPackage struct {
	TimeStamp  string `json:"timeStamp"`
	NonceStr   string `json:"nonceStr"`
	Package    string `json:"package"` // prepay_id=xxx
	SignType   string `json:"signType"`
	PaySign    string `json:"paySign"`
	OutTradeNo string `json:"out_trade_no"`
}

// UnifiedOrder 统一下单
// 参数集、签名、XML 元素三者保持同一成员顺序；
// RETURN_CODE 与 RESULT_CODE 同时为 SUCCESS 才算成功。
func (c *Client) UnifiedOrder(ctx context.Context, req OrderRequest) (OrderResult, error) {
	if req.Body == "" {
		return nil, &ValidationError{Msg: "body is required"}
	}
	if req.OutTradeNo == "" {
		return nil, &ValidationError{Msg: "out_trade_no is required"}
	}
	if req.TotalFee < 0 {
		return nil, &ValidationError{Msg: "total_fee must be a non-negative integer in fen"}
	}
	if req.TradeType == TradeTypeJsAPI && req.OpenID == "" {
		return nil, &ValidationError{Msg: "openid is required for JSAPI trade type"}
	}
	if req.NonceStr == "" {
		req.NonceStr = utils.RandString(32)
	}

	totalFee := strconv.Itoa(req.TotalFee)

	// 签名参数按字典序成员顺序组装，空 openid 不参与签名
	params := map[string]string{
		"appid":            c.cfg.AppID,
		"body":             req.Body,
		"mch_id":           c.cfg.MchID,
		"nonce_str":        req.NonceStr,
		"notify_url":       req.NotifyURL,
		"out_trade_no":     req.OutTradeNo,
		"spbill_create_ip": req.ClientIP,
		"total_fee":        totalFee,
		"trade_type":       req.TradeType,
	}
	if req.OpenID != "" {
		params["openid"] = req.OpenID
	}
	sign := MakeSign(params, c.cfg.MchKey)

	// 请求体元素与签名顺序一致，值原样写入，total_fee 为纯整数
	body := buildRequestXML([]xmlField{
		{"appid", c.cfg.AppID},
		{"body", req.Body},
		{"mch_id", c.cfg.MchID},
		{"nonce_str", req.NonceStr},
		{"notify_url", req.NotifyURL},
		{"openid", req.OpenID},
		{"out_trade_no", req.OutTradeNo},
		{"spbill_create_ip", req.ClientIP},
		{"total_fee", totalFee},
		{"trade_type", req.TradeType},
		{"sign", sign},
	})

	raw, err := c.http.postXML(ctx, "prepay", c.api["prepay"], body)
	if err != nil {
		return nil, err
	}
	res, err := parseXMLToMap(raw)
	if err != nil {
		return nil, &TransportError{Op: "prepay", Err: err}
	}

	if res["RETURN_CODE"] == "SUCCESS" && res["RESULT_CODE"] == "SUCCESS" {
		return OrderResult(res), nil
	}
	msg := res["RETURN_MSG"]
	if msg == "" {
		msg = "unified order failed"
	}
	return nil, &PlatformError{Msg: msg}
}

// PayViaApp JSAPI 发起支付
// 下单成功后对 {appId, nonceStr, package, signType, timeStamp} 二次签名，
// 返回可直接交给 wx.requestPayment 的参数包。
func (c *Client) PayViaApp(ctx context.Context, body string, totalFee int, outTradeNo, openID, notifyURL string) (*PayPackage, error) {
	if openID == "" {
		return nil, &ValidationError{Msg: "openid is required for JSAPI pay"}
	}
	if notifyURL == "" {
		notifyURL = c.cfg.NotifyURL
	}

	nonceStr := utils.RandString(32)
	orders, err := c.UnifiedOrder(ctx, OrderRequest{
		TradeType:  TradeTypeJsAPI,
		OutTradeNo: outTradeNo,
		Body:       body,
		TotalFee:   totalFee,
		ClientIP:   c.cfg.ServerIP,
		OpenID:     openID,
		NotifyURL:  notifyURL,
		NonceStr:   nonceStr,
	})
	if err != nil {
		return nil, err
	}

	timeStamp := strconv.FormatInt(time.Now().Unix(), 10)
	pkg := "prepay_id=" + orders.PrepayID()
	paySign := MakeSign(map[string]string{
		"appId":     c.cfg.AppID,
		"nonceStr":  nonceStr,
		"package":   pkg,
		"signType":  "MD5",
		"timeStamp": timeStamp,
	}, c.cfg.MchKey)

	return &PayPackage{
		TimeStamp:  timeStamp,
		NonceStr:   nonceStr,
		Package:    pkg,
		SignType:   "MD5",
		PaySign:    paySign,
		OutTradeNo: outTradeNo,
	}, nil
}

// PayViaWeb h5 支付
// clientIP 必须是终端用户 IP，由接入的 web 层显式传入。
// 直接返回下单结果，跳转链接在 MWEB_URL 里。
func (c *Client) PayViaWeb(ctx context.Context, body string, totalFee int, outTradeNo, notifyURL, clientIP string) (OrderResult, error) {
	if clientIP == "" {
		return nil, &ValidationError{Msg: "client ip is required for MWEB pay"}
	}
	if notifyURL == "" {
		notifyURL = c.cfg.NotifyURL
	}

	return c.UnifiedOrder(ctx, OrderRequest{
		TradeType:  TradeTypeMWeb,
		OutTradeNo: outTradeNo,
		Body:       body,
		TotalFee:   totalFee,
		ClientIP:   clientIP,
		NotifyURL:  notifyURL,
	})
}

// QueryOrder 查询订单是否已支付
// 两个订单号最多传一个生效，商户订单号优先；都为空直接报参数错误。
// 未支付与订单不存在不作区分，统一返回固定提示。
func (c *Client) QueryOrder(ctx context.Context, outTradeNo, transactionID string) error {
	if outTradeNo == "" && transactionID == "" {
		return &ValidationError{Msg: "either out_trade_no or transaction_id is required"}
	}

	nonceStr := utils.RandString(32)
	params := map[string]string{
		"appid":     c.cfg.AppID,
		"mch_id":    c.cfg.MchID,
		"nonce_str": nonceStr,
	}
	fields := []xmlField{
		{"appid", c.cfg.AppID},
		{"mch_id", c.cfg.MchID},
		{"nonce_str", nonceStr},
	}
	if outTradeNo != "" {
		params["out_trade_no"] = outTradeNo
		fields = append(fields, xmlField{"out_trade_no", outTradeNo})
	} else {
		params["transaction_id"] = transactionID
		fields = append(fields, xmlField{"transaction_id", transactionID})
	}
	fields = append(fields, xmlField{"sign", MakeSign(params, c.cfg.MchKey)})

	raw, err := c.http.postXML(ctx, "query_order", c.api["query_order"], buildRequestXML(fields))
	if err != nil {
		return err
	}
	res, err := parseXMLToMap(raw)
	if err != nil {
		return &TransportError{Op: "query_order", Err: err}
	}

	if res["RETURN_CODE"] == "SUCCESS" && res["RESULT_CODE"] == "SUCCESS" {
		return nil
	}
	return &PlatformError{Msg: "order not paid or does not exist"}
}
