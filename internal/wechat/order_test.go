package wechat

import (
	"context"
	"strings"
	"testing"

	"wechat_gateway/pkg/cache"

	"github.com/stretchr/testify/assert"
)

// fakeTransport 进程内替身，记录请求并返回预置响应
type fakeTransport struct {
	lastOp   string
	lastBody string
	xmlResp  string
	jsonResp map[string]interface{}
	err      error
	calls    int
}

func (f *fakeTransport) getJSON(ctx context.Context, op, url string, query map[string]string) (map[string]interface{}, error) {
	f.calls++
	f.lastOp = op
	return f.jsonResp, f.err
}

func (f *fakeTransport) postJSON(ctx context.Context, op, url string, body interface{}) (map[string]interface{}, error) {
	f.calls++
	f.lastOp = op
	return f.jsonResp, f.err
}

func (f *fakeTransport) postXML(ctx context.Context, op, url, body string) (string, error) {
	f.calls++
	f.lastOp = op
	f.lastBody = body
	return f.xmlResp, f.err
}

func newTestClient(ft *fakeTransport) *Client {
	return New(Config{
		AppID:     "wxapp",
		Secret:    "secret",
		MchID:     "mch001",
		MchKey:    "merchantkey",
		NotifyURL: "https://example.com/notify",
		ServerIP:  "10.0.0.1",
	}, cache.NewMemoryCache(), withTransport(ft))
}

const orderSuccessXML = `<xml>
	<return_code><![CDATA[SUCCESS]]></return_code>
	<result_code><![CDATA[SUCCESS]]></result_code>
	<prepay_id><![CDATA[wxprepay123]]></prepay_id>
</xml>`

func TestUnifiedOrder(t *testing.T) {
	ctx := context.Background()

	baseReq := func() OrderRequest {
		return OrderRequest{
			TradeType:  TradeTypeMWeb,
			OutTradeNo: "1001",
			Body:       "t-shirt",
			TotalFee:   100,
			ClientIP:   "1.2.3.4",
			NotifyURL:  "https://x/cb",
			NonceStr:   "abc",
		}
	}

	t.Run("Success requires both codes", func(t *testing.T) {
		ft := &fakeTransport{xmlResp: orderSuccessXML}
		c := newTestClient(ft)

		res, err := c.UnifiedOrder(ctx, baseReq())
		assert.NoError(t, err)
		assert.Equal(t, "wxprepay123", res.PrepayID())
		assert.Equal(t, "prepay", ft.lastOp)
	})

	t.Run("Request XML carries ordered fields and signature", func(t *testing.T) {
		ft := &fakeTransport{xmlResp: orderSuccessXML}
		c := newTestClient(ft)

		_, err := c.UnifiedOrder(ctx, baseReq())
		assert.NoError(t, err)

		expectedSign := MakeSign(map[string]string{
			"appid":            "wxapp",
			"body":             "t-shirt",
			"mch_id":           "mch001",
			"nonce_str":        "abc",
			"notify_url":       "https://x/cb",
			"out_trade_no":     "1001",
			"spbill_create_ip": "1.2.3.4",
			"total_fee":        "100",
			"trade_type":       "MWEB",
		}, "merchantkey")

		assert.Contains(t, ft.lastBody, "<sign>"+expectedSign+"</sign>")
		assert.Contains(t, ft.lastBody, "<total_fee>100</total_fee>")
		// 元素顺序与签名参数顺序一致
		assert.Less(t,
			strings.Index(ft.lastBody, "<appid>"),
			strings.Index(ft.lastBody, "<body>"))
		assert.Less(t,
			strings.Index(ft.lastBody, "<total_fee>"),
			strings.Index(ft.lastBody, "<trade_type>"))
	})

	t.Run("Return success with result fail is an error", func(t *testing.T) {
		ft := &fakeTransport{xmlResp: `<xml>
			<return_code><![CDATA[SUCCESS]]></return_code>
			<result_code><![CDATA[FAIL]]></result_code>
			<return_msg><![CDATA[ORDERPAID]]></return_msg>
		</xml>`}
		c := newTestClient(ft)

		_, err := c.UnifiedOrder(ctx, baseReq())
		var perr *PlatformError
		assert.ErrorAs(t, err, &perr)
		assert.Equal(t, "ORDERPAID", perr.Msg)
	})

	t.Run("JSAPI without openid fails before network", func(t *testing.T) {
		ft := &fakeTransport{xmlResp: orderSuccessXML}
		c := newTestClient(ft)

		req := baseReq()
		req.TradeType = TradeTypeJsAPI
		_, err := c.UnifiedOrder(ctx, req)

		var verr *ValidationError
		assert.ErrorAs(t, err, &verr)
		assert.Zero(t, ft.calls)
	})

	t.Run("Negative total fee fails before network", func(t *testing.T) {
		ft := &fakeTransport{}
		c := newTestClient(ft)

		req := baseReq()
		req.TotalFee = -1
		_, err := c.UnifiedOrder(ctx, req)

		var verr *ValidationError
		assert.ErrorAs(t, err, &verr)
		assert.Zero(t, ft.calls)
	})

	t.Run("Unparseable response is a transport error", func(t *testing.T) {
		ft := &fakeTransport{xmlResp: "<html>bad gateway</html"}
		c := newTestClient(ft)

		_, err := c.UnifiedOrder(ctx, baseReq())
		var terr *TransportError
		assert.ErrorAs(t, err, &terr)
	})
}

func TestPayViaApp(t *testing.T) {
	ctx := context.Background()

	t.Run("Builds signed pay package", func(t *testing.T) {
		ft := &fakeTransport{xmlResp: orderSuccessXML}
		c := newTestClient(ft)

		pkg, err := c.PayViaApp(ctx, "t-shirt", 100, "1001", "openid-1", "")
		assert.NoError(t, err)
		assert.Equal(t, "prepay_id=wxprepay123", pkg.Package)
		assert.Equal(t, "MD5", pkg.SignType)
		assert.Equal(t, "1001", pkg.OutTradeNo)

		// 二次签名可用返回的字段重算验证
		expected := MakeSign(map[string]string{
			"appId":     "wxapp",
			"nonceStr":  pkg.NonceStr,
			"package":   pkg.Package,
			"signType":  "MD5",
			"timeStamp": pkg.TimeStamp,
		}, "merchantkey")
		assert.Equal(t, expected, pkg.PaySign)

		// 统一下单使用服务端 IP
		assert.Contains(t, ft.lastBody, "<spbill_create_ip>10.0.0.1</spbill_create_ip>")
	})

	t.Run("Empty openid fails before network", func(t *testing.T) {
		ft := &fakeTransport{}
		c := newTestClient(ft)

		_, err := c.PayViaApp(ctx, "t-shirt", 100, "1001", "", "")
		var verr *ValidationError
		assert.ErrorAs(t, err, &verr)
		assert.Zero(t, ft.calls)
	})

	t.Run("Order failure propagates", func(t *testing.T) {
		ft := &fakeTransport{xmlResp: `<xml>
			<return_code><![CDATA[FAIL]]></return_code>
			<return_msg><![CDATA[INVALID_REQUEST]]></return_msg>
		</xml>`}
		c := newTestClient(ft)

		_, err := c.PayViaApp(ctx, "t-shirt", 100, "1001", "openid-1", "")
		var perr *PlatformError
		assert.ErrorAs(t, err, &perr)
		assert.Equal(t, "INVALID_REQUEST", perr.Msg)
	})
}

func TestPayViaWeb(t *testing.T) {
	ctx := context.Background()

	t.Run("Returns raw order result with redirect url", func(t *testing.T) {
		ft := &fakeTransport{xmlResp: `<xml>
			<return_code><![CDATA[SUCCESS]]></return_code>
			<result_code><![CDATA[SUCCESS]]></result_code>
			<prepay_id><![CDATA[wxprepay123]]></prepay_id>
			<mweb_url><![CDATA[https://wx.tenpay.com/cgi-bin/mmpayweb?prepay_id=wxprepay123]]></mweb_url>
		</xml>`}
		c := newTestClient(ft)

		res, err := c.PayViaWeb(ctx, "t-shirt", 100, "1001", "", "203.0.113.9")
		assert.NoError(t, err)
		assert.Contains(t, res.MwebURL(), "wx.tenpay.com")

		// h5 使用终端用户 IP，openid 元素留空
		assert.Contains(t, ft.lastBody, "<spbill_create_ip>203.0.113.9</spbill_create_ip>")
		assert.Contains(t, ft.lastBody, "<openid></openid>")
	})

	t.Run("Missing client ip fails before network", func(t *testing.T) {
		ft := &fakeTransport{}
		c := newTestClient(ft)

		_, err := c.PayViaWeb(ctx, "t-shirt", 100, "1001", "", "")
		var verr *ValidationError
		assert.ErrorAs(t, err, &verr)
		assert.Zero(t, ft.calls)
	})
}

func TestQueryOrder(t *testing.T) {
	ctx := context.Background()

	successXML := `<xml>
		<return_code><![CDATA[SUCCESS]]></return_code>
		<result_code><![CDATA[SUCCESS]]></result_code>
		<trade_state><![CDATA[SUCCESS]]></trade_state>
	</xml>`

	t.Run("Paid order returns nil", func(t *testing.T) {
		ft := &fakeTransport{xmlResp: successXML}
		c := newTestClient(ft)

		assert.NoError(t, c.QueryOrder(ctx, "1001", ""))
		assert.Equal(t, "query_order", ft.lastOp)
	})

	t.Run("Merchant order id wins when both given", func(t *testing.T) {
		ft := &fakeTransport{xmlResp: successXML}
		c := newTestClient(ft)

		assert.NoError(t, c.QueryOrder(ctx, "1001", "wx-txn-9"))
		assert.Contains(t, ft.lastBody, "<out_trade_no>1001</out_trade_no>")
		assert.NotContains(t, ft.lastBody, "transaction_id")
	})

	t.Run("Transaction id used when merchant id missing", func(t *testing.T) {
		ft := &fakeTransport{xmlResp: successXML}
		c := newTestClient(ft)

		assert.NoError(t, c.QueryOrder(ctx, "", "wx-txn-9"))
		assert.Contains(t, ft.lastBody, "<transaction_id>wx-txn-9</transaction_id>")
	})

	t.Run("Neither id fails before network", func(t *testing.T) {
		ft := &fakeTransport{}
		c := newTestClient(ft)

		err := c.QueryOrder(ctx, "", "")
		var verr *ValidationError
		assert.ErrorAs(t, err, &verr)
		assert.Zero(t, ft.calls)
	})

	t.Run("Unpaid order returns fixed message", func(t *testing.T) {
		ft := &fakeTransport{xmlResp: `<xml>
			<return_code><![CDATA[SUCCESS]]></return_code>
			<result_code><![CDATA[FAIL]]></result_code>
			<err_code><![CDATA[ORDERNOTEXIST]]></err_code>
		</xml>`}
		c := newTestClient(ft)

		err := c.QueryOrder(ctx, "1001", "")
		var perr *PlatformError
		assert.ErrorAs(t, err, &perr)
		assert.Equal(t, "order not paid or does not exist", perr.Msg)
	})
}
