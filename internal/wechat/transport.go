package wechat

import (
	"context"
	"encoding/json"
	"time"

	"wechat_gateway/pkg/metrics"

	"github.com/go-resty/resty/v2"
)

// transport 平台接口的出站 HTTP 抽象
// op 是接口目录里的逻辑名，用于错误信息和指标
type transport interface {
	getJSON(ctx context.Context, op, url string, query map[string]string) (map[string]interface{}, error)
	postJSON(ctx context.Context, op, url string, body interface{}) (map[string]interface{}, error)
	postXML(ctx context.Context, op, url, body string) (string, error)
}

// restyTransport 生产实现，超时由构造时统一配置
type restyTransport struct {
	client *resty.Client
}

func newRestyTransport(timeout time.Duration) *restyTransport {
	return &restyTransport{
		client: resty.New().SetTimeout(timeout),
	}
}

func (t *restyTransport) getJSON(ctx context.Context, op, url string, query map[string]string) (map[string]interface{}, error) {
	start := time.Now()
	resp, err := t.client.R().
		SetContext(ctx).
		SetQueryParams(query).
		Get(url)
	t.observe(op, start, err)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}
	return decodeJSONBody(op, resp.Body())
}

func (t *restyTransport) postJSON(ctx context.Context, op, url string, body interface{}) (map[string]interface{}, error) {
	start := time.Now()
	resp, err := t.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		Post(url)
	t.observe(op, start, err)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}
	return decodeJSONBody(op, resp.Body())
}

func (t *restyTransport) postXML(ctx context.Context, op, url, body string) (string, error) {
	start := time.Now()
	resp, err := t.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "text/xml").
		SetBody(body).
		Post(url)
	t.observe(op, start, err)
	if err != nil {
		return "", &TransportError{Op: op, Err: err}
	}
	return string(resp.Body()), nil
}

func (t *restyTransport) observe(op string, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	metrics.Default.ObservePlatformCall(op, outcome, time.Since(start))
}

// decodeJSONBody 微信接口返回 Content-Type 常为 text/plain，手工反序列化
func decodeJSONBody(op string, body []byte) (map[string]interface{}, error) {
	result := make(map[string]interface{})
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}
	return result, nil
}
