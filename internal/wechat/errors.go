package wechat

import "fmt"

// PlatformError 微信平台返回了非成功的业务码
type PlatformError struct {
	Code int64  // errcode，支付类 XML 接口没有数字码时为 0
	Msg  string // 平台返回的 errmsg / return_msg
}

func (e *PlatformError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("wechat platform error %d: %s", e.Code, e.Msg)
	}
	return "wechat platform error: " + e.Msg
}

// TransportError 网络失败、超时或响应体无法解析
type TransportError struct {
	Op  string // 出错的接口名
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("wechat transport error (%s): %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ValidationError 调用方参数组合非法，在发起网络请求前返回
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return "wechat validation error: " + e.Msg
}
