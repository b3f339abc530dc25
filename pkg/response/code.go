package response

// 业务状态码
const (
	CodeSuccess = 0
	CodeError   = 1

	// 登录态错误 100xx
	ErrLoginFailed  = 10001
	ErrTokenInvalid = 10002
	ErrNoPermission = 10003

	// 支付模块错误 200xx
	ErrOrderCreate  = 20001
	ErrOrderNotPaid = 20002
	ErrOrderQuery   = 20003

	// 微信平台错误 300xx
	ErrPlatform    = 30001
	ErrContentRisk = 30002

	// 系统错误 500xx
	ErrServerInternal  = 50001
	ErrInvalidParam    = 50002
	ErrTooManyRequests = 50003
)
