package response

// 业务状态码
const (
	CodeSuccess = 0
	CodeError   = 1

	// 订单模块错误 100xx
	ErrOrderNotFound   = 10001
	ErrInvalidStatus   = 10002
	ErrUnknownCatalog  = 10003
	ErrPaymentUpstream = 10004

	// 上传模块错误 200xx
	ErrUploadNotFound  = 20001
	ErrInvalidFileType = 20002
	ErrFileTooLarge    = 20003

	// 回调错误 300xx
	ErrSignatureInvalid = 30001
	ErrMalformedEvent   = 30002

	// 鉴权错误 400xx
	ErrAuthFailed   = 40001
	ErrTokenInvalid = 40002
	ErrNoPermission = 40003

	// 系统错误 500xx
	ErrServerInternal  = 50001
	ErrInvalidParam    = 50002
	ErrTooManyRequests = 50003
)
