package errno

import "net/http"

// Errno defines the error code logic
type Errno struct {
	Code       int
	Message    string
	HTTPStatus int
}

func (e *Errno) Error() string {
	return e.Message
}

// WithMessage 返回一个替换了 Message 的副本 (Code 和 HTTP 状态保持不变)
func (e *Errno) WithMessage(msg string) *Errno {
	return &Errno{Code: e.Code, Message: msg, HTTPStatus: e.HTTPStatus}
}

// Is 按 Code 比较, 使 errors.Is 能识别 WithMessage 派生出的错误
func (e *Errno) Is(target error) bool {
	t, ok := target.(*Errno)
	return ok && t.Code == e.Code
}

// Decode tries to convert an error to Errno
// 返回: (HTTP 状态码, 业务码, 消息)
func Decode(err error) (int, int, string) {
	if err == nil {
		return http.StatusOK, OK.Code, OK.Message
	}

	if typed, ok := err.(*Errno); ok {
		return typed.HTTPStatus, typed.Code, typed.Message
	}
	return http.StatusInternalServerError, InternalServerError.Code, err.Error()
}

// Common Errors
var (
	OK                  = &Errno{Code: 0, Message: "Success", HTTPStatus: http.StatusOK}
	InternalServerError = &Errno{Code: 10001, Message: "Internal server error", HTTPStatus: http.StatusInternalServerError}
	ErrBind             = &Errno{Code: 10002, Message: "Error occurred while binding the request body to the struct", HTTPStatus: http.StatusBadRequest}
	ErrDatabase         = &Errno{Code: 10004, Message: "Database error", HTTPStatus: http.StatusInternalServerError}
)

// Business Errors (20000+)
// 错误分级 (见 ClaimService):
//   - 409 冲突类错误本地即可恢复, 调用方无需重试
//   - 502 网关类错误已回滚, 链接仍可再次 Claim, 可重试
//   - ErrReconcileRequired 为终态, 需要人工对账, 不可重试
var (
	ErrLinkNotFound      = &Errno{Code: 20301, Message: "Payment link not found", HTTPStatus: http.StatusNotFound}
	ErrInvalidRecipient  = &Errno{Code: 20302, Message: "Recipient address is not a valid address for the target asset", HTTPStatus: http.StatusBadRequest}
	ErrLinkNotDeposited  = &Errno{Code: 20303, Message: "Payment link has no confirmed deposit", HTTPStatus: http.StatusBadRequest}
	ErrDepositConflict   = &Errno{Code: 20304, Message: "Deposit already recorded with a different reference", HTTPStatus: http.StatusConflict}
	ErrAmountTooLow      = &Errno{Code: 20305, Message: "Amount can not cover the withdrawal fee", HTTPStatus: http.StatusBadRequest}
	ErrAlreadyClaimed    = &Errno{Code: 20306, Message: "Payment link already claimed", HTTPStatus: http.StatusConflict}
	ErrGateway           = &Errno{Code: 20307, Message: "Withdrawal gateway failure, claim rolled back, please retry", HTTPStatus: http.StatusBadGateway}
	ErrReconcileRequired = &Errno{Code: 20308, Message: "Claim failed, contact support with the link id", HTTPStatus: http.StatusInternalServerError}
)
