package errno

import "fmt"

// BizError 业务错误，携带错误码和底层原因
type BizError struct {
	Errno *Errno
	Cause error
}

// NewBizError 用错误码包装底层错误
func NewBizError(errno *Errno, cause error) *BizError {
	return &BizError{Errno: errno, Cause: cause}
}

func (e *BizError) Error() string {
	if e.Cause == nil {
		return e.Errno.Message
	}
	return fmt.Sprintf("%s: %v", e.Errno.Message, e.Cause)
}

// Unwrap 支持errors.Is/As
func (e *BizError) Unwrap() error {
	return e.Cause
}

// DecodeErr 解析错误为错误码和消息
func DecodeErr(err error) (int, string) {
	if err == nil {
		return OK.Code, OK.Message
	}
	switch typed := err.(type) {
	case *BizError:
		return typed.Errno.Code, typed.Error()
	case *Errno:
		return typed.Code, typed.Message
	}
	return ErrInternalServer.Code, err.Error()
}
