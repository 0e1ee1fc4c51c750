package errno

// code=0 请求成功
// code=4xx 客户端请求错误
// code=5xx 服务器端错误
// code=2xxxx 业务处理错误码

type Errno struct {
	Code    int
	Message string
}

// Error 实现error接口
func (e *Errno) Error() string {
	return e.Message
}

var (
	OK = &Errno{Code: 200, Message: "Success"}

	ErrInvalidParam = &Errno{Code: 400, Message: "Invalid parameter"}
	ErrUnauthorized = &Errno{Code: 401, Message: "Unauthorized"}
	ErrNotFound     = &Errno{Code: 404, Message: "Not found"}

	ErrInternalServer = &Errno{Code: 500, Message: "Internal server error"}
	ErrDatabase       = &Errno{Code: 501, Message: "Database error"}
	ErrUnknown        = &Errno{Code: 510, Message: "Unknown error"}

	// 业务错误码
	ErrMissingParam          = &Errno{Code: 20001, Message: "Missing required parameter"}
	ErrJobNotFound           = &Errno{Code: 20002, Message: "Gift video job not found"}
	ErrInvalidJobStatus      = &Errno{Code: 20003, Message: "Invalid job status"}
	ErrQueueFull             = &Errno{Code: 20004, Message: "Compose queue is full"}
	ErrSourcePathRequired    = &Errno{Code: 20005, Message: "Source video path is required"}
	ErrGiftUUIDRequired      = &Errno{Code: 20006, Message: "Gift UUID is required"}
	ErrChildUUIDRequired     = &Errno{Code: 20007, Message: "Child UUID is required"}
	ErrJobUUIDRequired       = &Errno{Code: 20008, Message: "Job UUID is required"}
	ErrJobNotReady           = &Errno{Code: 20009, Message: "Gift video job has no composited output yet"}
	ErrRecipientsRequired    = &Errno{Code: 20010, Message: "At least one recipient is required"}
	ErrUnsupportedChannel    = &Errno{Code: 20011, Message: "Unsupported delivery channel"}
	ErrTrackingTokenRequired = &Errno{Code: 20012, Message: "Tracking token is required"}
	ErrVideoExpired          = &Errno{Code: 20013, Message: "Gift video is no longer available"}
	ErrStorageUnavailable    = &Errno{Code: 20014, Message: "Artifact storage unavailable"}
)
