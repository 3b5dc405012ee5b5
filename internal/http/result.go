package httpapi

// Result 统一 JSON 响应包（与管理前端的 Axios 拦截器约定一致）
// - code: 2000 = success
// - type: 'success' | 'error'
// - message: string
// - result: any
type Result[T any] struct {
	Code    int    `json:"code"`
	Type    string `json:"type"`
	Message string `json:"message"`
	Result  T      `json:"result"`
}

const (
	ResultSuccess = 2000
	ResultError   = -1
	// ResultTokenExpired 使用 code=60401 + HTTP 401（前端拦截器特殊处理）
	ResultTokenExpired = 60401

	// 下载路径的机器可读错误码：四种 not-found/错误各自独立，
	// 运维靠它区分"这台服务器为什么拿不到配置"
	ResultServerNotFound          = 40401
	ResultNoLiveConfig            = 40402
	ResultNoApplicableMapping     = 40403
	ResultPublishedVersionMissing = 50002
)

func Ok[T any](result T) Result[T] {
	return Result[T]{Code: ResultSuccess, Type: "success", Message: "ok", Result: result}
}

func Fail(message string) Result[any] {
	return Result[any]{Code: ResultError, Type: "error", Message: message, Result: nil}
}

// FailCode 带机器可读错误码的失败响应（下载路径只回错误码，不泄内部细节）
func FailCode(code int, message string) Result[any] {
	return Result[any]{Code: code, Type: "error", Message: message, Result: nil}
}
