package httpx

var (
	Failed = failed(500, "request failed")

	Unauthorized           = failed(4001, "unauthorized")
	AuthorizationIncorrect = failed(4002, "The auth format in the request header is incorrect")
	AuthorizationEmpty     = failed(4003, "Authorization is empty")
	TokenInvalid           = failed(4004, "Token is invalid")
	TokenBeEmpty           = failed(4005, "Token is empty")

	NotFound           = failed(404, "resource not found")
	Conflict           = failed(409, "resource already exists")
	BadRequest         = failed(400, "invalid request")
	ServiceUnavailable = failed(503, "service unavailable")

	InternalError = failed(500, "internal error, please contact the administrator")
)

var (
	Success = success(200, "success")
)

func failed(code int, msg string) *Response {
	return &Response{
		Code:   code,
		Msg:    msg,
		Detail: nil,
	}
}

func success(code int, msg string) *Response {
	return &Response{
		Code:   code,
		Msg:    msg,
		Detail: nil,
	}
}
