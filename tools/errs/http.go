package errs

import (
	"errors"
	"net/http"
)

// HTTPStatus 业务错误码到 HTTP 状态码
func HTTPStatus(err error) int {
	var ce CodeError
	if !errors.As(err, &ce) {
		return http.StatusInternalServerError
	}
	switch ce.Code {
	case CodeArgs, CodeRecordExist:
		return http.StatusBadRequest
	case CodeTokenInvalid, CodeNotPermitted:
		return http.StatusForbidden
	case CodeRecordAbsent:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Reply 取可序列化的错误体；非业务错误统一包成内部错误不外漏细节
func Reply(err error) CodeError {
	var ce CodeError
	if errors.As(err, &ce) {
		return ce
	}
	return ErrInternal
}
