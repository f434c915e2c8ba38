package errs

import (
	"errors"
	"strconv"
	"strings"
)

// 统一业务错误码
const (
	CodeArgs         = 1001 // 参数错误
	CodeTokenInvalid = 1101 // 令牌无效/过期
	CodeRecordAbsent = 1201 // 记录不存在
	CodeRecordExist  = 1202 // 记录已存在
	CodeNotPermitted = 1301 // 无权限
	CodeInternal     = 1500 // 内部错误
)

var (
	ErrArgs          = NewCodeError(CodeArgs, "invalid argument")
	ErrTokenInvalid  = NewCodeError(CodeTokenInvalid, "token invalid or expired")
	ErrRecordAbsent  = NewCodeError(CodeRecordAbsent, "record not found")
	ErrRecordIsExist = NewCodeError(CodeRecordExist, "record already exists")
	ErrNotPermitted  = NewCodeError(CodeNotPermitted, "operation not permitted")
	ErrInternal      = NewCodeError(CodeInternal, "internal error")
)

func NewCodeError(code int, msg string) CodeError {
	return CodeError{
		Code: code,
		Msg:  msg,
	}
}

type CodeError struct {
	Code   int    `json:"code"`
	Msg    string `json:"msg"`
	Detail string `json:"detail,omitempty"`
}

func (e CodeError) WithDetail(detail string) CodeError {
	var d string
	if e.Detail == "" {
		d = detail
	} else {
		d = e.Detail + ", " + detail
	}
	return CodeError{
		Code:   e.Code,
		Msg:    e.Msg,
		Detail: d,
	}
}

func (e CodeError) Error() string {
	v := make([]string, 0, 3)
	v = append(v, strconv.Itoa(e.Code), e.Msg)
	if e.Detail != "" {
		v = append(v, e.Detail)
	}
	return strings.Join(v, " ")
}

// Is 按 Code 判定，支持 errors.Is(err, ErrXxx)
func (e CodeError) Is(err error) bool {
	var codeErr CodeError
	if !errors.As(err, &codeErr) {
		return false
	}
	return e.Code == codeErr.Code
}

// Is 判断任意 error 是否为指定业务错误
func Is(err error, target CodeError) bool {
	var codeErr CodeError
	if !errors.As(err, &codeErr) {
		return false
	}
	return codeErr.Code == target.Code
}
