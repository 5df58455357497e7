package response

import (
	"context"
	"net/http"

	"github.com/cloudwego/hertz/pkg/app"

	"alms/pkg/errors"
)

// ErrorResponse 统一的错误响应格式
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Details map[string]interface{} `json:"details,omitempty"`
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
}

// SuccessResponse 统一的成功响应格式
type SuccessResponse struct {
	Data interface{}            `json:"data"`
	Meta map[string]interface{} `json:"meta,omitempty"`
}

// StatusOf 业务错误到 HTTP 状态码的映射，页面渲染同样使用
func StatusOf(err error) int {
	def, ok := errors.From(err)
	if !ok {
		return http.StatusInternalServerError
	}

	switch def.Code {
	case errors.TooManyRequests.Code:
		return http.StatusTooManyRequests // 429
	case errors.AuthFailed.Code, errors.Unauthorized.Code:
		return http.StatusUnauthorized // 401
	case errors.EmployeeRequired.Code, errors.InvalidRequest.Code,
		errors.LeaveDateInvalid.Code, errors.LeaveDateReversed.Code,
		errors.AlreadyClockedIn.Code, errors.NotClockedIn.Code:
		return http.StatusBadRequest // 400
	case errors.NotFound.Code, errors.NoOpenAttendance.Code:
		return http.StatusNotFound // 404
	case errors.NotifyUnavailable.Code:
		return http.StatusServiceUnavailable // 503
	default:
		return http.StatusInternalServerError // 500
	}
}

// Error 返回错误响应
func Error(ctx context.Context, c *app.RequestContext, err error) {
	ErrorWithDetails(ctx, c, err, nil)
}

func ErrorWithDetails(ctx context.Context, c *app.RequestContext, err error, details map[string]interface{}) {
	statusCode := StatusOf(err)

	var code, message string
	if def, ok := errors.From(err); ok {
		code = def.Code
		message = def.Message
	} else {
		code = "INTERNAL_ERROR"
		message = err.Error()
	}

	c.JSON(statusCode, ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

func Success(ctx context.Context, c *app.RequestContext, data interface{}) {
	c.JSON(http.StatusOK, SuccessResponse{
		Data: data,
	})
}

func SuccessWithMeta(ctx context.Context, c *app.RequestContext, data interface{}, meta map[string]interface{}) {
	c.JSON(http.StatusOK, SuccessResponse{
		Data: data,
		Meta: meta,
	})
}
