package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(CodeInvalidInput, "输入参数无效")
	if err.Code != CodeInvalidInput {
		t.Errorf("Code = %s, expected %s", err.Code, CodeInvalidInput)
	}
	if err.HTTPStatus != http.StatusBadRequest {
		t.Errorf("HTTPStatus = %d, expected 400", err.HTTPStatus)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(cause, CodeDatabaseError, "数据库操作失败")

	if !errors.Is(err, cause) {
		t.Error("Wrap 后应能追溯底层错误")
	}
	if err.Code != CodeDatabaseError {
		t.Errorf("Code = %s, expected %s", err.Code, CodeDatabaseError)
	}
}

func TestAppError_Chaining(t *testing.T) {
	cause := fmt.Errorf("parse error")
	err := New(CodeInvalidWeekStart, "周起始日期格式无效").
		WithDetails("2024/06/10").
		WithCause(cause).
		WithField("week_start", "2024/06/10")

	if err.Details != "2024/06/10" {
		t.Errorf("Details = %s", err.Details)
	}
	if err.Cause != cause {
		t.Error("WithCause 未保存底层错误")
	}
	if err.Fields["week_start"] != "2024/06/10" {
		t.Error("WithField 未保存字段")
	}
}

func TestGetCode(t *testing.T) {
	if got := GetCode(New(CodeNotFound, "不存在")); got != CodeNotFound {
		t.Errorf("GetCode = %s, expected %s", got, CodeNotFound)
	}
	if got := GetCode(errors.New("plain")); got != CodeUnknown {
		t.Errorf("普通错误应返回 %s, got %s", CodeUnknown, got)
	}
	if got := GetCode(nil); got != CodeUnknown {
		t.Errorf("nil 应返回 %s, got %s", CodeUnknown, got)
	}
}

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code     Code
		expected int
	}{
		{CodeInvalidInput, http.StatusBadRequest},
		{CodeInvalidWeekStart, http.StatusBadRequest},
		{CodeValidationFail, http.StatusBadRequest},
		{CodeNotFound, http.StatusNotFound},
		{CodeAlreadyExists, http.StatusConflict},
		{CodeScheduleConflict, http.StatusConflict},
		{CodeNoFeasibleSolution, http.StatusUnprocessableEntity},
		{CodeInsufficientStaff, http.StatusUnprocessableEntity},
		{CodeTimeout, http.StatusGatewayTimeout},
		{CodeInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			if got := GetHTTPStatus(New(tt.code, "test")); got != tt.expected {
				t.Errorf("GetHTTPStatus(%s) = %d, expected %d", tt.code, got, tt.expected)
			}
		})
	}

	if got := GetHTTPStatus(errors.New("plain")); got != http.StatusInternalServerError {
		t.Errorf("普通错误应映射 500, got %d", got)
	}
}

func TestIs(t *testing.T) {
	err := New(CodeScheduleConflict, "排班冲突")
	if !Is(err, CodeScheduleConflict) {
		t.Error("Is 应匹配相同错误码")
	}
	if Is(err, CodeNotFound) {
		t.Error("Is 不应匹配不同错误码")
	}
	if Is(errors.New("plain"), CodeUnknown) {
		t.Error("普通错误不应匹配任何错误码")
	}
}
