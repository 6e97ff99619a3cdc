package code

import "net/http"

// Default user-facing messages per error code.
var codeMessageMap = map[string]string{
	ValidationError:    "Dữ liệu không hợp lệ",
	Unauthorized:       "Yêu cầu đăng nhập",
	Forbidden:          "Không có quyền thực hiện thao tác này",
	NotFound:           "Không tìm thấy bản ghi",
	NotLinked:          "Tài khoản chưa được liên kết với nhân khẩu",
	DuplicateCCCD:      "Số CCCD/CMND đã tồn tại",
	DuplicateChuHo:     "Hộ khẩu đã có chủ hộ",
	UsernameExists:     "Tên đăng nhập đã tồn tại",
	InvalidCredentials: "Tên đăng nhập hoặc mật khẩu không đúng",
	RateLimited:        "Quá nhiều yêu cầu, vui lòng thử lại sau",
	ConfigError:        "Lỗi cấu hình hệ thống",
	InternalError:      "Lỗi hệ thống, vui lòng thử lại sau",
}

// HTTP status per error code.
var codeStatusMap = map[string]int{
	ValidationError:    http.StatusBadRequest,
	Unauthorized:       http.StatusUnauthorized,
	Forbidden:          http.StatusForbidden,
	NotFound:           http.StatusNotFound,
	NotLinked:          http.StatusNotFound,
	DuplicateCCCD:      http.StatusConflict,
	DuplicateChuHo:     http.StatusConflict,
	UsernameExists:     http.StatusConflict,
	InvalidCredentials: http.StatusUnauthorized,
	RateLimited:        http.StatusTooManyRequests,
	ConfigError:        http.StatusInternalServerError,
	InternalError:      http.StatusInternalServerError,
}

// GetMessage returns the default message for an error code.
func GetMessage(errCode string) string {
	if msg, ok := codeMessageMap[errCode]; ok {
		return msg
	}
	return codeMessageMap[InternalError]
}

// GetStatus returns the HTTP status for an error code.
func GetStatus(errCode string) int {
	if status, ok := codeStatusMap[errCode]; ok {
		return status
	}
	return http.StatusInternalServerError
}
