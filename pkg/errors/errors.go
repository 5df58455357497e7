package errors

func (d Definition) Error() string {
	return d.Message
}

// Definition 表示业务错误码及默认信息。
type Definition struct {
	Code    string
	Message string
}

// 通用错误。
var (
	InvalidRequest  = Definition{Code: "INVALID_REQUEST", Message: "Invalid request"}
	TooManyRequests = Definition{Code: "TOO_MANY_REQUESTS", Message: "Too many attempts, please try again later"}
	Unauthorized    = Definition{Code: "UNAUTHORIZED", Message: "Please log in first"}
	NotFound        = Definition{Code: "NOT_FOUND", Message: "Record not found"}
)

// 登录相关错误。未知员工与口令错误使用同一个错误，避免枚举员工。
var (
	AuthFailed       = Definition{Code: "AUTH_FAILED", Message: "Invalid passkey. Please try again."}
	EmployeeRequired = Definition{Code: "EMPLOYEE_REQUIRED", Message: "Please select your name."}
)

// 考勤模块错误。
var (
	AlreadyClockedIn     = Definition{Code: "ALREADY_CLOCKED_IN", Message: "You are already clocked in."}
	NotClockedIn         = Definition{Code: "NOT_CLOCKED_IN", Message: "You are not clocked in."}
	NoOpenAttendance     = Definition{Code: "NO_OPEN_ATTENDANCE", Message: "No open attendance record found"}
	AttendanceIdentityNA = Definition{Code: "ATTENDANCE_IDENTITY_MISSING", Message: "Attendance requires a registered id"}
)

// 请假模块错误。
var (
	LeaveDateInvalid  = Definition{Code: "LEAVE_DATE_INVALID", Message: "Please pick valid start and end dates."}
	LeaveDateReversed = Definition{Code: "LEAVE_DATE_REVERSED", Message: "End date must not be before start date."}
)

// 通知模块错误。
var (
	NotifyFailed      = Definition{Code: "NOTIFY_FAILED", Message: "Leave recorded, but the email notification could not be sent."}
	NotifyUnavailable = Definition{Code: "NOTIFY_UNAVAILABLE", Message: "Notification service is temporarily unavailable"}
)

// IsValidation 是否属于表单校验类错误
func IsValidation(err error) bool {
	for _, def := range []Definition{EmployeeRequired, LeaveDateInvalid, LeaveDateReversed, InvalidRequest} {
		if Is(err, def) {
			return true
		}
	}
	return false
}
