package dto

// EmployeeOption 登录页下拉框的一项，value 为员工编号
type EmployeeOption struct {
	Name         string `json:"name"`
	RegisteredID string `json:"registered_id"`
}

// LoginRequest POST /login 表单
type LoginRequest struct {
	RegisteredID string `form:"employee"`
	Passkey      string `form:"passkey"`
}

// LeaveRequest POST /leave 表单
type LeaveRequest struct {
	StartDate string `form:"start_date"`
	EndDate   string `form:"end_date"`
	Reason    string `form:"reason"`
}
