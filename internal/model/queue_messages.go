package model

// LeaveNotificationMessage 队列模式下投递给 worker 的请假通知
type LeaveNotificationMessage struct {
	MessageID    string `json:"message_id"` // snowflake，用于幂等
	Name         string `json:"name"`
	Email        string `json:"email"`
	RegisteredID string `json:"registered_id"`
	StartDate    string `json:"start_date"`
	EndDate      string `json:"end_date"`
	Reason       string `json:"reason"`
	LeaveID      int64  `json:"leave_id"`
	SubmittedAt  string `json:"submitted_at"`
}
