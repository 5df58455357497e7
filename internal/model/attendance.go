package model

import "time"

// Attendance 一次上下班打卡；clock_out 为空表示尚未下班
type Attendance struct {
	BaseModel
	Name         string     `gorm:"type:varchar(128);not null" json:"name"`
	Email        string     `gorm:"type:varchar(255);not null" json:"email"`
	RegisteredID string     `gorm:"type:varchar(64);not null;index:idx_attendance_open,priority:1" json:"registered_id"`
	ClockIn      time.Time  `gorm:"not null" json:"clock_in"`
	ClockOut     *time.Time `gorm:"index:idx_attendance_open,priority:2" json:"clock_out,omitempty"`
	Duration     *float64   `json:"duration,omitempty"` // 小时
}

func (Attendance) TableName() string {
	return "attendance"
}

func (a Attendance) IsOpen() bool {
	return a.ClockOut == nil
}

// HoursBetween 两个时间点之间的小时数
func HoursBetween(from, to time.Time) float64 {
	return to.Sub(from).Hours()
}
