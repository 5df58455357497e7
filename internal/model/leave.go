package model

import "time"

// DateLayout 请假表单与邮件使用的日期格式
const DateLayout = "2006-01-02"

// Leave 请假申请，写入后不再修改
type Leave struct {
	BaseModel
	Name         string    `gorm:"type:varchar(128);not null" json:"name"`
	Email        string    `gorm:"type:varchar(255);not null" json:"email"`
	RegisteredID string    `gorm:"type:varchar(64);not null;index" json:"registered_id"`
	StartDate    time.Time `gorm:"not null" json:"start_date"`
	EndDate      time.Time `gorm:"not null" json:"end_date"`
	Reason       string    `gorm:"type:text;not null" json:"reason"`
}

func (Leave) TableName() string {
	return "leaves"
}

// Days 含首尾的天数，按日历日计算，不受夏令时影响
func (l Leave) Days() int {
	return int(calendarDay(l.EndDate).Sub(calendarDay(l.StartDate)).Hours()/24) + 1
}

func calendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
