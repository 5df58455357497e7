package model

// Employee 员工档案，由 cmd/seed 录入，门户只读
type Employee struct {
	BaseModel
	Name          string `gorm:"type:varchar(128);not null" json:"name"`
	Passkey       string `gorm:"type:varchar(255);not null" json:"-"` // bcrypt 哈希，旧数据可能是明文
	Email         string `gorm:"type:varchar(255);not null" json:"email"`
	RegisteredID  string `gorm:"type:varchar(64);not null;uniqueIndex" json:"registered_id"`
	ContactNumber string `gorm:"type:varchar(32);not null" json:"contact_number"`
}

func (Employee) TableName() string {
	return "employees"
}

// Identity 登录后放入会话的身份快照
func (e Employee) Identity() Identity {
	return Identity{
		Name:         e.Name,
		Email:        e.Email,
		RegisteredID: e.RegisteredID,
	}
}

// Identity 会话持有的值拷贝，打卡和请假记录冗余保存这三项
type Identity struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	RegisteredID string `json:"registered_id"`
}

func (i Identity) IsZero() bool {
	return i.RegisteredID == ""
}
