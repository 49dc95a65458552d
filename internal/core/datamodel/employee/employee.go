package employee

import "time"

type Employee struct {
	ID                int64     `gorm:"primaryKey"`
	Name              string    `gorm:"column:name;not null"`
	Email             string    `gorm:"column:email;uniqueIndex;not null"`
	Department        string    `gorm:"column:department"`
	Role              string    `gorm:"column:role;not null"`
	ManagerID         *int64    `gorm:"column:manager_id;index"`
	TotalLeaveBalance int       `gorm:"column:total_leave_balance;not null;default:0;check:total_leave_balance >= 0"`
	CreatedAt         time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Employee) TableName() string {
	return "employees"
}
