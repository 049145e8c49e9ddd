package profile

import (
	"time"

	"github.com/google/uuid"
)

type ContractType string

const (
	ContractFullTime   ContractType = "FULL_TIME"
	ContractPartTime   ContractType = "PART_TIME"
	ContractIntern     ContractType = "INTERN"
	ContractContractor ContractType = "CONTRACTOR"
)

// Profile is the employee record the leave engine reads. The HR core owns
// the table; nothing in this module writes it.
type Profile struct {
	ID           uuid.UUID    `gorm:"type:uuid;primaryKey"`
	UserID       *uuid.UUID   `gorm:"type:uuid"`
	FullName     string       `gorm:"type:varchar(150);not null"`
	Department   string       `gorm:"type:varchar(100)"`
	Site         string       `gorm:"type:varchar(100)"`
	ContractType ContractType `gorm:"type:varchar(30)"`
	Role         string       `gorm:"type:varchar(50)"`
	ManagerID    *uuid.UUID   `gorm:"type:uuid;index:idx_profiles_manager"`
	HireDate     *time.Time   `gorm:"type:date"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (Profile) TableName() string {
	return "profiles"
}
