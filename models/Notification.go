package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Notification is an outbox row for a guest- or host-facing message.
// Rows are written best-effort after a reservation transaction commits
// and drained by the notification worker; delivery failures never roll
// back or block the engine.
type Notification struct {
	gorm.Model
	UserID  uint           `json:"userID" gorm:"not null;index"`
	Title   string         `json:"title"`
	Message string         `json:"message"`
	Type    string         `json:"type" gorm:"type:varchar(32);index"`
	RefID   uint           `json:"refID"`
	RefType string         `json:"refType" gorm:"type:varchar(32)"`
	Payload datatypes.JSON `json:"payload,omitempty" gorm:"type:jsonb"`
	IsRead  bool           `json:"isRead" gorm:"default:false"`
}
