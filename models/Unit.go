package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Unit is a rentable property. A unit either owns bookable rooms or is
// standalone (event hall, whole villa) and is booked directly.
type Unit struct {
	gorm.Model
	HostID               uint            `json:"hostID" gorm:"index"`
	Name                 string          `json:"name" gorm:"not null"`
	Description          string          `json:"description" gorm:"type:text"`
	City                 string          `json:"city"`
	Country              string          `json:"country"`
	Capacity             int             `json:"capacity"`
	BasePrice            decimal.Decimal `json:"basePrice" gorm:"type:decimal(12,2);not null"`
	Currency             string          `json:"currency" gorm:"type:varchar(8);default:'MRO'"`
	IsActive             *bool           `json:"isActive" gorm:"default:true"`
	CancellationPolicyID *uint           `json:"cancellationPolicyID" gorm:"index"`

	Rooms              []Room              `json:"rooms,omitempty" gorm:"foreignKey:UnitID"`
	CancellationPolicy *CancellationPolicy `json:"cancellationPolicy,omitempty" gorm:"foreignKey:CancellationPolicyID"`
}

// Room is an individually bookable room belonging to exactly one unit.
type Room struct {
	gorm.Model
	UnitID    uint            `json:"unitID" gorm:"not null;index"`
	Name      string          `json:"name" gorm:"not null"`
	Capacity  int             `json:"capacity"`
	BasePrice decimal.Decimal `json:"basePrice" gorm:"type:decimal(12,2);not null"`
	IsActive  *bool           `json:"isActive" gorm:"default:true"`

	Unit *Unit `json:"unit,omitempty" gorm:"foreignKey:UnitID"`
}
