package models

import "gorm.io/gorm"

// CancellationPolicy maps cancellation lead time to a refund tier.
// A guest cancelling at least FullRefundDays before check-in gets a
// full refund, at least PartialRefundDays gets PartialRefundPercentage
// of the paid amount back, anything closer gets nothing. At most one
// policy should be marked IsDefault; it applies to units without their
// own policy.
type CancellationPolicy struct {
	gorm.Model
	Name                    string `json:"name" gorm:"not null"`
	FullRefundDays          int    `json:"fullRefundDays" gorm:"not null"`
	PartialRefundDays       int    `json:"partialRefundDays" gorm:"not null"`
	PartialRefundPercentage int    `json:"partialRefundPercentage" gorm:"not null"`
	IsDefault               bool   `json:"isDefault" gorm:"default:false;index"`
}
