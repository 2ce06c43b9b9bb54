package models

// ReservationCounter holds the last issued sequence number for one
// reservation-number bucket (prefix + type tag + date). Incremented
// atomically inside the reservation transaction so two concurrent
// creations in the same bucket never share a sequence.
type ReservationCounter struct {
	ID     uint   `json:"id" gorm:"primaryKey"`
	Bucket string `json:"bucket" gorm:"uniqueIndex;size:32;not null"`
	Seq    int    `json:"seq" gorm:"not null"`
}
