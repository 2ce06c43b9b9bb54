package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/OmarAbdelrahmn/Hajzy-sub001/models"
)

// ReservationService owns the reservation lifecycle: it is the only
// writer of reservation status and the only caller of the availability
// ledger's Reserve/Release. Create and Cancel run as single
// all-or-nothing transactions spanning the reservation row, its room
// links, the coupon counter, and the ledger.
type ReservationService struct {
	db       *gorm.DB
	ledger   AvailabilityLedger
	pricing  PricingCalculator
	refunds  RefundCalculator
	numbers  NumberAllocator
	coupons  CouponValidator
	notifier Notifier
	clock    Clock
	log      *logrus.Logger
}

func NewReservationService(db *gorm.DB, clock Clock, coupons CouponValidator, notifier Notifier, log *logrus.Logger) *ReservationService {
	if clock == nil {
		clock = NewSystemClock()
	}
	if notifier == nil {
		notifier = NoopNotifier{}
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	if coupons == nil {
		coupons = NewCouponValidator(clock)
	}
	return &ReservationService{
		db:       db,
		coupons:  coupons,
		notifier: notifier,
		clock:    clock,
		log:      log,
	}
}

// lockForUpdate takes a FOR UPDATE row lock on postgres. SQLite (used
// in tests) has no row locks but serializes writer transactions, which
// gives the same exclusion.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

// lockUnit loads the active owning unit under a per-unit lock. Every
// room of a unit belongs to it alone, so holding this lock for the
// rest of the transaction serializes the check-then-reserve sequence
// for all resources of the booking.
func lockUnit(tx *gorm.DB, unitID uint) (*models.Unit, error) {
	var unit models.Unit
	if err := lockForUpdate(tx).First(&unit, unitID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound("unit %d not found", unitID)
		}
		return nil, err
	}
	if unit.IsActive != nil && !*unit.IsActive {
		return nil, ErrNotFound("unit %d is not active", unitID)
	}
	return &unit, nil
}

// CreateReservationInput is the booking request. Leaving RoomIDs empty
// books the whole unit (all its rooms, or the unit itself when it is
// standalone).
type CreateReservationInput struct {
	UnitID     uint
	RoomIDs    []uint
	GuestID    uint
	CheckIn    time.Time
	CheckOut   time.Time
	NumGuests  int
	CouponCode string
}

// resolveResources figures out the booking type, the bookable
// resources, and the priced rooms for a request.
func resolveResources(tx *gorm.DB, unit *models.Unit, roomIDs []uint) (string, []ResourceRef, []models.Room, error) {
	if len(roomIDs) > 0 {
		var rooms []models.Room
		err := tx.Where("unit_id = ? AND id IN ?", unit.ID, roomIDs).
			Where("is_active IS NULL OR is_active = ?", true).
			Find(&rooms).Error
		if err != nil {
			return "", nil, nil, err
		}
		if len(rooms) != len(roomIDs) {
			return "", nil, nil, ErrNotFound("one or more requested rooms do not exist on unit %d", unit.ID)
		}
		refs := make([]ResourceRef, 0, len(rooms))
		for _, room := range rooms {
			refs = append(refs, RoomRef(room.ID))
		}
		return models.ReservationRooms, refs, rooms, nil
	}

	var rooms []models.Room
	err := tx.Where("unit_id = ?", unit.ID).
		Where("is_active IS NULL OR is_active = ?", true).
		Find(&rooms).Error
	if err != nil {
		return "", nil, nil, err
	}
	if len(rooms) == 0 {
		return models.ReservationStandalone, []ResourceRef{UnitRef(unit.ID)}, nil, nil
	}
	refs := make([]ResourceRef, 0, len(rooms))
	for _, room := range rooms {
		refs = append(refs, RoomRef(room.ID))
	}
	return models.ReservationWholeUnit, refs, rooms, nil
}

// Create books a reservation: availability check, price computation,
// optional coupon redemption, number allocation, reservation insert,
// room links, and the ledger block, all in one transaction. Any
// failure rolls every step back.
func (s *ReservationService) Create(ctx context.Context, in CreateReservationInput) (*models.Reservation, error) {
	checkIn, checkOut := dateOnly(in.CheckIn), dateOnly(in.CheckOut)
	today := dateOnly(s.clock.Now())
	if !checkIn.Before(checkOut) {
		return nil, ErrInvalidDates("check-out must be after check-in")
	}
	if checkIn.Before(today) {
		return nil, ErrInvalidDates("check-in must not be in the past")
	}

	var created models.Reservation
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		unit, err := lockUnit(tx, in.UnitID)
		if err != nil {
			return err
		}

		resType, resources, rooms, err := resolveResources(tx, unit, in.RoomIDs)
		if err != nil {
			return err
		}

		free, err := s.ledger.CheckMany(tx, resources, checkIn, checkOut, nil)
		if err != nil {
			return err
		}
		for _, ok := range free {
			if !ok {
				return ErrNotAvailable("requested dates are not available")
			}
		}

		quote, err := s.pricing.Quote(tx, unit, rooms, checkIn, checkOut)
		if err != nil {
			return err
		}
		total := quote.Total

		var redemption *models.CouponRedemption
		if in.CouponCode != "" {
			result, err := s.coupons.Validate(tx, in.CouponCode, total, unit.ID, checkIn, checkOut, in.GuestID)
			if err != nil {
				return err
			}
			if !result.Valid {
				return ErrInvalidCoupon("coupon rejected: %s", result.Message)
			}
			if err := consumeCoupon(tx, result.CouponID); err != nil {
				return err
			}
			total = result.FinalAmount
			redemption = &models.CouponRedemption{
				CouponID:       result.CouponID,
				Code:           in.CouponCode,
				DiscountAmount: result.DiscountAmount,
			}
		}

		number, err := s.numbers.Next(tx, resType, today)
		if err != nil {
			return err
		}

		reservation := models.Reservation{
			Number:        number,
			Type:          resType,
			UnitID:        unit.ID,
			GuestID:       in.GuestID,
			CheckIn:       checkIn,
			CheckOut:      checkOut,
			NumGuests:     in.NumGuests,
			NightlyRate:   quote.NightlyRate,
			TotalPrice:    total,
			PaidAmount:    decimal.Zero,
			Status:        models.ReservationPending,
			PaymentStatus: models.PaymentPending,
		}
		if err := tx.Create(&reservation).Error; err != nil {
			return err
		}

		if resType == models.ReservationRooms {
			links := make([]models.ReservationRoom, 0, len(quote.Rooms))
			for _, rp := range quote.Rooms {
				links = append(links, models.ReservationRoom{
					ReservationID: reservation.ID,
					RoomID:        rp.RoomID,
					NightlyPrice:  rp.Nightly,
				})
			}
			if err := tx.Create(&links).Error; err != nil {
				return err
			}
			reservation.Rooms = links
		}

		if redemption != nil {
			redemption.ReservationID = reservation.ID
			if err := tx.Create(redemption).Error; err != nil {
				return err
			}
		}

		if err := s.ledger.Reserve(tx, resources, reservation.ID, checkIn, checkOut); err != nil {
			return ErrAvailabilityUpdate(err)
		}

		created = reservation
		return nil
	})
	if err != nil {
		return nil, wrapInternal(err)
	}

	s.log.WithFields(logrus.Fields{
		"reservation": created.Number,
		"unit_id":     created.UnitID,
		"guest_id":    created.GuestID,
		"total":       created.TotalPrice.String(),
	}).Info("reservation created")
	go s.notifier.Enqueue("reservation.created", created.ID, created.GuestID,
		fmt.Sprintf("Reservation %s created for %s to %s", created.Number,
			created.CheckIn.Format("Jan 2, 2006"), created.CheckOut.Format("Jan 2, 2006")))

	return &created, nil
}

// Confirm moves a pending reservation to confirmed.
func (s *ReservationService) Confirm(ctx context.Context, id uint, actorID uint) (*models.Reservation, error) {
	res, err := s.transition(ctx, id, []string{models.ReservationPending}, models.ReservationConfirmed, nil)
	if err != nil {
		return nil, err
	}
	go s.notifier.Enqueue("reservation.confirmed", res.ID, res.GuestID,
		fmt.Sprintf("Reservation %s confirmed", res.Number))
	return res, nil
}

// CheckIn marks arrival. Legal only from confirmed, and not before the
// check-in date.
func (s *ReservationService) CheckIn(ctx context.Context, id uint) (*models.Reservation, error) {
	guard := func(r *models.Reservation) error {
		if dateOnly(s.clock.Now()).Before(dateOnly(r.CheckIn)) {
			return ErrTooEarly("check-in opens on %s", r.CheckIn.Format("2006-01-02"))
		}
		return nil
	}
	return s.transition(ctx, id, []string{models.ReservationConfirmed}, models.ReservationCheckedIn, guard)
}

// CheckOut completes a checked-in stay.
func (s *ReservationService) CheckOut(ctx context.Context, id uint) (*models.Reservation, error) {
	return s.transition(ctx, id, []string{models.ReservationCheckedIn}, models.ReservationCompleted, nil)
}

// transition applies one state-machine edge under a row lock.
func (s *ReservationService) transition(ctx context.Context, id uint, from []string, to string, guard func(*models.Reservation) error) (*models.Reservation, error) {
	var updated models.Reservation
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res, err := loadReservation(tx, id, true)
		if err != nil {
			return err
		}
		if !statusIn(res.Status, from) {
			return ErrInvalidStatus("cannot move reservation %s from %s to %s", res.Number, res.Status, to)
		}
		if guard != nil {
			if err := guard(res); err != nil {
				return err
			}
		}
		res.Status = to
		if err := tx.Omit(clause.Associations).Save(res).Error; err != nil {
			return err
		}
		updated = *res
		return nil
	})
	if err != nil {
		return nil, wrapInternal(err)
	}
	s.log.WithFields(logrus.Fields{
		"reservation": updated.Number,
		"status":      updated.Status,
	}).Info("reservation status changed")
	return &updated, nil
}

// CancelResult reports what a cancellation did.
type CancelResult struct {
	Reservation  *models.Reservation `json:"reservation"`
	RefundAmount decimal.Decimal     `json:"refundAmount"`
}

// Cancel cancels a pending or confirmed reservation: computes the
// tiered refund from the unit's cancellation policy using the clock's
// "now", appends a negative payment event when a refund is due,
// returns any coupon redemption, and releases the ledger blocks so the
// range becomes bookable again. One transaction, all-or-nothing.
func (s *ReservationService) Cancel(ctx context.Context, id uint, reason string, actorID uint) (*CancelResult, error) {
	var result CancelResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res, err := loadReservation(tx, id, true)
		if err != nil {
			return err
		}
		if res.Status == models.ReservationCompleted || res.Status == models.ReservationCancelled {
			return ErrInvalidStatus("cannot cancel a %s reservation", res.Status)
		}

		var unit models.Unit
		if err := tx.First(&unit, res.UnitID).Error; err != nil {
			return err
		}
		policy, err := ResolvePolicy(tx, &unit)
		if err != nil {
			return err
		}

		now := s.clock.Now()
		days := daysBetween(dateOnly(now), dateOnly(res.CheckIn))
		refund := s.refunds.Refund(policy, days, res.PaidAmount)

		cancelledAt := now
		res.Status = models.ReservationCancelled
		res.CancelReason = reason
		res.CancelledAt = &cancelledAt

		var redemption models.CouponRedemption
		if err := tx.Where("reservation_id = ?", res.ID).First(&redemption).Error; err == nil {
			if err := releaseCoupon(tx, redemption.CouponID); err != nil {
				return err
			}
			if err := tx.Delete(&redemption).Error; err != nil {
				return err
			}
		} else if err != gorm.ErrRecordNotFound {
			return err
		}

		if refund.Sign() > 0 {
			event := models.PaymentEvent{
				ReservationID: res.ID,
				Amount:        refund.Neg(),
				Method:        "refund",
				Reference:     uuid.NewString(),
			}
			if err := tx.Create(&event).Error; err != nil {
				return ErrPaymentFailed("failed to record refund: %v", err)
			}
			res.PaidAmount = res.PaidAmount.Sub(refund)
			res.PaymentStatus = models.PaymentRefunded
		}

		if err := tx.Omit(clause.Associations).Save(res).Error; err != nil {
			return err
		}

		if err := s.ledger.Release(tx, res.ID); err != nil {
			return ErrAvailabilityUpdate(err)
		}

		result = CancelResult{Reservation: res, RefundAmount: refund}
		return nil
	})
	if err != nil {
		return nil, wrapInternal(err)
	}

	s.log.WithFields(logrus.Fields{
		"reservation": result.Reservation.Number,
		"refund":      result.RefundAmount.String(),
		"actor_id":    actorID,
	}).Info("reservation cancelled")
	go s.notifier.Enqueue("reservation.cancelled", result.Reservation.ID, result.Reservation.GuestID,
		fmt.Sprintf("Reservation %s cancelled, refund %s", result.Reservation.Number, result.RefundAmount.String()))

	return &result, nil
}

// ApplyPayment appends a positive payment event and recomputes the
// paid amount from the event history. When the total is covered the
// payment status becomes paid and a still-pending reservation
// auto-advances to confirmed.
func (s *ReservationService) ApplyPayment(ctx context.Context, id uint, amount decimal.Decimal, method, reference string) (*models.Reservation, error) {
	if amount.Sign() <= 0 {
		return nil, ErrPaymentFailed("payment amount must be positive")
	}
	if reference == "" {
		reference = uuid.NewString()
	}

	var updated models.Reservation
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res, err := loadReservation(tx, id, true)
		if err != nil {
			return err
		}
		if res.Status == models.ReservationCancelled {
			return ErrInvalidStatus("cannot pay a cancelled reservation")
		}

		event := models.PaymentEvent{
			ReservationID: res.ID,
			Amount:        amount,
			Method:        method,
			Reference:     reference,
		}
		if err := tx.Create(&event).Error; err != nil {
			return ErrPaymentFailed("failed to record payment: %v", err)
		}

		paid, err := sumPayments(tx, res.ID)
		if err != nil {
			return err
		}
		res.PaidAmount = paid
		if paid.GreaterThanOrEqual(res.TotalPrice) {
			res.PaymentStatus = models.PaymentPaid
			if res.Status == models.ReservationPending {
				res.Status = models.ReservationConfirmed
			}
		} else {
			res.PaymentStatus = models.PaymentPartiallyPaid
		}
		if err := tx.Omit(clause.Associations).Save(res).Error; err != nil {
			return err
		}
		updated = *res
		return nil
	})
	if err != nil {
		return nil, wrapInternal(err)
	}

	s.log.WithFields(logrus.Fields{
		"reservation":    updated.Number,
		"paid":           updated.PaidAmount.String(),
		"payment_status": updated.PaymentStatus,
	}).Info("payment applied")
	go s.notifier.Enqueue("payment.applied", updated.ID, updated.GuestID,
		fmt.Sprintf("Payment received for reservation %s", updated.Number))

	return &updated, nil
}

// ModifyDates moves a pending or confirmed reservation to a new range.
// The new range goes through the same lock + check + reserve path as
// Create, ignoring the reservation's own ledger footprint, and the
// total is recomputed from the frozen nightly rates.
func (s *ReservationService) ModifyDates(ctx context.Context, id uint, newCheckIn, newCheckOut time.Time) (*models.Reservation, error) {
	checkIn, checkOut := dateOnly(newCheckIn), dateOnly(newCheckOut)
	if !checkIn.Before(checkOut) {
		return nil, ErrInvalidDates("check-out must be after check-in")
	}

	var updated models.Reservation
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res, err := loadReservation(tx, id, false)
		if err != nil {
			return err
		}
		// Same lock Create takes, so a concurrent Create on this unit
		// cannot interleave with the re-check below.
		if _, err := lockUnit(tx, res.UnitID); err != nil {
			return err
		}
		res, err = loadReservation(tx, id, true)
		if err != nil {
			return err
		}
		if res.Status != models.ReservationPending && res.Status != models.ReservationConfirmed {
			return ErrInvalidStatus("cannot modify dates of a %s reservation", res.Status)
		}

		resources, err := reservedResources(tx, res)
		if err != nil {
			return err
		}

		free, err := s.ledger.CheckMany(tx, resources, checkIn, checkOut, &res.ID)
		if err != nil {
			return err
		}
		for _, ok := range free {
			if !ok {
				return ErrNotAvailable("new dates are not available")
			}
		}

		if err := s.ledger.Release(tx, res.ID); err != nil {
			return ErrAvailabilityUpdate(err)
		}
		if err := s.ledger.Reserve(tx, resources, res.ID, checkIn, checkOut); err != nil {
			return ErrAvailabilityUpdate(err)
		}

		res.CheckIn = checkIn
		res.CheckOut = checkOut
		nights := decimal.NewFromInt(int64(daysBetween(checkIn, checkOut)))
		if res.Type == models.ReservationRooms {
			total := decimal.Zero
			for _, link := range res.Rooms {
				total = total.Add(link.NightlyPrice.Mul(nights))
			}
			res.TotalPrice = total
		} else {
			res.TotalPrice = res.NightlyRate.Mul(nights)
		}
		if err := tx.Omit(clause.Associations).Save(res).Error; err != nil {
			return err
		}
		updated = *res
		return nil
	})
	if err != nil {
		return nil, wrapInternal(err)
	}

	s.log.WithFields(logrus.Fields{
		"reservation": updated.Number,
		"check_in":    updated.CheckIn.Format("2006-01-02"),
		"check_out":   updated.CheckOut.Format("2006-01-02"),
	}).Info("reservation dates modified")
	return &updated, nil
}

// reservedResources derives the resource set from the reservation's
// own ledger blocks, falling back to the reservation shape when the
// blocks are gone.
func reservedResources(tx *gorm.DB, res *models.Reservation) ([]ResourceRef, error) {
	var blocks []models.AvailabilityBlock
	if err := tx.Where("reservation_id = ?", res.ID).Find(&blocks).Error; err != nil {
		return nil, err
	}
	if len(blocks) > 0 {
		refs := make([]ResourceRef, 0, len(blocks))
		for _, b := range blocks {
			refs = append(refs, ResourceRef{Type: b.ResourceType, ID: b.ResourceID})
		}
		return refs, nil
	}
	if res.Type == models.ReservationStandalone {
		return []ResourceRef{UnitRef(res.UnitID)}, nil
	}
	refs := make([]ResourceRef, 0, len(res.Rooms))
	for _, link := range res.Rooms {
		refs = append(refs, RoomRef(link.RoomID))
	}
	return refs, nil
}

func loadReservation(tx *gorm.DB, id uint, lock bool) (*models.Reservation, error) {
	var res models.Reservation
	q := tx
	if lock {
		q = lockForUpdate(tx)
	}
	if err := q.First(&res, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound("reservation %d not found", id)
		}
		return nil, err
	}
	if err := tx.Where("reservation_id = ?", res.ID).Find(&res.Rooms).Error; err != nil {
		return nil, err
	}
	return &res, nil
}

func sumPayments(tx *gorm.DB, reservationID uint) (decimal.Decimal, error) {
	var events []models.PaymentEvent
	if err := tx.Where("reservation_id = ?", reservationID).Find(&events).Error; err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, ev := range events {
		total = total.Add(ev.Amount)
	}
	return total, nil
}

func statusIn(status string, set []string) bool {
	for _, s := range set {
		if s == status {
			return true
		}
	}
	return false
}

// GetByID loads a reservation with its rooms and unit.
func (s *ReservationService) GetByID(ctx context.Context, id uint) (*models.Reservation, error) {
	var res models.Reservation
	err := s.db.WithContext(ctx).Preload("Rooms").Preload("Unit").First(&res, id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound("reservation %d not found", id)
		}
		return nil, wrapInternal(err)
	}
	return &res, nil
}

// GetByNumber loads a reservation by its human-readable number.
func (s *ReservationService) GetByNumber(ctx context.Context, number string) (*models.Reservation, error) {
	var res models.Reservation
	err := s.db.WithContext(ctx).Preload("Rooms").Preload("Unit").
		Where("number = ?", number).First(&res).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound("reservation %s not found", number)
		}
		return nil, wrapInternal(err)
	}
	return &res, nil
}

// ListByGuest returns a guest's reservations, newest first.
func (s *ReservationService) ListByGuest(ctx context.Context, guestID uint) ([]models.Reservation, error) {
	var items []models.Reservation
	err := s.db.WithContext(ctx).Preload("Rooms").Preload("Unit").
		Where("guest_id = ?", guestID).
		Order("created_at DESC").
		Find(&items).Error
	if err != nil {
		return nil, wrapInternal(err)
	}
	return items, nil
}

// ListByUnit returns a unit's reservations, newest first.
func (s *ReservationService) ListByUnit(ctx context.Context, unitID uint) ([]models.Reservation, error) {
	var items []models.Reservation
	err := s.db.WithContext(ctx).Preload("Rooms").
		Where("unit_id = ?", unitID).
		Order("created_at DESC").
		Find(&items).Error
	if err != nil {
		return nil, wrapInternal(err)
	}
	return items, nil
}

// DB exposes the underlying handle for read-only route helpers.
func (s *ReservationService) DB() *gorm.DB { return s.db }

// Quote prices a prospective booking without committing anything.
func (s *ReservationService) Quote(ctx context.Context, unitID uint, roomIDs []uint, checkIn, checkOut time.Time) (*PriceQuote, error) {
	checkIn, checkOut = dateOnly(checkIn), dateOnly(checkOut)
	if !checkIn.Before(checkOut) {
		return nil, ErrInvalidDates("check-out must be after check-in")
	}
	var quote *PriceQuote
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var unit models.Unit
		if err := tx.First(&unit, unitID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrNotFound("unit %d not found", unitID)
			}
			return err
		}
		_, _, rooms, err := resolveResources(tx, &unit, roomIDs)
		if err != nil {
			return err
		}
		quote, err = s.pricing.Quote(tx, &unit, rooms, checkIn, checkOut)
		return err
	})
	if err != nil {
		return nil, wrapInternal(err)
	}
	return quote, nil
}
