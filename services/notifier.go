package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/OmarAbdelrahmn/Hajzy-sub001/models"
)

// NotificationQueueKey is the redis list the engine pushes reservation
// events onto and the worker drains.
const NotificationQueueKey = "hajzy:notifications"

// NotificationEvent is the envelope handed to the notification
// collaborator. Delivery is best-effort and fully decoupled from the
// reservation transaction.
type NotificationEvent struct {
	ID            string    `json:"id"`
	Event         string    `json:"event"`
	ReservationID uint      `json:"reservationID"`
	UserID        uint      `json:"userID"`
	Message       string    `json:"message"`
	EnqueuedAt    time.Time `json:"enqueuedAt"`
}

// Notifier is the fire-and-forget notification sink. The engine never
// consumes a return value and never blocks a transaction on it.
type Notifier interface {
	Enqueue(event string, reservationID uint, userID uint, message string)
}

// NoopNotifier drops everything. Used in tests.
type NoopNotifier struct{}

func (NoopNotifier) Enqueue(string, uint, uint, string) {}

// QueueNotifier persists an outbox row and pushes the envelope onto
// the redis queue. Failures are logged and swallowed; they must never
// surface into the engine.
type QueueNotifier struct {
	DB    *gorm.DB
	Redis *redis.Client
	Log   *logrus.Logger
}

func NewQueueNotifier(db *gorm.DB, rdb *redis.Client, log *logrus.Logger) *QueueNotifier {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &QueueNotifier{DB: db, Redis: rdb, Log: log}
}

func (n *QueueNotifier) Enqueue(event string, reservationID uint, userID uint, message string) {
	envelope := NotificationEvent{
		ID:            uuid.NewString(),
		Event:         event,
		ReservationID: reservationID,
		UserID:        userID,
		Message:       message,
		EnqueuedAt:    time.Now().UTC(),
	}
	payload, err := json.Marshal(envelope)
	if err != nil {
		n.Log.WithError(err).Warn("notification envelope marshal failed")
		return
	}

	if n.DB != nil {
		row := models.Notification{
			UserID:  userID,
			Title:   event,
			Message: message,
			Type:    event,
			RefID:   reservationID,
			RefType: "reservation",
			Payload: datatypes.JSON(payload),
		}
		if err := n.DB.Create(&row).Error; err != nil {
			n.Log.WithError(err).WithField("event", event).Warn("notification outbox write failed")
		}
	}

	if n.Redis != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := n.Redis.LPush(ctx, NotificationQueueKey, payload).Err(); err != nil {
			n.Log.WithError(err).WithField("event", event).Warn("notification enqueue failed")
		}
	}
}

// Sender delivers one notification event. The default sender only
// logs; real channels (push, email) plug in here.
type Sender func(NotificationEvent) error

// NotificationWorker drains the redis queue with its own retry policy.
// It shares nothing with the engine's transactions.
type NotificationWorker struct {
	Redis *redis.Client
	Log   *logrus.Logger
	Send  Sender
}

func NewNotificationWorker(rdb *redis.Client, log *logrus.Logger, send Sender) *NotificationWorker {
	if log == nil {
		log = logrus.StandardLogger()
	}
	w := &NotificationWorker{Redis: rdb, Log: log, Send: send}
	if w.Send == nil {
		w.Send = func(ev NotificationEvent) error {
			log.WithFields(logrus.Fields{
				"event":          ev.Event,
				"reservation_id": ev.ReservationID,
				"user_id":        ev.UserID,
			}).Info("notification delivered")
			return nil
		}
	}
	return w
}

// Run blocks until ctx is cancelled, popping one event at a time.
// Failed deliveries are requeued at the tail after a short pause.
func (w *NotificationWorker) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		res, err := w.Redis.BRPop(ctx, 5*time.Second, NotificationQueueKey).Result()
		if err != nil {
			if err == redis.Nil || ctx.Err() != nil {
				continue
			}
			w.Log.WithError(err).Warn("notification queue pop failed")
			time.Sleep(time.Second)
			continue
		}
		if len(res) < 2 {
			continue
		}

		var event NotificationEvent
		if err := json.Unmarshal([]byte(res[1]), &event); err != nil {
			w.Log.WithError(err).Warn("notification envelope unmarshal failed")
			continue
		}
		if err := w.Send(event); err != nil {
			w.Log.WithError(err).WithField("event", event.Event).Warn("notification delivery failed, requeueing")
			time.Sleep(time.Second)
			w.Redis.LPush(ctx, NotificationQueueKey, res[1])
		}
	}
}
