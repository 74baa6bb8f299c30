package notifier

import (
	"context"
	"encoding/json"

	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/DevEdward666/study-hub-app/app/models"
	"github.com/DevEdward666/study-hub-app/internal/pkg/cache"
)

// Channel is the Redis pub/sub channel session events are published on.
const Channel = "studyhub:session-events"

// Event is the payload delivered after a successful session transition.
type Event struct {
	Kind      string `json:"kind"` // session-start | session-end | session-warning
	UserID    uint   `json:"user_id"`
	SessionID uint   `json:"session_id"`
	Content   string `json:"content"`
}

// Notifier delivers session events. Implementations are fire-and-forget:
// delivery failures are logged and never affect the billing transaction.
type Notifier interface {
	Notify(ctx context.Context, event Event)
}

type dbNotifier struct {
	db *gorm.DB
}

// New creates the default notifier: it persists a Notification row and
// publishes the event on a Redis channel for real-time consumers.
func New(db *gorm.DB) Notifier {
	return &dbNotifier{db: db}
}

func (n *dbNotifier) Notify(ctx context.Context, event Event) {
	_ = ctx
	if err := models.CreateNotification(n.db, event.UserID, event.Kind, event.Content, event.SessionID); err != nil {
		log.Errorf("[Notifier] store notification failed: %v", err)
	}

	payload, err := json.Marshal(event)
	if err != nil {
		log.Errorf("[Notifier] marshal event failed: %v", err)
		return
	}
	if err := cache.Publish(Channel, payload); err != nil {
		log.Errorf("[Notifier] publish event failed: %v", err)
	}
}

// Noop discards all events. Used in tests and tooling.
type Noop struct{}

func (Noop) Notify(ctx context.Context, event Event) {}
