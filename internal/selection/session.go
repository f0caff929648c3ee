package selection

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/rebeliceyang/lazyprod/internal/datastore"
)

// Session is one interactive filtering session over a snapshot. A reload
// of the datastore starts a new session rather than mutating this one.
type Session struct {
	ID         string
	StartedAt  time.Time
	Controller *Controller
}

// NewSession creates a session with a fresh controller
func NewSession(snap *datastore.Snapshot, logger *log.Logger) *Session {
	if snap == nil {
		snap = &datastore.Snapshot{}
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}

	id := uuid.New().String()
	sessionLogger := logger.With("session", id[:8])

	s := &Session{
		ID:         id,
		StartedAt:  time.Now(),
		Controller: NewController(snap, sessionLogger),
	}

	sessionLogger.Info("session started",
		"products", len(snap.Products),
		"properties", len(snap.Properties),
		"operators", len(snap.Operators))
	return s
}
