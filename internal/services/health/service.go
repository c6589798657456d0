package health

import (
	"context"
	"time"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Status is the health payload.
type Status struct {
	Status   string `json:"status"`
	Database string `json:"database,omitempty"`
}

// Service encapsulates health-related checks.
type Service struct {
	db      Pinger
	timeout time.Duration
}

// NewService constructs a health service. A nil db means the in-memory store.
func NewService(db Pinger) *Service {
	return &Service{db: db, timeout: 2 * time.Second}
}

// Check reports whether the service can reach its store.
func (s *Service) Check(ctx context.Context) (Status, bool) {
	if s.db == nil {
		return Status{Status: "healthy", Database: "memory"}, true
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.db.PingContext(ctx); err != nil {
		return Status{Status: "unhealthy", Database: "unreachable"}, false
	}
	return Status{Status: "healthy", Database: "ok"}, true
}
