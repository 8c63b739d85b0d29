package health

import "time"

// Status is the liveness payload.
type Status struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// Service encapsulates health-related checks.
type Service struct {
	version string
	now     func() time.Time
}

// NewService constructs a new health service. A nil now uses time.Now.
func NewService(version string, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{version: version, now: now}
}

// Status reports the service as healthy with the current UTC time.
func (s *Service) Status() Status {
	return Status{
		Status:    "healthy",
		Timestamp: s.now().UTC().Format(time.RFC3339),
		Version:   s.version,
	}
}
