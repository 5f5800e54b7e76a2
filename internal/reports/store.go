package reports

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/storage/memory/v2"
	"github.com/gofiber/storage/redis/v3"
	"github.com/google/uuid"

	"sentinel/internal/models"
)

// ErrReportNotFound is returned for unknown or expired report IDs.
var ErrReportNotFound = errors.New("report not found")

// Backend is the key/value store reports are kept in. Get returns nil, nil
// for a missing key.
type Backend interface {
	Get(key string) ([]byte, error)
	Set(key string, val []byte, exp time.Duration) error
	Delete(key string) error
}

// Store keeps batch reports and their CSV exports for a limited time so the
// dashboard can offer a download.
type Store struct {
	backend Backend
	ttl     time.Duration
	now     func() time.Time
}

// New creates a report store. A ttl <= 0 keeps entries until deleted.
func New(backend Backend, ttl time.Duration) *Store {
	return &Store{backend: backend, ttl: ttl, now: time.Now}
}

// NewRedis connects the Redis backend used when REDIS_URL is set.
func NewRedis(url string) *redis.Storage {
	return redis.New(redis.Config{URL: url})
}

// NewMemory creates the in-process backend used without Redis. Expired
// entries are swept every 10 seconds.
func NewMemory() *memory.Storage {
	return memory.New(memory.Config{GCInterval: 10 * time.Second})
}

// TTL returns how long reports are retained.
func (s *Store) TTL() time.Duration {
	return s.ttl
}

// Save assigns the report an ID and creation time and stores it along with
// its export.
func (s *Store) Save(report *models.BatchReport, export []byte) error {
	report.ID = uuid.NewString()
	report.CreatedAt = s.now().UTC()

	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	if err := s.backend.Set(reportKey(report.ID), data, s.ttl); err != nil {
		return fmt.Errorf("store report: %w", err)
	}
	if err := s.backend.Set(exportKey(report.ID), export, s.ttl); err != nil {
		_ = s.backend.Delete(reportKey(report.ID))
		return fmt.Errorf("store export: %w", err)
	}
	return nil
}

// Report loads a stored report.
func (s *Store) Report(id string) (*models.BatchReport, error) {
	data, err := s.get(id, reportKey)
	if err != nil {
		return nil, err
	}
	var report models.BatchReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("decode report: %w", err)
	}
	return &report, nil
}

// Export loads the CSV export for a report.
func (s *Store) Export(id string) ([]byte, error) {
	return s.get(id, exportKey)
}

// Delete removes a report and its export. Unknown or expired IDs give
// ErrReportNotFound.
func (s *Store) Delete(id string) error {
	if _, err := s.get(id, reportKey); err != nil {
		return err
	}
	if err := s.backend.Delete(reportKey(id)); err != nil {
		return err
	}
	return s.backend.Delete(exportKey(id))
}

func (s *Store) get(id string, key func(string) string) ([]byte, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrReportNotFound
	}
	data, err := s.backend.Get(key(id))
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, ErrReportNotFound
	}
	return data, nil
}

func reportKey(id string) string {
	return "sentinel:report:" + id
}

func exportKey(id string) string {
	return "sentinel:export:" + id
}
