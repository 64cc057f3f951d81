package repository

import (
	"context"
	"sync"
	"time"

	"github.com/BerniceZTT/kpi_funnel/models"
	"github.com/BerniceZTT/kpi_funnel/utils"
)

// AuditStore 操作日志存储
type AuditStore interface {
	Save(ctx context.Context, log *models.OperationLog) error
	Recent(ctx context.Context, limit int64) ([]models.OperationLog, error)
	Purge(ctx context.Context, before time.Time) (int64, error)
}

// MemoryAuditStore 未配置MongoDB时使用：写日志并在内存中保留最近的记录
type MemoryAuditStore struct {
	mu       sync.Mutex
	capacity int
	entries  []models.OperationLog
}

// NewMemoryAuditStore 创建内存操作日志存储
func NewMemoryAuditStore(capacity int) *MemoryAuditStore {
	if capacity <= 0 {
		capacity = 100
	}
	return &MemoryAuditStore{capacity: capacity}
}

func (s *MemoryAuditStore) Save(_ context.Context, log *models.OperationLog) error {
	utils.Logger.Info().
		Str("method", log.Method).
		Str("path", log.Path).
		Str("session", log.SessionID).
		Int("status", log.StatusCode).
		Int64("responseTime", log.ResponseTime).
		Msg("操作日志")

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, *log)
	if len(s.entries) > s.capacity {
		s.entries = s.entries[len(s.entries)-s.capacity:]
	}
	return nil
}

func (s *MemoryAuditStore) Recent(_ context.Context, limit int64) ([]models.OperationLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.OperationLog{}
	for i := len(s.entries) - 1; i >= 0 && int64(len(out)) < limit; i-- {
		out = append(out, s.entries[i])
	}
	return out, nil
}

func (s *MemoryAuditStore) Purge(_ context.Context, before time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.entries[:0]
	for _, e := range s.entries {
		if !e.OperationTime.Before(before) {
			kept = append(kept, e)
		}
	}
	removed := int64(len(s.entries) - len(kept))
	s.entries = kept
	return removed, nil
}
