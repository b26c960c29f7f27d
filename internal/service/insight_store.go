package service

import (
	"sync"

	"github.com/stayview/bookinsightsapi/internal/models"
)

// InsightStore holds the most recently computed insights per user. It lives
// only in process memory: a restart drops everything, and a new result for a
// user replaces the old one wholesale.
type InsightStore struct {
	mu       sync.RWMutex
	insights map[int64]*models.Insights
}

// NewInsightStore creates an empty insight store
func NewInsightStore() *InsightStore {
	return &InsightStore{insights: make(map[int64]*models.Insights)}
}

// Put stores the insights for a user, replacing any prior value
func (s *InsightStore) Put(userID int64, insights *models.Insights) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.insights[userID] = insights
}

// Get returns the stored insights for a user, or nil if none were
// computed since the process started
func (s *InsightStore) Get(userID int64) *models.Insights {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.insights[userID]
}
