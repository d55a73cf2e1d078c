package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/GrainArc/TrialMap/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, models.Migrate(db))
	return db
}

// memoryStore records created entities and can be told to fail.
type memoryStore struct {
	mu       sync.Mutex
	nextID   uint
	plans    []*models.Plan
	plots    []*models.Plot
	failPlan bool
	failPlot func(*models.Plot) bool
}

func (s *memoryStore) Create(_ context.Context, entity Entity) (uint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch e := entity.(type) {
	case *models.Plan:
		if s.failPlan {
			return 0, errors.New("constraint violation")
		}
		s.nextID++
		e.ID = s.nextID
		s.plans = append(s.plans, e)
	case *models.Plot:
		if s.failPlot != nil && s.failPlot(e) {
			return 0, errors.New("constraint violation")
		}
		s.nextID++
		e.ID = s.nextID
		s.plots = append(s.plots, e)
	default:
		return 0, errors.New("unexpected entity")
	}
	return entity.EntityID(), nil
}

type recordingMessenger struct {
	mu       sync.Mutex
	messages []Message
}

func (m *recordingMessenger) Notify(_ context.Context, msg Message) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, msg)
}
