package services_test

import (
	"context"
	"time"

	"catalogbench/internal/models"

	"github.com/stretchr/testify/mock"
)

// MockProductRepository is a mock implementation of repositories.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockProductRepository) InsertBatch(ctx context.Context, products []models.Product) error {
	args := m.Called(ctx, products)
	return args.Error(0)
}

func (m *MockProductRepository) Search(ctx context.Context, field models.SearchField, pattern string, limit int) ([]models.Product, error) {
	args := m.Called(ctx, field, pattern, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Product), args.Error(1)
}

func (m *MockProductRepository) FindByBarcode(ctx context.Context, barcode string) (*models.Product, error) {
	args := m.Called(ctx, barcode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

// MockRecorder is a mock implementation of metrics.Recorder
type MockRecorder struct {
	mock.Mock
}

func (m *MockRecorder) ObserveQuery(operation string, elapsed time.Duration, rows int) {
	m.Called(operation, elapsed, rows)
}

func (m *MockRecorder) SetSeedProgress(percent int) {
	m.Called(percent)
}

func (m *MockRecorder) AddSeeded(n int) {
	m.Called(n)
}

// MockPublisher is a mock implementation of services.EventPublisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishEvent(eventType string, payload any) error {
	args := m.Called(eventType, payload)
	return args.Error(0)
}
