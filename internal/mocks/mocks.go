package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"realtime-service/internal/store"
)

// StoreMock is a testify mock of the durable store contract.
type StoreMock struct {
	mock.Mock
}

func (m *StoreMock) AppendBounded(ctx context.Context, key string, value []byte, maxLen int64) error {
	args := m.Called(ctx, key, value, maxLen)
	return args.Error(0)
}

func (m *StoreMock) ReadRange(ctx context.Context, key string, start, stop int64) ([][]byte, error) {
	args := m.Called(ctx, key, start, stop)
	var entries [][]byte
	if val := args.Get(0); val != nil {
		entries = val.([][]byte)
	}
	return entries, args.Error(1)
}

func (m *StoreMock) SetAt(ctx context.Context, key string, index int64, value []byte) error {
	args := m.Called(ctx, key, index, value)
	return args.Error(0)
}

func (m *StoreMock) SetField(ctx context.Context, key, field, value string, ttl time.Duration) error {
	args := m.Called(ctx, key, field, value, ttl)
	return args.Error(0)
}

func (m *StoreMock) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *StoreMock) Close() error {
	args := m.Called()
	return args.Error(0)
}

var _ store.Store = (*StoreMock)(nil)
