package service

import (
	"context"

	"github.com/stretchr/testify/mock"

	"socialdash/internal/repository"
)

// mockStore is a testify mock of repository.Store.
type mockStore[T any] struct {
	mock.Mock
}

var _ repository.Store[struct{}] = (*mockStore[struct{}])(nil)

func (m *mockStore[T]) Create(ctx context.Context, doc *T) error {
	args := m.Called(ctx, doc)
	return args.Error(0)
}

func (m *mockStore[T]) Find(ctx context.Context, q repository.Query) ([]T, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]T), args.Error(1)
}

func (m *mockStore[T]) FindOne(ctx context.Context, q repository.Query) (*T, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*T), args.Error(1)
}

func (m *mockStore[T]) FindByID(ctx context.Context, id string) (*T, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*T), args.Error(1)
}

func (m *mockStore[T]) UpdateByID(ctx context.Context, id string, patch map[string]interface{}) (*T, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*T), args.Error(1)
}

func (m *mockStore[T]) DeleteByID(ctx context.Context, id string) (*T, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*T), args.Error(1)
}

func (m *mockStore[T]) Count(ctx context.Context, q repository.Query) (int64, error) {
	args := m.Called(ctx, q)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockStore[T]) Save(ctx context.Context, doc *T) error {
	args := m.Called(ctx, doc)
	return args.Error(0)
}

// hasCond matches a Query containing the given equality condition.
func hasCond(column string, value interface{}) interface{} {
	return mock.MatchedBy(func(q repository.Query) bool {
		for _, c := range q.Conds {
			if c.Column == column && c.Value == value {
				return true
			}
		}
		return false
	})
}
