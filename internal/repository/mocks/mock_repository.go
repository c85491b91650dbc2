// Package mocks holds testify mocks in mockery's layout.
package mocks

import (
	context "context"

	model "neptune-ai/backend/internal/model"

	mock "github.com/stretchr/testify/mock"
)

// MockRepository is a mock type for the Repository type
type MockRepository struct {
	mock.Mock
}

// CreateSession provides a mock function with given fields: ctx, session
func (_m *MockRepository) CreateSession(ctx context.Context, session *model.Session) error {
	ret := _m.Called(ctx, session)
	return ret.Error(0)
}

// CreateUser provides a mock function with given fields: ctx, user
func (_m *MockRepository) CreateUser(ctx context.Context, user *model.User) error {
	ret := _m.Called(ctx, user)
	return ret.Error(0)
}

// GetSession provides a mock function with given fields: ctx, sessionID
func (_m *MockRepository) GetSession(ctx context.Context, sessionID string) (*model.Session, error) {
	ret := _m.Called(ctx, sessionID)
	var r0 *model.Session
	if rf, ok := ret.Get(0).(func(context.Context, string) *model.Session); ok {
		r0 = rf(ctx, sessionID)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).(*model.Session)
	}
	return r0, ret.Error(1)
}

// GetUserByEmail provides a mock function with given fields: ctx, email
func (_m *MockRepository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	ret := _m.Called(ctx, email)
	var r0 *model.User
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*model.User)
	}
	return r0, ret.Error(1)
}

// GetUserByID provides a mock function with given fields: ctx, userID
func (_m *MockRepository) GetUserByID(ctx context.Context, userID string) (*model.User, error) {
	ret := _m.Called(ctx, userID)
	var r0 *model.User
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*model.User)
	}
	return r0, ret.Error(1)
}

// ListSessions provides a mock function with given fields: ctx, userID
func (_m *MockRepository) ListSessions(ctx context.Context, userID string) ([]*model.Session, error) {
	ret := _m.Called(ctx, userID)
	var r0 []*model.Session
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]*model.Session)
	}
	return r0, ret.Error(1)
}

// NewMockRepository creates a new instance of MockRepository. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
// The first argument is typically a *testing.T value.
func NewMockRepository(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockRepository {
	mock := &MockRepository{}
	mock.Mock.Test(t)

	t.Cleanup(func() { mock.AssertExpectations(t) })

	return mock
}
