// Package mocks holds testify mocks in mockery's layout.
package mocks

import (
	context "context"

	model "neptune-ai/backend/internal/model"
	service "neptune-ai/backend/internal/service"
	stream "neptune-ai/backend/internal/stream"

	mock "github.com/stretchr/testify/mock"
)

// MockChatService is a mock type for the ChatService type
type MockChatService struct {
	mock.Mock
}

// Reply provides a mock function with given fields: ctx, ep, req
func (_m *MockChatService) Reply(ctx context.Context, ep service.Endpoint, req *service.ChatRequest) (string, error) {
	ret := _m.Called(ctx, ep, req)
	return ret.String(0), ret.Error(1)
}

// Stream provides a mock function with given fields: ctx, ep, req
func (_m *MockChatService) Stream(ctx context.Context, ep service.Endpoint, req *service.ChatRequest) (*stream.Bridge, error) {
	ret := _m.Called(ctx, ep, req)
	var r0 *stream.Bridge
	if rf, ok := ret.Get(0).(func(context.Context, service.Endpoint, *service.ChatRequest) *stream.Bridge); ok {
		r0 = rf(ctx, ep, req)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).(*stream.Bridge)
	}
	return r0, ret.Error(1)
}

// NewMockChatService creates a new instance of MockChatService. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewMockChatService(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockChatService {
	mock := &MockChatService{}
	mock.Mock.Test(t)

	t.Cleanup(func() { mock.AssertExpectations(t) })

	return mock
}

// MockAuthService is a mock type for the AuthService type
type MockAuthService struct {
	mock.Mock
}

// Authenticate provides a mock function with given fields: token
func (_m *MockAuthService) Authenticate(token string) (string, error) {
	ret := _m.Called(token)
	return ret.String(0), ret.Error(1)
}

// Login provides a mock function with given fields: ctx, req
func (_m *MockAuthService) Login(ctx context.Context, req *service.LoginRequest) (*service.TokenResponse, error) {
	ret := _m.Called(ctx, req)
	var r0 *service.TokenResponse
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*service.TokenResponse)
	}
	return r0, ret.Error(1)
}

// Me provides a mock function with given fields: ctx, userID
func (_m *MockAuthService) Me(ctx context.Context, userID string) (*model.User, error) {
	ret := _m.Called(ctx, userID)
	var r0 *model.User
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*model.User)
	}
	return r0, ret.Error(1)
}

// Register provides a mock function with given fields: ctx, req
func (_m *MockAuthService) Register(ctx context.Context, req *service.RegisterRequest) (*model.User, error) {
	ret := _m.Called(ctx, req)
	var r0 *model.User
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*model.User)
	}
	return r0, ret.Error(1)
}

// NewMockAuthService creates a new instance of MockAuthService. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewMockAuthService(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockAuthService {
	mock := &MockAuthService{}
	mock.Mock.Test(t)

	t.Cleanup(func() { mock.AssertExpectations(t) })

	return mock
}

// MockSessionService is a mock type for the SessionService type
type MockSessionService struct {
	mock.Mock
}

// Create provides a mock function with given fields: ctx, userID, req
func (_m *MockSessionService) Create(ctx context.Context, userID string, req *service.CreateSessionRequest) (string, error) {
	ret := _m.Called(ctx, userID, req)
	return ret.String(0), ret.Error(1)
}

// Get provides a mock function with given fields: ctx, userID, sessionID
func (_m *MockSessionService) Get(ctx context.Context, userID string, sessionID string) (*model.Session, error) {
	ret := _m.Called(ctx, userID, sessionID)
	var r0 *model.Session
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*model.Session)
	}
	return r0, ret.Error(1)
}

// List provides a mock function with given fields: ctx, userID
func (_m *MockSessionService) List(ctx context.Context, userID string) ([]*model.Session, error) {
	ret := _m.Called(ctx, userID)
	var r0 []*model.Session
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]*model.Session)
	}
	return r0, ret.Error(1)
}

// NewMockSessionService creates a new instance of MockSessionService. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewMockSessionService(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockSessionService {
	mock := &MockSessionService{}
	mock.Mock.Test(t)

	t.Cleanup(func() { mock.AssertExpectations(t) })

	return mock
}

// MockModelService is a mock type for the ModelService type
type MockModelService struct {
	mock.Mock
}

// List provides a mock function with no fields
func (_m *MockModelService) List() []service.BackendInfo {
	ret := _m.Called()
	var r0 []service.BackendInfo
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]service.BackendInfo)
	}
	return r0
}

// NewMockModelService creates a new instance of MockModelService. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewMockModelService(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockModelService {
	mock := &MockModelService{}
	mock.Mock.Test(t)

	t.Cleanup(func() { mock.AssertExpectations(t) })

	return mock
}
