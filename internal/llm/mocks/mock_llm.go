// Package mocks holds testify mocks in mockery's layout.
package mocks

import (
	context "context"

	llm "neptune-ai/backend/internal/llm"

	mock "github.com/stretchr/testify/mock"
)

// MockTokenCodec is a mock type for the TokenCodec type
type MockTokenCodec struct {
	mock.Mock
}

// Decode provides a mock function with given fields: ctx, ids, skipSpecial
func (_m *MockTokenCodec) Decode(ctx context.Context, ids []int, skipSpecial bool) (string, error) {
	ret := _m.Called(ctx, ids, skipSpecial)
	return ret.String(0), ret.Error(1)
}

// EOSTokenID provides a mock function with no fields
func (_m *MockTokenCodec) EOSTokenID() int {
	ret := _m.Called()
	return ret.Int(0)
}

// Encode provides a mock function with given fields: ctx, text
func (_m *MockTokenCodec) Encode(ctx context.Context, text string) ([]int, error) {
	ret := _m.Called(ctx, text)
	var r0 []int
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]int)
	}
	return r0, ret.Error(1)
}

// NewMockTokenCodec creates a new instance of MockTokenCodec. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewMockTokenCodec(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockTokenCodec {
	mock := &MockTokenCodec{}
	mock.Mock.Test(t)

	t.Cleanup(func() { mock.AssertExpectations(t) })

	return mock
}

// MockEngine is a mock type for the Engine type
type MockEngine struct {
	mock.Mock
}

// Codec provides a mock function with no fields
func (_m *MockEngine) Codec() llm.TokenCodec {
	ret := _m.Called()
	var r0 llm.TokenCodec
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(llm.TokenCodec)
	}
	return r0
}

// Generate provides a mock function with given fields: ctx, tokens, mask, cfg
func (_m *MockEngine) Generate(ctx context.Context, tokens []int, mask []int, cfg llm.GenerationConfig) ([]int, error) {
	ret := _m.Called(ctx, tokens, mask, cfg)
	var r0 []int
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]int)
	}
	return r0, ret.Error(1)
}

// Name provides a mock function with no fields
func (_m *MockEngine) Name() string {
	ret := _m.Called()
	return ret.String(0)
}

// NewMockEngine creates a new instance of MockEngine. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewMockEngine(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockEngine {
	mock := &MockEngine{}
	mock.Mock.Test(t)

	t.Cleanup(func() { mock.AssertExpectations(t) })

	return mock
}

// MockStreamingEngine is a mock type for the StreamingEngine type
type MockStreamingEngine struct {
	MockEngine
}

// GenerateStream provides a mock function with given fields: ctx, tokens, mask, cfg, emit
func (_m *MockStreamingEngine) GenerateStream(ctx context.Context, tokens []int, mask []int, cfg llm.GenerationConfig, emit func(string) error) error {
	ret := _m.Called(ctx, tokens, mask, cfg, emit)
	if rf, ok := ret.Get(0).(func(context.Context, []int, []int, llm.GenerationConfig, func(string) error) error); ok {
		return rf(ctx, tokens, mask, cfg, emit)
	}
	return ret.Error(0)
}

// NewMockStreamingEngine creates a new instance of MockStreamingEngine. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewMockStreamingEngine(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockStreamingEngine {
	mock := &MockStreamingEngine{}
	mock.Mock.Test(t)

	t.Cleanup(func() { mock.AssertExpectations(t) })

	return mock
}
