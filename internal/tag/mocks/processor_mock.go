// Code generated by MockGen. DO NOT EDIT.
// Source: queue.go
//
// Generated by this command:
//
//	mockgen -source=queue.go -destination=mocks/processor_mock.go
//

// Package mock_tag is a generated GoMock package.
package mock_tag

import (
	context "context"
	reflect "reflect"

	tag "github.com/anorlov/qobuz-grabber/internal/tag"
	gomock "go.uber.org/mock/gomock"
)

// MockProcessor is a mock of Processor interface.
type MockProcessor struct {
	ctrl     *gomock.Controller
	recorder *MockProcessorMockRecorder
	isgomock struct{}
}

// MockProcessorMockRecorder is the mock recorder for MockProcessor.
type MockProcessorMockRecorder struct {
	mock *MockProcessor
}

// NewMockProcessor creates a new mock instance.
func NewMockProcessor(ctrl *gomock.Controller) *MockProcessor {
	mock := &MockProcessor{ctrl: ctrl}
	mock.recorder = &MockProcessorMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockProcessor) EXPECT() *MockProcessorMockRecorder {
	return m.recorder
}

// WriteTags mocks base method.
func (m *MockProcessor) WriteTags(ctx context.Context, req *tag.WriteRequest) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "WriteTags", ctx, req)
	ret0, _ := ret[0].(error)
	return ret0
}

// WriteTags indicates an expected call of WriteTags.
func (mr *MockProcessorMockRecorder) WriteTags(ctx, req any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "WriteTags", reflect.TypeOf((*MockProcessor)(nil).WriteTags), ctx, req)
}
