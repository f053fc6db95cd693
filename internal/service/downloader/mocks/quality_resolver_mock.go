// Code generated by MockGen. DO NOT EDIT.
// Source: quality.go
//
// Generated by this command:
//
//	mockgen -source=quality.go -destination=mocks/quality_resolver_mock.go
//

// Package mock_downloader is a generated GoMock package.
package mock_downloader

import (
	context "context"
	reflect "reflect"

	downloader "github.com/anorlov/qobuz-grabber/internal/service/downloader"
	gomock "go.uber.org/mock/gomock"
)

// MockQualityResolver is a mock of QualityResolver interface.
type MockQualityResolver struct {
	ctrl     *gomock.Controller
	recorder *MockQualityResolverMockRecorder
	isgomock struct{}
}

// MockQualityResolverMockRecorder is the mock recorder for MockQualityResolver.
type MockQualityResolverMockRecorder struct {
	mock *MockQualityResolver
}

// NewMockQualityResolver creates a new mock instance.
func NewMockQualityResolver(ctrl *gomock.Controller) *MockQualityResolver {
	mock := &MockQualityResolver{ctrl: ctrl}
	mock.recorder = &MockQualityResolverMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockQualityResolver) EXPECT() *MockQualityResolverMockRecorder {
	return m.recorder
}

// ResolveQuality mocks base method.
func (m *MockQualityResolver) ResolveQuality(ctx context.Context, trackID string, preferredFormatID int64) (*downloader.QualityResolutionResult, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "ResolveQuality", ctx, trackID, preferredFormatID)
	ret0, _ := ret[0].(*downloader.QualityResolutionResult)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// ResolveQuality indicates an expected call of ResolveQuality.
func (mr *MockQualityResolverMockRecorder) ResolveQuality(ctx, trackID, preferredFormatID any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "ResolveQuality", reflect.TypeOf((*MockQualityResolver)(nil).ResolveQuality), ctx, trackID, preferredFormatID)
}
