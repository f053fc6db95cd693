// Code generated by MockGen. DO NOT EDIT.
// Source: url_processor.go
//
// Generated by this command:
//
//	mockgen -source=url_processor.go -destination=mocks/url_processor_mock.go
//

// Package mock_downloader is a generated GoMock package.
package mock_downloader

import (
	context "context"
	reflect "reflect"

	downloader "github.com/anorlov/qobuz-grabber/internal/service/downloader"
	gomock "go.uber.org/mock/gomock"
)

// MockURLProcessor is a mock of URLProcessor interface.
type MockURLProcessor struct {
	ctrl     *gomock.Controller
	recorder *MockURLProcessorMockRecorder
	isgomock struct{}
}

// MockURLProcessorMockRecorder is the mock recorder for MockURLProcessor.
type MockURLProcessorMockRecorder struct {
	mock *MockURLProcessor
}

// NewMockURLProcessor creates a new mock instance.
func NewMockURLProcessor(ctrl *gomock.Controller) *MockURLProcessor {
	mock := &MockURLProcessor{ctrl: ctrl}
	mock.recorder = &MockURLProcessorMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockURLProcessor) EXPECT() *MockURLProcessorMockRecorder {
	return m.recorder
}

// DeduplicateDownloadItems mocks base method.
func (m *MockURLProcessor) DeduplicateDownloadItems(items []*downloader.DownloadItem) []*downloader.DownloadItem {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "DeduplicateDownloadItems", items)
	ret0, _ := ret[0].([]*downloader.DownloadItem)
	return ret0
}

// DeduplicateDownloadItems indicates an expected call of DeduplicateDownloadItems.
func (mr *MockURLProcessorMockRecorder) DeduplicateDownloadItems(items any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "DeduplicateDownloadItems", reflect.TypeOf((*MockURLProcessor)(nil).DeduplicateDownloadItems), items)
}

// ExtractDownloadItems mocks base method.
func (m *MockURLProcessor) ExtractDownloadItems(ctx context.Context, urls []string) (*downloader.ExtractDownloadItemsResponse, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "ExtractDownloadItems", ctx, urls)
	ret0, _ := ret[0].(*downloader.ExtractDownloadItemsResponse)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// ExtractDownloadItems indicates an expected call of ExtractDownloadItems.
func (mr *MockURLProcessorMockRecorder) ExtractDownloadItems(ctx, urls any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "ExtractDownloadItems", reflect.TypeOf((*MockURLProcessor)(nil).ExtractDownloadItems), ctx, urls)
}
