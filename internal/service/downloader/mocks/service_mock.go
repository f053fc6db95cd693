// Code generated by MockGen. DO NOT EDIT.
// Source: service.go
//
// Generated by this command:
//
//	mockgen -source=service.go -destination=mocks/service_mock.go
//

// Package mock_downloader is a generated GoMock package.
package mock_downloader

import (
	context "context"
	reflect "reflect"

	downloader "github.com/anorlov/qobuz-grabber/internal/service/downloader"
	gomock "go.uber.org/mock/gomock"
)

// MockService is a mock of Service interface.
type MockService struct {
	ctrl     *gomock.Controller
	recorder *MockServiceMockRecorder
	isgomock struct{}
}

// MockServiceMockRecorder is the mock recorder for MockService.
type MockServiceMockRecorder struct {
	mock *MockService
}

// NewMockService creates a new mock instance.
func NewMockService(ctrl *gomock.Controller) *MockService {
	mock := &MockService{ctrl: ctrl}
	mock.recorder = &MockServiceMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockService) EXPECT() *MockServiceMockRecorder {
	return m.recorder
}

// CancelTrack mocks base method.
func (m *MockService) CancelTrack(trackID string) bool {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "CancelTrack", trackID)
	ret0, _ := ret[0].(bool)
	return ret0
}

// CancelTrack indicates an expected call of CancelTrack.
func (mr *MockServiceMockRecorder) CancelTrack(trackID any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "CancelTrack", reflect.TypeOf((*MockService)(nil).CancelTrack), trackID)
}

// DownloadAlbum mocks base method.
func (m *MockService) DownloadAlbum(ctx context.Context, albumID string, opts *downloader.Options) *downloader.AggregateResult {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "DownloadAlbum", ctx, albumID, opts)
	ret0, _ := ret[0].(*downloader.AggregateResult)
	return ret0
}

// DownloadAlbum indicates an expected call of DownloadAlbum.
func (mr *MockServiceMockRecorder) DownloadAlbum(ctx, albumID, opts any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "DownloadAlbum", reflect.TypeOf((*MockService)(nil).DownloadAlbum), ctx, albumID, opts)
}

// DownloadArtist mocks base method.
func (m *MockService) DownloadArtist(ctx context.Context, artistID string, opts *downloader.Options) []*downloader.AggregateResult {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "DownloadArtist", ctx, artistID, opts)
	ret0, _ := ret[0].([]*downloader.AggregateResult)
	return ret0
}

// DownloadArtist indicates an expected call of DownloadArtist.
func (mr *MockServiceMockRecorder) DownloadArtist(ctx, artistID, opts any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "DownloadArtist", reflect.TypeOf((*MockService)(nil).DownloadArtist), ctx, artistID, opts)
}

// DownloadPlaylist mocks base method.
func (m *MockService) DownloadPlaylist(ctx context.Context, playlistID string, opts *downloader.Options) *downloader.AggregateResult {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "DownloadPlaylist", ctx, playlistID, opts)
	ret0, _ := ret[0].(*downloader.AggregateResult)
	return ret0
}

// DownloadPlaylist indicates an expected call of DownloadPlaylist.
func (mr *MockServiceMockRecorder) DownloadPlaylist(ctx, playlistID, opts any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "DownloadPlaylist", reflect.TypeOf((*MockService)(nil).DownloadPlaylist), ctx, playlistID, opts)
}

// DownloadTrack mocks base method.
func (m *MockService) DownloadTrack(ctx context.Context, trackID string, opts *downloader.Options) *downloader.Result {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "DownloadTrack", ctx, trackID, opts)
	ret0, _ := ret[0].(*downloader.Result)
	return ret0
}

// DownloadTrack indicates an expected call of DownloadTrack.
func (mr *MockServiceMockRecorder) DownloadTrack(ctx, trackID, opts any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "DownloadTrack", reflect.TypeOf((*MockService)(nil).DownloadTrack), ctx, trackID, opts)
}

// DownloadURLs mocks base method.
func (m *MockService) DownloadURLs(ctx context.Context, urls []string) {
	m.ctrl.T.Helper()
	m.ctrl.Call(m, "DownloadURLs", ctx, urls)
}

// DownloadURLs indicates an expected call of DownloadURLs.
func (mr *MockServiceMockRecorder) DownloadURLs(ctx, urls any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "DownloadURLs", reflect.TypeOf((*MockService)(nil).DownloadURLs), ctx, urls)
}

// PrintDownloadSummary mocks base method.
func (m *MockService) PrintDownloadSummary(ctx context.Context) {
	m.ctrl.T.Helper()
	m.ctrl.Call(m, "PrintDownloadSummary", ctx)
}

// PrintDownloadSummary indicates an expected call of PrintDownloadSummary.
func (mr *MockServiceMockRecorder) PrintDownloadSummary(ctx any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "PrintDownloadSummary", reflect.TypeOf((*MockService)(nil).PrintDownloadSummary), ctx)
}

// SubscribeProgress mocks base method.
func (m *MockService) SubscribeProgress(consumer downloader.ProgressFunc) {
	m.ctrl.T.Helper()
	m.ctrl.Call(m, "SubscribeProgress", consumer)
}

// SubscribeProgress indicates an expected call of SubscribeProgress.
func (mr *MockServiceMockRecorder) SubscribeProgress(consumer any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "SubscribeProgress", reflect.TypeOf((*MockService)(nil).SubscribeProgress), consumer)
}
