// Code generated by MockGen. DO NOT EDIT.
// Source: client.go
//
// Generated by this command:
//
//	mockgen -source=client.go -destination=mocks/client_mock.go
//

// Package mock_lyrics is a generated GoMock package.
package mock_lyrics

import (
	context "context"
	reflect "reflect"

	lyrics "github.com/anorlov/qobuz-grabber/internal/client/lyrics"
	gomock "go.uber.org/mock/gomock"
)

// MockClient is a mock of Client interface.
type MockClient struct {
	ctrl     *gomock.Controller
	recorder *MockClientMockRecorder
	isgomock struct{}
}

// MockClientMockRecorder is the mock recorder for MockClient.
type MockClientMockRecorder struct {
	mock *MockClient
}

// NewMockClient creates a new mock instance.
func NewMockClient(ctrl *gomock.Controller) *MockClient {
	mock := &MockClient{ctrl: ctrl}
	mock.recorder = &MockClientMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockClient) EXPECT() *MockClientMockRecorder {
	return m.recorder
}

// GetLyrics mocks base method.
func (m *MockClient) GetLyrics(ctx context.Context, request *lyrics.GetLyricsRequest) (*lyrics.Lyrics, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "GetLyrics", ctx, request)
	ret0, _ := ret[0].(*lyrics.Lyrics)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// GetLyrics indicates an expected call of GetLyrics.
func (mr *MockClientMockRecorder) GetLyrics(ctx, request any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "GetLyrics", reflect.TypeOf((*MockClient)(nil).GetLyrics), ctx, request)
}
