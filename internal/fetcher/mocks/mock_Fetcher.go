// Package mocks provides test doubles for the fetcher package.
package mocks

import (
	"context"
	"io"

	mock "github.com/stretchr/testify/mock"
)

// MockFetcher is a mock type for the Fetcher interface.
type MockFetcher struct {
	mock.Mock
}

// DownloadIfChanged provides a mock function with given fields: ctx, url, etag
func (_m *MockFetcher) DownloadIfChanged(ctx context.Context, url string, etag string) (io.ReadCloser, string, bool, error) {
	ret := _m.Called(ctx, url, etag)

	if len(ret) == 0 {
		panic("no return value specified for DownloadIfChanged")
	}

	if rf, ok := ret.Get(0).(func(context.Context, string, string) (io.ReadCloser, string, bool, error)); ok {
		return rf(ctx, url, etag)
	}

	var r0 io.ReadCloser
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(io.ReadCloser)
	}

	return r0, ret.String(1), ret.Bool(2), ret.Error(3)
}

// NewMockFetcher creates a new instance of MockFetcher.
func NewMockFetcher(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockFetcher {
	m := &MockFetcher{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
