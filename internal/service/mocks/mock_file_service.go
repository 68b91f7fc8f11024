package mocks

import (
	"context"
	"io"

	"filedepot/internal/model"
	"filedepot/internal/service"
	"filedepot/internal/storage"

	"github.com/stretchr/testify/mock"
)

type MockFileService struct {
	mock.Mock
}

func (m *MockFileService) Upload(ctx context.Context, r io.Reader, originalName, description string, size int64) (*model.File, error) {
	args := m.Called(ctx, r, originalName, description, size)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.File), args.Error(1)
}

func (m *MockFileService) List(ctx context.Context) (*service.FileListResult, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.FileListResult), args.Error(1)
}

func (m *MockFileService) Download(ctx context.Context, key string) (io.ReadCloser, storage.ObjectInfo, *model.File, error) {
	args := m.Called(ctx, key)
	var rc io.ReadCloser
	if args.Get(0) != nil {
		rc = args.Get(0).(io.ReadCloser)
	}
	var f *model.File
	if args.Get(2) != nil {
		f = args.Get(2).(*model.File)
	}
	return rc, args.Get(1).(storage.ObjectInfo), f, args.Error(3)
}

func (m *MockFileService) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}
