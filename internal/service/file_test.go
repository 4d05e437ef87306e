package service

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/crewdeck/crewdeck/internal/domain/model"
	apperrors "github.com/crewdeck/crewdeck/internal/errors"
	"github.com/crewdeck/crewdeck/internal/mocks"
)

// fakeFileStore is an in-memory ports.FileStore with injectable failures.
type fakeFileStore struct {
	mu    sync.Mutex
	blobs map[string][]byte

	putErr error
}

func newFakeFileStore() *fakeFileStore {
	return &fakeFileStore{blobs: make(map[string][]byte)}
}

func (s *fakeFileStore) Put(_ context.Context, key string, r io.Reader) (int64, error) {
	if s.putErr != nil {
		return 0, s.putErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[key] = data
	return int64(len(data)), nil
}

func (s *fakeFileStore) Open(_ context.Context, key string) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.blobs[key]
	if !ok {
		return nil, apperrors.NotFoundf("file %q not found", key)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *fakeFileStore) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.blobs, key)
	return nil
}

func (s *fakeFileStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.blobs)
}

func newFileService(t *testing.T) (*fakeFileStore, *mocks.MockFileRepository, *FileService) {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	store := newFakeFileStore()
	repo := mocks.NewMockFileRepository(ctrl)
	svc, err := NewFileService(FileServiceOptions{Store: store, Files: repo})
	require.NoError(t, err)
	return store, repo, svc
}

func TestFileService_Upload(t *testing.T) {
	t.Parallel()
	store, repo, svc := newFileService(t)
	ctx := context.Background()

	repo.EXPECT().
		Create(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, req *model.CreateFileRequest) (*model.FileRecord, error) {
			assert.Equal(t, "site-swms.pdf", req.Name)
			assert.True(t, strings.HasPrefix(req.Path, "files/"))
			assert.Equal(t, int64(9), req.SizeBytes)
			assert.Equal(t, "u1", req.UploadedBy)
			return &model.FileRecord{ID: "f1", Name: req.Name, Path: req.Path}, nil
		})

	record, err := svc.Upload(ctx, UploadInput{
		Name:        "site-swms.pdf",
		ContentType: "application/pdf",
		UploadedBy:  "u1",
		Body:        strings.NewReader("blob body"),
	})
	require.NoError(t, err)
	assert.Equal(t, "f1", record.ID)
	assert.Equal(t, 1, store.len())
}

func TestFileService_Upload_StripsDirectories(t *testing.T) {
	t.Parallel()
	_, repo, svc := newFileService(t)
	ctx := context.Background()

	repo.EXPECT().
		Create(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, req *model.CreateFileRequest) (*model.FileRecord, error) {
			assert.Equal(t, "evil.sh", req.Name)
			return &model.FileRecord{ID: "f1"}, nil
		})

	_, err := svc.Upload(ctx, UploadInput{
		Name:       "../../evil.sh",
		UploadedBy: "u1",
		Body:       strings.NewReader("x"),
	})
	require.NoError(t, err)
}

func TestFileService_Upload_CleansBlobWhenInsertFails(t *testing.T) {
	t.Parallel()
	store, repo, svc := newFileService(t)
	ctx := context.Background()

	repo.EXPECT().
		Create(ctx, gomock.Any()).
		Return(nil, apperrors.Conflict("duplicate"))

	_, err := svc.Upload(ctx, UploadInput{
		Name:       "doc.pdf",
		UploadedBy: "u1",
		Body:       strings.NewReader("x"),
	})
	require.Error(t, err)
	assert.Equal(t, 0, store.len())
}

func TestFileService_Upload_Validation(t *testing.T) {
	t.Parallel()
	_, _, svc := newFileService(t)
	ctx := context.Background()

	_, err := svc.Upload(ctx, UploadInput{UploadedBy: "u1", Body: strings.NewReader("x")})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))

	_, err = svc.Upload(ctx, UploadInput{Name: "a.pdf", Body: strings.NewReader("x")})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))

	_, err = svc.Upload(ctx, UploadInput{Name: "a.pdf", UploadedBy: "u1"})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestFileService_Download(t *testing.T) {
	t.Parallel()
	store, repo, svc := newFileService(t)
	ctx := context.Background()

	_, err := store.Put(ctx, "files/k1/doc.pdf", strings.NewReader("contents"))
	require.NoError(t, err)
	repo.EXPECT().
		GetByID(ctx, "f1").
		Return(&model.FileRecord{ID: "f1", Name: "doc.pdf", Path: "files/k1/doc.pdf"}, nil)

	record, rc, err := svc.Download(ctx, "f1")
	require.NoError(t, err)
	defer rc.Close()
	assert.Equal(t, "doc.pdf", record.Name)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "contents", string(data))
}

func TestFileService_Delete_RemovesBlob(t *testing.T) {
	t.Parallel()
	store, repo, svc := newFileService(t)
	ctx := context.Background()

	_, err := store.Put(ctx, "files/k1/doc.pdf", strings.NewReader("contents"))
	require.NoError(t, err)
	repo.EXPECT().Delete(ctx, "f1").Return("files/k1/doc.pdf", nil)

	require.NoError(t, svc.Delete(ctx, "f1"))
	assert.Equal(t, 0, store.len())
}
