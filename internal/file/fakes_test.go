package file_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/google/uuid"

	"github.com/web3store/gateway/internal/file"
	"github.com/web3store/gateway/internal/storage"
)

// fakeRepo is an in-memory file.Repository.
type fakeRepo struct {
	mu      sync.Mutex
	records map[string]*file.File
	failAll bool
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{records: map[string]*file.File{}}
}

var errRepoDown = errors.New("repository unavailable")

func (r *fakeRepo) Create(_ context.Context, f *file.File) (*file.File, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll {
		return nil, errRepoDown
	}
	created := *f
	created.ID = uuid.NewString()
	r.records[created.ID] = &created
	return &created, nil
}

func (r *fakeRepo) GetByID(_ context.Context, id string) (*file.File, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll {
		return nil, errRepoDown
	}
	f, ok := r.records[id]
	if !ok {
		return nil, file.ErrNotFound
	}
	return f, nil
}

func (r *fakeRepo) GetByFilename(_ context.Context, wallet, filename string) (*file.File, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, f := range r.records {
		if f.WalletAddress == wallet && f.Filename == filename {
			return f, nil
		}
	}
	return nil, file.ErrNotFound
}

func (r *fakeRepo) ListByWallet(_ context.Context, wallet string) ([]*file.File, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll {
		return nil, errRepoDown
	}
	out := []*file.File{}
	for _, f := range r.records {
		if f.WalletAddress == wallet {
			out = append(out, f)
		}
	}
	return out, nil
}

func (r *fakeRepo) DeleteByID(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.records, id)
	return nil
}

func (r *fakeRepo) DeleteByFilename(_ context.Context, wallet, filename string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, f := range r.records {
		if f.WalletAddress == wallet && f.Filename == filename {
			delete(r.records, id)
			return nil
		}
	}
	return nil
}

func (r *fakeRepo) TotalSize(_ context.Context, wallet string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll {
		return 0, errRepoDown
	}
	var total int64
	for _, f := range r.records {
		if f.WalletAddress == wallet && !f.IsFolder {
			total += f.Size
		}
	}
	return total, nil
}

func (r *fakeRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}

// fakeStore is an in-memory storage.Storage.
type fakeStore struct {
	mu         sync.Mutex
	objects    map[string][]byte
	failPut    bool
	failDelete bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: map[string][]byte{}}
}

var errStoreDown = errors.New("object store unavailable")

func (s *fakeStore) Upload(_ context.Context, key string, r io.Reader, _ int64, _, _ string) (storage.UploadResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failPut {
		return storage.UploadResult{}, errStoreDown
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return storage.UploadResult{}, err
	}
	s.objects[key] = b
	return storage.UploadResult{Key: key, Location: s.PublicURL(key)}, nil
}

func (s *fakeStore) PutEmpty(_ context.Context, key string) (storage.UploadResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failPut {
		return storage.UploadResult{}, errStoreDown
	}
	s.objects[key] = nil
	return storage.UploadResult{Key: key, Location: s.PublicURL(key)}, nil
}

func (s *fakeStore) Fetch(_ context.Context, key string) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.objects[key]
	if !ok {
		return nil, fmt.Errorf("no object at %q", key)
	}
	return io.NopCloser(bytes.NewReader(b)), nil
}

func (s *fakeStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failDelete {
		return errStoreDown
	}
	// Deleting a missing key succeeds, like the real backend.
	delete(s.objects, key)
	return nil
}

func (s *fakeStore) PublicURL(key string) string {
	return "https://web3storage.example.com/" + key
}

func (s *fakeStore) has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.objects[key]
	return ok
}

func (s *fakeStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}
