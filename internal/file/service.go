package file

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"golang.org/x/sync/errgroup"

	"github.com/web3store/gateway/internal/storage"
)

// Repository is the metadata-store surface the service needs.
type Repository interface {
	Create(ctx context.Context, f *File) (*File, error)
	GetByID(ctx context.Context, id string) (*File, error)
	GetByFilename(ctx context.Context, walletAddress, filename string) (*File, error)
	ListByWallet(ctx context.Context, walletAddress string) ([]*File, error)
	DeleteByID(ctx context.Context, id string) error
	DeleteByFilename(ctx context.Context, walletAddress, filename string) error
	TotalSize(ctx context.Context, walletAddress string) (int64, error)
}

// Service contains business logic for file and folder management.
//
// The object store and the metadata store are written in two independent
// steps with no transaction across them. Creation paths compensate: if the
// metadata insert fails, the freshly written object is deleted (best effort).
// The delete path removes the object first and keeps the record when that
// fails, so the two stores can still drift on a failed delete.
type Service struct {
	repo  Repository
	store storage.Storage
}

// NewService creates a new file Service.
func NewService(repo Repository, store storage.Storage) *Service {
	return &Service{repo: repo, store: store}
}

// Upload stores the file bytes under the wallet's key and records its
// metadata. Returns the storage result and the created record.
func (s *Service) Upload(ctx context.Context, walletAddress, filename, contentType string, size int64, r io.Reader) (storage.UploadResult, *File, error) {
	key := ObjectKey(walletAddress, filename)

	res, err := s.store.Upload(ctx, key, r, size, contentType, filename)
	if err != nil {
		return storage.UploadResult{}, nil, fmt.Errorf("upload %q: %w", key, err)
	}

	rec, err := s.repo.Create(ctx, &File{
		Filename:      filename,
		Path:          key,
		Extension:     Extension(filename),
		Size:          size,
		WalletAddress: walletAddress,
		URL:           res.Location,
	})
	if err != nil {
		s.compensate(key)
		return storage.UploadResult{}, nil, err
	}
	return res, rec, nil
}

// CreateFolder writes a zero-byte marker object and records a folder
// placeholder for it.
func (s *Service) CreateFolder(ctx context.Context, walletAddress, folderName string) (storage.UploadResult, *File, error) {
	key := FolderKey(walletAddress, folderName)

	res, err := s.store.PutEmpty(ctx, key)
	if err != nil {
		return storage.UploadResult{}, nil, fmt.Errorf("create folder %q: %w", key, err)
	}

	rec, err := s.repo.Create(ctx, &File{
		Filename:      folderName,
		Path:          key,
		WalletAddress: walletAddress,
		URL:           res.Location,
		IsFolder:      true,
	})
	if err != nil {
		s.compensate(key)
		return storage.UploadResult{}, nil, err
	}
	return res, rec, nil
}

// Delete removes one file by (wallet, filename): object first, then record.
// When the object delete fails the record is kept and the error surfaced, so
// the caller can retry; this is the documented drift window.
func (s *Service) Delete(ctx context.Context, walletAddress, filename string) error {
	rec, err := s.repo.GetByFilename(ctx, walletAddress, filename)
	if err != nil {
		return err
	}

	key := rec.Path
	if key == "" {
		key = ObjectKey(rec.WalletAddress, rec.Filename)
	}
	if err := s.store.Delete(ctx, key); err != nil {
		return fmt.Errorf("delete object %q: %w", key, err)
	}
	return s.repo.DeleteByID(ctx, rec.ID)
}

// DeleteMany removes the files identified by ids, each id as its own
// object-then-record pipeline, all running concurrently. Unknown ids are
// skipped with a warning, as are records not owned by owner when owner is
// non-empty. The first failing pipeline cancels the rest and fails the whole
// call; completed deletions are not rolled back.
func (s *Service) DeleteMany(ctx context.Context, ids []string, owner string) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, id := range ids {
		id := id
		g.Go(func() error {
			rec, err := s.repo.GetByID(ctx, id)
			if errors.Is(err, ErrNotFound) {
				log.Printf("delete-multiple: no record for id %s, skipping", id)
				return nil
			}
			if err != nil {
				return err
			}
			if owner != "" && rec.WalletAddress != owner {
				log.Printf("delete-multiple: id %s not owned by caller, skipping", id)
				return nil
			}

			key := rec.Path
			if key == "" {
				key = ObjectKey(rec.WalletAddress, rec.Filename)
			}
			if err := s.store.Delete(ctx, key); err != nil {
				return fmt.Errorf("delete object %q: %w", key, err)
			}
			return s.repo.DeleteByID(ctx, id)
		})
	}
	return g.Wait()
}

// Get returns one record by id.
func (s *Service) Get(ctx context.Context, id string) (*File, error) {
	return s.repo.GetByID(ctx, id)
}

// ListByWallet returns all records owned by a wallet.
func (s *Service) ListByWallet(ctx context.Context, walletAddress string) ([]*File, error) {
	return s.repo.ListByWallet(ctx, walletAddress)
}

// TotalSize returns the summed byte size of the wallet's non-folder records.
func (s *Service) TotalSize(ctx context.Context, walletAddress string) (int64, error) {
	return s.repo.TotalSize(ctx, walletAddress)
}

// Download resolves a record by id and opens its bytes from the object store
// at the record's stored key. Folder records carry no bytes.
func (s *Service) Download(ctx context.Context, id string) (*File, io.ReadCloser, error) {
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if rec.IsFolder {
		return nil, nil, ErrNotFound
	}

	key := rec.Path
	if key == "" {
		key = ObjectKey(rec.WalletAddress, rec.Filename)
	}
	body, err := s.store.Fetch(ctx, key)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch %q: %w", key, err)
	}
	return rec, body, nil
}

// IsNotFound returns true when the error indicates a missing record.
func (s *Service) IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// compensate removes an object written by a creation path whose metadata
// insert failed. Uses a fresh context so a cancelled request cannot leave
// the orphan behind silently.
func (s *Service) compensate(key string) {
	if err := s.store.Delete(context.Background(), key); err != nil {
		log.Printf("compensating delete of %q failed, object is orphaned: %v", key, err)
	}
}
