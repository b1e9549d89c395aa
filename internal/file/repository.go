// Package file manages stored file and folder metadata and its persistence.
package file

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// File represents a stored file or a folder placeholder owned by a wallet.
type File struct {
	ID            string    `json:"id"`
	Filename      string    `json:"filename"`
	Path          string    `json:"path"`
	Extension     string    `json:"extension"`
	Size          int64     `json:"size"`
	WalletAddress string    `json:"walletAddress"`
	URL           string    `json:"url"`
	IsFolder      bool      `json:"isFolder"`
	CreatedAt     time.Time `json:"createdAt"`
}

// ErrNotFound is returned when a file record does not exist.
var ErrNotFound = errors.New("file not found")

const fileColumns = `id, filename, path, extension, size, wallet_address, url, is_folder, created_at`

// PgRepository handles all file database operations.
type PgRepository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new PgRepository with the given connection pool.
func NewRepository(db *pgxpool.Pool) *PgRepository {
	return &PgRepository{db: db}
}

// Create inserts a new record, assigning its id, and returns the stored row.
func (r *PgRepository) Create(ctx context.Context, f *File) (*File, error) {
	created := &File{}
	err := r.db.QueryRow(ctx,
		`INSERT INTO files (id, filename, path, extension, size, wallet_address, url, is_folder)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING `+fileColumns,
		uuid.NewString(), f.Filename, f.Path, f.Extension, f.Size, f.WalletAddress, f.URL, f.IsFolder,
	).Scan(&created.ID, &created.Filename, &created.Path, &created.Extension, &created.Size,
		&created.WalletAddress, &created.URL, &created.IsFolder, &created.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create file record: %w", err)
	}
	return created, nil
}

// GetByID fetches a record by its id.
func (r *PgRepository) GetByID(ctx context.Context, id string) (*File, error) {
	return r.scanOne(r.db.QueryRow(ctx,
		`SELECT `+fileColumns+` FROM files WHERE id = $1`, id), "get file by id")
}

// GetByFilename fetches a record by filename within a wallet. Filenames are
// not unique across wallets, so lookups are always wallet-scoped; within one
// wallet the first match wins.
func (r *PgRepository) GetByFilename(ctx context.Context, walletAddress, filename string) (*File, error) {
	return r.scanOne(r.db.QueryRow(ctx,
		`SELECT `+fileColumns+` FROM files
		 WHERE wallet_address = $1 AND filename = $2
		 LIMIT 1`, walletAddress, filename), "get file by filename")
}

// ListByWallet returns all records owned by a wallet, folders included.
func (r *PgRepository) ListByWallet(ctx context.Context, walletAddress string) ([]*File, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+fileColumns+` FROM files WHERE wallet_address = $1`, walletAddress)
	if err != nil {
		return nil, fmt.Errorf("list files by wallet: %w", err)
	}
	defer rows.Close()

	files := []*File{}
	for rows.Next() {
		f := &File{}
		if err := rows.Scan(&f.ID, &f.Filename, &f.Path, &f.Extension, &f.Size,
			&f.WalletAddress, &f.URL, &f.IsFolder, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan file row: %w", err)
		}
		files = append(files, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list files by wallet: %w", err)
	}
	return files, nil
}

// DeleteByID removes the record with the given id. Missing ids are not an error.
func (r *PgRepository) DeleteByID(ctx context.Context, id string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM files WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete file by id: %w", err)
	}
	return nil
}

// DeleteByFilename removes one record matching (wallet, filename).
func (r *PgRepository) DeleteByFilename(ctx context.Context, walletAddress, filename string) error {
	_, err := r.db.Exec(ctx,
		`DELETE FROM files WHERE id IN (
		    SELECT id FROM files WHERE wallet_address = $1 AND filename = $2 LIMIT 1
		 )`, walletAddress, filename)
	if err != nil {
		return fmt.Errorf("delete file by filename: %w", err)
	}
	return nil
}

// TotalSize sums the byte sizes of all non-folder records owned by a wallet.
// Returns 0 when the wallet owns nothing.
func (r *PgRepository) TotalSize(ctx context.Context, walletAddress string) (int64, error) {
	var total int64
	err := r.db.QueryRow(ctx,
		`SELECT COALESCE(SUM(size), 0) FROM files
		 WHERE wallet_address = $1 AND is_folder = FALSE`, walletAddress).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum sizes for wallet: %w", err)
	}
	return total, nil
}

func (r *PgRepository) scanOne(row pgx.Row, op string) (*File, error) {
	f := &File{}
	err := row.Scan(&f.ID, &f.Filename, &f.Path, &f.Extension, &f.Size,
		&f.WalletAddress, &f.URL, &f.IsFolder, &f.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return f, nil
}
