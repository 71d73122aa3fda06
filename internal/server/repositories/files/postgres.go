package files

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/filevault/internal/common"
	"github.com/dmitrijs2005/filevault/internal/dbx"
	"github.com/dmitrijs2005/filevault/internal/server/models"
	"github.com/dmitrijs2005/filevault/internal/server/repositories"
)

// PostgresRepository implements file metadata storage over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts f. An id already taken in the container yields
// common.ErrAlreadyExists.
func (r *PostgresRepository) Create(ctx context.Context, f *models.File) (*models.File, error) {
	query := `
		INSERT INTO files (container_id, id, owner_id, name, mime_type, size_original, storage_key)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at`

	err := r.db.QueryRowContext(ctx, query,
		f.ContainerID, f.ID, f.OwnerID, f.Name, f.MIMEType, f.SizeOriginal, f.StorageKey).Scan(&f.CreatedAt)
	if err != nil {
		if repositories.IsUniqueViolation(err) {
			return nil, common.ErrAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return f, nil
}

func (r *PostgresRepository) ListByOwner(ctx context.Context, ownerID, containerID string) ([]*models.File, error) {
	query := `
		SELECT container_id, id, owner_id, name, mime_type, size_original, storage_key, created_at
		FROM files
		WHERE owner_id = $1 AND container_id = $2
		ORDER BY created_at, id`

	rows, err := r.db.QueryContext(ctx, query, ownerID, containerID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.File, 0)
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan error: %w", err)
		}
		result = append(result, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) Get(ctx context.Context, containerID, id string) (*models.File, error) {
	query := `
		SELECT container_id, id, owner_id, name, mime_type, size_original, storage_key, created_at
		FROM files
		WHERE container_id = $1 AND id = $2`

	f, err := scanFile(r.db.QueryRowContext(ctx, query, containerID, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return f, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, ownerID, containerID, id string) (string, error) {
	query := `
		DELETE FROM files
		WHERE owner_id = $1 AND container_id = $2 AND id = $3
		RETURNING storage_key`

	var key string
	if err := r.db.QueryRowContext(ctx, query, ownerID, containerID, id).Scan(&key); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", common.ErrorNotFound
		}
		return "", fmt.Errorf("db error: %w", err)
	}
	return key, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanFile(s scanner) (*models.File, error) {
	f := &models.File{}
	err := s.Scan(&f.ContainerID, &f.ID, &f.OwnerID, &f.Name, &f.MIMEType, &f.SizeOriginal, &f.StorageKey, &f.CreatedAt)
	if err != nil {
		return nil, err
	}
	return f, nil
}
