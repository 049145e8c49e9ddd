package profile

import (
	"context"
	"database/sql"
	"errors"

	profileerrors "go-leave/internal/profile/errors"
	"go-leave/internal/shared/dbutil"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

//go:generate mockgen -source=profile_repo.go -destination=mock/profile_repo_mock.go -package=mock

type Repository interface {
	WithTx(tx *sql.Tx) Repository
	FindByID(ctx context.Context, id string) (*Profile, error)
}

type repository struct {
	db *gorm.DB
	tx *sql.Tx
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: r.db, tx: tx}
}

func (r *repository) FindByID(ctx context.Context, id string) (*Profile, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, profileerrors.ErrInvalidProfileID
	}

	var p Profile
	err := dbutil.Conn(ctx, r.db, r.tx).First(&p, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, profileerrors.ErrProfileNotFound
		}
		return nil, err
	}
	return &p, nil
}
