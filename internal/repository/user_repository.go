package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Shresth17/SahayAI/internal/models"
)

var ErrUserNotFound = errors.New("user not found")

const userColumns = `
	id, email, password_hash, name, gender, phone, address, city, state, district, pincode, role, created_at, updated_at
`

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) Create(ctx context.Context, user models.User) error {
	const query = `
		INSERT INTO users (
			id, email, password_hash, name, gender, phone, address, city, state, district, pincode, role, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW(), NOW()
		)
	`

	_, err := r.pool.Exec(ctx, query,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.Name,
		user.Gender,
		user.Phone,
		user.Address,
		user.City,
		user.State,
		user.District,
		user.Pincode,
		user.Role,
	)
	return err
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (models.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return r.scanOne(r.pool.QueryRow(ctx, query, email))
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (models.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.scanOne(r.pool.QueryRow(ctx, query, id))
}

func (r *UserRepository) UpdateProfile(ctx context.Context, id string, profile models.Profile) (models.User, error) {
	const query = `
		UPDATE users
		SET name = $2, gender = $3, phone = $4, address = $5, city = $6, state = $7, district = $8, pincode = $9, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + userColumns

	return r.scanOne(r.pool.QueryRow(ctx, query,
		id,
		profile.Name,
		profile.Gender,
		profile.Phone,
		profile.Address,
		profile.City,
		profile.State,
		profile.District,
		profile.Pincode,
	))
}

func (r *UserRepository) scanOne(row pgx.Row) (models.User, error) {
	var user models.User
	if err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.Name,
		&user.Gender,
		&user.Phone,
		&user.Address,
		&user.City,
		&user.State,
		&user.District,
		&user.Pincode,
		&user.Role,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, err
	}
	return user, nil
}
