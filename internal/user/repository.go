package user

import (
	"context"
	"database/sql"
	"errors"

	"timebank/internal/api"
	"timebank/internal/auth"
	"timebank/internal/db"

	"github.com/jmoiron/sqlx"
)

const userColumns = `id, email, password_hash, first_name, last_name, faculty, student_id, role, active, created_at, updated_at`

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, u *User) error {
	query := `
		INSERT INTO users (email, password_hash, first_name, last_name, faculty, student_id, role, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`

	row := db.Conn(ctx, r.db).QueryRowxContext(ctx, query,
		u.Email, u.PasswordHash, u.FirstName, u.LastName, u.Faculty, u.StudentID, u.Role, u.Active)
	err := row.Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	if db.IsUniqueViolation(err) {
		return ErrEmailExists
	}
	return err
}

func (r *repository) FindByEmail(ctx context.Context, email string) (*User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (r *repository) FindByID(ctx context.Context, id int64) (*User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *repository) EmailExists(ctx context.Context, email string) (bool, error) {
	return db.Exists(ctx, db.Conn(ctx, r.db), `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`, email)
}

func (r *repository) List(ctx context.Context, page api.PageRequest) ([]User, int64, error) {
	q := db.Conn(ctx, r.db)

	var total int64
	if err := q.GetContext(ctx, &total, `SELECT COUNT(*) FROM users`); err != nil {
		return nil, 0, err
	}

	users := []User{}
	err := q.SelectContext(ctx, &users,
		`SELECT `+userColumns+` FROM users ORDER BY id LIMIT $1 OFFSET $2`,
		page.Limit(), page.Offset())
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (r *repository) SetActive(ctx context.Context, id int64, active bool) (*User, error) {
	return r.getOne(ctx, `
		UPDATE users SET active = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING `+userColumns, id, active)
}

func (r *repository) UpdateRole(ctx context.Context, id int64, role string) (*User, error) {
	return r.getOne(ctx, `
		UPDATE users SET role = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING `+userColumns, id, role)
}

func (r *repository) CountByRole(ctx context.Context, role string) (int64, error) {
	var n int64
	err := db.Conn(ctx, r.db).GetContext(ctx, &n, `SELECT COUNT(*) FROM users WHERE role = $1`, role)
	return n, err
}

func (r *repository) LockAdminIDs(ctx context.Context) ([]int64, error) {
	ids := []int64{}
	err := db.Conn(ctx, r.db).SelectContext(ctx, &ids,
		`SELECT id FROM users WHERE role = $1 ORDER BY id FOR UPDATE`, auth.RoleAdmin)
	return ids, err
}

func (r *repository) getOne(ctx context.Context, query string, args ...interface{}) (*User, error) {
	var u User
	err := db.Conn(ctx, r.db).GetContext(ctx, &u, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}
