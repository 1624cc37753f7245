package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/salon-reservation/internal/model"
	"github.com/iliyamo/salon-reservation/internal/utils"
)

const userColumns = `id, name, surname, username, password_hash, role, phone, photo, active, created_at, updated_at`

type UserRepo struct {
	db sqlx.ExtContext
}

func NewUserRepo(db sqlx.ExtContext) *UserRepo { return &UserRepo{db: db} }

func (r *UserRepo) WithTx(tx *sqlx.Tx) *UserRepo { return &UserRepo{db: tx} }

// NormalizeUsername lower-cases and trims a login handle.
func NormalizeUsername(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

// Create hashes password, inserts u and sets its ID.  A taken username
// yields ErrDuplicate.
func (r *UserRepo) Create(ctx context.Context, u *model.User, password string, cost int) error {
	u.Username = NormalizeUsername(u.Username)
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (name, surname, username, password_hash, role, phone, photo) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		u.Name, u.Surname, u.Username, hash, u.Role, u.Phone, u.Photo)
	if err != nil {
		if isDuplicate(err) {
			return ErrDuplicate
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	u.ID = uint64(id)
	u.PasswordHash = hash
	u.Active = true
	return nil
}

// GetByUsername fetches an active user by normalized username.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE username = ? AND active = 1 LIMIT 1`,
		NormalizeUsername(username))
}

// GetByID fetches an active user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (*model.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = ? AND active = 1`, id)
}

func (r *UserRepo) getOne(ctx context.Context, q string, arg any) (*model.User, error) {
	var u model.User
	err := sqlx.GetContext(ctx, r.db, &u, q, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) ListActive(ctx context.Context) ([]model.User, error) {
	out := []model.User{}
	err := sqlx.SelectContext(ctx, r.db, &out,
		`SELECT `+userColumns+` FROM users WHERE active = 1 ORDER BY surname, name`)
	return out, err
}

func (r *UserRepo) Update(ctx context.Context, id uint64, p model.UserPatch) error {
	if p.Username != nil {
		n := NormalizeUsername(*p.Username)
		p.Username = &n
	}
	var a assignments
	setIf(&a, "name", p.Name)
	setIf(&a, "surname", p.Surname)
	setIf(&a, "username", p.Username)
	setIf(&a, "password_hash", p.PasswordHash)
	setIf(&a, "role", p.Role)
	setIf(&a, "phone", p.Phone)
	setIf(&a, "photo", p.Photo)
	if a.empty() {
		return ErrNoChange
	}
	return execUpdate(ctx, r.db, "users", id, &a, ErrUserNotFound)
}

func (r *UserRepo) Deactivate(ctx context.Context, id uint64) (bool, error) {
	return deactivate(ctx, r.db, "users", id)
}
