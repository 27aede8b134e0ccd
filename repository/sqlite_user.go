package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/akinalp/pazar/database"
	"github.com/akinalp/pazar/models"
	"github.com/akinalp/pazar/pkg"
)

// sqliteUserRepo, UserRepository interface'inin SQLite implementasyonu.
//
// Struct field'ı küçük harfle başlar (db) → package dışından erişilemez.
type sqliteUserRepo struct {
	db database.TxQuerier
}

// NewSQLiteUserRepo, constructor. Concrete struct değil interface döner.
func NewSQLiteUserRepo(db database.TxQuerier) UserRepository {
	return &sqliteUserRepo{db: db}
}

const userColumns = `id, username, email, display_name, phone, avatar_url, password_hash, role, language, created_at`

func scanUser(row scanner) (*models.User, error) {
	u := &models.User{}
	err := row.Scan(
		&u.ID, &u.Username, &u.Email, &u.DisplayName, &u.Phone, &u.AvatarURL,
		&u.PasswordHash, &u.Role, &u.Language, &u.CreatedAt,
	)
	return u, err
}

func (r *sqliteUserRepo) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, username, email, display_name, phone, avatar_url, password_hash, role, language)
		VALUES (lower(hex(randomblob(8))), ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		user.Username,
		user.Email,
		user.DisplayName,
		user.Phone,
		user.AvatarURL,
		user.PasswordHash,
		user.Role,
		user.Language,
	).Scan(&user.ID, &user.CreatedAt)

	if err != nil {
		// UNIQUE constraint violation → kullanıcı adı veya email zaten var
		if isUniqueOn(err, "users.email") {
			return fmt.Errorf("%w: email already in use", pkg.ErrAlreadyExists)
		}
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: username already taken", pkg.ErrAlreadyExists)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

func (r *sqliteUserRepo) getOne(ctx context.Context, where string, arg any) (*models.User, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE "+where, arg)
	user, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: user", pkg.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (r *sqliteUserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.getOne(ctx, "id = ?", id)
}

// GetByUsername, büyük/küçük harf duyarsız arar — unique index de NOCASE.
func (r *sqliteUserRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.getOne(ctx, "username = ? COLLATE NOCASE", username)
}

func (r *sqliteUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, "email = ?", email)
}

var userSorts = map[string]string{
	"newest":   "created_at DESC, id",
	"oldest":   "created_at ASC, id",
	"username": "username COLLATE NOCASE ASC",
}

func (r *sqliteUserRepo) List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error) {
	filter.Normalize()

	var conds []string
	var args []any
	if filter.Query != "" {
		like := filter.LikePattern()
		conds = append(conds, `(lower(username) LIKE ? ESCAPE '\' OR email LIKE ? ESCAPE '\' OR lower(COALESCE(display_name, '')) LIKE ? ESCAPE '\')`)
		args = append(args, like, like, like)
	}
	if filter.Role != "" {
		conds = append(conds, "role = ?")
		args = append(args, filter.Role)
	}
	where := whereSQL(conds)

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	query := "SELECT " + userColumns + " FROM users" + where +
		orderBy(filter.Sort, userSorts, "newest") + " LIMIT ? OFFSET ?"
	rows, err := r.db.QueryContext(ctx, query, append(args, filter.Limit, filter.Offset())...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close() // rows kapatılmazsa bağlantı pool'a dönmez

	users := []models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan user row: %w", err)
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating user rows: %w", err)
	}

	return users, total, nil
}

func (r *sqliteUserRepo) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}

func (r *sqliteUserRepo) UpdateProfile(ctx context.Context, user *models.User) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE users SET display_name = ?, phone = ?, language = ? WHERE id = ?`,
		user.DisplayName, user.Phone, user.Language, user.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return requireAffected(result, "user")
}

func (r *sqliteUserRepo) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE users SET password_hash = ? WHERE id = ?`, passwordHash, userID)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return requireAffected(result, "user")
}

func (r *sqliteUserRepo) UpdateRole(ctx context.Context, userID string, role models.UserRole) error {
	result, err := r.db.ExecContext(ctx, `UPDATE users SET role = ? WHERE id = ?`, role, userID)
	if err != nil {
		return fmt.Errorf("failed to update role: %w", err)
	}
	return requireAffected(result, "user")
}

func (r *sqliteUserRepo) UpdateAvatar(ctx context.Context, userID string, avatarURL *string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE users SET avatar_url = ? WHERE id = ?`, avatarURL, userID)
	if err != nil {
		return fmt.Errorf("failed to update avatar: %w", err)
	}
	return requireAffected(result, "user")
}

// Delete, kullanıcıyı siler. FK cascade ile sessions, cart_items, reviews
// ve sahip olunan mağazalar da silinir.
func (r *sqliteUserRepo) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: user has orders", pkg.ErrConflict)
		}
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return requireAffected(result, "user")
}

func (r *sqliteUserRepo) HasOrders(ctx context.Context, userID string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM orders WHERE user_id = ?)
		    OR EXISTS(SELECT 1 FROM order_items oi
		              JOIN stores s ON s.id = oi.store_id
		              WHERE s.owner_id = ?)`,
		userID, userID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check user orders: %w", err)
	}
	return exists, nil
}
