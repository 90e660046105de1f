package repositories

import (
	"context"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/abroadcrm/internal/app/auth"
	"github.com/yigit/abroadcrm/internal/app/models"
	"github.com/yigit/abroadcrm/internal/pkg/apperrors"
)

var userColumns = []string{
	"users.id", "users.username", "users.email", "users.password_hash", "users.first_name",
	"users.last_name", "users.role", "users.phone", "users.department", "users.is_active",
	"users.join_date", "users.created_at", "users.updated_at",
}

func scanUser(row scanner) (*models.User, error) {
	var u models.User
	err := row.Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.FirstName,
		&u.LastName, &u.Role, &u.Phone, &u.Department, &u.IsActive,
		&u.JoinDate, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// UserRepository handles user database operations
type UserRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{
		db: db,
		sb: statementBuilder(),
	}
}

// Create inserts a user and sets its id and timestamps
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	ts := now()
	user.CreatedAt, user.UpdatedAt = ts, ts
	if user.JoinDate.IsZero() {
		user.JoinDate = ts
	}

	query := r.sb.Insert("users").
		Columns("username", "email", "password_hash", "first_name", "last_name", "role",
			"phone", "department", "is_active", "join_date", "created_at", "updated_at").
		Values(user.Username, user.Email, user.PasswordHash, user.FirstName, user.LastName, user.Role,
			user.Phone, user.Department, user.IsActive, user.JoinDate, user.CreatedAt, user.UpdatedAt).
		Suffix("RETURNING id")

	return insertReturning(ctx, r.db, query, &user.ID)
}

// GetByID retrieves a visible user by id
func (r *UserRepository) GetByID(ctx context.Context, id int64, scope auth.Predicate) (*models.User, error) {
	query := r.sb.Select(userColumns...).
		From("users").
		Where(squirrel.Eq{"users.id": id}).
		Where(scope)

	return queryOne(ctx, r.db, query, scanUser, apperrors.ErrUserNotFound)
}

// GetByUsername retrieves a user by username
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	query := r.sb.Select(userColumns...).
		From("users").
		Where(squirrel.Eq{"users.username": username})

	return queryOne(ctx, r.db, query, scanUser, apperrors.ErrUserNotFound)
}

// List returns a page of visible users and the total number matching the filter
func (r *UserRepository) List(ctx context.Context, filter models.UserFilter, scope auth.Predicate) ([]*models.User, int64, error) {
	conds := squirrel.And{scope}
	if filter.Role != "" {
		conds = append(conds, squirrel.Eq{"users.role": filter.Role})
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + search + "%"
		conds = append(conds, squirrel.Or{
			squirrel.ILike{"users.username": pattern},
			squirrel.ILike{"users.first_name": pattern},
			squirrel.ILike{"users.last_name": pattern},
			squirrel.ILike{"users.email": pattern},
		})
	}

	total, err := count(ctx, r.db, r.sb.Select("COUNT(*)").From("users").Where(conds))
	if err != nil {
		return nil, 0, err
	}

	query := paginate(r.sb.Select(userColumns...).From("users").Where(conds).OrderBy("users.username ASC"), filter.Page)
	users, err := collect(ctx, r.db, query, scanUser)
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// Update writes every mutable column of a visible user
func (r *UserRepository) Update(ctx context.Context, user *models.User, scope auth.Predicate) error {
	user.UpdatedAt = now()

	query := r.sb.Update("users").
		Set("username", user.Username).
		Set("email", user.Email).
		Set("password_hash", user.PasswordHash).
		Set("first_name", user.FirstName).
		Set("last_name", user.LastName).
		Set("role", user.Role).
		Set("phone", user.Phone).
		Set("department", user.Department).
		Set("is_active", user.IsActive).
		Set("updated_at", user.UpdatedAt).
		Where(squirrel.Eq{"users.id": user.ID}).
		Where(scope)

	return execAffecting(ctx, r.db, query, apperrors.ErrUserNotFound)
}

// Delete removes a visible user
func (r *UserRepository) Delete(ctx context.Context, id int64, scope auth.Predicate) error {
	query := r.sb.Delete("users").
		Where(squirrel.Eq{"users.id": id}).
		Where(scope)

	return execAffecting(ctx, r.db, query, apperrors.ErrUserNotFound)
}
