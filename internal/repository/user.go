package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/forgo/jobtrack/internal/database"
	"github.com/forgo/jobtrack/internal/model"
)

// UserRepository handles user data access
type UserRepository struct {
	db database.Database
}

// NewUserRepository creates a new user repository
func NewUserRepository(db database.Database) *UserRepository {
	return &UserRepository{db: db}
}

// Create creates a new user. A concurrent registration with the same email
// is rejected by the unique index and reported as database.ErrDuplicate.
func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	query := `
		CREATE user CONTENT {
			name: $name,
			email: $email,
			hash: $hash,
			last_name: $last_name,
			location: $location,
			created_at: time::now(),
			updated_at: time::now()
		}
	`

	vars := map[string]interface{}{
		"name":      user.Name,
		"email":     user.Email,
		"hash":      ptrToNone(user.Hash),
		"last_name": user.LastName,
		"location":  user.Location,
	}

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		if isUniqueConstraintError(err) {
			return fmt.Errorf("%w: email already exists", database.ErrDuplicate)
		}
		return fmt.Errorf("create user: %w", err)
	}

	row := firstRow(result)
	if row == nil {
		return errors.New("create user: no result returned")
	}

	created := parseUser(row)
	user.ID = created.ID
	user.CreatedAt = created.CreatedAt
	user.UpdatedAt = created.UpdatedAt
	return nil
}

// GetByID retrieves a user by ID, returning nil when absent
func (r *UserRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	query := `SELECT * FROM type::record($id)`
	vars := map[string]interface{}{"id": id}

	return r.queryOne(ctx, query, vars)
}

// GetByEmail retrieves a user by email, returning nil when absent
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT * FROM user WHERE email = $email LIMIT 1`
	vars := map[string]interface{}{"email": email}

	return r.queryOne(ctx, query, vars)
}

// Update persists the mutable profile fields and hash, returning the stored record
func (r *UserRepository) Update(ctx context.Context, user *model.User) (*model.User, error) {
	query := `
		UPDATE user SET
			name = $name,
			email = $email,
			hash = $hash,
			last_name = $last_name,
			location = $location,
			updated_at = time::now()
		WHERE id = type::record($id)
		RETURN AFTER
	`

	vars := map[string]interface{}{
		"id":        user.ID,
		"name":      user.Name,
		"email":     user.Email,
		"hash":      ptrToNone(user.Hash),
		"last_name": user.LastName,
		"location":  user.Location,
	}

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		if isUniqueConstraintError(err) {
			return nil, fmt.Errorf("%w: email already exists", database.ErrDuplicate)
		}
		return nil, fmt.Errorf("update user: %w", err)
	}

	row := firstRow(result)
	if row == nil {
		return nil, nil
	}
	return parseUser(row), nil
}

func (r *UserRepository) queryOne(ctx context.Context, query string, vars map[string]interface{}) (*model.User, error) {
	result, err := r.db.QueryOne(ctx, query, vars)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	row, ok := result.(map[string]interface{})
	if !ok {
		return nil, nil
	}
	return parseUser(row), nil
}

func parseUser(data map[string]interface{}) *model.User {
	user := &model.User{
		ID:        convertSurrealID(data["id"]),
		Name:      getString(data, "name"),
		Email:     getString(data, "email"),
		LastName:  getString(data, "last_name"),
		Location:  getString(data, "location"),
		CreatedAt: getTime(data, "created_at"),
		UpdatedAt: getTime(data, "updated_at"),
	}
	if h, ok := data["hash"].(string); ok && h != "" {
		user.Hash = &h
	}
	return user
}

// ptrToNone converts a string pointer to its value, or nil which SurrealDB stores as NULL
func ptrToNone(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}
