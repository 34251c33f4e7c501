package service

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/forgo/jobtrack/internal/database"
	"github.com/forgo/jobtrack/internal/model"
	"golang.org/x/crypto/bcrypt"
)

// bcrypt cost factor
const bcryptCost = 10

// UserRepository defines the interface for user storage
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	Update(ctx context.Context, user *model.User) (*model.User, error)
}

// AuthService handles registration, login and profile updates
type AuthService struct {
	userRepo      UserRepository
	tokenService  *TokenService
	demoUserEmail string

	demoMu     sync.Mutex
	demoUserID string
}

// AuthServiceConfig holds configuration for the auth service
type AuthServiceConfig struct {
	UserRepo     UserRepository
	TokenService *TokenService
	// DemoUserEmail names the shared read-only account; empty disables the guard
	DemoUserEmail string
}

// NewAuthService creates a new auth service
func NewAuthService(cfg AuthServiceConfig) *AuthService {
	return &AuthService{
		userRepo:      cfg.UserRepo,
		tokenService:  cfg.TokenService,
		demoUserEmail: normalizeEmail(cfg.DemoUserEmail),
	}
}

// RegisterRequest represents a registration request
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateUserRequest replaces the caller's profile. Password is optional.
type UpdateUserRequest struct {
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	LastName string  `json:"last_name"`
	Location string  `json:"location"`
	Password *string `json:"password,omitempty"`
}

// AuthResult is returned by register, login and update user
type AuthResult struct {
	User  model.UserSummary `json:"user"`
	Token string            `json:"token"`
}

// Register creates a new user account with email/password
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*AuthResult, error) {
	name := strings.TrimSpace(req.Name)
	email := normalizeEmail(req.Email)

	var fields []model.FieldError
	fields = append(fields, validateName(name)...)
	fields = append(fields, validateEmail(email)...)
	fields = append(fields, validatePassword(req.Password)...)
	if err := NewValidationError(fields); err != nil {
		return nil, err
	}

	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailAlreadyExists
	}

	hash, err := hashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Name:     name,
		Email:    email,
		Hash:     &hash,
		LastName: model.DefaultLastName,
		Location: model.DefaultLocation,
	}

	// The unique index catches a registration racing past the check above
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return nil, ErrEmailAlreadyExists
		}
		return nil, err
	}

	return s.result(user)
}

// Login authenticates a user with email/password. Unknown email and wrong
// password produce the same error.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResult, error) {
	email := normalizeEmail(req.Email)

	var fields []model.FieldError
	if email == "" {
		fields = append(fields, model.FieldError{Field: "email", Message: "please provide email"})
	}
	if req.Password == "" {
		fields = append(fields, model.FieldError{Field: "password", Message: "please provide password"})
	}
	if err := NewValidationError(fields); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil || user.Hash == nil {
		// Spend the same bcrypt work as a real comparison
		checkPassword(req.Password, dummyHash())
		return nil, ErrInvalidCredentials
	}

	if !checkPassword(req.Password, *user.Hash) {
		return nil, ErrInvalidCredentials
	}

	return s.result(user)
}

// UpdateUser replaces the caller's profile and re-issues a token
func (s *AuthService) UpdateUser(ctx context.Context, userID string, req UpdateUserRequest) (*AuthResult, error) {
	name := strings.TrimSpace(req.Name)
	email := normalizeEmail(req.Email)
	lastName := strings.TrimSpace(req.LastName)
	location := strings.TrimSpace(req.Location)

	var fields []model.FieldError
	fields = append(fields, validateName(name)...)
	fields = append(fields, validateEmail(email)...)
	if lastName == "" {
		fields = append(fields, model.FieldError{Field: "last_name", Message: "please provide last_name"})
	}
	fields = append(fields, validateOptional("last_name", lastName, model.MaxLastNameLength)...)
	if location == "" {
		fields = append(fields, model.FieldError{Field: "location", Message: "please provide location"})
	}
	fields = append(fields, validateOptional("location", location, model.MaxLocationLength)...)
	if req.Password != nil && *req.Password != "" {
		fields = append(fields, validatePassword(*req.Password)...)
	}
	if err := NewValidationError(fields); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	if email != user.Email {
		other, err := s.userRepo.GetByEmail(ctx, email)
		if err != nil {
			return nil, err
		}
		if other != nil && other.ID != user.ID {
			return nil, ErrEmailAlreadyExists
		}
	}

	user.Name = name
	user.Email = email
	user.LastName = lastName
	user.Location = location

	// Only re-hash when the password actually changes
	if req.Password != nil && *req.Password != "" {
		if user.Hash == nil || !checkPassword(*req.Password, *user.Hash) {
			hash, err := hashPassword(*req.Password)
			if err != nil {
				return nil, err
			}
			user.Hash = &hash
		}
	}

	updated, err := s.userRepo.Update(ctx, user)
	if err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return nil, ErrEmailAlreadyExists
		}
		return nil, err
	}
	if updated == nil {
		return nil, ErrUserNotFound
	}

	return s.result(updated)
}

// ValidateAccessToken validates a session token and returns its claims
func (s *AuthService) ValidateAccessToken(token string) (*model.TokenClaims, error) {
	return s.tokenService.Verify(token)
}

// IsDemoUser reports whether userID is the configured demo account. The
// account id is resolved from its email on first use and then cached.
func (s *AuthService) IsDemoUser(ctx context.Context, userID string) (bool, error) {
	if s.demoUserEmail == "" {
		return false, nil
	}

	s.demoMu.Lock()
	cached := s.demoUserID
	s.demoMu.Unlock()
	if cached != "" {
		return cached == userID, nil
	}

	demo, err := s.userRepo.GetByEmail(ctx, s.demoUserEmail)
	if err != nil {
		return false, err
	}
	if demo == nil {
		return false, nil
	}

	s.demoMu.Lock()
	s.demoUserID = demo.ID
	s.demoMu.Unlock()

	return demo.ID == userID, nil
}

func (s *AuthService) result(user *model.User) (*AuthResult, error) {
	token, err := s.tokenService.Issue(user)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user.Summary(), Token: token}, nil
}

// Password hashing helpers

var (
	dummyHashOnce  sync.Once
	dummyHashValue string
)

// dummyHash is compared against when the email is unknown
func dummyHash() string {
	dummyHashOnce.Do(func() {
		h, err := bcrypt.GenerateFromPassword([]byte("not-a-real-password"), bcryptCost)
		if err == nil {
			dummyHashValue = string(h)
		}
	})
	return dummyHashValue
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func checkPassword(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
