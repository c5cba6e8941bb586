package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/gregd453/BVSquares/internal/apperr"
	"github.com/gregd453/BVSquares/internal/squaresvc/models"
	"github.com/gregd453/BVSquares/internal/validation"
)

type UserService struct {
	userStore UserStore
}

func NewUserService(userStore UserStore) *UserService {
	return &UserService{userStore: userStore}
}

// Register validates the form, enforces email and display-name
// uniqueness via lookup-before-insert, and creates the player account
// with a bcrypt password hash.
func (s *UserService) Register(ctx context.Context, in validation.RegisterInput) (*models.User, error) {
	in.Username = validation.SanitizeInput(in.Username)
	in.Email = validation.SanitizeInput(in.Email)
	in.DisplayName = validation.SanitizeDisplayName(in.DisplayName)

	if errs := validation.ValidateRegister(in); len(errs) > 0 {
		return nil, apperr.ValidationFields("invalid registration", errs)
	}

	existing, err := s.userStore.GetByEmail(ctx, in.Email)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if existing != nil {
		return nil, apperr.ValidationFields("invalid registration",
			map[string]string{"email": "Email already registered"})
	}

	taken, err := s.userStore.DisplayNameExists(ctx, in.DisplayName)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if taken {
		return nil, apperr.ValidationFields("invalid registration",
			map[string]string{"displayName": "Display name already taken"})
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	now := time.Now().UTC()
	user := &models.User{
		ID:           uuid.NewString(),
		Username:     in.Username,
		DisplayName:  in.DisplayName,
		Email:        in.Email,
		UserType:     models.UserTypePlayer,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userStore.Create(ctx, user); err != nil {
		return nil, apperr.Internal(err)
	}
	return user, nil
}

// Authenticate checks the username/password pair. Unknown users and
// wrong passwords yield the same error.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.userStore.GetByUsername(ctx, username)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if user == nil {
		return nil, apperr.Auth("invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, apperr.Auth("invalid credentials")
	}
	return user, nil
}

func (s *UserService) GetByID(ctx context.Context, id string) (*models.User, error) {
	user, err := s.userStore.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if user == nil {
		return nil, apperr.NotFound("user not found")
	}
	return user, nil
}
