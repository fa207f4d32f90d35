// Package auth registers users and verifies logins.
package auth

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/dstrelkov/seabattle/internal/dependencies/clock"
	"github.com/dstrelkov/seabattle/internal/dependencies/ident"
	"github.com/dstrelkov/seabattle/internal/model"
	"github.com/dstrelkov/seabattle/internal/storage"
)

// Errors surfaced inside the reg response, never as transport faults
var (
	ErrIncorrectPassword = errors.New("incorrect password")
	ErrAlreadyLoggedIn   = errors.New("already logged in")
)

// Service handles registration and login
type Service struct {
	storage storage.Storage
	ident   ident.Generator
	clock   clock.Clock
	logger  *slog.Logger
}

// New creates a new auth Service
func New(storage storage.Storage, ident ident.Generator, clock clock.Clock, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		ident:   ident,
		clock:   clock,
		logger:  logger,
	}
}

// Register creates the user on first sight of the name; otherwise it
// verifies the password and that the user is not logged in elsewhere.
// loggedIn is the set of user ids currently bound to live connections.
func (s *Service) Register(ctx context.Context, name, password string, loggedIn []model.UserID) (*model.User, error) {
	user, err := s.storage.GetUserByName(ctx, name)
	if errors.Is(err, model.ErrUserNotFound) {
		return s.createUser(ctx, name, password)
	}
	if err != nil {
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, ErrIncorrectPassword
	}
	for _, id := range loggedIn {
		if id == user.ID {
			return nil, ErrAlreadyLoggedIn
		}
	}

	s.logger.Info("user logged in", slog.String("user_id", string(user.ID)))
	return user, nil
}

// CreateBot creates a synthetic bot user for single-player games
func (s *Service) CreateBot(ctx context.Context, name string) (*model.User, error) {
	bot := &model.User{
		ID:        model.UserID(s.ident.NewID()),
		Name:      name,
		IsBot:     true,
		CreatedAt: s.clock.Now(),
	}
	if err := s.storage.SaveUser(ctx, bot); err != nil {
		return nil, err
	}
	return bot, nil
}

func (s *Service) createUser(ctx context.Context, name, password string) (*model.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		ID:           model.UserID(s.ident.NewID()),
		Name:         name,
		PasswordHash: string(hash),
		CreatedAt:    s.clock.Now(),
	}

	if err := s.storage.SaveUser(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user registered",
		slog.String("user_id", string(user.ID)),
		slog.String("name", name),
	)
	return user, nil
}
