package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"

	"github.com/dstrelkov/seabattle/internal/dependencies/mocks"
	"github.com/dstrelkov/seabattle/internal/model"
	"github.com/dstrelkov/seabattle/internal/storage/memory"
	"github.com/dstrelkov/seabattle/internal/testutil"
)

type AuthSuite struct {
	suite.Suite
	ctx     context.Context
	storage *memory.Storage
	service *Service
}

func TestAuthSuite(t *testing.T) {
	suite.Run(t, new(AuthSuite))
}

func (s *AuthSuite) SetupTest() {
	s.ctx = context.Background()
	s.storage = memory.New()
	s.service = New(
		s.storage,
		mocks.NewMockIdent(),
		mocks.NewMockClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),
		testutil.NopLogger(),
	)
}

func (s *AuthSuite) TestRegisterNewUser() {
	user, err := s.service.Register(s.ctx, "alice", "hunter2", nil)
	s.Require().NoError(err)
	s.Equal("alice", user.Name)
	s.NotEmpty(user.ID)
	s.False(user.IsBot)

	// The password is stored hashed, never verbatim
	s.NotEqual("hunter2", user.PasswordHash)
	s.NoError(bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("hunter2")))
}

func (s *AuthSuite) TestRegisterExistingUserCorrectPassword() {
	created, err := s.service.Register(s.ctx, "alice", "hunter2", nil)
	s.Require().NoError(err)

	user, err := s.service.Register(s.ctx, "alice", "hunter2", nil)
	s.Require().NoError(err)
	s.Equal(created.ID, user.ID)
}

func (s *AuthSuite) TestRegisterExistingUserWrongPassword() {
	_, err := s.service.Register(s.ctx, "alice", "hunter2", nil)
	s.Require().NoError(err)

	_, err = s.service.Register(s.ctx, "alice", "letmein", nil)
	s.ErrorIs(err, ErrIncorrectPassword)
}

func (s *AuthSuite) TestRegisterWhileLoggedInElsewhere() {
	created, err := s.service.Register(s.ctx, "alice", "hunter2", nil)
	s.Require().NoError(err)

	_, err = s.service.Register(s.ctx, "alice", "hunter2", []model.UserID{created.ID})
	s.ErrorIs(err, ErrAlreadyLoggedIn)
}

func (s *AuthSuite) TestRegisterOtherUserLoggedIn() {
	_, err := s.service.Register(s.ctx, "alice", "hunter2", nil)
	s.Require().NoError(err)

	user, err := s.service.Register(s.ctx, "alice", "hunter2", []model.UserID{"someone-else"})
	s.NoError(err)
	s.Equal("alice", user.Name)
}

func (s *AuthSuite) TestCreateBot() {
	bot, err := s.service.CreateBot(s.ctx, "Bot")
	s.Require().NoError(err)
	s.True(bot.IsBot)
	s.Empty(bot.PasswordHash)

	stored, err := s.storage.GetUser(s.ctx, bot.ID)
	s.Require().NoError(err)
	s.True(stored.IsBot)
}
