// services/user_service.go - Accounts and tokens
package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"f1cards/models"
	"f1cards/storage"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type UserService struct {
	users     storage.UserRepo
	game      *GameService
	jwtSecret []byte
	jwtTTL    time.Duration
	log       *zap.Logger
	now       func() time.Time
}

func NewUserService(users storage.UserRepo, game *GameService, jwtSecret string, jwtTTL time.Duration, log *zap.Logger) *UserService {
	if log == nil {
		log = zap.NewNop()
	}
	return &UserService{
		users:     users,
		game:      game,
		jwtSecret: []byte(jwtSecret),
		jwtTTL:    jwtTTL,
		log:       log,
		now:       time.Now,
	}
}

type RegisterInput struct {
	Username  string
	Email     string
	Password  string
	AvatarURL string
	BannerURL string
	Bio       string
}

// Register creates the account and the player's starting game state.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (models.User, string, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if in.Username == "" || in.Email == "" || in.Password == "" {
		return models.User{}, "", ErrMissingFields
	}

	exists, err := s.users.UserExists(ctx, in.Username, in.Email)
	if err != nil {
		return models.User{}, "", err
	}
	if exists {
		return models.User{}, "", ErrUserExists
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, "", err
	}

	user := models.User{
		Username:  in.Username,
		Email:     in.Email,
		Password:  string(hashed),
		AvatarURL: in.AvatarURL,
		BannerURL: in.BannerURL,
		Bio:       in.Bio,
	}
	if err := s.users.CreateUser(ctx, &user); err != nil {
		if errors.Is(err, storage.ErrExists) {
			return models.User{}, "", ErrUserExists
		}
		return models.User{}, "", err
	}
	if _, err := s.game.CreatePlayer(ctx, user.ID); err != nil {
		if derr := s.users.DeleteUser(ctx, user.ID); derr != nil {
			s.log.Error("user_rollback_failed", zap.Uint("user_id", user.ID), zap.Error(derr))
		}
		return models.User{}, "", err
	}

	token, err := s.GenerateToken(user)
	if err != nil {
		return models.User{}, "", err
	}
	s.log.Info("user_registered", zap.Uint("user_id", user.ID), zap.String("username", user.Username))
	return user, token, nil
}

// Login checks the password and returns a fresh token. Unknown emails and
// wrong passwords give the same error.
func (s *UserService) Login(ctx context.Context, email, password string) (models.User, string, error) {
	user, err := s.users.UserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, storage.ErrNotFound) {
		return models.User{}, "", ErrInvalidCredentials
	}
	if err != nil {
		return models.User{}, "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return models.User{}, "", ErrInvalidCredentials
	}

	now := s.now()
	if err := s.users.TouchLogin(ctx, user.ID, now); err != nil {
		s.log.Warn("touch_login_failed", zap.Uint("user_id", user.ID), zap.Error(err))
	} else {
		user.LastLogin = &now
	}

	token, err := s.GenerateToken(user)
	if err != nil {
		return models.User{}, "", err
	}
	return user, token, nil
}

func (s *UserService) Profile(ctx context.Context, userID uint) (models.User, error) {
	return s.users.UserByID(ctx, userID)
}

func (s *UserService) UpdateProfile(ctx context.Context, userID uint, avatarURL, bannerURL, bio string) (models.User, error) {
	return s.users.UpdateProfile(ctx, userID, avatarURL, bannerURL, bio)
}

// GenerateToken signs an HS256 token carrying user_id and username.
func (s *UserService) GenerateToken(user models.User) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"user_id":  user.ID,
		"username": user.Username,
		"iat":      now.Unix(),
		"exp":      now.Add(s.jwtTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}
