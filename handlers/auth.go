// handlers/auth.go
package handlers

import (
	"time"

	"f1cards/middleware"
	"f1cards/models"
	"f1cards/services"

	"github.com/gofiber/fiber/v2"
)

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RegisterRequest struct {
	Username  string `json:"username" validate:"required,min=2,max=64"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=6"`
	AvatarURL string `json:"avatarUrl" validate:"omitempty,url"`
	BannerURL string `json:"bannerUrl" validate:"omitempty,url"`
	Bio       string `json:"bio" validate:"max=500"`
}

type UpdateProfileRequest struct {
	AvatarURL string `json:"avatarUrl" validate:"omitempty,url"`
	BannerURL string `json:"bannerUrl" validate:"omitempty,url"`
	Bio       string `json:"bio" validate:"max=500"`
}

type AuthResponse struct {
	Success bool     `json:"success"`
	Token   string   `json:"token,omitempty"`
	User    UserInfo `json:"user"`
}

type UserInfo struct {
	ID               uint       `json:"id"`
	Username         string     `json:"username"`
	Email            string     `json:"email"`
	SpeedCoins       int        `json:"speedCoins"`
	AvatarURL        string     `json:"avatarUrl"`
	BannerURL        string     `json:"bannerUrl"`
	Bio              string     `json:"bio"`
	RegistrationDate time.Time  `json:"registrationDate"`
	LastLogin        *time.Time `json:"lastLogin,omitempty"`
}

func newUserInfo(u models.User, coins int) UserInfo {
	return UserInfo{
		ID:               u.ID,
		Username:         u.Username,
		Email:            u.Email,
		SpeedCoins:       coins,
		AvatarURL:        u.AvatarURL,
		BannerURL:        u.BannerURL,
		Bio:              u.Bio,
		RegistrationDate: u.CreatedAt,
		LastLogin:        u.LastLogin,
	}
}

// Register creates an account and its starting game state
func Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := middleware.ValidateStruct(req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": middleware.ValidationMessage(err)})
	}

	user, token, err := userService.Register(c.UserContext(), services.RegisterInput{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		AvatarURL: req.AvatarURL,
		BannerURL: req.BannerURL,
		Bio:       req.Bio,
	})
	if err != nil {
		return respondError(c, err)
	}
	st, err := gameService.State(c.UserContext(), user.ID)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(201).JSON(AuthResponse{
		Success: true,
		Token:   token,
		User:    newUserInfo(user, st.Coins),
	})
}

func Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := middleware.ValidateStruct(req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": middleware.ValidationMessage(err)})
	}

	user, token, err := userService.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return respondError(c, err)
	}
	st, err := gameService.State(c.UserContext(), user.ID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(AuthResponse{
		Success: true,
		Token:   token,
		User:    newUserInfo(user, st.Coins),
	})
}

func GetProfile(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	user, err := userService.Profile(c.UserContext(), userID)
	if err != nil {
		return respondError(c, err)
	}
	st, err := gameService.State(c.UserContext(), userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "user": newUserInfo(user, st.Coins)})
}

func UpdateProfile(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	var req UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := middleware.ValidateStruct(req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": middleware.ValidationMessage(err)})
	}

	user, err := userService.UpdateProfile(c.UserContext(), userID, req.AvatarURL, req.BannerURL, req.Bio)
	if err != nil {
		return respondError(c, err)
	}
	st, err := gameService.State(c.UserContext(), userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "user": newUserInfo(user, st.Coins)})
}
