package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/bazaar/internal/config"
	"github.com/example/bazaar/internal/models"
	"github.com/example/bazaar/internal/services"
	"github.com/example/bazaar/internal/utils"
)

// AuthHandler bundles dependencies for authentication endpoints.
type AuthHandler struct {
	db  *gorm.DB
	otp *services.OTPService
	cfg *config.Config
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(db *gorm.DB, otp *services.OTPService, cfg *config.Config) *AuthHandler {
	return &AuthHandler{db: db, otp: otp, cfg: cfg}
}

type requestOTPRequest struct {
	Phone string `json:"phone" validate:"required,len=10,numeric"`
}

// RequestOTP issues a one-time code to the phone number.
func (h *AuthHandler) RequestOTP(c *fiber.Ctx) error {
	var req requestOTPRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := validateStruct(req); err != nil {
		return err
	}

	if err := h.otp.RequestChallenge(c.Context(), req.Phone, c.IP()); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"message": "verification code sent"})
}

type verifyOTPRequest struct {
	Phone string `json:"phone" validate:"required,len=10,numeric"`
	Code  string `json:"code" validate:"required,len=6,numeric"`
}

// VerifyOTP exchanges a valid code for a bearer token, creating the user
// on first verification.
func (h *AuthHandler) VerifyOTP(c *fiber.Ctx) error {
	var req verifyOTPRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := validateStruct(req); err != nil {
		return err
	}

	user, err := h.otp.VerifyChallenge(c.Context(), req.Phone, req.Code)
	if err != nil {
		return err
	}

	token, err := utils.GenerateToken(h.cfg.JWTSecret, user.ID, user.Phone, user.Role, h.cfg.TokenExpires)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"message": "phone verified",
		"token":   token,
		"user": fiber.Map{
			"id":          user.ID.String(),
			"name":        user.Name,
			"phone":       user.Phone,
			"role":        user.Role,
			"is_verified": user.IsVerified,
		},
	})
}

type adminLoginRequest struct {
	Phone    string `json:"phone" validate:"required,len=10,numeric"`
	Password string `json:"password" validate:"required"`
}

// AdminLogin authenticates an admin by password. OTP-only accounts have
// no password hash and cannot use this path.
func (h *AuthHandler) AdminLogin(c *fiber.Ctx) error {
	var req adminLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := validateStruct(req); err != nil {
		return err
	}

	var user models.User
	if err := h.db.Where("phone = ? AND role = ?", req.Phone, models.RoleAdmin).
		First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid credentials")
		}
		return err
	}

	if user.PasswordHash == "" || !utils.CheckPassword(user.PasswordHash, req.Password) {
		return fiber.NewError(fiber.StatusUnauthorized, "invalid credentials")
	}

	token, err := utils.GenerateToken(h.cfg.JWTSecret, user.ID, user.Phone, user.Role, h.cfg.TokenExpires)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"message": "logged in",
		"token":   token,
		"user": fiber.Map{
			"id":    user.ID.String(),
			"name":  user.Name,
			"phone": user.Phone,
			"role":  user.Role,
		},
	})
}
