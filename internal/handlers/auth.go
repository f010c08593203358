package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/linyuhsin/bookshop/internal/hash"
	"github.com/linyuhsin/bookshop/internal/models"
	"github.com/linyuhsin/bookshop/internal/mykafka"
	"github.com/linyuhsin/bookshop/internal/service/token"
)

type AuthHandler struct {
	DB            *gorm.DB
	JWTSecret     []byte
	RefreshSecret []byte
	Producer      *mykafka.Producer
}

func (h *AuthHandler) Register(c echo.Context) error {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Phone    string `json:"phone"`
		Birthday string `json:"birthday"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	var existing models.Member
	err := h.DB.Where("email = ?", req.Email).First(&existing).Error
	if err == nil {
		return message(c, http.StatusBadRequest, "Email already exists")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	pwHash, err := hash.HashPassword(req.Password)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	member := models.Member{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: pwHash,
		Phone:        req.Phone,
		Birthday:     req.Birthday,
	}
	if err := h.DB.Create(&member).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	publish(c, h.Producer, mykafka.TopicUserEvents, fmt.Sprint(member.ID), map[string]any{
		"type":     "member_registered",
		"memberID": member.ID,
		"email":    member.Email,
	})

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "User registered successfully",
		"userId":  member.ID,
	})
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	var member models.Member
	if err := h.DB.Where("email = ?", req.Email).First(&member).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return message(c, http.StatusNotFound, "User not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if !hash.CheckPassword(member.PasswordHash, req.Password) {
		return message(c, http.StatusNotFound, "User not found")
	}

	accessToken, err := token.SignAccessToken(member.ID, h.JWTSecret)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	refreshToken, err := token.SignRefreshToken(member.ID, h.RefreshSecret)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if err := token.SaveRefreshToken(h.DB, refreshToken, member.ID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	c.SetCookie(token.CreateCookie("accessToken", accessToken, "/", time.Now().Add(token.AccessTTL)))
	c.SetCookie(token.CreateCookie("refreshToken", refreshToken, "/", time.Now().Add(token.RefreshTTL)))

	publish(c, h.Producer, mykafka.TopicUserEvents, fmt.Sprint(member.ID), map[string]any{
		"type":     "member_logged_in",
		"memberID": member.ID,
		"email":    member.Email,
	})

	return c.JSON(http.StatusOK, member)
}

func (h *AuthHandler) Logout(c echo.Context) error {
	refreshCookie, err := c.Cookie("refreshToken")
	if err != nil {
		return message(c, http.StatusBadRequest, "missing refresh cookie")
	}

	svc := token.Service{DB: h.DB, JWTSecret: h.JWTSecret, RefreshSecret: h.RefreshSecret}
	if err := svc.Revoke(refreshCookie.Value); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	expired := time.Now().Add(-1 * time.Hour)
	c.SetCookie(token.CreateCookie("accessToken", "", "/", expired))
	c.SetCookie(token.CreateCookie("refreshToken", "", "/", expired))

	return message(c, http.StatusOK, "logged out")
}
