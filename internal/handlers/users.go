package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/linyuhsin/bookshop/internal/hash"
	"github.com/linyuhsin/bookshop/internal/models"
	"github.com/linyuhsin/bookshop/internal/mykafka"
)

type UserHandler struct {
	DB       *gorm.DB
	Producer *mykafka.Producer
}

// GetRoles resolves a member's roles with three independent existence
// checks. Every existing member is a buyer; admin and vendor are granted by
// rows in their own tables.
func (h *UserHandler) GetRoles(c echo.Context) error {
	memberID, err := strconv.Atoi(c.Param("memberId"))
	if err != nil {
		return message(c, http.StatusBadRequest, "缺少必要的參數: memberId")
	}

	roles := []string{}

	var adminCount int64
	if err := h.DB.Model(&models.Administrator{}).Where("member_id = ?", memberID).Count(&adminCount).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if adminCount > 0 {
		roles = append(roles, models.RoleAdmin)
	}

	var vendorCount int64
	if err := h.DB.Model(&models.Vendor{}).Where("member_id = ? AND is_active = ?", memberID, true).Count(&vendorCount).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if vendorCount > 0 {
		roles = append(roles, models.RoleVendor)
	}

	var memberCount int64
	if err := h.DB.Model(&models.Member{}).Where("id = ?", memberID).Count(&memberCount).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if memberCount > 0 {
		roles = append(roles, models.RoleBuyer)
	}

	return c.JSON(http.StatusOK, echo.Map{"roles": roles})
}

func (h *UserHandler) GetUsers(c echo.Context) error {
	var members []models.Member
	if err := h.DB.Find(&members).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, members)
}

func (h *UserHandler) GetUser(c echo.Context) error {
	id := c.Param("id")
	var member models.Member
	if err := h.DB.First(&member, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return message(c, http.StatusNotFound, fmt.Sprintf("User with ID %s not found", id))
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, member)
}

func (h *UserHandler) CreateUser(c echo.Context) error {
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
	if req.Name == "" || req.Email == "" || req.Password == "" || req.Phone == "" || req.Birthday == "" {
		return message(c, http.StatusBadRequest, "Please complete all required fields")
	}

	var count int64
	if err := h.DB.Model(&models.Member{}).Where("email = ?", req.Email).Count(&count).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if count > 0 {
		return message(c, http.StatusConflict, "Email already exists")
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

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "User created successfully",
		"id":      member.ID,
	})
}

func (h *UserHandler) UpdateUser(c echo.Context) error {
	id := c.Param("id")
	var req struct {
		Email    string `json:"email"`
		Birthday string `json:"birthday"`
		Phone    string `json:"phone"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.DB.Model(&models.Member{}).Where("id = ?", id).Updates(map[string]any{
		"email":    req.Email,
		"birthday": req.Birthday,
		"phone":    req.Phone,
	}).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return message(c, http.StatusOK, "資料已更新")
}

func (h *UserHandler) DeleteUser(c echo.Context) error {
	id := c.Param("id")
	result := h.DB.Delete(&models.Member{}, "id = ?", id)
	if result.Error != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, result.Error.Error())
	}
	if result.RowsAffected == 0 {
		return message(c, http.StatusNotFound, fmt.Sprintf("User with ID %s not found", id))
	}
	return message(c, http.StatusOK, fmt.Sprintf("User with ID %s deleted successfully", id))
}

func (h *UserHandler) IsAdmin(c echo.Context) error {
	id := c.Param("id")
	var count int64
	if err := h.DB.Model(&models.Administrator{}).Where("member_id = ?", id).Count(&count).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"isAdmin": count > 0})
}

func (h *UserHandler) AddAdmin(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return message(c, http.StatusBadRequest, "invalid id")
	}
	if err := h.DB.Create(&models.Administrator{MemberID: uint(id)}).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return message(c, http.StatusOK, fmt.Sprintf("Member %d added as admin successfully", id))
}

func (h *UserHandler) RemoveAdmin(c echo.Context) error {
	id := c.Param("id")
	if err := h.DB.Delete(&models.Administrator{}, "member_id = ?", id).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return message(c, http.StatusOK, fmt.Sprintf("Member %s removed from admin successfully", id))
}
