package handlers

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/linyuhsin/bookshop/internal/models"
)

type AdminHandler struct {
	DB *gorm.DB
}

// GetAdmins lists administrators with their member profiles.
func (h *AdminHandler) GetAdmins(c echo.Context) error {
	type adminRow struct {
		MemberID uint   `json:"member_id"`
		Name     string `json:"name"`
		Email    string `json:"email"`
		Phone    string `json:"phone"`
		Birthday string `json:"birthday"`
	}

	var admins []adminRow
	if err := h.DB.Raw(`
		SELECT m.id AS member_id, m.name, m.email, m.phone, m.birthday
		FROM members m
		INNER JOIN administrators a ON m.id = a.member_id`).Scan(&admins).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, admins)
}

func (h *AdminHandler) AddAdmin(c echo.Context) error {
	var req struct {
		MemberID uint `json:"memberId"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.MemberID == 0 {
		return message(c, http.StatusBadRequest, "請提供會員 ID")
	}

	var count int64
	if err := h.DB.Model(&models.Administrator{}).Where("member_id = ?", req.MemberID).Count(&count).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if count > 0 {
		return message(c, http.StatusConflict, "該會員已經是管理員")
	}

	if err := h.DB.Create(&models.Administrator{MemberID: req.MemberID}).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return message(c, http.StatusCreated, fmt.Sprintf("會員 %d 已成功設為管理員", req.MemberID))
}

func (h *AdminHandler) DeleteAdmin(c echo.Context) error {
	id := c.Param("id")

	result := h.DB.Delete(&models.Administrator{}, "member_id = ?", id)
	if result.Error != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, result.Error.Error())
	}
	if result.RowsAffected == 0 {
		return message(c, http.StatusNotFound, fmt.Sprintf("未找到會員 %s 的管理員記錄", id))
	}

	return message(c, http.StatusOK, fmt.Sprintf("會員 %s 已被移除管理員身份", id))
}

func (h *AdminHandler) CheckAdmin(c echo.Context) error {
	id := c.Param("id")

	var count int64
	if err := h.DB.Model(&models.Administrator{}).Where("member_id = ?", id).Count(&count).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"isAdmin": count > 0})
}
