package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/linyuhsin/bookshop/internal/models"
	"github.com/linyuhsin/bookshop/internal/service/coupon"
)

type CouponHandler struct {
	DB *gorm.DB
}

func (h *CouponHandler) GetAllCoupons(c echo.Context) error {
	type couponRow struct {
		models.Coupon
		OwnerName     *string `json:"owner_name"`
		SenderAdminID *uint   `json:"sender_admin_id"`
	}

	var coupons []couponRow
	if err := h.DB.Raw(`
		SELECT cp.*, m.name AS owner_name, a.id AS sender_admin_id
		FROM coupons cp
		LEFT JOIN members m ON cp.owner_id = m.id
		LEFT JOIN administrators a ON cp.sender_id = a.id`).Scan(&coupons).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, coupons)
}

// GetUserCoupons lists a member's unused coupons inside their validity
// window.
func (h *CouponHandler) GetUserCoupons(c echo.Context) error {
	userID := c.Param("userId")
	if userID == "" {
		return message(c, http.StatusBadRequest, "缺少用戶 ID")
	}

	now := time.Now()
	var coupons []models.Coupon
	if err := h.DB.
		Where("owner_id = ? AND used = ? AND start_date <= ? AND end_date >= ?", userID, false, now, now).
		Find(&coupons).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if len(coupons) == 0 {
		return message(c, http.StatusNotFound, "未找到可用的優惠券")
	}
	return c.JSON(http.StatusOK, coupons)
}

func (h *CouponHandler) AddCoupon(c echo.Context) error {
	var req struct {
		LowMoney  float64   `json:"low_money"`
		StartDate time.Time `json:"start_date"`
		EndDate   time.Time `json:"end_date"`
		Detail    string    `json:"detail"`
		Type      string    `json:"type"`
		OwnerID   *uint     `json:"owner_id"`
		SenderID  uint      `json:"sender_id"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.LowMoney == 0 || req.StartDate.IsZero() || req.EndDate.IsZero() || req.Detail == "" || req.Type == "" || req.SenderID == 0 {
		return message(c, http.StatusBadRequest, "缺少必要的欄位")
	}

	cp := models.Coupon{
		LowMoney:  req.LowMoney,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Detail:    req.Detail,
		Type:      req.Type,
		OwnerID:   req.OwnerID,
		SenderID:  req.SenderID,
	}
	if err := h.DB.Create(&cp).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"message":  "新增優惠券成功",
		"couponId": cp.ID,
	})
}

func (h *CouponHandler) DeleteCoupon(c echo.Context) error {
	couponID := c.Param("couponId")

	result := h.DB.Delete(&models.Coupon{}, "id = ?", couponID)
	if result.Error != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, result.Error.Error())
	}
	if result.RowsAffected == 0 {
		return message(c, http.StatusNotFound, "未找到對應的優惠券")
	}
	return message(c, http.StatusOK, "優惠券刪除成功")
}

func (h *CouponHandler) UpdateCoupon(c echo.Context) error {
	couponID := c.Param("couponId")

	var req struct {
		Used *bool `json:"used"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.Used == nil {
		return message(c, http.StatusBadRequest, "缺少必要的欄位")
	}

	result := h.DB.Model(&models.Coupon{}).Where("id = ?", couponID).Update("used", *req.Used)
	if result.Error != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, result.Error.Error())
	}
	if result.RowsAffected == 0 {
		return message(c, http.StatusNotFound, "未找到對應的優惠券")
	}
	return message(c, http.StatusOK, "優惠券狀態更新成功")
}

func (h *CouponHandler) CheckCoupon(c echo.Context) error {
	couponID := c.Param("couponId")

	var cp models.Coupon
	if err := h.DB.First(&cp, "id = ?", couponID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return message(c, http.StatusNotFound, "未找到對應的優惠券")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{
		"couponId": cp.ID,
		"isUsed":   cp.Used,
	})
}

// EvaluateCoupon computes a coupon's discount server-side so clients and
// the checkout share one rule implementation.
func (h *CouponHandler) EvaluateCoupon(c echo.Context) error {
	var req struct {
		CouponID uint    `json:"coupon_id"`
		Subtotal float64 `json:"subtotal"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.CouponID == 0 {
		return message(c, http.StatusBadRequest, "缺少優惠券 ID")
	}

	var cp models.Coupon
	if err := h.DB.First(&cp, "id = ?", req.CouponID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return message(c, http.StatusNotFound, "未找到對應的優惠券")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, coupon.Evaluate(&cp, req.Subtotal))
}
