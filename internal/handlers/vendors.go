package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/linyuhsin/bookshop/internal/models"
)

type VendorHandler struct {
	DB *gorm.DB
}

func (h *VendorHandler) memberExists(memberID uint) (bool, error) {
	var count int64
	err := h.DB.Model(&models.Member{}).Where("id = ?", memberID).Count(&count).Error
	return count > 0, err
}

func (h *VendorHandler) CreateVendor(c echo.Context) error {
	var req struct {
		MemberID uint `json:"member_id"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.MemberID == 0 {
		return message(c, http.StatusBadRequest, "缺少必要的欄位: Member_ID")
	}

	exists, err := h.memberExists(req.MemberID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if !exists {
		return message(c, http.StatusNotFound, "Member_ID 不存在")
	}

	vendor := models.Vendor{MemberID: req.MemberID, IsActive: true}
	if err := h.DB.Create(&vendor).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"message":   "Vendor 新增成功",
		"vendor_id": vendor.ID,
	})
}

func (h *VendorHandler) UpdateVendor(c echo.Context) error {
	id := c.Param("id")

	var req struct {
		MemberID uint `json:"member_id"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.MemberID == 0 {
		return message(c, http.StatusBadRequest, "缺少必要的欄位: Member_ID")
	}

	exists, err := h.memberExists(req.MemberID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if !exists {
		return message(c, http.StatusNotFound, "Member_ID 不存在")
	}

	result := h.DB.Model(&models.Vendor{}).Where("id = ?", id).Update("member_id", req.MemberID)
	if result.Error != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, result.Error.Error())
	}
	if result.RowsAffected == 0 {
		return message(c, http.StatusNotFound, "Vendor 不存在")
	}

	return message(c, http.StatusOK, "Vendor 更新成功")
}

func (h *VendorHandler) GetVendors(c echo.Context) error {
	var vendors []models.Vendor
	if err := h.DB.Find(&vendors).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, vendors)
}

// GetVendorByMember resolves a member's vendor row; a member without one
// gets a 200 with a null vendor, matching what the storefront expects.
func (h *VendorHandler) GetVendorByMember(c echo.Context) error {
	memberID := c.Param("memberId")

	var vendor models.Vendor
	if err := h.DB.Where("member_id = ?", memberID).First(&vendor).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusOK, echo.Map{
				"message": "該會員不是 Vendor",
				"vendor":  nil,
			})
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"vendor": vendor})
}

func (h *VendorHandler) GetVendorID(c echo.Context) error {
	memberID := c.Param("memberId")

	var vendor models.Vendor
	if err := h.DB.Where("member_id = ?", memberID).First(&vendor).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusOK, echo.Map{
				"message":  "該會員不是 Vendor",
				"vendorId": nil,
			})
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"vendorId": vendor.ID})
}

func (h *VendorHandler) DeleteVendor(c echo.Context) error {
	id := c.Param("id")

	result := h.DB.Delete(&models.Vendor{}, "id = ?", id)
	if result.Error != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, result.Error.Error())
	}
	if result.RowsAffected == 0 {
		return message(c, http.StatusNotFound, "Vendor 不存在")
	}

	return message(c, http.StatusOK, "Vendor 刪除成功")
}

// AddVendorRole grants selling rights: reactivates an existing vendor row
// or inserts a fresh active one.
func (h *VendorHandler) AddVendorRole(c echo.Context) error {
	memberID, err := strconv.Atoi(c.Param("memberId"))
	if err != nil {
		return message(c, http.StatusBadRequest, "invalid memberId")
	}

	exists, err := h.memberExists(uint(memberID))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if !exists {
		return message(c, http.StatusNotFound, "會員不存在")
	}

	var vendor models.Vendor
	err = h.DB.Where("member_id = ?", memberID).First(&vendor).Error
	switch {
	case err == nil:
		if err := h.DB.Model(&vendor).Update("is_active", true).Error; err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		return message(c, http.StatusOK, "賣家權限已重新啟用")
	case errors.Is(err, gorm.ErrRecordNotFound):
		vendor = models.Vendor{MemberID: uint(memberID), IsActive: true}
		if err := h.DB.Create(&vendor).Error; err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		return c.JSON(http.StatusCreated, echo.Map{
			"message":   "賣家權限已成功新增",
			"vendor_id": vendor.ID,
		})
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}

// RemoveVendorRole deactivates the vendor row rather than deleting it, so
// revenue history survives.
func (h *VendorHandler) RemoveVendorRole(c echo.Context) error {
	memberID := c.Param("memberId")

	var vendor models.Vendor
	if err := h.DB.Where("member_id = ?", memberID).First(&vendor).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return message(c, http.StatusNotFound, "該會員沒有賣家權限")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if err := h.DB.Model(&vendor).Update("is_active", false).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return message(c, http.StatusOK, "賣家權限已成功停用")
}
