package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

type RevenueHandler struct {
	DB *gorm.DB
}

// GetAllRevenues aggregates sales and revenue per vendor, highest revenue
// first.
func (h *RevenueHandler) GetAllRevenues(c echo.Context) error {
	type vendorRevenue struct {
		VendorID     uint    `json:"vendor_id"`
		SellerName   string  `json:"seller_name"`
		TotalSales   int     `json:"total_sales"`
		TotalRevenue float64 `json:"total_revenue"`
	}

	var rows []vendorRevenue
	if err := h.DB.Raw(`
		SELECT b.seller_id AS vendor_id, m.name AS seller_name,
		       SUM(oi.quantity) AS total_sales,
		       SUM(oi.quantity * oi.price) AS total_revenue
		FROM books b
		JOIN order_items oi ON b.id = oi.book_id
		JOIN vendors v ON b.seller_id = v.id
		JOIN members m ON v.member_id = m.id
		GROUP BY b.seller_id, m.name
		ORDER BY total_revenue DESC`).Scan(&rows).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, rows)
}

// GetVendorRevenue breaks one seller's revenue down per book, plus totals.
// The seller is addressed by member id, not vendor id.
func (h *RevenueHandler) GetVendorRevenue(c echo.Context) error {
	userID := c.Param("userId")

	type bookRevenue struct {
		BookID       uint    `json:"book_id"`
		Name         string  `json:"name"`
		TotalSales   int     `json:"total_sales"`
		TotalRevenue float64 `json:"total_revenue"`
	}

	var books []bookRevenue
	if err := h.DB.Raw(`
		SELECT b.id AS book_id, b.name,
		       SUM(oi.quantity) AS total_sales,
		       SUM(oi.quantity * oi.price) AS total_revenue
		FROM books b
		JOIN order_items oi ON b.id = oi.book_id
		JOIN vendors v ON b.seller_id = v.id
		WHERE v.member_id = ?
		GROUP BY b.id, b.name
		ORDER BY total_revenue DESC`, userID).Scan(&books).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if len(books) == 0 {
		return c.JSON(http.StatusOK, echo.Map{
			"message":       "目前無營收數據",
			"total_sales":   0,
			"total_revenue": 0,
			"books":         []bookRevenue{},
		})
	}

	var totalSales int
	var totalRevenue float64
	for _, b := range books {
		totalSales += b.TotalSales
		totalRevenue += b.TotalRevenue
	}

	return c.JSON(http.StatusOK, echo.Map{
		"books":         books,
		"total_sales":   totalSales,
		"total_revenue": totalRevenue,
	})
}
