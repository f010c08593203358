package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/linyuhsin/bookshop/internal/models"
	"github.com/linyuhsin/bookshop/internal/mykafka"
)

type CartHandler struct {
	DB       *gorm.DB
	Producer *mykafka.Producer
}

type cartLine struct {
	CartID     uint    `json:"cart_id"`
	MemberID   uint    `json:"member_id"`
	TotalPrice float64 `json:"total_price"`
	BookID     uint    `json:"book_id"`
	Name       string  `json:"name"`
	Price      float64 `json:"price"`
	Quantity   int     `json:"quantity"`
}

const cartLinesQuery = `
	SELECT c.id AS cart_id, c.member_id, c.total_price,
	       b.id AS book_id, b.name, b.price, ci.quantity
	FROM carts c
	JOIN cart_items ci ON c.id = ci.cart_id
	JOIN books b ON ci.book_id = b.id`

func (h *CartHandler) GetCarts(c echo.Context) error {
	var lines []cartLine
	if err := h.DB.Raw(cartLinesQuery).Scan(&lines).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, lines)
}

func (h *CartHandler) GetCart(c echo.Context) error {
	memberID := c.Param("memberId")
	if memberID == "" || memberID == "undefined" {
		return message(c, http.StatusBadRequest, "Invalid memberId. Please provide a valid user ID.")
	}

	var lines []cartLine
	if err := h.DB.Raw(cartLinesQuery+" WHERE c.member_id = ?", memberID).Scan(&lines).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if len(lines) == 0 {
		return message(c, http.StatusNotFound, "No cart found for this user.")
	}
	return c.JSON(http.StatusOK, lines)
}

// upsertItem adds quantity to a member's cart line, creating the cart and
// the line on demand. Negative additions clamp the quantity at zero. The
// cart total is then recomputed with a SUM aggregate, never incrementally.
func (h *CartHandler) upsertItem(memberID, bookID uint, quantity int) error {
	var cart models.Cart
	err := h.DB.Where("member_id = ?", memberID).First(&cart).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		cart = models.Cart{MemberID: memberID}
		err = h.DB.Create(&cart).Error
	}
	if err != nil {
		return err
	}

	var item models.CartItem
	err = h.DB.Where("cart_id = ? AND book_id = ?", cart.ID, bookID).First(&item).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		item = models.CartItem{CartID: cart.ID, BookID: bookID, Quantity: quantity}
		if item.Quantity < 0 {
			item.Quantity = 0
		}
		if err := h.DB.Create(&item).Error; err != nil {
			return err
		}
	case err != nil:
		return err
	default:
		item.Quantity += quantity
		if item.Quantity < 0 {
			item.Quantity = 0
		}
		if err := h.DB.Save(&item).Error; err != nil {
			return err
		}
	}

	return h.recomputeTotal(cart.ID)
}

func (h *CartHandler) recomputeTotal(cartID uint) error {
	var total float64
	if err := h.DB.Raw(`
		SELECT COALESCE(SUM(b.price * ci.quantity), 0)
		FROM cart_items ci
		JOIN books b ON ci.book_id = b.id
		WHERE ci.cart_id = ?`, cartID).Scan(&total).Error; err != nil {
		return err
	}
	return h.DB.Model(&models.Cart{}).Where("id = ?", cartID).Update("total_price", total).Error
}

func (h *CartHandler) AddToCart(c echo.Context) error {
	var req struct {
		MemberID uint `json:"memberId"`
		BookID   uint `json:"productId"`
		Quantity *int `json:"quantity"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.MemberID == 0 || req.BookID == 0 || req.Quantity == nil {
		return message(c, http.StatusBadRequest, "Missing or invalid required fields")
	}

	if err := h.upsertItem(req.MemberID, req.BookID, *req.Quantity); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	publish(c, h.Producer, mykafka.TopicUserEvents, fmt.Sprint(req.MemberID), map[string]any{
		"type":     "cart_item_upserted",
		"memberID": req.MemberID,
		"bookID":   req.BookID,
		"quantity": *req.Quantity,
	})

	return message(c, http.StatusOK, "Item added or updated successfully")
}

// AddToCartByMember is the path-parameter variant of the upsert route.
func (h *CartHandler) AddToCartByMember(c echo.Context) error {
	memberID, err := strconv.Atoi(c.Param("memberId"))
	if err != nil || memberID <= 0 {
		return message(c, http.StatusBadRequest, "缺少必要參數")
	}

	var req struct {
		BookID   uint `json:"productId"`
		Quantity *int `json:"quantity"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.BookID == 0 || req.Quantity == nil {
		return message(c, http.StatusBadRequest, "缺少必要參數")
	}

	if err := h.upsertItem(uint(memberID), req.BookID, *req.Quantity); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return message(c, http.StatusOK, "商品已加入購物車")
}

func (h *CartHandler) DeleteProduct(c echo.Context) error {
	bookID := c.Param("productId")
	memberID := c.QueryParam("memberId")
	if bookID == "" || memberID == "" {
		return message(c, http.StatusBadRequest, "Missing required fields")
	}

	var cart models.Cart
	if err := h.DB.Where("member_id = ?", memberID).First(&cart).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return message(c, http.StatusNotFound, "Product not found in cart")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	result := h.DB.Delete(&models.CartItem{}, "cart_id = ? AND book_id = ?", cart.ID, bookID)
	if result.Error != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, result.Error.Error())
	}
	if result.RowsAffected == 0 {
		return message(c, http.StatusNotFound, "Product not found in cart")
	}

	if err := h.recomputeTotal(cart.ID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return message(c, http.StatusOK, "Product removed from cart successfully")
}

// ClearCart removes a member's cart row and all its lines.
func (h *CartHandler) ClearCart(c echo.Context) error {
	memberID := c.Param("memberId")
	if memberID == "" {
		return message(c, http.StatusBadRequest, "Missing required fields")
	}

	var cart models.Cart
	if err := h.DB.Where("member_id = ?", memberID).First(&cart).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return message(c, http.StatusNotFound, "Cart not found for the given member")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	txErr := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.CartItem{}, "cart_id = ?", cart.ID).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Cart{}, "id = ?", cart.ID).Error
	})
	if txErr != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, txErr.Error())
	}

	return message(c, http.StatusOK, "Cart cleared successfully")
}
