package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/linyuhsin/bookshop/internal/models"
	"github.com/linyuhsin/bookshop/internal/mykafka"
)

type OrderHandler struct {
	DB       *gorm.DB
	Producer *mykafka.Producer
}

type orderLine struct {
	BookID   uint    `json:"product_id"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

type insufficientBook struct {
	BookID uint `json:"product_id"`
	Stock  int  `json:"stock"`
}

func (h *OrderHandler) GetOrders(c echo.Context) error {
	var orders []models.Order
	if err := h.DB.Find(&orders).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, orders)
}

func (h *OrderHandler) GetOrder(c echo.Context) error {
	id := c.Param("id")
	var order models.Order
	if err := h.DB.First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return message(c, http.StatusNotFound, "Order not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, order)
}

// GetUserOrders returns a member's orders newest first, each with its
// joined book lines.
func (h *OrderHandler) GetUserOrders(c echo.Context) error {
	memberID := c.Param("memberId")

	var orders []models.Order
	if err := h.DB.Where("buyer_id = ?", memberID).Order("order_time DESC").Find(&orders).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if len(orders) == 0 {
		return message(c, http.StatusNotFound, "查無訂單")
	}

	type lineDetail struct {
		OrderID     uint    `json:"order_id"`
		BookID      uint    `json:"book_id"`
		Name        string  `json:"name"`
		Description string  `json:"description"`
		Author      string  `json:"author"`
		Price       float64 `json:"price"`
		Quantity    int     `json:"quantity"`
	}

	orderIDs := make([]uint, 0, len(orders))
	for _, o := range orders {
		orderIDs = append(orderIDs, o.ID)
	}

	var lines []lineDetail
	if err := h.DB.Raw(`
		SELECT oi.order_id, b.id AS book_id, b.name, b.description, b.author, oi.price, oi.quantity
		FROM order_items oi
		JOIN books b ON oi.book_id = b.id
		WHERE oi.order_id IN ?`, orderIDs).Scan(&lines).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	type orderWithBooks struct {
		models.Order
		Products []lineDetail `json:"products"`
	}

	resp := make([]orderWithBooks, 0, len(orders))
	for _, o := range orders {
		owb := orderWithBooks{Order: o, Products: []lineDetail{}}
		for _, l := range lines {
			if l.OrderID == o.ID {
				owb.Products = append(owb.Products, l)
			}
		}
		resp = append(resp, owb)
	}

	return c.JSON(http.StatusOK, resp)
}

func (h *OrderHandler) GetOrderDetails(c echo.Context) error {
	orderID := c.Param("orderId")

	var order models.Order
	if err := h.DB.First(&order, "id = ?", orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return message(c, http.StatusNotFound, "未找到指定的訂單")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	type productLine struct {
		Name     string  `json:"name"`
		Quantity int     `json:"quantity"`
		Price    float64 `json:"price"`
	}
	var products []productLine
	if err := h.DB.Raw(`
		SELECT b.name, oi.quantity, oi.price
		FROM order_items oi
		JOIN books b ON oi.book_id = b.id
		WHERE oi.order_id = ?`, order.ID).Scan(&products).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{
		"order_id":       order.ID,
		"order_time":     order.OrderTime,
		"package_method": order.PackageMethod,
		"payment_method": order.PaymentMethod,
		"address":        order.Address,
		"notes":          order.Notes,
		"total_price":    order.TotalPrice,
		"products":       products,
	})
}

func (h *OrderHandler) UpdateStatus(c echo.Context) error {
	var req struct {
		OrderID uint   `json:"order_id"`
		Status  string `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.OrderID == 0 || req.Status == "" {
		return message(c, http.StatusBadRequest, "缺少必要參數")
	}

	result := h.DB.Model(&models.Order{}).Where("id = ?", req.OrderID).Updates(map[string]any{
		"status":             req.Status,
		"status_update_time": time.Now(),
	})
	if result.Error != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, result.Error.Error())
	}
	if result.RowsAffected == 0 {
		return message(c, http.StatusNotFound, "訂單未找到")
	}

	publish(c, h.Producer, mykafka.TopicOrderEvents, fmt.Sprint(req.OrderID), map[string]any{
		"type":    "order_status_updated",
		"orderID": req.OrderID,
		"status":  req.Status,
	})

	return message(c, http.StatusOK, "訂單狀態更新成功")
}

// CreateOrder places an order. The stock check, the guarded decrements, the
// order and item inserts, and the coupon consumption run inside one
// transaction so a failure of any step applies none of them. Stock is
// re-read inside the transaction to close the race between concurrent
// buyers passing the same pre-check.
func (h *OrderHandler) CreateOrder(c echo.Context) error {
	var req struct {
		BuyerID        uint        `json:"buyerId"`
		Address        string      `json:"address"`
		PaymentMethod  string      `json:"paymentMethod"`
		ShippingMethod string      `json:"shippingMethod"`
		Notes          string      `json:"notes"`
		CouponUsedID   *uint       `json:"couponUsedId"`
		Items          []orderLine `json:"items"`
		Total          float64     `json:"total"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.BuyerID == 0 || len(req.Items) == 0 {
		return message(c, http.StatusBadRequest, "缺少必要的訂單資訊")
	}

	var (
		order        models.Order
		insufficient []insufficientBook
	)

	txErr := h.DB.Transaction(func(tx *gorm.DB) error {
		ids := make([]uint, 0, len(req.Items))
		for _, it := range req.Items {
			ids = append(ids, it.BookID)
		}

		var books []models.Book
		if err := tx.Where("id IN ?", ids).Find(&books).Error; err != nil {
			return err
		}

		stock := make(map[uint]int, len(books))
		for _, b := range books {
			stock[b.ID] = b.Stock
		}
		for _, it := range req.Items {
			if s, ok := stock[it.BookID]; !ok || s < it.Quantity {
				insufficient = append(insufficient, insufficientBook{BookID: it.BookID, Stock: stock[it.BookID]})
			}
		}
		if len(insufficient) > 0 {
			return gorm.ErrInvalidData
		}

		for _, it := range req.Items {
			result := tx.Model(&models.Book{}).
				Where("id = ? AND stock >= ?", it.BookID, it.Quantity).
				Update("stock", gorm.Expr("stock - ?", it.Quantity))
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				insufficient = append(insufficient, insufficientBook{BookID: it.BookID, Stock: stock[it.BookID]})
				return gorm.ErrInvalidData
			}
		}

		order = models.Order{
			BuyerID:          req.BuyerID,
			Status:           models.OrderStatusUnprocessed,
			StatusUpdateTime: time.Now(),
			PackageMethod:    req.ShippingMethod,
			PaymentMethod:    req.PaymentMethod,
			Address:          req.Address,
			Notes:            req.Notes,
			CouponUsedID:     req.CouponUsedID,
			TotalPrice:       req.Total,
		}
		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		for _, it := range req.Items {
			item := models.OrderItem{
				OrderID:  order.ID,
				BookID:   it.BookID,
				Quantity: it.Quantity,
				Price:    it.Price,
			}
			if err := tx.Create(&item).Error; err != nil {
				return err
			}
		}

		if req.CouponUsedID != nil {
			if err := tx.Model(&models.Coupon{}).
				Where("id = ?", *req.CouponUsedID).
				Update("used", true).Error; err != nil {
				return err
			}
		}
		return nil
	})

	if txErr != nil {
		if len(insufficient) > 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{
				"message":           "庫存不足",
				"insufficientStock": insufficient,
			})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"message": "訂單提交失敗",
			"error":   txErr.Error(),
		})
	}

	publish(c, h.Producer, mykafka.TopicOrderEvents, fmt.Sprint(req.BuyerID), map[string]any{
		"type":    "order_created",
		"buyerID": req.BuyerID,
		"orderID": order.ID,
		"total":   order.TotalPrice,
	})

	return c.JSON(http.StatusOK, echo.Map{
		"message": "訂單提交成功",
		"orderId": order.ID,
	})
}

// DeleteOrder removes an order and its items, both or neither.
func (h *OrderHandler) DeleteOrder(c echo.Context) error {
	orderID := c.Param("orderId")

	txErr := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.OrderItem{}, "order_id = ?", orderID).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.Order{}, "id = ?", orderID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})

	if txErr != nil {
		if errors.Is(txErr, gorm.ErrRecordNotFound) {
			return message(c, http.StatusNotFound, fmt.Sprintf("Order with ID %s not found", orderID))
		}
		return echo.NewHTTPError(http.StatusInternalServerError, txErr.Error())
	}

	publish(c, h.Producer, mykafka.TopicOrderEvents, orderID, map[string]any{
		"type":    "order_deleted",
		"orderID": orderID,
	})

	return message(c, http.StatusOK, fmt.Sprintf("Order with ID %s deleted successfully", orderID))
}
