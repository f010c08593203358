package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/linyuhsin/bookshop/internal/models"
)

func TestCreateOrderInsufficientStock(t *testing.T) {
	db := InitTestDB(t)
	h := OrderHandler{DB: db}
	e := echo.New()

	buyer := createMember(t, db, "buyer", "buyer@example.com")
	book := createBook(t, db, "Go 程式設計", 500, 5, nil)

	payload := map[string]any{
		"buyerId":       buyer.ID,
		"address":       "台北市中正區",
		"paymentMethod": "信用卡",
		"items": []map[string]any{
			{"product_id": book.ID, "quantity": 6, "price": 500},
		},
		"total": 3000,
	}

	rec, c := doJSONRequest(t, e, http.MethodPost, "/orders", payload)
	require.NoError(t, h.CreateOrder(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp struct {
		InsufficientStock []struct {
			BookID uint `json:"product_id"`
			Stock  int  `json:"stock"`
		} `json:"insufficientStock"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.InsufficientStock, 1)
	require.Equal(t, book.ID, resp.InsufficientStock[0].BookID)
	require.Equal(t, 5, resp.InsufficientStock[0].Stock)

	// nothing was applied
	var reread models.Book
	require.NoError(t, db.First(&reread, book.ID).Error)
	require.Equal(t, 5, reread.Stock)

	var orderCount int64
	require.NoError(t, db.Model(&models.Order{}).Count(&orderCount).Error)
	require.Zero(t, orderCount)
}

func TestCreateOrderDrainsStock(t *testing.T) {
	db := InitTestDB(t)
	h := OrderHandler{DB: db}
	e := echo.New()

	buyer := createMember(t, db, "buyer", "buyer@example.com")
	book := createBook(t, db, "資料庫系統", 400, 5, nil)

	payload := map[string]any{
		"buyerId":        buyer.ID,
		"address":        "台中市西區",
		"paymentMethod":  "信用卡",
		"shippingMethod": "宅配到府",
		"items": []map[string]any{
			{"product_id": book.ID, "quantity": 5, "price": 400},
		},
		"total": 2000,
	}

	rec, c := doJSONRequest(t, e, http.MethodPost, "/orders", payload)
	require.NoError(t, h.CreateOrder(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var reread models.Book
	require.NoError(t, db.First(&reread, book.ID).Error)
	require.Equal(t, 0, reread.Stock)

	var orders []models.Order
	require.NoError(t, db.Find(&orders).Error)
	require.Len(t, orders, 1)
	require.Equal(t, models.OrderStatusUnprocessed, orders[0].Status)
	require.Equal(t, float64(2000), orders[0].TotalPrice)

	var items []models.OrderItem
	require.NoError(t, db.Where("order_id = ?", orders[0].ID).Find(&items).Error)
	require.Len(t, items, 1)
	require.Equal(t, book.ID, items[0].BookID)
	require.Equal(t, 5, items[0].Quantity)
	require.Equal(t, float64(400), items[0].Price)
}

func TestCreateOrderConsumesCoupon(t *testing.T) {
	db := InitTestDB(t)
	h := OrderHandler{DB: db}
	e := echo.New()

	buyer := createMember(t, db, "buyer", "buyer@example.com")
	book := createBook(t, db, "演算法", 600, 10, nil)

	cp := models.Coupon{LowMoney: 100, Type: "*0.95", Detail: "95折", SenderID: 1, OwnerID: &buyer.ID}
	require.NoError(t, db.Create(&cp).Error)

	payload := map[string]any{
		"buyerId":      buyer.ID,
		"address":      "高雄市左營區",
		"couponUsedId": cp.ID,
		"items": []map[string]any{
			{"product_id": book.ID, "quantity": 1, "price": 600},
		},
		"total": 570,
	}

	rec, c := doJSONRequest(t, e, http.MethodPost, "/orders", payload)
	require.NoError(t, h.CreateOrder(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var reread models.Coupon
	require.NoError(t, db.First(&reread, cp.ID).Error)
	require.True(t, reread.Used)

	var order models.Order
	require.NoError(t, db.First(&order).Error)
	require.NotNil(t, order.CouponUsedID)
	require.Equal(t, cp.ID, *order.CouponUsedID)
}

func TestDeleteOrderRemovesItems(t *testing.T) {
	db := InitTestDB(t)
	h := OrderHandler{DB: db}
	e := echo.New()

	order := models.Order{BuyerID: 1, Status: models.OrderStatusUnprocessed, TotalPrice: 100}
	require.NoError(t, db.Create(&order).Error)
	require.NoError(t, db.Create(&models.OrderItem{OrderID: order.ID, BookID: 1, Quantity: 1, Price: 100}).Error)
	require.NoError(t, db.Create(&models.OrderItem{OrderID: order.ID, BookID: 2, Quantity: 2, Price: 50}).Error)

	rec, c := doJSONRequest(t, e, http.MethodDelete, "/orders/1", nil)
	c.SetParamNames("orderId")
	c.SetParamValues("1")
	require.NoError(t, h.DeleteOrder(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var orderCount, itemCount int64
	require.NoError(t, db.Model(&models.Order{}).Count(&orderCount).Error)
	require.NoError(t, db.Model(&models.OrderItem{}).Count(&itemCount).Error)
	require.Zero(t, orderCount)
	require.Zero(t, itemCount)
}

func TestDeleteOrderNotFound(t *testing.T) {
	db := InitTestDB(t)
	h := OrderHandler{DB: db}
	e := echo.New()

	rec, c := doJSONRequest(t, e, http.MethodDelete, "/orders/99", nil)
	c.SetParamNames("orderId")
	c.SetParamValues("99")
	require.NoError(t, h.DeleteOrder(c))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateOrderStatus(t *testing.T) {
	db := InitTestDB(t)
	h := OrderHandler{DB: db}
	e := echo.New()

	order := models.Order{BuyerID: 1, Status: models.OrderStatusUnprocessed}
	require.NoError(t, db.Create(&order).Error)

	rec, c := doJSONRequest(t, e, http.MethodPut, "/orders/updateStatus", map[string]any{
		"order_id": order.ID,
		"status":   models.OrderStatusShipped,
	})
	require.NoError(t, h.UpdateStatus(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var reread models.Order
	require.NoError(t, db.First(&reread, order.ID).Error)
	require.Equal(t, models.OrderStatusShipped, reread.Status)
	require.False(t, reread.StatusUpdateTime.IsZero())
}

func TestGetUserOrders(t *testing.T) {
	db := InitTestDB(t)
	h := OrderHandler{DB: db}
	e := echo.New()

	buyer := createMember(t, db, "buyer", "buyer@example.com")
	book := createBook(t, db, "作業系統", 350, 3, nil)

	order := models.Order{BuyerID: buyer.ID, Status: models.OrderStatusUnprocessed, TotalPrice: 700}
	require.NoError(t, db.Create(&order).Error)
	require.NoError(t, db.Create(&models.OrderItem{OrderID: order.ID, BookID: book.ID, Quantity: 2, Price: 350}).Error)

	rec, c := doJSONRequest(t, e, http.MethodGet, "/orders/user/1", nil)
	c.SetParamNames("memberId")
	c.SetParamValues("1")
	require.NoError(t, h.GetUserOrders(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp []struct {
		OrderID  uint `json:"order_id"`
		Products []struct {
			Name     string `json:"name"`
			Quantity int    `json:"quantity"`
		} `json:"products"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp, 1)
	require.Len(t, resp[0].Products, 1)
	require.Equal(t, "作業系統", resp[0].Products[0].Name)
	require.Equal(t, 2, resp[0].Products[0].Quantity)

	// no orders: 404
	rec2, c2 := doJSONRequest(t, e, http.MethodGet, "/orders/user/999", nil)
	c2.SetParamNames("memberId")
	c2.SetParamValues("999")
	require.NoError(t, h.GetUserOrders(c2))
	require.Equal(t, http.StatusNotFound, rec2.Code)
}
