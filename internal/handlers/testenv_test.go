package handlers

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/linyuhsin/bookshop/internal/models"
)

func InitTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect to in-memory db: %v", err)
	}

	if err := db.AutoMigrate(
		&models.Member{},
		&models.Vendor{},
		&models.Administrator{},
		&models.Book{},
		&models.Category{},
		&models.BookCategory{},
		&models.Cart{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.Coupon{},
		&models.RefreshToken{},
	); err != nil {
		t.Fatalf("failed to migrate tables: %v", err)
	}

	return db
}

func doJSONRequest(t *testing.T, e *echo.Echo, method, path string, body interface{}) (*httptest.ResponseRecorder, echo.Context) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	return rec, c
}

func createMember(t *testing.T, db *gorm.DB, name, email string) models.Member {
	t.Helper()
	member := models.Member{
		Name:         name,
		Email:        email,
		PasswordHash: "x",
		Phone:        "0912345678",
		Birthday:     "2000-01-01",
	}
	require.NoError(t, db.Create(&member).Error)
	return member
}

func createBook(t *testing.T, db *gorm.DB, name string, price float64, stock int, sellerID *uint) models.Book {
	t.Helper()
	book := models.Book{
		Name:     name,
		Author:   "author",
		Price:    price,
		Stock:    stock,
		Status:   models.BookStatusListed,
		SellerID: sellerID,
	}
	require.NoError(t, db.Create(&book).Error)
	return book
}
