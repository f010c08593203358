package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/linyuhsin/bookshop/internal/models"
)

func TestCreateBookMissingFields(t *testing.T) {
	db := InitTestDB(t)
	h := BookHandler{DB: db}
	e := echo.New()

	rec, c := doJSONRequest(t, e, http.MethodPost, "/books", map[string]any{
		"name": "孤本",
	})
	require.NoError(t, h.CreateBook(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateBookUnknownSeller(t *testing.T) {
	db := InitTestDB(t)
	h := BookHandler{DB: db}
	e := echo.New()

	rec, c := doJSONRequest(t, e, http.MethodPost, "/books", map[string]any{
		"name":      "流浪書",
		"price":     100,
		"stock":     1,
		"status":    models.BookStatusListed,
		"seller_id": 42,
	})
	require.NoError(t, h.CreateBook(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateAndGetBook(t *testing.T) {
	db := InitTestDB(t)
	h := BookHandler{DB: db}
	e := echo.New()

	rec, c := doJSONRequest(t, e, http.MethodPost, "/books", map[string]any{
		"name":        "白鯨記",
		"description": "經典文學",
		"author":      "Herman Melville",
		"price":       320,
		"stock":       7,
		"status":      models.BookStatusListed,
	})
	require.NoError(t, h.CreateBook(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec, c = doJSONRequest(t, e, http.MethodGet, "/books/detail/1", nil)
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, h.GetBook(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var book models.Book
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &book))
	require.Equal(t, "白鯨記", book.Name)
	require.Equal(t, 7, book.Stock)

	rec, c = doJSONRequest(t, e, http.MethodGet, "/books/白鯨記", nil)
	c.SetParamNames("slug")
	c.SetParamValues("白鯨記")
	require.NoError(t, h.GetBookByName(c))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestGetBooksFilters(t *testing.T) {
	db := InitTestDB(t)
	h := BookHandler{DB: db}
	e := echo.New()

	createBook(t, db, "Go 語言實戰", 500, 5, nil)
	unlisted := createBook(t, db, "下架的書", 100, 0, nil)
	require.NoError(t, db.Model(&unlisted).Update("status", models.BookStatusUnlisted).Error)

	rec, c := doJSONRequest(t, e, http.MethodGet, "/books?status="+models.BookStatusListed, nil)
	require.NoError(t, h.GetBooks(c))
	var books []models.Book
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &books))
	require.Len(t, books, 1)
	require.Equal(t, "Go 語言實戰", books[0].Name)

	rec, c = doJSONRequest(t, e, http.MethodGet, "/books?search=實戰", nil)
	require.NoError(t, h.GetBooks(c))
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &books))
	require.Len(t, books, 1)
}

func TestGetAvailableBooksByCategory(t *testing.T) {
	db := InitTestDB(t)
	h := BookHandler{DB: db}
	e := echo.New()

	novel := createBook(t, db, "小說甲", 250, 3, nil)
	createBook(t, db, "教科書乙", 600, 3, nil)

	cat := models.Category{Name: "小說"}
	require.NoError(t, db.Create(&cat).Error)
	require.NoError(t, db.Create(&models.BookCategory{BookID: novel.ID, CategoryID: cat.ID}).Error)

	rec, c := doJSONRequest(t, e, http.MethodGet, "/books/status/available?categories=小說", nil)
	require.NoError(t, h.GetAvailableBooks(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var books []models.Book
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &books))
	require.Len(t, books, 1)
	require.Equal(t, "小說甲", books[0].Name)
}

func TestUpdateBookPermissions(t *testing.T) {
	db := InitTestDB(t)
	h := BookHandler{DB: db}
	e := echo.New()

	owner := createMember(t, db, "owner", "owner@example.com")
	vendor := models.Vendor{MemberID: owner.ID, IsActive: true}
	require.NoError(t, db.Create(&vendor).Error)
	book := createBook(t, db, "賣家的書", 150, 2, &vendor.ID)

	update := map[string]any{
		"name":   "改名的書",
		"price":  180,
		"stock":  2,
		"status": models.BookStatusListed,
	}

	// a stranger without admin rights is rejected
	update["user_id"] = owner.ID + 1
	rec, c := doJSONRequest(t, e, http.MethodPut, "/books/1", update)
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, h.UpdateBook(c))
	require.Equal(t, http.StatusForbidden, rec.Code)

	// the owning vendor may edit
	update["user_id"] = owner.ID
	rec, c = doJSONRequest(t, e, http.MethodPut, "/books/1", update)
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, h.UpdateBook(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var reread models.Book
	require.NoError(t, db.First(&reread, book.ID).Error)
	require.Equal(t, "改名的書", reread.Name)
	require.Equal(t, 180.0, reread.Price)

	// admins may edit anything
	update["user_id"] = 0
	update["isAdmin"] = true
	update["name"] = "管理員改的"
	rec, c = doJSONRequest(t, e, http.MethodPut, "/books/1", update)
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, h.UpdateBook(c))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestDeleteBook(t *testing.T) {
	db := InitTestDB(t)
	h := BookHandler{DB: db}
	e := echo.New()

	createBook(t, db, "待刪的書", 100, 1, nil)

	rec, c := doJSONRequest(t, e, http.MethodDelete, "/books/1", nil)
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, h.DeleteBook(c))
	require.Equal(t, http.StatusOK, rec.Code)

	rec, c = doJSONRequest(t, e, http.MethodDelete, "/books/1", nil)
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, h.DeleteBook(c))
	require.Equal(t, http.StatusNotFound, rec.Code)
}
