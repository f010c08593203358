package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/linyuhsin/bookshop/internal/models"
)

func createCategory(t *testing.T, db *gorm.DB, name string) models.Category {
	t.Helper()
	cat := models.Category{Name: name}
	require.NoError(t, db.Create(&cat).Error)
	return cat
}

func TestGetBookCategories(t *testing.T) {
	db := InitTestDB(t)
	h := CategoryHandler{DB: db}
	e := echo.New()

	book := createBook(t, db, "分類測試", 100, 10, nil)
	novel := createCategory(t, db, "小說")
	history := createCategory(t, db, "歷史")
	require.NoError(t, db.Create(&models.BookCategory{BookID: book.ID, CategoryID: novel.ID}).Error)
	require.NoError(t, db.Create(&models.BookCategory{BookID: book.ID, CategoryID: history.ID}).Error)

	id := strconv.Itoa(int(book.ID))
	rec, c := doJSONRequest(t, e, http.MethodGet, "/categories/book/"+id, nil)
	c.SetParamNames("productId")
	c.SetParamValues(id)
	require.NoError(t, h.GetBookCategories(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		ProductID  string            `json:"productId"`
		Categories []models.Category `json:"categories"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, id, resp.ProductID)
	require.Len(t, resp.Categories, 2)
}

func TestGetBooksWithCategories(t *testing.T) {
	db := InitTestDB(t)
	h := CategoryHandler{DB: db}
	e := echo.New()

	tagged := createBook(t, db, "有分類", 100, 10, nil)
	bare := createBook(t, db, "無分類", 100, 10, nil)
	novel := createCategory(t, db, "小說")
	history := createCategory(t, db, "歷史")
	require.NoError(t, db.Create(&models.BookCategory{BookID: tagged.ID, CategoryID: novel.ID}).Error)
	require.NoError(t, db.Create(&models.BookCategory{BookID: tagged.ID, CategoryID: history.ID}).Error)

	rec, c := doJSONRequest(t, e, http.MethodGet, "/categories/books", nil)
	require.NoError(t, h.GetBooksWithCategories(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var rows []struct {
		BookID     uint   `json:"book_id"`
		Name       string `json:"name"`
		Categories string `json:"categories"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rows))
	require.Len(t, rows, 2)

	byID := map[uint]string{}
	for _, r := range rows {
		byID[r.BookID] = r.Categories
	}
	require.Equal(t, "小說,歷史", byID[tagged.ID])
	require.Equal(t, "", byID[bare.ID])
}

func TestGetBooksByCategories(t *testing.T) {
	db := InitTestDB(t)
	h := CategoryHandler{DB: db}
	e := echo.New()

	novelBook := createBook(t, db, "小說作品", 100, 10, nil)
	historyBook := createBook(t, db, "歷史作品", 100, 10, nil)
	novel := createCategory(t, db, "小說")
	history := createCategory(t, db, "歷史")
	require.NoError(t, db.Create(&models.BookCategory{BookID: novelBook.ID, CategoryID: novel.ID}).Error)
	require.NoError(t, db.Create(&models.BookCategory{BookID: historyBook.ID, CategoryID: history.ID}).Error)

	rec, c := doJSONRequest(t, e, http.MethodGet, "/categories/filter?categories=小說", nil)
	require.NoError(t, h.GetBooksByCategories(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var books []models.Book
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &books))
	require.Len(t, books, 1)
	require.Equal(t, "小說作品", books[0].Name)
}

func TestAddCategoryToBookConflict(t *testing.T) {
	db := InitTestDB(t)
	h := CategoryHandler{DB: db}
	e := echo.New()

	book := createBook(t, db, "重複分類", 100, 10, nil)
	novel := createCategory(t, db, "小說")

	body := map[string]interface{}{"productId": book.ID, "categoryId": novel.ID}
	rec, c := doJSONRequest(t, e, http.MethodPost, "/categories/book", body)
	require.NoError(t, h.AddCategoryToBook(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec, c = doJSONRequest(t, e, http.MethodPost, "/categories/book", body)
	require.NoError(t, h.AddCategoryToBook(c))
	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestRemoveCategoryFromBook(t *testing.T) {
	db := InitTestDB(t)
	h := CategoryHandler{DB: db}
	e := echo.New()

	book := createBook(t, db, "移除分類", 100, 10, nil)
	novel := createCategory(t, db, "小說")
	require.NoError(t, db.Create(&models.BookCategory{BookID: book.ID, CategoryID: novel.ID}).Error)

	body := map[string]interface{}{"productId": book.ID, "categoryId": novel.ID}
	rec, c := doJSONRequest(t, e, http.MethodDelete, "/categories/book", body)
	require.NoError(t, h.RemoveCategoryFromBook(c))
	require.Equal(t, http.StatusOK, rec.Code)

	rec, c = doJSONRequest(t, e, http.MethodDelete, "/categories/book", body)
	require.NoError(t, h.RemoveCategoryFromBook(c))
	require.Equal(t, http.StatusNotFound, rec.Code)
}
