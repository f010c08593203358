package handlers

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/linyuhsin/bookshop/internal/models"
)

type CategoryHandler struct {
	DB *gorm.DB
}

func (h *CategoryHandler) GetCategories(c echo.Context) error {
	var categories []models.Category
	if err := h.DB.Find(&categories).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, categories)
}

func (h *CategoryHandler) GetBookCategories(c echo.Context) error {
	bookID := c.Param("productId")

	var categories []models.Category
	if err := h.DB.Raw(`
		SELECT cat.id, cat.name
		FROM categories cat
		JOIN book_categories bc ON cat.id = bc.category_id
		WHERE bc.book_id = ?`, bookID).Scan(&categories).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{
		"productId":  bookID,
		"categories": categories,
	})
}

// GetBooksWithCategories lists every book with its category names joined
// into one comma-separated string.
func (h *CategoryHandler) GetBooksWithCategories(c echo.Context) error {
	type pair struct {
		BookID   uint
		Name     string
		Category *string
	}

	var pairs []pair
	if err := h.DB.Raw(`
		SELECT b.id AS book_id, b.name, cat.name AS category
		FROM books b
		LEFT JOIN book_categories bc ON b.id = bc.book_id
		LEFT JOIN categories cat ON bc.category_id = cat.id
		ORDER BY b.id`).Scan(&pairs).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	type row struct {
		BookID     uint   `json:"book_id"`
		Name       string `json:"name"`
		Categories string `json:"categories"`
	}

	rows := make([]row, 0)
	index := make(map[uint]int)
	for _, p := range pairs {
		i, ok := index[p.BookID]
		if !ok {
			i = len(rows)
			index[p.BookID] = i
			rows = append(rows, row{BookID: p.BookID, Name: p.Name})
		}
		if p.Category != nil {
			if rows[i].Categories != "" {
				rows[i].Categories += ","
			}
			rows[i].Categories += *p.Category
		}
	}

	return c.JSON(http.StatusOK, rows)
}

func (h *CategoryHandler) GetBooksByCategories(c echo.Context) error {
	q := h.DB.Model(&models.Book{}).
		Distinct("books.*").
		Joins("JOIN book_categories bc ON books.id = bc.book_id").
		Joins("JOIN categories cat ON bc.category_id = cat.id").
		Where("books.status = ?", models.BookStatusListed)

	if categories := c.QueryParam("categories"); categories != "" {
		q = q.Where("cat.name IN ?", strings.Split(categories, ","))
	}

	var books []models.Book
	if err := q.Find(&books).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, books)
}

func (h *CategoryHandler) AddCategoryToBook(c echo.Context) error {
	var req struct {
		BookID     uint `json:"productId"`
		CategoryID uint `json:"categoryId"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.BookID == 0 || req.CategoryID == 0 {
		return message(c, http.StatusBadRequest, "Product ID 和 Category ID 是必須的")
	}

	var count int64
	if err := h.DB.Model(&models.BookCategory{}).
		Where("book_id = ? AND category_id = ?", req.BookID, req.CategoryID).
		Count(&count).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if count > 0 {
		return message(c, http.StatusConflict, "該類別已經存在於該書籍中")
	}

	assoc := models.BookCategory{BookID: req.BookID, CategoryID: req.CategoryID}
	if err := h.DB.Create(&assoc).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return message(c, http.StatusCreated, "類別已成功新增到書籍")
}

func (h *CategoryHandler) RemoveCategoryFromBook(c echo.Context) error {
	var req struct {
		BookID     uint `json:"productId"`
		CategoryID uint `json:"categoryId"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.BookID == 0 || req.CategoryID == 0 {
		return message(c, http.StatusBadRequest, "Product ID 和 Category ID 是必須的")
	}

	result := h.DB.Delete(&models.BookCategory{}, "book_id = ? AND category_id = ?", req.BookID, req.CategoryID)
	if result.Error != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, result.Error.Error())
	}
	if result.RowsAffected == 0 {
		return message(c, http.StatusNotFound, "未找到要移除的書籍類別關聯")
	}

	return message(c, http.StatusOK, "類別已成功從書籍中移除")
}
