package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/linyuhsin/bookshop/internal/models"
	"github.com/linyuhsin/bookshop/internal/mykafka"
)

type BookHandler struct {
	DB       *gorm.DB
	Producer *mykafka.Producer
}

func (h *BookHandler) GetBooks(c echo.Context) error {
	q := h.DB.Model(&models.Book{})
	if status := c.QueryParam("status"); status != "" {
		q = q.Where("status = ?", status)
	}
	if search := c.QueryParam("search"); search != "" {
		q = q.Where("name LIKE ?", "%"+search+"%")
	}

	var books []models.Book
	if err := q.Find(&books).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, books)
}

// GetSellerBooks lists one seller's books with the same optional filters as
// the main listing.
func (h *BookHandler) GetSellerBooks(c echo.Context) error {
	sellerID := c.Param("id")

	q := h.DB.Model(&models.Book{}).Where("seller_id = ?", sellerID)
	if status := c.QueryParam("status"); status != "" {
		q = q.Where("status = ?", status)
	}
	if search := c.QueryParam("search"); search != "" {
		q = q.Where("name LIKE ?", "%"+search+"%")
	}

	var books []models.Book
	if err := q.Find(&books).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, books)
}

// GetAvailableBooks lists listed books, optionally narrowed to a CSV of
// category names and a name search.
func (h *BookHandler) GetAvailableBooks(c echo.Context) error {
	q := h.DB.Model(&models.Book{}).Where("status = ?", models.BookStatusListed)

	if categories := c.QueryParam("categories"); categories != "" {
		names := strings.Split(categories, ",")
		q = q.Where(`id IN (
			SELECT DISTINCT bc.book_id
			FROM book_categories bc
			JOIN categories cat ON bc.category_id = cat.id
			WHERE cat.name IN ?)`, names)
	}
	if search := c.QueryParam("search"); search != "" {
		q = q.Where("name LIKE ?", "%"+search+"%")
	}

	var books []models.Book
	if err := q.Find(&books).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, books)
}

func (h *BookHandler) GetBook(c echo.Context) error {
	id := c.Param("id")
	var book models.Book
	if err := h.DB.First(&book, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return message(c, http.StatusNotFound, "書籍不存在")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, book)
}

// GetBookByName resolves a book by its exact (URL-decoded) name.
func (h *BookHandler) GetBookByName(c echo.Context) error {
	slug := c.Param("slug")
	var book models.Book
	if err := h.DB.Where("name = ?", slug).First(&book).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return message(c, http.StatusNotFound, "Book not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, book)
}

func (h *BookHandler) CreateBook(c echo.Context) error {
	var req struct {
		Name        string  `json:"name"`
		Description string  `json:"description"`
		Author      string  `json:"author"`
		Price       float64 `json:"price"`
		Stock       *int    `json:"stock"`
		Status      string  `json:"status"`
		Image       string  `json:"image"`
		SellerID    *uint   `json:"seller_id"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.Name == "" || req.Price == 0 || req.Stock == nil || req.Status == "" {
		return message(c, http.StatusBadRequest, "缺少必要欄位")
	}

	if req.SellerID != nil {
		var count int64
		if err := h.DB.Model(&models.Vendor{}).Where("id = ?", *req.SellerID).Count(&count).Error; err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		if count == 0 {
			return message(c, http.StatusBadRequest, "Seller_ID 不存在")
		}
	}

	book := models.Book{
		Name:        req.Name,
		Description: req.Description,
		Author:      req.Author,
		Price:       req.Price,
		Stock:       *req.Stock,
		Status:      req.Status,
		Image:       req.Image,
		SellerID:    req.SellerID,
	}
	if err := h.DB.Create(&book).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	publish(c, h.Producer, mykafka.TopicProductEvents, fmt.Sprint(book.ID), map[string]any{
		"type":   "book_created",
		"bookID": book.ID,
		"name":   book.Name,
	})

	return c.JSON(http.StatusCreated, echo.Map{
		"message":   "Product created successfully",
		"productId": book.ID,
	})
}

// UpdateBook replaces a book's fields. Admins may edit anything; a vendor
// may only edit their own listings.
func (h *BookHandler) UpdateBook(c echo.Context) error {
	id := c.Param("id")

	var req struct {
		UserID      uint    `json:"user_id"`
		IsAdmin     bool    `json:"isAdmin"`
		Name        string  `json:"name"`
		Description string  `json:"description"`
		Author      string  `json:"author"`
		Price       float64 `json:"price"`
		Stock       int     `json:"stock"`
		Status      string  `json:"status"`
		Image       string  `json:"image"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	var book models.Book
	if err := h.DB.First(&book, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return message(c, http.StatusNotFound, "書籍不存在")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if !req.IsAdmin {
		if book.SellerID == nil {
			return message(c, http.StatusForbidden, "您無權修改此書籍")
		}
		var vendor models.Vendor
		if err := h.DB.First(&vendor, "id = ?", *book.SellerID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return message(c, http.StatusForbidden, "您無權修改此書籍")
			}
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		if vendor.MemberID != req.UserID {
			return message(c, http.StatusForbidden, "您無權修改此書籍")
		}
	}

	book.Name = req.Name
	book.Description = req.Description
	book.Author = req.Author
	book.Price = req.Price
	book.Stock = req.Stock
	book.Status = req.Status
	book.Image = req.Image

	if err := h.DB.Save(&book).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	publish(c, h.Producer, mykafka.TopicProductEvents, fmt.Sprint(book.ID), map[string]any{
		"type":   "book_updated",
		"bookID": book.ID,
		"name":   book.Name,
	})

	return message(c, http.StatusOK, "書籍更新成功")
}

func (h *BookHandler) DeleteBook(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return message(c, http.StatusBadRequest, "invalid id")
	}

	result := h.DB.Delete(&models.Book{}, id)
	if result.Error != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, result.Error.Error())
	}
	if result.RowsAffected == 0 {
		return message(c, http.StatusNotFound, "Product not found")
	}

	publish(c, h.Producer, mykafka.TopicProductEvents, fmt.Sprint(id), map[string]any{
		"type":   "book_deleted",
		"bookID": id,
	})

	return message(c, http.StatusOK, "Product deleted successfully")
}
