package httpserver

import (
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/linyuhsin/bookshop/internal/handlers"
)

type Deps struct {
	DB              *gorm.DB
	AuthHandler     *handlers.AuthHandler
	UserHandler     *handlers.UserHandler
	BookHandler     *handlers.BookHandler
	OrderHandler    *handlers.OrderHandler
	CartHandler     *handlers.CartHandler
	CouponHandler   *handlers.CouponHandler
	CategoryHandler *handlers.CategoryHandler
	VendorHandler   *handlers.VendorHandler
	AdminHandler    *handlers.AdminHandler
	RevenueHandler  *handlers.RevenueHandler
	SearchHandler   *handlers.SearchHandler
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(200) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(200) })

	auth := e.Group("/auth")
	auth.POST("/login", d.AuthHandler.Login)
	auth.POST("/register", d.AuthHandler.Register)
	auth.POST("/logout", d.AuthHandler.Logout)

	users := e.Group("/users")
	users.GET("/roles/:memberId", d.UserHandler.GetRoles)
	users.GET("", d.UserHandler.GetUsers)
	users.GET("/isAdmin/:id", d.UserHandler.IsAdmin)
	users.GET("/:id", d.UserHandler.GetUser)
	users.POST("", d.UserHandler.CreateUser)
	users.POST("/addAdmin/:id", d.UserHandler.AddAdmin)
	users.POST("/removeAdmin/:id", d.UserHandler.RemoveAdmin)
	users.PUT("/:id", d.UserHandler.UpdateUser)
	users.DELETE("/:id", d.UserHandler.DeleteUser)

	books := e.Group("/books")
	books.GET("", d.BookHandler.GetBooks)
	books.GET("/one/:id", d.BookHandler.GetSellerBooks)
	books.GET("/status/available", d.BookHandler.GetAvailableBooks)
	books.GET("/detail/:id", d.BookHandler.GetBook)
	if d.SearchHandler != nil {
		books.GET("/search", d.SearchHandler.Search)
	}
	books.GET("/:slug", d.BookHandler.GetBookByName)
	books.POST("", d.BookHandler.CreateBook)
	books.PUT("/:id", d.BookHandler.UpdateBook)
	books.DELETE("/:id", d.BookHandler.DeleteBook)

	orders := e.Group("/orders")
	orders.GET("", d.OrderHandler.GetOrders)
	orders.GET("/user/:memberId", d.OrderHandler.GetUserOrders)
	orders.GET("/details/:orderId", d.OrderHandler.GetOrderDetails)
	orders.GET("/:id", d.OrderHandler.GetOrder)
	orders.PUT("/updateStatus", d.OrderHandler.UpdateStatus)
	orders.POST("", d.OrderHandler.CreateOrder)
	orders.DELETE("/:orderId", d.OrderHandler.DeleteOrder)

	cart := e.Group("/cart")
	cart.GET("", d.CartHandler.GetCarts)
	cart.GET("/:memberId", d.CartHandler.GetCart)
	cart.POST("", d.CartHandler.AddToCart)
	cart.POST("/:memberId", d.CartHandler.AddToCartByMember)
	cart.DELETE("/product/:productId", d.CartHandler.DeleteProduct)
	cart.DELETE("/:memberId", d.CartHandler.ClearCart)

	coupons := e.Group("/coupons")
	coupons.GET("/all", d.CouponHandler.GetAllCoupons)
	coupons.GET("/check/:couponId", d.CouponHandler.CheckCoupon)
	coupons.GET("/:userId", d.CouponHandler.GetUserCoupons)
	coupons.POST("/add", d.CouponHandler.AddCoupon)
	coupons.POST("/evaluate", d.CouponHandler.EvaluateCoupon)
	coupons.PUT("/update/:couponId", d.CouponHandler.UpdateCoupon)
	coupons.DELETE("/delete/:couponId", d.CouponHandler.DeleteCoupon)

	categories := e.Group("/categories")
	categories.GET("", d.CategoryHandler.GetCategories)
	categories.GET("/books-with-categories", d.CategoryHandler.GetBooksWithCategories)
	categories.GET("/books-by-categories", d.CategoryHandler.GetBooksByCategories)
	categories.GET("/:productId", d.CategoryHandler.GetBookCategories)
	categories.POST("/add-category-to-book", d.CategoryHandler.AddCategoryToBook)
	categories.DELETE("/remove-category-from-book", d.CategoryHandler.RemoveCategoryFromBook)

	admins := e.Group("/administrators")
	admins.GET("", d.AdminHandler.GetAdmins)
	admins.GET("/:id", d.AdminHandler.CheckAdmin)
	admins.POST("", d.AdminHandler.AddAdmin)
	admins.DELETE("/:id", d.AdminHandler.DeleteAdmin)

	vendors := e.Group("/vendors")
	vendors.GET("", d.VendorHandler.GetVendors)
	vendors.GET("/member/:memberId", d.VendorHandler.GetVendorByMember)
	vendors.GET("/vendorId/:memberId", d.VendorHandler.GetVendorID)
	vendors.POST("", d.VendorHandler.CreateVendor)
	vendors.POST("/addVendor/:memberId", d.VendorHandler.AddVendorRole)
	vendors.PUT("/:id", d.VendorHandler.UpdateVendor)
	vendors.DELETE("/removeVendor/:memberId", d.VendorHandler.RemoveVendorRole)
	vendors.DELETE("/:id", d.VendorHandler.DeleteVendor)

	revenues := e.Group("/revenues")
	revenues.GET("/all", d.RevenueHandler.GetAllRevenues)
	revenues.GET("/vendor/:userId", d.RevenueHandler.GetVendorRevenue)
}
