package models

import "time"

// Book statuses as stored in the catalog. The storefront only ever lists
// books whose status is BookStatusListed.
const (
	BookStatusListed   = "上架"
	BookStatusUnlisted = "下架"
)

// Order lifecycle labels. Transitions are not enforced.
const (
	OrderStatusUnprocessed = "未處理"
	OrderStatusProcessing  = "處理中"
	OrderStatusShipped     = "已出貨"
	OrderStatusComplete    = "已完成"
	OrderStatusCancelled   = "已取消"
)

// Member roles as returned by the role resolution endpoint.
const (
	RoleAdmin  = "管理員"
	RoleVendor = "賣家"
	RoleBuyer  = "買家"
)

type Member struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name         string    `gorm:"not null"                 json:"name"`
	Email        string    `gorm:"unique;not null"          json:"email"`
	PasswordHash string    `gorm:"not null"                 json:"-"`
	Phone        string    `json:"phone"`
	Birthday     string    `json:"birthday"`
	RegisterDate time.Time `gorm:"autoCreateTime"           json:"register_date"`
}

// Vendor marks a member as a seller. A deactivated row keeps its history
// but grants no role.
type Vendor struct {
	ID       uint `gorm:"primaryKey;autoIncrement" json:"vendor_id"`
	MemberID uint `gorm:"index;not null"           json:"member_id"`
	IsActive bool `gorm:"default:true"             json:"is_active"`
}

// Administrator grants the admin role by row presence alone.
type Administrator struct {
	ID       uint `gorm:"primaryKey;autoIncrement" json:"id"`
	MemberID uint `gorm:"uniqueIndex;not null"     json:"member_id"`
}

type Book struct {
	ID             uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name           string    `gorm:"not null"                 json:"name"`
	Description    string    `json:"description"`
	Author         string    `json:"author"`
	Price          float64   `gorm:"not null"                 json:"price"`
	Stock          int       `gorm:"not null"                 json:"stock"`
	Status         string    `gorm:"not null"                 json:"status"`
	Image          string    `json:"image"`
	SellerID       *uint     `gorm:"index"                    json:"seller_id"`
	NewArrivalDate time.Time `gorm:"autoCreateTime"           json:"new_arrival_date"`
}

type Category struct {
	ID   uint   `gorm:"primaryKey;autoIncrement" json:"category_id"`
	Name string `gorm:"unique;not null"          json:"category_name"`
}

// BookCategory is the many-to-many association between books and categories.
type BookCategory struct {
	BookID     uint `gorm:"primaryKey"          json:"book_id"`
	CategoryID uint `gorm:"primaryKey"          json:"category_id"`
}

// Cart holds one row per member. TotalPrice is recomputed with a SUM
// aggregate after every mutation rather than maintained incrementally.
type Cart struct {
	ID         uint    `gorm:"primaryKey;autoIncrement" json:"cart_id"`
	MemberID   uint    `gorm:"uniqueIndex;not null"     json:"member_id"`
	TotalPrice float64 `json:"total_price"`
}

type CartItem struct {
	ID       uint `gorm:"primaryKey;autoIncrement"                json:"id"`
	CartID   uint `gorm:"index:idx_cart_book,unique;not null"     json:"cart_id"`
	BookID   uint `gorm:"index:idx_cart_book,unique;not null"     json:"book_id"`
	Quantity int  `gorm:"not null"                                json:"quantity"`
}

type Order struct {
	ID               uint      `gorm:"primaryKey;autoIncrement" json:"order_id"`
	BuyerID          uint      `gorm:"index;not null"           json:"buyer_id"`
	Status           string    `gorm:"not null"                 json:"status"`
	OrderTime        time.Time `gorm:"autoCreateTime"           json:"order_time"`
	StatusUpdateTime time.Time `json:"status_update_time"`
	PackageMethod    string    `json:"package_method"`
	PaymentMethod    string    `json:"payment_method"`
	Address          string    `json:"address"`
	Notes            string    `json:"notes"`
	CouponUsedID     *uint     `json:"coupon_used_id"`
	TotalPrice       float64   `json:"total_price"`
}

// OrderItem snapshots book id, price and quantity at purchase time.
type OrderItem struct {
	ID       uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID  uint    `gorm:"index;not null"           json:"order_id"`
	BookID   uint    `gorm:"not null"                 json:"book_id"`
	Quantity int     `gorm:"not null"                 json:"quantity"`
	Price    float64 `gorm:"not null"                 json:"price"`
}

// Coupon carries a string-encoded discount rule in Type: the exact keyword
// "no_deliverfee", a multiplicative rate like "*0.95", or a bare flat amount.
type Coupon struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"coupon_id"`
	LowMoney  float64   `gorm:"not null"                 json:"low_money"`
	StartDate time.Time `gorm:"not null"                 json:"start_date"`
	EndDate   time.Time `gorm:"not null"                 json:"end_date"`
	Detail    string    `json:"detail"`
	Type      string    `gorm:"not null"                 json:"type"`
	Used      bool      `gorm:"default:false"            json:"used"`
	OwnerID   *uint     `gorm:"index"                    json:"owner_id"`
	SenderID  uint      `json:"sender_id"`
}

type RefreshToken struct {
	ID        uint   `gorm:"primaryKey"      json:"id"`
	Token     string `gorm:"unique;not null" json:"token"`
	MemberID  uint   `gorm:"index;not null"  json:"member_id"`
	ExpiresAt int64  `gorm:"not null"        json:"expires_at"`
	Revoked   bool   `gorm:"default:false"   json:"revoked"`
}
