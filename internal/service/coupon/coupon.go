package coupon

import (
	"math"
	"strconv"
	"strings"

	"github.com/linyuhsin/bookshop/internal/models"
)

// TypeFreeShipping zeroes the shipping fee instead of discounting the
// subtotal. Any other recognized Type leaves shipping untouched.
const TypeFreeShipping = "no_deliverfee"

// Result of evaluating a coupon against a cart subtotal.
type Result struct {
	Discount     float64 `json:"discount"`
	FreeShipping bool    `json:"free_shipping"`
	Applied      bool    `json:"applied"`
	Reason       string  `json:"reason,omitempty"`
}

// Evaluate interprets the string-encoded discount rule of a coupon:
// the keyword "no_deliverfee" grants free shipping, a leading "*" applies a
// multiplicative rate to the subtotal (rounded), and a bare number is a flat
// discount. Unrecognized types and subtotals below the low-spend threshold
// produce no effect.
func Evaluate(c *models.Coupon, subtotal float64) Result {
	if subtotal < c.LowMoney {
		return Result{Reason: "未達到低消限制"}
	}

	switch {
	case c.Type == TypeFreeShipping:
		return Result{FreeShipping: true, Applied: true}
	case strings.HasPrefix(c.Type, "*"):
		rate, err := strconv.ParseFloat(strings.TrimPrefix(c.Type, "*"), 64)
		if err != nil {
			return Result{Reason: "無法識別的折扣類型"}
		}
		return Result{Discount: math.Round(subtotal * (1 - rate)), Applied: true}
	default:
		flat, err := strconv.ParseFloat(c.Type, 64)
		if err != nil {
			return Result{Reason: "無法識別的優惠類型"}
		}
		return Result{Discount: flat, Applied: true}
	}
}
