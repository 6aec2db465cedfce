package shared

import "github.com/mercato-next/internal/models"

// CartView 购物车响应：购物车项展开商品，附带总件数与小计
type CartView struct {
	*models.Cart
	TotalQuantity int          `json:"total_quantity"`
	Subtotal      models.Money `json:"subtotal"`
}

// NewCartView 构造购物车响应
func NewCartView(cart *models.Cart) CartView {
	return CartView{
		Cart:          cart,
		TotalQuantity: cart.TotalQuantity(),
		Subtotal:      cart.Subtotal(),
	}
}
