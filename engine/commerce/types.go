package commerce

import (
	"context"
	"errors"
	"time"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrCartNotFound    = errors.New("cart not found")
	ErrOrderNotFound   = errors.New("order not found")
)

type Product struct {
	ID          string  `json:"id"`
	WorkspaceID string  `json:"workspace_id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Category    string  `json:"category,omitempty"`
	Price       float64 `json:"price"`
	Stock       int     `json:"stock"`
}

type CartItem struct {
	ProductID   string  `json:"product_id"`
	Name        string  `json:"name"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	VariantInfo string  `json:"variant_info,omitempty"`
}

// Cart is the per-conversation cart snapshot.
type Cart struct {
	ConversationID string     `json:"conversation_id"`
	WorkspaceID    string     `json:"workspace_id"`
	Items          []CartItem `json:"items,omitempty"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// Total returns the cart grand total.
func (c *Cart) Total() float64 {
	if c == nil {
		return 0
	}
	var total float64
	for _, item := range c.Items {
		total += item.UnitPrice * float64(item.Quantity)
	}
	return total
}

func (c *Cart) Empty() bool {
	return c == nil || len(c.Items) == 0
}

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderPaid      OrderStatus = "paid"
	OrderShipped   OrderStatus = "shipped"
	OrderCancelled OrderStatus = "cancelled"
)

type Order struct {
	ID             string      `json:"id"`
	OrderNumber    string      `json:"order_number"`
	ConversationID string      `json:"conversation_id"`
	WorkspaceID    string      `json:"workspace_id"`
	Items          []CartItem  `json:"items"`
	Total          float64     `json:"total"`
	Status         OrderStatus `json:"status"`
	PaymentLink    string      `json:"payment_link,omitempty"`
	CreatedAt      time.Time   `json:"created_at"`
}

// Store is the catalog/cart/order persistence contract the tool executors
// run against.
type Store interface {
	SearchProducts(ctx context.Context, workspaceID, query, category string, maxPrice float64, limit int) ([]Product, error)
	GetProduct(ctx context.Context, workspaceID, productID string) (*Product, error)

	GetCart(ctx context.Context, conversationID string) (*Cart, error)
	SaveCart(ctx context.Context, cart *Cart) error
	ClearCart(ctx context.Context, conversationID string) error

	CreateOrder(ctx context.Context, order *Order) error
	LatestOrder(ctx context.Context, conversationID, orderNumber string) (*Order, error)
}
