package commerce

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/google/uuid"

	contractx "github.com/tanpawarit/Chative-Commerce-Governance/engine/contract"
)

const (
	ToolSearchProducts   = "search_products"
	ToolAddToCart        = "add_to_cart"
	ToolViewCart         = "view_cart"
	ToolRemoveFromCart   = "remove_from_cart"
	ToolCreateCheckout   = "create_checkout"
	ToolCheckOrderStatus = "check_order_status"
)

const defaultSearchLimit = 5

// ErrCartEmpty is the exact customer-facing tool error for checkout on an
// empty cart. Checkout clears the cart on success, so a re-invocation lands
// here instead of creating a duplicate order.
const cartEmptyMessage = "Cart is empty"

// ToolInfos is the fixed capability schema advertised to the model.
func ToolInfos() []*schema.ToolInfo {
	return []*schema.ToolInfo{
		{
			Name: ToolSearchProducts,
			Desc: "Search the product catalog by query, optional category and max price. Returns a ranked list.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"query":     {Type: schema.String, Desc: "Search query", Required: true},
				"category":  {Type: schema.String, Desc: "Category filter"},
				"max_price": {Type: schema.Number, Desc: "Maximum unit price"},
			}),
		},
		{
			Name: ToolAddToCart,
			Desc: "Add a product to the customer's cart. Rejects quantities above tracked stock.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"product_id":   {Type: schema.String, Desc: "Product id", Required: true},
				"quantity":     {Type: schema.Integer, Desc: "Quantity, defaults to 1"},
				"variant_info": {Type: schema.String, Desc: "Variant selection, e.g. size or color"},
			}),
		},
		{
			Name:        ToolViewCart,
			Desc:        "View the customer's current cart items and total.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{}),
		},
		{
			Name: ToolRemoveFromCart,
			Desc: "Remove a product from the customer's cart.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"product_id": {Type: schema.String, Desc: "Product id", Required: true},
			}),
		},
		{
			Name:        ToolCreateCheckout,
			Desc:        "Create a checkout for the current cart. Returns the order number and payment link.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{}),
		},
		{
			Name: ToolCheckOrderStatus,
			Desc: "Look up the most recent order, optionally by order number.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"order_number": {Type: schema.String, Desc: "Order number"},
			}),
		},
	}
}

type SearchOutput struct {
	Products []Product `json:"products"`
}

type CartOutput struct {
	Items []CartItem `json:"items"`
	Total float64    `json:"total"`
}

type StockOutput struct {
	Available int `json:"available"`
}

type CheckoutOutput struct {
	OrderNumber string  `json:"order_number"`
	Total       float64 `json:"total"`
	PaymentLink string  `json:"payment_link"`
}

type OrderStatusOutput struct {
	OrderNumber string      `json:"order_number"`
	Status      OrderStatus `json:"status"`
	Total       float64     `json:"total"`
	CreatedAt   time.Time   `json:"created_at"`
}

// Gateway executes tool requests against the commerce store. It implements
// contract.ToolGateway: requests run sequentially because later calls may
// depend on cart state mutated by earlier ones.
type Gateway struct {
	store          Store
	paymentBaseURL string
	now            func() time.Time
}

func NewGateway(store Store, paymentBaseURL string) (*Gateway, error) {
	if store == nil {
		return nil, errors.New("commerce store is required")
	}
	return &Gateway{
		store:          store,
		paymentBaseURL: strings.TrimRight(paymentBaseURL, "/"),
		now:            time.Now,
	}, nil
}

func (g *Gateway) Execute(ctx context.Context, scope contractx.ToolScope, reqs []contractx.ToolRequest) ([]contractx.ToolResult, error) {
	results := make([]contractx.ToolResult, 0, len(reqs))
	for _, req := range reqs {
		res, err := g.execute(ctx, scope, req)
		if err != nil {
			return nil, err
		}
		res.ID = req.ID
		res.Tool = req.Tool
		results = append(results, res)
	}
	return results, nil
}

func (g *Gateway) execute(ctx context.Context, scope contractx.ToolScope, req contractx.ToolRequest) (contractx.ToolResult, error) {
	switch req.Tool {
	case ToolSearchProducts:
		return g.searchProducts(ctx, scope, req.Args)
	case ToolAddToCart:
		return g.addToCart(ctx, scope, req.Args)
	case ToolViewCart:
		return g.viewCart(ctx, scope)
	case ToolRemoveFromCart:
		return g.removeFromCart(ctx, scope, req.Args)
	case ToolCreateCheckout:
		return g.createCheckout(ctx, scope)
	case ToolCheckOrderStatus:
		return g.checkOrderStatus(ctx, scope, req.Args)
	default:
		return contractx.ToolResult{Error: fmt.Sprintf("unknown tool %q", req.Tool)}, nil
	}
}

func (g *Gateway) searchProducts(ctx context.Context, scope contractx.ToolScope, args map[string]any) (contractx.ToolResult, error) {
	query := stringArg(args, "query")
	if query == "" {
		return contractx.ToolResult{Error: "query is required"}, nil
	}
	category := stringArg(args, "category")
	maxPrice := floatArg(args, "max_price")

	products, err := g.store.SearchProducts(ctx, scope.WorkspaceID, query, category, maxPrice, defaultSearchLimit)
	if err != nil {
		return contractx.ToolResult{}, fmt.Errorf("search products: %w", err)
	}
	return contractx.ToolResult{Result: SearchOutput{Products: products}}, nil
}

func (g *Gateway) addToCart(ctx context.Context, scope contractx.ToolScope, args map[string]any) (contractx.ToolResult, error) {
	productID := stringArg(args, "product_id")
	if productID == "" {
		return contractx.ToolResult{Error: "product_id is required"}, nil
	}
	quantity := intArg(args, "quantity")
	if quantity <= 0 {
		quantity = 1
	}

	product, err := g.store.GetProduct(ctx, scope.WorkspaceID, productID)
	if err != nil {
		if errors.Is(err, ErrProductNotFound) {
			return contractx.ToolResult{Error: fmt.Sprintf("product %s not found", productID)}, nil
		}
		return contractx.ToolResult{}, fmt.Errorf("get product: %w", err)
	}

	cart, err := g.loadCart(ctx, scope)
	if err != nil {
		return contractx.ToolResult{}, err
	}

	inCart := 0
	for _, item := range cart.Items {
		if item.ProductID == productID {
			inCart = item.Quantity
		}
	}
	if inCart+quantity > product.Stock {
		return contractx.ToolResult{
			Error:  "insufficient stock",
			Result: StockOutput{Available: product.Stock - inCart},
		}, nil
	}

	merged := false
	for i := range cart.Items {
		if cart.Items[i].ProductID == productID {
			cart.Items[i].Quantity += quantity
			merged = true
			break
		}
	}
	if !merged {
		cart.Items = append(cart.Items, CartItem{
			ProductID:   product.ID,
			Name:        product.Name,
			Quantity:    quantity,
			UnitPrice:   product.Price,
			VariantInfo: stringArg(args, "variant_info"),
		})
	}
	cart.UpdatedAt = g.now().UTC()

	if err := g.store.SaveCart(ctx, cart); err != nil {
		return contractx.ToolResult{}, fmt.Errorf("save cart: %w", err)
	}
	return contractx.ToolResult{Result: CartOutput{Items: cart.Items, Total: cart.Total()}}, nil
}

func (g *Gateway) viewCart(ctx context.Context, scope contractx.ToolScope) (contractx.ToolResult, error) {
	cart, err := g.loadCart(ctx, scope)
	if err != nil {
		return contractx.ToolResult{}, err
	}
	return contractx.ToolResult{Result: CartOutput{Items: cart.Items, Total: cart.Total()}}, nil
}

func (g *Gateway) removeFromCart(ctx context.Context, scope contractx.ToolScope, args map[string]any) (contractx.ToolResult, error) {
	productID := stringArg(args, "product_id")
	if productID == "" {
		return contractx.ToolResult{Error: "product_id is required"}, nil
	}

	cart, err := g.loadCart(ctx, scope)
	if err != nil {
		return contractx.ToolResult{}, err
	}

	kept := cart.Items[:0]
	removed := false
	for _, item := range cart.Items {
		if item.ProductID == productID {
			removed = true
			continue
		}
		kept = append(kept, item)
	}
	if !removed {
		return contractx.ToolResult{Error: fmt.Sprintf("product %s is not in the cart", productID)}, nil
	}
	cart.Items = kept
	cart.UpdatedAt = g.now().UTC()

	if err := g.store.SaveCart(ctx, cart); err != nil {
		return contractx.ToolResult{}, fmt.Errorf("save cart: %w", err)
	}
	return contractx.ToolResult{Result: CartOutput{Items: cart.Items, Total: cart.Total()}}, nil
}

// createCheckout is not idempotent: success clears the cart, so invoking it
// again is a no-op that returns the empty-cart error.
func (g *Gateway) createCheckout(ctx context.Context, scope contractx.ToolScope) (contractx.ToolResult, error) {
	cart, err := g.loadCart(ctx, scope)
	if err != nil {
		return contractx.ToolResult{}, err
	}
	if cart.Empty() {
		return contractx.ToolResult{Error: cartEmptyMessage}, nil
	}

	orderNumber := newOrderNumber()
	order := &Order{
		ID:             uuid.NewString(),
		OrderNumber:    orderNumber,
		ConversationID: scope.ConversationID,
		WorkspaceID:    scope.WorkspaceID,
		Items:          append([]CartItem(nil), cart.Items...),
		Total:          cart.Total(),
		Status:         OrderPending,
		PaymentLink:    g.paymentLink(orderNumber),
		CreatedAt:      g.now().UTC(),
	}
	if err := g.store.CreateOrder(ctx, order); err != nil {
		return contractx.ToolResult{}, fmt.Errorf("create order: %w", err)
	}
	if err := g.store.ClearCart(ctx, scope.ConversationID); err != nil {
		return contractx.ToolResult{}, fmt.Errorf("clear cart: %w", err)
	}

	return contractx.ToolResult{Result: CheckoutOutput{
		OrderNumber: order.OrderNumber,
		Total:       order.Total,
		PaymentLink: order.PaymentLink,
	}}, nil
}

func (g *Gateway) checkOrderStatus(ctx context.Context, scope contractx.ToolScope, args map[string]any) (contractx.ToolResult, error) {
	orderNumber := stringArg(args, "order_number")

	order, err := g.store.LatestOrder(ctx, scope.ConversationID, orderNumber)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			return contractx.ToolResult{Error: "no matching order found"}, nil
		}
		return contractx.ToolResult{}, fmt.Errorf("latest order: %w", err)
	}
	return contractx.ToolResult{Result: OrderStatusOutput{
		OrderNumber: order.OrderNumber,
		Status:      order.Status,
		Total:       order.Total,
		CreatedAt:   order.CreatedAt,
	}}, nil
}

func (g *Gateway) loadCart(ctx context.Context, scope contractx.ToolScope) (*Cart, error) {
	cart, err := g.store.GetCart(ctx, scope.ConversationID)
	if err == nil {
		return cart, nil
	}
	if errors.Is(err, ErrCartNotFound) {
		return &Cart{ConversationID: scope.ConversationID, WorkspaceID: scope.WorkspaceID}, nil
	}
	return nil, fmt.Errorf("get cart: %w", err)
}

func (g *Gateway) paymentLink(orderNumber string) string {
	if g.paymentBaseURL == "" {
		return ""
	}
	return g.paymentBaseURL + "/pay/" + orderNumber
}

func newOrderNumber() string {
	return "ORD-" + strings.ToUpper(uuid.NewString()[:8])
}

func stringArg(args map[string]any, key string) string {
	if args == nil {
		return ""
	}
	v, _ := args[key].(string)
	return strings.TrimSpace(v)
}

func intArg(args map[string]any, key string) int {
	if args == nil {
		return 0
	}
	switch v := args[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case int64:
		return int(v)
	}
	return 0
}

func floatArg(args map[string]any, key string) float64 {
	if args == nil {
		return 0
	}
	switch v := args[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	}
	return 0
}
