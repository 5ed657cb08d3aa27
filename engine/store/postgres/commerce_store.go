package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	commercex "github.com/tanpawarit/Chative-Commerce-Governance/engine/commerce"
)

// CommerceStore persists the catalog, per-conversation carts, and orders.
type CommerceStore struct {
	db *bun.DB
}

var _ commercex.Store = (*CommerceStore)(nil)

func NewCommerceStore(db *bun.DB) *CommerceStore {
	return &CommerceStore{db: db}
}

func (s *CommerceStore) SearchProducts(ctx context.Context, workspaceID, query, category string, maxPrice float64, limit int) ([]commercex.Product, error) {
	q := s.db.NewSelect().
		Model((*dbProduct)(nil)).
		Where("workspace_id = ?", workspaceID)

	if query != "" {
		pattern := "%" + query + "%"
		q = q.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("name ILIKE ?", pattern).
				WhereOr("description ILIKE ?", pattern)
		})
	}
	if category != "" {
		q = q.Where("category = ?", category)
	}
	if maxPrice > 0 {
		q = q.Where("price <= ?", maxPrice)
	}
	if limit <= 0 {
		limit = 10
	}

	var rows []dbProduct
	if err := q.Order("name ASC").Limit(limit).Scan(ctx, &rows); err != nil {
		return nil, fmt.Errorf("search products: %w", err)
	}
	products := make([]commercex.Product, len(rows))
	for i, row := range rows {
		products[i] = row.toDomain()
	}
	return products, nil
}

func (s *CommerceStore) GetProduct(ctx context.Context, workspaceID, productID string) (*commercex.Product, error) {
	row := new(dbProduct)
	err := s.db.NewSelect().
		Model(row).
		Where("workspace_id = ?", workspaceID).
		Where("id = ?", productID).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, commercex.ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load product: %w", err)
	}
	p := row.toDomain()
	return &p, nil
}

func (s *CommerceStore) GetCart(ctx context.Context, conversationID string) (*commercex.Cart, error) {
	row := new(dbCart)
	err := s.db.NewSelect().
		Model(row).
		Where("conversation_id = ?", conversationID).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, commercex.ErrCartNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	return row.toDomain(), nil
}

func (s *CommerceStore) SaveCart(ctx context.Context, cart *commercex.Cart) error {
	row := &dbCart{
		ConversationID: cart.ConversationID,
		WorkspaceID:    cart.WorkspaceID,
		Items:          cart.Items,
		UpdatedAt:      time.Now().UTC(),
	}
	_, err := s.db.NewInsert().
		Model(row).
		On("CONFLICT (conversation_id) DO UPDATE").
		Set("items = EXCLUDED.items").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	return nil
}

func (s *CommerceStore) ClearCart(ctx context.Context, conversationID string) error {
	_, err := s.db.NewDelete().
		Model((*dbCart)(nil)).
		Where("conversation_id = ?", conversationID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

func (s *CommerceStore) CreateOrder(ctx context.Context, order *commercex.Order) error {
	row := &dbOrder{
		ID:             order.ID,
		OrderNumber:    order.OrderNumber,
		ConversationID: order.ConversationID,
		WorkspaceID:    order.WorkspaceID,
		Items:          order.Items,
		Total:          order.Total,
		Status:         string(order.Status),
		PaymentLink:    order.PaymentLink,
		CreatedAt:      order.CreatedAt.UTC(),
	}
	if _, err := s.db.NewInsert().Model(row).Exec(ctx); err != nil {
		return fmt.Errorf("create order: %w", err)
	}
	return nil
}

func (s *CommerceStore) LatestOrder(ctx context.Context, conversationID, orderNumber string) (*commercex.Order, error) {
	q := s.db.NewSelect().
		Model((*dbOrder)(nil)).
		Where("conversation_id = ?", conversationID)
	if orderNumber != "" {
		q = q.Where("order_number = ?", orderNumber)
	}

	row := new(dbOrder)
	err := q.Order("created_at DESC").Limit(1).Scan(ctx, row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, commercex.ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load latest order: %w", err)
	}
	return row.toDomain(), nil
}
