package pgrepo

import (
	"context"
	"fmt"
	"storefront-backend/internal/domain"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

type orderRepository struct {
	db *pgxpool.Pool
}

func NewOrderRepository(db *pgxpool.Pool) domain.OrderRepository {
	return &orderRepository{db: db}
}

const getOrderSQL = `
SELECT id, user_id, status, order_date, estimated_delivery_date, actual_delivery_date, created_at, updated_at
FROM orders
WHERE id = $1::uuid`

// Catalog columns are NULL when the reference no longer exists.
const getOrderItemsSQL = `
SELECT oi.id, oi.item_kind, oi.quantity, oi.size, oi.price, oi.discount,
       oi.unit_price, oi.size_adjusted_price, oi.item_total,
       oi.cancelled_at, oi.cancellation_request_id,
       p.id, p.name, p.base_price, p.discount, p.size_pricing,
       b.id, b.name, b.bundle_price, b.original_price
FROM order_items oi
LEFT JOIN products p ON p.id = oi.product_id
LEFT JOIN bundles b ON b.id = oi.bundle_id
WHERE oi.order_id = $1::uuid
ORDER BY oi.position, oi.id`

func (r *orderRepository) GetByID(ctx context.Context, id string) (order *domain.Order, err error) {
	defer observe(ctx, "GetOrderByID", time.Now(), &err)
	if _, perr := uuid.Parse(id); perr != nil {
		return nil, domain.ErrOrderNotFound
	}
	db := conn(ctx, r.db)

	var (
		oid, uid               pgtype.UUID
		status                 string
		orderDate, eta, actual pgtype.Timestamptz
		createdAt, updatedAt   time.Time
	)
	err = db.QueryRow(ctx, getOrderSQL, id).Scan(&oid, &uid, &status, &orderDate, &eta, &actual, &createdAt, &updatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order %s: %w", id, err)
	}

	order = &domain.Order{
		ID:                    uuidToString(oid),
		UserID:                uuidToString(uid),
		Status:                domain.OrderStatus(status),
		OrderDate:             timestamptzToPtr(orderDate),
		EstimatedDeliveryDate: timestamptzToPtr(eta),
		ActualDeliveryDate:    timestamptzToPtr(actual),
		CreatedAt:             createdAt,
		UpdatedAt:             updatedAt,
	}

	rows, err := db.Query(ctx, getOrderItemsSQL, id)
	if err != nil {
		return nil, fmt.Errorf("get order items %s: %w", id, err)
	}
	defer rows.Close()

	for rows.Next() {
		item, scanErr := scanLineItem(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("scan order item: %w", scanErr)
		}
		order.Items = append(order.Items, item)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return order, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLineItem(row rowScanner) (domain.LineItem, error) {
	var (
		id                                         pgtype.UUID
		kind                                       string
		quantity                                   int32
		size                                       *string
		price, discount, unit, sizeAdjusted, total pgtype.Numeric
		productID, bundleID                        pgtype.UUID
		productName, bundleName                    *string
		basePrice, productDiscount                 pgtype.Numeric
		sizePricing                                map[string]float64
		bundlePrice, originalPrice                 pgtype.Numeric
		cancelledAt                                pgtype.Timestamptz
		cancelRequestID                            pgtype.UUID
	)
	err := row.Scan(
		&id, &kind, &quantity, &size, &price, &discount,
		&unit, &sizeAdjusted, &total,
		&cancelledAt, &cancelRequestID,
		&productID, &productName, &basePrice, &productDiscount, &sizePricing,
		&bundleID, &bundleName, &bundlePrice, &originalPrice,
	)
	if err != nil {
		return domain.LineItem{}, err
	}

	item := domain.LineItem{
		ID:                      uuidToString(id),
		Kind:                    domain.ItemKind(kind),
		Quantity:                int(quantity),
		Size:                    size,
		Price:                   numericToFloat64(price),
		Discount:                numericToFloat64Ptr(discount),
		StoredUnitPrice:         numericToFloat64Ptr(unit),
		StoredSizeAdjustedPrice: numericToFloat64Ptr(sizeAdjusted),
		StoredItemTotal:         numericToFloat64Ptr(total),
		CancelledAt:             timestamptzToPtr(cancelledAt),
	}
	if cancelRequestID.Valid {
		rid := uuidToString(cancelRequestID)
		item.CancellationRequestID = &rid
	}
	if productID.Valid {
		item.Product = &domain.ProductRef{
			ID:          uuidToString(productID),
			Name:        derefString(productName),
			BasePrice:   numericToFloat64(basePrice),
			Discount:    numericToFloat64Ptr(productDiscount),
			SizePricing: sizePricing,
		}
	}
	if bundleID.Valid {
		item.Bundle = &domain.BundleRef{
			ID:            uuidToString(bundleID),
			Name:          derefString(bundleName),
			BundlePrice:   numericToFloat64Ptr(bundlePrice),
			OriginalPrice: numericToFloat64Ptr(originalPrice),
		}
	}
	return item, nil
}

func (r *orderRepository) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) (err error) {
	defer observe(ctx, "UpdateOrderStatus", time.Now(), &err)
	tag, err := conn(ctx, r.db).Exec(ctx,
		`UPDATE orders SET status = $2, updated_at = now() WHERE id = $1::uuid`, id, string(status))
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

func (r *orderRepository) MarkItemsCancelled(ctx context.Context, orderID string, itemIDs []string, requestID string, at time.Time) (err error) {
	defer observe(ctx, "MarkOrderItemsCancelled", time.Now(), &err)
	if len(itemIDs) == 0 {
		return domain.ErrEmptySelection
	}
	for _, id := range itemIDs {
		if _, perr := uuid.Parse(id); perr != nil {
			return fmt.Errorf("%w: %q", domain.ErrInvalidSelection, id)
		}
	}

	// Rows already cancelled are skipped, so a short count means a double refund.
	tag, err := conn(ctx, r.db).Exec(ctx, `
		UPDATE order_items
		SET cancelled_at = $4, cancellation_request_id = $3::uuid
		WHERE order_id = $1::uuid AND id = ANY($2::uuid[]) AND cancelled_at IS NULL`,
		orderID, itemIDs, requestID, at)
	if err != nil {
		return fmt.Errorf("mark order items cancelled: %w", err)
	}
	if tag.RowsAffected() != int64(len(itemIDs)) {
		return fmt.Errorf("%w: %d of %d items are no longer live", domain.ErrInvalidSelection,
			int64(len(itemIDs))-tag.RowsAffected(), len(itemIDs))
	}
	return nil
}

func (r *orderRepository) CreateOrderHistory(ctx context.Context, h *domain.OrderHistory) (err error) {
	defer observe(ctx, "CreateOrderHistory", time.Now(), &err)
	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	if h.CreatedAt.IsZero() {
		h.CreatedAt = time.Now().UTC()
	}
	_, err = conn(ctx, r.db).Exec(ctx, `
		INSERT INTO order_history (id, order_id, previous_status, new_status, reason, created_by, created_at)
		VALUES ($1::uuid, $2::uuid, $3, $4, $5, $6, $7)`,
		h.ID, h.OrderID, h.PreviousStatus, string(h.NewStatus), h.Reason, h.CreatedBy, h.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert order history: %w", err)
	}
	return nil
}

func (r *orderRepository) GetOrderHistory(ctx context.Context, orderID string) (history []domain.OrderHistory, err error) {
	defer observe(ctx, "GetOrderHistory", time.Now(), &err)
	rows, err := conn(ctx, r.db).Query(ctx, `
		SELECT id, order_id, previous_status, new_status, reason, created_by, created_at
		FROM order_history
		WHERE order_id = $1::uuid
		ORDER BY created_at`, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order history: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id, oid   pgtype.UUID
			newStatus string
			h         domain.OrderHistory
		)
		if err := rows.Scan(&id, &oid, &h.PreviousStatus, &newStatus, &h.Reason, &h.CreatedBy, &h.CreatedAt); err != nil {
			return nil, err
		}
		h.ID = uuidToString(id)
		h.OrderID = uuidToString(oid)
		h.NewStatus = domain.OrderStatus(newStatus)
		history = append(history, h)
	}
	return history, rows.Err()
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
