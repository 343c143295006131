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

type catalogRepository struct {
	db *pgxpool.Pool
}

func NewCatalogRepository(db *pgxpool.Pool) domain.CatalogRepository {
	return &catalogRepository{db: db}
}

func (r *catalogRepository) GetProductRef(ctx context.Context, id string) (ref *domain.ProductRef, err error) {
	defer observe(ctx, "GetProductRef", time.Now(), &err)
	if _, perr := uuid.Parse(id); perr != nil {
		return nil, domain.ErrProductNotFound
	}

	var (
		pid         pgtype.UUID
		name        string
		base, disc  pgtype.Numeric
		sizePricing map[string]float64
	)
	err = conn(ctx, r.db).QueryRow(ctx, `
		SELECT id, name, base_price, discount, size_pricing
		FROM products
		WHERE id = $1::uuid`, id).Scan(&pid, &name, &base, &disc, &sizePricing)
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrProductNotFound
		}
		return nil, fmt.Errorf("get product %s: %w", id, err)
	}

	return &domain.ProductRef{
		ID:          uuidToString(pid),
		Name:        name,
		BasePrice:   numericToFloat64(base),
		Discount:    numericToFloat64Ptr(disc),
		SizePricing: sizePricing,
	}, nil
}

func (r *catalogRepository) GetBundleRef(ctx context.Context, id string) (ref *domain.BundleRef, err error) {
	defer observe(ctx, "GetBundleRef", time.Now(), &err)
	if _, perr := uuid.Parse(id); perr != nil {
		return nil, domain.ErrProductNotFound
	}

	var (
		bid             pgtype.UUID
		name            string
		price, original pgtype.Numeric
	)
	err = conn(ctx, r.db).QueryRow(ctx, `
		SELECT id, name, bundle_price, original_price
		FROM bundles
		WHERE id = $1::uuid`, id).Scan(&bid, &name, &price, &original)
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrProductNotFound
		}
		return nil, fmt.Errorf("get bundle %s: %w", id, err)
	}

	return &domain.BundleRef{
		ID:            uuidToString(bid),
		Name:          name,
		BundlePrice:   numericToFloat64Ptr(price),
		OriginalPrice: numericToFloat64Ptr(original),
	}, nil
}
