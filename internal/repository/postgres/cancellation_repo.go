package pgrepo

import (
	"context"
	"fmt"
	"storefront-backend/internal/domain"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

type cancellationRepository struct {
	db *pgxpool.Pool
}

func NewCancellationRepository(db *pgxpool.Pool) domain.CancellationRepository {
	return &cancellationRepository{db: db}
}

const cancellationColumns = `id, order_id, kind, item_ids, reason, status, total_item_value, refund_percent,
       refund_amount, retained_amount, penalties, requested_at, requested_by, decided_at, decided_by, decision_note, created_at`

func (r *cancellationRepository) Create(ctx context.Context, req *domain.CancellationRequest) (err error) {
	defer observe(ctx, "CreateCancellationRequest", time.Now(), &err)
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	if req.CreatedAt.IsZero() {
		req.CreatedAt = time.Now().UTC()
	}
	penalties := req.Penalties
	if penalties == nil {
		penalties = domain.Penalties{}
	}
	itemIDs := req.ItemIDs
	if itemIDs == nil {
		itemIDs = []string{}
	}

	_, err = conn(ctx, r.db).Exec(ctx, `
		INSERT INTO cancellation_requests (`+cancellationColumns+`)
		VALUES ($1::uuid, $2::uuid, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
		req.ID, req.OrderID, req.Kind, itemIDs, req.Reason, req.Status,
		float64ToNumeric(req.TotalItemValue), float64ToNumeric(req.RefundPercent),
		float64ToNumeric(req.RefundAmount), float64ToNumeric(req.RetainedAmount),
		penalties, req.RequestedAt, req.RequestedBy, req.DecidedAt, req.DecidedBy, req.DecisionNote, req.CreatedAt,
	)
	if err != nil {
		// uq_cancellation_pending: another pending request won the race.
		if isUniqueViolation(err) {
			return domain.ErrRequestExists
		}
		return fmt.Errorf("insert cancellation request: %w", err)
	}
	return nil
}

func (r *cancellationRepository) GetByID(ctx context.Context, id string) (req *domain.CancellationRequest, err error) {
	defer observe(ctx, "GetCancellationRequest", time.Now(), &err)
	if _, perr := uuid.Parse(id); perr != nil {
		return nil, domain.ErrRequestNotFound
	}

	row := conn(ctx, r.db).QueryRow(ctx, `SELECT `+cancellationColumns+` FROM cancellation_requests WHERE id = $1::uuid`, id)
	req, err = scanCancellationRequest(row)
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrRequestNotFound
		}
		return nil, fmt.Errorf("get cancellation request %s: %w", id, err)
	}
	return req, nil
}

// buildListFilter renders the WHERE clause and its positional args.
func buildListFilter(filter domain.CancellationFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if filter.Status != "" {
		args = append(args, filter.Status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.OrderID != "" {
		args = append(args, filter.OrderID)
		conds = append(conds, fmt.Sprintf("order_id = $%d::uuid", len(args)))
	}
	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (r *cancellationRepository) List(ctx context.Context, filter domain.CancellationFilter) (requests []domain.CancellationRequest, total int64, err error) {
	defer observe(ctx, "ListCancellationRequests", time.Now(), &err)
	if filter.OrderID != "" {
		if _, perr := uuid.Parse(filter.OrderID); perr != nil {
			return []domain.CancellationRequest{}, 0, nil
		}
	}
	db := conn(ctx, r.db)
	where, args := buildListFilter(filter)

	if err = db.QueryRow(ctx, `SELECT count(*) FROM cancellation_requests`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count cancellation requests: %w", err)
	}

	offset := (filter.Page - 1) * filter.Limit
	if offset < 0 {
		offset = 0
	}
	pageArgs := append(args, filter.Limit, offset)
	query := fmt.Sprintf(`SELECT %s FROM cancellation_requests%s ORDER BY created_at DESC, id LIMIT $%d OFFSET $%d`,
		cancellationColumns, where, len(args)+1, len(args)+2)

	rows, err := db.Query(ctx, query, pageArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("list cancellation requests: %w", err)
	}
	defer rows.Close()

	requests = []domain.CancellationRequest{}
	for rows.Next() {
		req, scanErr := scanCancellationRequest(rows)
		if scanErr != nil {
			return nil, 0, scanErr
		}
		requests = append(requests, *req)
	}
	return requests, total, rows.Err()
}

// UpdateDecision only transitions pending requests.
func (r *cancellationRepository) UpdateDecision(ctx context.Context, id, status string, decidedBy *string, note *string, decidedAt time.Time) (err error) {
	defer observe(ctx, "UpdateCancellationDecision", time.Now(), &err)
	db := conn(ctx, r.db)
	tag, err := db.Exec(ctx, `
		UPDATE cancellation_requests
		SET status = $2, decided_by = $3, decision_note = $4, decided_at = $5
		WHERE id = $1::uuid AND status = 'pending'`,
		id, status, decidedBy, note, decidedAt)
	if err != nil {
		return fmt.Errorf("update cancellation decision: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	var exists bool
	if err = db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM cancellation_requests WHERE id = $1::uuid)`, id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return domain.ErrRequestNotFound
	}
	return domain.ErrRequestNotPending
}

func scanCancellationRequest(row rowScanner) (*domain.CancellationRequest, error) {
	var (
		id, orderID                      pgtype.UUID
		total, percent, refund, retained pgtype.Numeric
		decidedAt                        pgtype.Timestamptz
		req                              domain.CancellationRequest
	)
	err := row.Scan(
		&id, &orderID, &req.Kind, &req.ItemIDs, &req.Reason, &req.Status,
		&total, &percent, &refund, &retained,
		&req.Penalties, &req.RequestedAt, &req.RequestedBy, &decidedAt, &req.DecidedBy, &req.DecisionNote, &req.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	req.ID = uuidToString(id)
	req.OrderID = uuidToString(orderID)
	req.TotalItemValue = numericToFloat64(total)
	req.RefundPercent = numericToFloat64(percent)
	req.RefundAmount = numericToFloat64(refund)
	req.RetainedAmount = numericToFloat64(retained)
	req.DecidedAt = timestamptzToPtr(decidedAt)
	return &req, nil
}
