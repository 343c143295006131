package pgrepo

import (
	"errors"
	"fmt"
	"storefront-backend/internal/domain"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
)

func TestBuildListFilter(t *testing.T) {
	tests := []struct {
		name      string
		filter    domain.CancellationFilter
		wantWhere string
		wantArgs  []any
	}{
		{"no filter", domain.CancellationFilter{}, "", nil},
		{"status only", domain.CancellationFilter{Status: "pending"}, " WHERE status = $1", []any{"pending"}},
		{
			"status and order",
			domain.CancellationFilter{Status: "approved", OrderID: "0b7c6c0e-4c1f-4a53-9a4e-5d0f3c6f2a11"},
			" WHERE status = $1 AND order_id = $2::uuid",
			[]any{"approved", "0b7c6c0e-4c1f-4a53-9a4e-5d0f3c6f2a11"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			where, args := buildListFilter(tt.filter)
			assert.Equal(t, tt.wantWhere, where)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestNumericMappers(t *testing.T) {
	n := float64ToNumeric(225.75)
	assert.True(t, n.Valid)
	assert.Equal(t, 225.75, numericToFloat64(n))

	assert.Nil(t, numericToFloat64Ptr(pgtype.Numeric{}))
	got := numericToFloat64Ptr(float64ToNumeric(0))
	if assert.NotNil(t, got) {
		assert.Zero(t, *got)
	}
}

func TestUUIDToString(t *testing.T) {
	assert.Empty(t, uuidToString(pgtype.UUID{}))

	u := pgtype.UUID{Bytes: [16]byte{0x0b, 0x7c, 0x6c, 0x0e, 0x4c, 0x1f, 0x4a, 0x53, 0x9a, 0x4e, 0x5d, 0x0f, 0x3c, 0x6f, 0x2a, 0x11}, Valid: true}
	assert.Equal(t, "0b7c6c0e-4c1f-4a53-9a4e-5d0f3c6f2a11", uuidToString(u))
}

func TestIsUniqueViolation(t *testing.T) {
	dup := &pgconn.PgError{Code: "23505", ConstraintName: "uq_cancellation_pending"}

	assert.True(t, isUniqueViolation(dup))
	assert.True(t, isUniqueViolation(fmt.Errorf("exec: %w", dup)))
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, isUniqueViolation(errors.New("connection reset")))
	assert.False(t, isUniqueViolation(nil))
}
