package repository

import (
	"context"
	"fmt"

	"go-ticket-sales-engine/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PaymentRepository 稽核紀錄，append-only：沒有 update / delete 方法
type PaymentRepository interface {
	FindByTicketID(ctx context.Context, ticketID int) (*model.PaymentTransaction, error)

	// Transaction methods
	Create(ctx context.Context, tx pgx.Tx, txn *model.PaymentTransaction) (*model.PaymentTransaction, error)
}

type PaymentRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewPaymentRepository(pool *pgxpool.Pool) PaymentRepository {
	return &PaymentRepositoryImpl{
		pool: pool,
	}
}

func (r *PaymentRepositoryImpl) Create(ctx context.Context, tx pgx.Tx, txn *model.PaymentTransaction) (*model.PaymentTransaction, error) {
	query := `
		INSERT INTO payment_transactions (
			ticket_id, subtotal, group_discount, promo_discount, service_fee, total, method, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`

	err := tx.QueryRow(ctx, query,
		txn.TicketID, txn.Subtotal, txn.GroupDiscount, txn.PromoDiscount,
		txn.ServiceFee, txn.Total, txn.Method, txn.Status,
	).Scan(&txn.ID, &txn.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("failed to create payment transaction: %w", err)
	}

	return txn, nil
}

func (r *PaymentRepositoryImpl) FindByTicketID(ctx context.Context, ticketID int) (*model.PaymentTransaction, error) {
	query := `
		SELECT id, ticket_id, subtotal, group_discount, promo_discount,
			service_fee, total, method, status, created_at
		FROM payment_transactions
		WHERE ticket_id = $1
	`

	var txn model.PaymentTransaction
	err := r.pool.QueryRow(ctx, query, ticketID).Scan(
		&txn.ID,
		&txn.TicketID,
		&txn.Subtotal,
		&txn.GroupDiscount,
		&txn.PromoDiscount,
		&txn.ServiceFee,
		&txn.Total,
		&txn.Method,
		&txn.Status,
		&txn.CreatedAt,
	)

	if err != nil {
		return nil, err
	}

	return &txn, nil
}
