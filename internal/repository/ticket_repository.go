package repository

import (
	"context"
	"fmt"
	"time"

	"go-ticket-sales-engine/internal/model"
	apperrors "go-ticket-sales-engine/pkg/app_errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TicketRepository interface {
	FindByID(ctx context.Context, id int) (*model.Ticket, error)
	ListByEvent(ctx context.Context, eventID int) ([]*model.Ticket, error)

	// Transaction methods
	Create(ctx context.Context, tx pgx.Tx, ticket *model.Ticket) (*model.Ticket, error)
	Cancel(ctx context.Context, tx pgx.Tx, id int, at time.Time) (*model.Ticket, error)
}

type TicketRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &TicketRepositoryImpl{
		pool: pool,
	}
}

func (r *TicketRepositoryImpl) Create(ctx context.Context, tx pgx.Tx, ticket *model.Ticket) (*model.Ticket, error) {
	query := `
		INSERT INTO tickets (
			ticket_uid, event_id, buyer_name, buyer_email, promo_code,
			subtotal, group_discount, promo_discount, service_fee, total_price,
			payment_status, payment_method)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at
	`

	err := tx.QueryRow(ctx, query,
		ticket.TicketID, ticket.EventID, ticket.BuyerName, ticket.BuyerEmail, ticket.PromoCode,
		ticket.Subtotal, ticket.GroupDiscount, ticket.PromoDiscount, ticket.ServiceFee, ticket.TotalPrice,
		ticket.PaymentStatus, ticket.PaymentMethod,
	).Scan(&ticket.ID, &ticket.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("failed to create ticket: %w", err)
	}

	itemQuery := `
		INSERT INTO ticket_line_items (ticket_id, tier_id, tier_name, unit_price, quantity)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	for i := range ticket.Items {
		item := &ticket.Items[i]
		item.TicketID = ticket.ID
		err := tx.QueryRow(ctx, itemQuery,
			item.TicketID, item.TierID, item.TierName, item.UnitPrice, item.Quantity,
		).Scan(&item.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to create ticket line item: %w", err)
		}
	}

	return ticket, nil
}

func (r *TicketRepositoryImpl) FindByID(ctx context.Context, id int) (*model.Ticket, error) {
	query := `
		SELECT id, ticket_uid, event_id, buyer_name, buyer_email, promo_code,
			subtotal, group_discount, promo_discount, service_fee, total_price,
			payment_status, payment_method, created_at, cancelled_at
		FROM tickets
		WHERE id = $1
	`

	var ticket model.Ticket
	err := scanTicket(r.pool.QueryRow(ctx, query, id), &ticket)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrTicketNotFound
		}
		return nil, err
	}

	items, err := r.findLineItems(ctx, ticket.ID)
	if err != nil {
		return nil, err
	}
	ticket.Items = items

	return &ticket, nil
}

func (r *TicketRepositoryImpl) ListByEvent(ctx context.Context, eventID int) ([]*model.Ticket, error) {
	query := `
		SELECT id, ticket_uid, event_id, buyer_name, buyer_email, promo_code,
			subtotal, group_discount, promo_discount, service_fee, total_price,
			payment_status, payment_method, created_at, cancelled_at
		FROM tickets
		WHERE event_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tickets []*model.Ticket

	for rows.Next() {
		var ticket model.Ticket
		if err := scanTicket(rows, &ticket); err != nil {
			return nil, err
		}
		tickets = append(tickets, &ticket)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, ticket := range tickets {
		items, err := r.findLineItems(ctx, ticket.ID)
		if err != nil {
			return nil, err
		}
		ticket.Items = items
	}

	return tickets, nil
}

// Cancel 只在尚未取消時生效，重複取消回報 not found 由呼叫端判讀
func (r *TicketRepositoryImpl) Cancel(ctx context.Context, tx pgx.Tx, id int, at time.Time) (*model.Ticket, error) {
	query := `
		UPDATE tickets
		SET payment_status = $1, cancelled_at = $2
		WHERE id = $3 AND cancelled_at IS NULL
		RETURNING id, ticket_uid, event_id, buyer_name, buyer_email, promo_code,
			subtotal, group_discount, promo_discount, service_fee, total_price,
			payment_status, payment_method, created_at, cancelled_at
	`

	var ticket model.Ticket
	err := scanTicket(tx.QueryRow(ctx, query, model.PaymentStatusCancelled, at, id), &ticket)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrTicketNotFound
		}
		return nil, fmt.Errorf("failed to cancel ticket: %w", err)
	}

	items, err := r.findLineItemsTx(ctx, tx, ticket.ID)
	if err != nil {
		return nil, err
	}
	ticket.Items = items

	return &ticket, nil
}

func (r *TicketRepositoryImpl) findLineItems(ctx context.Context, ticketID int) ([]model.TicketLineItem, error) {
	rows, err := r.pool.Query(ctx, lineItemQuery, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectLineItems(rows)
}

func (r *TicketRepositoryImpl) findLineItemsTx(ctx context.Context, tx pgx.Tx, ticketID int) ([]model.TicketLineItem, error) {
	rows, err := tx.Query(ctx, lineItemQuery, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectLineItems(rows)
}

const lineItemQuery = `
	SELECT id, ticket_id, tier_id, tier_name, unit_price, quantity
	FROM ticket_line_items
	WHERE ticket_id = $1
	ORDER BY id
`

func collectLineItems(rows pgx.Rows) ([]model.TicketLineItem, error) {
	items := make([]model.TicketLineItem, 0)
	for rows.Next() {
		var item model.TicketLineItem
		err := rows.Scan(
			&item.ID,
			&item.TicketID,
			&item.TierID,
			&item.TierName,
			&item.UnitPrice,
			&item.Quantity,
		)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func scanTicket(row pgx.Row, ticket *model.Ticket) error {
	return row.Scan(
		&ticket.ID,
		&ticket.TicketID,
		&ticket.EventID,
		&ticket.BuyerName,
		&ticket.BuyerEmail,
		&ticket.PromoCode,
		&ticket.Subtotal,
		&ticket.GroupDiscount,
		&ticket.PromoDiscount,
		&ticket.ServiceFee,
		&ticket.TotalPrice,
		&ticket.PaymentStatus,
		&ticket.PaymentMethod,
		&ticket.CreatedAt,
		&ticket.CancelledAt,
	)
}
