package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ontimely/admin-portal/internal/domain"
)

// TicketFilter captures staff search parameters.
type TicketFilter struct {
	Statuses   []domain.TicketStatus
	Priorities []domain.TicketPriority
	AssigneeID *string
	SearchTerm *string
	Limit      int
	Offset     int
}

// TicketRepository encapsulates support ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.SupportTicket) error
	Update(ctx context.Context, ticket *domain.SupportTicket) error
	GetByID(ctx context.Context, id string) (*domain.SupportTicket, error)
	ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.SupportTicket, error)
}

const ticketColumns = `id, company_name, submitter_email, subject, description, status, priority,
               assignee_staff_id, created_at, updated_at, closed_at`

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.SupportTicket) error {
	const query = `
        INSERT INTO support_tickets (company_name, submitter_email, subject, description, status, priority, assignee_staff_id)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		ticket.CompanyName,
		ticket.SubmitterEmail,
		ticket.Subject,
		ticket.Description,
		ticket.Status,
		ticket.Priority,
		ticket.AssigneeID,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
}

func (r *ticketRepository) Update(ctx context.Context, ticket *domain.SupportTicket) error {
	const query = `
        UPDATE support_tickets SET status=$1, priority=$2, assignee_staff_id=$3, closed_at=$4, updated_at=NOW()
        WHERE id=$5
        RETURNING updated_at`
	return r.pool.QueryRow(ctx, query,
		ticket.Status,
		ticket.Priority,
		ticket.AssigneeID,
		ticket.ClosedAt,
		ticket.ID,
	).Scan(&ticket.UpdatedAt)
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.SupportTicket, error) {
	query := `SELECT ` + ticketColumns + ` FROM support_tickets WHERE id=$1`
	return scanTicket(r.pool.QueryRow(ctx, query, id))
}

func (r *ticketRepository) ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.SupportTicket, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.AssigneeID != nil {
		args = append(args, *filter.AssigneeID)
		clauses = append(clauses, fmt.Sprintf("assignee_staff_id=$%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(filter.Priorities) > 0 {
		placeholders := make([]string, len(filter.Priorities))
		for i, pr := range filter.Priorities {
			args = append(args, pr)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("priority IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) != "" {
		search := "%" + strings.ToLower(strings.TrimSpace(*filter.SearchTerm)) + "%"
		args = append(args, search)
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf("(LOWER(subject) LIKE %s OR LOWER(company_name) LIKE %s OR LOWER(submitter_email) LIKE %s)",
			placeholder, placeholder, placeholder))
	}

	query := fmt.Sprintf(`SELECT %s FROM support_tickets WHERE %s ORDER BY updated_at DESC%s`,
		ticketColumns, strings.Join(clauses, " AND "), limitOffset(filter.Limit, filter.Offset))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.SupportTicket
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *ticket)
	}
	return result, rows.Err()
}

func scanTicket(row pgx.Row) (*domain.SupportTicket, error) {
	var ticket domain.SupportTicket
	if err := row.Scan(
		&ticket.ID,
		&ticket.CompanyName,
		&ticket.SubmitterEmail,
		&ticket.Subject,
		&ticket.Description,
		&ticket.Status,
		&ticket.Priority,
		&ticket.AssigneeID,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
		&ticket.ClosedAt,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}
