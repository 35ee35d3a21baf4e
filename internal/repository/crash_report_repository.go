package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ontimely/admin-portal/internal/domain"
)

// CrashReportFilter narrows crash report listings.
type CrashReportFilter struct {
	Platform *string
	Resolved *bool
	Limit    int
	Offset   int
}

// CrashReportRepository stores desktop-app crash reports.
type CrashReportRepository interface {
	Create(ctx context.Context, report *domain.CrashReport) error
	GetByID(ctx context.Context, id string) (*domain.CrashReport, error)
	MarkResolved(ctx context.Context, report *domain.CrashReport) error
	List(ctx context.Context, filter CrashReportFilter) ([]domain.CrashReport, error)
}

const crashColumns = `id, app_version, platform, os_version, error_message, stack_trace, user_email,
               resolved, resolved_by, created_at, resolved_at`

type crashReportRepository struct {
	pool *pgxpool.Pool
}

// NewCrashReportRepository constructs repository.
func NewCrashReportRepository(pool *pgxpool.Pool) CrashReportRepository {
	return &crashReportRepository{pool: pool}
}

func (r *crashReportRepository) Create(ctx context.Context, report *domain.CrashReport) error {
	const query = `
        INSERT INTO crash_reports (app_version, platform, os_version, error_message, stack_trace, user_email)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		report.AppVersion,
		report.Platform,
		report.OSVersion,
		report.ErrorMessage,
		report.StackTrace,
		report.UserEmail,
	).Scan(&report.ID, &report.CreatedAt)
}

func (r *crashReportRepository) GetByID(ctx context.Context, id string) (*domain.CrashReport, error) {
	query := `SELECT ` + crashColumns + ` FROM crash_reports WHERE id=$1`
	return scanCrashReport(r.pool.QueryRow(ctx, query, id))
}

func (r *crashReportRepository) MarkResolved(ctx context.Context, report *domain.CrashReport) error {
	const query = `
        UPDATE crash_reports SET resolved=TRUE, resolved_by=$1, resolved_at=NOW()
        WHERE id=$2
        RETURNING resolved_at`
	if err := r.pool.QueryRow(ctx, query, report.ResolvedBy, report.ID).Scan(&report.ResolvedAt); err != nil {
		return err
	}
	report.Resolved = true
	return nil
}

func (r *crashReportRepository) List(ctx context.Context, filter CrashReportFilter) ([]domain.CrashReport, error) {
	query := `SELECT ` + crashColumns + ` FROM crash_reports`
	args := []any{}
	clauses := []string{}

	if filter.Platform != nil {
		args = append(args, *filter.Platform)
		clauses = append(clauses, fmt.Sprintf("platform=$%d", len(args)))
	}
	if filter.Resolved != nil {
		args = append(args, *filter.Resolved)
		clauses = append(clauses, fmt.Sprintf("resolved=$%d", len(args)))
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY created_at DESC" + limitOffset(filter.Limit, filter.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.CrashReport
	for rows.Next() {
		report, err := scanCrashReport(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *report)
	}
	return result, rows.Err()
}

func scanCrashReport(row pgx.Row) (*domain.CrashReport, error) {
	var report domain.CrashReport
	if err := row.Scan(
		&report.ID,
		&report.AppVersion,
		&report.Platform,
		&report.OSVersion,
		&report.ErrorMessage,
		&report.StackTrace,
		&report.UserEmail,
		&report.Resolved,
		&report.ResolvedBy,
		&report.CreatedAt,
		&report.ResolvedAt,
	); err != nil {
		return nil, err
	}
	return &report, nil
}
