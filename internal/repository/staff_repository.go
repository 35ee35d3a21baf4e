package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ontimely/admin-portal/internal/domain"
	"github.com/ontimely/admin-portal/internal/session"
)

// StaffRepository handles persistence for staff members. It doubles as the
// credential directory consulted by AuthSession.
type StaffRepository interface {
	session.CredentialDirectory
	Create(ctx context.Context, staff *domain.StaffMember) error
	Update(ctx context.Context, staff *domain.StaffMember) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	GetByID(ctx context.Context, id string) (*domain.StaffMember, error)
	GetByEmail(ctx context.Context, email string) (*domain.StaffMember, error)
	List(ctx context.Context, filter StaffFilter) ([]domain.StaffMember, error)
}

// StaffFilter defines query params for staff listing.
type StaffFilter struct {
	Role   *domain.Role
	Active *bool
	Search *string
	Limit  int
	Offset int
}

const staffColumns = `id, email, name, password_hash, role, is_active, last_login, created_at, updated_at`

type staffRepository struct {
	pool *pgxpool.Pool
}

// NewStaffRepository instantiates the repository.
func NewStaffRepository(pool *pgxpool.Pool) StaffRepository {
	return &staffRepository{pool: pool}
}

func (r *staffRepository) Create(ctx context.Context, staff *domain.StaffMember) error {
	const query = `
        INSERT INTO staff_members (email, name, password_hash, role, is_active)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		staff.Email,
		staff.Name,
		staff.PasswordHash,
		staff.Role,
		staff.IsActive,
	).Scan(&staff.ID, &staff.CreatedAt, &staff.UpdatedAt)
}

func (r *staffRepository) Update(ctx context.Context, staff *domain.StaffMember) error {
	const query = `
        UPDATE staff_members
        SET email=$1, name=$2, role=$3, is_active=$4, updated_at=NOW()
        WHERE id=$5
        RETURNING updated_at`

	return r.pool.QueryRow(ctx, query,
		staff.Email,
		staff.Name,
		staff.Role,
		staff.IsActive,
		staff.ID,
	).Scan(&staff.UpdatedAt)
}

func (r *staffRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	const query = `UPDATE staff_members SET password_hash=$1, updated_at=NOW() WHERE id=$2`

	cmd, err := r.pool.Exec(ctx, query, passwordHash, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *staffRepository) GetByID(ctx context.Context, id string) (*domain.StaffMember, error) {
	query := `SELECT ` + staffColumns + ` FROM staff_members WHERE id=$1`
	return scanStaff(r.pool.QueryRow(ctx, query, id))
}

func (r *staffRepository) GetByEmail(ctx context.Context, email string) (*domain.StaffMember, error) {
	query := `SELECT ` + staffColumns + ` FROM staff_members WHERE email=$1`
	return scanStaff(r.pool.QueryRow(ctx, query, email))
}

// FindActiveByEmail filters on is_active in SQL; inactive members are never returned.
func (r *staffRepository) FindActiveByEmail(ctx context.Context, email string) (*domain.StaffMember, error) {
	query := `SELECT ` + staffColumns + ` FROM staff_members WHERE email=$1 AND is_active=TRUE`
	staff, err := scanStaff(r.pool.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, session.ErrNotFound
		}
		return nil, err
	}
	return staff, nil
}

func (r *staffRepository) TouchLastLogin(ctx context.Context, id string, at time.Time) error {
	const query = `UPDATE staff_members SET last_login=$1 WHERE id=$2`
	_, err := r.pool.Exec(ctx, query, at, id)
	return err
}

func (r *staffRepository) List(ctx context.Context, filter StaffFilter) ([]domain.StaffMember, error) {
	query := `SELECT ` + staffColumns + ` FROM staff_members`
	args := []any{}
	clauses := []string{}

	if filter.Role != nil {
		args = append(args, *filter.Role)
		clauses = append(clauses, fmt.Sprintf("role=$%d", len(args)))
	}
	if filter.Active != nil {
		args = append(args, *filter.Active)
		clauses = append(clauses, fmt.Sprintf("is_active=$%d", len(args)))
	}
	if filter.Search != nil && *filter.Search != "" {
		args = append(args, "%"+*filter.Search+"%")
		clauses = append(clauses, fmt.Sprintf("(name ILIKE $%d OR email ILIKE $%d)", len(args), len(args)))
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}

	query += " ORDER BY created_at DESC"
	query += limitOffset(filter.Limit, filter.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.StaffMember
	for rows.Next() {
		staff, err := scanStaff(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *staff)
	}
	return result, rows.Err()
}

func scanStaff(row pgx.Row) (*domain.StaffMember, error) {
	var staff domain.StaffMember
	if err := row.Scan(
		&staff.ID,
		&staff.Email,
		&staff.Name,
		&staff.PasswordHash,
		&staff.Role,
		&staff.IsActive,
		&staff.LastLogin,
		&staff.CreatedAt,
		&staff.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &staff, nil
}

func limitOffset(limit, offset int) string {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return fmt.Sprintf(" LIMIT %d OFFSET %d", limit, offset)
}
