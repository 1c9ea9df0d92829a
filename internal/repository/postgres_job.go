package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/bjarke-xyz/careercode/internal/domain"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

type postgresJobRepository struct {
	conn Connection
}

func NewPostgresJob(conn Connection) domain.JobRepository {
	return &postgresJobRepository{conn: conn}
}

type jobDto struct {
	ID          string    `db:"id"`
	HREmail     string    `db:"hr_email"`
	Company     string    `db:"company"`
	Title       string    `db:"title"`
	CompanyLogo string    `db:"company_logo"`
	Extra       []byte    `db:"extra"`
	CreatedAt   time.Time `db:"created_at"`
}

const jobColumns = "id, hr_email, company, title, company_logo, extra, created_at"

func mapDtoJob(dto jobDto) (domain.Job, error) {
	job := domain.Job{
		ID:          dto.ID,
		HREmail:     dto.HREmail,
		Company:     dto.Company,
		Title:       dto.Title,
		CompanyLogo: dto.CompanyLogo,
		CreatedAt:   dto.CreatedAt,
	}
	if err := decodeExtra(dto.Extra, &job.Extra); err != nil {
		return job, fmt.Errorf("failed to decode extra fields of job %v: %w", dto.ID, err)
	}
	return job, nil
}

// List implements domain.JobRepository.
func (p *postgresJobRepository) List(ctx context.Context, filter domain.JobFilter) ([]domain.Job, error) {
	dtos := make([]jobDto, 0)
	query := `SELECT ` + jobColumns + ` FROM jobs
		WHERE ($1 = '' OR hr_email = $1)
		ORDER BY seq`
	if err := pgxscan.Select(ctx, p.conn, &dtos, query, filter.HREmail); err != nil {
		return nil, err
	}
	jobs := make([]domain.Job, 0, len(dtos))
	for _, dto := range dtos {
		job, err := mapDtoJob(dto)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}

// GetByID implements domain.JobRepository.
func (p *postgresJobRepository) GetByID(ctx context.Context, id string) (domain.Job, error) {
	var dto jobDto
	err := pgxscan.Get(ctx, p.conn, &dto, `SELECT `+jobColumns+` FROM jobs WHERE id = $1`, id)
	if err != nil {
		if pgxscan.NotFound(err) {
			return domain.Job{}, domain.ErrNotFound
		}
		return domain.Job{}, err
	}
	return mapDtoJob(dto)
}

// Create implements domain.JobRepository.
func (p *postgresJobRepository) Create(ctx context.Context, job *domain.Job) error {
	extra, err := encodeExtra(job.Extra)
	if err != nil {
		return err
	}
	id := uuid.NewString()
	query := `
		INSERT INTO jobs (id, hr_email, company, title, company_logo, extra, created_at)
		VALUES ($1, $2, $3, $4, $5, $6::jsonb, NOW())
		RETURNING created_at`
	var createdAt time.Time
	err = p.conn.QueryRow(ctx, query, id, job.HREmail, job.Company, job.Title, job.CompanyLogo, extra).Scan(&createdAt)
	if err != nil {
		return mapInsertError(err)
	}
	job.ID = id
	job.CreatedAt = createdAt
	return nil
}

const uniqueViolation = "23505"

func mapInsertError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %v", domain.ErrConflict, pgErr.Detail)
	}
	return err
}

func encodeExtra(extra map[string]any) (string, error) {
	if len(extra) == 0 {
		return "{}", nil
	}
	b, err := json.Marshal(extra)
	if err != nil {
		return "", fmt.Errorf("failed to encode extra fields: %w", err)
	}
	return string(b), nil
}

func decodeExtra(raw []byte, extra *map[string]any) error {
	if len(raw) == 0 {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	return dec.Decode(extra)
}
