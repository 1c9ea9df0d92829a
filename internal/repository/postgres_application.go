package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bjarke-xyz/careercode/internal/domain"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type postgresApplicationRepository struct {
	conn Connection
}

func NewPostgresApplication(conn Connection) domain.ApplicationRepository {
	return &postgresApplicationRepository{conn: conn}
}

type applicationDto struct {
	ID             string    `db:"id"`
	JobID          string    `db:"job_id"`
	ApplicantUID   string    `db:"applicant_uid"`
	ApplicantEmail string    `db:"applicant_email"`
	Status         string    `db:"status"`
	Extra          []byte    `db:"extra"`
	CreatedAt      time.Time `db:"created_at"`
}

func mapDtoApplication(dto applicationDto) (domain.Application, error) {
	app := domain.Application{
		ID:             dto.ID,
		JobID:          dto.JobID,
		ApplicantUID:   dto.ApplicantUID,
		ApplicantEmail: dto.ApplicantEmail,
		Status:         dto.Status,
		CreatedAt:      dto.CreatedAt,
	}
	if err := decodeExtra(dto.Extra, &app.Extra); err != nil {
		return app, fmt.Errorf("failed to decode extra fields of application %v: %w", dto.ID, err)
	}
	return app, nil
}

// List implements domain.ApplicationRepository.
func (p *postgresApplicationRepository) List(ctx context.Context, filter domain.ApplicationFilter) ([]domain.Application, error) {
	dtos := make([]applicationDto, 0)
	query := `
		SELECT id, job_id, applicant_uid, applicant_email, status, extra, created_at
		FROM applications
		WHERE ($1 = '' OR job_id = $1)
		  AND ($2 = '' OR applicant_uid = $2)
		  AND ($3 = '' OR applicant_email = $3)
		ORDER BY seq`
	err := pgxscan.Select(ctx, p.conn, &dtos, query, filter.JobID, filter.ApplicantUID, filter.ApplicantEmail)
	if err != nil {
		return nil, err
	}
	apps := make([]domain.Application, 0, len(dtos))
	for _, dto := range dtos {
		app, err := mapDtoApplication(dto)
		if err != nil {
			return nil, err
		}
		apps = append(apps, app)
	}
	return apps, nil
}

// Create implements domain.ApplicationRepository.
func (p *postgresApplicationRepository) Create(ctx context.Context, app *domain.Application) error {
	extra, err := encodeExtra(app.Extra)
	if err != nil {
		return err
	}
	id := uuid.NewString()
	query := `
		INSERT INTO applications (id, job_id, applicant_uid, applicant_email, status, extra, created_at)
		VALUES ($1, $2, $3, $4, $5, $6::jsonb, NOW())
		RETURNING created_at`
	var createdAt time.Time
	err = p.conn.QueryRow(ctx, query, id, app.JobID, app.ApplicantUID, app.ApplicantEmail, app.Status, extra).Scan(&createdAt)
	if err != nil {
		return mapInsertError(err)
	}
	app.ID = id
	app.CreatedAt = createdAt
	return nil
}

// UpdateStatus implements domain.ApplicationRepository.
func (p *postgresApplicationRepository) UpdateStatus(ctx context.Context, id string, status string) (bool, error) {
	// The CTE reads the row before the update, so previous is the old status.
	query := `
		WITH target AS (SELECT id, status FROM applications WHERE id = $2 FOR UPDATE)
		UPDATE applications a SET status = $1
		FROM target t WHERE a.id = t.id
		RETURNING t.status`
	var previous string
	err := p.conn.QueryRow(ctx, query, status, id).Scan(&previous)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, domain.ErrNotFound
	}
	if err != nil {
		return false, err
	}
	return previous != status, nil
}

// CountByJobID implements domain.ApplicationRepository.
func (p *postgresApplicationRepository) CountByJobID(ctx context.Context, jobID string) (int, error) {
	var count int64
	err := p.conn.QueryRow(ctx, "SELECT count(*) FROM applications WHERE job_id = $1", jobID).Scan(&count)
	if err != nil {
		return 0, err
	}
	return int(count), nil
}
