// internal/store/postgres.go
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"review-pipeline/internal/common/errors"
	"review-pipeline/internal/common/logger"
	"review-pipeline/internal/models"

	"github.com/google/uuid"
)

// PostgresStore implements RecordStore on a *sql.DB (lib/pq driver).
type PostgresStore struct {
	db     *sql.DB
	logger logger.Logger
}

func NewPostgresStore(db *sql.DB, log logger.Logger) *PostgresStore {
	return &PostgresStore{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"component": "record-store"}),
	}
}

const applicationColumns = `
	id, submitter_id, title, description, problem_statement, solution,
	tech_stack, team_size, team_members, estimated_cost, category,
	status, rejection_reason, is_active, created_at, updated_at`

func (s *PostgresStore) GetApplication(ctx context.Context, id string) (*models.Application, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+applicationColumns+`
		FROM applications WHERE id = $1`, id)

	app, err := scanApplication(row)
	if err == sql.ErrNoRows {
		return nil, errors.NewApplicationNotFoundError(id)
	}
	if err != nil {
		return nil, errors.NewDatabaseQueryFailedError(err)
	}
	return app, nil
}

func (s *PostgresStore) CreateApplication(ctx context.Context, app *models.Application) (string, error) {
	if app.ID == "" {
		app.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	app.CreatedAt = now
	app.UpdatedAt = now

	techStackJSON, err := json.Marshal(app.TechStack)
	if err != nil {
		return "", errors.NewDatabaseQueryFailedError(err)
	}
	teamMembersJSON, err := json.Marshal(app.TeamMembers)
	if err != nil {
		return "", errors.NewDatabaseQueryFailedError(err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO applications (
			id, submitter_id, title, description, problem_statement, solution,
			tech_stack, team_size, team_members, estimated_cost, category,
			status, rejection_reason, is_active, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $15)`,
		app.ID,
		app.SubmitterID,
		app.Title,
		app.Description,
		app.ProblemStatement,
		app.Solution,
		techStackJSON,
		app.TeamSize,
		teamMembersJSON,
		app.EstimatedCost,
		app.Category,
		string(app.Status),
		app.RejectionReason,
		app.IsActive,
		now,
	)
	if err != nil {
		return "", errors.NewDatabaseQueryFailedError(err)
	}
	return app.ID, nil
}

func (s *PostgresStore) UpdateApplication(ctx context.Context, id string, update ApplicationUpdate) error {
	set := "updated_at = $1"
	args := []interface{}{time.Now().UTC()}
	idx := 2

	if update.Status != nil {
		set += fmt.Sprintf(", status = $%d", idx)
		args = append(args, string(*update.Status))
		idx++
	}
	if update.Category != nil {
		set += fmt.Sprintf(", category = $%d", idx)
		args = append(args, *update.Category)
		idx++
	}
	if update.RejectionReason != nil {
		set += fmt.Sprintf(", rejection_reason = $%d", idx)
		args = append(args, *update.RejectionReason)
		idx++
	}

	args = append(args, id)
	res, err := s.db.ExecContext(ctx,
		fmt.Sprintf("UPDATE applications SET %s WHERE id = $%d", set, idx), args...)
	if err != nil {
		return errors.NewDatabaseQueryFailedError(err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return errors.NewApplicationNotFoundError(id)
	}
	return nil
}

func (s *PostgresStore) ListActiveApplications(ctx context.Context, excludeID string) ([]*models.Application, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+applicationColumns+`
		FROM applications
		WHERE is_active = TRUE AND id <> $1
		ORDER BY created_at`, excludeID)
	if err != nil {
		return nil, errors.NewDatabaseQueryFailedError(err)
	}
	defer rows.Close()

	var apps []*models.Application
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, errors.NewDatabaseQueryFailedError(err)
		}
		apps = append(apps, app)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewDatabaseQueryFailedError(err)
	}
	return apps, nil
}

func (s *PostgresStore) CreateReview(ctx context.Context, applicationID string, stage models.StageType) (string, error) {
	reviewID := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO reviews (id, application_id, stage_type, result, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		reviewID,
		applicationID,
		string(stage),
		string(models.ResultPending),
		now,
	)
	if err != nil {
		return "", errors.NewDatabaseQueryFailedError(err)
	}
	return reviewID, nil
}

func (s *PostgresStore) UpdateReview(ctx context.Context, reviewID string, update ReviewUpdate) error {
	metadataJSON := []byte("{}")
	if update.Metadata != nil {
		data, err := json.Marshal(update.Metadata)
		if err != nil {
			s.logger.Warn("failed to marshal review metadata", map[string]interface{}{
				"reviewId": reviewID,
				"error":    err,
			})
		} else {
			metadataJSON = data
		}
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE reviews
		SET result = $1, score = $2, feedback = $3, metadata = $4,
		    error_message = $5, processed_at = $6
		WHERE id = $7`,
		string(update.Result),
		update.Score,
		update.Feedback,
		metadataJSON,
		update.ErrorMessage,
		update.ProcessedAt,
		reviewID,
	)
	if err != nil {
		return errors.NewDatabaseQueryFailedError(err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return errors.NewReviewNotFoundError(reviewID, "")
	}
	return nil
}

func (s *PostgresStore) DeleteReviews(ctx context.Context, applicationID string, stage models.StageType) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM reviews WHERE application_id = $1 AND stage_type = $2`,
		applicationID, string(stage))
	if err != nil {
		return errors.NewDatabaseQueryFailedError(err)
	}
	return nil
}

func (s *PostgresStore) ListReviews(ctx context.Context, applicationID string) ([]*models.ReviewRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, application_id, stage_type, result, score, feedback,
		       metadata, error_message, processed_at, created_at
		FROM reviews
		WHERE application_id = $1
		ORDER BY created_at`, applicationID)
	if err != nil {
		return nil, errors.NewDatabaseQueryFailedError(err)
	}
	defer rows.Close()

	var records []*models.ReviewRecord
	for rows.Next() {
		var rec models.ReviewRecord
		var score sql.NullFloat64
		var feedback, errorMessage sql.NullString
		var metadataJSON []byte
		var processedAt sql.NullTime

		err := rows.Scan(
			&rec.ID,
			&rec.ApplicationID,
			&rec.StageType,
			&rec.Result,
			&score,
			&feedback,
			&metadataJSON,
			&errorMessage,
			&processedAt,
			&rec.CreatedAt,
		)
		if err != nil {
			return nil, errors.NewDatabaseQueryFailedError(err)
		}

		if score.Valid {
			v := score.Float64
			rec.Score = &v
		}
		rec.Feedback = feedback.String
		rec.ErrorMessage = errorMessage.String
		if processedAt.Valid {
			t := processedAt.Time
			rec.ProcessedAt = &t
		}
		if len(metadataJSON) > 0 {
			if err := json.Unmarshal(metadataJSON, &rec.Metadata); err != nil {
				rec.Metadata = nil
			}
		}

		records = append(records, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewDatabaseQueryFailedError(err)
	}
	return records, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanApplication(row rowScanner) (*models.Application, error) {
	var app models.Application
	var techStackJSON, teamMembersJSON []byte
	var estimatedCost sql.NullFloat64
	var category, rejectionReason sql.NullString

	err := row.Scan(
		&app.ID,
		&app.SubmitterID,
		&app.Title,
		&app.Description,
		&app.ProblemStatement,
		&app.Solution,
		&techStackJSON,
		&app.TeamSize,
		&teamMembersJSON,
		&estimatedCost,
		&category,
		&app.Status,
		&rejectionReason,
		&app.IsActive,
		&app.CreatedAt,
		&app.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if estimatedCost.Valid {
		v := estimatedCost.Float64
		app.EstimatedCost = &v
	}
	app.Category = category.String
	app.RejectionReason = rejectionReason.String

	if err := json.Unmarshal(techStackJSON, &app.TechStack); err != nil {
		app.TechStack = []string{}
	}
	if err := json.Unmarshal(teamMembersJSON, &app.TeamMembers); err != nil {
		app.TeamMembers = []string{}
	}

	return &app, nil
}
