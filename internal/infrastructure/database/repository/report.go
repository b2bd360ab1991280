package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"appscore-lab/internal/domain/models"
	"appscore-lab/internal/infrastructure/database"
)

const defaultHistoryLimit = 50

// ReportRepository keeps the per-package report history
type ReportRepository struct {
	db database.DBTX
}

// NewReportRepository creates a new report repository
func NewReportRepository(db database.DBTX) *ReportRepository {
	return &ReportRepository{db: db}
}

// SaveReport records a built report. Rebuilding the same content hash updates
// the existing entry.
func (r *ReportRepository) SaveReport(ctx context.Context, rec models.ReportRecord) error {
	summary, err := json.Marshal(rec.Summary)
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}

	query := `
		INSERT INTO reports (
			id, content_hash, package, name, version,
			security_score, score_mode, summary, finding_count, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (content_hash) DO UPDATE SET
			package = EXCLUDED.package,
			name = EXCLUDED.name,
			version = EXCLUDED.version,
			security_score = EXCLUDED.security_score,
			score_mode = EXCLUDED.score_mode,
			summary = EXCLUDED.summary,
			finding_count = EXCLUDED.finding_count`

	_, err = r.db.Exec(ctx, query,
		uuid.New(), rec.ContentHash, rec.AppInfo.Package,
		textOrNull(rec.AppInfo.Name), textOrNull(rec.AppInfo.Version),
		rec.SecurityScore, string(rec.ScoreMode), summary, rec.FindingCount,
		timeToTimestamptz(rec.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}
	return nil
}

// ListReports returns a package's reports, newest first
func (r *ReportRepository) ListReports(ctx context.Context, pkg string, limit int) ([]models.ReportRecord, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	query := `
		SELECT content_hash, package, name, version,
			   security_score, score_mode, summary, finding_count, created_at
		FROM reports
		WHERE package = $1
		ORDER BY created_at DESC
		LIMIT $2`

	rows, err := r.db.Query(ctx, query, pkg, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query reports: %w", err)
	}
	defer rows.Close()

	records := make([]models.ReportRecord, 0)
	for rows.Next() {
		rec, err := scanReportRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate reports: %w", err)
	}

	return records, nil
}

// DeleteReport removes the history entry for a content hash
func (r *ReportRepository) DeleteReport(ctx context.Context, contentHash string) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM reports WHERE content_hash = $1`, contentHash)
	if err != nil {
		return false, fmt.Errorf("failed to delete report: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func scanReportRecord(row pgx.Row) (models.ReportRecord, error) {
	var (
		rec       models.ReportRecord
		name      pgtype.Text
		version   pgtype.Text
		scoreMode string
		summary   []byte
		createdAt pgtype.Timestamptz
	)

	err := row.Scan(
		&rec.ContentHash, &rec.AppInfo.Package, &name, &version,
		&rec.SecurityScore, &scoreMode, &summary, &rec.FindingCount, &createdAt,
	)
	if err != nil {
		return models.ReportRecord{}, fmt.Errorf("failed to scan report: %w", err)
	}

	rec.AppInfo.Name = nullTextToString(name)
	rec.AppInfo.Version = nullTextToString(version)
	rec.AppInfo.ContentHash = rec.ContentHash
	rec.ScoreMode = models.ScoreMode(scoreMode)
	rec.CreatedAt = timestamptzToTime(createdAt)

	if err := json.Unmarshal(summary, &rec.Summary); err != nil {
		return models.ReportRecord{}, fmt.Errorf("failed to decode summary: %w", err)
	}

	return rec, nil
}
