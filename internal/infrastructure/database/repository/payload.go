package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"appscore-lab/internal/domain/models"
	"appscore-lab/internal/infrastructure/database"
)

// PayloadRepository stores raw per-tool scan payloads keyed by content hash
type PayloadRepository struct {
	db database.DBTX
}

// NewPayloadRepository creates a new payload repository
func NewPayloadRepository(db database.DBTX) *PayloadRepository {
	return &PayloadRepository{db: db}
}

// PutPayload inserts or replaces one tool's payload for a content hash
func (r *PayloadRepository) PutPayload(ctx context.Context, contentHash string, tool models.Tool, payload map[string]any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	query := `
		INSERT INTO scan_payloads (content_hash, tool, payload, request_id, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (content_hash, tool) DO UPDATE SET
			payload = EXCLUDED.payload,
			request_id = EXCLUDED.request_id,
			updated_at = now()`

	if _, err := r.db.Exec(ctx, query, contentHash, string(tool), data, uuidToNullUUID(uuid.New())); err != nil {
		return fmt.Errorf("failed to store payload: %w", err)
	}
	return nil
}

// GetPayloads returns every stored payload for a content hash. Rows for
// tools no longer supported are skipped.
func (r *PayloadRepository) GetPayloads(ctx context.Context, contentHash string) (map[models.Tool]map[string]any, error) {
	query := `
		SELECT tool, payload
		FROM scan_payloads
		WHERE content_hash = $1
		ORDER BY tool`

	rows, err := r.db.Query(ctx, query, contentHash)
	if err != nil {
		return nil, fmt.Errorf("failed to query payloads: %w", err)
	}
	defer rows.Close()

	payloads := make(map[models.Tool]map[string]any)
	for rows.Next() {
		var (
			toolName string
			data     []byte
		)
		if err := rows.Scan(&toolName, &data); err != nil {
			return nil, fmt.Errorf("failed to scan payload: %w", err)
		}

		tool, ok := models.ParseTool(toolName)
		if !ok {
			continue
		}

		var payload map[string]any
		if err := json.Unmarshal(data, &payload); err != nil {
			return nil, fmt.Errorf("failed to decode %s payload: %w", toolName, err)
		}
		payloads[tool] = payload
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate payloads: %w", err)
	}

	return payloads, nil
}

// DeletePayloads removes all payloads for a content hash and returns how many were removed
func (r *PayloadRepository) DeletePayloads(ctx context.Context, contentHash string) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM scan_payloads WHERE content_hash = $1`, contentHash)
	if err != nil {
		return 0, fmt.Errorf("failed to delete payloads: %w", err)
	}
	return tag.RowsAffected(), nil
}
