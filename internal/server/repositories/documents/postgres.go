// Package documents provides the PostgreSQL repository of collection
// documents. Payloads are stored as jsonb.
package documents

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/mandaditos/internal/common"
	"github.com/dmitrijs2005/mandaditos/internal/dbx"
	"github.com/dmitrijs2005/mandaditos/internal/server/models"
	"github.com/google/uuid"
)

// PostgresRepository implements Repository over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Upsert(ctx context.Context, d *models.Document) (string, error) {
	payload, err := encode(d.Payload)
	if err != nil {
		return "", err
	}
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if d.OriginID == "" {
		d.OriginID = d.ID
	}

	query := `
		INSERT INTO documents (id, collection, origin_id, payload)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (collection, origin_id)
		DO UPDATE SET
			payload = EXCLUDED.payload,
			updated_at = now()
		RETURNING id
	`
	var id string
	if err := r.db.QueryRowContext(ctx, query, d.ID, d.Collection, d.OriginID, payload).Scan(&id); err != nil {
		return "", fmt.Errorf("db error: %w", err)
	}
	d.ID = id
	return id, nil
}

func (r *PostgresRepository) Merge(ctx context.Context, collection, id string, payload map[string]any) error {
	p, err := encode(payload)
	if err != nil {
		return err
	}

	query := `
		UPDATE documents
		SET payload = payload || $3::jsonb, updated_at = now()
		WHERE collection = $1 AND id = $2
	`
	res, err := r.db.ExecContext(ctx, query, collection, id, p)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return oneRow(res.RowsAffected())
}

func (r *PostgresRepository) List(ctx context.Context, collection, field, value string) ([]*models.Document, error) {
	query := `SELECT id, origin_id, payload, created_at, updated_at FROM documents WHERE collection = $1`
	args := []any{collection}
	if field != "" {
		query += ` AND payload->>$2 = $3`
		args = append(args, field, value)
	}
	query += ` ORDER BY created_at, id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select documents: %w", err)
	}
	defer rows.Close()

	var result []*models.Document
	for rows.Next() {
		item := models.Document{Collection: collection}
		var raw []byte
		if err := rows.Scan(&item.ID, &item.OriginID, &raw, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, err
		}
		if item.Payload, err = decode(raw); err != nil {
			return nil, fmt.Errorf("document %s: %w", item.ID, err)
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, collection, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM documents WHERE collection = $1 AND id = $2`, collection, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return oneRow(res.RowsAffected())
}

func oneRow(n int64, err error) error {
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	switch n {
	case 1:
		return nil
	case 0:
		return common.ErrorNotFound
	default:
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
}

func encode(p map[string]any) ([]byte, error) {
	if p == nil {
		return []byte("{}"), nil
	}
	b, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	return b, nil
}

func decode(raw []byte) (map[string]any, error) {
	out := map[string]any{}
	if len(raw) == 0 {
		return out, nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}
