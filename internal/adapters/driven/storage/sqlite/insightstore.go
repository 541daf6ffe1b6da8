package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/meridian-labs/docsight/internal/core/domain"
	"github.com/meridian-labs/docsight/internal/core/ports/driven"
)

// insightStore implements driven.InsightStore.
type insightStore struct {
	store *Store
}

var _ driven.InsightStore = (*insightStore)(nil)

// Insert stores a new insight record.
func (s *insightStore) Insert(ctx context.Context, rec *domain.InsightRecord) error {
	if rec == nil {
		return domain.ErrInvalidInput
	}
	if err := rec.Validate(); err != nil {
		return err
	}

	quotesJSON, err := json.Marshal(rec.Quotes)
	if err != nil {
		return fmt.Errorf("marshalling quotes: %w", err)
	}
	stakeholdersJSON, err := json.Marshal(rec.Stakeholders)
	if err != nil {
		return fmt.Errorf("marshalling stakeholders: %w", err)
	}
	dependenciesJSON, err := json.Marshal(rec.Dependencies)
	if err != nil {
		return fmt.Errorf("marshalling dependencies: %w", err)
	}
	urgencyJSON, err := json.Marshal(rec.UrgencyIndicators)
	if err != nil {
		return fmt.Errorf("marshalling urgency indicators: %w", err)
	}
	metadataJSON, err := json.Marshal(rec.Metadata)
	if err != nil {
		return fmt.Errorf("marshalling metadata: %w", err)
	}

	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	var financial any
	if rec.FinancialImpact != nil {
		financial = *rec.FinancialImpact
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO insights
			(id, object_id, project_id, category, title, description, severity,
			 confidence, financial_impact, assignee, due_date, document_date,
			 quotes, stakeholders, dependencies, urgency_indicators,
			 critical_path_impact, resolved, generated_by, created_at, metadata)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.ID, rec.ObjectID, nullString(rec.ProjectID), string(rec.Category),
		rec.Title, rec.Description, string(rec.Severity), rec.Confidence,
		financial, nullString(rec.Assignee), nullString(rec.DueDate),
		nullString(rec.DocumentDate), string(quotesJSON), string(stakeholdersJSON),
		string(dependenciesJSON), string(urgencyJSON),
		rec.CriticalPathImpact, rec.Resolved, nullString(rec.GeneratedBy),
		createdAt, string(metadataJSON))

	if err != nil {
		return fmt.Errorf("saving insight: %w", err)
	}
	return nil
}

// ListByObject returns all insights for a source document.
func (s *insightStore) ListByObject(ctx context.Context, objectID string) ([]domain.InsightRecord, error) {
	rows, err := s.store.db.QueryContext(ctx, insightSelect+`
		WHERE object_id = ?
		ORDER BY created_at, id
	`, objectID)
	if err != nil {
		return nil, fmt.Errorf("querying insights: %w", err)
	}
	defer rows.Close()

	return scanInsights(rows)
}

// ListByFilter returns insights matching the filter, newest document first.
func (s *insightStore) ListByFilter(ctx context.Context, filter driven.InsightFilter) ([]domain.InsightRecord, error) {
	query := insightSelect + " WHERE 1=1"
	var args []any

	if filter.Category != "" {
		query += " AND category = ?"
		args = append(args, string(filter.Category))
	}
	if filter.Severity != "" {
		query += " AND severity = ?"
		args = append(args, string(filter.Severity))
	}
	if filter.Resolved != nil {
		query += " AND resolved = ?"
		args = append(args, *filter.Resolved)
	}
	if !filter.From.IsZero() {
		query += " AND document_date >= ?"
		args = append(args, filter.From.Format("2006-01-02"))
	}
	if !filter.To.IsZero() {
		query += " AND document_date <= ?"
		args = append(args, filter.To.Format("2006-01-02"))
	}
	query += " ORDER BY document_date DESC, created_at DESC"

	rows, err := s.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying insights: %w", err)
	}
	defer rows.Close()

	return scanInsights(rows)
}

// Resolve marks an insight as resolved.
func (s *insightStore) Resolve(ctx context.Context, id string) error {
	return s.updateOne(ctx, "UPDATE insights SET resolved = 1 WHERE id = ?", id)
}

// Assign sets the assignee on an insight.
func (s *insightStore) Assign(ctx context.Context, id, assignee string) error {
	return s.updateOne(ctx, "UPDATE insights SET assignee = ? WHERE id = ?", assignee, id)
}

// DeleteByObject removes all insights for a source document.
func (s *insightStore) DeleteByObject(ctx context.Context, objectID string) error {
	_, err := s.store.db.ExecContext(ctx, "DELETE FROM insights WHERE object_id = ?", objectID)
	if err != nil {
		return fmt.Errorf("deleting insights: %w", err)
	}
	return nil
}

// updateOne runs an update that must affect exactly one row.
func (s *insightStore) updateOne(ctx context.Context, query string, args ...any) error {
	result, err := s.store.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("updating insight: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking update: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

const insightSelect = `
	SELECT id, object_id, project_id, category, title, description, severity,
	       confidence, financial_impact, assignee, due_date, document_date,
	       quotes, stakeholders, dependencies, urgency_indicators,
	       critical_path_impact, resolved, generated_by, created_at, metadata
	FROM insights
`

// scanInsights scans multiple insight rows.
func scanInsights(rows *sql.Rows) ([]domain.InsightRecord, error) {
	var insights []domain.InsightRecord //nolint:prealloc // size unknown from query
	for rows.Next() {
		var rec domain.InsightRecord
		var category, severity string
		var projectID, assignee, dueDate, documentDate, generatedBy sql.NullString
		var financial sql.NullFloat64
		var quotesJSON, stakeholdersJSON, dependenciesJSON, urgencyJSON, metadataJSON sql.NullString

		if err := rows.Scan(&rec.ID, &rec.ObjectID, &projectID, &category,
			&rec.Title, &rec.Description, &severity, &rec.Confidence,
			&financial, &assignee, &dueDate, &documentDate,
			&quotesJSON, &stakeholdersJSON, &dependenciesJSON, &urgencyJSON,
			&rec.CriticalPathImpact, &rec.Resolved, &generatedBy,
			&rec.CreatedAt, &metadataJSON); err != nil {
			return nil, fmt.Errorf("scanning insight: %w", err)
		}

		rec.Category = domain.InsightCategory(category)
		rec.Severity = domain.Severity(severity)
		rec.ProjectID = projectID.String
		rec.Assignee = assignee.String
		rec.DueDate = dueDate.String
		rec.DocumentDate = documentDate.String
		rec.GeneratedBy = generatedBy.String
		if financial.Valid {
			f := financial.Float64
			rec.FinancialImpact = &f
		}

		if err := unmarshalStrings(quotesJSON, &rec.Quotes); err != nil {
			return nil, fmt.Errorf("unmarshalling quotes: %w", err)
		}
		if err := unmarshalStrings(stakeholdersJSON, &rec.Stakeholders); err != nil {
			return nil, fmt.Errorf("unmarshalling stakeholders: %w", err)
		}
		if err := unmarshalStrings(dependenciesJSON, &rec.Dependencies); err != nil {
			return nil, fmt.Errorf("unmarshalling dependencies: %w", err)
		}
		if err := unmarshalStrings(urgencyJSON, &rec.UrgencyIndicators); err != nil {
			return nil, fmt.Errorf("unmarshalling urgency indicators: %w", err)
		}
		if metadataJSON.Valid && metadataJSON.String != "" && metadataJSON.String != jsonNull {
			if err := json.Unmarshal([]byte(metadataJSON.String), &rec.Metadata); err != nil {
				return nil, fmt.Errorf("unmarshalling metadata: %w", err)
			}
		}

		insights = append(insights, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating insights: %w", err)
	}

	return insights, nil
}

func unmarshalStrings(src sql.NullString, dst *[]string) error {
	if !src.Valid || src.String == "" || src.String == jsonNull {
		return nil
	}
	return json.Unmarshal([]byte(src.String), dst)
}

// nullString returns nil for empty strings so the column stores NULL.
func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
