package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/vsinha/cmrp/pkg/application/dto"
	"github.com/vsinha/cmrp/pkg/domain/entities"
	"github.com/vsinha/cmrp/pkg/domain/repositories"
	"github.com/vsinha/cmrp/pkg/domain/services"
	"github.com/vsinha/cmrp/pkg/infrastructure/events"
	"github.com/vsinha/cmrp/pkg/infrastructure/repositories/csv"
)

// ImportSource identifies where imported rows came from
type ImportSource int

const (
	// SourceCSV rows are numbered from 2 to match spreadsheet lines
	SourceCSV ImportSource = iota
	// SourceBulk rows are numbered from 1
	SourceBulk
)

func (s ImportSource) String() string {
	if s == SourceBulk {
		return "JSON Bulk"
	}
	return "CSV"
}

func (s ImportSource) firstRow() int {
	if s == SourceBulk {
		return 1
	}
	return 2
}

type rowOutcome int

const (
	rowInserted rowOutcome = iota
	rowUpdated
	rowSkipped
)

// ImportCSV decodes an uploaded CSV file and upserts its rows
func (s *ProjectService) ImportCSV(ctx context.Context, r io.Reader) (*dto.ImportResult, error) {
	content, err := csv.DecodeUpload(r)
	if err != nil {
		return nil, invalid("Could not decode CSV file. Please ensure it's UTF-8 or compatible.")
	}
	records, err := csv.ReadRecords(strings.NewReader(content))
	if errors.Is(err, csv.ErrNoHeader) {
		return nil, invalid("CSV file appears to be empty or has no header row.")
	}
	if err != nil {
		return nil, invalid("Error parsing CSV file: %v", err)
	}

	rows := make([]any, len(records))
	for i, rec := range records {
		rows[i] = map[string]any(rec)
	}
	return s.ImportRows(ctx, rows, SourceCSV)
}

// ImportRows upserts projects keyed on project number inside a single
// transaction. Rows that cannot be written are skipped and reported.
func (s *ProjectService) ImportRows(ctx context.Context, rows []any, source ImportSource) (*dto.ImportResult, error) {
	normalizer := services.NewProjectRowNormalizer()
	result := &dto.ImportResult{}
	var messages []string

	err := s.deps.Repos.Tx.WithinTx(ctx, func(ctx context.Context) error {
		index, err := s.deps.Repos.Projects.ProjectNoIndex(ctx)
		if err != nil {
			return fmt.Errorf("failed to load project numbers: %w", err)
		}

		for i, raw := range rows {
			rowNum := source.firstRow() + i
			outcome, msg, err := s.importRow(ctx, normalizer, raw, rowNum, index)
			if err != nil {
				return err
			}
			switch outcome {
			case rowInserted:
				result.InsertedCount++
			case rowUpdated:
				result.UpdatedCount++
			default:
				result.SkippedCount++
			}
			if msg != "" {
				messages = append(messages, msg)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result.Message = fmt.Sprintf("%s process finished. Inserted: %d, Updated: %d, Skipped/Warnings: %d.",
		source, result.InsertedCount, result.UpdatedCount, result.SkippedCount)
	result.Errors = capMessages(messages, s.maxImportErrors(source))

	s.deps.logger().Info("projects imported",
		zap.Stringer("source", source),
		zap.Int("inserted", result.InsertedCount),
		zap.Int("updated", result.UpdatedCount),
		zap.Int("skipped", result.SkippedCount))
	s.deps.publish(events.ProjectsImportedEvent, "projects", events.ProjectsImported{
		Source:   source.String(),
		Inserted: result.InsertedCount,
		Updated:  result.UpdatedCount,
		Skipped:  result.SkippedCount,
	})
	return result, nil
}

func (s *ProjectService) importRow(
	ctx context.Context,
	normalizer *services.ProjectRowNormalizer,
	raw any,
	rowNum int,
	index map[string]entities.ProjectID,
) (rowOutcome, string, error) {
	fields, ok := raw.(map[string]any)
	if !ok {
		return rowSkipped, fmt.Sprintf("Row %d: Invalid format (expected dictionary).", rowNum), nil
	}

	row, err := normalizer.Normalize(fields, rowNum)
	var skipped *services.RowSkipped
	if errors.As(err, &skipped) {
		return rowSkipped, skipped.Message, nil
	}
	if err != nil {
		return rowSkipped, "", fmt.Errorf("row %d: %w", rowNum, err)
	}

	p := row.Project
	if id, exists := index[p.ProjectNo]; exists && p.ProjectNo != "" {
		p.ID = id
		if err := s.deps.Repos.Projects.Update(ctx, p); err != nil {
			return rowSkipped, "", fmt.Errorf("row %d: failed to update project: %w", rowNum, err)
		}
		return rowUpdated, row.Warning, nil
	}

	if err := s.deps.Repos.Projects.Create(ctx, p); err != nil {
		if !errors.Is(err, repositories.ErrConflict) {
			return rowSkipped, "", fmt.Errorf("row %d: failed to insert project: %w", rowNum, err)
		}
		msg := fmt.Sprintf("Row %d ('%s'): Skipped. Project Number '%s' already exists.", rowNum, p.Name, p.ProjectNo)
		if row.Warning != "" {
			msg += fmt.Sprintf(" (Additional Warning: %s)", row.Warning)
		}
		return rowSkipped, msg, nil
	}
	if p.ProjectNo != "" {
		index[p.ProjectNo] = p.ID
	}
	return rowInserted, row.Warning, nil
}

func (s *ProjectService) maxImportErrors(source ImportSource) int {
	limit := s.deps.Limits.MaxUploadErrors
	if source == SourceBulk {
		limit = s.deps.Limits.MaxBulkErrors
	}
	return limit
}

// capMessages keeps the first limit messages and notes how many were dropped
func capMessages(messages []string, limit int) []string {
	if limit <= 0 || len(messages) <= limit {
		if messages == nil {
			return []string{}
		}
		return messages
	}
	capped := append([]string(nil), messages[:limit]...)
	return append(capped, fmt.Sprintf("...and %d more errors/warnings.", len(messages)-limit))
}
