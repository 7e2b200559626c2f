package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"
)

// PathologyReport is one signed pathology report row. Marker fields are
// pointers because upstream rows leave them NULL when a test was not run.
type PathologyReport struct {
	PatientID        string
	Diagnosis        string
	HistologicalType string
	Grade            string
	ERStatus         *string
	PRStatus         *string
	HER2Status       *string
	Ki67Percentage   *float64
	NodesPositive    *int
	NodesExamined    *int
	Margins          *string
	FullReportText   *string
}

// PathologyRepository reads the upstream pathology reports database.
type PathologyRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewPathologyRepository creates a pathology repository.
func NewPathologyRepository(db *sql.DB, logger *zap.Logger) *PathologyRepository {
	return &PathologyRepository{
		db:     db,
		logger: logger,
	}
}

// GetLatestReport returns the patient's most recent pathology report by
// signed_date, or nil when the patient has no report on file.
func (r *PathologyRepository) GetLatestReport(ctx context.Context, patientID string) (*PathologyReport, error) {
	query := `
		SELECT patient_id, diagnosis, histological_type, grade,
		       er_status, pr_status, her2_status,
		       ki67_percentage, nodes_positive, nodes_examined,
		       margins, full_report_text
		FROM pathology_reports
		WHERE patient_id = $1
		ORDER BY signed_date DESC
		LIMIT 1
	`

	var report PathologyReport
	var er, pr, her2, margins, fullText sql.NullString
	var ki67 sql.NullFloat64
	var nodesPos, nodesExam sql.NullInt64

	err := r.db.QueryRowContext(ctx, query, patientID).Scan(
		&report.PatientID,
		&report.Diagnosis,
		&report.HistologicalType,
		&report.Grade,
		&er,
		&pr,
		&her2,
		&ki67,
		&nodesPos,
		&nodesExam,
		&margins,
		&fullText,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Patient has no pathology report on file
		}
		return nil, fmt.Errorf("failed to query pathology report: %w", err)
	}

	if er.Valid {
		report.ERStatus = &er.String
	}
	if pr.Valid {
		report.PRStatus = &pr.String
	}
	if her2.Valid {
		report.HER2Status = &her2.String
	}
	if ki67.Valid {
		val := ki67.Float64
		report.Ki67Percentage = &val
	}
	if nodesPos.Valid {
		val := int(nodesPos.Int64)
		report.NodesPositive = &val
	}
	if nodesExam.Valid {
		val := int(nodesExam.Int64)
		report.NodesExamined = &val
	}
	if margins.Valid {
		report.Margins = &margins.String
	}
	if fullText.Valid {
		report.FullReportText = &fullText.String
	}

	return &report, nil
}
