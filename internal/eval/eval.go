// Package eval compares a generated readiness dashboard against a labeled
// expectations file and produces a metrics artifact. It is the behavioural
// regression harness for the status and blocker rules.
package eval

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"mdt-readiness-aggregator/internal/models"
)

// ExpectedPatient is one labeled case: the status the dashboard should show
// and the blocker categories it should attribute.
type ExpectedPatient struct {
	PatientID        string   `json:"patient_id"`
	ExpectedStatus   string   `json:"expected_status"`
	ExpectedBlockers []string `json:"expected_blockers,omitempty"`
}

// Expectations is the labeled test set.
type Expectations struct {
	MeetingDate string            `json:"meeting_date,omitempty"`
	Patients    []ExpectedPatient `json:"patients"`
}

// StatusMismatch records one wrongly classified patient.
type StatusMismatch struct {
	PatientID       string `json:"patient_id"`
	ExpectedStatus  string `json:"expected_status"`
	PredictedStatus string `json:"predicted_status"`
}

// PatientResult is the per-patient breakdown kept in the metrics artifact.
type PatientResult struct {
	ExpectedStatus    string   `json:"expected_status"`
	PredictedStatus   string   `json:"predicted_status"`
	StatusMatch       bool     `json:"status_match"`
	ExpectedBlockers  []string `json:"expected_blockers"`
	PredictedBlockers []string `json:"predicted_blockers"`
	ElapsedMS         int64    `json:"elapsed_ms,omitempty"`
}

// LatencyStats summarizes per-patient gather latency when the dashboard
// carries elapsed_ms values.
type LatencyStats struct {
	MinMS  int64   `json:"min_ms"`
	MeanMS float64 `json:"mean_ms"`
	MaxMS  int64   `json:"max_ms"`
}

// Metrics is the evaluation output artifact.
type Metrics struct {
	RunID                 string                   `json:"run_id"`
	EvaluatedAt           time.Time                `json:"evaluated_at"`
	TotalCases            int                      `json:"total_cases"`
	StatusMatches         int                      `json:"status_matches"`
	StatusAccuracy        float64                  `json:"status_accuracy"`
	BlockerHits           int                      `json:"blocker_hits"`
	BlockerMisses         int                      `json:"blocker_misses"`
	BlockerFalsePositives int                      `json:"blocker_false_positives"`
	StatusMismatches      []StatusMismatch         `json:"status_mismatches"`
	PerPatient            map[string]PatientResult `json:"per_patient"`
	Latency               *LatencyStats            `json:"latency,omitempty"`
}

// NormalizeStatus folds arbitrary status strings into the four coarse
// categories. Substring-tolerant so labels like "Blocked - unsigned report"
// still classify; an empty status reads as ERROR.
func NormalizeStatus(status string) string {
	s := strings.ToUpper(strings.TrimSpace(status))
	if s == "" {
		return "ERROR"
	}
	switch {
	case strings.Contains(s, "READY"):
		return "READY"
	case strings.Contains(s, "BLOCK"):
		return "BLOCKED"
	case strings.Contains(s, "PROGRESS"):
		return "IN_PROGRESS"
	case strings.Contains(s, "ERROR"):
		return "ERROR"
	}
	return s
}

// Evaluate scores a dashboard against the labeled set. Pure function; the
// caller decides where the inputs come from and where the metrics go.
// A labeled patient the dashboard never produced counts as predicted ERROR
// with no blockers.
func Evaluate(dashboard models.RosterDashboard, expectations Expectations) Metrics {
	detailByPatient := make(map[string]models.PatientDetail, len(dashboard.PatientDetails))
	for _, d := range dashboard.PatientDetails {
		detailByPatient[d.PatientID] = d
	}

	blockersByPatient := make(map[string][]string)
	for _, b := range dashboard.Blockers {
		blockersByPatient[b.PatientID] = append(blockersByPatient[b.PatientID], b.Category)
	}

	metrics := Metrics{
		RunID:            uuid.New().String(),
		EvaluatedAt:      time.Now().UTC(),
		TotalCases:       len(expectations.Patients),
		StatusMismatches: make([]StatusMismatch, 0),
		PerPatient:       make(map[string]PatientResult, len(expectations.Patients)),
	}

	var latencies []int64

	for _, expected := range expectations.Patients {
		detail, produced := detailByPatient[expected.PatientID]

		predictedStatus := "ERROR"
		if produced {
			predictedStatus = NormalizeStatus(string(detail.OverallStatus))
		}
		expectedStatus := NormalizeStatus(expected.ExpectedStatus)

		match := predictedStatus == expectedStatus
		if match {
			metrics.StatusMatches++
		} else {
			metrics.StatusMismatches = append(metrics.StatusMismatches, StatusMismatch{
				PatientID:       expected.PatientID,
				ExpectedStatus:  expectedStatus,
				PredictedStatus: predictedStatus,
			})
		}

		expectedSet := toUpperSet(expected.ExpectedBlockers)
		predictedSet := toUpperSet(blockersByPatient[expected.PatientID])
		for category := range expectedSet {
			if predictedSet[category] {
				metrics.BlockerHits++
			} else {
				metrics.BlockerMisses++
			}
		}
		for category := range predictedSet {
			if !expectedSet[category] {
				metrics.BlockerFalsePositives++
			}
		}

		result := PatientResult{
			ExpectedStatus:    expectedStatus,
			PredictedStatus:   predictedStatus,
			StatusMatch:       match,
			ExpectedBlockers:  sortedCopy(expected.ExpectedBlockers),
			PredictedBlockers: sortedCopy(blockersByPatient[expected.PatientID]),
		}
		if produced && detail.ElapsedMS > 0 {
			result.ElapsedMS = detail.ElapsedMS
			latencies = append(latencies, detail.ElapsedMS)
		}
		metrics.PerPatient[expected.PatientID] = result
	}

	if metrics.TotalCases > 0 {
		accuracy := float64(metrics.StatusMatches) / float64(metrics.TotalCases)
		metrics.StatusAccuracy = math.Round(accuracy*1000) / 1000
	}
	metrics.Latency = latencyStats(latencies)

	return metrics
}

func toUpperSet(categories []string) map[string]bool {
	set := make(map[string]bool, len(categories))
	for _, c := range categories {
		set[strings.ToUpper(strings.TrimSpace(c))] = true
	}
	return set
}

func sortedCopy(values []string) []string {
	out := make([]string, len(values))
	copy(out, values)
	sort.Strings(out)
	return out
}

func latencyStats(latencies []int64) *LatencyStats {
	if len(latencies) == 0 {
		return nil
	}
	stats := &LatencyStats{MinMS: latencies[0], MaxMS: latencies[0]}
	var sum int64
	for _, l := range latencies {
		if l < stats.MinMS {
			stats.MinMS = l
		}
		if l > stats.MaxMS {
			stats.MaxMS = l
		}
		sum += l
	}
	stats.MeanMS = math.Round(float64(sum)/float64(len(latencies))*10) / 10
	return stats
}
