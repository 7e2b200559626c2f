package eval_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mdt-readiness-aggregator/internal/eval"
	"mdt-readiness-aggregator/internal/models"
)

func TestNormalizeStatus(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"READY", "READY"},
		{"ready", "READY"},
		{"Case is READY for presentation", "READY"},
		{"BLOCKED", "BLOCKED"},
		{"Blocked - unsigned report", "BLOCKED"},
		{"IN_PROGRESS", "IN_PROGRESS"},
		{"in progress", "IN_PROGRESS"},
		{"ERROR", "ERROR"},
		{"retrieval error", "ERROR"},
		{"", "ERROR"},
		{"SOMETHING_ELSE", "SOMETHING_ELSE"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, eval.NormalizeStatus(tc.in), "input %q", tc.in)
	}
}

func twoPatientDashboard() models.RosterDashboard {
	return models.RosterDashboard{
		Summary: models.DashboardSummary{TotalPatients: 2, Ready: 1, Blocked: 1},
		Blockers: []models.BlockerRecord{
			{PatientID: "P002", Category: "Radiology_Report", Issue: "UNSIGNED REPORT(S) DETECTED: 2025-02-25 MRI (Breast)"},
		},
		PatientDetails: []models.PatientDetail{
			{PatientID: "P001", OverallStatus: models.StatusReady, ElapsedMS: 12},
			{PatientID: "P002", OverallStatus: models.StatusBlocked, ElapsedMS: 48},
		},
	}
}

func TestEvaluate_PerfectScore(t *testing.T) {
	expectations := eval.Expectations{
		Patients: []eval.ExpectedPatient{
			{PatientID: "P001", ExpectedStatus: "READY"},
			{PatientID: "P002", ExpectedStatus: "BLOCKED", ExpectedBlockers: []string{"Radiology_Report"}},
		},
	}

	metrics := eval.Evaluate(twoPatientDashboard(), expectations)

	assert.Equal(t, 2, metrics.TotalCases)
	assert.Equal(t, 2, metrics.StatusMatches)
	assert.Equal(t, 1.0, metrics.StatusAccuracy)
	assert.Equal(t, 1, metrics.BlockerHits)
	assert.Equal(t, 0, metrics.BlockerMisses)
	assert.Equal(t, 0, metrics.BlockerFalsePositives)
	assert.Empty(t, metrics.StatusMismatches)
	assert.NotEmpty(t, metrics.RunID)

	require.Contains(t, metrics.PerPatient, "P002")
	assert.True(t, metrics.PerPatient["P002"].StatusMatch)
	assert.Equal(t, []string{"Radiology_Report"}, metrics.PerPatient["P002"].PredictedBlockers)
}

func TestEvaluate_MismatchAndMissedBlocker(t *testing.T) {
	expectations := eval.Expectations{
		Patients: []eval.ExpectedPatient{
			{PatientID: "P001", ExpectedStatus: "BLOCKED", ExpectedBlockers: []string{"Pathology_Report"}},
		},
	}

	metrics := eval.Evaluate(twoPatientDashboard(), expectations)

	assert.Equal(t, 0, metrics.StatusMatches)
	assert.Equal(t, 0.0, metrics.StatusAccuracy)
	assert.Equal(t, 0, metrics.BlockerHits)
	assert.Equal(t, 1, metrics.BlockerMisses)

	require.Len(t, metrics.StatusMismatches, 1)
	assert.Equal(t, "P001", metrics.StatusMismatches[0].PatientID)
	assert.Equal(t, "BLOCKED", metrics.StatusMismatches[0].ExpectedStatus)
	assert.Equal(t, "READY", metrics.StatusMismatches[0].PredictedStatus)
}

func TestEvaluate_FalsePositiveBlocker(t *testing.T) {
	expectations := eval.Expectations{
		Patients: []eval.ExpectedPatient{
			{PatientID: "P002", ExpectedStatus: "BLOCKED"},
		},
	}

	metrics := eval.Evaluate(twoPatientDashboard(), expectations)

	assert.Equal(t, 1, metrics.StatusMatches)
	assert.Equal(t, 0, metrics.BlockerHits)
	assert.Equal(t, 1, metrics.BlockerFalsePositives)
}

func TestEvaluate_BlockerCategoriesCompareCaseInsensitive(t *testing.T) {
	expectations := eval.Expectations{
		Patients: []eval.ExpectedPatient{
			{PatientID: "P002", ExpectedStatus: "BLOCKED", ExpectedBlockers: []string{"RADIOLOGY_REPORT"}},
		},
	}

	metrics := eval.Evaluate(twoPatientDashboard(), expectations)

	assert.Equal(t, 1, metrics.BlockerHits)
	assert.Equal(t, 0, metrics.BlockerMisses)
	assert.Equal(t, 0, metrics.BlockerFalsePositives)
}

func TestEvaluate_UnproducedPatientReadsAsError(t *testing.T) {
	expectations := eval.Expectations{
		Patients: []eval.ExpectedPatient{
			{PatientID: "P404", ExpectedStatus: "READY"},
		},
	}

	metrics := eval.Evaluate(twoPatientDashboard(), expectations)

	require.Len(t, metrics.StatusMismatches, 1)
	assert.Equal(t, "ERROR", metrics.StatusMismatches[0].PredictedStatus)
	assert.Equal(t, 0.0, metrics.StatusAccuracy)
}

func TestEvaluate_SubstringTolerantLabels(t *testing.T) {
	expectations := eval.Expectations{
		Patients: []eval.ExpectedPatient{
			{PatientID: "P001", ExpectedStatus: "Case ready for MDT"},
			{PatientID: "P002", ExpectedStatus: "blocked on radiology"},
		},
	}

	metrics := eval.Evaluate(twoPatientDashboard(), expectations)

	assert.Equal(t, 2, metrics.StatusMatches)
}

func TestEvaluate_LatencyStats(t *testing.T) {
	expectations := eval.Expectations{
		Patients: []eval.ExpectedPatient{
			{PatientID: "P001", ExpectedStatus: "READY"},
			{PatientID: "P002", ExpectedStatus: "BLOCKED", ExpectedBlockers: []string{"Radiology_Report"}},
		},
	}

	metrics := eval.Evaluate(twoPatientDashboard(), expectations)

	require.NotNil(t, metrics.Latency)
	assert.Equal(t, int64(12), metrics.Latency.MinMS)
	assert.Equal(t, int64(48), metrics.Latency.MaxMS)
	assert.Equal(t, 30.0, metrics.Latency.MeanMS)
}

func TestEvaluate_NoLatencyWhenDashboardOmitsElapsed(t *testing.T) {
	dashboard := twoPatientDashboard()
	dashboard.PatientDetails[0].ElapsedMS = 0
	dashboard.PatientDetails[1].ElapsedMS = 0
	expectations := eval.Expectations{
		Patients: []eval.ExpectedPatient{{PatientID: "P001", ExpectedStatus: "READY"}},
	}

	metrics := eval.Evaluate(dashboard, expectations)

	assert.Nil(t, metrics.Latency)
}

func TestLoadExpectations_RejectsEmptyPatientList(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "labels.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"patients": []}`), 0o644))

	_, err := eval.LoadExpectations(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no patients found")
}

func TestWriteMetrics_RoundTrips(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "metrics", "out.json")

	expectations := eval.Expectations{
		Patients: []eval.ExpectedPatient{{PatientID: "P001", ExpectedStatus: "READY"}},
	}
	metrics := eval.Evaluate(twoPatientDashboard(), expectations)
	require.NoError(t, eval.WriteMetrics(path, metrics))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "\"status_accuracy\": 1")
	assert.Contains(t, string(data), metrics.RunID)
}
