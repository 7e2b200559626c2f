package sources

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"mdt-readiness-aggregator/internal/models"
	"mdt-readiness-aggregator/internal/repository"
)

// MockPathologyReader is a mock implementation of PathologyReader
type MockPathologyReader struct {
	mock.Mock
}

func (m *MockPathologyReader) GetLatestReport(ctx context.Context, patientID string) (*repository.PathologyReport, error) {
	args := m.Called(ctx, patientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PathologyReport), args.Error(1)
}

func TestPathologySource_Found(t *testing.T) {
	mockRepo := new(MockPathologyReader)
	source := NewPathologySource(mockRepo, zap.NewNop())

	er := "Positive"
	pr := "Positive"
	her2 := "Negative"
	ki67 := 22.5
	nodesPos := 1
	nodesExam := 12
	margins := "Clear"

	mockRepo.On("GetLatestReport", mock.Anything, "P001").Return(&repository.PathologyReport{
		PatientID:        "P001",
		Diagnosis:        "Invasive ductal carcinoma",
		HistologicalType: "Ductal",
		Grade:            "2",
		ERStatus:         &er,
		PRStatus:         &pr,
		HER2Status:       &her2,
		Ki67Percentage:   &ki67,
		NodesPositive:    &nodesPos,
		NodesExamined:    &nodesExam,
		Margins:          &margins,
	}, nil)

	finding := source.Resolve(context.Background(), models.DomainPathology,
		models.RosterPatient{PatientID: "P001"})

	assert.Equal(t, models.StateFound, finding.State)
	assert.Equal(t,
		"Invasive ductal carcinoma, Ductal, Grade 2, ER: Positive, PR: Positive, HER2: Negative, Nodes: 1/12, Ki67: 22.5%",
		finding.Summary)
	assert.Equal(t, "Clear", finding.Detail["margins"])
	mockRepo.AssertExpectations(t)
}

func TestPathologySource_UnknownMarkers(t *testing.T) {
	mockRepo := new(MockPathologyReader)
	source := NewPathologySource(mockRepo, zap.NewNop())

	mockRepo.On("GetLatestReport", mock.Anything, "P002").Return(&repository.PathologyReport{
		PatientID:        "P002",
		Diagnosis:        "DCIS",
		HistologicalType: "Ductal in situ",
		Grade:            "1",
	}, nil)

	finding := source.Resolve(context.Background(), models.DomainPathology,
		models.RosterPatient{PatientID: "P002"})

	assert.Equal(t, models.StateFound, finding.State)
	assert.Equal(t, "DCIS, Ductal in situ, Grade 1, ER: Unknown, PR: Unknown, HER2: Unknown", finding.Summary)
	mockRepo.AssertExpectations(t)
}

func TestPathologySource_NoReport(t *testing.T) {
	mockRepo := new(MockPathologyReader)
	source := NewPathologySource(mockRepo, zap.NewNop())

	mockRepo.On("GetLatestReport", mock.Anything, "P003").Return(nil, nil)

	finding := source.Resolve(context.Background(), models.DomainPathology,
		models.RosterPatient{PatientID: "P003"})

	assert.Equal(t, models.StateNotFound, finding.State)
	assert.Equal(t, "No pathology report found for patient P003", finding.Summary)
	mockRepo.AssertExpectations(t)
}

func TestPathologySource_QueryErrorBecomesErrorFinding(t *testing.T) {
	mockRepo := new(MockPathologyReader)
	source := NewPathologySource(mockRepo, zap.NewNop())

	mockRepo.On("GetLatestReport", mock.Anything, "P001").Return(nil, errors.New("connection refused"))

	finding := source.Resolve(context.Background(), models.DomainPathology,
		models.RosterPatient{PatientID: "P001"})

	// Errors never escape the resolver boundary
	assert.Equal(t, models.StateError, finding.State)
	assert.Contains(t, finding.Summary, "failed to query pathology database")
	assert.Contains(t, finding.Summary, "connection refused")
	mockRepo.AssertExpectations(t)
}
