package aggregator_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	agg "mdt-readiness-aggregator/internal/aggregator"
	"mdt-readiness-aggregator/internal/config"
	"mdt-readiness-aggregator/internal/models"
)

func TestCacheManager_UpdateDashboardCache_WritesJSON(t *testing.T) {
	kv := newFakeKVStore()
	cfg := &config.Config{}
	cfg.Cache.TTL = 600
	logger := zap.NewNop()

	cm := agg.NewCacheManager(cfg, kv, logger)

	a := agg.New(models.ClassicProfile(), logger)
	roster := threePatientRoster()
	readiness := map[string]models.PatientReadiness{
		"P001": a.Finalize("P001", allFoundChecklist(models.ClassicProfile())),
	}
	dashboard := a.BuildDashboard(roster, readiness)

	err := cm.UpdateDashboardCache(context.Background(), &dashboard)
	require.NoError(t, err)

	raw, err := kv.Get(context.Background(), "mdt-readiness:dashboard:latest")
	require.NoError(t, err)

	var decoded models.RosterDashboard
	require.NoError(t, json.Unmarshal([]byte(raw), &decoded))
	require.Equal(t, 3, decoded.Summary.TotalPatients)
	require.Equal(t, "2025-03-14", decoded.MDTInfo.MeetingDate)
	require.Len(t, decoded.PatientDetails, 3)
}

func TestCacheManager_UpdatePatientCache_WritesJSON(t *testing.T) {
	kv := newFakeKVStore()
	cfg := &config.Config{}
	cfg.Cache.TTL = 600
	logger := zap.NewNop()

	cm := agg.NewCacheManager(cfg, kv, logger)

	a := agg.New(models.ClassicProfile(), logger)
	readiness := a.Finalize("P007", allFoundChecklist(models.ClassicProfile()))

	err := cm.UpdatePatientCache(context.Background(), &readiness)
	require.NoError(t, err)

	raw, err := kv.Get(context.Background(), "mdt-readiness:patient:P007:readiness")
	require.NoError(t, err)

	var decoded models.PatientReadiness
	require.NoError(t, json.Unmarshal([]byte(raw), &decoded))
	require.Equal(t, "P007", decoded.PatientID)
	require.Equal(t, models.StatusReady, decoded.OverallStatus)
	require.Equal(t, "All 5 checklist items resolved", decoded.Notes)
}
