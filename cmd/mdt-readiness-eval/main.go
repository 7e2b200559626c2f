package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"mdt-readiness-aggregator/internal/config"
	"mdt-readiness-aggregator/internal/eval"
	"mdt-readiness-aggregator/internal/logger"
)

func main() {
	dashboardPath := flag.String("dashboard", "output/mdt_dashboard.json", "generated dashboard JSON to score")
	expectedPath := flag.String("expected", "evaluation/mdt_eval_labels.json", "labeled expectations JSON")
	outPath := flag.String("out", "evaluation/readiness_eval_metrics.json", "metrics output path")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, "mdt-readiness-eval")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	dashboard, err := eval.LoadDashboard(*dashboardPath)
	if err != nil {
		log.Fatal("Failed to load dashboard", zap.Error(err))
	}

	expectations, err := eval.LoadExpectations(*expectedPath)
	if err != nil {
		log.Fatal("Failed to load expectations", zap.Error(err))
	}

	metrics := eval.Evaluate(dashboard, expectations)

	if err := eval.WriteMetrics(*outPath, metrics); err != nil {
		log.Fatal("Failed to write metrics", zap.Error(err))
	}

	log.Info("Evaluation complete",
		zap.String("run_id", metrics.RunID),
		zap.Int("total_cases", metrics.TotalCases),
		zap.Float64("status_accuracy", metrics.StatusAccuracy),
		zap.Int("blocker_hits", metrics.BlockerHits),
		zap.Int("blocker_misses", metrics.BlockerMisses),
		zap.Int("blocker_false_positives", metrics.BlockerFalsePositives),
		zap.String("metrics_path", *outPath),
	)

	for _, mismatch := range metrics.StatusMismatches {
		log.Warn("Status mismatch",
			zap.String("patient_id", mismatch.PatientID),
			zap.String("expected_status", mismatch.ExpectedStatus),
			zap.String("predicted_status", mismatch.PredictedStatus),
		)
	}
}
