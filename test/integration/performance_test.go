package integration

import (
	"testing"
	"time"

	"github.com/agroplan/agroplan/internal/config"
	"github.com/agroplan/agroplan/internal/planner"
	"go.uber.org/zap"
)

func loadExampleForBench() (*config.Configuration, error) {
	return config.LoadConfiguration(exampleConfigPath)
}

// TestPipelineThroughput guards against the planner becoming accidentally
// expensive; the computation is polynomial in products and nutrients and a
// full run should stay well under a millisecond on any modern machine.
func TestPipelineThroughput(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping throughput test in short mode")
	}

	conf := loadExample(t)
	logger := zap.NewNop()

	const iterations = 1000
	start := time.Now()
	for i := 0; i < iterations; i++ {
		if _, err := planner.BuildPlans(logger, conf); err != nil {
			t.Fatalf("BuildPlans() error = %v", err)
		}
	}
	elapsed := time.Since(start)

	// Generous bound: 1000 full pipeline runs within 5 seconds.
	if elapsed > 5*time.Second {
		t.Errorf("Expected %d runs to finish within 5s, took %v", iterations, elapsed)
	}
	t.Logf("%d pipeline runs in %v (%.2f µs/run)", iterations, elapsed, float64(elapsed.Microseconds())/iterations)
}

func BenchmarkBuildPlans(b *testing.B) {
	conf, err := loadExampleForBench()
	if err != nil {
		b.Fatalf("LoadConfiguration() error = %v", err)
	}
	logger := zap.NewNop()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := planner.BuildPlans(logger, conf); err != nil {
			b.Fatalf("BuildPlans() error = %v", err)
		}
	}
}
