// Package runlog builds the per-run structured logger Enrich and
// Distill write to, mirroring the teacher's habit of keeping the
// console clean and routing diagnostic detail to a timestamped file
// under logs/.
package runlog

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New opens a per-run JSON log file under dir (default "logs") named
// after stage and the run's start time, and returns a logger tagged
// with a fresh run id plus a closer to flush it on exit.
func New(dir, stage string) (*zap.Logger, string, func(), error) {
	if dir == "" {
		dir = "logs"
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, "", nil, fmt.Errorf("runlog: create log dir: %w", err)
	}

	runID := uuid.New().String()
	path := filepath.Join(dir, fmt.Sprintf("%s_%s.log", stage, time.Now().Format("20060102_150405")))

	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoder := zapcore.NewJSONEncoder(cfg)

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, "", nil, fmt.Errorf("runlog: open log file: %w", err)
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(f), zap.InfoLevel)
	logger := zap.New(core).With(zap.String("stage", stage), zap.String("run_id", runID))

	closer := func() {
		_ = logger.Sync()
		_ = f.Close()
	}
	return logger, runID, closer, nil
}
