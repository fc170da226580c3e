package processor

import (
	"io"

	"github.com/nguyentantai21042004/vidscribe/internal/config"
	"github.com/nguyentantai21042004/vidscribe/internal/export"
	"github.com/nguyentantai21042004/vidscribe/internal/logger"
	"github.com/nguyentantai21042004/vidscribe/internal/transcriber"
	"github.com/nguyentantai21042004/vidscribe/pkg/executor"
)

type implProcessor struct {
	cfg         *config.Config
	executor    executor.Executor
	transcriber transcriber.Transcriber
	exporter    export.Exporter
	stdout      io.Writer
	logger      logger.Logger
}

// New creates a new Processor instance.
// exp may be nil, in which case transcripts are only written to stdout.
func New(cfg *config.Config, exec executor.Executor, tr transcriber.Transcriber, exp export.Exporter, stdout io.Writer, log logger.Logger) Processor {
	return &implProcessor{
		cfg:         cfg,
		executor:    exec,
		transcriber: tr,
		exporter:    exp,
		stdout:      stdout,
		logger:      log,
	}
}
