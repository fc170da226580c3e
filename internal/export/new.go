package export

import "github.com/nguyentantai21042004/vidscribe/internal/logger"

type implExporter struct {
	dir    string
	logger logger.Logger
}

// New creates an Exporter writing .docx files into dir
func New(dir string, log logger.Logger) Exporter {
	return &implExporter{
		dir:    dir,
		logger: log,
	}
}
