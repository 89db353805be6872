// Package report assembles and publishes the final report artifact.
package report

import (
	"context"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-report-service/internal/domain"
	apperrors "github.com/spec-kit/ticket-report-service/pkg/util"
)

// Renderer lays a report out as a PDF file.
type Renderer interface {
	Render(report *domain.Report, path string) error
}

// Storer uploads a local file under an object key and returns its URI.
type Storer interface {
	Store(ctx context.Context, path, key string) (string, error)
}

// Sink renders a report to a local intermediate file, uploads it, and
// removes the intermediate regardless of how the upload went.
type Sink struct {
	renderer Renderer
	storer   Storer
	workDir  string
	logger   *zap.Logger
}

// NewSink constructs the sink. An empty workDir uses the OS temp directory.
func NewSink(renderer Renderer, storer Storer, workDir string, logger *zap.Logger) *Sink {
	if workDir == "" {
		workDir = os.TempDir()
	}
	return &Sink{renderer: renderer, storer: storer, workDir: workDir, logger: logger}
}

// Publish renders and uploads the report, returning the stored object URI.
// The storage key is deterministic per ticket, so re-running a ticket
// overwrites the previous report.
func (s *Sink) Publish(ctx context.Context, rep *domain.Report) (string, error) {
	key := rep.StorageKey()
	path := filepath.Join(s.workDir, key)
	defer func() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			s.logger.Warn("removing intermediate report file", zap.String("path", path), zap.Error(err))
		}
	}()

	if err := s.renderer.Render(rep, path); err != nil {
		return "", apperrors.NewRenderOrUploadFailure("render", err)
	}

	uri, err := s.storer.Store(ctx, path, key)
	if err != nil {
		return "", apperrors.NewRenderOrUploadFailure("upload", err)
	}
	return uri, nil
}
