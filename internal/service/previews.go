package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/joeblew999/plat-legend/internal/errs"
	"github.com/joeblew999/plat-legend/internal/legend"
	"github.com/joeblew999/plat-legend/internal/preview"
)

// ProgressFunc reports per-icon export progress.
type ProgressFunc func(done, total int, name string)

// PreviewService exports legend icons as PNG files and lists the results.
type PreviewService struct {
	previewsDir string
	renderer    *preview.Renderer
}

// NewPreviewService creates a preview service rooted at dataDir/previews.
func NewPreviewService(dataDir string, renderer *preview.Renderer) *PreviewService {
	if renderer == nil {
		renderer = preview.NewRenderer()
	}
	return &PreviewService{
		previewsDir: filepath.Join(dataDir, "previews"),
		renderer:    renderer,
	}
}

// List returns all exported preview files.
func (s *PreviewService) List() ([]PreviewFile, error) {
	entries, err := os.ReadDir(s.previewsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []PreviewFile{}, nil
		}
		return nil, err
	}

	var files []PreviewFile
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.ToLower(filepath.Ext(entry.Name())) != ".png" {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, PreviewFile{
			Name: entry.Name(),
			Size: formatSize(info.Size()),
		})
	}
	return files, nil
}

// Export renders every entry of every block to a PNG, plus a Lanczos-scaled
// @2x variant when retina is set. A failing entry is skipped and reported
// in defects; its siblings still export. The write path is fatal.
func (s *PreviewService) Export(ctx context.Context, blocks []legend.Block, retina bool, progress ProgressFunc) (files []PreviewFile, defects []error, err error) {
	if err := os.MkdirAll(s.previewsDir, 0755); err != nil {
		return nil, nil, err
	}

	total := 0
	for _, b := range blocks {
		total += len(b.Entries)
	}

	done := 0
	for bi, b := range blocks {
		slug := generateID(b.Title)
		if slug == "" {
			slug = fmt.Sprintf("block_%d", bi)
		}
		for ei, e := range b.Entries {
			if ctx.Err() != nil {
				return files, defects, ctx.Err()
			}
			done++

			img, renderErr := s.renderer.Render(e.Style, e.Kind)
			if renderErr != nil {
				defects = append(defects, errs.Wrap(errs.ErrCodeRenderFailure, renderErr, "entry %q", e.Label))
				continue
			}

			name := fmt.Sprintf("%s_%d_%s.png", slug, ei, generateID(e.Label))
			if err := imaging.Save(img, filepath.Join(s.previewsDir, name)); err != nil {
				return files, defects, err
			}
			pf := PreviewFile{Name: name}
			if info, statErr := os.Stat(filepath.Join(s.previewsDir, name)); statErr == nil {
				pf.Size = formatSize(info.Size())
			}
			files = append(files, pf)

			if retina {
				w, h := s.renderer.Size()
				big := imaging.Resize(img, w*2, h*2, imaging.Lanczos)
				bigName := strings.TrimSuffix(name, ".png") + "@2x.png"
				if err := imaging.Save(big, filepath.Join(s.previewsDir, bigName)); err != nil {
					return files, defects, err
				}
				files = append(files, PreviewFile{Name: bigName})
			}

			if progress != nil {
				progress(done, total, name)
			}
		}
	}
	return files, defects, nil
}

// PreviewsDir returns the path to the previews directory.
func (s *PreviewService) PreviewsDir() string {
	return s.previewsDir
}

// formatSize returns a human-readable file size.
func formatSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
