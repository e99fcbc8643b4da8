package web

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/Zachkp/portfolio/internal/content"
	"github.com/Zachkp/portfolio/internal/page"
	"github.com/Zachkp/portfolio/internal/reveal"
	"github.com/Zachkp/portfolio/internal/theme"
)

// Export writes a self-contained copy of the page to dir: index.html plus the
// static assets. Without a host to report intersection, every region is
// rendered revealed.
func Export(dir string, p *content.Portfolio, mode theme.Mode, log *zap.Logger) error {
	if log == nil {
		log = zap.NewNop()
	}
	t, err := ParseTemplates()
	if err != nil {
		return err
	}

	pg := page.New(p, page.Options{Observer: reveal.Unsupported{}, Logger: log})
	defer pg.Close()
	pg.SetTheme(mode)

	if err := os.MkdirAll(filepath.Join(dir, "static"), 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}

	f, err := os.Create(filepath.Join(dir, "index.html"))
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	if err := RenderStatic(f, t, pg.View()); err != nil {
		f.Close()
		return fmt.Errorf("render index: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close index: %w", err)
	}

	assets := StaticFS()
	return fs.WalkDir(assets, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		data, err := fs.ReadFile(assets, path)
		if err != nil {
			return err
		}
		dst := filepath.Join(dir, "static", filepath.FromSlash(path))
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return err
		}
		log.Debug("export asset", zap.String("path", dst))
		return os.WriteFile(dst, data, 0o644)
	})
}
