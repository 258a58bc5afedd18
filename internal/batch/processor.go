package batch

import (
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"lol-asset-tools/internal/config"
	"lol-asset-tools/internal/tex"

	"github.com/HugoSmits86/nativewebp"
)

// Result holds the outcome of converting one texture.
type Result struct {
	Path    string
	Width   int
	Height  int
	Format  string
	Success bool
	Error   string
}

// Scan walks the input directory and returns relative paths of all
// .tex and .dds files found.
func Scan(dir string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".tex", ".dds":
			rel, err := filepath.Rel(dir, path)
			if err != nil {
				return err
			}
			paths = append(paths, rel)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("batch: scan %s: %w", dir, err)
	}
	return paths, nil
}

// Run converts all textures using a worker pool.
func Run(cfg config.Config, paths []string) []Result {
	total := len(paths)
	results := make([]Result, total)
	var processed atomic.Int64

	start := time.Now()

	// Progress reporter
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(2 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				p := processed.Load()
				if p > 0 {
					elapsed := time.Since(start).Seconds()
					rate := float64(p) / elapsed
					fmt.Printf("  [%d/%d] %.1f textures/sec\n", p, total, rate)
				}
			}
		}
	}()

	// Worker pool
	pathChan := make(chan int, cfg.Workers*2)
	var wg sync.WaitGroup

	for w := 0; w < cfg.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range pathChan {
				results[idx] = convertOne(cfg, paths[idx])
				processed.Add(1)
			}
		}()
	}

	// Send work
	for i := range paths {
		pathChan <- i
	}
	close(pathChan)

	wg.Wait()
	close(done)

	return results
}

func convertOne(cfg config.Config, rel string) Result {
	inPath := filepath.Join(cfg.InputDir, rel)
	data, err := os.ReadFile(inPath)
	if err != nil {
		return Result{Path: rel, Error: err.Error()}
	}

	var t *tex.Texture
	if strings.EqualFold(filepath.Ext(rel), ".dds") {
		t, err = tex.FromDDS(data)
	} else {
		t, err = tex.Read(data)
	}
	if err != nil {
		return Result{Path: rel, Error: err.Error()}
	}

	img, err := t.Decode()
	if err != nil {
		return Result{Path: rel, Error: err.Error()}
	}

	ext := "." + cfg.OutputFormat
	outRel := strings.TrimSuffix(rel, filepath.Ext(rel)) + ext
	outPath := filepath.Join(cfg.OutputDir, outRel)
	if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
		return Result{Path: rel, Error: err.Error()}
	}

	f, err := os.Create(outPath)
	if err != nil {
		return Result{Path: rel, Error: err.Error()}
	}
	defer f.Close()

	switch cfg.OutputFormat {
	case "webp":
		err = nativewebp.Encode(f, img, nil)
	default:
		err = png.Encode(f, img)
	}
	if err != nil {
		return Result{Path: rel, Error: fmt.Sprintf("encode %s: %v", cfg.OutputFormat, err)}
	}

	return Result{
		Path:    rel,
		Width:   t.Width,
		Height:  t.Height,
		Format:  t.Format.String(),
		Success: true,
	}
}
