package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/desertthunder/moodtune/internal/formatter"
	"github.com/desertthunder/moodtune/internal/models"
	"github.com/desertthunder/moodtune/internal/shared"
	"golang.org/x/time/rate"
)

// LibrarySource is the slice of the server contract an export reads from.
type LibrarySource interface {
	Favorites(ctx context.Context) ([]models.Song, error)
	ListeningHistory(ctx context.Context, limit int) ([]models.ListeningRecord, error)
	MostPlayed(ctx context.Context, limit int) ([]models.PlayedSong, error)
	EmotionHistory(ctx context.Context, limit int) ([]models.EmotionRecord, error)
	EmotionStats(ctx context.Context) (models.EmotionStats, error)
}

// ExportOpts contains configuration for library exports.
type ExportOpts struct {
	Format     string  // Export format: json, csv, markdown, txt
	OutputDir  string  // Base output directory (default: moodtune_export_{epoch})
	NumWorkers int     // Concurrent workers (default: 3)
	RateLimit  float64 // Requests per second (default: 5)
	Limit      int     // Row limit for history sections (default: 50)
	Sections   []string
}

// SectionResult is the outcome of exporting one section.
type SectionResult struct {
	Section  string `json:"section"`
	Rows     int    `json:"rows"`
	File     string `json:"file,omitempty"`
	Success  bool   `json:"success"`
	Error    error  `json:"-"`
	ErrorMsg string `json:"error,omitempty"`
}

// ExportResult summarizes an export run.
type ExportResult struct {
	RunID           string          `json:"run_id"`
	Format          string          `json:"format"`
	OutputDirectory string          `json:"output_directory"`
	StartedAt       time.Time       `json:"started_at"`
	TotalSections   int             `json:"total_sections"`
	Successful      int             `json:"successful"`
	Failed          int             `json:"failed"`
	Results         []SectionResult `json:"results"`
	ManifestPath    string          `json:"-"`
}

type section struct {
	name  string
	fetch func(ctx context.Context, src LibrarySource, limit int) (formatter.Table, error)
}

var sections = []section{
	{"favorites", func(ctx context.Context, src LibrarySource, _ int) (formatter.Table, error) {
		songs, err := src.Favorites(ctx)
		return formatter.SongsTable("Favorites", songs), err
	}},
	{"listening_history", func(ctx context.Context, src LibrarySource, limit int) (formatter.Table, error) {
		records, err := src.ListeningHistory(ctx, limit)
		return formatter.ListeningHistoryTable(records), err
	}},
	{"most_played", func(ctx context.Context, src LibrarySource, limit int) (formatter.Table, error) {
		songs, err := src.MostPlayed(ctx, limit)
		return formatter.MostPlayedTable(songs), err
	}},
	{"emotion_history", func(ctx context.Context, src LibrarySource, limit int) (formatter.Table, error) {
		records, err := src.EmotionHistory(ctx, limit)
		return formatter.EmotionHistoryTable(records), err
	}},
	{"emotion_stats", func(ctx context.Context, src LibrarySource, _ int) (formatter.Table, error) {
		stats, err := src.EmotionStats(ctx)
		return formatter.StatsTable(stats), err
	}},
}

// SectionNames lists the exportable sections in export order.
func SectionNames() []string {
	names := make([]string, len(sections))
	for i, s := range sections {
		names[i] = s.name
	}
	return names
}

// Exporter writes a user's library data to disk.
type Exporter struct {
	src LibrarySource
}

func NewExporter(src LibrarySource) *Exporter {
	return &Exporter{src: src}
}

func (o *ExportOpts) defaults() {
	if o.OutputDir == "" {
		o.OutputDir = fmt.Sprintf("moodtune_export_%d", time.Now().Unix())
	}
	if o.Format == "" {
		o.Format = formatter.FormatJSON
	}
	if o.NumWorkers <= 0 {
		o.NumWorkers = 3
	}
	if o.NumWorkers > len(sections) {
		o.NumWorkers = len(sections)
	}
	if o.RateLimit <= 0 {
		o.RateLimit = 5.0
	}
	if o.Limit <= 0 {
		o.Limit = 50
	}
}

func selectSections(names []string) ([]section, error) {
	if len(names) == 0 {
		return sections, nil
	}

	selected := make([]section, 0, len(names))
	for _, name := range names {
		found := false
		for _, s := range sections {
			if s.name == name {
				selected = append(selected, s)
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("%w: unknown section %q", shared.ErrInvalidArgument, name)
		}
	}
	return selected, nil
}

// Export fetches and writes every selected section concurrently with rate limiting and progress tracking.
//
// It uses a worker pool, handles partial failures and generates a manifest file summarizing the export results.
func (e *Exporter) Export(ctx context.Context, prog chan<- ProgressUpdate, opts ExportOpts) (*ExportResult, error) {
	if e.src == nil {
		return nil, fmt.Errorf("%w: library source not initialized", shared.ErrServiceUnavailable)
	}

	opts.defaults()
	if _, err := formatter.Render(formatter.Table{}, opts.Format); err != nil {
		return nil, err
	}

	selected, err := selectSections(opts.Sections)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	result := &ExportResult{
		RunID:           shared.GenerateID(),
		Format:          opts.Format,
		OutputDirectory: opts.OutputDir,
		StartedAt:       time.Now().UTC(),
		TotalSections:   len(selected),
		Results:         make([]SectionResult, 0, len(selected)),
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	jobs := make(chan section, len(selected))
	results := make(chan SectionResult, len(selected))

	var wg sync.WaitGroup
	for range opts.NumWorkers {
		wg.Add(1)
		go e.worker(ctx, &wg, limiter, jobs, results, opts)
	}

	for i, s := range selected {
		sendProgress(prog, fetchingSectionUpdate(i+1, len(selected), s.name))
		jobs <- s
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		if res.Error != nil {
			res.ErrorMsg = res.Error.Error()
		}
		result.Results = append(result.Results, res)

		if res.Success {
			result.Successful++
			sendProgress(prog, sectionCompletedUpdate(completed, len(selected), res))
		} else {
			result.Failed++
			sendProgress(prog, sectionFailedUpdate(completed, len(selected), res))
		}
	}

	if err := ctx.Err(); err != nil {
		return result, err
	}

	manifestPath := filepath.Join(opts.OutputDir, "export_manifest.json")
	if err := formatter.WriteManifest(result, manifestPath); err != nil {
		return result, fmt.Errorf("export completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath
	sendProgress(prog, manifestUpdate(manifestPath))
	return result, nil
}

// worker exports sections from the jobs channel until it closes or ctx ends.
func (e *Exporter) worker(
	ctx context.Context,
	wg *sync.WaitGroup,
	limiter *rate.Limiter,
	jobs <-chan section,
	results chan<- SectionResult,
	opts ExportOpts,
) {
	defer wg.Done()

	for s := range jobs {
		res := SectionResult{Section: s.name}

		if err := limiter.Wait(ctx); err != nil {
			res.Error = err
			results <- res
			continue
		}

		table, err := s.fetch(ctx, e.src, opts.Limit)
		if err != nil {
			res.Error = fmt.Errorf("failed to fetch %s: %w", s.name, err)
			results <- res
			continue
		}

		path, err := formatter.WriteExport(table, opts.Format, filepath.Join(opts.OutputDir, s.name))
		if err != nil {
			res.Error = err
			results <- res
			continue
		}

		res.Rows = len(table.Rows)
		res.File = path
		res.Success = true
		results <- res
	}
}
