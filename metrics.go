package pdftabular

import (
	"context"
	"log/slog"
	"time"
)

// ProcessingMetrics contains timing and statistics for reading a document.
type ProcessingMetrics struct {
	TotalTime       time.Duration
	DocumentOpen    time.Duration
	PageExtractions []PageMetrics
	Statistics      DocumentStatistics
}

// PageMetrics contains timing for a single page.
type PageMetrics struct {
	PageNumber int
	Source     Source
	Chars      int
	Duration   time.Duration
	Failed     bool
}

// DocumentStatistics contains document-level statistics.
type DocumentStatistics struct {
	TotalPages  int
	NativePages int
	OCRPages    int
	FailedPages int
	TotalLines  int
	TotalChars  int
}

// calculateDocumentStatistics counts pages by text source and the lines and
// characters they produced.
func calculateDocumentStatistics(doc *Document) DocumentStatistics {
	stats := DocumentStatistics{
		TotalPages: len(doc.Pages),
	}

	for _, page := range doc.Pages {
		switch {
		case page.Err != nil:
			stats.FailedPages++
			continue
		case page.Source == SourceOCR:
			stats.OCRPages++
		default:
			stats.NativePages++
		}
		stats.TotalLines += len(SplitLines(page.Text))
		stats.TotalChars += len([]rune(page.Text))
	}

	return stats
}

// logProcessingMetrics logs the processing metrics at debug level.
func logProcessingMetrics(logger *slog.Logger, name string, metrics ProcessingMetrics) {
	ctx := context.Background()
	if !logger.Enabled(ctx, slog.LevelDebug) {
		return
	}

	for _, pm := range metrics.PageExtractions {
		logger.LogAttrs(ctx, slog.LevelDebug, "page extracted",
			slog.String("document", name),
			slog.Int("page", pm.PageNumber),
			slog.String("source", pm.Source.String()),
			slog.Int("chars", pm.Chars),
			slog.Bool("failed", pm.Failed),
			slog.Duration("duration", pm.Duration.Round(time.Millisecond)))
	}

	attrs := []slog.Attr{
		slog.String("document", name),
		slog.Duration("total", metrics.TotalTime.Round(time.Millisecond)),
		slog.Duration("open", metrics.DocumentOpen.Round(time.Millisecond)),
		slog.Int("pages", metrics.Statistics.TotalPages),
		slog.Int("native_pages", metrics.Statistics.NativePages),
		slog.Int("ocr_pages", metrics.Statistics.OCRPages),
		slog.Int("failed_pages", metrics.Statistics.FailedPages),
		slog.Int("lines", metrics.Statistics.TotalLines),
		slog.Int("chars", metrics.Statistics.TotalChars),
	}
	if n := len(metrics.PageExtractions); n > 0 {
		attrs = append(attrs, slog.Duration("avg_per_page", (metrics.TotalTime/time.Duration(n)).Round(time.Millisecond)))
	}
	logger.LogAttrs(ctx, slog.LevelDebug, "processing metrics", attrs...)
}
