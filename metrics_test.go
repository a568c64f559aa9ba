package pdftabular

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateDocumentStatistics(t *testing.T) {
	doc := &Document{
		Name: "statement.pdf",
		Pages: []Page{
			{Index: 0, Text: "Item   Qty\nWidget  4\n", Source: SourceNative},
			{Index: 1, Text: "Scanned", Source: SourceOCR},
			{Index: 2, Err: ErrNoTextAvailable},
		},
	}

	stats := calculateDocumentStatistics(doc)
	assert.Equal(t, DocumentStatistics{
		TotalPages:  3,
		NativePages: 1,
		OCRPages:    1,
		FailedPages: 1,
		TotalLines:  3,
		TotalChars:  28,
	}, stats)
}

func TestLogProcessingMetrics(t *testing.T) {
	metrics := ProcessingMetrics{
		TotalTime: 40 * time.Millisecond,
		PageExtractions: []PageMetrics{
			{PageNumber: 1, Source: SourceNative, Chars: 12, Duration: 10 * time.Millisecond},
			{PageNumber: 2, Source: SourceOCR, Chars: 7, Duration: 30 * time.Millisecond},
		},
		Statistics: DocumentStatistics{TotalPages: 2, NativePages: 1, OCRPages: 1},
	}

	t.Run("debug enabled", func(t *testing.T) {
		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

		logProcessingMetrics(logger, "statement.pdf", metrics)

		out := buf.String()
		require.NotEmpty(t, out)
		assert.Contains(t, out, `msg="page extracted"`)
		assert.Contains(t, out, "source=ocr")
		assert.Contains(t, out, `msg="processing metrics"`)
		assert.Contains(t, out, "avg_per_page=20ms")
		assert.Contains(t, out, "ocr_pages=1")
	})

	t.Run("debug disabled", func(t *testing.T) {
		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

		logProcessingMetrics(logger, "statement.pdf", metrics)
		assert.Empty(t, buf.String())
	})
}

type staticPages []string

func (p staticPages) PageCount() int { return len(p) }

func (p staticPages) PageText(_ context.Context, index int) (string, Source, error) {
	return p[index], SourceNative, nil
}

func TestReadDocument_LogsOpenTime(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	doc, err := readDocument(context.Background(), "statement.pdf", staticPages{"Item   Qty"}, logger, 25*time.Millisecond)
	require.NoError(t, err)

	assert.Equal(t, 25*time.Millisecond, doc.Metrics.DocumentOpen)
	assert.GreaterOrEqual(t, doc.Metrics.TotalTime, 25*time.Millisecond)
	assert.Contains(t, buf.String(), "open=25ms")
}
