package renderer

import (
	"fmt"
	"io"
	"time"

	"github.com/olekukonko/tablewriter"
)

// WorkerStats contains the work done by a single worker
type WorkerStats struct {
	ID         int
	Rows       int           // Rows rendered by this worker
	Samples    int           // Camera rays traced by this worker
	RenderTime time.Duration // Time spent rendering rows
}

// RenderStats contains statistics about the rendering process
type RenderStats struct {
	Width        int
	Height       int
	TotalPixels  int // Pixels in the frame
	RowsRendered int // Rows finished before completion or cancellation
	TotalSamples int // Camera rays traced
	RenderTime   time.Duration
	Workers      []WorkerStats
}

// addRow folds a finished row into the totals
func (s *RenderStats) addRow(result RowResult) {
	s.RowsRendered++
	s.TotalSamples += result.Samples

	w := &s.Workers[result.WorkerID]
	w.Rows++
	w.Samples += result.Samples
	w.RenderTime += result.Duration
}

// SamplesPerSecond returns the overall camera ray throughput
func (s RenderStats) SamplesPerSecond() float64 {
	if s.RenderTime <= 0 {
		return 0
	}
	return float64(s.TotalSamples) / s.RenderTime.Seconds()
}

// WriteTable renders a per-worker breakdown as a text table
func (s RenderStats) WriteTable(w io.Writer) {
	table := tablewriter.NewWriter(w)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Worker", "Rows", "% of frame", "Samples", "Render time"})
	for _, worker := range s.Workers {
		percent := 0.0
		if s.Height > 0 {
			percent = 100 * float64(worker.Rows) / float64(s.Height)
		}
		table.Append([]string{
			fmt.Sprintf("%d", worker.ID),
			fmt.Sprintf("%d", worker.Rows),
			fmt.Sprintf("%02.1f %%", percent),
			fmt.Sprintf("%d", worker.Samples),
			worker.RenderTime.String(),
		})
	}
	table.SetFooter([]string{"", fmt.Sprintf("%d", s.RowsRendered), "TOTAL", fmt.Sprintf("%d", s.TotalSamples), s.RenderTime.String()})
	table.Render()
}
