package renderer

import (
	"time"

	"github.com/charmbracelet/harmonica"
	"github.com/df07/go-sphere-raytracer/pkg/core"
)

// Progress tracks finished rows and keeps a spring-smoothed throughput estimate.
// It is not safe for concurrent use; the render loop owns it.
type Progress struct {
	totalRows int
	rowsDone  int

	// Frequency 2.0 with damping 1.0 settles in a couple of seconds without overshoot
	spring  harmonica.Spring
	rate    float64 // smoothed rows per second
	rateVel float64 // spring velocity for rate
	seeded  bool

	lastRows    int
	lastElapsed time.Duration
	lastLogged  int // last reported tenth of the frame

	logger core.Logger
}

// NewProgress creates a tracker for a frame of totalRows rows
func NewProgress(totalRows int, logger core.Logger) *Progress {
	if logger == nil {
		logger = core.NopLogger{}
	}
	return &Progress{
		totalRows: totalRows,
		spring:    harmonica.NewSpring(harmonica.FPS(10), 2.0, 1.0),
		logger:    logger,
	}
}

// Observe records that rowsDone rows have finished after elapsed render time
func (p *Progress) Observe(rowsDone int, elapsed time.Duration) {
	p.rowsDone = rowsDone

	dt := elapsed - p.lastElapsed
	if dt > 0 && rowsDone > p.lastRows {
		instant := float64(rowsDone-p.lastRows) / dt.Seconds()
		if !p.seeded {
			p.rate = instant
			p.seeded = true
		} else {
			p.rate, p.rateVel = p.spring.Update(p.rate, p.rateVel, instant)
		}
		p.lastRows = rowsDone
		p.lastElapsed = elapsed
	}

	if p.totalRows > 0 {
		tenth := rowsDone * 10 / p.totalRows
		if tenth > p.lastLogged {
			p.lastLogged = tenth
			p.logger.Infof("%d/%d rows (%d%%), %.1f rows/s, eta %s",
				rowsDone, p.totalRows, tenth*10, p.rate, p.ETA().Round(time.Second))
		}
	}
}

// Rate returns the smoothed throughput in rows per second
func (p *Progress) Rate() float64 {
	return p.rate
}

// ETA estimates the time left for the remaining rows
func (p *Progress) ETA() time.Duration {
	remaining := p.totalRows - p.rowsDone
	if remaining <= 0 || p.rate <= 0 {
		return 0
	}
	return time.Duration(float64(remaining) / p.rate * float64(time.Second))
}

// Fraction returns the finished share of the frame in [0,1]
func (p *Progress) Fraction() float64 {
	if p.totalRows <= 0 {
		return 1
	}
	return float64(p.rowsDone) / float64(p.totalRows)
}
