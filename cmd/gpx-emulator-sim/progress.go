package main

import (
	"fmt"
	"io"
	"time"

	"github.com/Bucknalla/gpx-emulator-sim/gps"
	"github.com/schollz/progressbar/v3"
)

var barTheme = progressbar.Theme{
	Saucer:        "=",
	SaucerHead:    ">",
	SaucerPadding: " ",
	BarStart:      "[",
	BarEnd:        "]",
}

// stageProgress shows one tick per completed pipeline stage
type stageProgress struct {
	bar *progressbar.ProgressBar
}

func newStageProgress(w io.Writer, visible bool) *stageProgress {
	bar := progressbar.NewOptions(len(gps.Stages),
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetTheme(barTheme),
		progressbar.OptionSetDescription("[GPX] processing"),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetVisibility(visible),
	)
	return &stageProgress{bar: bar}
}

func (p *stageProgress) stage(name string, points int) {
	p.bar.Describe(fmt.Sprintf("[GPX] %s (%d points)", name, points))
	_ = p.bar.Add(1)
}

func (p *stageProgress) done() {
	_ = p.bar.Finish()
}

// newReplayBar tracks points written during a paced NMEA replay
func newReplayBar(w io.Writer, total int, visible bool) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetTheme(barTheme),
		progressbar.OptionSetDescription("[NMEA] replaying"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionSetVisibility(visible),
	)
}
