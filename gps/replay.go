package gps

import (
	"context"
	"fmt"
	"io"
	"time"
)

// Player replays a timed track as NMEA sentences, paced by the gaps between
// point timestamps divided by the replay speed.
type Player struct {
	writer      io.Writer
	replaySpeed float64
	satellites  int
	onPoint     func(index, total int)
	wait        func(ctx context.Context, d time.Duration) error
}

// NewPlayer creates a player writing to w. replaySpeed is a multiplier
// (1.0 = real-time, 2.0 = 2x speed, 0.5 = half speed).
func NewPlayer(w io.Writer, replaySpeed float64, satellites int) (*Player, error) {
	if !(replaySpeed > 0) {
		return nil, invalidParameter(ErrInvalidReplaySpeed, replaySpeed)
	}
	if satellites < 4 || satellites > 12 {
		return nil, invalidParameter(ErrInvalidSatellites, float64(satellites))
	}
	return &Player{
		writer:      w,
		replaySpeed: replaySpeed,
		satellites:  satellites,
		wait:        sleepContext,
	}, nil
}

// OnPoint registers a callback invoked after each point's sentences are written
func (p *Player) OnPoint(callback func(index, total int)) {
	p.onPoint = callback
}

// Play writes every point's sentence group, waiting between points. It
// returns ctx.Err() if the context is cancelled before the track completes.
func (p *Player) Play(ctx context.Context, points []TimedPoint) error {
	groups := NMEASentences(points, p.satellites)

	for i, group := range groups {
		if i > 0 {
			gap := points[i].Time.Sub(points[i-1].Time)
			if err := p.wait(ctx, time.Duration(float64(gap)/p.replaySpeed)); err != nil {
				return err
			}
		} else if err := ctx.Err(); err != nil {
			return err
		}

		for _, sentence := range group {
			if _, err := io.WriteString(p.writer, sentence); err != nil {
				return fmt.Errorf("failed to write NMEA sentence: %w", err)
			}
		}

		if p.onPoint != nil {
			p.onPoint(i, len(groups))
		}
	}
	return nil
}

// PlaybackDuration returns how long Play takes for points at this player's speed
func (p *Player) PlaybackDuration(points []TimedPoint) time.Duration {
	return time.Duration(float64(Elapsed(points)) / p.replaySpeed)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
