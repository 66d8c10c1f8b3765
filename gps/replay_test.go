package gps

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func replayTrack() []TimedPoint {
	route := northLine(NewGeoPoint(37.7749, -122.4194), 50, 50)
	points, _ := AssignTimestamps(route, 10, testStart)
	return points
}

func TestPlayerPacing(t *testing.T) {
	var buf bytes.Buffer
	player, err := NewPlayer(&buf, 2.0, 8)
	if err != nil {
		t.Fatalf("NewPlayer() error = %v", err)
	}

	var waits []time.Duration
	player.wait = func(ctx context.Context, d time.Duration) error {
		waits = append(waits, d)
		return nil
	}

	var progress []int
	player.OnPoint(func(index, total int) {
		if total != 3 {
			t.Errorf("OnPoint total = %d, want 3", total)
		}
		progress = append(progress, index)
	})

	if err := player.Play(context.Background(), replayTrack()); err != nil {
		t.Fatalf("Play() error = %v", err)
	}

	if len(waits) != 2 || waits[0] != 2500*time.Millisecond || waits[1] != 2500*time.Millisecond {
		t.Errorf("Waits = %v, want [2.5s 2.5s]", waits)
	}
	if len(progress) != 3 || progress[0] != 0 || progress[2] != 2 {
		t.Errorf("OnPoint calls = %v, want [0 1 2]", progress)
	}

	sentences := strings.Count(buf.String(), "\r\n")
	if sentences != 15 {
		t.Errorf("Expected 15 sentences, got %d", sentences)
	}
}

func TestPlayerCancelledBeforeStart(t *testing.T) {
	var buf bytes.Buffer
	player, _ := NewPlayer(&buf, 1.0, 8)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := player.Play(ctx, replayTrack())
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Play() error = %v, want context.Canceled", err)
	}
	if buf.Len() != 0 {
		t.Errorf("Nothing should be written after cancellation, got %q", buf.String())
	}
}

func TestPlayerCancelledDuringReplay(t *testing.T) {
	var buf bytes.Buffer
	player, _ := NewPlayer(&buf, 1.0, 8)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	player.OnPoint(func(index, total int) {
		if index == 0 {
			cancel()
		}
	})

	err := player.Play(ctx, replayTrack())
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Play() error = %v, want context.Canceled", err)
	}
	if got := strings.Count(buf.String(), "\r\n"); got != 5 {
		t.Errorf("Expected only the first point's 5 sentences, got %d", got)
	}
}

func TestNewPlayerValidation(t *testing.T) {
	tests := []struct {
		name        string
		replaySpeed float64
		satellites  int
		want        error
	}{
		{"Zero replay speed", 0, 8, ErrInvalidReplaySpeed},
		{"Negative replay speed", -1, 8, ErrInvalidReplaySpeed},
		{"Too few satellites", 1, 3, ErrInvalidSatellites},
		{"Too many satellites", 1, 13, ErrInvalidSatellites},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPlayer(&bytes.Buffer{}, tt.replaySpeed, tt.satellites)
			if !errors.Is(err, tt.want) {
				t.Errorf("NewPlayer() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestPlaybackDuration(t *testing.T) {
	player, _ := NewPlayer(&bytes.Buffer{}, 4.0, 8)

	if got := player.PlaybackDuration(replayTrack()); got != 2500*time.Millisecond {
		t.Errorf("PlaybackDuration() = %v, want 2.5s", got)
	}
}

func TestSleepContext(t *testing.T) {
	if err := sleepContext(context.Background(), time.Millisecond); err != nil {
		t.Errorf("sleepContext() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := sleepContext(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Errorf("sleepContext() on cancelled context = %v, want context.Canceled", err)
	}
}
