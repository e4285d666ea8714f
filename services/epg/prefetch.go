package epg

import (
	"context"
	"log"
	"time"

	"telaviva/models"
)

// StartWindowedPrefetch fetches the channels within the configured radius of
// activeIndex, one at a time with a fixed delay between fetches, nearest
// first. It returns a cancel function that stops scheduling further fetches;
// a fetch already in flight is left to finish and its result is kept.
//
// Channels outside the window are not touched here: the guide's rows call
// EnsureChannelEPG on their own, longer timer.
func (s *Service) StartWindowedPrefetch(ctx context.Context, channels []models.Channel, activeIndex int) context.CancelFunc {
	// Scheduling has its own lifetime, separate from ctx, so that cancelling
	// the window never aborts the in-flight network call.
	schedCtx, cancel := context.WithCancel(context.Background())

	order := windowOrder(activeIndex, s.cfg.PrefetchRadius, len(channels))

	go func() {
		for _, idx := range order {
			if schedCtx.Err() != nil || ctx.Err() != nil {
				log.Println("[epg] windowed prefetch stopped")
				return
			}
			s.FetchChannelEPG(ctx, channels[idx].ID)

			select {
			case <-schedCtx.Done():
				return
			case <-ctx.Done():
				return
			case <-time.After(s.cfg.PrefetchDelay()):
			}
		}
	}()

	return cancel
}

// windowOrder returns the indexes within radius of active, clamped to
// [0, n), ordered by distance from the active index (active first, then
// alternating below/above).
func windowOrder(active, radius, n int) []int {
	if n == 0 {
		return nil
	}
	if active < 0 {
		active = 0
	}
	if active >= n {
		active = n - 1
	}
	if radius < 0 {
		radius = 0
	}

	order := []int{active}
	for d := 1; d <= radius; d++ {
		if active+d < n {
			order = append(order, active+d)
		}
		if active-d >= 0 {
			order = append(order, active-d)
		}
	}
	return order
}

// EnsureChannelEPG is the per-row fallback: it waits out the grace period,
// then fetches only if the channel still has no cached schedule. Rows far
// from the guide's focus rely on this instead of the window.
func (s *Service) EnsureChannelEPG(ctx context.Context, channelID string) {
	select {
	case <-ctx.Done():
		return
	case <-time.After(s.cfg.FallbackGrace()):
	}

	if len(s.GetChannelEPG(channelID)) > 0 {
		return
	}
	s.FetchChannelEPG(ctx, channelID)
}
