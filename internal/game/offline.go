package game

import "time"

// SimulateOffline replays elapsed wall-clock time as offline ticks, capped
// at maxTicks (MaxOfflineTicks when maxTicks <= 0). Each replayed tick runs
// with online=false so the tick marker is not rewritten mid-replay; the
// marker is set exactly once afterwards, which also makes an immediate
// second call a no-op. Returns the number of ticks replayed.
func (e *Engine) SimulateOffline(st *State, elapsed, tickEvery time.Duration, maxTicks int, now time.Time) int {
	if maxTicks <= 0 {
		maxTicks = MaxOfflineTicks
	}
	if tickEvery <= 0 {
		tickEvery = time.Second
	}
	ticks := int(elapsed / tickEvery)
	if ticks > maxTicks {
		ticks = maxTicks
	}
	for i := 0; i < ticks; i++ {
		e.Advance(st, false, now)
	}
	st.LastTickUnix = now.Unix()
	if ticks > 0 {
		e.log(st, SeverityInfo, "While you were away: %d hours simulated.", ticks)
	}
	return ticks
}
