package eye

import (
	"context"
	"fmt"
	"time"

	"github.com/thesis09/pseyepy/internal/debug"
)

// warmupFrames is the number of frames discarded before timing starts.
// The first few frames after opening arrive late while the pipeline
// fills, and would drag the measurement down.
const warmupFrames = 3

// MeasureFPS reads n frames from the session and reports the achieved
// frame rate across all managed devices. It is a diagnostic helper:
// the result reflects driver and transfer overhead, not the rate the
// hardware was configured for.
//
// The context is checked between reads, so a cancelled context stops
// the measurement at the next frame boundary; an in-flight grab still
// blocks until the hardware delivers.
func MeasureFPS(ctx context.Context, s *Session, n int) (float64, error) {
	if n <= 0 {
		return 0, fmt.Errorf("measure fps: frame count must be positive, got %d", n)
	}
	for i := 0; i < warmupFrames; i++ {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		if _, err := s.Read(); err != nil {
			return 0, err
		}
	}
	start := time.Now()
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		if _, err := s.Read(); err != nil {
			return 0, err
		}
	}
	elapsed := time.Since(start)
	if elapsed <= 0 {
		// Reads completed faster than the clock resolution (mock
		// driver); report the configured rate rather than +Inf.
		return float64(s.cfg.FrameRate), nil
	}
	fps := float64(n) / elapsed.Seconds()
	debug.Info("Measured %.2f fps over %d frames (%v)", fps, n, elapsed)
	return fps, nil
}
