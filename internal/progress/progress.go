// Package progress derives the live statistics of a transfer run from the
// cumulative byte counter and the wall-clock time since the run started.
package progress

import (
	"math"
	"time"

	"transfer/pkg/utils"
)

// Snapshot is the progress of a run at one instant.
type Snapshot struct {
	CompletedBytes int64
	TotalBytes     int64
	Elapsed        time.Duration
	Percentage     float64 // 0-100
	ThroughputMBps float64 // MiB/s averaged since run start
	ETAMinutes     int64
}

// Compute derives a Snapshot. ETA is a linear extrapolation from the average
// rate since the run started.
func Compute(completed, total int64, elapsed time.Duration) Snapshot {
	s := Snapshot{
		CompletedBytes: completed,
		TotalBytes:     total,
		Elapsed:        elapsed,
	}

	if total > 0 {
		s.Percentage = float64(completed) / float64(total) * 100
	}

	seconds := elapsed.Seconds()
	if seconds > 0 {
		s.ThroughputMBps = utils.ToMiB(float64(completed) / seconds)
	}

	if s.Percentage > 0 {
		eta := (seconds / s.Percentage) * (100 - s.Percentage)
		// sizes grew after the inventory was taken
		if eta < 0 {
			eta = 0
		}
		s.ETAMinutes = int64(math.Floor(eta / 60))
	}

	return s
}

// TransferredGiB returns the completed bytes in GiB.
func (s Snapshot) TransferredGiB() float64 {
	return utils.ToGiB(s.CompletedBytes)
}

// TotalGiB returns the inventory total in GiB.
func (s Snapshot) TotalGiB() float64 {
	return utils.ToGiB(s.TotalBytes)
}
