package utils

import "fmt"

const (
	// MiB is the unit used for throughput.
	MiB = 1 << 20
	// GiB is the unit used for transferred and total sizes.
	GiB = 1 << 30
)

// FormatFileSize formats file size in human readable format
func FormatFileSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}

// ToGiB converts bytes to gibibytes.
func ToGiB(bytes int64) float64 {
	return float64(bytes) / GiB
}

// ToMiB converts bytes to mebibytes.
func ToMiB(bytes float64) float64 {
	return bytes / MiB
}
