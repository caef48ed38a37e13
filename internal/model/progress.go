package model

import (
	"fmt"
	"strings"
)

// ProgressBar renders a one-line text bar such as
//
//	3/10[======>..............] 30%
//
// step is clamped to [0, total].
func ProgressBar(width, step, total int) string {
	if total < 1 {
		total = 1
	}
	step = max(0, min(step, total))
	width = max(width, 0)

	progress := float64(step) / float64(total)
	filled := int(progress * float64(width))
	return fmt.Sprintf("%d/%d[%s>%s] %d%%",
		step, total,
		strings.Repeat("=", filled),
		strings.Repeat(".", width-filled),
		int(progress*100))
}
