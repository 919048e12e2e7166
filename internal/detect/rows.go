package detect

import (
	"math"
	"sort"
)

// Default row tolerance parameters. The tolerance scales with frame height
// but never drops below a minimum pixel band, so small captures still group.
const (
	DefaultRowToleranceRatio = 0.035
	MinRowTolerance          = 12.0
)

// RowTolerance derives the vertical grouping tolerance from frame height.
func RowTolerance(frameHeight int, ratio float64) float64 {
	return math.Max(MinRowTolerance, float64(frameHeight)*ratio)
}

// GroupRows partitions detections into presentation rows by vertical center.
//
// Detections are processed in ascending-y order; each is assigned to the
// first open row whose running mean center lies within tolerance, updating
// that mean, otherwise it opens a new row. This greedy single pass is
// order-sensitive on purpose: the panel lays slots out top to bottom, and
// row order must follow it. Finished rows are sorted left to right.
func GroupRows(detections []Detection, tolerance float64) [][]Detection {
	ordered := make([]Detection, len(detections))
	copy(ordered, detections)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Center.Y < ordered[j].Center.Y
	})

	var rows [][]Detection
	var centers []float64

	for _, det := range ordered {
		placed := false
		for i, center := range centers {
			if math.Abs(center-det.Center.Y) <= tolerance {
				rows[i] = append(rows[i], det)
				centers[i] = meanY(rows[i])
				placed = true
				break
			}
		}
		if !placed {
			rows = append(rows, []Detection{det})
			centers = append(centers, det.Center.Y)
		}
	}

	for _, row := range rows {
		sort.SliceStable(row, func(i, j int) bool {
			return row[i].Center.X < row[j].Center.X
		})
	}
	return rows
}

func meanY(row []Detection) float64 {
	var sum float64
	for _, det := range row {
		sum += det.Center.Y
	}
	return sum / float64(len(row))
}
