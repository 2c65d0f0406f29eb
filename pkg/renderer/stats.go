package renderer

import "fmt"

// Stats contains statistics about the last trace
type Stats struct {
	Segments            int `json:"segments"`            // Segments emitted
	Hits                int `json:"hits"`                // Rays that struck an entity
	Escapes             int `json:"escapes"`             // Rays that left the scene
	DepthTerminated     int `json:"depthTerminated"`     // Rays cut off by MaxBounces
	IntensityTerminated int `json:"intensityTerminated"` // Rays cut off by MinIntensity
	DroppedTeleports    int `json:"droppedTeleports"`    // Teleports with no partner
	BudgetTerminated    int `json:"budgetTerminated"`    // Rays cut off by MaxSegments
	MaxDepthReached     int `json:"maxDepthReached"`     // Deepest segment emitted
}

func (s *Stats) recordSegment(depth int) {
	s.Segments++
	if depth > s.MaxDepthReached {
		s.MaxDepthReached = depth
	}
}

func (s Stats) String() string {
	return fmt.Sprintf("%d segments (%d hits, %d escapes), depth %d, cut by depth %d, cut by intensity %d, cut by budget %d, dropped teleports %d",
		s.Segments, s.Hits, s.Escapes, s.MaxDepthReached, s.DepthTerminated, s.IntensityTerminated, s.BudgetTerminated, s.DroppedTeleports)
}
