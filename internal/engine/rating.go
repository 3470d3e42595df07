// apps/go-server/internal/engine/rating.go
//
// Star rating: a pure function of the move history and elapsed time,
// derived for the summary layer and never stored in GameState.

package engine

// ThreeStarMsPerMove is the pace bar for the third star: average time
// per correct move must stay under it.
const ThreeStarMsPerMove = 5000

// Rate grades a completed attempt: 1 star for completion, 2 for zero
// mistakes, 3 for zero mistakes at pace. An empty history rates 0.
func Rate(history []MoveRecord, elapsedMs int64) int {
	if len(history) == 0 {
		return 0
	}
	correct, mistakes := 0, 0
	for _, m := range history {
		if m.Correct {
			correct++
		} else {
			mistakes++
		}
	}
	if mistakes > 0 {
		return 1
	}
	if correct > 0 && elapsedMs/int64(correct) < ThreeStarMsPerMove {
		return 3
	}
	return 2
}
