package solver

import (
	"errors"
	"fmt"

	"github.com/hayatoito/icfp2019/internal/geom"
)

// ErrBoosterUnavailable is returned when none of the requested booster kinds
// are left in the pool, or a claimed cell was already taken.
var ErrBoosterUnavailable = errors.New("booster is no longer available")

// StuckError means a bot has no reachable goal and nothing else to do.
type StuckError struct {
	ArenaID int
	Bot     int
	Pos     geom.Pos
	Turn    int
	Reason  string
}

func (e *StuckError) Error() string {
	return fmt.Sprintf("arena %d: bot %d stuck at %v on turn %d: %s", e.ArenaID, e.Bot, e.Pos, e.Turn, e.Reason)
}

// IsStuck checks if an error is a StuckError.
func IsStuck(err error) bool {
	var stuck *StuckError
	return errors.As(err, &stuck)
}
