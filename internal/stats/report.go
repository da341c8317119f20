package stats

import (
	"context"

	"github.com/verte-zerg/wwpm/internal/model"
	"github.com/verte-zerg/wwpm/internal/store"
)

// Report contains precomputed data for stats rendering.
type Report struct {
	Sessions []model.SessionAggregate
	Best     int
}

// BuildReport loads and prepares data for stats rendering.
func BuildReport(ctx context.Context, st *store.Store, cfg model.StatsConfig) (Report, error) {
	sessions, err := st.ListSessions(ctx, cfg)
	if err != nil {
		return Report{}, err
	}
	if cfg.Last > 0 && len(sessions) > cfg.Last {
		sessions = sessions[len(sessions)-cfg.Last:]
	}
	best := 0
	for _, s := range sessions {
		if s.Score > best {
			best = s.Score
		}
	}
	return Report{Sessions: sessions, Best: best}, nil
}
