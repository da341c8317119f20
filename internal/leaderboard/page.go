package leaderboard

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/a-h/templ"

	"github.com/verte-zerg/wwpm/internal/model"
)

func render(w http.ResponseWriter, r *http.Request, component templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := component.Render(r.Context(), w); err != nil {
		http.Error(w, "failed to render", http.StatusInternalServerError)
	}
}

func highScoresPage(entries []model.LeaderboardEntry) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<!doctype html><html lang="en"><head><meta charset="utf-8"><title>WWPM</title></head><body><h1>WWPM</h1>`); err != nil {
			return err
		}
		if err := scoreList(entries).Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, `</body></html>`)
		return err
	})
}

func scoreList(entries []model.LeaderboardEntry) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		if len(entries) == 0 {
			_, err := io.WriteString(w, `<p>No scores yet.</p>`)
			return err
		}
		if _, err := io.WriteString(w, `<h2>High Scores</h2><ul>`); err != nil {
			return err
		}
		for _, e := range entries {
			if _, err := fmt.Fprintf(w, `<li id="score-%d">%s: %d</li>`, e.ID, templ.EscapeString(e.Username), e.Score); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</ul>`)
		return err
	})
}
