package leaderboard

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/verte-zerg/wwpm/internal/model"
	"github.com/verte-zerg/wwpm/internal/store"
)

type failingScores struct{}

func (failingScores) TopScores(context.Context, int) ([]model.LeaderboardEntry, error) {
	return nil, errors.New("db down")
}

func (failingScores) InsertScore(context.Context, string, int) (model.LeaderboardEntry, error) {
	return model.LeaderboardEntry{}, errors.New("db down")
}

func newTestService(t *testing.T) (*httptest.Server, *store.Store) {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "leaderboard.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	srv := httptest.NewServer(NewServer(st))
	t.Cleanup(func() {
		srv.Close()
		_ = st.Close()
	})
	return srv, st
}

func TestClientSubmitThenTop(t *testing.T) {
	srv, _ := newTestService(t)
	client := NewClient(srv.URL + "/")
	ctx := context.Background()

	top, err := client.Top(ctx)
	if err != nil {
		t.Fatalf("top: %v", err)
	}
	if len(top) != 0 {
		t.Fatalf("expected empty leaderboard, got %v", top)
	}

	stored, err := client.Submit(ctx, "abc", 42)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if len(stored) != 1 || stored[0].Username != "abc" || stored[0].Score != 42 || stored[0].ID == 0 {
		t.Fatalf("unexpected stored entry: %+v", stored)
	}
	if _, err := client.Submit(ctx, "xyz", 99); err != nil {
		t.Fatalf("submit: %v", err)
	}

	top, err = client.Top(ctx)
	if err != nil {
		t.Fatalf("top: %v", err)
	}
	if len(top) != 2 || top[0].Username != "xyz" || top[1].Username != "abc" {
		t.Fatalf("unexpected order: %+v", top)
	}
}

func TestTopIsLimitedToTopN(t *testing.T) {
	srv, st := newTestService(t)
	ctx := context.Background()
	for i := 0; i < TopN+5; i++ {
		if _, err := st.InsertScore(ctx, "abc", i); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}
	top, err := NewClient(srv.URL).Top(ctx)
	if err != nil {
		t.Fatalf("top: %v", err)
	}
	if len(top) != TopN {
		t.Fatalf("expected %d entries, got %d", TopN, len(top))
	}
	if top[0].Score != TopN+4 {
		t.Fatalf("expected highest score first, got %d", top[0].Score)
	}
}

func TestCreateRejectsMissingFields(t *testing.T) {
	srv, _ := newTestService(t)
	for _, body := range []string{`{"score": 3}`, `{"username": "abc"}`, `{"username": "", "score": 1}`, `not json`, `{"username":"abc","score":-1}`} {
		resp, err := http.Post(srv.URL+apiPath, "application/json", strings.NewReader(body))
		if err != nil {
			t.Fatalf("post: %v", err)
		}
		_ = resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("body %s: got %d, want 400", body, resp.StatusCode)
		}
	}
}

func TestClientReportsRejection(t *testing.T) {
	srv, _ := newTestService(t)
	_, err := NewClient(srv.URL).Submit(context.Background(), "", 3)
	if !errors.Is(err, ErrRejected) {
		t.Fatalf("expected ErrRejected, got %v", err)
	}
	if !strings.Contains(err.Error(), "username and score are required") {
		t.Fatalf("expected server message in error, got %v", err)
	}
}

func TestListFailureReportsFetchError(t *testing.T) {
	srv := httptest.NewServer(NewServer(failingScores{}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Top(context.Background())
	if err == nil || errors.Is(err, ErrRejected) {
		t.Fatalf("expected server error, got %v", err)
	}
	if !strings.Contains(err.Error(), "error fetching scores") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestHighScoresPage(t *testing.T) {
	srv, st := newTestService(t)
	if _, err := st.InsertScore(context.Background(), "<b>", 17); err != nil {
		t.Fatalf("insert: %v", err)
	}
	resp, err := http.Get(srv.URL + "/")
	if err != nil {
		t.Fatalf("get page: %v", err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); !strings.Contains(ct, "text/html") {
		t.Fatalf("expected text/html, got %s", ct)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read page: %v", err)
	}
	body := string(data)
	if !strings.Contains(body, "High Scores") || !strings.Contains(body, "&lt;b&gt;: 17") {
		t.Fatalf("unexpected page body: %s", body)
	}
}
