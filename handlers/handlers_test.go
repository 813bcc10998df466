package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/Dosada05/fixture-engine/models"
	"github.com/Dosada05/fixture-engine/services"
)

func init() {
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

type fakeFixtures struct {
	err       error
	gotForce  bool
	gotTourID int64
}

func (f *fakeFixtures) GenerateTournament(_ context.Context, tournamentID int64, force bool) (*services.GenerationReport, error) {
	f.gotTourID, f.gotForce = tournamentID, force
	if f.err != nil {
		return nil, f.err
	}
	return &services.GenerationReport{TournamentID: tournamentID}, nil
}

func (f *fakeFixtures) ValidateIntake(_ context.Context, stageID int64) (*services.IntakeReport, error) {
	return &services.IntakeReport{StageID: stageID}, f.err
}

func (f *fakeFixtures) ListStageMatches(context.Context, int64) ([]*models.Match, error) {
	return []*models.Match{}, f.err
}

func (f *fakeFixtures) ListStandings(context.Context, int64) ([]models.Standing, error) {
	return []models.Standing{}, f.err
}

type fakeProgression struct {
	err       error
	gotResult services.Result
}

func (p *fakeProgression) FinishMatch(_ context.Context, matchID int64, result services.Result) (*services.ProgressReport, error) {
	p.gotResult = result
	if p.err != nil {
		return nil, p.err
	}
	return &services.ProgressReport{MatchID: matchID}, nil
}

func (p *fakeProgression) Progress(_ context.Context, matchID int64) (*services.ProgressReport, error) {
	if p.err != nil {
		return nil, p.err
	}
	return &services.ProgressReport{MatchID: matchID}, nil
}

func (p *fakeProgression) ReseedKnockout(context.Context, int64, bool, bool) ([]*models.Match, error) {
	return []*models.Match{}, p.err
}

func newRouter(fs services.FixtureService, ps services.ProgressionService) http.Handler {
	fh, mh := NewFixtureHandler(fs), NewMatchHandler(ps)
	r := chi.NewRouter()
	r.Post("/tournaments/{tournamentID}/fixtures", fh.GenerateHandler)
	r.Get("/stages/{stageID}/matches", fh.StageMatchesHandler)
	r.Get("/stages/{stageID}/intake/validate", fh.ValidateIntakeHandler)
	r.Post("/stages/{stageID}/reseed", mh.ReseedHandler)
	r.Post("/matches/{matchID}/finish", mh.FinishHandler)
	r.Post("/matches/{matchID}/progress", mh.ProgressHandler)
	return r
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, target, rd))
	return rec
}

func TestGenerateHandler(t *testing.T) {
	fixtures := &fakeFixtures{}
	rec := do(t, newRouter(fixtures, &fakeProgression{}), http.MethodPost, "/tournaments/3/fixtures?force=true", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if fixtures.gotTourID != 3 || !fixtures.gotForce {
		t.Fatalf("service called with %d/%v", fixtures.gotTourID, fixtures.gotForce)
	}
	var body struct {
		Report services.GenerationReport `json:"report"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil || body.Report.TournamentID != 3 {
		t.Fatalf("body = %s (%v)", rec.Body.String(), err)
	}
}

func TestBadRequests(t *testing.T) {
	h := newRouter(&fakeFixtures{}, &fakeProgression{})
	tests := []struct {
		name, method, target, body string
	}{
		{"bad id", http.MethodPost, "/tournaments/abc/fixtures", ""},
		{"negative id", http.MethodGet, "/stages/-1/matches", ""},
		{"bad flag", http.MethodPost, "/stages/1/reseed?force=maybe", ""},
		{"empty body", http.MethodPost, "/matches/1/finish", ""},
		{"unknown field", http.MethodPost, "/matches/1/finish", `{"score_a":1,"score_b":0,"mvp":5}`},
		{"two values", http.MethodPost, "/matches/1/finish", `{"score_a":1,"score_b":0}{}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rec := do(t, h, tt.method, tt.target, tt.body); rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400: %s", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestFinishHandlerPassesResult(t *testing.T) {
	progression := &fakeProgression{}
	rec := do(t, newRouter(&fakeFixtures{}, progression), http.MethodPost, "/matches/9/finish", `{"score_a":1,"score_b":1,"winner_id":4}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	got := progression.gotResult
	if got.ScoreA != 1 || got.ScoreB != 1 || got.WinnerID == nil || *got.WinnerID != 4 {
		t.Fatalf("result = %+v", got)
	}
}

func TestServiceErrorMapping(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{services.ErrMatchNotFound, http.StatusNotFound},
		{fmt.Errorf("lookup: %w", services.ErrStageNotFound), http.StatusNotFound},
		{services.ErrMatchAlreadyFinished, http.StatusConflict},
		{services.ErrSourceIncomplete, http.StatusConflict},
		{services.ErrDrawNotAllowed, http.StatusBadRequest},
		{services.ErrMatchNotFinished, http.StatusBadRequest},
		{&services.ConfigurationError{StageID: 2, Reason: "bracket too small"}, http.StatusUnprocessableEntity},
		{io.ErrClosedPipe, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			h := newRouter(&fakeFixtures{err: tt.err}, &fakeProgression{err: tt.err})
			if rec := do(t, h, http.MethodPost, "/matches/1/progress", ""); rec.Code != tt.want {
				t.Fatalf("progress: status = %d, want %d", rec.Code, tt.want)
			}
			if rec := do(t, h, http.MethodGet, "/stages/1/intake/validate", ""); rec.Code != tt.want {
				t.Fatalf("validate: status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestConfigurationErrorBody(t *testing.T) {
	cfgErr := &services.ConfigurationError{StageID: 2, Reason: "bracket too small"}
	rec := do(t, newRouter(&fakeFixtures{err: cfgErr}, &fakeProgression{}), http.MethodPost, "/tournaments/1/fixtures", "")
	var body struct {
		Error struct {
			StageID int64  `json:"stage_id"`
			Reason  string `json:"reason"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body.Error.StageID != 2 || body.Error.Reason != "bracket too small" {
		t.Fatalf("body = %s", rec.Body.String())
	}
}
