package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Dosada05/tournament-portal/middleware"
	"github.com/Dosada05/tournament-portal/models"
	"github.com/Dosada05/tournament-portal/services"
	"github.com/Dosada05/tournament-portal/standings"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type fakeStandingsService struct {
	table        standings.Table
	err          error
	gotStageID   *uuid.UUID
	gotGroupID   uuid.UUID
	rebuildCalls int
}

func (f *fakeStandingsService) GroupStandings(_ context.Context, groupID uuid.UUID) (standings.Table, error) {
	f.gotGroupID = groupID
	return f.table, f.err
}

func (f *fakeStandingsService) StageStandings(_ context.Context, _ uuid.UUID) (standings.Table, error) {
	return f.table, f.err
}

func (f *fakeStandingsService) TournamentStandings(_ context.Context, _ uuid.UUID, stageID *uuid.UUID) (standings.Table, error) {
	f.gotStageID = stageID
	return f.table, f.err
}

func (f *fakeStandingsService) RebuildGroup(_ context.Context, _ uuid.UUID) ([]models.StandingRow, error) {
	f.rebuildCalls++
	return f.table.Rows, f.err
}

type fakeArchiveService struct {
	err error
}

func (f *fakeArchiveService) ArchiveStage(_ context.Context, stageID uuid.UUID) (*services.StandingsSnapshot, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &services.StandingsSnapshot{StageID: stageID}, nil
}

func (f *fakeArchiveService) GetArchive(_ context.Context, stageID uuid.UUID) (*services.StandingsSnapshot, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &services.StandingsSnapshot{StageID: stageID}, nil
}

func (f *fakeArchiveService) DeleteArchive(_ context.Context, _ uuid.UUID) error {
	return f.err
}

func newStandingsRouter(ss services.StandingsService, as services.ArchiveService) http.Handler {
	h := NewStandingsHandler(ss, as)
	r := chi.NewRouter()
	r.Get("/tournaments/{tournamentID}/standings", h.TournamentStandingsHandler)
	r.Get("/groups/{groupID}/standings", h.GroupStandingsHandler)
	r.Post("/groups/{groupID}/standings/rebuild", h.RebuildGroupHandler)
	r.Post("/stages/{stageID}/standings/archive", h.ArchiveStageHandler)
	return r
}

func sampleTable() standings.Table {
	return standings.NewTable(standings.TitleTournament, true, []models.StandingRow{
		{Rank: 1, TeamID: uuid.New(), TeamName: "Lions", Played: 2, Wins: 2, GoalsFor: 5, GoalsAgainst: 1, GoalDifference: 4, Points: 6},
		{Rank: 2, TeamID: uuid.New(), TeamName: "Tigers", Played: 2, Losses: 2, GoalsFor: 1, GoalsAgainst: 5, GoalDifference: -4},
	})
}

func TestTournamentStandingsHandler(t *testing.T) {
	tournamentID := uuid.New()
	stageID := uuid.New()

	tests := []struct {
		name       string
		url        string
		svc        *fakeStandingsService
		wantStatus int
		wantBody   string
		wantStage  bool
	}{
		{
			name:       "json table",
			url:        "/tournaments/" + tournamentID.String() + "/standings",
			svc:        &fakeStandingsService{table: sampleTable()},
			wantStatus: http.StatusOK,
			wantBody:   `"title": "Tournament Standings"`,
		},
		{
			name:       "stage selects liveness",
			url:        "/tournaments/" + tournamentID.String() + "/standings?stage_id=" + stageID.String(),
			svc:        &fakeStandingsService{table: sampleTable()},
			wantStatus: http.StatusOK,
			wantStage:  true,
		},
		{
			name:       "text format",
			url:        "/tournaments/" + tournamentID.String() + "/standings?format=text",
			svc:        &fakeStandingsService{table: sampleTable()},
			wantStatus: http.StatusOK,
			wantBody:   "+4",
		},
		{
			name:       "empty table carries message",
			url:        "/tournaments/" + tournamentID.String() + "/standings",
			svc:        &fakeStandingsService{table: standings.NewTable(standings.TitleTournament, true, nil)},
			wantStatus: http.StatusOK,
			wantBody:   "Tournament Standings not available yet.",
		},
		{
			name:       "bad tournament id",
			url:        "/tournaments/nope/standings",
			svc:        &fakeStandingsService{},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "bad stage id",
			url:        "/tournaments/" + tournamentID.String() + "/standings?stage_id=x",
			svc:        &fakeStandingsService{},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unknown tournament",
			url:        "/tournaments/" + tournamentID.String() + "/standings",
			svc:        &fakeStandingsService{err: services.ErrTournamentNotFound},
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "store failure",
			url:        "/tournaments/" + tournamentID.String() + "/standings",
			svc:        &fakeStandingsService{err: services.ErrStandingsUnavailable},
			wantStatus: http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newStandingsRouter(tt.svc, &fakeArchiveService{})
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.url, nil))

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d; body %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.wantBody != "" && !strings.Contains(rec.Body.String(), tt.wantBody) {
				t.Errorf("body %q does not contain %q", rec.Body.String(), tt.wantBody)
			}
			if tt.wantStage {
				if tt.svc.gotStageID == nil || *tt.svc.gotStageID != stageID {
					t.Errorf("stage id = %v, want %s", tt.svc.gotStageID, stageID)
				}
			} else if tt.svc.gotStageID != nil {
				t.Errorf("stage id = %s, want nil", *tt.svc.gotStageID)
			}
		})
	}
}

func TestGroupStandingsHandler_DecodesRows(t *testing.T) {
	groupID := uuid.New()
	svc := &fakeStandingsService{table: sampleTable()}
	router := newStandingsRouter(svc, &fakeArchiveService{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/groups/"+groupID.String()+"/standings", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if svc.gotGroupID != groupID {
		t.Errorf("group id = %s, want %s", svc.gotGroupID, groupID)
	}

	var body struct {
		Standings standings.Table `json:"standings"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Standings.Rows) != 2 || body.Standings.Rows[0].TeamName != "Lions" {
		t.Errorf("rows = %+v", body.Standings.Rows)
	}
}

func TestRebuildGroupHandler(t *testing.T) {
	svc := &fakeStandingsService{table: sampleTable()}
	router := newStandingsRouter(svc, &fakeArchiveService{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/groups/"+uuid.NewString()+"/standings/rebuild", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if svc.rebuildCalls != 1 {
		t.Errorf("rebuild calls = %d, want 1", svc.rebuildCalls)
	}
}

func TestRebuildGroupHandlerLogsAdmin(t *testing.T) {
	secret := []byte("test-secret")
	token, err := middleware.NewToken(secret, "ops", middleware.RoleAdmin, time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name      string
		auth      bool
		wantAdmin string
	}{
		{name: "authenticated admin", auth: true, wantAdmin: "ops"},
		{name: "no claims in context", auth: false, wantAdmin: "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			prev := slog.Default()
			slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, nil)))
			defer slog.SetDefault(prev)

			router := newStandingsRouter(&fakeStandingsService{table: sampleTable()}, &fakeArchiveService{})
			req := httptest.NewRequest(http.MethodPost, "/groups/"+uuid.NewString()+"/standings/rebuild", nil)
			if tt.auth {
				router = middleware.Authenticate(secret)(router)
				req.Header.Set("Authorization", "Bearer "+token)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d", rec.Code)
			}

			var entry struct {
				Msg    string `json:"msg"`
				Admin  string `json:"admin"`
				Action string `json:"action"`
				Teams  int    `json:"teams"`
			}
			if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
				t.Fatalf("log line %q: %v", buf.String(), err)
			}
			if entry.Msg != "admin action" || entry.Action != "rebuild_group_standings" {
				t.Errorf("entry = %+v", entry)
			}
			if entry.Admin != tt.wantAdmin || entry.Teams != 2 {
				t.Errorf("admin = %q teams = %d, want %q and 2", entry.Admin, entry.Teams, tt.wantAdmin)
			}
		})
	}
}

func TestArchiveStageHandler(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{name: "created", wantStatus: http.StatusCreated},
		{name: "storage not configured", err: services.ErrArchiveDisabled, wantStatus: http.StatusNotImplemented},
		{name: "unknown stage", err: services.ErrStageNotFound, wantStatus: http.StatusNotFound},
		{name: "upload failed", err: errors.New("boom"), wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newStandingsRouter(&fakeStandingsService{}, &fakeArchiveService{err: tt.err})
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/stages/"+uuid.NewString()+"/standings/archive", nil))

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestMapServiceErrorToHTTP_Validation(t *testing.T) {
	err := &services.ValidationError{Fields: map[string]string{"name": "is required"}}
	rec := httptest.NewRecorder()
	mapServiceErrorToHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil), err)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"name": "is required"`) {
		t.Errorf("body = %s", rec.Body.String())
	}
}
