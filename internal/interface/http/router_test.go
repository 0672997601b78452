package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yuefen/wearwise/internal/domain/auth"
	"github.com/yuefen/wearwise/internal/domain/catalog"
	"github.com/yuefen/wearwise/internal/domain/closet"
	"github.com/yuefen/wearwise/internal/domain/packing"
	"github.com/yuefen/wearwise/internal/domain/search"
	"github.com/yuefen/wearwise/internal/domain/stylist"
	"github.com/yuefen/wearwise/internal/infra/config"
	apperrors "github.com/yuefen/wearwise/pkg/errors"
)

const testToken = "valid-token"

func TestRouter_SuggestDefaultsTopN(t *testing.T) {
	outfits := []stylist.Outfit{{ID: "a+b+c", Score: 0.87}}
	deps := newStubDeps()
	deps.stylist.suggestFn = func(ctx context.Context, userID int64, snap catalog.Snapshot, reqCtx stylist.Context, topN int) ([]stylist.Outfit, error) {
		require.Equal(t, int64(42), userID)
		require.Equal(t, 3, topN)
		require.Equal(t, stylist.MoodCalm, reqCtx.Mood)
		return outfits, nil
	}

	body := `{"context":{"mood":"calm","event":"office","timeOfDay":"morning","weather":{"tempC":12}}}`
	rec := performRequest(http.MethodPost, "/api/v1/outfits/suggest", body, testToken, newRouterUnderTest(t, deps))
	require.Equal(t, http.StatusOK, rec.Code)

	var got struct {
		Outfits []stylist.Outfit `json:"outfits"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, outfits, got.Outfits)
}

func TestRouter_SuggestRejectsUnknownMood(t *testing.T) {
	body := `{"context":{"mood":"melancholy","event":"office","timeOfDay":"morning"}}`
	rec := performRequest(http.MethodPost, "/api/v1/outfits/suggest", body, testToken, newRouterUnderTest(t, newStubDeps()))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	errBody := decodeErrorBody(t, rec.Body.Bytes())
	require.Equal(t, "invalid_request", errBody["error"]["code"])
	require.Contains(t, errBody["error"]["message"], "mood")
}

func TestRouter_RequiresBearerToken(t *testing.T) {
	rec := performRequest(http.MethodPost, "/api/v1/outfits/suggest", `{}`, "", newRouterUnderTest(t, newStubDeps()))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_RecordWearConflict(t *testing.T) {
	deps := newStubDeps()
	deps.tracker.recordFn = func(ctx context.Context, userID int64, itemIDs []string, at time.Time) error {
		return apperrors.Wrap("stale_wear_record", "wear record regressed", nil)
	}

	body := `{"itemIds":["tee-1"],"at":"2026-08-20T09:00:00Z"}`
	rec := performRequest(http.MethodPost, "/api/v1/wear", body, testToken, newRouterUnderTest(t, deps))
	require.Equal(t, http.StatusConflict, rec.Code)

	errBody := decodeErrorBody(t, rec.Body.Bytes())
	require.Equal(t, "stale_wear_record", errBody["error"]["code"])
}

func TestRouter_PackInsufficientWardrobe(t *testing.T) {
	deps := newStubDeps()
	deps.planner.packFn = func(ctx context.Context, userID int64, snap catalog.Snapshot, contexts []stylist.Context, tripDays int) (packing.Plan, error) {
		return packing.Plan{}, apperrors.Wrap("insufficient_wardrobe", "no outfit covers day 2", nil)
	}

	body := `{"tripDays":3,"contexts":[{"mood":"calm","event":"casual","timeOfDay":"morning"}]}`
	rec := performRequest(http.MethodPost, "/api/v1/trips/pack", body, testToken, newRouterUnderTest(t, deps))
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	errBody := decodeErrorBody(t, rec.Body.Bytes())
	require.Equal(t, "insufficient_wardrobe", errBody["error"]["code"])
}

func TestRouter_ListItems(t *testing.T) {
	deps := newStubDeps()
	deps.closet.listFn = func(ctx context.Context, userID int64) ([]catalog.Item, error) {
		return []catalog.Item{{ID: "tee-1", Name: "White Tee", Kind: catalog.KindTop}}, nil
	}

	rec := performRequest(http.MethodGet, "/api/v1/items", "", testToken, newRouterUnderTest(t, deps))
	require.Equal(t, http.StatusOK, rec.Code)

	var got struct {
		Items []itemView `json:"items"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got.Items, 1)
	require.Equal(t, "tee-1", got.Items[0].ID)
}

func TestRouter_Healthz(t *testing.T) {
	rec := performRequest(http.MethodGet, "/healthz", "", "", newRouterUnderTest(t, newStubDeps()))
	require.Equal(t, http.StatusOK, rec.Code)
}

func performRequest(method, path, body, token string, server *http.Server) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, req)
	return rec
}

type stubDeps struct {
	closet  *stubCloset
	stylist *stubStylist
	tracker *stubTracker
	planner *stubPlanner
	search  *stubSearch
	auth    *stubAuth
}

func newStubDeps() *stubDeps {
	return &stubDeps{
		closet:  &stubCloset{},
		stylist: &stubStylist{},
		tracker: &stubTracker{},
		planner: &stubPlanner{},
		search:  &stubSearch{},
		auth:    &stubAuth{},
	}
}

func newRouterUnderTest(t *testing.T, deps *stubDeps) *http.Server {
	t.Helper()
	handler := NewHandler(deps.closet, deps.stylist, deps.tracker, deps.planner, deps.search, deps.auth, nil, newTestLogger())
	cfg := &config.Config{
		HTTP: config.HTTPConfig{
			Address:      ":0",
			ReadTimeout:  time.Second,
			WriteTimeout: time.Second,
		},
	}
	return NewRouter(cfg, handler, deps.auth)
}

func newTestLogger() *slog.Logger {
	handler := slog.NewTextHandler(io.Discard, nil)
	return slog.New(handler)
}

func decodeErrorBody(t *testing.T, raw []byte) map[string]map[string]string {
	t.Helper()
	var body map[string]map[string]string
	require.NoError(t, json.Unmarshal(raw, &body))
	return body
}

type stubCloset struct {
	listFn func(ctx context.Context, userID int64) ([]catalog.Item, error)
}

func (s *stubCloset) Create(ctx context.Context, userID int64, in closet.ItemInput) (catalog.Item, error) {
	return catalog.Item{}, nil
}

func (s *stubCloset) Update(ctx context.Context, userID int64, itemID string, in closet.ItemInput) (catalog.Item, error) {
	return catalog.Item{}, nil
}

func (s *stubCloset) Delete(ctx context.Context, userID int64, itemID string) error { return nil }

func (s *stubCloset) Get(ctx context.Context, userID int64, itemID string) (catalog.Item, error) {
	return catalog.Item{}, nil
}

func (s *stubCloset) List(ctx context.Context, userID int64) ([]catalog.Item, error) {
	if s.listFn != nil {
		return s.listFn(ctx, userID)
	}
	return nil, nil
}

func (s *stubCloset) Snapshot(ctx context.Context, userID int64) (catalog.Snapshot, error) {
	return catalog.Snapshot{}, nil
}

func (s *stubCloset) AttachImage(ctx context.Context, userID int64, itemID string, data []byte, mimeType string) (catalog.Item, error) {
	return catalog.Item{}, nil
}

type stubStylist struct {
	suggestFn func(ctx context.Context, userID int64, snap catalog.Snapshot, reqCtx stylist.Context, topN int) ([]stylist.Outfit, error)
}

func (s *stubStylist) Suggest(ctx context.Context, userID int64, snap catalog.Snapshot, reqCtx stylist.Context, topN int) ([]stylist.Outfit, error) {
	if s.suggestFn != nil {
		return s.suggestFn(ctx, userID, snap, reqCtx, topN)
	}
	return nil, nil
}

type stubTracker struct {
	recordFn func(ctx context.Context, userID int64, itemIDs []string, at time.Time) error
}

func (s *stubTracker) FreshnessAll(ctx context.Context, userID int64, itemIDs []string, now time.Time) (map[string]float64, error) {
	return map[string]float64{}, nil
}

func (s *stubTracker) RecordWorn(ctx context.Context, userID int64, itemIDs []string, at time.Time) error {
	if s.recordFn != nil {
		return s.recordFn(ctx, userID, itemIDs, at)
	}
	return nil
}

func (s *stubTracker) WornToday(ctx context.Context, userID int64, now time.Time) ([]string, error) {
	return nil, nil
}

type stubPlanner struct {
	packFn func(ctx context.Context, userID int64, snap catalog.Snapshot, contexts []stylist.Context, tripDays int) (packing.Plan, error)
}

func (s *stubPlanner) Pack(ctx context.Context, userID int64, snap catalog.Snapshot, contexts []stylist.Context, tripDays int) (packing.Plan, error) {
	if s.packFn != nil {
		return s.packFn(ctx, userID, snap, contexts, tripDays)
	}
	return packing.Plan{}, nil
}

type stubSearch struct{}

func (s *stubSearch) Similar(ctx context.Context, userID int64, req search.Request) ([]search.Match, error) {
	return nil, nil
}

func (s *stubSearch) IndexItem(ctx context.Context, userID int64, item catalog.Item) error {
	return nil
}

func (s *stubSearch) RemoveItem(ctx context.Context, userID int64, itemID string) error {
	return nil
}

type stubAuth struct{}

func (s *stubAuth) Register(ctx context.Context, req auth.RegisterRequest) (auth.UserView, error) {
	return auth.UserView{}, nil
}

func (s *stubAuth) Login(ctx context.Context, req auth.LoginRequest) (auth.LoginResponse, error) {
	return auth.LoginResponse{}, nil
}

func (s *stubAuth) GoogleAuthURL(ctx context.Context, state, codeChallenge string) (string, error) {
	return "", nil
}

func (s *stubAuth) GoogleCallback(ctx context.Context, code, codeVerifier string) (auth.LoginResponse, error) {
	return auth.LoginResponse{}, nil
}

func (s *stubAuth) ValidateToken(ctx context.Context, token string) (auth.Claims, error) {
	if token != testToken {
		return auth.Claims{}, apperrors.Wrap("invalid_token", "token invalid", nil)
	}
	return auth.Claims{UserID: 42, Email: "user@example.com", TokenType: "access"}, nil
}

func (s *stubAuth) Refresh(ctx context.Context, refreshToken string) (auth.LoginResponse, error) {
	return auth.LoginResponse{}, nil
}

func (s *stubAuth) Profile(ctx context.Context, userID int64) (auth.UserView, error) {
	return auth.UserView{}, nil
}

func (s *stubAuth) Logout(ctx context.Context, userID int64) error { return nil }
