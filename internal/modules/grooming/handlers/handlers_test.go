package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rosehill/paddock/internal/domain"
	"github.com/rosehill/paddock/internal/events"
	"github.com/rosehill/paddock/internal/modules/catalog"
	"github.com/rosehill/paddock/internal/modules/grooming"
	paddocktest "github.com/rosehill/paddock/internal/testing"
)

type stubHorses struct {
	horses map[string]domain.Horse
}

func (s *stubHorses) Get(id string) (*domain.Horse, error) {
	if h, ok := s.horses[id]; ok {
		return &h, nil
	}
	return nil, nil
}

func setupHandler(t *testing.T, now time.Time) (*Handler, *events.Bus) {
	t.Helper()

	db, cleanup := paddocktest.NewTestDB(t, "ledger")
	t.Cleanup(cleanup)

	cat, err := catalog.Load()
	require.NoError(t, err)

	foal := paddocktest.NewTestHorse("foal-1", 2, now)
	horses := &stubHorses{horses: map[string]domain.Horse{"foal-1": foal}}

	logger := zerolog.Nop()
	repo := grooming.NewRepository(db.Conn(), logger)
	service := grooming.NewService(repo, horses, cat, time.UTC, logger)
	bus := events.NewBus(logger)

	return NewHandler(service, domain.FixedClock{At: now}, bus, logger), bus
}

func postJSON(t *testing.T, router chi.Router, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest("POST", path, bytes.NewReader(payload))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHandleInteractRecordsAndEmits(t *testing.T) {
	now := paddocktest.Day(2026, 4, 10, 12)
	handler, bus := setupHandler(t, now)

	var emitted *events.Event
	bus.Subscribe(events.InteractionRecorded, func(event *events.Event) {
		emitted = event
	})

	router := chi.NewRouter()
	handler.RegisterRoutes(router)

	w := postJSON(t, router, "/grooms/interact", map[string]interface{}{
		"foal_id":          "foal-1",
		"groom_id":         "groom-9",
		"interaction_type": "trust_building",
		"duration":         20,
	})

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]map[string]interface{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	data := response["data"]
	assert.Equal(t, "foal-1", data["horse_id"])
	assert.Equal(t, float64(1), data["total_interactions"])
	assert.Equal(t, float64(1), data["streak_days"])
	assert.Equal(t, "2026-04-10", data["day"])

	require.NotNil(t, emitted, "expected INTERACTION_RECORDED on the bus")
	assert.Equal(t, "trust_building", emitted.Data["interaction_type"])
}

func TestHandleInteractDailyLimitCode(t *testing.T) {
	now := paddocktest.Day(2026, 4, 10, 12)
	handler, _ := setupHandler(t, now)

	router := chi.NewRouter()
	handler.RegisterRoutes(router)

	body := map[string]interface{}{
		"foal_id":          "foal-1",
		"groom_id":         "groom-9",
		"interaction_type": "trust_building",
		"duration":         20,
	}
	require.Equal(t, http.StatusOK, postJSON(t, router, "/grooms/interact", body).Code)

	w := postJSON(t, router, "/grooms/interact", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, string(domain.KindDailyLimit), response["code"])
}

func TestHandleInteractIneligibleTaskCode(t *testing.T) {
	now := paddocktest.Day(2026, 4, 10, 12)
	handler, _ := setupHandler(t, now)

	router := chi.NewRouter()
	handler.RegisterRoutes(router)

	// hoof_handling opens at day 7; the fixture foal is 2 days old
	w := postJSON(t, router, "/grooms/interact", map[string]interface{}{
		"foal_id":          "foal-1",
		"groom_id":         "groom-9",
		"interaction_type": "hoof_handling",
		"duration":         20,
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, string(domain.KindTaskNotEligible), response["code"])
}

func TestHandleInteractValidation(t *testing.T) {
	now := paddocktest.Day(2026, 4, 10, 12)
	handler, _ := setupHandler(t, now)

	router := chi.NewRouter()
	handler.RegisterRoutes(router)

	w := postJSON(t, router, "/grooms/interact", map[string]interface{}{
		"foal_id":          "foal-1",
		"groom_id":         "groom-9",
		"interaction_type": "trust_building",
		"duration":         0,
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, string(domain.KindValidation), response["code"])
}

func TestHandleCareEvent(t *testing.T) {
	now := paddocktest.Day(2026, 4, 10, 12)
	handler, _ := setupHandler(t, now)

	router := chi.NewRouter()
	handler.RegisterRoutes(router)

	w := postJSON(t, router, "/grooms/care-events", map[string]interface{}{
		"foal_id": "foal-1",
		"kind":    "stress",
		"note":    "thunderstorm",
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	w = postJSON(t, router, "/grooms/care-events", map[string]interface{}{
		"foal_id": "foal-1",
		"kind":    "panic",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
