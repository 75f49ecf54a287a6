package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"train-station/internal/scheduling/application"
	scheduling "train-station/internal/scheduling/domain"
	"train-station/internal/scheduling/infrastructure/memory"
)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

func newTestHandler(t *testing.T) (*JourneyHandler, *memory.JourneyRepository, time.Time) {
	t.Helper()
	repo := memory.NewJourneyRepository()
	repo.SeedRoute(scheduling.RouteInfo{
		ID:          1,
		Source:      scheduling.StationInfo{ID: 1, Name: "Kyiv", Latitude: 50.44, Longitude: 30.52},
		Destination: scheduling.StationInfo{ID: 2, Name: "Lviv", Latitude: 49.84, Longitude: 24.03},
		Distance:    540,
	})
	repo.SeedTrain(scheduling.TrainInfo{ID: 1, Name: "Intercity 705", CargoNum: 10, PlacesInCargo: 100, TrainTypeID: 1})
	repo.SeedCrew(scheduling.CrewInfo{ID: 1, FirstName: "Olena", LastName: "Shevchenko"})
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	service, err := application.NewService(repo, fixedClock{now: now})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	handler, err := NewJourneyHandler(service, nil)
	if err != nil {
		t.Fatalf("NewJourneyHandler: %v", err)
	}
	return handler, repo, now
}

func TestJourneyHandlerCreateAndGet(t *testing.T) {
	handler, repo, _ := newTestHandler(t)

	body := `{"route":1,"train":1,"crew":[1],"departure_time":"2025-06-02T08:00:00Z","arrival_time":"2025-06-02T14:00:00Z"}`
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/journeys", strings.NewReader(body)))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", rec.Code, rec.Body.String())
	}

	var created struct {
		ID               int64 `json:"id"`
		TicketsAvailable int   `json:"tickets_available"`
		Route            struct {
			Source struct {
				Name string `json:"name"`
			} `json:"source"`
		} `json:"route"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	if created.TicketsAvailable != 1000 {
		t.Fatalf("expected 1000 available, got %d", created.TicketsAvailable)
	}
	if created.Route.Source.Name != "Kyiv" {
		t.Fatalf("unexpected source station %q", created.Route.Source.Name)
	}

	repo.AddTicket(created.ID, scheduling.Place{Cargo: 1, Seat: 1})

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/journeys/1", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}
	var detail struct {
		TicketsAvailable int `json:"tickets_available"`
		TakenPlaces      []struct {
			Cargo int `json:"cargo"`
			Seat  int `json:"seat"`
		} `json:"taken_places"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &detail); err != nil {
		t.Fatalf("decode detail: %v", err)
	}
	if detail.TicketsAvailable != 999 {
		t.Fatalf("expected 999 available, got %d", detail.TicketsAvailable)
	}
	if len(detail.TakenPlaces) != 1 || detail.TakenPlaces[0].Cargo != 1 || detail.TakenPlaces[0].Seat != 1 {
		t.Fatalf("unexpected taken places %+v", detail.TakenPlaces)
	}
}

func TestJourneyHandlerCreateRejectsBadTimes(t *testing.T) {
	handler, _, _ := newTestHandler(t)

	body := `{"route":1,"train":1,"departure_time":"2025-06-02T14:00:00Z","arrival_time":"2025-06-02T08:00:00Z"}`
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/journeys", strings.NewReader(body)))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp struct {
		Errors map[string]string `json:"errors"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, ok := resp.Errors["arrival_time"]; !ok {
		t.Fatalf("expected arrival_time error, got %v", resp.Errors)
	}
}

func TestJourneyHandlerCreateRejectsPastDeparture(t *testing.T) {
	handler, _, _ := newTestHandler(t)

	body := `{"route":1,"train":1,"departure_time":"2025-05-01T08:00:00Z","arrival_time":"2025-05-01T14:00:00Z"}`
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/journeys", strings.NewReader(body)))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "departure_time") {
		t.Fatalf("expected departure_time error, got %s", rec.Body.String())
	}
}

func TestJourneyHandlerUnknownReference(t *testing.T) {
	handler, _, _ := newTestHandler(t)

	body := `{"route":42,"train":1,"departure_time":"2025-06-02T08:00:00Z","arrival_time":"2025-06-02T14:00:00Z"}`
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/journeys", strings.NewReader(body)))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
}

func TestJourneyHandlerListShape(t *testing.T) {
	handler, _, _ := newTestHandler(t)

	body := `{"route":1,"train":1,"crew":[1],"departure_time":"2025-06-02T08:00:00Z","arrival_time":"2025-06-02T14:00:00Z"}`
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/journeys", strings.NewReader(body)))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/journeys", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	var page struct {
		Count   int `json:"count"`
		Results []struct {
			Route string   `json:"route"`
			Train string   `json:"train"`
			Crew  []string `json:"crew"`
		} `json:"results"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &page); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if page.Count != 1 || len(page.Results) != 1 {
		t.Fatalf("unexpected page %+v", page)
	}
	if page.Results[0].Route != "Kyiv - Lviv" {
		t.Fatalf("unexpected route display %q", page.Results[0].Route)
	}
	if len(page.Results[0].Crew) != 1 || page.Results[0].Crew[0] != "Olena Shevchenko" {
		t.Fatalf("unexpected crew %v", page.Results[0].Crew)
	}
}

func TestJourneyHandlerManifestExport(t *testing.T) {
	handler, repo, _ := newTestHandler(t)

	body := `{"route":1,"train":1,"crew":[1],"departure_time":"2025-06-02T08:00:00Z","arrival_time":"2025-06-02T14:00:00Z"}`
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/journeys", strings.NewReader(body)))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d", rec.Code)
	}
	repo.AddTicket(1, scheduling.Place{Cargo: 2, Seat: 14})

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/journeys/1/manifest.xlsx", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("manifest status = %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); !strings.Contains(got, "spreadsheetml") {
		t.Fatalf("unexpected content type %q", got)
	}
	if rec.Body.Len() == 0 {
		t.Fatal("empty manifest body")
	}
}

func TestJourneyHandlerRejectsPatch(t *testing.T) {
	handler, _, _ := newTestHandler(t)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPatch, "/api/v1/journeys/1", strings.NewReader(`{}`)))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("PATCH status = %d, want 405", rec.Code)
	}
}

func TestJourneyHandlerNotFound(t *testing.T) {
	handler, _, _ := newTestHandler(t)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/journeys/7", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
}
