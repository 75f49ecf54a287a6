package http

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/xuri/excelize/v2"

	"train-station/internal/httpapi"
	"train-station/internal/observability/metrics"
	scheduling "train-station/internal/scheduling/domain"
)

func (h *JourneyHandler) handleManifest(w http.ResponseWriter, r *http.Request, id int64) {
	detail, err := h.service.Get(r.Context(), id)
	if err != nil {
		metrics.ObserveExport("xlsx", err)
		respondJourneyError(w, err)
		return
	}
	body, err := BuildManifestXLSX(detail)
	metrics.ObserveExport("xlsx", err)
	if err != nil {
		httpapi.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=journey-%d-manifest.xlsx", id))
	_, _ = w.Write(body)
	h.logAudit(r, "journey.manifest", id)
}

// BuildManifestXLSX renders the passenger manifest for a journey: a
// summary sheet plus one row per booked place.
func BuildManifestXLSX(detail *scheduling.Detail) ([]byte, error) {
	if detail == nil {
		return nil, errors.New("manifest: nil journey")
	}
	f := excelize.NewFile()
	summarySheet := "summary"
	placesSheet := "places"
	f.SetSheetName("Sheet1", summarySheet)
	f.NewSheet(placesSheet)

	_ = f.SetCellValue(summarySheet, "A1", "Journey Manifest")
	_ = f.SetCellValue(summarySheet, "A3", "Route")
	_ = f.SetCellValue(summarySheet, "B3", detail.Route.Display())
	_ = f.SetCellValue(summarySheet, "A4", "Train")
	_ = f.SetCellValue(summarySheet, "B4", detail.Train.Name)
	_ = f.SetCellValue(summarySheet, "A5", "Departure")
	_ = f.SetCellValue(summarySheet, "B5", detail.DepartureTime.Format(time.RFC3339))
	_ = f.SetCellValue(summarySheet, "A6", "Arrival")
	_ = f.SetCellValue(summarySheet, "B6", detail.ArrivalTime.Format(time.RFC3339))
	_ = f.SetCellValue(summarySheet, "A7", "Capacity")
	_ = f.SetCellValue(summarySheet, "B7", detail.Train.CargoNum*detail.Train.PlacesInCargo)
	_ = f.SetCellValue(summarySheet, "A8", "Tickets Sold")
	_ = f.SetCellValue(summarySheet, "B8", len(detail.TakenPlaces))
	_ = f.SetCellValue(summarySheet, "A9", "Tickets Available")
	_ = f.SetCellValue(summarySheet, "B9", detail.TicketsAvailable)

	row := 11
	_ = f.SetCellValue(summarySheet, fmt.Sprintf("A%d", row), "Crew")
	for _, member := range detail.Crew {
		_ = f.SetCellValue(summarySheet, fmt.Sprintf("B%d", row), member.FullName())
		row++
	}

	_ = f.SetCellValue(placesSheet, "A1", "Cargo")
	_ = f.SetCellValue(placesSheet, "B1", "Seat")
	for i, place := range detail.TakenPlaces {
		_ = f.SetCellValue(placesSheet, fmt.Sprintf("A%d", i+2), place.Cargo)
		_ = f.SetCellValue(placesSheet, fmt.Sprintf("B%d", i+2), place.Seat)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
