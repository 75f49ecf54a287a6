package http

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jung-kurt/gofpdf"

	booking "train-station/internal/booking/domain"
	"train-station/internal/httpapi"
	"train-station/internal/observability/metrics"
)

func (h *OrderHandler) handleReceipt(w http.ResponseWriter, r *http.Request, userID string, id int64) {
	order, err := h.service.Get(r.Context(), userID, id)
	if err != nil {
		metrics.ObserveExport("pdf", err)
		respondOrderError(w, err)
		return
	}
	body, err := BuildReceiptPDF(order)
	metrics.ObserveExport("pdf", err)
	if err != nil {
		httpapi.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=order-%d-receipt.pdf", id))
	_, _ = w.Write(body)
	h.logAudit(r, "order.receipt", id, nil)
}

// BuildReceiptPDF renders a minimal PDF receipt for an order.
func BuildReceiptPDF(order *booking.Order) ([]byte, error) {
	if order == nil {
		return nil, errors.New("receipt: nil order")
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "Booking Receipt")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Order: %d", order.ID))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Reference: %s", order.Reference))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Booked: %s", order.CreatedAt.Format(time.RFC3339)))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Tickets: %d", len(order.Tickets)))
	pdf.Ln(8)

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(70, 6, "Journey", "1", 0, "C", false, 0, "")
	pdf.CellFormat(35, 6, "Cargo", "1", 0, "C", false, 0, "")
	pdf.CellFormat(35, 6, "Seat", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)
	for _, ticket := range order.Tickets {
		journey := ticket.JourneyDisplay
		if journey == "" {
			journey = fmt.Sprintf("#%d", ticket.JourneyID)
		}
		pdf.CellFormat(70, 6, journey, "1", 0, "L", false, 0, "")
		pdf.CellFormat(35, 6, fmt.Sprintf("%d", ticket.Cargo), "1", 0, "R", false, 0, "")
		pdf.CellFormat(35, 6, fmt.Sprintf("%d", ticket.Seat), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
