package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"train-station/internal/audit"
	"train-station/internal/auth"
	"train-station/internal/booking/application"
	booking "train-station/internal/booking/domain"
	bookingrepo "train-station/internal/booking/infrastructure/postgres"
	"train-station/internal/httpapi"
	"train-station/internal/validation"
)

const ordersPrefix = "/api/v1/orders"

type ticketRequest struct {
	Cargo   int   `json:"cargo"`
	Seat    int   `json:"seat"`
	Journey int64 `json:"journey"`
}

type orderWriteRequest struct {
	Tickets []ticketRequest `json:"tickets"`
}

type ticketListDTO struct {
	ID      int64  `json:"id"`
	Cargo   int    `json:"cargo"`
	Seat    int    `json:"seat"`
	Journey string `json:"journey"`
}

type ticketDetailDTO struct {
	ID      int64 `json:"id"`
	Cargo   int   `json:"cargo"`
	Seat    int   `json:"seat"`
	Journey int64 `json:"journey"`
}

type orderListDTO struct {
	ID        int64           `json:"id"`
	Reference string          `json:"reference"`
	CreatedAt time.Time       `json:"created_at"`
	Tickets   []ticketListDTO `json:"tickets"`
}

type orderDetailDTO struct {
	ID        int64             `json:"id"`
	Reference string            `json:"reference"`
	CreatedAt time.Time         `json:"created_at"`
	Tickets   []ticketDetailDTO `json:"tickets"`
}

// OrderHandler serves order booking endpoints. Every operation acts on
// the authenticated user's own orders.
type OrderHandler struct {
	service     *application.Service
	auditLogger audit.Logger
}

// NewOrderHandler constructs an OrderHandler.
func NewOrderHandler(service *application.Service, auditLogger audit.Logger) (*OrderHandler, error) {
	if service == nil {
		return nil, errors.New("order handler: nil service")
	}
	return &OrderHandler{service: service, auditLogger: auditLogger}, nil
}

// ServeHTTP routes order requests.
func (h *OrderHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	if userID == "" {
		httpapi.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, ordersPrefix), "/")
	switch {
	case rest == "" && r.Method == http.MethodGet:
		h.handleList(w, r, userID)
		return
	case rest == "" && r.Method == http.MethodPost:
		h.handleCreate(w, r, userID)
		return
	case rest == "":
		httpapi.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	idPart, sub, hasSub := strings.Cut(rest, "/")
	id, err := strconv.ParseInt(idPart, 10, 64)
	if err != nil || id <= 0 {
		httpapi.WriteError(w, http.StatusNotFound, "not found")
		return
	}
	if hasSub {
		if sub == "receipt.pdf" && r.Method == http.MethodGet {
			h.handleReceipt(w, r, userID, id)
			return
		}
		httpapi.WriteError(w, http.StatusNotFound, "not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.handleGet(w, r, userID, id)
	case http.MethodDelete:
		h.handleDelete(w, r, userID, id)
	default:
		httpapi.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (h *OrderHandler) handleList(w http.ResponseWriter, r *http.Request, userID string) {
	query := httpapi.ParseListQuery(r, bookingrepo.OrderSortFields, "")
	orders, count, err := h.service.List(r.Context(), userID, booking.ListParams{
		Limit:   query.Limit,
		Offset:  query.Offset,
		OrderBy: query.OrderBy,
		Desc:    query.OrderDir == "DESC",
	})
	if err != nil {
		httpapi.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}
	results := make([]orderListDTO, 0, len(orders))
	for _, order := range orders {
		results = append(results, toOrderListDTO(order))
	}
	httpapi.WriteJSON(w, http.StatusOK, httpapi.Page{Count: count, Results: results})
}

func (h *OrderHandler) handleCreate(w http.ResponseWriter, r *http.Request, userID string) {
	var req orderWriteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpapi.WriteError(w, http.StatusBadRequest, "invalid json")
		return
	}
	tickets := make([]booking.Ticket, 0, len(req.Tickets))
	for _, ticket := range req.Tickets {
		tickets = append(tickets, booking.Ticket{
			Cargo:     ticket.Cargo,
			Seat:      ticket.Seat,
			JourneyID: ticket.Journey,
		})
	}
	order, err := h.service.Create(r.Context(), userID, tickets)
	if err != nil {
		respondOrderError(w, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusCreated, toOrderDetailDTO(*order))
	h.logAudit(r, "order.create", order.ID, map[string]any{
		"reference": order.Reference,
		"tickets":   len(order.Tickets),
	})
}

func (h *OrderHandler) handleGet(w http.ResponseWriter, r *http.Request, userID string, id int64) {
	order, err := h.service.Get(r.Context(), userID, id)
	if err != nil {
		respondOrderError(w, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, toOrderDetailDTO(*order))
}

func (h *OrderHandler) handleDelete(w http.ResponseWriter, r *http.Request, userID string, id int64) {
	if err := h.service.Delete(r.Context(), userID, id); err != nil {
		respondOrderError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
	h.logAudit(r, "order.delete", id, nil)
}

func (h *OrderHandler) logAudit(r *http.Request, action string, id int64, meta map[string]any) {
	if h.auditLogger == nil {
		return
	}
	payload, _ := json.Marshal(meta)
	_ = h.auditLogger.Log(r.Context(), audit.Entry{
		Actor:        auth.UserIDFromContext(r.Context()),
		Role:         string(auth.RoleFromContext(r.Context())),
		Action:       action,
		ResourceType: "order",
		ResourceID:   strconv.FormatInt(id, 10),
		Metadata:     payload,
		IP:           audit.ClientIP(r),
		UserAgent:    r.UserAgent(),
	})
}

func respondOrderError(w http.ResponseWriter, err error) {
	switch {
	case err == nil:
		return
	case errors.Is(err, booking.ErrNotFound):
		httpapi.WriteError(w, http.StatusNotFound, "not found")
	case errors.Is(err, booking.ErrSeatTaken):
		httpapi.WriteError(w, http.StatusConflict, "one of the requested places is already taken")
	case errors.Is(err, booking.ErrUnknownJourney):
		httpapi.WriteFieldErrors(w, validation.FieldErrors{"tickets": "unknown journey"})
	default:
		if fieldErrs, ok := validation.AsFieldErrors(err); ok {
			httpapi.WriteFieldErrors(w, fieldErrs)
			return
		}
		httpapi.WriteError(w, http.StatusInternalServerError, "internal error")
	}
}

func toOrderListDTO(order booking.Order) orderListDTO {
	tickets := make([]ticketListDTO, 0, len(order.Tickets))
	for _, ticket := range order.Tickets {
		tickets = append(tickets, ticketListDTO{
			ID:      ticket.ID,
			Cargo:   ticket.Cargo,
			Seat:    ticket.Seat,
			Journey: ticket.JourneyDisplay,
		})
	}
	return orderListDTO{
		ID:        order.ID,
		Reference: order.Reference,
		CreatedAt: order.CreatedAt,
		Tickets:   tickets,
	}
}

func toOrderDetailDTO(order booking.Order) orderDetailDTO {
	tickets := make([]ticketDetailDTO, 0, len(order.Tickets))
	for _, ticket := range order.Tickets {
		tickets = append(tickets, ticketDetailDTO{
			ID:      ticket.ID,
			Cargo:   ticket.Cargo,
			Seat:    ticket.Seat,
			Journey: ticket.JourneyID,
		})
	}
	return orderDetailDTO{
		ID:        order.ID,
		Reference: order.Reference,
		CreatedAt: order.CreatedAt,
		Tickets:   tickets,
	}
}
