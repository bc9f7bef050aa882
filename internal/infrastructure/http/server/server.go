// Package server provides the HTTP trigger surface for the prep plan engine.
// The surrounding system is expected to dispatch generation; this surface
// exposes the engine's use cases directly for that purpose.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/prepline/v1/internal/infrastructure/config"
	"github.com/prepline/v1/internal/ports/inbound"
	"github.com/prepline/v1/pkg/errors"
)

// Server wraps the HTTP server and its routes
type Server struct {
	httpServer *http.Server
	plans      inbound.PrepPlanService
	logger     *zap.Logger
}

// NewServer creates the HTTP server with all routes registered
func NewServer(cfg *config.Config, plans inbound.PrepPlanService, logger *zap.Logger) *Server {
	s := &Server{
		plans:  plans,
		logger: logger.Named("http"),
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1/prep-plans", func(r chi.Router) {
		r.Post("/", s.handleGenerate)
		r.Get("/", s.handleList)
		r.Route("/{planID}", func(r chi.Router) {
			r.Get("/", s.handleGet)
			r.Get("/shopping-list", s.handleShoppingList)
			r.Post("/purchases", s.handleMarkPurchased)
		})
	})

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
	return s
}

// Start begins serving; blocks until the server stops
func (s *Server) Start() error {
	s.logger.Info("HTTP server listening", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// generateRequest is the JSON body for plan generation
type generateRequest struct {
	ChefID    uuid.UUID `json:"chef_id"`
	StartDate string    `json:"start_date"`
	EndDate   string    `json:"end_date"`
	Notes     string    `json:"notes"`
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, errors.NewValidationError("invalid JSON body"))
		return
	}

	start, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		s.writeError(w, errors.NewValidationError("start_date must be an ISO date (YYYY-MM-DD)"))
		return
	}
	end, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		s.writeError(w, errors.NewValidationError("end_date must be an ISO date (YYYY-MM-DD)"))
		return
	}

	plan, err := s.plans.GeneratePrepPlan(r.Context(), inbound.GeneratePrepPlanCommand{
		ChefID:    req.ChefID,
		StartDate: start,
		EndDate:   end,
		Notes:     req.Notes,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, plan)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	chefID, err := uuid.Parse(r.URL.Query().Get("chef_id"))
	if err != nil {
		s.writeError(w, errors.NewValidationError("chef_id query parameter must be a UUID"))
		return
	}

	summaries, err := s.plans.ListPlans(r.Context(), chefID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"plans": summaries})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	planID, ok := s.parsePlanID(w, r)
	if !ok {
		return
	}

	plan, err := s.plans.GetPlan(r.Context(), planID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

func (s *Server) handleShoppingList(w http.ResponseWriter, r *http.Request) {
	planID, ok := s.parsePlanID(w, r)
	if !ok {
		return
	}

	switch groupBy := r.URL.Query().Get("group_by"); groupBy {
	case "", "date":
		grouped, err := s.plans.ShoppingListByDate(r.Context(), planID)
		if err != nil {
			s.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"by_date": grouped})
	case "category":
		groups, err := s.plans.ShoppingListByCategory(r.Context(), planID)
		if err != nil {
			s.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"by_category": groups})
	default:
		s.writeError(w, errors.NewValidationError("group_by must be \"date\" or \"category\""))
	}
}

// markPurchasedRequest is the JSON body for the purchase mutation
type markPurchasedRequest struct {
	ItemIDs       []uuid.UUID           `json:"item_ids"`
	PurchasedDate string                `json:"purchased_date,omitempty"`
	Quantities    map[uuid.UUID]float64 `json:"quantities,omitempty"`
}

func (s *Server) handleMarkPurchased(w http.ResponseWriter, r *http.Request) {
	planID, ok := s.parsePlanID(w, r)
	if !ok {
		return
	}

	var req markPurchasedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, errors.NewValidationError("invalid JSON body"))
		return
	}

	cmd := inbound.MarkPurchasedCommand{
		PlanID:  planID,
		ItemIDs: req.ItemIDs,
	}
	if req.PurchasedDate != "" {
		date, err := time.Parse("2006-01-02", req.PurchasedDate)
		if err != nil {
			s.writeError(w, errors.NewValidationError("purchased_date must be an ISO date (YYYY-MM-DD)"))
			return
		}
		cmd.PurchasedDate = &date
	}
	if len(req.Quantities) > 0 {
		cmd.Quantities = make(map[uuid.UUID]decimal.Decimal, len(req.Quantities))
		for id, qty := range req.Quantities {
			cmd.Quantities[id] = decimal.NewFromFloat(qty)
		}
	}

	result, err := s.plans.MarkPurchased(r.Context(), cmd)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) parsePlanID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	planID, err := uuid.Parse(chi.URLParam(r, "planID"))
	if err != nil {
		s.writeError(w, errors.NewValidationError("plan id must be a UUID"))
		return uuid.Nil, false
	}
	return planID, true
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	appErr := errors.Wrap(err, "request failed")
	if appErr.StatusCode() >= http.StatusInternalServerError {
		s.logger.Error("Request failed", zap.Error(appErr))
	}
	writeJSON(w, appErr.StatusCode(), errors.ToErrorResponse(appErr))
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
