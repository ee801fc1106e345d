package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"momodash/internal/core"
	"momodash/internal/dashboard"
	"momodash/internal/log"
)

// uiAction runs one user interaction against the session's controller.
type uiAction func(ctx context.Context, r *http.Request, c *dashboard.Controller) error

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.started).String(),
	})
}

// handleReady reports whether the backend is reachable through the circuit
// breaker, along with session and rate limiter state.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]interface{})

	if s.api != nil {
		state := s.api.BreakerState()
		checks["api_circuit"] = state
		if state == "open" {
			status = "degraded"
			httpStatus = http.StatusServiceUnavailable
		}
	} else {
		checks["api_circuit"] = "not_configured"
	}

	if s.sessions != nil {
		checks["sessions"] = s.sessions.Size()
	}
	checks["rate_limiter"] = map[string]interface{}{
		"active_clients": s.limiter.ActiveClients(),
		"rejected":       s.limiter.Rejected(),
	}
	checks["suspicious_requests"] = s.detector.SuspiciousRequests()

	w.WriteHeader(httpStatus)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	})
}

// handleIndex starts a fresh dashboard for the browser, loads it and renders
// the whole page.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := log.FromContext(ctx)

	sess, err := s.sessions.Start(sessionID(r))
	if err != nil {
		logger.ErrorContext(ctx, "Failed to start session", log.FieldError, err)
		InternalServerError("dashboard unavailable").Write(w)
		return
	}
	setSessionCookie(w, r, sess.ID, s.sessionTTL)

	if err := sess.Controller.Init(ctx); err != nil {
		logger.WarnContext(ctx, "Dashboard loaded with errors",
			log.FieldSessionID, sess.ID,
			log.FieldError, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if err := sess.Controller.RenderPage(w); err != nil {
		logger.ErrorContext(ctx, "Page render failed", log.FieldError, err)
	}
}

// ui wraps an action with session lookup and turns what it changed into
// out-of-band fragments and alert triggers.
func (s *Server) ui(op string, action uiAction) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		logger := log.FromContext(ctx).With(log.FieldOperation, op)

		sess, ok := s.sessions.Get(sessionID(r))
		if !ok {
			logger.InfoContext(ctx, "No live session")
			if isHTMX(r) {
				NewHTMXResponse().Refresh().Write(w)
				return
			}
			ErrorResponse(http.StatusUnauthorized, "session expired, reload the page").Write(w)
			return
		}

		ctrl := sess.Controller
		mark := ctrl.Mark()
		if err := action(ctx, r, ctrl); err != nil {
			var reqErr *requestError
			switch {
			case errors.As(err, &reqErr):
				BadRequestError(reqErr.Error()).Write(w)
			case errors.Is(err, dashboard.ErrUnknownSection):
				NotFoundError(err.Error()).Write(w)
			default:
				logger.ErrorContext(ctx, "UI action failed", log.FieldError, err)
				InternalServerError("request failed").Write(w)
			}
			return
		}

		update, err := ctrl.UpdatesSince(mark)
		if err != nil {
			logger.ErrorContext(ctx, "Rendering updates failed", log.FieldError, err)
			InternalServerError("render failed").Write(w)
			return
		}
		logger.DebugContext(ctx, "UI update",
			log.FieldSessionID, sess.ID,
			log.FieldCount, len(update.Fragments))

		NewHTMXResponse().
			TriggerAlert(update.Alerts...).
			BodyHTML(update.HTML()).
			Write(w)
	}
}

func (s *Server) overview(ctx context.Context, r *http.Request, c *dashboard.Controller) error {
	c.FetchFinancialOverview(ctx)
	return nil
}

func (s *Server) transactions(ctx context.Context, r *http.Request, c *dashboard.Controller) error {
	page, err := parsePage(r)
	if err != nil {
		return err
	}
	c.FetchTransactions(ctx, page, core.ParseFilters(r.URL.Query()))
	return nil
}

// search keeps the query as typed apart from control characters; the
// length threshold counts surrounding spaces.
func (s *Server) search(ctx context.Context, r *http.Request, c *dashboard.Controller) error {
	c.OnSearchInput(ctx, stripControl(r.URL.Query().Get("q")))
	return nil
}

func (s *Server) categoryFilter(ctx context.Context, r *http.Request, c *dashboard.Controller) error {
	c.OnCategoryChange(ctx, sanitizeInput(r.URL.Query().Get("category")))
	return nil
}

func (s *Server) dateFilter(ctx context.Context, r *http.Request, c *dashboard.Controller) error {
	q := r.URL.Query()
	c.OnDateChange(ctx, sanitizeInput(q.Get("start_date")), sanitizeInput(q.Get("end_date")))
	return nil
}

func (s *Server) prevPage(ctx context.Context, r *http.Request, c *dashboard.Controller) error {
	c.OnPrevPage(ctx)
	return nil
}

func (s *Server) nextPage(ctx context.Context, r *http.Request, c *dashboard.Controller) error {
	c.OnNextPage(ctx)
	return nil
}

func (s *Server) navigate(ctx context.Context, r *http.Request, c *dashboard.Controller) error {
	return c.Navigate(chi.URLParam(r, "section"))
}
