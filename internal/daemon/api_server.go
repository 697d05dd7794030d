package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"lectio/internal/api"
	"lectio/internal/artwork"
	"lectio/internal/devotion"
	"lectio/internal/logging"
	"lectio/internal/scripture"
	"lectio/internal/services"
)

const (
	defaultHistoryLimit = 30
	maxHistoryLimit     = 365
	requestIDHeader     = "X-Request-ID"
)

type apiServer struct {
	bind   string
	svc    Service
	daemon *Daemon
	logger *slog.Logger

	mu       sync.Mutex
	listener net.Listener
	server   *http.Server
	// runCtx ends event streams, which Shutdown does not track once hijacked.
	runCtx context.Context
}

func newAPIServer(bind string, svc Service, d *Daemon, logger *slog.Logger) *apiServer {
	srv := &apiServer{
		bind:   strings.TrimSpace(bind),
		svc:    svc,
		daemon: d,
		logger: logger,
		runCtx: context.Background(),
	}
	srv.server = &http.Server{
		Handler:           srv.routes(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      2 * time.Minute,
		IdleTimeout:       60 * time.Second,
	}
	return srv
}

func (s *apiServer) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/status", s.handleStatus)
	mux.HandleFunc("/api/today", s.handleToday)
	mux.HandleFunc("/api/scripture", s.handleScripture)
	mux.HandleFunc("/api/scripture/cache", s.handleScriptureCache)
	mux.HandleFunc("/api/search", s.handleSearch)
	mux.HandleFunc("/api/art", s.handleArt)
	mux.HandleFunc("/api/saint", s.handleSaint)
	mux.HandleFunc("/api/history", s.handleHistory)
	mux.HandleFunc("/api/events", s.handleEvents)
	return s.withRequestID(mux)
}

func (s *apiServer) start(ctx context.Context) error {
	if s.bind == "" {
		return errors.New("api listen: paths.api_bind is empty")
	}
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.mu.Lock()
	s.listener = listener
	s.runCtx = ctx
	s.mu.Unlock()

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log().Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.log().Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

func (s *apiServer) stop() {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = s.server.Shutdown(shutdownCtx)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

func (s *apiServer) address() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *apiServer) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(requestIDHeader))
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(services.WithRequestID(r.Context(), id)))
	})
}

func (s *apiServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	if !s.requireGet(w, r) {
		return
	}
	svcStatus := s.svc.Status()
	payload := api.Status{
		Liturgy:        api.FromSnapshot(svcStatus.Liturgy),
		ScriptureCache: api.FromScriptureStats(svcStatus.Scripture),
	}
	if svcStatus.Images != nil {
		images := api.FromImageStats("", *svcStatus.Images)
		payload.ImageCache = &images
	}
	if s.daemon != nil {
		st := s.daemon.Status()
		payload.Running = st.Running
		payload.PID = st.PID
		payload.ArchivePath = st.ArchivePath
		payload.LockFilePath = st.LockFilePath
	}
	s.writeJSON(w, http.StatusOK, payload)
}

func (s *apiServer) handleToday(w http.ResponseWriter, r *http.Request) {
	if !s.requireGet(w, r) {
		return
	}
	day, err := s.svc.GetTodaysLiturgy(r.Context())
	if err != nil && s.svc.LiturgySnapshot().Day == nil {
		s.writeServiceError(w, r, err)
		return
	}
	if err != nil {
		logging.WarnWithContext(logging.WithContext(r.Context(), s.log()), "serving stale liturgical day", "liturgy_stale",
			logging.Error(err),
			logging.String(logging.FieldImpact, "readings may be from a previous day"),
		)
		w.Header().Set("Warning", `110 - "stale liturgical day"`)
	}
	s.writeJSON(w, http.StatusOK, api.FromLiturgicalDay(day, s.svc.LiturgySnapshot().Archived))
}

func (s *apiServer) handleScripture(w http.ResponseWriter, r *http.Request) {
	if !s.requireGet(w, r) {
		return
	}
	citation := strings.TrimSpace(r.URL.Query().Get("ref"))
	if citation == "" {
		s.writeError(w, http.StatusBadRequest, "ref is required")
		return
	}
	reading, err := s.svc.GetScriptureText(r.Context(), citation)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.ScriptureResponse{Reading: api.FromReading(reading)})
}

// handleScriptureCache drops every cached passage so the next lookups refetch.
func (s *apiServer) handleScriptureCache(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	dropped := s.svc.ClearScriptureCache()
	s.log().Info("scripture cache cleared", logging.Int("entries", dropped))
	s.writeJSON(w, http.StatusOK, api.CacheClearResponse{Dropped: dropped})
}

func (s *apiServer) handleSearch(w http.ResponseWriter, r *http.Request) {
	if !s.requireGet(w, r) {
		return
	}
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		s.writeError(w, http.StatusBadRequest, "q is required")
		return
	}
	results, err := s.svc.SearchScripture(r.Context(), query)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.SearchResponse{Query: query, Results: api.FromReadings(results)})
}

func (s *apiServer) handleArt(w http.ResponseWriter, r *http.Request) {
	if !s.requireGet(w, r) {
		return
	}
	query := r.URL.Query()
	req := devotion.ArtRequest{
		Context:   strings.TrimSpace(query.Get("context")),
		WithSaint: parseBool(query.Get("saint")),
	}
	if req.Context != "" {
		if _, err := artwork.ParseContextType(req.Context); err != nil {
			s.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	switch citation, text := strings.TrimSpace(query.Get("ref")), strings.TrimSpace(query.Get("text")); {
	case citation != "":
		ref, err := scripture.ParseLooseReference(citation)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		req.Reference = &ref
	case text != "":
		req.Verse = &scripture.Verse{Text: text, Reference: strings.TrimSpace(query.Get("verse"))}
	default:
		s.writeError(w, http.StatusBadRequest, "ref or text is required")
		return
	}

	img, err := s.svc.GenerateArt(r.Context(), req)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", img.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(img.Data)))
	w.Header().Set("X-Placeholder", strconv.FormatBool(img.Placeholder))
	w.Header().Set("X-Image-Source", img.Source)
	w.Header().Set("ETag", `"`+img.Key+`"`)
	if img.Placeholder {
		w.Header().Set("Cache-Control", "no-store")
	} else {
		w.Header().Set("Cache-Control", "public, max-age=86400")
	}
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(img.Data); err != nil {
		s.log().Debug("art response write failed", logging.Error(err))
	}
}

func (s *apiServer) handleSaint(w http.ResponseWriter, r *http.Request) {
	if !s.requireGet(w, r) {
		return
	}
	date := s.now()
	if value := strings.TrimSpace(r.URL.Query().Get("date")); value != "" {
		parsed, err := parseFeastDate(value)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		date = parsed
	}
	found := s.svc.SaintsOn(date)
	if len(found) == 0 {
		s.writeServiceError(w, r, services.Wrap(services.ErrNotFound, "saints", "lookup",
			"no saints on "+date.Format("01-02"), nil))
		return
	}
	s.writeJSON(w, http.StatusOK, api.SaintsResponse{
		FeastDay: date.Format("01-02"),
		Saints:   api.FromSaints(found),
	})
}

func (s *apiServer) handleHistory(w http.ResponseWriter, r *http.Request) {
	if !s.requireGet(w, r) {
		return
	}
	limit := defaultHistoryLimit
	if value := strings.TrimSpace(r.URL.Query().Get("limit")); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil || parsed <= 0 {
			s.writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(parsed, maxHistoryLimit)
	}
	days, err := s.svc.History(r.Context(), limit)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.HistoryResponse{Days: api.FromDaySummaries(days)})
}

func (s *apiServer) requireGet(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return false
	}
	return true
}

func (s *apiServer) now() time.Time {
	if s.daemon != nil && s.daemon.clock != nil {
		return s.daemon.clock()
	}
	return time.Now()
}

// statusForError maps error markers to HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, services.ErrInvalidReference):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrConfiguration):
		return http.StatusServiceUnavailable
	case errors.Is(err, services.ErrFetchFailure), errors.Is(err, services.ErrTransient):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func (s *apiServer) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, context.Canceled) && r.Context().Err() != nil {
		return
	}
	status := statusForError(err)
	if status >= http.StatusInternalServerError {
		s.log().Warn("api request failed",
			logging.String("path", r.URL.Path),
			logging.Int("status", status),
			logging.Error(err),
		)
	}
	s.writeJSON(w, status, api.ErrorResponse{Error: err.Error(), Retryable: services.IsRetryable(err)})
}

func (s *apiServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log().Error("failed to encode response", logging.Error(err))
	}
}

func (s *apiServer) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, api.ErrorResponse{Error: message})
}

func (s *apiServer) log() *slog.Logger {
	if s.logger != nil {
		return s.logger.With(logging.String(logging.FieldComponent, "api-server"))
	}
	return logging.NewNop()
}

// parseFeastDate accepts "MM-dd" or "YYYY-MM-DD".
func parseFeastDate(value string) (time.Time, error) {
	for _, layout := range []string{"01-02", "2006-01-02"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q: want MM-dd or YYYY-MM-DD", value)
}

func parseBool(value string) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(value))
	return err == nil && b
}
