// internal/httpserver/server.go
//
// HTTP server wiring for the CR Wordle backend.
// Responsibilities:
//   - Router + middleware (JSON, CORS, compression, timeouts, panic recovery, request IDs).
//   - Public endpoints: "/", "/health", "/cards".
//   - Guess game endpoints (optional auth): mounted under /game.
//   - Daily Challenge endpoints (optional auth): mounted under /daily.
//   - Casino endpoints (optional auth): mounted under /casino.
//   - Auth + profile/stat endpoints: /auth/*, /stats/*, /games/mine.
//
// Notes:
//   - CORS is origin-aware and credentials-enabled (so cookies work).
//   - Every player is an "owner": the user id when signed in, otherwise the
//     anonymous cookie id. Balances, rounds and wagers are keyed by owner.

package httpserver

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"github.com/robalobadob/crwordle/internal/casino"
	"github.com/robalobadob/crwordle/internal/catalog"
	"github.com/robalobadob/crwordle/internal/config"
	"github.com/robalobadob/crwordle/internal/daily"
	"github.com/robalobadob/crwordle/internal/gamelog"
	"github.com/robalobadob/crwordle/internal/ledger"
	"github.com/robalobadob/crwordle/internal/store"
)

// Deps are the collaborators a Server routes to.
type Deps struct {
	Config  config.Config
	DB      *sql.DB
	Catalog *catalog.Catalog
	Store   store.Store
	Book    *ledger.Book
	Log     *gamelog.Store
	Sink    *gamelog.Sink
	Casino  *casino.Service
	Rand    catalog.Picker // nil for the global source
}

// Server bundles the router and its collaborators.
type Server struct {
	r      *chi.Mux
	cfg    config.Config
	db     *sql.DB
	cat    *catalog.Catalog
	store  store.Store
	book   *ledger.Book
	glog   *gamelog.Store
	sink   *gamelog.Sink
	casino *casino.Service
	rng    catalog.Picker
	daily  *dailyServer

	upgrader websocket.Upgrader
}

// New constructs a Server, installs middleware, and registers routes.
func New(d Deps) *Server {
	s := &Server{
		r:      chi.NewRouter(),
		cfg:    d.Config,
		db:     d.DB,
		cat:    d.Catalog,
		store:  d.Store,
		book:   d.Book,
		glog:   d.Log,
		sink:   d.Sink,
		casino: d.Casino,
		rng:    d.Rand,
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			o := r.Header.Get("Origin")
			return o == "" || o == s.cfg.ClientOrigin
		},
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID) // add X-Request-ID
	s.r.Use(chimw.RealIP)    // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(chimw.Recoverer) // recover from panics
	s.r.Use(jsonContentType) // default JSON responses
	s.r.Use(s.cors)          // credentials-friendly CORS
	s.r.Use(Compression)     // gzip / zstd bodies

	// bound handler time; the crash stream is exempt
	timeout := s.cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	s.r.Use(skipUpgrade(chimw.Timeout(timeout)))

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"service":"crwordle","endpoints":["/health","/cards","/game/*","/daily/*","/casino/*","/auth/*","/stats/*"]}`))
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})
	s.r.Get("/cards", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"count": s.cat.Len(), "cards": s.cat.All()})
	})

	// Guess game, daily and casino: OPTIONAL AUTH (guests play under their anon id)
	opt := s.r.With(s.withOptionalAuth())
	s.mountGame(opt)
	s.mountDaily(opt, daily.NewStore(s.db))
	s.mountCasino(opt)

	// Auth + profile/stats
	s.mountAuthRoutes()
	s.mountStats()

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"not_found","path":"`+r.URL.Path+`"}`, http.StatusNotFound)
	})

	return s
}

// Handler exposes the router for http.Server and tests.
func (s *Server) Handler() http.Handler { return s.r }

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// cors enables credentialed CORS for the configured client origin.
func (s *Server) cors(next http.Handler) http.Handler {
	origin := s.cfg.ClientOrigin
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// skipUpgrade bypasses mw for websocket upgrades, which outlive any request timeout.
func skipUpgrade(mw func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		wrapped := mw(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isWebSocketUpgrade(r) {
				next.ServeHTTP(w, r)
				return
			}
			wrapped.ServeHTTP(w, r)
		})
	}
}

// ------------------------------- helpers -----------------------------------

// writeErr sends {"error":code} with status.
func writeErr(w http.ResponseWriter, status int, code string) {
	b, _ := json.Marshal(map[string]string{"error": code})
	http.Error(w, string(b), status)
}

// decode reads a JSON body into v. An empty body leaves v untouched.
func decode(r *http.Request, v any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	return json.NewDecoder(r.Body).Decode(v)
}
