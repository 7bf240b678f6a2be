// internal/httpserver/routes_daily.go
//
// HTTP routes for the "Daily Challenge" mode.
// Exposes three endpoints under /daily:
//   - POST /daily/new         → start a daily round (creates or reuses session)
//   - POST /daily/guess       → submit a guess for today's daily round
//   - GET  /daily/leaderboard → fetch top 20 results for today (or a given date)
//
// Each owner can play once per day (enforced by DB + in-memory session).
// Sessions are held in memory for active play and persisted to DB on win.
// Deterministic card selection is based on date + salt. The score of a daily
// win is credited like any other round.

package httpserver

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/robalobadob/crwordle/internal/daily"
	"github.com/robalobadob/crwordle/internal/game"
)

// dailyServer wraps dependencies for /daily endpoints.
type dailyServer struct {
	srv      *Server
	store    *daily.Store
	salt     string
	now      func() time.Time
	sessions map[string]*dailySession // active sessions keyed by owner|date
	mu       sync.Mutex               // guards sessions
}

// dailySession holds transient state for an in-progress daily round.
type dailySession struct {
	Owner       string
	Date        string
	TargetIndex int
	Start       time.Time
	Game        *game.Session
}

// mountDaily registers all /daily routes.
func (s *Server) mountDaily(r chi.Router, st *daily.Store) {
	dd := &dailyServer{
		srv:      s,
		store:    st,
		salt:     s.cfg.DailySalt,
		now:      time.Now,
		sessions: make(map[string]*dailySession),
	}
	s.daily = dd
	r.Route("/daily", func(r chi.Router) {
		r.Post("/new", dd.handleNew)
		r.Post("/guess", dd.handleGuess)
		r.Get("/leaderboard", dd.handleLeaderboard)
	})
}

// today returns the date key and the catalog index of today's target.
func (d *dailyServer) today() (date string, idx int) {
	now := d.now().UTC()
	return daily.DateKey(now), daily.TargetIndex(now, d.salt, d.srv.cat.Len())
}

// -----------------------------------------------------------------------------
// /daily/new

// newRes is returned by /daily/new.
type newRes struct {
	GameID string         `json:"gameId"`
	Date   string         `json:"date"`
	Played bool           `json:"played"`
	Streak int            `json:"streak"`
	State  *game.Snapshot `json:"game,omitempty"`
}

// handleNew creates or reuses a daily session for the current date.
//   - If the owner already has a DB row for today → Played=true.
//   - Otherwise create/reuse an in-memory session and return its GameID.
func (d *dailyServer) handleNew(w http.ResponseWriter, r *http.Request) {
	owner := d.srv.owner(w, r)
	date, idx := d.today()
	streak, err := d.store.Streak(r.Context(), owner, d.now().UTC())
	if err != nil {
		log.Warn().Err(err).Str("owner", owner).Msg("daily streak")
	}

	if played, err := d.store.AlreadyPlayed(r.Context(), owner, date); err == nil && played {
		_ = json.NewEncoder(w).Encode(newRes{Date: date, Played: true, Streak: streak})
		return
	}

	key := owner + "|" + date
	d.mu.Lock()
	defer d.mu.Unlock()
	if sess, ok := d.sessions[key]; ok {
		snap := sess.Game.State()
		_ = json.NewEncoder(w).Encode(newRes{GameID: snap.ID, Date: date, Played: snap.Outcome.Terminal(), Streak: streak, State: &snap})
		return
	}
	g, err := game.New(d.srv.cat, d.srv.gameOpts(owner, game.WithTarget(d.srv.cat.At(idx).ID))...)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "no_cards")
		return
	}
	for k, old := range d.sessions {
		if old.Date != date {
			delete(d.sessions, k)
		}
	}
	d.sessions[key] = &dailySession{Owner: owner, Date: date, TargetIndex: idx, Start: d.now(), Game: g}
	if _, err := d.srv.book.Add(r.Context(), owner, decimal.Zero); err != nil {
		log.Warn().Err(err).Str("owner", owner).Msg("open balance")
	}
	if err := d.srv.glog.IncStarted(r.Context(), owner); err != nil {
		log.Warn().Err(err).Str("owner", owner).Msg("count daily started")
	}

	snap := g.State()
	_ = json.NewEncoder(w).Encode(newRes{GameID: snap.ID, Date: date, Streak: streak, State: &snap})
}

// -----------------------------------------------------------------------------
// /daily/guess

// dailyGuessReq is the request payload for /daily/guess.
type dailyGuessReq struct {
	GameID string `json:"gameId"`
	CardID string `json:"cardId"`
}

// handleGuess applies a guess to today's daily session. A win persists the
// result and credits the score; a finished round answers "locked".
func (d *dailyServer) handleGuess(w http.ResponseWriter, r *http.Request) {
	owner := d.srv.owner(w, r)

	var p dailyGuessReq
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil || p.GameID == "" {
		writeErr(w, http.StatusBadRequest, "bad_json")
		return
	}
	date, _ := d.today()

	d.mu.Lock()
	sess, ok := d.sessions[owner+"|"+date]
	d.mu.Unlock()
	if !ok || sess.Game.ID() != p.GameID {
		writeErr(w, http.StatusConflict, "no_session")
		return
	}
	if sess.Game.Outcome().Terminal() {
		_ = json.NewEncoder(w).Encode(map[string]any{"state": "locked", "guessCount": sess.Game.State().GuessCount})
		return
	}

	res, err := sess.Game.Guess(p.CardID)
	if err != nil {
		writeGuessErr(w, err)
		return
	}
	out := guessRes{GuessResult: res.Visible(sess.Game.Disabled())}
	if res.IsWin() {
		score := sess.Game.Score()
		elapsed := int(d.now().Sub(sess.Start).Milliseconds())
		if err := d.store.InsertResult(r.Context(), daily.Result{
			UserID:      owner,
			Date:        date,
			TargetIndex: sess.TargetIndex,
			Guesses:     res.GuessCount,
			ElapsedMs:   elapsed,
			Score:       score.Total,
		}); err != nil {
			log.Warn().Err(err).Str("owner", owner).Msg("insert daily result")
		}
		bal, err := d.srv.book.Add(r.Context(), owner, score.Total)
		if err != nil {
			log.Warn().Err(err).Str("owner", owner).Msg("credit daily win")
		}
		out.Score = &score
		out.Balance = &bal
		out.Target = &res.Card
	}
	_ = json.NewEncoder(w).Encode(out)
}

// -----------------------------------------------------------------------------
// /daily/leaderboard

// lbRes is returned by /daily/leaderboard.
type lbRes struct {
	Date string        `json:"date"`
	Top  []daily.LBRow `json:"top"`
}

// handleLeaderboard returns the leaderboard for the given date (default today).
func (d *dailyServer) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date, _ = d.today()
	}
	rows, err := d.store.Leaderboard(r.Context(), date, 20)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "server_error")
		return
	}
	_ = json.NewEncoder(w).Encode(lbRes{Date: date, Top: rows})
}
