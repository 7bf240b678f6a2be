// internal/httpserver/routes_stats.go
//
// Stats endpoints:
//   - GET /stats/me      → per-owner summary plus balance (and streak when signed in)
//   - GET /stats/targets → wins per target card, for the collection grid
//   - GET /games/mine    → latest finished rounds (signed-in users)

package httpserver

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/robalobadob/crwordle/internal/gamelog"
)

type statsRes struct {
	gamelog.Stats
	Balance decimal.Decimal `json:"balance"`
	Wins    *int            `json:"wins,omitempty"`
	Streak  *int            `json:"streak,omitempty"`
}

func (s *Server) mountStats() {
	opt := s.r.With(s.withOptionalAuth())
	opt.Get("/stats/me", s.handleStats)
	opt.Get("/stats/targets", s.handleTargetWins)
	s.r.With(s.requireAuth()).Get("/games/mine", s.handleMyGames)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	owner := s.owner(w, r)
	st, err := s.glog.Stats(r.Context(), owner)
	if err != nil {
		log.Error().Err(err).Str("owner", owner).Msg("load stats")
		writeErr(w, http.StatusInternalServerError, "db_error")
		return
	}
	out := statsRes{Stats: st, Balance: s.book.Balance(r.Context(), owner)}
	if me := currentUser(r); me != nil {
		if u, err := s.findUserByID(r.Context(), me.ID); err == nil {
			out.Wins, out.Streak = &u.Wins, &u.Streak
		}
	}
	_ = json.NewEncoder(w).Encode(out)
}

func (s *Server) handleTargetWins(w http.ResponseWriter, r *http.Request) {
	wins, err := s.glog.TargetWins(r.Context(), s.owner(w, r))
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "db_error")
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]any{"total": s.cat.Len(), "wins": wins})
}

func (s *Server) handleMyGames(w http.ResponseWriter, r *http.Request) {
	me := currentUser(r)
	if me == nil {
		writeErr(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	rows, err := s.glog.Recent(r.Context(), me.ID, 50)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "db_error")
		return
	}
	_ = json.NewEncoder(w).Encode(rows)
}
