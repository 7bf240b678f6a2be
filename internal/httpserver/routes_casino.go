// internal/httpserver/routes_casino.go
//
// Casino endpoints under /casino:
//   - GET  /casino/games           → lobby manifest with per-choice odds
//   - GET  /casino/balance         → owner's balance
//   - GET  /casino/history         → owner's latest wagers
//   - POST /casino/{game}/play     → instant round {bet, choice}
//   - POST /casino/crash/start     → live crash round {bet}
//   - POST /casino/crash/cashout   → cash out the live round
//   - POST /casino/crash/leave     → forfeit the live round
//   - GET  /casino/crash/ws        → websocket stream of crash frames

package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/robalobadob/crwordle/internal/casino"
	"github.com/robalobadob/crwordle/internal/wager"
)

const (
	// Time allowed to write a frame to the peer.
	writeWait = 10 * time.Second
	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second
	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10
	// Maximum message size allowed from peer.
	maxMessageSize = 512
)

func (s *Server) mountCasino(r chi.Router) {
	r.Route("/casino", func(r chi.Router) {
		r.Get("/games", s.handleLobby)
		r.Get("/balance", s.handleBalance)
		r.Get("/history", s.handleWagerHistory)
		r.Post("/crash/start", s.handleCrashStart)
		r.Post("/crash/cashout", s.handleCrashCashOut)
		r.Post("/crash/leave", s.handleCrashLeave)
		r.Get("/crash/ws", s.handleCrashStream)
		r.Post("/{game}/play", s.handlePlay)
	})
}

type lobbyEntry struct {
	wager.Spec
	Odds map[string]wager.Odds `json:"oddsByChoice"`
}

func (s *Server) handleLobby(w http.ResponseWriter, r *http.Request) {
	games := wager.All()
	out := make([]lobbyEntry, len(games))
	for i, g := range games {
		out[i] = lobbyEntry{Spec: g.Spec(), Odds: wager.ChoiceOdds(g)}
	}
	_ = json.NewEncoder(w).Encode(map[string]any{"games": out, "minBet": wager.MinBet})
}

func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	owner := s.owner(w, r)
	_ = json.NewEncoder(w).Encode(map[string]any{"balance": s.casino.Balance(r.Context(), owner)})
}

func (s *Server) handleWagerHistory(w http.ResponseWriter, r *http.Request) {
	rows, err := s.glog.Wagers(r.Context(), s.owner(w, r), 50)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "db_error")
		return
	}
	_ = json.NewEncoder(w).Encode(rows)
}

// writeWagerErr maps wager/casino errors onto HTTP statuses.
func writeWagerErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, wager.ErrBetTooSmall):
		writeErr(w, http.StatusBadRequest, "bet_too_small")
	case errors.Is(err, wager.ErrInsufficientBalance):
		writeErr(w, http.StatusBadRequest, "insufficient_balance")
	case errors.Is(err, wager.ErrUnknownChoice):
		writeErr(w, http.StatusBadRequest, "unknown_choice")
	case errors.Is(err, wager.ErrUnknownGame):
		writeErr(w, http.StatusNotFound, "unknown_game")
	case errors.Is(err, casino.ErrDisabled):
		writeErr(w, http.StatusForbidden, "game_disabled")
	case errors.Is(err, casino.ErrNoRound):
		writeErr(w, http.StatusConflict, "no_round")
	case errors.Is(err, wager.ErrRoundSettled):
		writeErr(w, http.StatusConflict, "round_settled")
	default:
		log.Error().Err(err).Msg("wager")
		writeErr(w, http.StatusInternalServerError, "wager_failed")
	}
}

func (s *Server) handlePlay(w http.ResponseWriter, r *http.Request) {
	var bet wager.Bet
	if err := json.NewDecoder(r.Body).Decode(&bet); err != nil {
		writeErr(w, http.StatusBadRequest, "bad_json")
		return
	}
	out, err := s.casino.Play(r.Context(), s.owner(w, r), chi.URLParam(r, "game"), bet)
	if err != nil {
		writeWagerErr(w, err)
		return
	}
	_ = json.NewEncoder(w).Encode(out)
}

type crashStartReq struct {
	Bet decimal.Decimal `json:"bet"`
}

// crashRoundRes never carries the crash point while the round runs.
type crashRoundRes struct {
	RoundID string          `json:"roundId"`
	Bet     decimal.Decimal `json:"bet"`
	Started time.Time       `json:"startedAt"`
	Balance decimal.Decimal `json:"balance"`
}

func (s *Server) handleCrashStart(w http.ResponseWriter, r *http.Request) {
	var req crashStartReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "bad_json")
		return
	}
	round, bal, err := s.casino.StartCrash(r.Context(), s.owner(w, r), req.Bet)
	if err != nil {
		writeWagerErr(w, err)
		return
	}
	_ = json.NewEncoder(w).Encode(crashRoundRes{
		RoundID: round.ID,
		Bet:     round.Bet,
		Started: round.Started,
		Balance: bal,
	})
}

// handleCrashCashOut answers 200 for both a cash-out and a too-late crash;
// the outcome field tells them apart.
func (s *Server) handleCrashCashOut(w http.ResponseWriter, r *http.Request) {
	out, err := s.casino.CashOut(r.Context(), s.owner(w, r))
	if err != nil && !errors.Is(err, wager.ErrCrashed) {
		writeWagerErr(w, err)
		return
	}
	_ = json.NewEncoder(w).Encode(out)
}

func (s *Server) handleCrashLeave(w http.ResponseWriter, r *http.Request) {
	owner := s.owner(w, r)
	s.casino.Discard(owner)
	_ = json.NewEncoder(w).Encode(map[string]any{"ok": true, "balance": s.casino.Balance(r.Context(), owner)})
}

// handleCrashStream pushes the owner's crash frames until the peer goes away.
func (s *Server) handleCrashStream(w http.ResponseWriter, r *http.Request) {
	owner := s.owner(w, r)
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("upgrade crash stream")
		return
	}
	frames, unsubscribe := s.casino.Subscribe(owner)

	// Reader: only pongs and close frames are expected.
	done := make(chan struct{})
	go func() {
		defer close(done)
		conn.SetReadLimit(maxMessageSize)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.Debug().Err(err).Str("owner", owner).Msg("crash stream read")
				}
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		unsubscribe()
		_ = conn.Close()
	}()

	// Replay the live round so a late subscriber starts in sync.
	if round, ok := s.casino.Current(owner); ok {
		f := casino.Frame{RoundID: round.ID, State: wager.CrashRunning, Multiplier: round.Multiplier(time.Now())}
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(f); err != nil {
			return
		}
	}

	for {
		select {
		case f := <-frames:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(f); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
