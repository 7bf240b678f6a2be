// internal/httpserver/routes_game.go
//
// Guess game endpoints under /game:
//   - POST /game/new              → start a round {disabled:[...]}
//   - POST /game/guess            → submit a guess {gameId, cardId}
//   - GET  /game/{id}             → round snapshot
//   - POST /game/{id}/disabled    → change hidden categories before the first guess
//   - GET  /game/{id}/search?q=   → card suggestions, guessed cards excluded
//   - GET  /game/{id}/cards       → every card not guessed yet
//   - POST /game/{id}/reveal      → the target, once the round is over
//   - DELETE /game/{id}           → abandon the round
//
// A won round credits its score to the owner's balance. Finished rounds are
// handed to the game log through the session observer.

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/robalobadob/crwordle/internal/catalog"
	"github.com/robalobadob/crwordle/internal/game"
	"github.com/robalobadob/crwordle/internal/store"
)

func (s *Server) mountGame(r chi.Router) {
	r.Route("/game", func(r chi.Router) {
		r.Post("/new", s.handleNewGame)
		r.Post("/guess", s.handleGuess)
		r.Get("/{id}", s.handleGameState)
		r.Post("/{id}/disabled", s.handleSetDisabled)
		r.Get("/{id}/search", s.handleSearch)
		r.Get("/{id}/cards", s.handleAvailable)
		r.Post("/{id}/reveal", s.handleReveal)
		r.Delete("/{id}", s.handleAbandon)
	})
}

// newGameReq/Res payloads for POST /game/new.
type newGameReq struct {
	Disabled []string `json:"disabled"`
}
type newGameRes struct {
	GameID  string          `json:"gameId"`
	State   game.Snapshot   `json:"game"`
	Balance decimal.Decimal `json:"balance"`
}

// gameOpts are the options every session of owner is built with.
func (s *Server) gameOpts(owner string, extra ...game.Option) []game.Option {
	opts := []game.Option{}
	if s.rng != nil {
		opts = append(opts, game.WithRand(s.rng))
	}
	if s.sink != nil {
		opts = append(opts, game.WithObserver(s.sink.For(owner, nil)))
	}
	return append(opts, extra...)
}

// handleNewGame creates a new in-memory round and persists an owner row for history.
func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	var req newGameReq
	if err := decode(r, &req); err != nil {
		writeErr(w, http.StatusBadRequest, "bad_json")
		return
	}
	disabled, err := game.ParseCategories(req.Disabled)
	if err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}
	owner := s.owner(w, r)

	sess, err := game.New(s.cat, s.gameOpts(owner, game.WithDisabled(disabled))...)
	if err != nil {
		log.Error().Err(err).Msg("new game")
		writeErr(w, http.StatusInternalServerError, "no_cards")
		return
	}
	id := sess.ID()
	if err := s.store.Save(r.Context(), id, owner, sess); err != nil {
		log.Error().Err(err).Msg("save game")
		writeErr(w, http.StatusInternalServerError, "save_failed")
		return
	}

	// The seeded balance must exist before any round of this owner is logged,
	// or the seed would count the round twice.
	bal, _ := s.book.Add(r.Context(), owner, decimal.Zero)

	if err := s.glog.IncStarted(r.Context(), owner); err != nil {
		log.Warn().Err(err).Str("owner", owner).Msg("count game started")
	}
	s.insertGameRow(r.Context(), r, id, owner)

	_ = json.NewEncoder(w).Encode(newGameRes{GameID: id, State: sess.State(), Balance: bal})
}

// insertGameRow records the round under user_id or anonymous_id.
func (s *Server) insertGameRow(ctx context.Context, r *http.Request, id, owner string) {
	col := "anonymous_id"
	if currentUser(r) != nil {
		col = "user_id"
	}
	now := time.Now().UTC().Format(time.RFC3339)
	if _, err := s.db.ExecContext(ctx, `INSERT INTO games (id, `+col+`, started_at, status, guesses)
	                     VALUES (?,?,?,?,0)`, id, owner, now, string(game.InProgress)); err != nil {
		log.Warn().Err(err).Str("gameId", id).Msg("insert game row")
	}
}

// guessReq/Res payloads for POST /game/guess.
type guessReq struct {
	GameID string `json:"gameId"`
	CardID string `json:"cardId"`
}
type guessRes struct {
	game.GuessResult
	Score   *game.ScoreResult `json:"score,omitempty"`
	Balance *decimal.Decimal  `json:"balance,omitempty"`
	Target  *catalog.Entity   `json:"targetCard,omitempty"`
}

// handleGuess applies a guess, persists progress, and on a win credits the score.
func (s *Server) handleGuess(w http.ResponseWriter, r *http.Request) {
	var req guessReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "bad_json")
		return
	}
	owner := s.owner(w, r)
	sess, ok := s.session(w, r, req.GameID, owner)
	if !ok {
		return
	}
	res, err := sess.Guess(req.CardID)
	if err != nil {
		writeGuessErr(w, err)
		return
	}

	out := guessRes{GuessResult: res.Visible(sess.Disabled())}
	s.progressGameRow(r.Context(), req.GameID, res)
	if res.Outcome.Terminal() {
		if me := currentUser(r); me != nil {
			if err := s.bumpStats(r.Context(), me.ID, res.IsWin()); err != nil {
				log.Warn().Err(err).Str("user", me.ID).Msg("bump stats")
			}
		}
	}
	if res.IsWin() {
		score := sess.Score()
		bal, err := s.book.Add(r.Context(), owner, score.Total)
		if err != nil {
			log.Warn().Err(err).Str("owner", owner).Msg("credit win")
		}
		out.Score = &score
		out.Balance = &bal
		out.Target = &res.Card
	}
	_ = json.NewEncoder(w).Encode(out)
}

// progressGameRow bumps the guess counter and closes the row on a terminal guess.
func (s *Server) progressGameRow(ctx context.Context, id string, res game.GuessResult) {
	if _, err := s.db.ExecContext(ctx, `UPDATE games SET guesses=? WHERE id=?`, res.GuessCount, id); err != nil {
		log.Warn().Err(err).Msg("update guesses")
	}
	if !res.Outcome.Terminal() {
		return
	}
	if _, err := s.db.ExecContext(ctx, `UPDATE games SET status=?, finished_at=? WHERE id=?`,
		string(res.Outcome), time.Now().UTC().Format(time.RFC3339), id); err != nil {
		log.Warn().Err(err).Msg("finish game")
	}
}

// session loads owner's round or writes a 404.
func (s *Server) session(w http.ResponseWriter, r *http.Request, id, owner string) (*game.Session, bool) {
	sess, err := s.store.Get(r.Context(), id, owner)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) && !errors.Is(err, store.ErrNotOwner) {
			log.Error().Err(err).Str("gameId", id).Msg("load game")
		}
		writeErr(w, http.StatusNotFound, "not_found")
		return nil, false
	}
	return sess, true
}

func writeGuessErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, game.ErrRoundOver):
		writeErr(w, http.StatusBadRequest, "round_over")
	case errors.Is(err, game.ErrDuplicateGuess):
		writeErr(w, http.StatusBadRequest, "already_guessed")
	case errors.Is(err, game.ErrUnknownEntity):
		writeErr(w, http.StatusBadRequest, "unknown_card")
	default:
		writeErr(w, http.StatusBadRequest, err.Error())
	}
}

func (s *Server) handleGameState(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r, chi.URLParam(r, "id"), s.owner(w, r))
	if !ok {
		return
	}
	_ = json.NewEncoder(w).Encode(sess.State())
}

func (s *Server) handleSetDisabled(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r, chi.URLParam(r, "id"), s.owner(w, r))
	if !ok {
		return
	}
	var req newGameReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "bad_json")
		return
	}
	d, err := game.ParseCategories(req.Disabled)
	if err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := sess.SetDisabled(d); err != nil {
		writeErr(w, http.StatusConflict, "categories_locked")
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]any{
		"disabledCategories": d.Strings(),
		"multiplier":         d.Multiplier(),
	})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r, chi.URLParam(r, "id"), s.owner(w, r))
	if !ok {
		return
	}
	_ = json.NewEncoder(w).Encode(sess.Search(r.URL.Query().Get("q")))
}

func (s *Server) handleAvailable(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r, chi.URLParam(r, "id"), s.owner(w, r))
	if !ok {
		return
	}
	_ = json.NewEncoder(w).Encode(sess.Available())
}

// handleReveal discloses the target of a finished round.
func (s *Server) handleReveal(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r, chi.URLParam(r, "id"), s.owner(w, r))
	if !ok {
		return
	}
	target, err := sess.Reveal()
	if err != nil {
		writeErr(w, http.StatusConflict, "round_in_progress")
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]any{"targetCard": target, "state": sess.Outcome()})
}

// handleAbandon drops the round from the session store. An unfinished round
// is closed as abandoned; it never reaches the game log.
func (s *Server) handleAbandon(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	sess, ok := s.session(w, r, id, s.owner(w, r))
	if !ok {
		return
	}
	if err := s.store.Delete(r.Context(), id); err != nil {
		log.Warn().Err(err).Str("gameId", id).Msg("delete session")
	}
	if !sess.Outcome().Terminal() {
		if _, err := s.db.ExecContext(r.Context(), `UPDATE games SET status='abandoned', finished_at=? WHERE id=?`,
			time.Now().UTC().Format(time.RFC3339), id); err != nil {
			log.Warn().Err(err).Str("gameId", id).Msg("abandon game")
		}
	}
	w.WriteHeader(http.StatusNoContent)
}
