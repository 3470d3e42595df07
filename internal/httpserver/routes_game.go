// apps/go-server/internal/httpserver/routes_game.go
//
// HTTP routes for free-play games.
// Exposes endpoints under /game:
//   - POST /game/new        → generate a puzzle and open a session
//   - POST /game/move       → attempt a move
//   - POST /game/reset      → retry the same puzzle from START
//   - POST /game/new-puzzle → discard the puzzle, generate a fresh one
//   - POST /game/solution   → show/hide the solution overlay
//   - POST /game/reveal     → resolve a hidden-mode session at FINISH
//   - GET  /game/{id}       → current session state
//
// The server plays the timer-callback role: before applying a move it
// stamps elapsed wall-clock time into the session via TickTimer.
// Finished attempts are persisted once per session (the solution
// overlay defers that until it is hidden again).
//
// Daily-challenge sessions are refused by every mutating route here;
// they change only through /daily, which enforces the shared board
// and the one-score-per-day rule.

package httpserver

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/mazekids/circuit/apps/go-server/internal/engine"
	"github.com/mazekids/circuit/apps/go-server/internal/generator"
	"github.com/mazekids/circuit/apps/go-server/internal/puzzle"
)

// mountGame registers all /game routes.
func (s *Server) mountGame(r chi.Router) {
	r.Route("/game", func(r chi.Router) {
		r.Post("/new", s.handleNewGame)
		r.Post("/move", s.handleMove)
		r.Post("/reset", s.handleReset)
		r.Post("/new-puzzle", s.handleNewPuzzle)
		r.Post("/solution", s.handleSolution)
		r.Post("/reveal", s.handleReveal)
		r.Get("/{id}", s.handleGetState)
	})
}

// -----------------------------------------------------------------------------
// /game/new

// newGameReq selects a preset by name or supplies custom settings.
type newGameReq struct {
	Difficulty string                     `json:"difficulty"`
	Settings   *puzzle.DifficultySettings `json:"settings,omitempty"`
}

// handleNewGame resolves difficulty settings, generates a puzzle, and
// opens a session. Generation failure is recoverable: the session is
// still created (status "setup" with the error set) so the client can
// retry via /game/new-puzzle.
func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	var req newGameReq
	_ = json.NewDecoder(r.Body).Decode(&req)

	settings, ok := s.resolveSettings(req)
	if !ok {
		http.Error(w, `{"error":"unknown_difficulty"}`, http.StatusBadRequest)
		return
	}

	sess := engine.NewSession(engine.NewGameState(settings))
	s.generateInto(sess, generator.New())

	if err := s.store.Save(r.Context(), sess); err != nil {
		log.Error().Err(err).Msg("save session")
		http.Error(w, `{"error":"save_failed"}`, http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(sessionView(sess))
}

// resolveSettings maps a request onto validated difficulty settings.
func (s *Server) resolveSettings(req newGameReq) (puzzle.DifficultySettings, bool) {
	if req.Settings != nil {
		if err := req.Settings.Validate(); err != nil {
			return puzzle.DifficultySettings{}, false
		}
		return *req.Settings, true
	}
	name := req.Difficulty
	if name == "" {
		name = "cadet"
	}
	return puzzle.Preset(name)
}

// generateInto runs one generation request against the session,
// feeding the reducer the request id, then the result. Generation is
// synchronous here; the id check still guards any future async caller.
func (s *Server) generateInto(sess *engine.Session, gen *generator.Generator) {
	sess.NextRequestID++
	reqID := sess.NextRequestID
	sess.State = s.reducer.Apply(sess.State, engine.GeneratePuzzle{RequestID: reqID})

	p, err := gen.Generate(sess.State.Difficulty)
	if err != nil {
		log.Warn().Err(err).Str("difficulty", sess.State.Difficulty.Name).Msg("puzzle generation failed")
		sess.State = s.reducer.Apply(sess.State, engine.PuzzleGenerationFailed{RequestID: reqID, Message: err.Error()})
		return
	}
	sess.State = s.reducer.Apply(sess.State, engine.PuzzleGenerated{RequestID: reqID, Puzzle: p})
}

// -----------------------------------------------------------------------------
// /game/move

type moveReq struct {
	GameID string `json:"gameId"`
	Row    int    `json:"row"`
	Col    int    `json:"col"`
}

// moveRes reports whether the attempt was accepted, and — outside
// hidden mode — whether it was correct. Hidden mode defers feedback,
// so Correct stays null there.
type moveRes struct {
	Accepted bool         `json:"accepted"`
	Correct  *bool        `json:"correct,omitempty"`
	State    *sessionJSON `json:"state"`
}

// handleMove applies a move attempt to a session and persists the
// attempt summary once a terminal state is reached.
func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	var req moveReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	sess, err := s.store.Get(r.Context(), req.GameID)
	if err != nil {
		http.Error(w, `{"error":"not_found"}`, http.StatusNotFound)
		return
	}
	if sess.Daily {
		http.Error(w, `{"error":"daily_session"}`, http.StatusConflict)
		return
	}

	s.tickTimer(sess)
	before := len(sess.State.MoveHistory)
	sess.State = s.reducer.Apply(sess.State, engine.MakeMove{To: puzzle.Coordinate{Row: req.Row, Col: req.Col}})
	accepted := len(sess.State.MoveHistory) > before

	if err := s.store.Save(r.Context(), sess); err != nil {
		http.Error(w, `{"error":"save_failed"}`, http.StatusInternalServerError)
		return
	}

	res := moveRes{Accepted: accepted, State: sessionView(sess)}
	if accepted && !sess.State.HiddenMode {
		last := sess.State.MoveHistory[len(sess.State.MoveHistory)-1]
		res.Correct = &last.Correct
	}

	s.maybeRecordAttempt(w, r, sess)
	_ = json.NewEncoder(w).Encode(res)
}

// tickTimer stamps current elapsed time into the session, playing the
// cooperative per-tick callback role.
func (s *Server) tickTimer(sess *engine.Session) {
	if !sess.State.TimerRunning {
		return
	}
	elapsed := time.Since(sess.State.StartTime).Milliseconds()
	sess.State = s.reducer.Apply(sess.State, engine.TickTimer{ElapsedMs: elapsed})
}

// -----------------------------------------------------------------------------
// /game/reset, /game/new-puzzle

type gameIDReq struct {
	GameID string `json:"gameId"`
}

// handleReset rewinds the session for another attempt at the same puzzle.
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.loadSession(w, r)
	if !ok {
		return
	}
	sess.State = s.reducer.Apply(sess.State, engine.ResetPuzzle{})
	sess.Recorded = false
	if err := s.store.Save(r.Context(), sess); err != nil {
		http.Error(w, `{"error":"save_failed"}`, http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(sessionView(sess))
}

// handleNewPuzzle discards the current puzzle and generates a fresh
// one at the session's difficulty.
func (s *Server) handleNewPuzzle(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.loadSession(w, r)
	if !ok {
		return
	}
	sess.State = s.reducer.Apply(sess.State, engine.NewPuzzle{})
	s.generateInto(sess, generator.New())
	sess.Recorded = false
	if err := s.store.Save(r.Context(), sess); err != nil {
		http.Error(w, `{"error":"save_failed"}`, http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(sessionView(sess))
}

// -----------------------------------------------------------------------------
// /game/solution, /game/reveal

type solutionReq struct {
	GameID string `json:"gameId"`
	Show   bool   `json:"show"`
}

// handleSolution toggles the solution overlay. Hiding it releases the
// deferred attempt recording for terminal sessions.
func (s *Server) handleSolution(w http.ResponseWriter, r *http.Request) {
	var req solutionReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	sess, err := s.store.Get(r.Context(), req.GameID)
	if err != nil {
		http.Error(w, `{"error":"not_found"}`, http.StatusNotFound)
		return
	}
	if sess.Daily {
		http.Error(w, `{"error":"daily_session"}`, http.StatusConflict)
		return
	}
	if req.Show {
		sess.State = s.reducer.Apply(sess.State, engine.ShowSolution{})
	} else {
		sess.State = s.reducer.Apply(sess.State, engine.HideSolution{})
	}
	if err := s.store.Save(r.Context(), sess); err != nil {
		http.Error(w, `{"error":"save_failed"}`, http.StatusInternalServerError)
		return
	}
	s.maybeRecordAttempt(w, r, sess)
	_ = json.NewEncoder(w).Encode(sessionView(sess))
}

// handleReveal resolves a hidden-mode session that reached FINISH.
func (s *Server) handleReveal(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.loadSession(w, r)
	if !ok {
		return
	}
	sess.State = s.reducer.Apply(sess.State, engine.RevealHiddenResults{})
	if err := s.store.Save(r.Context(), sess); err != nil {
		http.Error(w, `{"error":"save_failed"}`, http.StatusInternalServerError)
		return
	}
	s.maybeRecordAttempt(w, r, sess)
	_ = json.NewEncoder(w).Encode(sessionView(sess))
}

// -----------------------------------------------------------------------------
// GET /game/{id}

func (s *Server) handleGetState(w http.ResponseWriter, r *http.Request) {
	sess, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, `{"error":"not_found"}`, http.StatusNotFound)
		return
	}
	s.tickTimer(sess)
	_ = json.NewEncoder(w).Encode(sessionView(sess))
}

// loadSession decodes a {gameId} body and fetches the session.
func (s *Server) loadSession(w http.ResponseWriter, r *http.Request) (*engine.Session, bool) {
	var req gameIDReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return nil, false
	}
	sess, err := s.store.Get(r.Context(), req.GameID)
	if err != nil {
		http.Error(w, `{"error":"not_found"}`, http.StatusNotFound)
		return nil, false
	}
	if sess.Daily {
		http.Error(w, `{"error":"daily_session"}`, http.StatusConflict)
		return nil, false
	}
	return sess, true
}

// -----------------------------------------------------------------------------
// attempt recording (the external "progress recorder" of the game core)

// maybeRecordAttempt persists a finished attempt exactly once per
// session run. Recording is suppressed while the solution overlay is
// showing and in the revealing state (hidden mode scores at reveal).
func (s *Server) maybeRecordAttempt(w http.ResponseWriter, r *http.Request, sess *engine.Session) {
	st := &sess.State
	if sess.Recorded || sess.State.ShowingSolution {
		return
	}
	if st.Status != engine.StatusWon && st.Status != engine.StatusLost {
		return
	}
	sess.Recorded = true

	won := st.Status == engine.StatusWon
	stars := 0
	if won {
		stars = engine.Rate(st.MoveHistory, st.ElapsedMs)
	}

	me, _ := r.Context().Value(ctxUserKey{}).(*authUser)
	ownerCol, ownerArg := "anonymous_id", any(s.ensureAnonID(w, r))
	if me != nil {
		ownerCol, ownerArg = "user_id", any(me.ID)
	}

	tx, err := s.db.Begin()
	if err != nil {
		log.Warn().Err(err).Msg("begin attempt tx")
		return
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`INSERT INTO attempts
	        (id, `+ownerCol+`, difficulty, won, lives_lost, time_seconds, correct_moves, mistakes, stars, coins, created_at)
	        VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
		uuid.NewString(), ownerArg, st.Difficulty.Name, won,
		st.MaxLives-st.Lives, int(st.ElapsedMs/1000), st.CorrectMoves(), st.Mistakes(),
		stars, st.PuzzleCoins, time.Now().UTC().Format(time.RFC3339)); err != nil {
		log.Warn().Err(err).Str("gameId", sess.ID).Msg("insert attempt")
		// Stats must not advance without an attempt row; leave the
		// session unrecorded so a later trigger can retry.
		sess.Recorded = false
		return
	}
	if me != nil {
		if err := s.bumpStats(tx, me.ID, won, stars); err != nil {
			log.Warn().Err(err).Str("user", me.ID).Msg("bump stats")
		}
	}
	_ = tx.Commit()
}
