// apps/go-server/internal/httpserver/routes_daily.go
//
// HTTP routes for the "Daily Circuit" mode.
// Exposes three endpoints under /daily:
//   - POST /daily/new         → start the daily game (creates or reuses session)
//   - POST /daily/move        → attempt a move in today's daily game
//   - GET  /daily/leaderboard → fetch top 20 results for today (or a given date)
//
// Each user can score once per day (enforced by DB + in-memory session).
// Sessions are held in memory for active play and persisted to DB when
// the attempt reaches a terminal state. Deterministic board selection
// is based on date + salt: the generator is seeded with
// HMAC(salt, YYYY-MM-DD), so every player traces the same circuit.

package httpserver

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/mazekids/circuit/apps/go-server/internal/daily"
	"github.com/mazekids/circuit/apps/go-server/internal/engine"
	"github.com/mazekids/circuit/apps/go-server/internal/generator"
	"github.com/mazekids/circuit/apps/go-server/internal/puzzle"
)

// dailyServer wraps dependencies for /daily endpoints.
type dailyServer struct {
	srv      *Server
	store    *daily.Store
	salt     string
	preset   string
	sessions map[string]*dailySession // active sessions keyed by userID|date
	mu       sync.Mutex               // guards sessions
}

// dailySession binds one user's daily attempt to an engine session.
type dailySession struct {
	GameID   string
	UserID   string
	Date     string
	Recorded bool // guarded by dailyServer.mu
}

// markRecorded claims the single recording slot for a daily session.
// Reports false when another request already claimed it.
func (d *dailyServer) markRecorded(ds *dailySession) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if ds.Recorded {
		return false
	}
	ds.Recorded = true
	return true
}

// mountDaily registers all /daily routes.
func (s *Server) mountDaily(r chi.Router) {
	dd := &dailyServer{
		srv:      s,
		store:    daily.NewStore(s.db),
		salt:     getEnv("DAILY_SALT", "local_dev_salt"),
		preset:   getEnv("DAILY_PRESET", "solver"),
		sessions: make(map[string]*dailySession),
	}
	r.Route("/daily", func(r chi.Router) {
		r.Post("/new", dd.handleNew)
		r.Post("/move", dd.handleMove)
		r.Get("/leaderboard", dd.handleLeaderboard)
	})
}

// userIDWithAnon returns the authenticated user ID if logged in,
// otherwise ensures an anonymous ID via Server.ensureAnonID.
func (d *dailyServer) userIDWithAnon(w http.ResponseWriter, r *http.Request) (string, bool) {
	if me, _ := r.Context().Value(ctxUserKey{}).(*authUser); me != nil {
		return me.ID, true
	}
	return d.srv.ensureAnonID(w, r), true
}

// -----------------------------------------------------------------------------
// /daily/new

// dailyNewRes is returned by /daily/new.
type dailyNewRes struct {
	GameID string       `json:"gameId"`
	Date   string       `json:"date"`
	Played bool         `json:"played"`
	State  *sessionJSON `json:"state,omitempty"`
}

// handleNew creates or reuses a daily session for the current date.
// - If user already has a DB row for today → return Played=true.
// - Otherwise create/reuse an in-memory session and return its state.
func (d *dailyServer) handleNew(w http.ResponseWriter, r *http.Request) {
	uid, ok := d.userIDWithAnon(w, r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	now := time.Now().UTC()
	date := daily.DateKey(now)

	// Check if already scored (persisted in DB).
	if played, err := d.store.AlreadyPlayed(r.Context(), uid, date); err == nil && played {
		_ = json.NewEncoder(w).Encode(dailyNewRes{GameID: "", Date: date, Played: true})
		return
	}

	// Reuse session in memory.
	key := uid + "|" + date
	d.mu.Lock()
	if ds, ok := d.sessions[key]; ok {
		d.mu.Unlock()
		if sess, err := d.srv.store.Get(r.Context(), ds.GameID); err == nil {
			_ = json.NewEncoder(w).Encode(dailyNewRes{GameID: ds.GameID, Date: date, State: sessionView(sess)})
			return
		}
		// Engine session evaporated (restart); fall through and rebuild.
	} else {
		d.mu.Unlock()
	}

	settings, ok := puzzle.Preset(d.preset)
	if !ok {
		log.Error().Str("preset", d.preset).Msg("daily preset missing")
		http.Error(w, `{"error":"daily_unavailable"}`, http.StatusInternalServerError)
		return
	}

	sess := engine.NewSession(engine.NewGameState(settings))
	sess.Daily = true
	seed1, seed2 := daily.Seed(now, d.salt)
	d.srv.generateInto(sess, generator.NewSeeded(seed1, seed2))
	if err := d.srv.store.Save(r.Context(), sess); err != nil {
		http.Error(w, `{"error":"save_failed"}`, http.StatusInternalServerError)
		return
	}

	d.mu.Lock()
	d.sessions[key] = &dailySession{GameID: sess.ID, UserID: uid, Date: date}
	d.mu.Unlock()

	_ = json.NewEncoder(w).Encode(dailyNewRes{GameID: sess.ID, Date: date, State: sessionView(sess)})
}

// -----------------------------------------------------------------------------
// /daily/move

// handleMove applies a move to today's daily session and persists the
// result row the first time the attempt resolves.
func (d *dailyServer) handleMove(w http.ResponseWriter, r *http.Request) {
	uid, ok := d.userIDWithAnon(w, r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req moveReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	date := daily.DateKey(time.Now().UTC())
	key := uid + "|" + date
	d.mu.Lock()
	ds, ok := d.sessions[key]
	d.mu.Unlock()
	if !ok || ds.GameID != req.GameID {
		http.Error(w, "no session", http.StatusConflict)
		return
	}

	sess, err := d.srv.store.Get(r.Context(), ds.GameID)
	if err != nil {
		http.Error(w, `{"error":"not_found"}`, http.StatusNotFound)
		return
	}

	d.srv.tickTimer(sess)
	before := len(sess.State.MoveHistory)
	sess.State = d.srv.reducer.Apply(sess.State, engine.MakeMove{To: puzzle.Coordinate{Row: req.Row, Col: req.Col}})
	accepted := len(sess.State.MoveHistory) > before
	if err := d.srv.store.Save(r.Context(), sess); err != nil {
		http.Error(w, `{"error":"save_failed"}`, http.StatusInternalServerError)
		return
	}

	// Persist once the attempt resolves (daily uses standard mode, so
	// terminal means won or lost).
	st := &sess.State
	if (st.Status == engine.StatusWon || st.Status == engine.StatusLost) && d.markRecorded(ds) {
		won := st.Status == engine.StatusWon
		stars := 0
		if won {
			stars = engine.Rate(st.MoveHistory, st.ElapsedMs)
		}
		if err := d.store.InsertResult(r.Context(), daily.Result{
			UserID: uid, Date: date, Won: won,
			Mistakes: st.Mistakes(), Stars: stars, ElapsedMs: st.ElapsedMs,
		}); err != nil {
			log.Warn().Err(err).Str("user", uid).Msg("insert daily result")
		}
	}

	res := moveRes{Accepted: accepted, State: sessionView(sess)}
	if accepted {
		last := st.MoveHistory[len(st.MoveHistory)-1]
		res.Correct = &last.Correct
	}
	_ = json.NewEncoder(w).Encode(res)
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
		date = daily.DateKey(time.Now().UTC())
	}
	rows, err := d.store.Leaderboard(r.Context(), date, 20)
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(lbRes{Date: date, Top: rows})
}
