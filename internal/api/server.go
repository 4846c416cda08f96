package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"fizzworks/internal/game"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

type Server struct {
	log  *slog.Logger
	game *game.Service
	mux  *chi.Mux
	idem *idemCache
}

func New(logger *slog.Logger, gameSvc *game.Service) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		log:  logger,
		game: gameSvc,
		mux:  chi.NewRouter(),
		idem: newIdemCache(512),
	}
	s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) routes() {
	r := s.mux
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(15 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})

	r.Route("/v1", func(r chi.Router) {
		r.Get("/state", s.handleState)
		r.Get("/market", s.handleMarket)
		r.Get("/journal", s.handleJournal)

		r.Post("/supplies/buy", s.handleBuySupplies)
		r.Post("/flavor/activate", s.handleActivateFlavor)
		r.Post("/flavor/price", s.handleSetPrice)
		r.Post("/format/activate", s.handleActivateFormat)
		r.Post("/upgrades/buy", s.handleBuyUpgrade)
		r.Post("/equipment/buy", s.handleBuyEquipment)
		r.Post("/missions/start", s.handleStartMission)
		r.Post("/missions/claim", s.handleClaimMission)
		r.Post("/prestige/nodes/buy", s.handleBuyPrestigeNode)
		r.Post("/prestige/reset", s.handlePrestigeReset)
		r.Post("/reset", s.handleHardReset)
	})
}

func (s *Server) handleState(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.game.StateView())
}

func (s *Server) handleMarket(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.game.MarketView())
}

func (s *Server) handleJournal(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": s.game.JournalTail(limit)})
}

func (s *Server) handleBuySupplies(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Kind     string `json:"kind"`
		Quantity int64  `json:"quantity"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.intent(w, r, func() error {
		return s.game.BuySupplies(game.SupplyKind(strings.ToLower(strings.TrimSpace(in.Kind))), in.Quantity)
	})
}

func (s *Server) handleActivateFlavor(w http.ResponseWriter, r *http.Request) {
	var in struct {
		FlavorID string `json:"flavor_id"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.intent(w, r, func() error { return s.game.SetActiveFlavor(in.FlavorID) })
}

func (s *Server) handleSetPrice(w http.ResponseWriter, r *http.Request) {
	var in struct {
		PriceMicros int64 `json:"price_micros"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.intent(w, r, func() error { return s.game.SetPrice(in.PriceMicros) })
}

func (s *Server) handleActivateFormat(w http.ResponseWriter, r *http.Request) {
	var in struct {
		FormatID string `json:"format_id"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.intent(w, r, func() error { return s.game.SetBottleFormat(in.FormatID) })
}

func (s *Server) handleBuyUpgrade(w http.ResponseWriter, r *http.Request) {
	var in struct {
		UpgradeID string `json:"upgrade_id"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.intent(w, r, func() error { return s.game.PurchaseUpgrade(in.UpgradeID) })
}

func (s *Server) handleBuyEquipment(w http.ResponseWriter, r *http.Request) {
	var in struct {
		EquipmentID string `json:"equipment_id"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.intent(w, r, func() error { return s.game.BuyEquipment(in.EquipmentID) })
}

func (s *Server) handleStartMission(w http.ResponseWriter, r *http.Request) {
	var in struct {
		MissionID string `json:"mission_id"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.intent(w, r, func() error { return s.game.StartMission(in.MissionID) })
}

func (s *Server) handleClaimMission(w http.ResponseWriter, r *http.Request) {
	s.intent(w, r, s.game.ClaimMissionReward)
}

func (s *Server) handleBuyPrestigeNode(w http.ResponseWriter, r *http.Request) {
	var in struct {
		NodeID string `json:"node_id"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.intent(w, r, func() error { return s.game.BuyPrestigeNode(in.NodeID) })
}

func (s *Server) handlePrestigeReset(w http.ResponseWriter, r *http.Request) {
	s.intent(w, r, s.game.Prestige)
}

func (s *Server) handleHardReset(w http.ResponseWriter, r *http.Request) {
	s.intent(w, r, s.game.HardReset)
}

// intent runs a state mutation with idempotency-key replay: a repeated key
// returns the first response without re-applying the mutation.
func (s *Server) intent(w http.ResponseWriter, r *http.Request, apply func() error) {
	key := idempotencyKey(r)
	if status, body, ok := s.idem.get(key); ok {
		replayJSON(w, status, body)
		return
	}
	status := http.StatusOK
	var payload any
	if err := apply(); err != nil {
		status, payload = domainStatus(err), map[string]any{"error": err.Error()}
	} else {
		payload = map[string]any{"ok": true, "state": s.game.StateView()}
	}
	body, _ := json.Marshal(payload)
	s.idem.put(key, status, body)
	replayJSON(w, status, body)
}

func domainStatus(err error) int {
	switch {
	case errors.Is(err, game.ErrInsufficientFunds),
		errors.Is(err, game.ErrInsufficientStock),
		errors.Is(err, game.ErrInsufficientLegacyPoints):
		return http.StatusPaymentRequired
	case errors.Is(err, game.ErrUnknownID):
		return http.StatusNotFound
	case errors.Is(err, game.ErrAlreadyOwned),
		errors.Is(err, game.ErrMissionActive),
		errors.Is(err, game.ErrFlavorLocked),
		errors.Is(err, game.ErrMissingPrerequisite),
		errors.Is(err, game.ErrNoPendingReward),
		errors.Is(err, game.ErrNotEligible):
		return http.StatusConflict
	case errors.Is(err, game.ErrInvalidQuantity), errors.Is(err, game.ErrInvalidPrice):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// idemCache remembers recent intent responses by idempotency key. Bounded:
// oldest entries fall off once the cap is hit.
type idemCache struct {
	mu    sync.Mutex
	cap   int
	order []string
	byKey map[string]idemEntry
}

type idemEntry struct {
	status int
	body   []byte
}

func newIdemCache(capacity int) *idemCache {
	return &idemCache{cap: capacity, byKey: make(map[string]idemEntry, capacity)}
}

func (c *idemCache) get(key string) (int, []byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.byKey[key]
	return e.status, e.body, ok
}

func (c *idemCache) put(key string, status int, body []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.byKey[key]; ok {
		return
	}
	c.byKey[key] = idemEntry{status: status, body: body}
	c.order = append(c.order, key)
	for len(c.order) > c.cap {
		delete(c.byKey, c.order[0])
		c.order = c.order[1:]
	}
}

func decodeJSON(r *http.Request, out any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(out)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func replayJSON(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": strings.TrimSpace(message)})
}

func idempotencyKey(r *http.Request) string {
	key := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
	if key != "" {
		return key
	}
	return uuid.NewString()
}
