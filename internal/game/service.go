package game

import (
	"log/slog"
	"math/rand"
	"sync"
	"time"
)

// Store persists state snapshots. Implemented by the save package; kept as
// an interface here so the engine never depends on where saves live.
type Store interface {
	Save(*State) error
	Wipe() error
}

// Service owns the live State and serializes every mutation (ticks and
// intents) behind one mutex. Snapshots handed out are deep copies.
type Service struct {
	mu      sync.Mutex
	log     *slog.Logger
	eng     *Engine
	st      *State
	store   Store
	journal *Journal
	now     func() time.Time
}

func NewService(st *State, cat *Catalog, store Store, logger *slog.Logger, rng *rand.Rand) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	journal := NewJournal(nil)
	return &Service{
		log:     logger,
		eng:     NewEngine(cat, rng, journal),
		st:      st,
		store:   store,
		journal: journal,
		now:     time.Now,
	}
}

func (s *Service) Catalog() *Catalog { return s.eng.Catalog() }

// Tick advances the simulation one hour and autosaves. A failed save is
// logged and dropped; the loop must keep running.
func (s *Service) Tick() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.eng.Advance(s.st, true, s.now())
	s.persistLocked()
}

// RunOfflineCatchUp replays the time since the last observed tick, bounded
// by maxTicks. Called once at startup before the first live tick.
func (s *Service) RunOfflineCatchUp(tickEvery time.Duration, maxTicks int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.st.LastTickUnix <= 0 {
		s.st.LastTickUnix = s.now().Unix()
		return 0
	}
	now := s.now()
	elapsed := now.Sub(time.Unix(s.st.LastTickUnix, 0))
	if elapsed <= 0 {
		return 0
	}
	ticks := s.eng.SimulateOffline(s.st, elapsed, tickEvery, maxTicks, now)
	if ticks > 0 {
		s.log.Info("offline catch-up complete", "ticks", ticks)
		s.persistLocked()
	}
	return ticks
}

// Snapshot returns a deep copy of the current state.
func (s *Service) Snapshot() *State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.Clone()
}

func (s *Service) StateView() StateView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return buildStateView(s.st, s.eng)
}

func (s *Service) MarketView() MarketView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return buildMarketView(s.st, s.eng)
}

func (s *Service) JournalTail(n int) []JournalEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.journal.Tail(n)
}

func (s *Service) BuySupplies(kind SupplyKind, quantity int64) error {
	return s.intent(func() error { return s.eng.BuySupplies(s.st, kind, quantity) })
}

func (s *Service) SetActiveFlavor(flavorID string) error {
	return s.intent(func() error { return s.eng.SetActiveFlavor(s.st, flavorID) })
}

func (s *Service) SetPrice(priceMicros int64) error {
	return s.intent(func() error { return s.eng.SetPrice(s.st, priceMicros) })
}

func (s *Service) SetBottleFormat(formatID string) error {
	return s.intent(func() error { return s.eng.SetBottleFormat(s.st, formatID) })
}

func (s *Service) PurchaseUpgrade(upgradeID string) error {
	return s.intent(func() error { return s.eng.PurchaseUpgrade(s.st, upgradeID) })
}

func (s *Service) BuyEquipment(equipmentID string) error {
	return s.intent(func() error { return s.eng.BuyEquipment(s.st, equipmentID) })
}

func (s *Service) StartMission(missionID string) error {
	return s.intent(func() error { return s.eng.StartMission(s.st, missionID) })
}

func (s *Service) ClaimMissionReward() error {
	return s.intent(func() error { return s.eng.ClaimMissionReward(s.st) })
}

func (s *Service) BuyPrestigeNode(nodeID string) error {
	return s.intent(func() error { return s.eng.BuyPrestigeNode(s.st, nodeID) })
}

// Prestige performs the soft reset, adopting the replacement state.
func (s *Service) Prestige() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := s.eng.PerformPrestige(s.st)
	if err != nil {
		return err
	}
	next.LastTickUnix = s.now().Unix()
	s.st = next
	s.persistLocked()
	return nil
}

// HardReset wipes the save and starts a brand-new game with nothing
// carried over.
func (s *Service) HardReset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.store != nil {
		if err := s.store.Wipe(); err != nil {
			s.log.Warn("save wipe failed", "err", err)
		}
	}
	s.st = NewState(s.eng.Catalog())
	s.st.LastTickUnix = s.now().Unix()
	s.journal.Push(s.st.Day, s.st.Hour, SeverityGood, "New game started. Previous save data was wiped.")
	s.persistLocked()
	return nil
}

// SaveNow forces a snapshot write, used on shutdown.
func (s *Service) SaveNow() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.store == nil {
		return nil
	}
	return s.store.Save(s.st.Clone())
}

func (s *Service) intent(apply func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := apply(); err != nil {
		return err
	}
	s.persistLocked()
	return nil
}

func (s *Service) persistLocked() {
	if s.store == nil {
		return
	}
	if err := s.store.Save(s.st.Clone()); err != nil {
		s.log.Warn("autosave failed", "err", err)
	}
}
