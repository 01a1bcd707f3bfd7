// Package store implements the world registry: public worlds (shared,
// resumed from disk at boot) and private worlds (per-session, capped,
// removed on last close). Grounded on kartoffels-store's worlds.rs, with
// the Rust "on_last_drop" cyclic-ownership hook realized as an explicit
// close function returned by CreatePrivate, per SPEC_FULL.md's
// Go-realization design note — there is no destructor to hang removal-on-
// drop off of, so the caller's call to that function plays that role.
package store

import (
	"context"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/Woonters/kartoffels-for-pr/internal/codec"
	"github.com/Woonters/kartoffels-for-pr/internal/id"
	"github.com/Woonters/kartoffels-for-pr/internal/world"
)

// MaxPrivateWorlds bounds per-process private-world creation, per §4.9.
const MaxPrivateWorlds = 128

// ErrOverloaded is returned by CreatePrivate once MaxPrivateWorlds is hit.
var ErrOverloaded = fmt.Errorf("store: overloaded (>= %d private worlds)", MaxPrivateWorlds)

// Store owns every running world task in the process.
type Store struct {
	log     zerolog.Logger
	dataDir string

	mu      sync.Mutex
	public  map[id.Id]*world.Handle
	private map[id.Id]*world.Handle

	testing bool
	idSeq   uint64
}

// New constructs an empty Store. dataDir may be empty, in which case Boot
// is a no-op and persistence is unavailable.
func New(dataDir string, log zerolog.Logger) *Store {
	return &Store{
		log:     log.With().Str("component", "store").Logger(),
		dataDir: dataDir,
		public:  make(map[id.Id]*world.Handle),
		private: make(map[id.Id]*world.Handle),
	}
}

// Boot scans dataDir for "<id>.world" files and resumes each as a public
// world, per §4.9. A single world's load failure is logged and skipped;
// it does not prevent the rest from loading.
func (s *Store) Boot() error {
	if s.dataDir == "" {
		return nil
	}

	entries, err := os.ReadDir(s.dataDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("store: boot: read %s: %w", s.dataDir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".world") {
			continue
		}

		stem := strings.TrimSuffix(entry.Name(), ".world")
		worldID, err := id.Parse(stem)
		if err != nil {
			s.log.Warn().Str("file", entry.Name()).Err(err).Msg("skipping world file with unparseable id")
			continue
		}

		path := filepath.Join(s.dataDir, entry.Name())
		if err := s.resume(worldID, path); err != nil {
			s.log.Warn().Str("file", entry.Name()).Err(err).Msg("skipping world file that failed to load")
			continue
		}

		s.log.Info().Stringer("id", worldID).Msg("world resumed")
	}

	return nil
}

func (s *Store) resume(worldID id.Id, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	body, err := codec.Load(f)
	if err != nil {
		return err
	}

	state, err := world.Restore(body)
	if err != nil {
		return err
	}

	h := world.SpawnFromState(state)

	s.mu.Lock()
	s.public[worldID] = h
	s.mu.Unlock()

	return nil
}

// CreatePublic starts a fresh public world under worldID, persisted on
// disk going forward. Per §9's open question, public-world creation is
// treated as equivalent to private creation with an externally chosen id.
func (s *Store) CreatePublic(worldID id.Id, cfg world.Config) (*world.Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.public[worldID]; exists {
		return nil, fmt.Errorf("store: world %s already exists", worldID)
	}

	h := world.Spawn(cfg)
	s.public[worldID] = h
	return h, nil
}

// CreatePrivate starts a fresh private world with a freshly assigned id
// (monotonic under testing, random otherwise) and returns a handle plus a
// close function the caller must call exactly once when done — the Go
// realization of "removed on last drop."
func (s *Store) CreatePrivate(testing bool, cfg world.Config) (id.Id, *world.Handle, func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.private) >= MaxPrivateWorlds {
		return 0, nil, nil, ErrOverloaded
	}

	var worldID id.Id
	for {
		if testing {
			s.idSeq++
			worldID = id.Id(s.idSeq)
		} else {
			worldID = id.NewFromRand(rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())))
		}
		if _, exists := s.private[worldID]; !exists {
			break
		}
	}

	h := world.Spawn(cfg)
	s.private[worldID] = h

	s.log.Info().Stringer("id", worldID).Msg("private world created")

	closeFn := func() {
		s.mu.Lock()
		delete(s.private, worldID)
		s.mu.Unlock()
		s.log.Info().Stringer("id", worldID).Msg("private world destroyed")
	}

	return worldID, h, closeFn, nil
}

// Get returns a handle for worldID, checking public worlds then private.
func (s *Store) Get(worldID id.Id) (*world.Handle, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if h, ok := s.public[worldID]; ok {
		return h, true
	}
	h, ok := s.private[worldID]
	return h, ok
}

// Handles returns a snapshot of every world currently registered, keyed
// by id, for callers (like the process metrics watcher) that need to
// enumerate resident worlds without reaching into Store internals.
func (s *Store) Handles() map[id.Id]*world.Handle {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[id.Id]*world.Handle, len(s.public)+len(s.private))
	for id, h := range s.public {
		out[id] = h
	}
	for id, h := range s.private {
		out[id] = h
	}
	return out
}

// Shutdown saves every public world to dataDir (when one is configured; a
// failed save is logged and the shutdown goes on) and signals every world
// (public and private) to finish its current tick and exit, fanning the
// shutdowns out concurrently via errgroup — the same concurrent-fan-in
// idiom the ambient stack uses elsewhere for "wait for N independent
// things, surface the first error."
func (s *Store) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	handles := make([]*world.Handle, 0, len(s.public)+len(s.private))
	publicIDs := make(map[*world.Handle]id.Id, len(s.public))
	for worldID, h := range s.public {
		handles = append(handles, h)
		publicIDs[h] = worldID
	}
	for _, h := range s.private {
		handles = append(handles, h)
	}
	s.mu.Unlock()

	g, _ := errgroup.WithContext(ctx)
	for _, h := range handles {
		h := h
		g.Go(func() error {
			if worldID, ok := publicIDs[h]; ok && s.dataDir != "" {
				if err := s.Save(worldID, h); err != nil {
					s.log.Warn().Stringer("id", worldID).Err(err).Msg("saving world on shutdown failed")
				}
			}
			h.Shutdown()
			return nil
		})
	}

	return g.Wait()
}

// Save persists worldID's current state to <dataDir>/<id>.world, writing
// to a temp file and renaming into place so a crash mid-write never
// corrupts the previous on-disk copy, per §4.10.
func (s *Store) Save(worldID id.Id, h *world.Handle) error {
	if s.dataDir == "" {
		return fmt.Errorf("store: save: no data directory configured")
	}

	body, err := h.Export()
	if err != nil {
		return err
	}

	final := filepath.Join(s.dataDir, worldID.String()+".world")
	tmp := final + ".tmp"

	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("store: save: create %s: %w", tmp, err)
	}

	if err := codec.Save(f, body); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("store: save: encode: %w", err)
	}

	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("store: save: fsync: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("store: save: close: %w", err)
	}

	if err := os.Rename(tmp, final); err != nil {
		return fmt.Errorf("store: save: rename: %w", err)
	}

	return nil
}

