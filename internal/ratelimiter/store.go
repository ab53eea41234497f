// internal/ratelimiter/store.go
package ratelimiter

import (
	"context"
	"sync"
	"time"
)

// Entry es el estado de una clave dentro de su ventana actual.
type Entry struct {
	Count   int
	ResetAt time.Time
}

// Store es el contrato del contador de peticiones. Una Entry nil significa
// "ausente": la clave nunca se vio, o su ventana ya expiró.
//
//   - Get devuelve la entrada viva de la clave, o nil.
//   - Set arranca una ventana nueva con el contador inicial dado.
//   - Increment suma 1 a una ventana viva; sobre una clave ausente no hace
//     nada y devuelve nil (el llamador debe usar Set primero).
type Store interface {
	Get(ctx context.Context, key string) (*Entry, error)
	Set(ctx context.Context, key string, count int, ttl time.Duration) (*Entry, error)
	Increment(ctx context.Context, key string) (*Entry, error)
}

// MemoryStore implementa Store con un mapa en memoria. La expiración es
// perezosa: Get e Increment comprueban la ventana al leer, así que el
// barrido periódico solo existe para no acumular claves muertas.
type MemoryStore struct {
	sync.Mutex
	entries    map[string]*Entry
	sweepEvery time.Duration
	now        func() time.Time
}

type MemoryOption func(*MemoryStore)

// WithSweepInterval cambia cada cuánto corre el barrido de claves expiradas.
func WithSweepInterval(d time.Duration) MemoryOption {
	return func(s *MemoryStore) { s.sweepEvery = d }
}

// WithClock inyecta el reloj. Lo usamos en los tests.
func WithClock(now func() time.Time) MemoryOption {
	return func(s *MemoryStore) { s.now = now }
}

// NewMemoryStore crea el store por defecto del rate limiter.
func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		entries:    make(map[string]*Entry),
		sweepEvery: 5 * time.Minute,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MemoryStore) Get(_ context.Context, key string) (*Entry, error) {
	s.Lock()
	defer s.Unlock()

	ent, ok := s.entries[key]
	if !ok {
		return nil, nil
	}
	if !s.now().Before(ent.ResetAt) {
		// La ventana ya pasó: la borramos aquí mismo, sin esperar al barrido.
		delete(s.entries, key)
		return nil, nil
	}
	return &Entry{Count: ent.Count, ResetAt: ent.ResetAt}, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, count int, ttl time.Duration) (*Entry, error) {
	s.Lock()
	defer s.Unlock()

	now := s.now()
	if ent, ok := s.entries[key]; ok && now.Before(ent.ResetAt) {
		// Otra goroutine ya arrancó la ventana entre el Get y este Set.
		// Sumamos en vez de pisar el contador para no perder peticiones.
		ent.Count += count
		return &Entry{Count: ent.Count, ResetAt: ent.ResetAt}, nil
	}

	ent := &Entry{Count: count, ResetAt: now.Add(ttl)}
	s.entries[key] = ent
	return &Entry{Count: ent.Count, ResetAt: ent.ResetAt}, nil
}

func (s *MemoryStore) Increment(_ context.Context, key string) (*Entry, error) {
	s.Lock()
	defer s.Unlock()

	ent, ok := s.entries[key]
	if !ok {
		return nil, nil
	}
	if !s.now().Before(ent.ResetAt) {
		delete(s.entries, key)
		return nil, nil
	}
	ent.Count++
	return &Entry{Count: ent.Count, ResetAt: ent.ResetAt}, nil
}

// StartSweeper lanza una goroutine que borra entradas expiradas cada
// sweepEvery. Se detiene cancelando el contexto.
func (s *MemoryStore) StartSweeper(ctx context.Context) {
	if s.sweepEvery <= 0 {
		return
	}

	t := time.NewTicker(s.sweepEvery)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				s.sweep()
			}
		}
	}()
}

func (s *MemoryStore) sweep() {
	s.Lock()
	defer s.Unlock()

	now := s.now()
	for key, ent := range s.entries {
		if !now.Before(ent.ResetAt) {
			delete(s.entries, key)
		}
	}
}
