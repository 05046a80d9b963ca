package session

import (
	"sync"
	"time"

	"github.com/radieske/solbet-poc/internal/bet-service/wallet"
	"github.com/radieske/solbet-poc/internal/betting/model"
	"github.com/radieske/solbet-poc/internal/betting/slip"
	"github.com/radieske/solbet-poc/internal/betting/tracker"
)

// Session guarda o estado de um owner conectado: bilhete e histórico
type Session struct {
	Owner    string
	Identity wallet.Identity
	Slip     *slip.Slip
	History  *tracker.History
	OpenedAt time.Time
}

// Registry mapeia owner -> sessão
type Registry struct {
	mu   sync.RWMutex
	byID map[string]*Session
	now  func() time.Time
}

func NewRegistry() *Registry {
	return &Registry{byID: make(map[string]*Session), now: time.Now}
}

// Open cria a sessão ou, se o owner reconectar, troca a identidade e mescla o histórico
// do store com o que só existe em memória. O bilhete em andamento é mantido.
func (r *Registry) Open(id wallet.Identity, history []model.PlacedBet) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.byID[id.Owner]; ok {
		s.Identity = id
		s.History.Merge(history)
		return s
	}
	s := &Session{
		Owner:    id.Owner,
		Identity: id,
		Slip:     slip.New(),
		History:  tracker.NewHistory(history),
		OpenedAt: r.now(),
	}
	r.byID[id.Owner] = s
	return s
}

func (r *Registry) Get(owner string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.byID[owner]
	return s, ok
}

// Close descarta a sessão; retorna false se não existia
func (r *Registry) Close(owner string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[owner]; !ok {
		return false
	}
	delete(r.byID, owner)
	return true
}

// ApplyStatus aplica um resultado vindo do resolver no histórico em memória
func (r *Registry) ApplyStatus(owner, storeID string, status model.Status) bool {
	s, ok := r.Get(owner)
	if !ok {
		return false
	}
	return s.History.ApplyStatus(storeID, status)
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}
