package knowledge

import (
	"context"
	"sync"

	"github.com/hzhao/ConsultAPI/internal/domain/knowledgeModel"
)

// storeState holds the authoritative category/document slices behind a
// copy-on-write commit: a writer copies, mutates the copy, persists it, and
// only then swaps it in. Readers never observe a half-applied mutation and a
// failed persist leaves the old state untouched.
//
// writeMu serializes the whole read-modify-persist sequence - without it two
// concurrent mutations would silently last-write-win.
type storeState struct {
	mu      sync.RWMutex
	writeMu sync.Mutex

	categories []knowledgeModel.Category
	documents  []knowledgeModel.Document
}

func newStoreState() *storeState {
	return &storeState{}
}

func (st *storeState) replace(snap knowledgeModel.Snapshot) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.categories = snap.Categories
	st.documents = snap.Documents
}

// snapshot hands out copied slices so callers can annotate derived fields
// (document counts) without touching live state. Chunk slices are shared and
// treated as immutable - content updates always swap in a fresh slice.
func (st *storeState) snapshot() knowledgeModel.Snapshot {
	st.mu.RLock()
	defer st.mu.RUnlock()

	snap := knowledgeModel.Snapshot{
		Categories: make([]knowledgeModel.Category, len(st.categories)),
		Documents:  make([]knowledgeModel.Document, len(st.documents)),
	}
	copy(snap.Categories, st.categories)
	copy(snap.Documents, st.documents)
	return snap
}

func (s *service) commit(ctx context.Context, mutate func(*knowledgeModel.Snapshot) error) error {
	s.state.writeMu.Lock()
	defer s.state.writeMu.Unlock()

	snap := s.state.snapshot()
	if err := mutate(&snap); err != nil {
		return err
	}

	if err := s.persistence.Save(ctx, snap); err != nil {
		//state is not swapped - the mutation never happened as far as
		//readers are concerned
		s.logger.Error("Persisting knowledge snapshot failed", "error", err)
		return err
	}

	s.state.replace(snap)
	return nil
}
