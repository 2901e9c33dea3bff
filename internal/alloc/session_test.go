package alloc

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/allot/internal/model"
)

type memPersister struct {
	mu    sync.Mutex
	saves map[string]Record
	calls int
	err   error
}

func (m *memPersister) Save(key string, rec Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return m.err
	}
	if m.saves == nil {
		m.saves = make(map[string]Record)
	}
	m.saves[key] = rec
	return nil
}

func TestParseTotalFunds(t *testing.T) {
	v, ok, err := ParseTotalFunds(" 1000.5 ")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1000.5, v)

	_, ok, err = ParseTotalFunds("")
	require.NoError(t, err)
	assert.False(t, ok)

	for _, bad := range []string{"abc", "0", "-5", "NaN", "Inf"} {
		_, _, err := ParseTotalFunds(bad)
		assert.ErrorIs(t, err, ErrInvalidTotalFunds, bad)
	}
}

func TestSessionAddRequiresFunds(t *testing.T) {
	s := NewSession()

	_, err := s.AddItem(NewItem{})
	assert.ErrorIs(t, err, ErrInvalidState)
	assert.ErrorIs(t, err, ErrInvalidTotalFunds)

	_, err = s.AddDefaultPortfolio()
	assert.ErrorIs(t, err, ErrInvalidState)
	assert.Empty(t, s.Items())
}

func TestSessionSetTotalFundsRecomputesAmounts(t *testing.T) {
	s := NewSession()
	require.NoError(t, s.SetTotalFunds("100000"))
	_, err := s.AddDefaultPortfolio()
	require.NoError(t, err)

	require.NoError(t, s.SetTotalFunds("200000"))
	items := s.Items()
	assert.InDelta(t, 90_000, items[0].Amount, 1e-9)
	sum := s.Summary()
	assert.Equal(t, model.AllocationComplete, sum.AllocationStatus)
	assert.Equal(t, model.RemainingExact, sum.RemainingStatus)
}

func TestSessionSetTotalFundsInvalidLeavesState(t *testing.T) {
	s := NewSession()
	require.NoError(t, s.SetTotalFunds("5000"))

	assert.ErrorIs(t, s.SetTotalFunds("-1"), ErrInvalidTotalFunds)
	raw, v, set := s.TotalFunds()
	assert.Equal(t, "5000", raw)
	assert.Equal(t, 5000.0, v)
	assert.True(t, set)

	require.NoError(t, s.SetTotalFunds(""))
	_, _, set = s.TotalFunds()
	assert.False(t, set)
}

func TestSessionPersistsAfterEachMutation(t *testing.T) {
	p := &memPersister{}
	s := NewSession(WithPersister(p, "k"))

	require.NoError(t, s.SetTotalFunds("1000"))
	id, err := s.AddItem(NewItem{Name: "A", Percentage: 10})
	require.NoError(t, err)
	require.NoError(t, s.UpdateItem(id, Patch{Amount: ptr(300.0)}))

	assert.Equal(t, 3, p.calls)
	rec := p.saves["k"]
	assert.Equal(t, "1000", rec.TotalFunds)
	require.Len(t, rec.Projects, 1)
	assert.Equal(t, 300.0, rec.Projects[0].Amount)
	assert.Equal(t, 1, rec.ProjectIDCounter)
	assert.NoError(t, s.LastPersistError())

	// Failed mutations are not persisted.
	assert.Error(t, s.RemoveItem("nope"))
	assert.Equal(t, 3, p.calls)
}

func TestSessionPersistFailureKeepsEdit(t *testing.T) {
	p := &memPersister{err: errors.New("disk full")}
	s := NewSession(WithPersister(p, ""))

	require.NoError(t, s.SetTotalFunds("1000"))
	_, v, _ := s.TotalFunds()
	assert.Equal(t, 1000.0, v)
	assert.EqualError(t, s.LastPersistError(), "disk full")

	p.err = nil
	require.NoError(t, s.SetTotalFunds("2000"))
	assert.NoError(t, s.LastPersistError())
	_, ok := p.saves[RecordKey]
	assert.True(t, ok)
}

func TestSessionEvents(t *testing.T) {
	s := NewSession()
	var got []Event
	unsub := s.Subscribe(func(ev Event) {
		// Callbacks run outside the lock.
		_ = s.Summary()
		got = append(got, ev)
	})

	require.NoError(t, s.SetTotalFunds("1000"))
	ids, err := s.AddDefaultPortfolio()
	require.NoError(t, err)
	require.NoError(t, s.RemoveItem(ids[0]))
	unsub()
	require.NoError(t, s.SetTotalFunds("10"))

	require.Len(t, got, 3)
	assert.Equal(t, EventFunds, got[0].Kind)
	assert.Equal(t, EventReplaced, got[1].Kind)
	assert.Equal(t, ids, got[1].IDs)
	assert.Equal(t, EventRemoved, got[2].Kind)
	assert.Equal(t, []string{ids[0]}, got[2].IDs)
	assert.Equal(t, int64(3), got[2].Seq)
	assert.Equal(t, 4, got[2].Summary.Items)
}

func TestSessionRestore(t *testing.T) {
	s := NewSession()
	n, err := s.Restore(State{
		TotalFunds: "1000",
		Items: []model.LineItem{
			{ID: "project-3", Name: "a", Amount: 400, Percentage: 40, Category: model.CategoryBond, Color: "#165DFF"},
			{ID: "project-3", Name: "b", Amount: 100, Percentage: 10, Category: model.CategoryFund, Color: "#165DFF"},
		},
		Counter: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	items := s.Items()
	assert.Equal(t, "project-4", items[1].ID)
	assert.Equal(t, 400.0, items[0].Amount)

	id, err := s.AddItem(NewItem{})
	require.NoError(t, err)
	assert.Equal(t, "project-5", id)
}

func TestSessionRestoreInvalidFunds(t *testing.T) {
	s := NewSession()
	_, err := s.Restore(State{TotalFunds: "lots"})
	require.NoError(t, err)
	_, _, set := s.TotalFunds()
	assert.False(t, set)
}

func TestSessionRecordRoundTrip(t *testing.T) {
	s := NewSession()
	require.NoError(t, s.SetTotalFunds("100000"))
	_, err := s.AddDefaultPortfolio()
	require.NoError(t, err)

	data, err := Encode(s.Record())
	require.NoError(t, err)
	rec, err := Decode(data)
	require.NoError(t, err)

	s2 := NewSession()
	_, err = s2.Restore(Deserialize(rec))
	require.NoError(t, err)
	assert.Equal(t, s.Items(), s2.Items())
	assert.Equal(t, s.Summary(), s2.Summary())
	assert.Equal(t, s.Record(), s2.Record())
}

func TestSessionClosed(t *testing.T) {
	s := NewSession()
	s.Close()
	assert.ErrorIs(t, s.SetTotalFunds("10"), ErrInvalidState)
}

func TestSessionConcurrentEdits(t *testing.T) {
	s := NewSession()
	require.NoError(t, s.SetTotalFunds("1000"))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := s.AddItem(NewItem{Percentage: 1})
			if err == nil {
				_ = s.UpdateItem(id, Patch{Percentage: ptr(2.0)})
			}
			_ = s.Summary()
		}()
	}
	wg.Wait()

	assert.Len(t, s.Items(), 20)
	assert.InDelta(t, 40, s.Summary().AllocatedPercentage, 1e-9)
}

func TestSessionSnapshot(t *testing.T) {
	s := NewSession()
	snap := s.Snapshot()
	assert.False(t, snap.FundsSet)
	assert.Empty(t, snap.Items)
	assert.True(t, snap.Chart.Empty)

	require.NoError(t, s.SetTotalFunds("1000"))
	_, err := s.AddItem(NewItem{Name: "A", Percentage: 25})
	require.NoError(t, err)

	snap = s.Snapshot()
	assert.True(t, snap.FundsSet)
	assert.Equal(t, "1000", snap.TotalFunds)
	require.Len(t, snap.Items, 1)
	assert.InDelta(t, 250, snap.Summary.AllocatedAmount, 1e-9)
	assert.Equal(t, []string{"A"}, snap.Chart.Labels)
	assert.Equal(t, 1, snap.Counter)
}
