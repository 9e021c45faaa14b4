package store

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/oakwood-commons/crmx/internal/record"
)

func rec(id, name string, aum float64) record.Record {
	return record.New(id, map[string]any{"name": name, "aum": aum})
}

func ids(rows []record.Record) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.ID()
	}
	return out
}

func TestReplaceIsTotal(t *testing.T) {
	tests := []struct {
		name  string
		prior []record.Record
		next  []record.Record
	}{
		{
			name:  "larger prior store",
			prior: []record.Record{rec("1", "Alice", 5000), rec("2", "Bob", 20000), rec("3", "Carol", 80000)},
			next:  []record.Record{rec("2", "Bob", 20000)},
		},
		{
			name:  "empty replacement clears",
			prior: []record.Record{rec("1", "Alice", 5000)},
			next:  []record.Record{},
		},
		{
			name:  "disjoint ids",
			prior: []record.Record{rec("1", "Alice", 5000)},
			next:  []record.Record{rec("9", "Ivy", 105000), rec("8", "Henry", 220000)},
		},
		{
			name:  "duplicates kept",
			prior: nil,
			next:  []record.Record{rec("1", "Alice", 5000), rec("1", "Alice", 5000)},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(tt.prior)
			gen := s.Replace(tt.next)
			assert.Equal(t, uint64(1), gen)
			assert.Equal(t, ids(tt.next), ids(s.Current()))
			assert.Equal(t, len(tt.next), s.Len())
		})
	}
}

func TestCurrentReturnsCopy(t *testing.T) {
	s := New([]record.Record{rec("1", "Alice", 5000)})
	rows := s.Current()
	rows[0] = rec("x", "Mallory", 0)
	assert.Equal(t, []string{"1"}, ids(s.Current()))
}

func TestReplaceCopiesInput(t *testing.T) {
	s := New(nil)
	in := []record.Record{rec("1", "Alice", 5000)}
	s.Replace(in)
	in[0] = rec("x", "Mallory", 0)
	assert.Equal(t, []string{"1"}, ids(s.Current()))
}

func TestSnapshotGeneration(t *testing.T) {
	s := New([]record.Record{rec("1", "Alice", 5000)})
	fixed := time.Date(2025, 7, 16, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	snap := s.Snapshot()
	assert.Equal(t, uint64(0), snap.Generation)

	s.Replace(nil)
	s.Replace([]record.Record{rec("2", "Bob", 20000)})
	snap = s.Snapshot()
	assert.Equal(t, uint64(2), snap.Generation)
	assert.Equal(t, uint64(2), s.Generation())
	assert.Equal(t, fixed, snap.UpdatedAt)
	assert.Equal(t, []string{"2"}, ids(snap.Rows))
}

func TestConcurrentReadersNeverSeePartialStore(t *testing.T) {
	small := []record.Record{rec("1", "Alice", 5000)}
	large := []record.Record{rec("1", "Alice", 5000), rec("2", "Bob", 20000), rec("3", "Carol", 80000)}
	s := New(small)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			if i%2 == 0 {
				s.Replace(large)
			} else {
				s.Replace(small)
			}
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			n := len(s.Current())
			assert.True(t, n == 1 || n == 3, "observed partial store of %d rows", n)
		}
	}()
	wg.Wait()
}
