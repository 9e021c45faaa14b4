package ui

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/crmx/internal/chat"
	"github.com/oakwood-commons/crmx/internal/record"
	"github.com/oakwood-commons/crmx/internal/search"
	"github.com/oakwood-commons/crmx/internal/store"
	"github.com/oakwood-commons/crmx/internal/view"
)

func customer(id, name string, age float64, gender, risk string, aum float64) record.Record {
	return record.New(id, map[string]any{
		"name":        name,
		"age":         age,
		"gender":      gender,
		"riskProfile": risk,
		"aum":         aum,
		"lastContact": time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC),
	})
}

func sampleCustomers() []record.Record {
	return []record.Record{
		customer("1", "Alice", 34, "female", "low", 120000),
		customer("2", "Bob", 58, "male", "high", 2500000),
		customer("3", "Carol", 45, "female", "medium", 640000),
		customer("4", "Dave", 29, "male", "low", 45000),
		customer("5", "Erin", 61, "female", "high", 1800000),
	}
}

type fixture struct {
	m        *Model
	store    *store.Store
	resolves atomic.Int32
}

func newFixture(t *testing.T, payload string, resolveErr error) *fixture {
	t.Helper()
	f := &fixture{}
	schema := record.CustomerSchema()
	f.store = store.New(sampleCustomers())
	resolver := search.ResolverFunc(func(context.Context, string) ([]byte, error) {
		f.resolves.Add(1)
		if resolveErr != nil {
			return nil, resolveErr
		}
		return []byte(payload), nil
	})
	assistant := chat.AssistantFunc(func(_ context.Context, msg string) (string, error) {
		return "echo: " + msg, nil
	})
	f.m = New(Options{
		Schema:  schema,
		Store:   f.store,
		Search:  search.New(f.store, schema, resolver),
		Chat:    chat.New(assistant),
		View:    view.Config{Page: view.PageSpec{Size: 2}},
		NoColor: true,
		Width:   120,
		Height:  30,
	})
	return f
}

func key(s string) tea.KeyPressMsg {
	switch s {
	case "enter":
		return tea.KeyPressMsg{Code: tea.KeyEnter}
	case "esc":
		return tea.KeyPressMsg{Code: tea.KeyEscape}
	case "tab":
		return tea.KeyPressMsg{Code: tea.KeyTab}
	case "left":
		return tea.KeyPressMsg{Code: tea.KeyLeft}
	case "right":
		return tea.KeyPressMsg{Code: tea.KeyRight}
	case "down":
		return tea.KeyPressMsg{Code: tea.KeyDown}
	case "pgdown":
		return tea.KeyPressMsg{Code: tea.KeyPgDown}
	case "ctrl+c":
		return tea.KeyPressMsg{Code: 'c', Mod: tea.ModCtrl}
	}
	r := []rune(s)[0]
	return tea.KeyPressMsg{Code: r, Text: s}
}

func press(m *Model, keys ...string) tea.Cmd {
	var cmd tea.Cmd
	for _, k := range keys {
		_, cmd = m.Update(key(k))
	}
	return cmd
}

func typeText(m *Model, text string) {
	for _, r := range text {
		m.Update(tea.KeyPressMsg{Code: r, Text: string(r)})
	}
}

// collect runs cmd and flattens batches into their messages.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collect(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

// deliver feeds every message produced by cmd back into the model, except
// spinner ticks which would reschedule themselves.
func deliver(m *Model, cmd tea.Cmd) {
	for _, msg := range collect(cmd) {
		switch msg.(type) {
		case searchDoneMsg, chatDoneMsg, reloadDoneMsg:
			m.Update(msg)
		}
	}
}

func pageNames(m *Model) []string {
	var names []string
	for _, row := range m.Result().Rows {
		v, _ := row.Record.Get("name")
		names = append(names, v.(string))
	}
	return names
}

func TestNewDerivesFirstPage(t *testing.T) {
	f := newFixture(t, "[]", nil)
	res := f.m.Result()
	assert.Equal(t, 5, res.Total)
	assert.Equal(t, 3, res.PageCount)
	assert.Equal(t, []string{"Alice", "Bob"}, pageNames(f.m))
	assert.Equal(t, FocusGrid, f.m.Focus())

	out := f.m.Render()
	assert.Contains(t, out, "Alice")
	assert.Contains(t, out, "page 1/3")
	assert.Contains(t, out, "5 records")
}

func TestSortToggleCycle(t *testing.T) {
	f := newFixture(t, "[]", nil)

	press(f.m, "s")
	assert.Equal(t, view.SortSpec{Field: "name", Direction: view.Ascending}, f.m.Config().Sort)

	press(f.m, "s")
	assert.Equal(t, view.SortSpec{Field: "name", Direction: view.Descending}, f.m.Config().Sort)
	assert.Equal(t, []string{"Erin", "Dave"}, pageNames(f.m))
	assert.Contains(t, f.m.Render(), "Name ↓")

	press(f.m, "s")
	assert.False(t, f.m.Config().Sort.Active())
	assert.Equal(t, []string{"Alice", "Bob"}, pageNames(f.m))
}

func TestSortOnSelectedColumn(t *testing.T) {
	f := newFixture(t, "[]", nil)

	// aum is the fifth column
	press(f.m, "right", "right", "right", "right", "s", "s")
	assert.Equal(t, view.SortSpec{Field: "aum", Direction: view.Descending}, f.m.Config().Sort)
	assert.Equal(t, []string{"Bob", "Erin"}, pageNames(f.m))
}

func TestSortRejectsUnsortableColumn(t *testing.T) {
	f := newFixture(t, "[]", nil)
	press(f.m, "right", "right", "s")
	assert.False(t, f.m.Config().Sort.Active())
	assert.Contains(t, f.m.StatusMessage(), "Gender is not sortable")
}

func TestFilterPrompt(t *testing.T) {
	f := newFixture(t, "[]", nil)

	press(f.m, "right", "f")
	require.Equal(t, FocusFilter, f.m.Focus())
	typeText(f.m, ">=45")
	press(f.m, "enter")

	assert.Equal(t, FocusGrid, f.m.Focus())
	assert.Equal(t, []string{"age"}, f.m.Config().Filter.Fields())
	assert.Equal(t, 3, f.m.Result().Total)
	assert.Contains(t, f.m.Render(), "filter age")

	// reopening shows the previous text; clearing it removes the filter
	press(f.m, "f")
	require.Equal(t, FocusFilter, f.m.Focus())
	for range ">=45" {
		f.m.Update(tea.KeyPressMsg{Code: tea.KeyBackspace})
	}
	press(f.m, "enter")
	assert.Empty(t, f.m.Config().Filter)
	assert.Equal(t, 5, f.m.Result().Total)
}

func TestFilterPromptParseErrorStaysOpen(t *testing.T) {
	f := newFixture(t, "[]", nil)
	press(f.m, "right", "f")
	typeText(f.m, ">old")
	press(f.m, "enter")

	assert.Equal(t, FocusFilter, f.m.Focus())
	assert.Empty(t, f.m.Config().Filter)
	assert.NotEmpty(t, f.m.StatusMessage())

	press(f.m, "esc")
	assert.Equal(t, FocusGrid, f.m.Focus())
}

func TestFilterResetsToFirstPageAndClear(t *testing.T) {
	f := newFixture(t, "[]", nil)
	press(f.m, "n")
	require.Equal(t, 1, f.m.Config().Page.Index)

	press(f.m, "f")
	typeText(f.m, "a")
	press(f.m, "enter")
	assert.Equal(t, 0, f.m.Config().Page.Index)
	assert.Equal(t, []string{"Alice", "Carol"}, pageNames(f.m))

	press(f.m, "x")
	assert.Empty(t, f.m.Config().Filter)
	assert.Equal(t, 5, f.m.Result().Total)
}

func TestHideAndShowColumns(t *testing.T) {
	f := newFixture(t, "[]", nil)
	press(f.m, "right", "h")

	assert.Equal(t, []string{"age"}, f.m.Config().Visibility.Hidden())
	for _, col := range f.m.Result().Headers {
		assert.NotEqual(t, "age", col.Field)
	}

	press(f.m, "H")
	assert.Empty(t, f.m.Config().Visibility.Hidden())
	assert.Len(t, f.m.Result().Headers, 7)
}

func TestCannotHideLastColumn(t *testing.T) {
	f := newFixture(t, "[]", nil)
	for range 6 {
		press(f.m, "h")
	}
	require.Len(t, f.m.Result().Headers, 1)
	press(f.m, "h")
	assert.Len(t, f.m.Result().Headers, 1)
	assert.Contains(t, f.m.StatusMessage(), "last column")
}

func TestPaging(t *testing.T) {
	f := newFixture(t, "[]", nil)

	press(f.m, "n")
	assert.Equal(t, []string{"Carol", "Dave"}, pageNames(f.m))
	press(f.m, "pgdown", "n", "n")
	assert.Equal(t, 2, f.m.Config().Page.Index, "paging past the end clamps to the last page")
	assert.Equal(t, []string{"Erin"}, pageNames(f.m))

	press(f.m, "p")
	assert.Equal(t, 1, f.m.Config().Page.Index)
	press(f.m, "g")
	assert.Equal(t, 0, f.m.Config().Page.Index)
	press(f.m, "p")
	assert.Equal(t, 0, f.m.Config().Page.Index)
}

func TestSearchReplacesRowsAndKeepsView(t *testing.T) {
	payload := `[{"id":10,"name":"Zed","age":70},{"id":11,"name":"Yara","age":52},{"id":12,"name":"Xavi","age":41}]`
	f := newFixture(t, payload, nil)
	press(f.m, "s") // sort by name ascending

	press(f.m, "/")
	require.Equal(t, FocusSearch, f.m.Focus())
	typeText(f.m, "older clients")
	cmd := press(f.m, "enter")
	require.NotNil(t, cmd)
	assert.Equal(t, FocusGrid, f.m.Focus())
	assert.Contains(t, f.m.Render(), "Searching")

	deliver(f.m, cmd)
	assert.Equal(t, int32(1), f.resolves.Load())
	assert.Equal(t, 3, f.store.Len())
	assert.Equal(t, view.SortSpec{Field: "name", Direction: view.Ascending}, f.m.Config().Sort)
	assert.Equal(t, []string{"Xavi", "Yara"}, pageNames(f.m))
	assert.Contains(t, f.m.StatusMessage(), `3 records for "older clients"`)
	assert.Contains(t, f.m.Render(), "older clients")
}

func TestSearchEmptyQueryIsNoop(t *testing.T) {
	f := newFixture(t, "[]", nil)
	press(f.m, "/")
	typeText(f.m, "   ")
	cmd := press(f.m, "enter")

	assert.Nil(t, cmd)
	assert.Equal(t, int32(0), f.resolves.Load())
	assert.Equal(t, 5, f.store.Len())
}

func TestSearchSingleFlight(t *testing.T) {
	f := newFixture(t, `[{"id":1,"name":"Only"}]`, nil)
	press(f.m, "/")
	typeText(f.m, "first")
	first := press(f.m, "enter")
	require.NotNil(t, first)

	press(f.m, "/")
	second := press(f.m, "enter")
	assert.Nil(t, second)
	assert.Contains(t, f.m.StatusMessage(), "already running")

	press(f.m, "esc")
	deliver(f.m, first)
	assert.Equal(t, int32(1), f.resolves.Load())
	assert.Equal(t, 1, f.store.Len())
}

func TestSearchFailureKeepsRows(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		err     error
	}{
		{"transport", "", errors.New("connection refused")},
		{"malformed single object", `{"id":1,"name":"Alice"}`, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, tt.payload, tt.err)
			press(f.m, "/")
			typeText(f.m, "anything")
			deliver(f.m, press(f.m, "enter"))

			assert.Equal(t, 5, f.store.Len())
			assert.Equal(t, 5, f.m.Result().Total)
			assert.Contains(t, f.m.StatusMessage(), "showing previous results")
		})
	}
}

func TestSearchKeepsClampedPage(t *testing.T) {
	f := newFixture(t, `[{"id":1,"name":"Only"}]`, nil)
	press(f.m, "n", "n")
	require.Equal(t, 2, f.m.Config().Page.Index)

	press(f.m, "/")
	typeText(f.m, "one")
	deliver(f.m, press(f.m, "enter"))

	res := f.m.Result()
	assert.Equal(t, 0, res.Page)
	assert.True(t, res.Clamped)
	assert.Equal(t, 0, f.m.Config().Page.Index)
}

func TestExternalStoreReplacementRederives(t *testing.T) {
	f := newFixture(t, "[]", nil)
	f.store.Replace(sampleCustomers()[:1])
	f.m.Update(tea.WindowSizeMsg{Width: 100, Height: 20})
	assert.Equal(t, 1, f.m.Result().Total)
}

func TestChatPanel(t *testing.T) {
	f := newFixture(t, "[]", nil)

	press(f.m, "tab")
	require.True(t, f.m.ChatOpen())
	require.Equal(t, FocusChat, f.m.Focus())
	assert.Contains(t, f.m.Render(), chat.Greeting)

	typeText(f.m, "hello")
	cmd := press(f.m, "enter")
	require.NotNil(t, cmd)
	deliver(f.m, cmd)

	out := f.m.Render()
	assert.Contains(t, out, "hello")
	assert.Contains(t, out, "echo: hello")

	// q types into the chat input instead of quitting
	press(f.m, "q")
	assert.False(t, f.m.Quitting())

	press(f.m, "tab")
	assert.False(t, f.m.ChatOpen())
	assert.Equal(t, FocusGrid, f.m.Focus())
}

func TestReload(t *testing.T) {
	f := newFixture(t, "[]", nil)
	calls := 0
	f.m.reload = func(context.Context) ([]record.Record, error) {
		calls++
		return sampleCustomers()[:3], nil
	}
	deliver(f.m, press(f.m, "r"))
	assert.Equal(t, 1, calls)
	assert.Equal(t, 3, f.m.Result().Total)
	assert.Contains(t, f.m.StatusMessage(), "Reloaded 3 records")

	f.m.reload = func(context.Context) ([]record.Record, error) {
		return nil, errors.New("disk gone")
	}
	deliver(f.m, press(f.m, "r"))
	assert.Equal(t, 3, f.m.Result().Total)
	assert.Contains(t, f.m.StatusMessage(), "disk gone")
}

func TestReloadAndSearchDoNotOverlap(t *testing.T) {
	f := newFixture(t, `[{"id":1,"name":"Only"}]`, nil)
	reloads := 0
	f.m.reload = func(context.Context) ([]record.Record, error) {
		reloads++
		return sampleCustomers()[:3], nil
	}

	press(f.m, "/")
	typeText(f.m, "one")
	searchCmd := press(f.m, "enter")
	require.NotNil(t, searchCmd)

	assert.Nil(t, press(f.m, "r"))
	assert.Contains(t, f.m.StatusMessage(), "Wait for the search")
	deliver(f.m, searchCmd)
	assert.Equal(t, 0, reloads)
	assert.Equal(t, 1, f.store.Len())
	assert.Equal(t, 1, f.m.Result().Total)

	reloadCmd := press(f.m, "r")
	require.NotNil(t, reloadCmd)
	press(f.m, "/")
	typeText(f.m, "again")
	assert.Nil(t, press(f.m, "enter"))
	assert.Contains(t, f.m.StatusMessage(), "Wait for the reload")
	assert.Equal(t, int32(1), f.resolves.Load())

	press(f.m, "esc")
	deliver(f.m, reloadCmd)
	assert.Equal(t, 1, reloads)
	assert.Equal(t, 3, f.store.Len())
	assert.Equal(t, 3, f.m.Result().Total)
}

func TestDeriveTracksStoreGeneration(t *testing.T) {
	f := newFixture(t, "[]", nil)
	gen := f.store.Replace(sampleCustomers()[:2])
	f.m.derive()
	assert.Equal(t, gen, f.m.generation)
	assert.Equal(t, 2, f.m.Result().Total)
}

func TestHelpOverlay(t *testing.T) {
	f := newFixture(t, "[]", nil)
	press(f.m, "?")
	out := f.m.Render()
	assert.Contains(t, out, "natural-language search")
	assert.Contains(t, out, "low..high")

	// keys other than the close keys are swallowed while help is shown
	press(f.m, "n")
	assert.Equal(t, 0, f.m.Config().Page.Index)
	press(f.m, "esc")
	assert.NotContains(t, f.m.Render(), "natural-language search")
}

func TestQuitKeys(t *testing.T) {
	for _, k := range []string{"q", "ctrl+c"} {
		t.Run(k, func(t *testing.T) {
			f := newFixture(t, "[]", nil)
			cmd := press(f.m, k)
			require.NotNil(t, cmd)
			_, ok := cmd().(tea.QuitMsg)
			assert.True(t, ok)
			assert.True(t, f.m.Quitting())
		})
	}
}

func TestEmptyStateMessage(t *testing.T) {
	f := newFixture(t, "[]", nil)
	press(f.m, "f")
	typeText(f.m, "=Nobody")
	press(f.m, "enter")
	assert.Equal(t, 0, f.m.Result().Total)
	assert.True(t, strings.Contains(f.m.Render(), "No records match"))
}
