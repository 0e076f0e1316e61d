package filterbar

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/mail-triage/internal/model"
)

func TestFilterBar_ClearHintOnlyWithActiveFilters(t *testing.T) {
	m := New(200)
	m.SetFilters(model.Filters{}, false)
	assert.NotContains(t, m.View(), "clear all filters")
	assert.Contains(t, m.View(), "pick an account")

	m.SetFilters(model.Filters{Account: "a@example.com", Category: model.CategorySpam}, true)
	view := m.View()
	assert.Contains(t, view, "clear all filters")
	assert.Contains(t, view, "a@example.com")
	assert.Contains(t, view, "Spam")
	assert.NotContains(t, view, "pick an account")
}

func TestFilterBar_SearchSubmit(t *testing.T) {
	m := New(120)
	m.StartSearch()
	require.True(t, m.Searching())

	for _, r := range "pricing " {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.False(t, m.Searching())
	assert.Equal(t, SearchSubmittedMsg{Query: "pricing"}, cmd())
}

func TestFilterBar_SearchSubmitUnchanged(t *testing.T) {
	m := New(120)
	m.SetFilters(model.Filters{Search: "demo"}, false)
	m.StartSearch()

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, SearchSubmittedMsg{Query: "demo"}, cmd())
}

func TestFilterBar_SearchCancelRestoresQuery(t *testing.T) {
	m := New(120)
	m.SetFilters(model.Filters{Search: "demo"}, false)
	m.StartSearch()

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})

	assert.Nil(t, cmd)
	assert.False(t, m.Searching())
	assert.Contains(t, m.View(), "demo")
	assert.NotContains(t, m.View(), "demox")
}

func TestFilterBar_IgnoresKeysWhenNotSearching(t *testing.T) {
	m := New(120)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
}
