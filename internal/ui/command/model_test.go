package command

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		input   string
		want    CommandMsg
		wantErr bool
	}{
		{"reload", CommandMsg{Name: Reload}, false},
		{"  Clear ", CommandMsg{Name: Clear}, false},
		{"q", CommandMsg{Name: Quit}, false},
		{"search meeting notes", CommandMsg{Name: Search, Arg: "meeting notes"}, false},
		{"search", CommandMsg{Name: Search}, false},
		{"account a@example.com", CommandMsg{Name: Account, Arg: "a@example.com"}, false},
		{"account all", CommandMsg{Name: Account}, false},
		{"category Meeting Booked", CommandMsg{Name: Category, Arg: "Meeting Booked"}, false},
		{"folder ALL", CommandMsg{Name: Folder}, false},
		{"configure", CommandMsg{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Parse(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownCommand)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestModel_EnterEmitsParsedCommand(t *testing.T) {
	m := New(80, 10)
	for _, r := range "search demo" {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, CommandMsg{Name: Search, Arg: "demo"}, cmd())
}

func TestModel_UnknownCommandShowsError(t *testing.T) {
	m := New(80, 10)
	for _, r := range "bogus" {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.Contains(t, m.View(), "unknown command")

	m.Reset()
	assert.NotContains(t, m.View(), "unknown command")
}
