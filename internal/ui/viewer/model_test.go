package viewer

import (
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/mail-triage/internal/keys"
	"github.com/nhle/mail-triage/internal/model"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func testEmail() *model.Email {
	return &model.Email{
		ID:           "e1",
		AccountEmail: "sales@example.com",
		Folder:       "INBOX",
		From:         "alice@acme.io",
		To:           []string{"sales@example.com"},
		Cc:           []string{"boss@acme.io"},
		Subject:      "Pricing question",
		Body:         "Plain body text",
		HTML:         "<p>Rich <b>body</b> text</p>",
		Date:         time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
		Attachments: []model.Attachment{
			{Filename: "quote.pdf", ContentType: "application/pdf", Size: 2048},
		},
	}
}

func newViewer() Model {
	return New(keys.DefaultKeyMap(), 80, 60)
}

func TestViewer_EmptyState(t *testing.T) {
	m := newViewer()
	assert.Contains(t, m.View(), "Select an email to view")
}

func TestViewer_RendersEmail(t *testing.T) {
	m := newViewer()
	m.SetEmail(testEmail())

	view := m.View()
	assert.Contains(t, view, "Pricing question")
	assert.Contains(t, view, "alice@acme.io")
	assert.Contains(t, view, "boss@acme.io")
	assert.Contains(t, view, "Uncategorized")
	assert.Contains(t, view, "Plain body text")
	assert.Contains(t, view, "Attachments (1)")
	assert.Contains(t, view, "quote.pdf")
	assert.Contains(t, view, "2.0 kB")
}

func TestViewer_ToggleHTML(t *testing.T) {
	m := newViewer()
	m.SetEmail(testEmail())

	m, _ = m.Update(runes("v"))
	view := m.View()
	assert.Contains(t, view, "Rich")
	assert.NotContains(t, view, "Plain body text")
	assert.NotContains(t, view, "<p>")

	m, _ = m.Update(runes("v"))
	assert.Contains(t, m.View(), "Plain body text")
}

func TestViewer_ToggleHTMLResetsOnEmailChange(t *testing.T) {
	m := newViewer()
	m.SetEmail(testEmail())
	m, _ = m.Update(runes("v"))

	other := testEmail()
	other.ID = "e2"
	other.Body = "Second body"
	m.SetEmail(other)

	assert.Contains(t, m.View(), "Second body")
}

func TestViewer_ActionRequests(t *testing.T) {
	m := newViewer()
	m.SetEmail(testEmail())

	_, cmd := m.Update(runes("i"))
	require.NotNil(t, cmd)
	assert.Equal(t, RecategorizeRequestMsg{ID: "e1"}, cmd())

	_, cmd = m.Update(runes("s"))
	require.NotNil(t, cmd)
	assert.Equal(t, SuggestReplyRequestMsg{ID: "e1"}, cmd())
}

func TestViewer_BusyFlagsDisableActions(t *testing.T) {
	m := newViewer()
	m.SetEmail(testEmail())
	m.SetBusy(true, true)

	view := m.View()
	assert.Contains(t, view, "Processing...")
	assert.Contains(t, view, "Generating...")

	_, cmd := m.Update(runes("i"))
	assert.Nil(t, cmd)
	_, cmd = m.Update(runes("s"))
	assert.Nil(t, cmd)
	m, _ = m.Update(runes("m"))
	assert.False(t, m.PickerOpen())
}

func TestViewer_SuggestedReply(t *testing.T) {
	m := newViewer()
	m.SetEmail(testEmail())
	m.SetReply(&model.SuggestedReply{
		EmailID:        "e1",
		SuggestedReply: "Happy to share our pricing.",
		Confidence:     0.874,
		Context:        []string{"pricing"},
	})

	view := m.View()
	assert.Contains(t, view, "Confidence: 87%")
	assert.Contains(t, view, "Happy to share our pricing.")

	m.SetReply(nil)
	assert.NotContains(t, m.View(), "Suggested Reply")
}

func TestViewer_CopyReply(t *testing.T) {
	var copied string
	orig := writeClipboard
	writeClipboard = func(s string) error {
		copied = s
		return nil
	}
	t.Cleanup(func() { writeClipboard = orig })

	m := newViewer()
	m.SetEmail(testEmail())

	_, cmd := m.Update(runes("y"))
	assert.Nil(t, cmd, "nothing to copy without a reply")

	m.SetReply(&model.SuggestedReply{SuggestedReply: "Thanks!"})
	_, cmd = m.Update(runes("y"))
	require.NotNil(t, cmd)
	assert.Equal(t, CopiedMsg{}, cmd())
	assert.Equal(t, "Thanks!", copied)
}

func TestViewer_CopyReplyFailure(t *testing.T) {
	orig := writeClipboard
	writeClipboard = func(string) error { return errors.New("no clipboard") }
	t.Cleanup(func() { writeClipboard = orig })

	m := newViewer()
	m.SetEmail(testEmail())
	m.SetReply(&model.SuggestedReply{SuggestedReply: "Thanks!"})

	_, cmd := m.Update(runes("y"))
	require.NotNil(t, cmd)
	msg, ok := cmd().(CopiedMsg)
	require.True(t, ok)
	assert.Error(t, msg.Err)
}

func TestViewer_PickerOpensAndCancels(t *testing.T) {
	m := newViewer()
	m.SetEmail(testEmail())

	m, _ = m.Update(runes("m"))
	require.True(t, m.PickerOpen())
	assert.Contains(t, m.View(), "Set category")

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, m.PickerOpen())
}

func TestViewer_PickerClosesOnEmailChange(t *testing.T) {
	m := newViewer()
	m.SetEmail(testEmail())
	m, _ = m.Update(runes("m"))
	require.True(t, m.PickerOpen())

	m.SetEmail(nil)
	assert.False(t, m.PickerOpen())
}
