package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/mail-triage/internal/model"
)

func testMetadata() *model.Metadata {
	return &model.Metadata{
		Accounts: []string{"a@example.com", "b@example.com"},
		Folders: map[string][]string{
			"a@example.com": {"INBOX", "Archive"},
			"b@example.com": {"INBOX", "Leads"},
		},
	}
}

func TestState_SetAccountClearsFolder(t *testing.T) {
	s := New()
	s.SetMetadata(testMetadata())

	_, err := s.Set(KeyAccount, "a@example.com")
	require.NoError(t, err)
	f, err := s.Set(KeyFolder, "Archive")
	require.NoError(t, err)
	assert.Equal(t, "Archive", f.Folder)

	f, err = s.Set(KeyAccount, "b@example.com")
	require.NoError(t, err)
	assert.Equal(t, "b@example.com", f.Account)
	assert.Empty(t, f.Folder, "folder must be cleared in the same update")
	assert.Equal(t, f, s.Current())
}

func TestState_SetSameAccountStillClearsFolder(t *testing.T) {
	s := New()
	s.SetMetadata(testMetadata())

	_, _ = s.Set(KeyAccount, "a@example.com")
	_, _ = s.Set(KeyFolder, "INBOX")

	f, err := s.Set(KeyAccount, "a@example.com")
	require.NoError(t, err)
	assert.Empty(t, f.Folder)
}

func TestState_FolderMustBelongToAccount(t *testing.T) {
	s := New()
	s.SetMetadata(testMetadata())

	tests := []struct {
		name    string
		account string
		folder  string
		wantErr error
	}{
		{"no_account", "", "INBOX", ErrUnknownFolder},
		{"other_accounts_folder", "a@example.com", "Leads", ErrUnknownFolder},
		{"valid", "b@example.com", "Leads", nil},
		{"clear_folder", "a@example.com", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Set(KeyAccount, tt.account)
			require.NoError(t, err)

			before := s.Current()
			f, err := s.Set(KeyFolder, tt.folder)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, before, s.Current(), "state must be unchanged on error")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.folder, f.Folder)
		})
	}
}

func TestState_FolderWithoutMetadataIsRejected(t *testing.T) {
	s := New()

	_, err := s.Set(KeyAccount, "a@example.com")
	require.NoError(t, err, "accounts are not validated before metadata loads")

	_, err = s.Set(KeyFolder, "INBOX")
	assert.ErrorIs(t, err, ErrUnknownFolder)
}

func TestState_UnknownAccount(t *testing.T) {
	s := New()
	s.SetMetadata(testMetadata())

	_, err := s.Set(KeyAccount, "c@example.com")
	assert.ErrorIs(t, err, ErrUnknownAccount)
	assert.True(t, s.Current().IsZero())
}

func TestState_Category(t *testing.T) {
	s := New()

	f, err := s.Set(KeyCategory, "Meeting Booked")
	require.NoError(t, err)
	assert.Equal(t, model.CategoryMeetingBooked, f.Category)

	_, err = s.Set(KeyCategory, "Nope")
	assert.ErrorIs(t, err, model.ErrUnknownCategory)
	assert.Equal(t, model.CategoryMeetingBooked, s.Current().Category)

	f, err = s.Set(KeyCategory, "")
	require.NoError(t, err)
	assert.Equal(t, model.CategoryUnset, f.Category)
}

func TestState_SearchAndClear(t *testing.T) {
	s := New()
	s.SetMetadata(testMetadata())

	_, _ = s.Set(KeySearch, "pricing")
	_, _ = s.Set(KeyAccount, "a@example.com")
	_, _ = s.Set(KeyFolder, "INBOX")
	_, _ = s.Set(KeyCategory, "Spam")

	f := s.Current()
	assert.Equal(t, model.Filters{
		Account:  "a@example.com",
		Folder:   "INBOX",
		Category: model.CategorySpam,
		Search:   "pricing",
	}, f)

	f = s.Clear()
	assert.True(t, f.IsZero())
	assert.True(t, s.Current().IsZero())
}

func TestState_Options(t *testing.T) {
	s := New()
	s.SetMetadata(testMetadata())

	assert.Equal(t, []string{"", "a@example.com", "b@example.com"}, s.Options(KeyAccount))
	assert.Equal(t, []string{""}, s.Options(KeyFolder), "no folders before an account is chosen")
	assert.False(t, s.FolderEnabled())

	_, _ = s.Set(KeyAccount, "b@example.com")
	assert.Equal(t, []string{"", "INBOX", "Leads"}, s.Options(KeyFolder))
	assert.True(t, s.FolderEnabled())

	cats := s.Options(KeyCategory)
	assert.Len(t, cats, 7)
	assert.Equal(t, "", cats[0])
}

func TestState_Cycle(t *testing.T) {
	s := New()
	s.SetMetadata(testMetadata())

	f, err := s.Cycle(KeyAccount, 1)
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", f.Account)

	f, err = s.Cycle(KeyFolder, 1)
	require.NoError(t, err)
	assert.Equal(t, "INBOX", f.Folder)

	f, err = s.Cycle(KeyAccount, 1)
	require.NoError(t, err)
	assert.Equal(t, "b@example.com", f.Account)
	assert.Empty(t, f.Folder)

	f, err = s.Cycle(KeyAccount, 1)
	require.NoError(t, err)
	assert.Empty(t, f.Account, "cycling wraps back to all accounts")

	f, err = s.Cycle(KeyCategory, -1)
	require.NoError(t, err)
	assert.Equal(t, model.CategoryUncategorized, f.Category)
}

func TestState_CycleFolderWithoutAccountIsNoop(t *testing.T) {
	s := New()
	s.SetMetadata(testMetadata())

	f, err := s.Cycle(KeyFolder, 1)
	require.NoError(t, err)
	assert.True(t, f.IsZero())
}
