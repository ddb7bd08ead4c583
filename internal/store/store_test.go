package store_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/z89kdf9k4p-code/crewbot/internal/domain"
	"github.com/z89kdf9k4p-code/crewbot/internal/store"
)

func openStore(t *testing.T, path string) *store.Store {
	t.Helper()
	s, err := store.Open(context.Background(), path)
	require.NoError(t, err)
	return s
}

func tempDBPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "crewbot-test.db")
}

func strp(s string) *string { return &s }

func TestSaveUserSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := tempDBPath(t)
	s := openStore(t, path)

	alice := domain.UserProfile{ID: 1, Username: "alice", Role: domain.RoleCourier, Shop: "Tallinskoye", Lang: "EN", Phone: "+4790000001"}
	bob := domain.UserProfile{ID: 2, Username: "bob", Lang: "RU"}
	require.NoError(t, s.SaveUser(ctx, alice))
	require.NoError(t, s.SaveUser(ctx, bob))
	require.NoError(t, s.Close())

	s = openStore(t, path)
	defer s.Close()

	got, ok := s.GetUser(1)
	require.True(t, ok)
	require.Equal(t, alice, got)

	got, ok = s.GetUser(2)
	require.True(t, ok)
	require.Equal(t, bob, got)

	list := s.ListUsers()
	require.Len(t, list, 2)
	require.Equal(t, int64(1), list[0].ID)
	require.Equal(t, int64(2), list[1].ID)
}

func TestSaveUserKeepsPhoneOnEmptyUpsert(t *testing.T) {
	ctx := context.Background()
	path := tempDBPath(t)
	s := openStore(t, path)

	require.NoError(t, s.SaveUser(ctx, domain.UserProfile{
		ID: 5, Username: "carol", Role: domain.RoleCourier, Lang: "EN", Phone: "+4790000005",
	}))

	// A later save without a phone (e.g. role change) must not erase it.
	require.NoError(t, s.SaveUser(ctx, domain.UserProfile{
		ID: 5, Username: "carol", Role: domain.RolePicker, Lang: "EN", Phone: "",
	}))

	got, ok := s.GetUser(5)
	require.True(t, ok)
	require.Equal(t, domain.RolePicker, got.Role)
	require.Equal(t, "+4790000005", got.Phone)

	// The durable row has to agree with the mirror.
	require.NoError(t, s.Close())
	s = openStore(t, path)
	defer s.Close()

	got, ok = s.GetUser(5)
	require.True(t, ok)
	require.Equal(t, domain.RolePicker, got.Role)
	require.Equal(t, "+4790000005", got.Phone)
}

func TestTakeDueRemindersExactlyOnce(t *testing.T) {
	ctx := context.Background()
	path := tempDBPath(t)
	s := openStore(t, path)
	defer s.Close()

	now := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, s.AddReminder(ctx, 7, now.Add(60*time.Second), "call supervisor"))

	due, err := s.TakeDueReminders(ctx, now)
	require.NoError(t, err)
	require.Empty(t, due)
	require.Equal(t, 1, s.PendingReminders())

	due, err = s.TakeDueReminders(ctx, now.Add(61*time.Second))
	require.NoError(t, err)
	require.Len(t, due, 1)
	require.Equal(t, int64(7), due[0].UserID)
	require.Equal(t, "call supervisor", due[0].Text)

	// Consumed means gone: the same sweep time yields nothing the second time.
	due, err = s.TakeDueReminders(ctx, now.Add(61*time.Second))
	require.NoError(t, err)
	require.Empty(t, due)
	require.Equal(t, 0, s.PendingReminders())
}

func TestTakeDueRemindersDeletesDurably(t *testing.T) {
	ctx := context.Background()
	path := tempDBPath(t)
	s := openStore(t, path)

	now := time.Now().UTC()
	require.NoError(t, s.AddReminder(ctx, 1, now.Add(-time.Minute), "overdue"))
	require.NoError(t, s.AddReminder(ctx, 2, now.Add(time.Hour), "later"))

	due, err := s.TakeDueReminders(ctx, now)
	require.NoError(t, err)
	require.Len(t, due, 1)
	require.Equal(t, "overdue", due[0].Text)

	// A crash right after the take must not resurrect the consumed row.
	require.NoError(t, s.Close())
	s = openStore(t, path)
	defer s.Close()
	require.Equal(t, 1, s.PendingReminders())
}

func TestEditArticlePartialUpdate(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, tempDBPath(t))
	defer s.Close()

	id, err := s.AddArticle(ctx, "Night shift checklist", "Lock the back door.", "training,picker")
	require.NoError(t, err)

	ok, err := s.EditArticle(ctx, id, nil, strp("Lock the back door and arm the alarm."), nil)
	require.NoError(t, err)
	require.True(t, ok)

	a, found := s.GetArticle(id)
	require.True(t, found)
	require.Equal(t, "Night shift checklist", a.Title)
	require.Equal(t, "Lock the back door and arm the alarm.", a.Body)
	require.Equal(t, "training,picker", a.Tags)

	ok, err = s.EditArticle(ctx, 99999, strp("x"), nil, nil)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestDeleteArticle(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, tempDBPath(t))
	defer s.Close()

	id, err := s.AddArticle(ctx, "Obsolete topic", "Remove me.", "")
	require.NoError(t, err)

	ok, err := s.DeleteArticle(ctx, id)
	require.NoError(t, err)
	require.True(t, ok)

	_, found := s.GetArticle(id)
	require.False(t, found)

	ok, err = s.DeleteArticle(ctx, id)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestSeededCorpusIsStable(t *testing.T) {
	ctx := context.Background()
	path := tempDBPath(t)
	s := openStore(t, path)

	all := s.Articles()
	require.NotEmpty(t, all)

	titles := make(map[string]bool, len(all))
	for _, a := range all {
		titles[a.Title] = true
	}
	require.True(t, titles["Connecting the terminal"])

	// Reopening must not re-seed on top of the existing corpus.
	_, err := s.DeleteArticle(ctx, all[0].ID)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s = openStore(t, path)
	defer s.Close()
	require.Len(t, s.Articles(), len(all)-1)
}

func TestDigestSubscriptionsAndMessage(t *testing.T) {
	ctx := context.Background()
	path := tempDBPath(t)
	s := openStore(t, path)

	require.NoError(t, s.SetDigestEnabled(ctx, 30, true))
	require.NoError(t, s.SetDigestEnabled(ctx, 10, true))
	require.NoError(t, s.SetDigestEnabled(ctx, 20, true))
	require.NoError(t, s.SetDigestEnabled(ctx, 20, false))
	require.Equal(t, []int64{10, 30}, s.DigestSubscribers())

	require.NotEmpty(t, s.DigestMessage())
	require.NoError(t, s.SetDigestMessage(ctx, "  "))
	require.NotEmpty(t, s.DigestMessage()) // blank update ignored
	require.NoError(t, s.SetDigestMessage(ctx, "Team meeting at 10:00."))
	require.Equal(t, "Team meeting at 10:00.", s.DigestMessage())

	require.NoError(t, s.Close())
	s = openStore(t, path)
	defer s.Close()
	require.Equal(t, []int64{10, 30}, s.DigestSubscribers())
	require.Equal(t, "Team meeting at 10:00.", s.DigestMessage())
}

func TestBanList(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, tempDBPath(t))
	defer s.Close()

	require.NoError(t, s.SaveUser(ctx, domain.UserProfile{ID: 9, Username: "dave", Lang: "EN"}))
	require.False(t, s.IsBanned(9))

	require.NoError(t, s.SetBanned(ctx, 9, true))
	require.True(t, s.IsBanned(9))

	// Banning must not delete the profile.
	_, ok := s.GetUser(9)
	require.True(t, ok)

	require.NoError(t, s.SetBanned(ctx, 9, false))
	require.False(t, s.IsBanned(9))
}

func TestFeedbackAppendAndPurge(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, tempDBPath(t))
	defer s.Close()

	require.NoError(t, s.AppendFeedback(ctx, 1, "first"))
	require.NoError(t, s.AppendFeedback(ctx, 2, "second"))
	require.NoError(t, s.AppendFeedback(ctx, 1, "third"))

	list := s.ListFeedback()
	require.Len(t, list, 3)
	require.Equal(t, "third", list[0].Text) // newest first

	_, fb, _ := s.Stats()
	require.Equal(t, 3, fb)
	require.Equal(t, 3, s.FeedbackCount())

	require.NoError(t, s.PurgeFeedback(ctx, 1))
	list = s.ListFeedback()
	require.Len(t, list, 1)
	require.Equal(t, int64(2), list[0].UserID)

	require.NoError(t, s.PurgeAllFeedback(ctx))
	require.Empty(t, s.ListFeedback())
	_, fb, _ = s.Stats()
	require.Equal(t, 0, fb)
}
