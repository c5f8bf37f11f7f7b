package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sunflower-post/backend/internal/model"
	"github.com/sunflower-post/backend/internal/repository"
	"github.com/sunflower-post/backend/internal/testutil"
)

func newJournal(t *testing.T) JournalService {
	return NewJournalService(repository.NewJournalRepository(testutil.NewDB(t)))
}

func TestJournal_CreateValidates(t *testing.T) {
	svc := newJournal(t)
	ctx := context.Background()

	_, err := svc.CreateEntry(ctx, "u1", JournalInput{Body: "  "})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.CreateEntry(ctx, "u1", JournalInput{Body: "x", Mood: "angry"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	e, err := svc.CreateEntry(ctx, "u1", JournalInput{
		Title:  "Tuesday",
		Body:   "Walked to the river and back.",
		Mood:   "Good",
		Tags:   []string{"walk"},
		Prompt: "What went well today?",
	})
	require.NoError(t, err)
	assert.Equal(t, model.MoodGood, e.Mood)
	assert.Equal(t, 6, e.WordCount)
	assert.Equal(t, []string{"walk"}, e.Tags)
}

func TestJournal_PrivateToOwner(t *testing.T) {
	svc := newJournal(t)
	ctx := context.Background()
	e, err := svc.CreateEntry(ctx, "u1", JournalInput{Body: "only mine"})
	require.NoError(t, err)

	_, err = svc.GetEntry(ctx, "u2", e.ID)
	assert.ErrorIs(t, err, ErrEntryNotFound)

	body := "hijacked"
	_, err = svc.UpdateEntry(ctx, "u2", e.ID, JournalUpdate{Body: &body})
	assert.ErrorIs(t, err, ErrEntryNotFound)
	assert.ErrorIs(t, svc.DeleteEntry(ctx, "u2", e.ID), ErrEntryNotFound)

	list, err := svc.ListEntries(ctx, "u2", "", "", 1, 10)
	require.NoError(t, err)
	assert.Zero(t, list.Total)

	got, err := svc.GetEntry(ctx, "u1", e.ID)
	require.NoError(t, err)
	assert.Equal(t, "only mine", got.Body)
}

func TestJournal_UpdatePartial(t *testing.T) {
	svc := newJournal(t)
	ctx := context.Background()
	e, err := svc.CreateEntry(ctx, "u1", JournalInput{Title: "Day", Body: "okay day", Mood: model.MoodOkay})
	require.NoError(t, err)

	mood := model.MoodLow
	got, err := svc.UpdateEntry(ctx, "u1", e.ID, JournalUpdate{Mood: &mood})
	require.NoError(t, err)
	assert.Equal(t, model.MoodLow, got.Mood)
	assert.Equal(t, "okay day", got.Body)
	assert.Equal(t, "Day", got.Title)

	empty := ""
	_, err = svc.UpdateEntry(ctx, "u1", e.ID, JournalUpdate{Body: &empty})
	assert.ErrorIs(t, err, ErrInvalidInput)

	// clearing the mood is allowed
	got, err = svc.UpdateEntry(ctx, "u1", e.ID, JournalUpdate{Mood: &empty})
	require.NoError(t, err)
	assert.Empty(t, got.Mood)
}

func TestJournal_ListSearchAndMood(t *testing.T) {
	svc := newJournal(t)
	ctx := context.Background()
	for _, in := range []JournalInput{
		{Title: "Beach", Body: "Salt air and sunshine", Mood: model.MoodGreat},
		{Title: "Work", Body: "Long meeting, felt drained", Mood: model.MoodLow},
		{Title: "Evening", Body: "Sunshine after the rain", Mood: model.MoodGood, Tags: []string{"gratitude"}},
	} {
		_, err := svc.CreateEntry(ctx, "u1", in)
		require.NoError(t, err)
	}

	all, err := svc.ListEntries(ctx, "u1", "", "", 1, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 3, all.Total)
	assert.Len(t, all.List, 2)
	assert.Equal(t, "Evening", all.List[0].Title)

	sun, err := svc.ListEntries(ctx, "u1", "SUNSHINE", "", 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, sun.Total)

	sunGood, err := svc.ListEntries(ctx, "u1", "sunshine", model.MoodGood, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, sunGood.Total)

	tagged, err := svc.ListEntries(ctx, "u1", "gratitude", "", 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, tagged.Total)

	low, err := svc.ListEntries(ctx, "u1", "", model.MoodLow, 1, 10)
	require.NoError(t, err)
	require.Len(t, low.List, 1)
	assert.Equal(t, "Work", low.List[0].Title)

	_, err = svc.ListEntries(ctx, "u1", "", "meh", 1, 10)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestJournal_Delete(t *testing.T) {
	svc := newJournal(t)
	ctx := context.Background()
	e, err := svc.CreateEntry(ctx, "u1", JournalInput{Body: "bye"})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteEntry(ctx, "u1", e.ID))
	_, err = svc.GetEntry(ctx, "u1", e.ID)
	assert.ErrorIs(t, err, ErrEntryNotFound)
}
