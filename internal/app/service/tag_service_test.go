package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tagsy/tagsy-backend/internal/app/repository"
	"github.com/tagsy/tagsy-backend/internal/db"
)

func setupServiceTest(t *testing.T) (repository.TagRepository, TagService) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	repo := repository.NewTagRepository(testDB)
	svc := NewTagService(repo, nil)
	return repo, svc
}

func TestTagService_AddAndGet(t *testing.T) {
	repo, svc := setupServiceTest(t)
	ctx := context.Background()

	outcome, err := svc.Add(ctx, "server-1", "greet", "hi there", "user-1")
	require.NoError(t, err)
	assert.Equal(t, OutcomeCreated, outcome.Status)
	require.NotNil(t, outcome.Record)
	assert.Equal(t, "greet", outcome.Record.Tag)
	assert.Equal(t, 1, outcome.Record.UsageCount)

	outcome, err = svc.Get(ctx, "server-1", "greet")
	require.NoError(t, err)
	assert.Equal(t, OutcomeFound, outcome.Status)
	require.NotNil(t, outcome.Record)
	assert.Equal(t, "hi there", outcome.Record.Content)

	// The resolution was counted
	stored, err := repo.FindByTag("server-1", "greet")
	require.NoError(t, err)
	assert.Equal(t, 2, stored.UsageCount)
}

func TestTagService_Add_AlreadyExists(t *testing.T) {
	_, svc := setupServiceTest(t)
	ctx := context.Background()

	_, err := svc.Add(ctx, "server-1", "greet", "hi", "user-1")
	require.NoError(t, err)

	outcome, err := svc.Add(ctx, "server-1", "greet", "other", "user-2")
	require.NoError(t, err)
	assert.Equal(t, OutcomeAlreadyExists, outcome.Status)
	assert.Nil(t, outcome.Record)
	assert.Equal(t, []string{"greet-1", "greet-2", "greet-3"}, outcome.Suggestions)
}

func TestTagService_Add_IsolatedPerServer(t *testing.T) {
	_, svc := setupServiceTest(t)
	ctx := context.Background()

	_, err := svc.Add(ctx, "server-1", "greet", "hi", "user-1")
	require.NoError(t, err)

	outcome, err := svc.Add(ctx, "server-2", "greet", "bonjour", "user-2")
	require.NoError(t, err)
	assert.Equal(t, OutcomeCreated, outcome.Status)
}

func TestTagService_Get_NotFoundWithSuggestions(t *testing.T) {
	_, svc := setupServiceTest(t)
	ctx := context.Background()

	for _, name := range []string{"hello", "help", "world"} {
		_, err := svc.Add(ctx, "server-1", name, "c", "user-1")
		require.NoError(t, err)
	}

	outcome, err := svc.Get(ctx, "server-1", "hel")
	require.NoError(t, err)
	assert.Equal(t, OutcomeNotFoundSuggest, outcome.Status)
	assert.Nil(t, outcome.Record)
	assert.ElementsMatch(t, []string{"hello", "help"}, outcome.Suggestions)
}

func TestTagService_Update(t *testing.T) {
	repo, svc := setupServiceTest(t)
	ctx := context.Background()

	_, err := svc.Add(ctx, "server-1", "greet", "hi", "user-1")
	require.NoError(t, err)

	t.Run("Existing tag", func(t *testing.T) {
		outcome, err := svc.Update(ctx, "server-1", "greet", "hello there")
		require.NoError(t, err)
		assert.Equal(t, OutcomeUpdated, outcome.Status)

		stored, err := repo.FindByTag("server-1", "greet")
		require.NoError(t, err)
		assert.Equal(t, "hello there", stored.Content)
	})

	t.Run("Missing tag", func(t *testing.T) {
		outcome, err := svc.Update(ctx, "server-1", "gree", "x")
		require.NoError(t, err)
		assert.Equal(t, OutcomeNotFoundSuggest, outcome.Status)
		assert.Equal(t, []string{"greet"}, outcome.Suggestions)
	})
}

func TestTagService_Remove(t *testing.T) {
	repo, svc := setupServiceTest(t)
	ctx := context.Background()

	_, err := svc.Add(ctx, "server-1", "greet", "hi", "user-1")
	require.NoError(t, err)

	t.Run("Without manage permission", func(t *testing.T) {
		outcome, err := svc.Remove(ctx, "server-1", "greet", false)
		require.NoError(t, err)
		assert.Equal(t, OutcomePermissionDenied, outcome.Status)

		// Denied removal leaves the record in place
		_, err = repo.FindByTag("server-1", "greet")
		assert.NoError(t, err)
	})

	t.Run("With manage permission", func(t *testing.T) {
		outcome, err := svc.Remove(ctx, "server-1", "greet", true)
		require.NoError(t, err)
		assert.Equal(t, OutcomeRemoved, outcome.Status)

		_, err = repo.FindByTag("server-1", "greet")
		assert.ErrorIs(t, err, repository.ErrTagNotFound)
	})

	t.Run("Missing tag reports before permission", func(t *testing.T) {
		outcome, err := svc.Remove(ctx, "server-1", "gone", false)
		require.NoError(t, err)
		assert.Equal(t, OutcomeNotFoundSuggest, outcome.Status)
	})
}

func TestTagService_Reset(t *testing.T) {
	repo, svc := setupServiceTest(t)
	ctx := context.Background()

	_, err := svc.Add(ctx, "server-1", "greet", "hi", "user-1")
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		_, err := svc.Get(ctx, "server-1", "greet")
		require.NoError(t, err)
	}

	outcome, err := svc.Reset(ctx, "server-1", "greet")
	require.NoError(t, err)
	assert.Equal(t, OutcomeReset, outcome.Status)

	stored, err := repo.FindByTag("server-1", "greet")
	require.NoError(t, err)
	assert.Equal(t, 1, stored.UsageCount)

	outcome, err = svc.Reset(ctx, "server-1", "missing")
	require.NoError(t, err)
	assert.Equal(t, OutcomeNotFound, outcome.Status)
	assert.Empty(t, outcome.Suggestions)
}

func TestTagService_Commit(t *testing.T) {
	repo, svc := setupServiceTest(t)
	ctx := context.Background()

	t.Run("Add action", func(t *testing.T) {
		outcome, err := svc.Commit(ctx, "server-1", "greet", "hi", CommitActionAdd, "user-1")
		require.NoError(t, err)
		assert.Equal(t, OutcomeCreated, outcome.Status)
	})

	t.Run("Update action", func(t *testing.T) {
		outcome, err := svc.Commit(ctx, "server-1", "greet", "hello", CommitActionUpdate, "user-1")
		require.NoError(t, err)
		assert.Equal(t, OutcomeUpdated, outcome.Status)

		stored, err := repo.FindByTag("server-1", "greet")
		require.NoError(t, err)
		assert.Equal(t, "hello", stored.Content)
	})

	t.Run("Unknown action", func(t *testing.T) {
		outcome, err := svc.Commit(ctx, "server-1", "greet", "x", "drop", "user-1")
		assert.ErrorIs(t, err, ErrUnknownCommitAction)
		assert.Nil(t, outcome)
	})
}

func TestTagService_ListAll(t *testing.T) {
	_, svc := setupServiceTest(t)
	ctx := context.Background()

	for _, name := range []string{"alpha", "bravo"} {
		_, err := svc.Add(ctx, "server-1", name, "c", "user-1")
		require.NoError(t, err)
	}
	_, err := svc.Add(ctx, "server-2", "charlie", "c", "user-2")
	require.NoError(t, err)

	tags, err := svc.ListAll("server-1")
	require.NoError(t, err)
	require.Len(t, tags, 2)
	assert.Equal(t, "alpha", tags[0].Tag)
	assert.Equal(t, "bravo", tags[1].Tag)
}
