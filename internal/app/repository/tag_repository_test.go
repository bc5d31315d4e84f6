package repository

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tagsy/tagsy-backend/internal/app/model"
	"github.com/tagsy/tagsy-backend/internal/db"
	"gorm.io/gorm"
)

func setupTagTest(t *testing.T) (*gorm.DB, TagRepository) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	repo := NewTagRepository(testDB)
	return testDB, repo
}

func newTag(serverID, name, content, createdBy string) *model.Tag {
	return &model.Tag{
		ServerID:  serverID,
		Tag:       name,
		Content:   content,
		CreatedBy: createdBy,
	}
}

func TestTagRepository_Create(t *testing.T) {
	_, repo := setupTagTest(t)

	tests := []struct {
		name    string
		tag     *model.Tag
		wantErr error
	}{
		{
			name: "Valid tag",
			tag:  newTag("server-1", "greet", "hi there", "user-1"),
		},
		{
			name:    "Duplicate tag in same server",
			tag:     newTag("server-1", "greet", "other", "user-2"),
			wantErr: ErrDuplicateTag,
		},
		{
			name: "Same name in another server",
			tag:  newTag("server-2", "greet", "bonjour", "user-3"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := repo.Create(tt.tag)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
				assert.NotZero(t, tt.tag.ID)
				assert.Equal(t, 1, tt.tag.UsageCount)
			}
		})
	}
}

func TestTagRepository_Create_ConcurrentSameKey(t *testing.T) {
	_, repo := setupTagTest(t)

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = repo.Create(newTag("server-1", "race", "content", "user-1"))
		}(i)
	}
	wg.Wait()

	// Exactly one create wins; the loser sees the constraint, not a generic
	// storage failure.
	if results[0] == nil {
		assert.ErrorIs(t, results[1], ErrDuplicateTag)
	} else {
		assert.ErrorIs(t, results[0], ErrDuplicateTag)
		assert.NoError(t, results[1])
	}

	tags, err := repo.FindAllByServer("server-1")
	require.NoError(t, err)
	assert.Len(t, tags, 1)
}

func TestTagRepository_FindByTag(t *testing.T) {
	_, repo := setupTagTest(t)

	created := newTag("server-1", "greet", "hi there", "user-1")
	require.NoError(t, repo.Create(created))

	t.Run("Round-trip", func(t *testing.T) {
		found, err := repo.FindByTag("server-1", "greet")
		require.NoError(t, err)
		assert.Equal(t, "hi there", found.Content)
		assert.Equal(t, "user-1", found.CreatedBy)
		assert.Equal(t, 1, found.UsageCount)
		assert.False(t, found.CreatedAt.IsZero())
	})

	t.Run("Missing tag", func(t *testing.T) {
		found, err := repo.FindByTag("server-1", "nope")
		assert.ErrorIs(t, err, ErrTagNotFound)
		assert.Nil(t, found)
	})

	t.Run("Tenant isolation", func(t *testing.T) {
		found, err := repo.FindByTag("server-2", "greet")
		assert.ErrorIs(t, err, ErrTagNotFound)
		assert.Nil(t, found)
	})
}

func TestTagRepository_Exists(t *testing.T) {
	_, repo := setupTagTest(t)

	require.NoError(t, repo.Create(newTag("server-1", "greet", "hi", "user-1")))

	exists, err := repo.Exists("server-1", "greet")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.Exists("server-1", "other")
	require.NoError(t, err)
	assert.False(t, exists)

	exists, err = repo.Exists("server-2", "greet")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestTagRepository_UpdateContent(t *testing.T) {
	_, repo := setupTagTest(t)

	created := newTag("server-1", "greet", "hi", "user-1")
	require.NoError(t, repo.Create(created))
	require.NoError(t, repo.IncrementUsage("server-1", "greet"))

	err := repo.UpdateContent("server-1", "greet", "hello there")
	require.NoError(t, err)

	found, err := repo.FindByTag("server-1", "greet")
	require.NoError(t, err)
	assert.Equal(t, "hello there", found.Content)
	// Content is the only field touched
	assert.Equal(t, "user-1", found.CreatedBy)
	assert.Equal(t, 2, found.UsageCount)

	err = repo.UpdateContent("server-1", "missing", "x")
	assert.ErrorIs(t, err, ErrTagNotFound)
}

func TestTagRepository_Delete(t *testing.T) {
	_, repo := setupTagTest(t)

	require.NoError(t, repo.Create(newTag("server-1", "greet", "hi", "user-1")))

	require.NoError(t, repo.Delete("server-1", "greet"))

	_, err := repo.FindByTag("server-1", "greet")
	assert.ErrorIs(t, err, ErrTagNotFound)

	err = repo.Delete("server-1", "greet")
	assert.ErrorIs(t, err, ErrTagNotFound)
}

func TestTagRepository_IncrementUsage(t *testing.T) {
	_, repo := setupTagTest(t)

	require.NoError(t, repo.Create(newTag("server-1", "greet", "hi", "user-1")))

	const n = 5
	for i := 0; i < n; i++ {
		require.NoError(t, repo.IncrementUsage("server-1", "greet"))
	}

	found, err := repo.FindByTag("server-1", "greet")
	require.NoError(t, err)
	assert.Equal(t, 1+n, found.UsageCount)

	err = repo.IncrementUsage("server-1", "missing")
	assert.ErrorIs(t, err, ErrTagNotFound)
}

func TestTagRepository_ResetUsage(t *testing.T) {
	_, repo := setupTagTest(t)

	require.NoError(t, repo.Create(newTag("server-1", "greet", "hi", "user-1")))
	for i := 0; i < 4; i++ {
		require.NoError(t, repo.IncrementUsage("server-1", "greet"))
	}

	// Reset writes 1, the floor of the counter, and is idempotent.
	for i := 0; i < 2; i++ {
		require.NoError(t, repo.ResetUsage("server-1", "greet"))

		found, err := repo.FindByTag("server-1", "greet")
		require.NoError(t, err)
		assert.Equal(t, 1, found.UsageCount)
	}

	err := repo.ResetUsage("server-1", "missing")
	assert.ErrorIs(t, err, ErrTagNotFound)
}

func TestTagRepository_FindAllByServer(t *testing.T) {
	_, repo := setupTagTest(t)

	require.NoError(t, repo.Create(newTag("server-1", "bravo", "b", "user-1")))
	require.NoError(t, repo.Create(newTag("server-1", "alpha", "a", "user-1")))
	require.NoError(t, repo.Create(newTag("server-2", "charlie", "c", "user-2")))

	tags, err := repo.FindAllByServer("server-1")
	require.NoError(t, err)
	require.Len(t, tags, 2)
	// Insertion order
	assert.Equal(t, "bravo", tags[0].Tag)
	assert.Equal(t, "alpha", tags[1].Tag)

	tags, err = repo.FindAllByServer("server-3")
	require.NoError(t, err)
	assert.Empty(t, tags)
}

func TestTagRepository_FindAllTenants(t *testing.T) {
	_, repo := setupTagTest(t)

	require.NoError(t, repo.Create(newTag("server-2", "foo", "f", "user-1")))
	require.NoError(t, repo.Create(newTag("server-1", "bar", "b", "user-2")))
	require.NoError(t, repo.Create(newTag("server-1", "baz", "z", "user-2")))

	tags, err := repo.FindAllTenants()
	require.NoError(t, err)
	require.Len(t, tags, 3)
	assert.Equal(t, "server-1", tags[0].ServerID)
	assert.Equal(t, "server-1", tags[1].ServerID)
	assert.Equal(t, "server-2", tags[2].ServerID)
}

func TestTagRepository_FindSimilar(t *testing.T) {
	_, repo := setupTagTest(t)

	for _, name := range []string{"hello", "help", "world"} {
		require.NoError(t, repo.Create(newTag("server-1", name, "c", "user-1")))
	}
	require.NoError(t, repo.Create(newTag("server-2", "helm", "c", "user-1")))

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{
			name:  "Substring match",
			query: "hel",
			want:  []string{"hello", "help"},
		},
		{
			name:  "Interior substring",
			query: "orl",
			want:  []string{"world"},
		},
		{
			name:  "No match",
			query: "zzz",
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			names, err := repo.FindSimilar("server-1", tt.query)
			require.NoError(t, err)
			assert.ElementsMatch(t, tt.want, names)
		})
	}
}

func TestTagRepository_FindSimilar_EscapesWildcards(t *testing.T) {
	_, repo := setupTagTest(t)

	require.NoError(t, repo.Create(newTag("server-1", "100%-sure", "c", "user-1")))
	require.NoError(t, repo.Create(newTag("server-1", "100x-sure", "c", "user-1")))

	names, err := repo.FindSimilar("server-1", "100%")
	require.NoError(t, err)
	assert.Equal(t, []string{"100%-sure"}, names)
}
