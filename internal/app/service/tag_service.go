package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/tagsy/tagsy-backend/internal/app/model"
	"github.com/tagsy/tagsy-backend/internal/app/repository"
	"github.com/tagsy/tagsy-backend/internal/cache"
	"github.com/tagsy/tagsy-backend/pkg/logger"
)

// Commit actions accepted by Commit, matching the two paths the adapter's
// confirmation dialog can resolve into.
const (
	CommitActionAdd    = "add"
	CommitActionUpdate = "update"
)

var ErrUnknownCommitAction = errors.New("unknown commit action")

// alternativeCount is how many "-N" suffixed names a duplicate add suggests.
const alternativeCount = 3

type TagService interface {
	Add(ctx context.Context, serverID, name, content, actorID string) (*Outcome, error)
	Get(ctx context.Context, serverID, name string) (*Outcome, error)
	Update(ctx context.Context, serverID, name, content string) (*Outcome, error)
	Remove(ctx context.Context, serverID, name string, actorCanManageMessages bool) (*Outcome, error)
	Reset(ctx context.Context, serverID, name string) (*Outcome, error)
	Commit(ctx context.Context, serverID, name, content, action, actorID string) (*Outcome, error)
	ListAll(serverID string) ([]model.Tag, error)
}

type tagService struct {
	tagRepo repository.TagRepository
	cache   *cache.TagCache // nil disables caching
}

func NewTagService(tagRepo repository.TagRepository, tagCache *cache.TagCache) TagService {
	return &tagService{
		tagRepo: tagRepo,
		cache:   tagCache,
	}
}

// Add creates a new tag. When the name is taken the outcome carries up to
// three "-N" suffixed alternatives; these are syntactic hints and are not
// checked for availability themselves.
func (s *tagService) Add(ctx context.Context, serverID, name, content, actorID string) (*Outcome, error) {
	logger.Info("Adding tag", map[string]interface{}{
		"server_id": serverID,
		"tag":       name,
		"actor_id":  actorID,
	})

	exists, err := s.tagRepo.Exists(serverID, name)
	if err != nil {
		return nil, err
	}
	if exists {
		return &Outcome{
			Status:      OutcomeAlreadyExists,
			Suggestions: generateAlternatives(name),
		}, nil
	}

	tag := &model.Tag{
		ServerID:   serverID,
		Tag:        name,
		Content:    content,
		CreatedBy:  actorID,
		UsageCount: 1,
	}
	if err := s.tagRepo.Create(tag); err != nil {
		// The Exists pre-check has an inherent race window; the unique
		// constraint is what decides, so a lost race still reports cleanly.
		if errors.Is(err, repository.ErrDuplicateTag) {
			logger.Warn("Tag created concurrently by another caller", map[string]interface{}{
				"server_id": serverID,
				"tag":       name,
			})
			return &Outcome{
				Status:      OutcomeAlreadyExists,
				Suggestions: generateAlternatives(name),
			}, nil
		}
		return nil, err
	}

	logger.Info("Tag added successfully", map[string]interface{}{
		"tag_id":    tag.ID,
		"server_id": serverID,
		"tag":       name,
	})
	return &Outcome{Status: OutcomeCreated, Record: tag}, nil
}

// Get resolves a tag and counts the use. The increment is a separate atomic
// store update, never a read-modify-write here.
func (s *tagService) Get(ctx context.Context, serverID, name string) (*Outcome, error) {
	tag := s.cache.Get(ctx, serverID, name)
	if tag == nil {
		var err error
		tag, err = s.tagRepo.FindByTag(serverID, name)
		if err != nil {
			if errors.Is(err, repository.ErrTagNotFound) {
				return s.missWithSuggestions(serverID, name)
			}
			return nil, err
		}
		s.cache.Set(ctx, tag)
	}

	if err := s.tagRepo.IncrementUsage(serverID, name); err != nil {
		if errors.Is(err, repository.ErrTagNotFound) {
			// Deleted between lookup and increment, or a stale cache entry.
			s.cache.Invalidate(ctx, serverID, name)
			return s.missWithSuggestions(serverID, name)
		}
		return nil, err
	}

	return &Outcome{Status: OutcomeFound, Record: tag}, nil
}

func (s *tagService) Update(ctx context.Context, serverID, name, content string) (*Outcome, error) {
	logger.Info("Updating tag", map[string]interface{}{
		"server_id": serverID,
		"tag":       name,
	})

	err := s.tagRepo.UpdateContent(serverID, name, content)
	if err != nil {
		if errors.Is(err, repository.ErrTagNotFound) {
			return s.missWithSuggestions(serverID, name)
		}
		return nil, err
	}

	s.cache.Invalidate(ctx, serverID, name)
	return &Outcome{Status: OutcomeUpdated}, nil
}

func (s *tagService) Remove(ctx context.Context, serverID, name string, actorCanManageMessages bool) (*Outcome, error) {
	logger.Info("Removing tag", map[string]interface{}{
		"server_id":  serverID,
		"tag":        name,
		"can_manage": actorCanManageMessages,
	})

	exists, err := s.tagRepo.Exists(serverID, name)
	if err != nil {
		return nil, err
	}
	if !exists {
		return s.missWithSuggestions(serverID, name)
	}

	if !actorCanManageMessages {
		logger.Warn("Tag removal denied, actor lacks manage permission", map[string]interface{}{
			"server_id": serverID,
			"tag":       name,
		})
		return &Outcome{Status: OutcomePermissionDenied}, nil
	}

	if err := s.tagRepo.Delete(serverID, name); err != nil {
		if errors.Is(err, repository.ErrTagNotFound) {
			return s.missWithSuggestions(serverID, name)
		}
		return nil, err
	}

	s.cache.Invalidate(ctx, serverID, name)
	logger.Info("Tag removed successfully", map[string]interface{}{
		"server_id": serverID,
		"tag":       name,
	})
	return &Outcome{Status: OutcomeRemoved}, nil
}

// Reset sets the usage counter back to 1. This path reports a plain NotFound
// with no suggestions.
func (s *tagService) Reset(ctx context.Context, serverID, name string) (*Outcome, error) {
	err := s.tagRepo.ResetUsage(serverID, name)
	if err != nil {
		if errors.Is(err, repository.ErrTagNotFound) {
			return &Outcome{Status: OutcomeNotFound}, nil
		}
		return nil, err
	}

	s.cache.Invalidate(ctx, serverID, name)
	return &Outcome{Status: OutcomeReset}, nil
}

// Commit is the single entry point the adapter's two-state confirmation
// dialog calls once resolved. Content is persisted exactly as given; any
// code-block wrapping happened on the adapter side before this call.
func (s *tagService) Commit(ctx context.Context, serverID, name, content, action, actorID string) (*Outcome, error) {
	switch action {
	case CommitActionAdd:
		return s.Add(ctx, serverID, name, content, actorID)
	case CommitActionUpdate:
		return s.Update(ctx, serverID, name, content)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCommitAction, action)
	}
}

func (s *tagService) ListAll(serverID string) ([]model.Tag, error) {
	return s.tagRepo.FindAllByServer(serverID)
}

func (s *tagService) missWithSuggestions(serverID, name string) (*Outcome, error) {
	suggestions, err := s.tagRepo.FindSimilar(serverID, name)
	if err != nil {
		return nil, err
	}
	return &Outcome{
		Status:      OutcomeNotFoundSuggest,
		Suggestions: suggestions,
	}, nil
}

// generateAlternatives derives candidate names for a taken tag: "name-1",
// "name-2", "name-3".
func generateAlternatives(name string) []string {
	alternatives := make([]string, 0, alternativeCount)
	for i := 1; i <= alternativeCount; i++ {
		alternatives = append(alternatives, fmt.Sprintf("%s-%d", name, i))
	}
	return alternatives
}
