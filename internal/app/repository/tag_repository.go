package repository

import (
	"errors"
	"strings"

	"github.com/tagsy/tagsy-backend/internal/app/model"
	"github.com/tagsy/tagsy-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	// ErrTagNotFound means the (server_id, tag) pair does not exist. It is
	// deliberately distinct from a storage failure: callers turn it into a
	// user-correctable outcome, while anything else propagates as-is.
	ErrTagNotFound = errors.New("tag not found")

	// ErrDuplicateTag means the (server_id, tag) unique constraint was
	// violated on create. The constraint, not the Exists pre-check, is what
	// guarantees uniqueness under concurrent creates.
	ErrDuplicateTag = errors.New("tag already exists")
)

type TagRepository interface {
	Create(tag *model.Tag) error
	FindByTag(serverID, name string) (*model.Tag, error)
	Exists(serverID, name string) (bool, error)
	UpdateContent(serverID, name, content string) error
	Delete(serverID, name string) error
	IncrementUsage(serverID, name string) error
	ResetUsage(serverID, name string) error
	FindAllByServer(serverID string) ([]model.Tag, error)
	FindAllTenants() ([]model.Tag, error)
	FindSimilar(serverID, query string) ([]string, error)
}

type tagRepository struct {
	db *gorm.DB
}

func NewTagRepository(db *gorm.DB) TagRepository {
	return &tagRepository{db: db}
}

func (r *tagRepository) Create(tag *model.Tag) error {
	logger.Debug("Creating tag in database", map[string]interface{}{
		"server_id": tag.ServerID,
		"tag":       tag.Tag,
	})

	if tag.UsageCount == 0 {
		tag.UsageCount = 1
	}

	if err := r.db.Create(tag).Error; err != nil {
		if isDuplicateKeyError(err) {
			logger.Warn("Tag already exists in database", map[string]interface{}{
				"server_id": tag.ServerID,
				"tag":       tag.Tag,
			})
			return ErrDuplicateTag
		}
		logger.Error("Failed to create tag in database", err, map[string]interface{}{
			"server_id": tag.ServerID,
			"tag":       tag.Tag,
		})
		return err
	}

	logger.Debug("Tag created in database", map[string]interface{}{
		"tag_id":    tag.ID,
		"server_id": tag.ServerID,
		"tag":       tag.Tag,
	})
	return nil
}

func (r *tagRepository) FindByTag(serverID, name string) (*model.Tag, error) {
	var tag model.Tag
	err := r.db.Where("server_id = ? AND tag = ?", serverID, name).First(&tag).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTagNotFound
		}
		logger.Error("Failed to find tag in database", err, map[string]interface{}{
			"server_id": serverID,
			"tag":       name,
		})
		return nil, err
	}
	return &tag, nil
}

// Exists is defined in terms of FindByTag so the two can never disagree.
func (r *tagRepository) Exists(serverID, name string) (bool, error) {
	_, err := r.FindByTag(serverID, name)
	if err != nil {
		if errors.Is(err, ErrTagNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *tagRepository) UpdateContent(serverID, name, content string) error {
	logger.Debug("Updating tag content in database", map[string]interface{}{
		"server_id": serverID,
		"tag":       name,
	})

	result := r.db.Model(&model.Tag{}).
		Where("server_id = ? AND tag = ?", serverID, name).
		Update("content", content)
	if result.Error != nil {
		logger.Error("Failed to update tag content in database", result.Error, map[string]interface{}{
			"server_id": serverID,
			"tag":       name,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTagNotFound
	}
	return nil
}

func (r *tagRepository) Delete(serverID, name string) error {
	logger.Debug("Deleting tag from database", map[string]interface{}{
		"server_id": serverID,
		"tag":       name,
	})

	result := r.db.Where("server_id = ? AND tag = ?", serverID, name).Delete(&model.Tag{})
	if result.Error != nil {
		logger.Error("Failed to delete tag from database", result.Error, map[string]interface{}{
			"server_id": serverID,
			"tag":       name,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTagNotFound
	}

	logger.Debug("Tag deleted from database", map[string]interface{}{
		"server_id": serverID,
		"tag":       name,
	})
	return nil
}

// IncrementUsage is a single atomic UPDATE expression; concurrent increments
// never lose updates because there is no read-modify-write at this level.
func (r *tagRepository) IncrementUsage(serverID, name string) error {
	result := r.db.Model(&model.Tag{}).
		Where("server_id = ? AND tag = ?", serverID, name).
		Update("usage_count", gorm.Expr("usage_count + ?", 1))
	if result.Error != nil {
		logger.Error("Failed to increment tag usage in database", result.Error, map[string]interface{}{
			"server_id": serverID,
			"tag":       name,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTagNotFound
	}
	return nil
}

// ResetUsage sets the counter back to 1, the floor defined for the column.
func (r *tagRepository) ResetUsage(serverID, name string) error {
	result := r.db.Model(&model.Tag{}).
		Where("server_id = ? AND tag = ?", serverID, name).
		Update("usage_count", 1)
	if result.Error != nil {
		logger.Error("Failed to reset tag usage in database", result.Error, map[string]interface{}{
			"server_id": serverID,
			"tag":       name,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTagNotFound
	}
	return nil
}

func (r *tagRepository) FindAllByServer(serverID string) ([]model.Tag, error) {
	var tags []model.Tag
	err := r.db.Where("server_id = ?", serverID).Order("id").Find(&tags).Error
	if err != nil {
		logger.Error("Failed to list tags for server", err, map[string]interface{}{
			"server_id": serverID,
		})
		return nil, err
	}
	return tags, nil
}

// FindAllTenants is the maintenance-only full dump across every server, used
// by export tooling rather than the normal command flow.
func (r *tagRepository) FindAllTenants() ([]model.Tag, error) {
	var tags []model.Tag
	err := r.db.Order("server_id, id").Find(&tags).Error
	if err != nil {
		logger.Error("Failed to list tags for all servers", err)
		return nil, err
	}
	return tags, nil
}

// FindSimilar returns every tag name in the server containing query as a
// substring, the same LIKE '%q%' lookup both miss-suggestions and
// duplicate-collision hints are built from.
func (r *tagRepository) FindSimilar(serverID, query string) ([]string, error) {
	var names []string
	pattern := "%" + escapeLike(query) + "%"
	err := r.db.Model(&model.Tag{}).
		Where("server_id = ? AND tag LIKE ? ESCAPE '\\'", serverID, pattern).
		Order("id").
		Pluck("tag", &names).Error
	if err != nil {
		logger.Error("Failed to find similar tags in database", err, map[string]interface{}{
			"server_id": serverID,
			"query":     query,
		})
		return nil, err
	}
	return names, nil
}

// escapeLike neutralizes LIKE wildcards in user input so a tag named "100%"
// matches literally.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}

// isDuplicateKeyError recognizes a unique-constraint violation from either
// backend. gorm's TranslateError covers the common cases; the string checks
// catch driver messages that slip through untranslated.
func isDuplicateKeyError(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "unique constraint failed")
}
