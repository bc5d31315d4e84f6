package service

import (
	"github.com/tagsy/tagsy-backend/internal/app/model"
)

// OutcomeStatus tags the result of a resolution operation. Storage failures
// are never folded into an Outcome; they travel on the error return so the
// adapter can report a real failure instead of a misleading "tag not found".
type OutcomeStatus string

const (
	OutcomeCreated          OutcomeStatus = "created"
	OutcomeAlreadyExists    OutcomeStatus = "already_exists"
	OutcomeFound            OutcomeStatus = "found"
	OutcomeNotFound         OutcomeStatus = "not_found"
	OutcomeNotFoundSuggest  OutcomeStatus = "not_found_with_suggestions"
	OutcomeUpdated          OutcomeStatus = "updated"
	OutcomeRemoved          OutcomeStatus = "removed"
	OutcomePermissionDenied OutcomeStatus = "permission_denied"
	OutcomeReset            OutcomeStatus = "reset"
)

// Outcome is the tagged result handed to the adapter layer. Record is set for
// Found; Suggestions accompany AlreadyExists (generated alternatives) and
// NotFoundSuggest (substring-matched existing names, possibly empty).
type Outcome struct {
	Status      OutcomeStatus `json:"status"`
	Record      *model.Tag    `json:"record,omitempty"`
	Suggestions []string      `json:"suggestions,omitempty"`
}
