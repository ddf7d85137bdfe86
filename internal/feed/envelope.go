package feed

import (
	"bytes"
	"encoding/json"

	"github.com/starford/scrawl/internal/apperr"
	"github.com/starford/scrawl/internal/models"
)

// pagedEnvelope is the object form of a list response. Items is a pointer
// so that an absent or null field is distinguishable from an empty list.
type pagedEnvelope struct {
	Items *[]models.Post `json:"items"`
	Pages int            `json:"pages"`
}

// DecodePage resolves the three accepted list envelopes:
//
//   - a bare JSON array: the complete item set, one page total;
//   - an object exposing "items": items plus its "pages" count (default 1);
//   - anything else: an empty result with one page, plus a ShapeError.
//
// The ShapeError is a diagnostic only; items and pages are always usable.
func DecodePage(raw json.RawMessage) ([]models.Post, int, error) {
	trimmed := bytes.TrimSpace(raw)

	if len(trimmed) > 0 && trimmed[0] == '[' {
		var items []models.Post
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return []models.Post{}, 1, &apperr.ShapeError{Endpoint: "/posts/"}
		}
		if items == nil {
			items = []models.Post{}
		}
		return items, 1, nil
	}

	var env pagedEnvelope
	if err := json.Unmarshal(trimmed, &env); err == nil && env.Items != nil {
		items := *env.Items
		if items == nil {
			items = []models.Post{}
		}
		pages := env.Pages
		if pages < 1 {
			pages = 1
		}
		return items, pages, nil
	}

	return []models.Post{}, 1, &apperr.ShapeError{Endpoint: "/posts/"}
}
