package feed

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/starford/scrawl/internal/apperr"
	"github.com/starford/scrawl/internal/models"
)

func TestDecodePage(t *testing.T) {
	cases := []struct {
		name      string
		raw       string
		wantItems []models.Post
		wantPages int
		wantShape bool
	}{
		{
			name:      "bare array",
			raw:       `[{"id": 1, "title": "One"}, {"id": 2, "title": "Two"}]`,
			wantItems: []models.Post{{ID: 1, Title: "One"}, {ID: 2, Title: "Two"}},
			wantPages: 1,
		},
		{
			name:      "empty array",
			raw:       `[]`,
			wantItems: []models.Post{},
			wantPages: 1,
		},
		{
			name:      "paged envelope",
			raw:       `{"items": [{"id": 3}], "total": 41, "pages": 3}`,
			wantItems: []models.Post{{ID: 3}},
			wantPages: 3,
		},
		{
			name:      "envelope without pages",
			raw:       `{"items": [{"id": 4}]}`,
			wantItems: []models.Post{{ID: 4}},
			wantPages: 1,
		},
		{
			name:      "envelope with empty items",
			raw:       `{"items": [], "pages": 0}`,
			wantItems: []models.Post{},
			wantPages: 1,
		},
		{
			name:      "null items falls through",
			raw:       `{"items": null, "pages": 5}`,
			wantItems: []models.Post{},
			wantPages: 1,
			wantShape: true,
		},
		{
			name:      "unrecognized object",
			raw:       `{"data": [{"id": 9}], "count": 1}`,
			wantItems: []models.Post{},
			wantPages: 1,
			wantShape: true,
		},
		{
			name:      "scalar payload",
			raw:       `42`,
			wantItems: []models.Post{},
			wantPages: 1,
			wantShape: true,
		},
		{
			name:      "malformed array",
			raw:       `[{"id": "not a number"}]`,
			wantItems: []models.Post{},
			wantPages: 1,
			wantShape: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			items, pages, err := DecodePage(json.RawMessage(tc.raw))

			if tc.wantShape {
				var shape *apperr.ShapeError
				if !errors.As(err, &shape) {
					t.Fatalf("err = %v, want ShapeError", err)
				}
			} else if err != nil {
				t.Fatalf("DecodePage: %v", err)
			}

			if items == nil {
				t.Fatal("items must never be nil")
			}
			if diff := cmp.Diff(tc.wantItems, items); diff != "" {
				t.Errorf("items mismatch (-want +got):\n%s", diff)
			}
			if pages != tc.wantPages {
				t.Errorf("pages = %d, want %d", pages, tc.wantPages)
			}
		})
	}
}
