package feed_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/starford/scrawl/internal/feed"
	"github.com/starford/scrawl/internal/testutil"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func seeded(n int) *testutil.FakeAPI {
	f := testutil.NewFakeAPI()
	for i := 1; i <= n; i++ {
		f.AddPost(testutil.SeedPost(i, "Post "+string(rune('A'+i-1))))
	}
	return f
}

func TestLoadFirstPage(t *testing.T) {
	f := seeded(3)
	f.Pages = 1
	c := feed.NewController(testutil.Client(t, f, nil), discardLogger())

	c.Load(context.Background(), 1, "")

	if err := c.Err(); err != nil {
		t.Fatalf("Err: %v", err)
	}
	page := c.Snapshot()
	if len(page.Items) != 3 {
		t.Fatalf("items = %d, want 3", len(page.Items))
	}
	if page.CurrentPage != 1 || page.TotalPages != 1 {
		t.Errorf("page = %d/%d, want 1/1", page.CurrentPage, page.TotalPages)
	}
	if got := f.LastRequest("GET /posts/"); got != "GET /posts/?limit=20&skip=0" {
		t.Errorf("request = %q", got)
	}
	if n := f.RequestCount("GET /posts/"); n != 1 {
		t.Errorf("request count = %d, want 1", n)
	}
}

func TestLoadPageOffsets(t *testing.T) {
	f := seeded(1)
	c := feed.NewController(testutil.Client(t, f, nil), discardLogger())

	c.Load(context.Background(), 3, "")
	if got := f.LastRequest("GET /posts/"); got != "GET /posts/?limit=20&skip=40" {
		t.Errorf("request = %q", got)
	}

	// Page numbers below 1 clamp to the first page.
	c.Load(context.Background(), 0, "")
	if got := f.LastRequest("GET /posts/"); got != "GET /posts/?limit=20&skip=0" {
		t.Errorf("request = %q", got)
	}
}

func TestSearchParamOnlyWhenSet(t *testing.T) {
	f := seeded(2)
	c := feed.NewController(testutil.Client(t, f, nil), discardLogger())

	c.Search(context.Background(), "Post A")
	if got := f.LastRequest("GET /posts/"); got != "GET /posts/?limit=20&search=Post+A&skip=0" {
		t.Errorf("request = %q", got)
	}
	if page := c.Snapshot(); len(page.Items) != 1 {
		t.Errorf("items = %d, want 1 match", len(page.Items))
	}
	if c.Query() != "Post A" {
		t.Errorf("Query = %q", c.Query())
	}

	c.Search(context.Background(), "")
	if got := f.LastRequest("GET /posts/"); got != "GET /posts/?limit=20&skip=0" {
		t.Errorf("request = %q, search must be omitted when blank", got)
	}
}

func TestLoadFailureClearsItems(t *testing.T) {
	f := seeded(2)
	f.Pages = 4
	c := feed.NewController(testutil.Client(t, f, nil), discardLogger())

	c.Load(context.Background(), 1, "")
	if got := c.Snapshot().TotalPages; got != 4 {
		t.Fatalf("totalPages = %d, want 4", got)
	}

	f.FailList = true
	c.Load(context.Background(), 2, "")

	if c.Err() == nil {
		t.Fatal("expected error state after failed load")
	}
	page := c.Snapshot()
	if len(page.Items) != 0 {
		t.Errorf("items = %d, want 0 after failure", len(page.Items))
	}
	// The page count keeps its last good value.
	if page.TotalPages != 4 {
		t.Errorf("totalPages = %d, want 4", page.TotalPages)
	}

	// A later successful load clears the error state.
	f.FailList = false
	c.Load(context.Background(), 1, "")
	if err := c.Err(); err != nil {
		t.Errorf("Err after recovery: %v", err)
	}
}

func TestArrayEnvelope(t *testing.T) {
	f := seeded(2)
	f.Envelope = testutil.EnvelopeArray
	c := feed.NewController(testutil.Client(t, f, nil), discardLogger())

	c.Load(context.Background(), 1, "")
	page := c.Snapshot()
	if len(page.Items) != 2 {
		t.Errorf("items = %d, want 2", len(page.Items))
	}
	if page.TotalPages != 1 {
		t.Errorf("totalPages = %d, want 1", page.TotalPages)
	}
}

func TestBogusEnvelopeYieldsEmptyPage(t *testing.T) {
	f := seeded(2)
	f.Envelope = testutil.EnvelopeBogus
	c := feed.NewController(testutil.Client(t, f, nil), discardLogger())

	c.Load(context.Background(), 1, "")

	// An unrecognized payload is an empty page, not a failure.
	if err := c.Err(); err != nil {
		t.Fatalf("Err: %v", err)
	}
	if page := c.Snapshot(); len(page.Items) != 0 || page.TotalPages != 1 {
		t.Errorf("page = %+v, want empty single page", page)
	}
}

func TestRefreshRepeatsLastLoad(t *testing.T) {
	f := seeded(2)
	f.Pages = 3
	c := feed.NewController(testutil.Client(t, f, nil), discardLogger())

	c.Load(context.Background(), 2, "post")
	if err := c.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if n := f.RequestCount("GET /posts/"); n != 2 {
		t.Fatalf("request count = %d, want 2", n)
	}
	want := "GET /posts/?limit=20&search=post&skip=20"
	if got := f.LastRequest("GET /posts/"); got != want {
		t.Errorf("request = %q, want %q", got, want)
	}
}

func TestLoadPastEndClampsPage(t *testing.T) {
	f := seeded(3)
	f.Pages = 1
	c := feed.NewController(testutil.Client(t, f, nil), discardLogger())

	c.Load(context.Background(), 5, "")

	if err := c.Err(); err != nil {
		t.Fatalf("Err: %v", err)
	}
	// The request still targets the asked-for window.
	if got := f.LastRequest("GET /posts/"); got != "GET /posts/?limit=20&skip=80" {
		t.Errorf("request = %q", got)
	}
	page := c.Snapshot()
	if page.CurrentPage > page.TotalPages {
		t.Errorf("currentPage %d > totalPages %d", page.CurrentPage, page.TotalPages)
	}
	if page.CurrentPage != 1 || page.TotalPages != 1 {
		t.Errorf("page = %d/%d, want 1/1", page.CurrentPage, page.TotalPages)
	}
}

func TestQueryChangeResetsPage(t *testing.T) {
	f := seeded(2)
	f.Pages = 5
	c := feed.NewController(testutil.Client(t, f, nil), discardLogger())

	c.Load(context.Background(), 3, "")
	if got := c.Snapshot().CurrentPage; got != 3 {
		t.Fatalf("currentPage = %d, want 3", got)
	}

	// A new search term starts over from the first page, whatever the
	// caller asked for.
	c.Load(context.Background(), 3, "post")
	if got := f.LastRequest("GET /posts/"); got != "GET /posts/?limit=20&search=post&skip=0" {
		t.Errorf("request = %q", got)
	}
	if got := c.Snapshot().CurrentPage; got != 1 {
		t.Errorf("currentPage = %d, want 1", got)
	}
}

func TestPostLookup(t *testing.T) {
	f := seeded(2)
	c := feed.NewController(testutil.Client(t, f, nil), discardLogger())
	c.Load(context.Background(), 1, "")

	if _, ok := c.Post(1); !ok {
		t.Error("post 1 should be in the snapshot")
	}
	if _, ok := c.Post(99); ok {
		t.Error("post 99 should not be in the snapshot")
	}
}
