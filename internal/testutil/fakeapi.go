package testutil

import (
	"encoding/json"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/starford/scrawl/internal/models"
)

// Envelope modes for the list endpoint.
const (
	EnvelopePaged = "paged" // {"items": [...], "pages": n}
	EnvelopeArray = "array" // bare JSON array
	EnvelopeBogus = "bogus" // an unrecognized object
)

// FakeAPI is an in-memory blogging backend. One account exists
// (testuser / password123, token "t1"); like and favorite state is tracked
// for that viewer only. Every handled request is appended to Requests as
// "METHOD path?query" for assertions.
type FakeAPI struct {
	mu sync.Mutex

	User     models.User
	Password string
	Token    string

	Posts     map[int]*models.Post
	Comments  map[int][]models.Comment
	Liked     map[int]bool
	Favorited map[int]bool

	Envelope string
	Pages    int

	FailList bool
	Requests []string

	nextPostID    int
	nextCommentID int
}

// NewFakeAPI creates a backend with the default account and no posts.
func NewFakeAPI() *FakeAPI {
	return &FakeAPI{
		User: models.User{
			ID:        1,
			Username:  "testuser",
			Email:     "testuser@example.com",
			CreatedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		},
		Password:      "password123",
		Token:         "t1",
		Posts:         make(map[int]*models.Post),
		Comments:      make(map[int][]models.Comment),
		Liked:         make(map[int]bool),
		Favorited:     make(map[int]bool),
		Envelope:      EnvelopePaged,
		Pages:         1,
		nextPostID:    100,
		nextCommentID: 1000,
	}
}

// AddPost seeds a post.
func (f *FakeAPI) AddPost(p models.Post) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := p
	f.Posts[p.ID] = &cp
}

// RequestCount returns how many requests matched the "METHOD path" prefix.
func (f *FakeAPI) RequestCount(prefix string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, r := range f.Requests {
		if strings.HasPrefix(r, prefix) {
			n++
		}
	}
	return n
}

// LastRequest returns the most recent request matching the prefix, or "".
func (f *FakeAPI) LastRequest(prefix string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.Requests) - 1; i >= 0; i-- {
		if strings.HasPrefix(f.Requests[i], prefix) {
			return f.Requests[i]
		}
	}
	return ""
}

// Router builds the chi route tree mirroring the real API surface.
func (f *FakeAPI) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(f.record)

	r.Post("/auth/login", f.login)
	r.Post("/auth/register", f.register)

	r.Get("/posts/", f.listPosts)
	r.Post("/posts/", f.createPost)
	r.Get("/posts/{id}", f.getPost)
	r.Put("/posts/{id}", f.updatePost)
	r.Delete("/posts/{id}", f.deletePost)
	r.Post("/posts/{id}/like", f.setRelation("like", true))
	r.Delete("/posts/{id}/like", f.setRelation("like", false))
	r.Post("/posts/{id}/favorite", f.setRelation("favorite", true))
	r.Delete("/posts/{id}/favorite", f.setRelation("favorite", false))
	r.Get("/posts/{id}/comments", f.listComments)
	r.Post("/posts/{id}/comments", f.createComment)

	r.Get("/users/", f.searchUsers)
	r.Get("/users/me", f.me)
	r.Put("/users/me", f.updateMe)
	r.Get("/users/me/favorites", f.myFavorites)
	r.Get("/users/{id}/posts", f.userPosts)

	return r
}

func (f *FakeAPI) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		line := r.Method + " " + r.URL.Path
		if r.URL.RawQuery != "" {
			line += "?" + r.URL.RawQuery
		}
		f.mu.Lock()
		f.Requests = append(f.Requests, line)
		f.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (f *FakeAPI) authorized(r *http.Request) bool {
	return r.Header.Get("Authorization") == "Bearer "+f.Token
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func detail(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"detail": msg})
}

func (f *FakeAPI) login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)

	f.mu.Lock()
	defer f.mu.Unlock()
	if body.Username != f.User.Username || body.Password != f.Password {
		detail(w, http.StatusUnauthorized, "Incorrect username or password")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"access_token": f.Token,
		"user":         f.User,
	})
}

func (f *FakeAPI) register(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Username string `json:"username"`
		Password string `json:"password"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)

	f.mu.Lock()
	defer f.mu.Unlock()
	if body.Username == f.User.Username {
		detail(w, http.StatusBadRequest, "Username already registered")
		return
	}
	writeJSON(w, http.StatusCreated, models.User{
		ID:        2,
		Username:  body.Username,
		Email:     body.Email,
		CreatedAt: time.Now().UTC(),
	})
}

// viewPost applies viewer-relative flags for authorized requests.
func (f *FakeAPI) viewPost(p *models.Post, authed bool) models.Post {
	out := *p
	if authed {
		out.IsLiked = f.Liked[p.ID]
		out.IsFavorited = f.Favorited[p.ID]
	}
	out.CommentsCount = len(f.Comments[p.ID])
	return out
}

func (f *FakeAPI) sortedPosts() []*models.Post {
	ids := make([]int, 0, len(f.Posts))
	for id := range f.Posts {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	out := make([]*models.Post, 0, len(ids))
	for _, id := range ids {
		out = append(out, f.Posts[id])
	}
	return out
}

func (f *FakeAPI) listPosts(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.FailList {
		detail(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	q := r.URL.Query()
	skip, _ := strconv.Atoi(q.Get("skip"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	search := strings.ToLower(q.Get("search"))
	authed := f.authorized(r)

	var matched []models.Post
	for _, p := range f.sortedPosts() {
		if search != "" &&
			!strings.Contains(strings.ToLower(p.Title), search) &&
			!strings.Contains(strings.ToLower(p.Content), search) {
			continue
		}
		matched = append(matched, f.viewPost(p, authed))
	}

	if skip > len(matched) {
		skip = len(matched)
	}
	window := matched[skip:]
	if limit > 0 && limit < len(window) {
		window = window[:limit]
	}
	if window == nil {
		window = []models.Post{}
	}

	switch f.Envelope {
	case EnvelopeArray:
		writeJSON(w, http.StatusOK, window)
	case EnvelopeBogus:
		writeJSON(w, http.StatusOK, map[string]any{"data": window, "count": len(window)})
	default:
		writeJSON(w, http.StatusOK, map[string]any{
			"items": window,
			"total": len(matched),
			"pages": f.Pages,
		})
	}
}

func (f *FakeAPI) postID(r *http.Request) int {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))
	return id
}

func (f *FakeAPI) getPost(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.Posts[f.postID(r)]
	if !ok {
		detail(w, http.StatusNotFound, "Post not found")
		return
	}
	writeJSON(w, http.StatusOK, f.viewPost(p, f.authorized(r)))
}

func (f *FakeAPI) createPost(w http.ResponseWriter, r *http.Request) {
	if !f.authorized(r) {
		detail(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	var body struct {
		Title   string `json:"title"`
		Content string `json:"content"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextPostID++
	p := &models.Post{
		ID:             f.nextPostID,
		Title:          body.Title,
		Content:        body.Content,
		AuthorUsername: f.User.Username,
		UserID:         f.User.ID,
		CreatedAt:      time.Now().UTC(),
	}
	f.Posts[p.ID] = p
	writeJSON(w, http.StatusCreated, f.viewPost(p, true))
}

func (f *FakeAPI) updatePost(w http.ResponseWriter, r *http.Request) {
	if !f.authorized(r) {
		detail(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	var body struct {
		Title   string `json:"title"`
		Content string `json:"content"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)

	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.Posts[f.postID(r)]
	if !ok {
		detail(w, http.StatusNotFound, "Post not found")
		return
	}
	if p.UserID != f.User.ID && !f.User.IsAdmin {
		detail(w, http.StatusForbidden, "Not enough permissions")
		return
	}
	p.Title = body.Title
	p.Content = body.Content
	writeJSON(w, http.StatusOK, f.viewPost(p, true))
}

func (f *FakeAPI) deletePost(w http.ResponseWriter, r *http.Request) {
	if !f.authorized(r) {
		detail(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.postID(r)
	p, ok := f.Posts[id]
	if !ok {
		detail(w, http.StatusNotFound, "Post not found")
		return
	}
	if p.UserID != f.User.ID && !f.User.IsAdmin {
		detail(w, http.StatusForbidden, "Not enough permissions")
		return
	}
	delete(f.Posts, id)
	w.WriteHeader(http.StatusNoContent)
}

// setRelation flips the viewer's like or favorite flag server-side and
// adjusts the like counter.
func (f *FakeAPI) setRelation(kind string, value bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !f.authorized(r) {
			detail(w, http.StatusUnauthorized, "Not authenticated")
			return
		}
		f.mu.Lock()
		defer f.mu.Unlock()
		id := f.postID(r)
		p, ok := f.Posts[id]
		if !ok {
			detail(w, http.StatusNotFound, "Post not found")
			return
		}
		state := f.Liked
		if kind == "favorite" {
			state = f.Favorited
		}
		if state[id] == value {
			detail(w, http.StatusBadRequest, "Already in that state")
			return
		}
		state[id] = value
		if kind == "like" {
			if value {
				p.LikesCount++
			} else {
				p.LikesCount--
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func (f *FakeAPI) listComments(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.postID(r)
	if _, ok := f.Posts[id]; !ok {
		detail(w, http.StatusNotFound, "Post not found")
		return
	}
	list := f.Comments[id]
	if list == nil {
		list = []models.Comment{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (f *FakeAPI) createComment(w http.ResponseWriter, r *http.Request) {
	if !f.authorized(r) {
		detail(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	var body struct {
		Content string `json:"content"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)

	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.postID(r)
	if _, ok := f.Posts[id]; !ok {
		detail(w, http.StatusNotFound, "Post not found")
		return
	}
	f.nextCommentID++
	c := models.Comment{
		ID:             f.nextCommentID,
		Content:        body.Content,
		AuthorUsername: f.User.Username,
		CreatedAt:      time.Now().UTC(),
	}
	f.Comments[id] = append(f.Comments[id], c)
	writeJSON(w, http.StatusCreated, c)
}

func (f *FakeAPI) me(w http.ResponseWriter, r *http.Request) {
	if !f.authorized(r) {
		detail(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	writeJSON(w, http.StatusOK, f.User)
}

func (f *FakeAPI) updateMe(w http.ResponseWriter, r *http.Request) {
	if !f.authorized(r) {
		detail(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	var body struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Bio      string `json:"bio"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.User.Username = body.Username
	f.User.Email = body.Email
	f.User.Bio = body.Bio
	writeJSON(w, http.StatusOK, f.User)
}

func (f *FakeAPI) myFavorites(w http.ResponseWriter, r *http.Request) {
	if !f.authorized(r) {
		detail(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Post{}
	for _, p := range f.sortedPosts() {
		if f.Favorited[p.ID] {
			out = append(out, f.viewPost(p, true))
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (f *FakeAPI) userPosts(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	userID, _ := strconv.Atoi(chi.URLParam(r, "id"))
	authed := f.authorized(r)
	out := []models.Post{}
	for _, p := range f.sortedPosts() {
		if p.UserID == userID {
			out = append(out, f.viewPost(p, authed))
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (f *FakeAPI) searchUsers(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	search := strings.ToLower(r.URL.Query().Get("search"))
	out := []models.User{}
	if search != "" &&
		(strings.Contains(strings.ToLower(f.User.Username), search) ||
			strings.Contains(strings.ToLower(f.User.Email), search)) {
		out = append(out, f.User)
	}
	writeJSON(w, http.StatusOK, out)
}
