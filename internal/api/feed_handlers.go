package api

import (
	"net/http"
	"strconv"

	"github.com/teknoblog/teknoblog/internal/feed"
	"github.com/teknoblog/teknoblog/internal/post"
)

// FeedResponse represents the JSON response for feed endpoints.
type FeedResponse struct {
	Posts []*post.Post `json:"posts"`
	Count int          `json:"count"`
}

// FeedHandlers holds dependencies for feed HTTP handlers.
type FeedHandlers struct {
	feeds *feed.Service
}

// NewFeedHandlers creates a new FeedHandlers instance.
func NewFeedHandlers(feeds *feed.Service) *FeedHandlers {
	return &FeedHandlers{feeds: feeds}
}

// parseFeedQuery reads and normalizes the shared limit/category query
// parameters. A malformed limit falls back to the default rather than
// erroring; an unknown category is rejected by the caller.
func parseFeedQuery(r *http.Request) (limit int, category string) {
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if n, err := strconv.Atoi(limitStr); err == nil {
			limit = n
		}
	}
	return feed.ClampLimit(limit), r.URL.Query().Get("category")
}

// validFeedCategory accepts "", "all", and any known storable category.
func validFeedCategory(category string) bool {
	if category == "" || category == post.CategoryAll {
		return true
	}
	return post.ValidCategory(category)
}

// Popular handles GET /feed/popular?limit=&category= - posts ranked by
// popularity score.
func (h *FeedHandlers) Popular(w http.ResponseWriter, r *http.Request) {
	limit, category := parseFeedQuery(r)
	if !validFeedCategory(category) {
		writeErrorCode(w, r, ErrCodeInvalidCategory, "Unknown category")
		return
	}

	posts, err := h.feeds.Popular(r.Context(), limit, category)
	if err != nil {
		writeStoreError(w, r, err, "Feed not found")
		return
	}

	writeJSON(w, r, http.StatusOK, FeedResponse{Posts: posts, Count: len(posts)})
}

// Recent handles GET /feed/recent?limit=&category= - posts by creation time.
func (h *FeedHandlers) Recent(w http.ResponseWriter, r *http.Request) {
	limit, category := parseFeedQuery(r)
	if !validFeedCategory(category) {
		writeErrorCode(w, r, ErrCodeInvalidCategory, "Unknown category")
		return
	}

	posts, err := h.feeds.Recent(r.Context(), limit, category)
	if err != nil {
		writeStoreError(w, r, err, "Feed not found")
		return
	}

	writeJSON(w, r, http.StatusOK, FeedResponse{Posts: posts, Count: len(posts)})
}

// Following handles GET /feed/following?limit=&category= - posts by
// authors the authenticated user follows.
func (h *FeedHandlers) Following(w http.ResponseWriter, r *http.Request) {
	userID := requireUser(w, r)
	if userID == "" {
		return
	}

	limit, category := parseFeedQuery(r)
	if !validFeedCategory(category) {
		writeErrorCode(w, r, ErrCodeInvalidCategory, "Unknown category")
		return
	}

	posts, err := h.feeds.Following(r.Context(), userID, limit, category)
	if err != nil {
		writeStoreError(w, r, err, "Feed not found")
		return
	}

	writeJSON(w, r, http.StatusOK, FeedResponse{Posts: posts, Count: len(posts)})
}

// Bookmarked handles GET /feed/bookmarks?limit= - the authenticated
// user's bookmarked posts, newest first.
func (h *FeedHandlers) Bookmarked(w http.ResponseWriter, r *http.Request) {
	userID := requireUser(w, r)
	if userID == "" {
		return
	}

	limit, _ := parseFeedQuery(r)
	posts, err := h.feeds.Bookmarked(r.Context(), userID, limit)
	if err != nil {
		writeStoreError(w, r, err, "Feed not found")
		return
	}

	writeJSON(w, r, http.StatusOK, FeedResponse{Posts: posts, Count: len(posts)})
}

// AuthorPosts handles GET /users/{id}/posts - the newest posts by one author.
func (h *FeedHandlers) AuthorPosts(w http.ResponseWriter, r *http.Request) {
	authorID := r.PathValue("id")
	if authorID == "" {
		writeErrorCode(w, r, ErrCodeBadRequest, "User ID is required")
		return
	}

	limit, _ := parseFeedQuery(r)
	posts, err := h.feeds.Author(r.Context(), authorID, limit)
	if err != nil {
		writeStoreError(w, r, err, "User not found")
		return
	}

	writeJSON(w, r, http.StatusOK, FeedResponse{Posts: posts, Count: len(posts)})
}
