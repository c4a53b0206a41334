package api

import (
	"net/http"
)

// RouterConfig wires the handler groups into one mux. Auth wraps routes
// that require an authenticated user; leaving it nil (as tests do) makes
// those routes rely on the handlers' own identity checks.
type RouterConfig struct {
	Feeds         *FeedHandlers
	Posts         *PostHandlers
	Follows       *FollowHandlers
	Users         *UserHandlers
	Notifications *NotificationHandlers
	Health        *HealthHandlers
	Auth          func(http.Handler) http.Handler
	Metrics       http.Handler
}

// NewRouter builds the route table. Method and path parameters use the
// net/http pattern syntax; unmatched requests get the mux's default 404.
func NewRouter(cfg RouterConfig) *http.ServeMux {
	mux := http.NewServeMux()

	requireAuth := cfg.Auth
	if requireAuth == nil {
		requireAuth = func(next http.Handler) http.Handler { return next }
	}
	protected := func(pattern string, h http.HandlerFunc) {
		mux.Handle(pattern, requireAuth(h))
	}

	// Feeds
	mux.HandleFunc("GET /feed/popular", cfg.Feeds.Popular)
	mux.HandleFunc("GET /feed/recent", cfg.Feeds.Recent)
	protected("GET /feed/following", cfg.Feeds.Following)
	protected("GET /feed/bookmarks", cfg.Feeds.Bookmarked)

	// Posts
	protected("POST /posts", cfg.Posts.CreatePost)
	mux.HandleFunc("GET /posts/{id}", cfg.Posts.GetPost)
	protected("PUT /posts/{id}", cfg.Posts.UpdatePost)
	protected("DELETE /posts/{id}", cfg.Posts.DeletePost)
	protected("POST /posts/{id}/like", cfg.Posts.Like)
	protected("POST /posts/{id}/unlike", cfg.Posts.Unlike)
	protected("POST /posts/{id}/bookmark", cfg.Posts.Bookmark)
	protected("POST /posts/{id}/unbookmark", cfg.Posts.Unbookmark)
	protected("POST /posts/{id}/comments", cfg.Posts.AddComment)
	mux.HandleFunc("GET /posts/{id}/comments", cfg.Posts.ListComments)
	protected("DELETE /posts/{id}/comments/{commentID}", cfg.Posts.DeleteComment)
	protected("POST /posts/{id}/archive", cfg.Posts.Archive)
	protected("POST /posts/{id}/restore", cfg.Posts.Restore)

	// Users
	mux.HandleFunc("GET /users/search", cfg.Users.Search)
	mux.HandleFunc("GET /users/{id}/posts", cfg.Feeds.AuthorPosts)
	mux.HandleFunc("GET /users/{id}/followers", cfg.Follows.Followers)
	mux.HandleFunc("GET /users/{id}/following", cfg.Follows.Following)
	protected("POST /users/{id}/follow", cfg.Follows.Follow)
	protected("POST /users/{id}/unfollow", cfg.Follows.Unfollow)

	// Notifications
	protected("GET /notifications", cfg.Notifications.List)
	protected("GET /notifications/unread", cfg.Notifications.UnreadCount)
	protected("POST /notifications/{id}/read", cfg.Notifications.MarkRead)
	protected("POST /notifications/read-all", cfg.Notifications.MarkAllRead)

	// Probes and metrics
	mux.HandleFunc("GET /health", cfg.Health.Health)
	mux.HandleFunc("GET /ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		mux.Handle("GET /metrics", cfg.Metrics)
	}

	return mux
}
