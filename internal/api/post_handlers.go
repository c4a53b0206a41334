package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/teknoblog/teknoblog/internal/comment"
	"github.com/teknoblog/teknoblog/internal/middleware"
	"github.com/teknoblog/teknoblog/internal/notification"
	"github.com/teknoblog/teknoblog/internal/post"
	"github.com/teknoblog/teknoblog/internal/profile"
	"github.com/teknoblog/teknoblog/internal/store"
	"github.com/teknoblog/teknoblog/internal/validate"
)

// Post input constraints
const (
	MaxTags          = 10
	MaxImages        = 6
	MaxCommentLength = 2000
)

// Notifier delivers engagement notifications. Delivery is best-effort:
// handlers log failures and never fail the triggering operation over one.
type Notifier interface {
	Notify(ctx context.Context, n *notification.Notification) error
}

// CreatePostRequest represents the request body for creating a post.
type CreatePostRequest struct {
	Title    string       `json:"title"`
	Content  string       `json:"content"`
	Category string       `json:"category"`
	Tags     []string     `json:"tags,omitempty"`
	ImageURL string       `json:"image_url,omitempty"`
	Images   []post.Image `json:"images,omitempty"`
}

// UpdatePostRequest represents the request body for updating a post.
// Absent fields keep their current value.
type UpdatePostRequest struct {
	Title    *string       `json:"title,omitempty"`
	Content  *string       `json:"content,omitempty"`
	Category *string       `json:"category,omitempty"`
	Tags     *[]string     `json:"tags,omitempty"`
	ImageURL *string       `json:"image_url,omitempty"`
	Images   *[]post.Image `json:"images,omitempty"`
}

// AddCommentRequest represents the request body for commenting on a post.
type AddCommentRequest struct {
	Text string `json:"text"`
}

// CommentListResponse lists the comments on a post.
type CommentListResponse struct {
	PostID   string             `json:"post_id"`
	Comments []*comment.Comment `json:"comments"`
	Count    int                `json:"count"`
}

// EngagementResponse summarizes a post's engagement counters after a
// like/bookmark/comment operation.
type EngagementResponse struct {
	PostID    string `json:"post_id"`
	Likes     int    `json:"likes"`
	Bookmarks int    `json:"bookmarks"`
	Comments  int    `json:"comments"`
}

// PostHandlers holds dependencies for post HTTP handlers.
type PostHandlers struct {
	store    store.ContentStore
	comments comment.Repository
	notifier Notifier
	resolver *profile.Resolver
}

// NewPostHandlers creates a new PostHandlers instance. notifier and
// resolver may be nil; the handlers then skip notifications and author
// decoration respectively.
func NewPostHandlers(contentStore store.ContentStore, comments comment.Repository, notifier Notifier, resolver *profile.Resolver) *PostHandlers {
	return &PostHandlers{
		store:    contentStore,
		comments: comments,
		notifier: notifier,
		resolver: resolver,
	}
}

// sanitizeTags validates and sanitizes every tag.
// Returns an error message for the response, empty when valid.
func sanitizeTags(tags []string) ([]string, string) {
	if len(tags) > MaxTags {
		return nil, "Maximum 10 tags allowed"
	}
	out := make([]string, len(tags))
	for i, tag := range tags {
		clean, err := validate.Tag(tag)
		if err != nil {
			return nil, "Invalid tag"
		}
		out[i] = clean
	}
	return out, ""
}

// validateImages checks the legacy single image URL and the multi-image list.
func validateImages(imageURL string, images []post.Image) string {
	if len(images) > MaxImages {
		return "Maximum 6 images allowed"
	}
	if imageURL != "" {
		if _, err := validate.ImageURL(imageURL); err != nil {
			return "Invalid image URL"
		}
	}
	for _, img := range images {
		if _, err := validate.ImageURL(img.URL); err != nil {
			return "Invalid image URL"
		}
	}
	return ""
}

// writeStoreError maps a content store failure onto the error envelope.
func writeStoreError(w http.ResponseWriter, r *http.Request, err error, notFoundMsg string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeErrorCode(w, r, ErrCodeNotFound, notFoundMsg)
	case errors.Is(err, store.ErrUnavailable):
		slog.ErrorContext(r.Context(), "content store unavailable", "error", err)
		writeErrorCode(w, r, ErrCodeStoreUnavailable, "Content store is temporarily unavailable")
	default:
		slog.ErrorContext(r.Context(), "content store operation failed", "error", err)
		writeErrorCode(w, r, ErrCodeInternal, "Internal server error")
	}
}

// requireUser extracts the authenticated user ID from the request context.
// Writes a 401 and returns "" when absent.
func requireUser(w http.ResponseWriter, r *http.Request) string {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		writeErrorCode(w, r, ErrCodeAuthFailed, "Authentication required")
	}
	return userID
}

// notify emits an engagement notification best-effort. The actor's display
// name is resolved when a resolver is configured; resolution failure just
// leaves the name blank.
func (h *PostHandlers) notify(r *http.Request, recipientID, actorID string, typ notification.Type, postID string) {
	if h.notifier == nil || recipientID == "" {
		return
	}
	ctx := r.Context()

	n := &notification.Notification{
		RecipientID: recipientID,
		ActorID:     actorID,
		Type:        typ,
		PostID:      postID,
	}
	if h.resolver != nil {
		if prof, err := h.resolver.Resolve(ctx, actorID); err == nil {
			n.ActorName = prof.Name
		}
	}

	if err := h.notifier.Notify(ctx, n); err != nil {
		slog.WarnContext(ctx, "failed to deliver notification",
			"type", string(typ), "post_id", postID, "error", err)
	}
}

// CreatePost handles POST /posts - creates a new post.
func (h *PostHandlers) CreatePost(w http.ResponseWriter, r *http.Request) {
	userID := requireUser(w, r)
	if userID == "" {
		return
	}

	var req CreatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorCode(w, r, ErrCodeBadRequest, "Invalid JSON in request body")
		return
	}

	title, err := validate.PostTitle(req.Title)
	if err != nil {
		writeErrorCode(w, r, ErrCodeValidation, "Title must be 1-200 characters")
		return
	}
	content, err := validate.PostContent(req.Content)
	if err != nil {
		writeErrorCode(w, r, ErrCodeValidation, "Content is required and limited to 50000 characters")
		return
	}
	if !post.ValidCategory(req.Category) {
		writeErrorCode(w, r, ErrCodeInvalidCategory, "Unknown category")
		return
	}
	tags, errMsg := sanitizeTags(req.Tags)
	if errMsg != "" {
		writeErrorCode(w, r, ErrCodeValidation, errMsg)
		return
	}
	if errMsg := validateImages(req.ImageURL, req.Images); errMsg != "" {
		writeErrorCode(w, r, ErrCodeValidation, errMsg)
		return
	}

	newPost := &post.Post{
		Title:    title,
		Content:  content,
		AuthorID: userID,
		Category: req.Category,
		Tags:     tags,
		ImageURL: req.ImageURL,
		Images:   req.Images,
	}

	if err := h.store.Create(r.Context(), newPost); err != nil {
		writeStoreError(w, r, err, "Post not found")
		return
	}

	writeJSON(w, r, http.StatusCreated, newPost)
}

// GetPost handles GET /posts/{id} - retrieves a single post with the
// author display fields resolved.
func (h *PostHandlers) GetPost(w http.ResponseWriter, r *http.Request) {
	postID := r.PathValue("id")
	if postID == "" {
		writeErrorCode(w, r, ErrCodeBadRequest, "Post ID is required")
		return
	}

	p, err := h.store.GetByID(r.Context(), postID)
	if err != nil {
		writeStoreError(w, r, err, "Post not found")
		return
	}

	if h.resolver != nil {
		if prof, err := h.resolver.Resolve(r.Context(), p.AuthorID); err == nil {
			p.AuthorName = prof.Name
			p.AuthorUsername = prof.Username
			p.AuthorAvatar = prof.AvatarURL
		}
	}

	writeJSON(w, r, http.StatusOK, p)
}

// UpdatePost handles PUT /posts/{id} - updates an existing post.
// Only the author may update; engagement fields are untouchable here.
func (h *PostHandlers) UpdatePost(w http.ResponseWriter, r *http.Request) {
	userID := requireUser(w, r)
	if userID == "" {
		return
	}
	postID := r.PathValue("id")

	var req UpdatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorCode(w, r, ErrCodeBadRequest, "Invalid JSON in request body")
		return
	}

	existing, err := h.store.GetByID(r.Context(), postID)
	if err != nil {
		writeStoreError(w, r, err, "Post not found")
		return
	}
	if existing.AuthorID != userID {
		writeErrorCode(w, r, ErrCodeForbidden, "Only the author can update a post")
		return
	}

	if req.Title != nil {
		title, err := validate.PostTitle(*req.Title)
		if err != nil {
			writeErrorCode(w, r, ErrCodeValidation, "Title must be 1-200 characters")
			return
		}
		existing.Title = title
	}
	if req.Content != nil {
		content, err := validate.PostContent(*req.Content)
		if err != nil {
			writeErrorCode(w, r, ErrCodeValidation, "Content is required and limited to 50000 characters")
			return
		}
		existing.Content = content
	}
	if req.Category != nil {
		if !post.ValidCategory(*req.Category) {
			writeErrorCode(w, r, ErrCodeInvalidCategory, "Unknown category")
			return
		}
		existing.Category = *req.Category
	}
	if req.Tags != nil {
		tags, errMsg := sanitizeTags(*req.Tags)
		if errMsg != "" {
			writeErrorCode(w, r, ErrCodeValidation, errMsg)
			return
		}
		existing.Tags = tags
	}
	if req.ImageURL != nil || req.Images != nil {
		imageURL := existing.ImageURL
		images := existing.Images
		if req.ImageURL != nil {
			imageURL = *req.ImageURL
		}
		if req.Images != nil {
			images = *req.Images
		}
		if errMsg := validateImages(imageURL, images); errMsg != "" {
			writeErrorCode(w, r, ErrCodeValidation, errMsg)
			return
		}
		existing.ImageURL = imageURL
		existing.Images = images
	}

	if err := h.store.Update(r.Context(), existing); err != nil {
		writeStoreError(w, r, err, "Post not found")
		return
	}

	writeJSON(w, r, http.StatusOK, existing)
}

// DeletePost handles DELETE /posts/{id}.
func (h *PostHandlers) DeletePost(w http.ResponseWriter, r *http.Request) {
	userID := requireUser(w, r)
	if userID == "" {
		return
	}
	postID := r.PathValue("id")

	existing, err := h.store.GetByID(r.Context(), postID)
	if err != nil {
		writeStoreError(w, r, err, "Post not found")
		return
	}
	if existing.AuthorID != userID {
		writeErrorCode(w, r, ErrCodeForbidden, "Only the author can delete a post")
		return
	}

	if err := h.store.Delete(r.Context(), postID); err != nil {
		writeStoreError(w, r, err, "Post not found")
		return
	}

	// Comment bodies ride along with the post. A cleanup failure only
	// leaves orphans behind, never fails the delete.
	if _, err := h.comments.DeleteByPost(r.Context(), postID); err != nil {
		slog.WarnContext(r.Context(), "failed to delete comments of removed post",
			"post_id", postID, "error", err)
	}

	w.WriteHeader(http.StatusNoContent)
}

// engagementOp describes one like/bookmark style mutation: the store call,
// the counter delta when the state actually changed, and the notification
// type to emit on a fresh positive action.
type engagementOp struct {
	apply   func(ctx context.Context, postID, userID string) error
	notify  notification.Type
	adjust  func(*EngagementResponse)
	already func(p *post.Post, userID string) bool
}

// Like handles POST /posts/{id}/like. Liking twice is a no-op; only a
// fresh like notifies the author.
func (h *PostHandlers) Like(w http.ResponseWriter, r *http.Request) {
	h.engage(w, r, engagementOp{
		apply:   h.store.Like,
		notify:  notification.TypeLike,
		adjust:  func(resp *EngagementResponse) { resp.Likes++ },
		already: func(p *post.Post, userID string) bool { return p.LikedBy(userID) },
	})
}

// Unlike handles POST /posts/{id}/unlike.
func (h *PostHandlers) Unlike(w http.ResponseWriter, r *http.Request) {
	h.engage(w, r, engagementOp{
		apply:   h.store.Unlike,
		adjust:  func(resp *EngagementResponse) { resp.Likes-- },
		already: func(p *post.Post, userID string) bool { return !p.LikedBy(userID) },
	})
}

// Bookmark handles POST /posts/{id}/bookmark.
func (h *PostHandlers) Bookmark(w http.ResponseWriter, r *http.Request) {
	h.engage(w, r, engagementOp{
		apply:   h.store.Bookmark,
		notify:  notification.TypeBookmark,
		adjust:  func(resp *EngagementResponse) { resp.Bookmarks++ },
		already: func(p *post.Post, userID string) bool { return p.BookmarkedBy(userID) },
	})
}

// Unbookmark handles POST /posts/{id}/unbookmark.
func (h *PostHandlers) Unbookmark(w http.ResponseWriter, r *http.Request) {
	h.engage(w, r, engagementOp{
		apply:   h.store.Unbookmark,
		adjust:  func(resp *EngagementResponse) { resp.Bookmarks-- },
		already: func(p *post.Post, userID string) bool { return !p.BookmarkedBy(userID) },
	})
}

func (h *PostHandlers) engage(w http.ResponseWriter, r *http.Request, op engagementOp) {
	userID := requireUser(w, r)
	if userID == "" {
		return
	}
	postID := r.PathValue("id")

	p, err := h.store.GetByID(r.Context(), postID)
	if err != nil {
		writeStoreError(w, r, err, "Post not found")
		return
	}

	noop := op.already(p, userID)
	if err := op.apply(r.Context(), postID, userID); err != nil {
		writeStoreError(w, r, err, "Post not found")
		return
	}

	resp := EngagementResponse{
		PostID:    p.ID,
		Likes:     p.LikeCount(),
		Bookmarks: p.BookmarkCount(),
		Comments:  p.CommentCount(),
	}
	if !noop {
		op.adjust(&resp)
		if op.notify != "" {
			h.notify(r, p.AuthorID, userID, op.notify, p.ID)
		}
	}

	writeJSON(w, r, http.StatusOK, resp)
}

// AddComment handles POST /posts/{id}/comments - stores the comment body,
// bumps the denormalized counter the ranking engine reads, and notifies
// the post author.
func (h *PostHandlers) AddComment(w http.ResponseWriter, r *http.Request) {
	userID := requireUser(w, r)
	if userID == "" {
		return
	}
	postID := r.PathValue("id")

	var req AddCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorCode(w, r, ErrCodeBadRequest, "Invalid JSON in request body")
		return
	}
	text, err := validate.String(req.Text, validate.StringConstraints{
		MinLength: 1,
		MaxLength: MaxCommentLength,
		TrimSpace: true,
	})
	if err != nil {
		writeErrorCode(w, r, ErrCodeValidation, "Comment text is required and limited to 2000 characters")
		return
	}

	p, err := h.store.GetByID(r.Context(), postID)
	if err != nil {
		writeStoreError(w, r, err, "Post not found")
		return
	}

	c := &comment.Comment{
		PostID:   postID,
		AuthorID: userID,
		Text:     text,
	}
	if err := h.comments.Create(r.Context(), c); err != nil {
		slog.ErrorContext(r.Context(), "failed to store comment", "post_id", postID, "error", err)
		writeErrorCode(w, r, ErrCodeInternal, "Internal server error")
		return
	}

	if err := h.store.AdjustCommentCount(r.Context(), postID, 1); err != nil {
		writeStoreError(w, r, err, "Post not found")
		return
	}

	h.notify(r, p.AuthorID, userID, notification.TypeComment, p.ID)

	h.decorateComments(r.Context(), c)
	writeJSON(w, r, http.StatusCreated, c)
}

// ListComments handles GET /posts/{id}/comments - the comments on a post,
// newest first, with author display fields resolved in one batch.
func (h *PostHandlers) ListComments(w http.ResponseWriter, r *http.Request) {
	postID := r.PathValue("id")
	if postID == "" {
		writeErrorCode(w, r, ErrCodeBadRequest, "Post ID is required")
		return
	}

	if _, err := h.store.GetByID(r.Context(), postID); err != nil {
		writeStoreError(w, r, err, "Post not found")
		return
	}

	comments, err := h.comments.ListByPost(r.Context(), postID, 0)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to list comments", "post_id", postID, "error", err)
		writeErrorCode(w, r, ErrCodeInternal, "Internal server error")
		return
	}

	h.decorateComments(r.Context(), comments...)
	writeJSON(w, r, http.StatusOK, CommentListResponse{
		PostID:   postID,
		Comments: comments,
		Count:    len(comments),
	})
}

// DeleteComment handles DELETE /posts/{id}/comments/{commentID}. The
// comment author and the post author may delete; anyone else is refused.
// The counter decrement mirrors the increment in AddComment.
func (h *PostHandlers) DeleteComment(w http.ResponseWriter, r *http.Request) {
	userID := requireUser(w, r)
	if userID == "" {
		return
	}
	postID := r.PathValue("id")
	commentID := r.PathValue("commentID")

	p, err := h.store.GetByID(r.Context(), postID)
	if err != nil {
		writeStoreError(w, r, err, "Post not found")
		return
	}

	c, err := h.comments.GetByID(r.Context(), commentID)
	if err != nil || c.PostID != postID {
		writeErrorCode(w, r, ErrCodeNotFound, "Comment not found")
		return
	}
	if c.AuthorID != userID && p.AuthorID != userID {
		writeErrorCode(w, r, ErrCodeForbidden, "Only the comment author or the post author can delete a comment")
		return
	}

	if err := h.comments.Delete(r.Context(), postID, commentID); err != nil {
		if errors.Is(err, comment.ErrNotFound) {
			writeErrorCode(w, r, ErrCodeNotFound, "Comment not found")
			return
		}
		slog.ErrorContext(r.Context(), "failed to delete comment", "comment_id", commentID, "error", err)
		writeErrorCode(w, r, ErrCodeInternal, "Internal server error")
		return
	}

	if err := h.store.AdjustCommentCount(r.Context(), postID, -1); err != nil {
		writeStoreError(w, r, err, "Post not found")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// decorateComments fills the author display fields on comments from one
// batch profile resolution. Resolution failure leaves the fields blank.
func (h *PostHandlers) decorateComments(ctx context.Context, comments ...*comment.Comment) {
	if h.resolver == nil || len(comments) == 0 {
		return
	}

	authorIDs := make([]string, 0, len(comments))
	for _, c := range comments {
		authorIDs = append(authorIDs, c.AuthorID)
	}

	profiles, err := h.resolver.ResolveAll(ctx, authorIDs)
	if err != nil {
		slog.WarnContext(ctx, "failed to resolve comment authors", "error", err)
		return
	}
	for _, c := range comments {
		author := profiles[c.AuthorID]
		c.AuthorName = author.Name
		c.AuthorUsername = author.Username
		c.AuthorAvatar = author.AvatarURL
	}
}

// Archive handles POST /posts/{id}/archive - the author takes a post out
// of circulation. Every feed drops it; a direct GET still works.
func (h *PostHandlers) Archive(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, post.StatusInactive)
}

// Restore handles POST /posts/{id}/restore - the author puts an archived
// post back into the feeds.
func (h *PostHandlers) Restore(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, post.StatusActive)
}

func (h *PostHandlers) setStatus(w http.ResponseWriter, r *http.Request, status string) {
	userID := requireUser(w, r)
	if userID == "" {
		return
	}
	postID := r.PathValue("id")

	existing, err := h.store.GetByID(r.Context(), postID)
	if err != nil {
		writeStoreError(w, r, err, "Post not found")
		return
	}
	if existing.AuthorID != userID {
		writeErrorCode(w, r, ErrCodeForbidden, "Only the author can change a post's status")
		return
	}

	if err := h.store.SetStatus(r.Context(), postID, status); err != nil {
		writeStoreError(w, r, err, "Post not found")
		return
	}

	existing.Status = status
	writeJSON(w, r, http.StatusOK, existing)
}
