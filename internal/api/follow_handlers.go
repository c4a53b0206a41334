package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/teknoblog/teknoblog/internal/follow"
	"github.com/teknoblog/teknoblog/internal/notification"
	"github.com/teknoblog/teknoblog/internal/profile"
)

// FollowStatsResponse reports follow counts after a follow graph mutation.
type FollowStatsResponse struct {
	UserID    string `json:"user_id"`
	Followers int    `json:"followers"`
	Following int    `json:"following"`
}

// FollowListResponse lists one side of the follow graph for a user.
type FollowListResponse struct {
	UserID string   `json:"user_id"`
	Users  []string `json:"users"`
	Count  int      `json:"count"`
}

// FollowHandlers holds dependencies for follow graph HTTP handlers.
type FollowHandlers struct {
	repo     follow.Repository
	notifier Notifier
	resolver *profile.Resolver
}

// NewFollowHandlers creates a new FollowHandlers instance. notifier and
// resolver may be nil.
func NewFollowHandlers(repo follow.Repository, notifier Notifier, resolver *profile.Resolver) *FollowHandlers {
	return &FollowHandlers{
		repo:     repo,
		notifier: notifier,
		resolver: resolver,
	}
}

// writeFollowError maps follow graph failures onto the error envelope.
func writeFollowError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, follow.ErrSelfFollow):
		writeErrorCode(w, r, ErrCodeSelfFollow, "You cannot follow yourself")
	case errors.Is(err, follow.ErrAlreadyFollowing):
		writeErrorCode(w, r, ErrCodeAlreadyFollowing, "Already following this user")
	case errors.Is(err, follow.ErrNotFollowing):
		writeErrorCode(w, r, ErrCodeNotFollowing, "Not following this user")
	default:
		slog.ErrorContext(r.Context(), "follow graph operation failed", "error", err)
		writeErrorCode(w, r, ErrCodeInternal, "Internal server error")
	}
}

// stats builds the counts response for a user, treating a count failure
// as internal.
func (h *FollowHandlers) stats(w http.ResponseWriter, r *http.Request, userID string) {
	following, followers, err := h.repo.Counts(r.Context(), userID)
	if err != nil {
		writeFollowError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, FollowStatsResponse{
		UserID:    userID,
		Followers: followers,
		Following: following,
	})
}

// Follow handles POST /users/{id}/follow - the authenticated user starts
// following {id}. A fresh edge notifies the followed user.
func (h *FollowHandlers) Follow(w http.ResponseWriter, r *http.Request) {
	userID := requireUser(w, r)
	if userID == "" {
		return
	}
	targetID := r.PathValue("id")
	if targetID == "" {
		writeErrorCode(w, r, ErrCodeBadRequest, "User ID is required")
		return
	}

	if err := h.repo.Follow(r.Context(), userID, targetID); err != nil {
		writeFollowError(w, r, err)
		return
	}

	if h.notifier != nil {
		n := &notification.Notification{
			RecipientID: targetID,
			ActorID:     userID,
			Type:        notification.TypeFollow,
		}
		if h.resolver != nil {
			if prof, err := h.resolver.Resolve(r.Context(), userID); err == nil {
				n.ActorName = prof.Name
			}
		}
		if err := h.notifier.Notify(r.Context(), n); err != nil {
			slog.WarnContext(r.Context(), "failed to deliver follow notification",
				"followed_id", targetID, "error", err)
		}
	}

	h.stats(w, r, targetID)
}

// Unfollow handles POST /users/{id}/unfollow.
func (h *FollowHandlers) Unfollow(w http.ResponseWriter, r *http.Request) {
	userID := requireUser(w, r)
	if userID == "" {
		return
	}
	targetID := r.PathValue("id")
	if targetID == "" {
		writeErrorCode(w, r, ErrCodeBadRequest, "User ID is required")
		return
	}

	if err := h.repo.Unfollow(r.Context(), userID, targetID); err != nil {
		writeFollowError(w, r, err)
		return
	}

	h.stats(w, r, targetID)
}

// Followers handles GET /users/{id}/followers.
func (h *FollowHandlers) Followers(w http.ResponseWriter, r *http.Request) {
	targetID := r.PathValue("id")
	users, err := h.repo.Followers(r.Context(), targetID)
	if err != nil {
		writeFollowError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, FollowListResponse{
		UserID: targetID,
		Users:  users,
		Count:  len(users),
	})
}

// Following handles GET /users/{id}/following.
func (h *FollowHandlers) Following(w http.ResponseWriter, r *http.Request) {
	targetID := r.PathValue("id")
	users, err := h.repo.Following(r.Context(), targetID)
	if err != nil {
		writeFollowError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, FollowListResponse{
		UserID: targetID,
		Users:  users,
		Count:  len(users),
	})
}
