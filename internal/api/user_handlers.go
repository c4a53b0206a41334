package api

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/teknoblog/teknoblog/internal/profile"
)

// SearchLimit caps a user search result page.
const SearchLimit = 10

// UserSearchResponse lists the profiles matching a search query.
type UserSearchResponse struct {
	Query string            `json:"query"`
	Users []profile.Profile `json:"users"`
	Count int               `json:"count"`
}

// UserHandlers holds dependencies for user HTTP handlers.
type UserHandlers struct {
	profiles profile.Store
}

// NewUserHandlers creates a new UserHandlers instance.
func NewUserHandlers(profiles profile.Store) *UserHandlers {
	return &UserHandlers{profiles: profiles}
}

// Search handles GET /users/search?q= - finds users by display name or
// username, case-insensitively, capped at SearchLimit results.
func (h *UserHandlers) Search(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		writeErrorCode(w, r, ErrCodeValidation, "Search query is required")
		return
	}

	users, err := h.profiles.Search(r.Context(), query, SearchLimit)
	if err != nil {
		slog.ErrorContext(r.Context(), "user search failed", "error", err)
		writeErrorCode(w, r, ErrCodeInternal, "Internal server error")
		return
	}

	writeJSON(w, r, http.StatusOK, UserSearchResponse{
		Query: query,
		Users: users,
		Count: len(users),
	})
}
