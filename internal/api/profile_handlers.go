package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/yusefzzz/connectly-spark-82/internal/middleware"
	"github.com/yusefzzz/connectly-spark-82/internal/profile"
	"github.com/yusefzzz/connectly-spark-82/internal/validate"
)

// UpdateProfileRequest represents the request body for updating a profile.
type UpdateProfileRequest struct {
	Username  string  `json:"username"`
	FullName  string  `json:"full_name,omitempty"`
	AvatarURL *string `json:"avatar_url,omitempty"`
	Bio       string  `json:"bio,omitempty"`
}

// ProfileResponse is a profile plus the viewer-dependent follow flag.
type ProfileResponse struct {
	*profile.Profile
	Following bool `json:"following"`
}

// ProfileHandlers holds dependencies for profile HTTP handlers.
type ProfileHandlers struct {
	profiles profile.Repository
	follows  profile.FollowRepository
}

// NewProfileHandlers creates a new ProfileHandlers instance.
func NewProfileHandlers(profiles profile.Repository, follows profile.FollowRepository) *ProfileHandlers {
	return &ProfileHandlers{
		profiles: profiles,
		follows:  follows,
	}
}

// GetProfile handles GET /profiles/{id}.
func (h *ProfileHandlers) GetProfile(w http.ResponseWriter, r *http.Request) {
	profileID := strings.TrimPrefix(r.URL.Path, "/profiles/")
	if profileID == "" || strings.Contains(profileID, "/") {
		fail(w, r, http.StatusBadRequest, ErrCodeBadRequest, "Profile ID is required")
		return
	}

	p, err := h.profiles.GetByID(profileID)
	if err != nil {
		if errors.Is(err, profile.ErrProfileNotFound) {
			fail(w, r, http.StatusNotFound, ErrCodeNotFound, "Profile not found")
			return
		}
		slog.ErrorContext(r.Context(), "failed to get profile", "error", err, "profile_id", profileID)
		fail(w, r, http.StatusInternalServerError, ErrCodeInternal, "Failed to retrieve profile")
		return
	}

	following := false
	if viewerID := middleware.GetUserID(r.Context()); viewerID != "" && viewerID != profileID {
		following, err = h.follows.IsFollowing(viewerID, profileID)
		if err != nil {
			slog.ErrorContext(r.Context(), "failed to check follow edge", "error", err, "profile_id", profileID)
			fail(w, r, http.StatusInternalServerError, ErrCodeInternal, "Failed to retrieve profile")
			return
		}
	}

	writeJSON(w, r.Context(), http.StatusOK, ProfileResponse{Profile: p, Following: following})
}

// UpdateProfile handles PUT /profiles/{id} - updates the caller's own profile.
func (h *ProfileHandlers) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		fail(w, r, http.StatusUnauthorized, ErrCodeAuthFailed, "Authentication required")
		return
	}

	profileID := strings.TrimPrefix(r.URL.Path, "/profiles/")
	if profileID == "" || strings.Contains(profileID, "/") {
		fail(w, r, http.StatusBadRequest, ErrCodeBadRequest, "Profile ID is required")
		return
	}
	if profileID != userID {
		fail(w, r, http.StatusForbidden, ErrCodeForbidden, "Cannot update another user's profile")
		return
	}

	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, r, http.StatusBadRequest, ErrCodeBadRequest, "Invalid JSON in request body")
		return
	}

	username, err := validate.Username(req.Username)
	if err != nil {
		fail(w, r, http.StatusBadRequest, ErrCodeValidation, "username must be 1-50 characters of letters, digits, '_', '-' or '.'")
		return
	}
	fullName, err := validate.FullName(req.FullName)
	if err != nil {
		fail(w, r, http.StatusBadRequest, ErrCodeValidation, "full_name exceeds the maximum length")
		return
	}
	bio, err := validate.Bio(req.Bio)
	if err != nil {
		fail(w, r, http.StatusBadRequest, ErrCodeValidation, "bio exceeds the maximum length")
		return
	}

	p := &profile.Profile{
		ID:       userID,
		Username: username,
		FullName: fullName,
		Bio:      bio,
	}
	if req.AvatarURL != nil && *req.AvatarURL != "" {
		avatar, err := validate.URL(*req.AvatarURL, validate.DefaultURLConstraints)
		if err != nil {
			fail(w, r, http.StatusBadRequest, ErrCodeValidation, "avatar_url is not a valid HTTPS URL")
			return
		}
		p.AvatarURL = &avatar
	}

	if err := h.profiles.Upsert(p); err != nil {
		slog.ErrorContext(r.Context(), "failed to upsert profile", "error", err, "profile_id", userID)
		fail(w, r, http.StatusInternalServerError, ErrCodeInternal, "Failed to update profile")
		return
	}

	writeJSON(w, r.Context(), http.StatusOK, p)
}

// Follow handles PUT /profiles/{id}/follow. Idempotent.
func (h *ProfileHandlers) Follow(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		fail(w, r, http.StatusUnauthorized, ErrCodeAuthFailed, "Authentication required")
		return
	}

	followeeID := pathSegment(r.URL.Path, "/profiles/", "/follow")
	if followeeID == "" {
		fail(w, r, http.StatusBadRequest, ErrCodeBadRequest, "Profile ID is required")
		return
	}

	if _, err := h.profiles.GetByID(followeeID); err != nil {
		if errors.Is(err, profile.ErrProfileNotFound) {
			fail(w, r, http.StatusNotFound, ErrCodeNotFound, "Profile not found")
			return
		}
		slog.ErrorContext(r.Context(), "failed to get profile", "error", err, "profile_id", followeeID)
		fail(w, r, http.StatusInternalServerError, ErrCodeInternal, "Failed to follow profile")
		return
	}

	if err := h.follows.Follow(userID, followeeID); err != nil {
		if errors.Is(err, profile.ErrSelfFollow) {
			fail(w, r, http.StatusBadRequest, ErrCodeSelfFollow, "Cannot follow yourself")
			return
		}
		slog.ErrorContext(r.Context(), "failed to follow profile", "error", err, "profile_id", followeeID)
		fail(w, r, http.StatusInternalServerError, ErrCodeInternal, "Failed to follow profile")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Unfollow handles DELETE /profiles/{id}/follow. Idempotent.
func (h *ProfileHandlers) Unfollow(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		fail(w, r, http.StatusUnauthorized, ErrCodeAuthFailed, "Authentication required")
		return
	}

	followeeID := pathSegment(r.URL.Path, "/profiles/", "/follow")
	if followeeID == "" {
		fail(w, r, http.StatusBadRequest, ErrCodeBadRequest, "Profile ID is required")
		return
	}

	if err := h.follows.Unfollow(userID, followeeID); err != nil {
		slog.ErrorContext(r.Context(), "failed to unfollow profile", "error", err, "profile_id", followeeID)
		fail(w, r, http.StatusInternalServerError, ErrCodeInternal, "Failed to unfollow profile")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
