package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/abgandar/trackstats/internal/auth"
)

// handleGetMyProfile is an authenticated endpoint that retrieves the profile
// information for the currently logged-in user.
func (s *Server) handleGetMyProfile(w http.ResponseWriter, r *http.Request) {
	// 1. Get the authenticated user's ID from the request context.
	// This ID is safely injected by the `authMiddleware` after validating the JWT
	// and is guaranteed to be present for this handler to be reached.
	userID, err := s.getUserIDFromContext(r)
	if err != nil {
		s.errorJSON(w, err, http.StatusInternalServerError)
		return
	}

	// 2. Fetch the user's full profile from the database using their ID.
	user, err := s.db.GetUserByID(s.db.DB(), userID)
	if err != nil {
		// If sql.ErrNoRows is returned, it indicates a data inconsistency issue
		// (e.g., a valid token exists for a user who has since been deleted).
		if errors.Is(err, sql.ErrNoRows) {
			s.errorJSON(w, errors.New("user not found"), http.StatusNotFound)
			return
		}
		s.errorJSON(w, err, http.StatusInternalServerError)
		return
	}

	// 3. Convert the internal database model to our clean UserResponse DTO.
	// The `PasswordHash` field is never exposed because it's not part of the DTO.
	s.writeJSON(w, http.StatusOK, envelope{"user": toUserResponse(user)})
}

// handleUpdateMyProfile handles updates to username and password.
func (s *Server) handleUpdateMyProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := s.getUserIDFromContext(r)
	if err != nil {
		s.errorJSON(w, err, http.StatusInternalServerError)
		return
	}

	var payload struct {
		Username    string `json:"username"`
		OldPassword string `json:"oldPassword"`
		NewPassword string `json:"newPassword"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		s.errorJSON(w, errors.New("bad request: could not decode JSON"), http.StatusBadRequest)
		return
	}

	// No changes submitted
	if payload.Username == "" && payload.NewPassword == "" {
		s.errorJSON(w, errors.New("no changes provided"), http.StatusBadRequest)
		return
	}

	user, err := s.db.GetUserByID(s.db.DB(), userID)
	if err != nil {
		s.errorJSON(w, errors.New("user not found"), http.StatusNotFound)
		return
	}

	var newPasswordHash string
	if payload.NewPassword != "" {
		// User must provide the old password to change it.
		if !user.PasswordHash.Valid {
			s.errorJSON(w, errors.New("cannot change password for OAuth user"), http.StatusBadRequest)
			return
		}
		if payload.OldPassword == "" {
			s.errorJSON(w, errors.New("old password is required to set a new one"), http.StatusBadRequest)
			return
		}
		if !auth.CheckPasswordHash(payload.OldPassword, user.PasswordHash.String) {
			s.errorJSON(w, errors.New("incorrect old password"), http.StatusUnauthorized)
			return
		}
		if len(payload.NewPassword) < 8 {
			s.errorJSON(w, errors.New("new password must be at least 8 characters"), http.StatusBadRequest)
			return
		}
		hashedPassword, err := auth.HashPassword(payload.NewPassword)
		if err != nil {
			s.errorJSON(w, errors.New("failed to hash new password"), http.StatusInternalServerError)
			return
		}
		newPasswordHash = hashedPassword
	}

	err = s.db.WriteTx(func(tx *sql.Tx) error {
		return s.db.UpdateUser(tx, userID, payload.Username, newPasswordHash)
	})
	if err != nil {
		s.errorJSON(w, errors.New("failed to update profile"), http.StatusInternalServerError)
		return
	}

	s.writeJSON(w, http.StatusOK, envelope{"message": "Profile updated successfully"})
}

// handleDeleteMyProfile handles deleting a user's own account.
func (s *Server) handleDeleteMyProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := s.getUserIDFromContext(r)
	if err != nil {
		s.errorJSON(w, err, http.StatusInternalServerError)
		return
	}

	// The ON DELETE CASCADE on the tracks table removes the user's track
	// records along with the account. The GPX files on disk are left for a
	// cleanup job; they are not reachable without the database rows.
	err = s.db.WriteTx(func(tx *sql.Tx) error {
		return s.db.DeleteUser(tx, userID)
	})
	if err != nil {
		s.errorJSON(w, errors.New("failed to delete profile"), http.StatusInternalServerError)
		return
	}

	s.writeJSON(w, http.StatusOK, envelope{"message": "Profile deleted successfully"})
}
