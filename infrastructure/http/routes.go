package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const (
	msgCreated        = "User created!"
	msgUpdated        = "User updated!"
	msgDeleted        = "User deleted!"
	msgFieldsRequired = "All fields are required!"
	msgInsertFailed   = "Insert failed or user already exists."
	msgUpdateFailed   = "Update failed (Concurrency or DB error)."
	msgDeleteFailed   = "Delete failed."
	msgUserIDMissing  = "User ID missing"
	msgRightsSaved    = "User rights updated successfully!"
	msgRightsInvalid  = "Invalid data format."
	msgMatrixFailed   = "Failed to load matrix"
)

type mutationResult struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	NewID   string `json:"new_id,omitempty"`
}

type addUserRequest struct {
	Username string `json:"username"`
	FullName string `json:"full_name"`
	Password string `json:"password"`
	StatusID string `json:"status_id"`
}

type updateUserRequest struct {
	UserID     string `json:"user_id"`
	Username   string `json:"username"`
	FullName   string `json:"full_name"`
	Password   string `json:"password"`
	StatusID   string `json:"status_id"`
	VersionHex string `json:"version_hex"`
}

// rightsResult is the reply shape of the rights endpoints, which report a
// boolean instead of a status string.
type rightsResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type saveRightsRequest struct {
	UserID string      `json:"user_id"`
	Rights *[]RightRow `json:"rights"`
}

type deleteUserRequest struct {
	UserID     string `json:"user_id"`
	VersionHex string `json:"version_hex"`
}

// RegisterUserRoutes registers the users list and mutation endpoints.
func (s *Server) RegisterUserRoutes(r chi.Router) {
	r.Get("/users/user_list/", s.listUsersHandler)
	r.Post("/users/add/", s.addUserHandler)
	r.Post("/users/update/", s.updateUserHandler)
	r.Post("/users/delete/", s.deleteUserHandler)
	r.Get("/users/get-user-rights/", s.getRightsHandler)
	r.Post("/users/save-user-rights/", s.saveRightsHandler)
}

// RegisterLookupRoutes registers the picker lookup endpoint.
func (s *Server) RegisterLookupRoutes(r chi.Router) {
	r.Get("/common/lookup/", func(w http.ResponseWriter, r *http.Request) {
		results := s.Users.Lookup(r.URL.Query().Get("type"), r.URL.Query().Get("q"))
		writeJSON(w, http.StatusOK, map[string]any{"results": results})
	})
}

func (s *Server) listUsersHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"users": s.Users.List()})
}

func (s *Server) addUserHandler(w http.ResponseWriter, r *http.Request) {
	var req addUserRequest
	if !decodeBody(w, r, &req) {
		return
	}
	row, err := s.Users.Create(req.Username, req.FullName, req.Password, req.StatusID)
	switch {
	case errors.Is(err, ErrFieldsRequired):
		writeJSON(w, http.StatusOK, mutationResult{Status: "error", Message: msgFieldsRequired})
	case err != nil:
		s.logFailure(r, "add", err)
		writeJSON(w, http.StatusOK, mutationResult{Status: "error", Message: msgInsertFailed})
	default:
		writeJSON(w, http.StatusOK, mutationResult{Status: "success", Message: msgCreated, NewID: row.ID})
	}
}

func (s *Server) updateUserHandler(w http.ResponseWriter, r *http.Request) {
	var req updateUserRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if _, err := s.Users.Update(req.UserID, req.Username, req.FullName, req.Password, req.StatusID, req.VersionHex); err != nil {
		s.logFailure(r, "update", err)
		writeJSON(w, http.StatusOK, mutationResult{Status: "error", Message: msgUpdateFailed})
		return
	}
	writeJSON(w, http.StatusOK, mutationResult{Status: "success", Message: msgUpdated})
}

func (s *Server) deleteUserHandler(w http.ResponseWriter, r *http.Request) {
	var req deleteUserRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := s.Users.Delete(req.UserID, req.VersionHex); err != nil {
		s.logFailure(r, "delete", err)
		writeJSON(w, http.StatusOK, mutationResult{Status: "error", Message: msgDeleteFailed})
		return
	}
	writeJSON(w, http.StatusOK, mutationResult{Status: "success", Message: msgDeleted})
}

func (s *Server) getRightsHandler(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		writeJSON(w, http.StatusBadRequest, rightsResult{Message: msgUserIDMissing})
		return
	}
	rows, err := s.Users.Rights(userID)
	if err != nil {
		s.logFailure(r, "get rights", err)
		writeJSON(w, http.StatusInternalServerError, rightsResult{Message: msgMatrixFailed})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"rights": rows})
}

func (s *Server) saveRightsHandler(w http.ResponseWriter, r *http.Request) {
	var req saveRightsRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.UserID == "" {
		writeJSON(w, http.StatusBadRequest, rightsResult{Message: msgUserIDMissing})
		return
	}
	if req.Rights == nil {
		writeJSON(w, http.StatusOK, rightsResult{Message: msgRightsInvalid})
		return
	}
	if err := s.Users.SaveRights(req.UserID, *req.Rights); err != nil {
		s.logFailure(r, "save rights", err)
		writeJSON(w, http.StatusOK, rightsResult{Message: "BLL Save Error: " + err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, rightsResult{Success: true, Message: msgRightsSaved})
}

func (s *Server) logFailure(r *http.Request, op string, err error) {
	s.logger.Warn("stub backend: mutation rejected",
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.Any("err", err))
}

// decodeBody answers malformed bodies the way the backend does: HTTP 500 with
// a success=false JSON body.
func decodeBody(w http.ResponseWriter, r *http.Request, target any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(target); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"success": false, "message": err.Error()})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
