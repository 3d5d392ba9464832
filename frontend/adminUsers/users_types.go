package adminusers

import "usersadmin/models"

// UserRecord is a user as listed by the backend. Passwords are never listed.
type UserRecord struct {
	ID         string `json:"id"`
	Username   string `json:"username"`
	FullName   string `json:"full_name"`
	StatusID   string `json:"status_id"`
	StatusName string `json:"status_name"`
	VersionHex string `json:"version_hex"`
}

// StatusOption feeds the status picker.
type StatusOption struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

type AddPayload struct {
	Username string `json:"username" validate:"required"`
	FullName string `json:"full_name" validate:"required"`
	Password string `json:"password" validate:"required"`
	StatusID string `json:"status_id" validate:"required"`
}

// UpdatePayload always carries Password and VersionHex. An empty password
// leaves the stored one unchanged.
type UpdatePayload struct {
	UserID     string `json:"user_id"`
	Username   string `json:"username" validate:"required"`
	FullName   string `json:"full_name" validate:"required"`
	Password   string `json:"password"`
	StatusID   string `json:"status_id" validate:"required"`
	VersionHex string `json:"version_hex"`
}

type DeletePayload struct {
	UserID     string `json:"user_id" validate:"required"`
	VersionHex string `json:"version_hex"`
}

// Right is one menu row of a user's rights matrix. RightID is zero for a menu
// the user has no saved row for yet.
type Right struct {
	RightID   int    `json:"rightid"`
	MenuID    int    `json:"menuid" validate:"required"`
	MenuName  string `json:"menuname,omitempty"`
	CanView   bool   `json:"canview"`
	CanCreate bool   `json:"cancreate"`
	CanEdit   bool   `json:"canedit"`
	CanDelete bool   `json:"candelete"`
}

// RightsPayload replaces the whole matrix of one user.
type RightsPayload struct {
	UserID string  `json:"user_id" validate:"required"`
	Rights []Right `json:"rights" validate:"dive"`
}

// ServerResult is the only response shape the backend returns for mutations.
type ServerResult struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

const StatusSuccess = "success"

func (r ServerResult) Succeeded() bool {
	return r.Status == StatusSuccess
}

// serverReply is the wire form of a mutation reply. Most replies carry
// "status"; rejections raised before the mutation runs (401, 400, 500) and
// the rights save carry a boolean "success" instead.
type serverReply struct {
	Status  string `json:"status"`
	Success *bool  `json:"success"`
	Message string `json:"message"`
}

func (r *serverReply) result() (ServerResult, bool) {
	switch {
	case r == nil:
		return ServerResult{}, false
	case r.Status != "":
		return ServerResult{Status: r.Status, Message: r.Message}, true
	case r.Success != nil && *r.Success:
		return ServerResult{Status: StatusSuccess, Message: r.Message}, true
	case r.Success != nil:
		return ServerResult{Status: "error", Message: r.Message}, true
	default:
		return ServerResult{}, false
	}
}

// EditFormFor pre-fills an update from the record on screen. The password is
// always left blank.
func EditFormFor(rec UserRecord) UpdatePayload {
	return UpdatePayload{
		UserID:     rec.ID,
		Username:   rec.Username,
		FullName:   rec.FullName,
		StatusID:   rec.StatusID,
		VersionHex: rec.VersionHex,
	}
}

type listResponse struct {
	Users []UserRecord `json:"users"`
}

type rightsResponse struct {
	Rights []Right `json:"rights"`
}

type lookupResponse struct {
	Results []StatusOption `json:"results"`
}

func recordFromSnapshot(s models.UserSnapshot) UserRecord {
	return UserRecord{
		ID:         s.ID,
		Username:   s.Username,
		FullName:   s.FullName,
		StatusID:   s.StatusID,
		StatusName: s.StatusName,
		VersionHex: s.VersionHex,
	}
}
