package httpapi

import (
	"net/http"
	"strings"

	"dongmun.org/internal/audit"
	"dongmun.org/internal/auth"
	"dongmun.org/internal/member"
)

type updateProfileRequest struct {
	Name  *string `json:"name"`
	Phone *string `json:"phone"`
}

type changeRoleRequest struct {
	Role string `json:"role"`
}

func (a *API) handleMembersCollection(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	items, err := a.members.List(r.Context())
	if err != nil {
		handleMemberError(w, r, err)
		return
	}
	if items == nil {
		items = []*member.Member{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (a *API) handleMemberSelf(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.MemberIDFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "authentication required")
		return
	}

	switch r.Method {
	case http.MethodGet:
		m, err := a.members.Get(r.Context(), id)
		if err != nil {
			handleMemberError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, m)
	case http.MethodPatch:
		var req updateProfileRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		m, err := a.members.UpdateProfile(r.Context(), id, member.ProfileUpdate{
			Name:  req.Name,
			Phone: req.Phone,
		})
		if err != nil {
			handleMemberError(w, r, err)
			return
		}
		_ = audit.LogEvent(r.Context(), "member.profile.update", map[string]any{
			"member_id": m.ID,
		})
		writeJSON(w, http.StatusOK, m)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPatch)
	}
}

func (a *API) handleMemberResource(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/v1/members/")
	if path == "" {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}

	if id, found := strings.CutSuffix(path, "/role"); found {
		if id == "" {
			writeError(w, r, http.StatusNotFound, "resource not found")
			return
		}
		if r.Method != http.MethodPatch {
			methodNotAllowed(w, r, http.MethodPatch)
			return
		}
		a.changeRole(w, r, id)
		return
	}

	if id, found := strings.CutSuffix(path, "/withdraw"); found {
		if id == "" {
			writeError(w, r, http.StatusNotFound, "resource not found")
			return
		}
		if r.Method != http.MethodPost {
			methodNotAllowed(w, r, http.MethodPost)
			return
		}
		a.withdrawMember(w, r, id)
		return
	}

	if strings.Contains(path, "/") {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		m, err := a.members.Get(r.Context(), path)
		if err != nil {
			handleMemberError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, m)
	default:
		methodNotAllowed(w, r, http.MethodGet)
	}
}

func (a *API) changeRole(w http.ResponseWriter, r *http.Request, id string) {
	actor, ok := a.requireCapability(w, r, member.CapManageRoles)
	if !ok {
		return
	}

	var req changeRoleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	newRole, ok := member.ParseRole(req.Role)
	if !ok {
		writeError(w, r, http.StatusBadRequest, "unsupported role")
		return
	}

	m, err := a.members.ChangeRole(r.Context(), actor.Role, id, newRole)
	if err != nil {
		handleMemberError(w, r, err)
		return
	}

	_ = audit.LogEvent(r.Context(), "member.role.change", map[string]any{
		"member_id": m.ID,
		"new_role":  string(m.Role),
	})

	writeJSON(w, http.StatusOK, m)
}

// withdrawMember soft-deletes. Members withdraw themselves; holders of the
// manage-roles capability may withdraw anyone.
func (a *API) withdrawMember(w http.ResponseWriter, r *http.Request, id string) {
	actorID, ok := auth.MemberIDFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "authentication required")
		return
	}
	if actorID != id {
		if _, ok := a.requireCapability(w, r, member.CapManageRoles); !ok {
			return
		}
	}

	if err := a.members.Withdraw(r.Context(), id); err != nil {
		handleMemberError(w, r, err)
		return
	}

	_ = audit.LogEvent(r.Context(), "member.withdraw", map[string]any{
		"member_id": id,
	})

	writeJSON(w, http.StatusOK, map[string]any{"status": "withdrawn", "id": id})
}
