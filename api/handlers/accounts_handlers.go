package handlers

import (
	"net/http"

	"kendala-hub/core/store"
	"kendala-hub/core/utils"
)

type AccountsHandler struct {
	users  store.UsersStore
	logger *utils.Logger
}

func NewAccountsHandler(users store.UsersStore, logger *utils.Logger) *AccountsHandler {
	return &AccountsHandler{users: users, logger: logger}
}

// List returns the operator accounts kendala can be assigned to.
func (h *AccountsHandler) List(w http.ResponseWriter, r *http.Request) {
	role := r.URL.Query().Get("role")
	if role == "" {
		role = store.RoleOperator
	}
	users, err := h.users.List(r.Context(), role)
	if err != nil {
		if h.logger != nil {
			h.logger.Errorf("list users role=%s: %v", role, err)
		}
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	views := make([]userView, 0, len(users))
	for _, u := range users {
		if !u.Active {
			continue
		}
		views = append(views, userView{ID: u.ID, Username: u.Username, Role: u.Role})
	}
	writeJSON(w, http.StatusOK, views)
}
