package handlers

import (
	"net/http"

	"kendala-hub/core/store"
	"kendala-hub/core/utils"
)

type ReferenceHandler struct {
	reference store.ReferenceStore
	logger    *utils.Logger
}

func NewReferenceHandler(rs store.ReferenceStore, logger *utils.Logger) *ReferenceHandler {
	return &ReferenceHandler{reference: rs, logger: logger}
}

func (h *ReferenceHandler) List(w http.ResponseWriter, r *http.Request) {
	refs, err := h.reference.List(r.Context())
	if err != nil {
		if h.logger != nil {
			h.logger.Errorf("list reference data: %v", err)
		}
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	if refs == nil {
		refs = []store.Reference{}
	}
	writeJSON(w, http.StatusOK, refs)
}
