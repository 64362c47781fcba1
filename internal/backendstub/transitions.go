package backendstub

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi"

	"github.com/frahmantamala/campus-resources/internal/transport"
)

type markReturnedRequest struct {
	BorrowingIDs []int64 `json:"borrowing_ids"`
	ReceiverName string  `json:"receiver_name"`
}

func (h *Handler) MarkReturned(w http.ResponseWriter, r *http.Request) {
	var req markReturnedRequest
	if !h.DecodeJSON(w, r, &req) {
		return
	}
	var issues []transport.FieldIssue
	if len(req.BorrowingIDs) == 0 {
		issues = append(issues, transport.FieldIssue{Loc: []string{"body", "borrowing_ids"}, Msg: "field required"})
	}
	if strings.TrimSpace(req.ReceiverName) == "" {
		issues = append(issues, transport.FieldIssue{Loc: []string{"body", "receiver_name"}, Msg: "field required"})
	}
	if len(issues) > 0 {
		h.WriteValidation(w, issues)
		return
	}

	err := h.store.UpdateMany("borrowing", req.BorrowingIDs, Doc{
		"status":           "Returned",
		"receiver_name":    req.ReceiverName,
		"return_requested": false,
		"returned_at":      h.store.now().UTC(),
	})
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]int{"updated": len(req.BorrowingIDs)})
}

// singleID reads {"<field>": id} transition bodies.
func (h *Handler) singleID(w http.ResponseWriter, r *http.Request, field string) (int64, bool) {
	var body map[string]int64
	if !h.DecodeJSON(w, r, &body) {
		return 0, false
	}
	id := body[field]
	if id < 1 {
		h.WriteValidation(w, []transport.FieldIssue{{Loc: []string{"body", field}, Msg: "field required"}})
		return 0, false
	}
	return id, true
}

func (h *Handler) ConfirmReturn(w http.ResponseWriter, r *http.Request) {
	id, ok := h.singleID(w, r, "borrowing_id")
	if !ok {
		return
	}
	err := h.store.UpdateMany("borrowing", []int64{id}, Doc{
		"status":           "Returned",
		"return_requested": false,
		"returned_at":      h.store.now().UTC(),
	})
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]int64{"borrowing_id": id})
}

func (h *Handler) RevertReturn(w http.ResponseWriter, r *http.Request) {
	id, ok := h.singleID(w, r, "borrowing_id")
	if !ok {
		return
	}
	if err := h.store.UpdateMany("borrowing", []int64{id}, Doc{"return_requested": false}); err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]int64{"borrowing_id": id})
}

func (h *Handler) MarkDone(kind string) http.HandlerFunc {
	field := kind + "_ids"
	return func(w http.ResponseWriter, r *http.Request) {
		var body map[string][]int64
		if !h.DecodeJSON(w, r, &body) {
			return
		}
		ids := body[field]
		if len(ids) == 0 {
			h.WriteValidation(w, []transport.FieldIssue{{Loc: []string{"body", field}, Msg: "field required"}})
			return
		}
		if err := h.store.UpdateMany(kind, ids, Doc{"status": "Completed"}); err != nil {
			h.WriteAppError(w, err)
			return
		}
		h.WriteJSON(w, http.StatusOK, map[string]int{"updated": len(ids)})
	}
}

func (h *Handler) ConfirmDone(kind string) http.HandlerFunc {
	field := kind + "_id"
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := h.singleID(w, r, field)
		if !ok {
			return
		}
		if err := h.store.UpdateMany(kind, []int64{id}, Doc{"status": "Completed"}); err != nil {
			h.WriteAppError(w, err)
			return
		}
		h.WriteJSON(w, http.StatusOK, map[string]int64{field: id})
	}
}

var systemRoles = map[string]bool{"admin": true, "faculty": true, "staff": true, "student": true}

type approvalRequest struct {
	Approvals []struct {
		ID              int64  `json:"id"`
		ApprovedAccRole string `json:"approved_acc_role"`
	} `json:"approvals"`
}

// ApproveAccounts approves every listed sign-up and creates its user.
func (h *Handler) ApproveAccounts(w http.ResponseWriter, r *http.Request) {
	var req approvalRequest
	if !h.DecodeJSON(w, r, &req) {
		return
	}
	if len(req.Approvals) == 0 {
		h.WriteValidation(w, []transport.FieldIssue{{Loc: []string{"body", "approvals"}, Msg: "field required"}})
		return
	}
	for _, a := range req.Approvals {
		if !systemRoles[a.ApprovedAccRole] {
			h.WriteError(w, http.StatusBadRequest, "Invalid role: "+a.ApprovedAccRole)
			return
		}
	}

	for _, a := range req.Approvals {
		pending, err := h.store.Get("account-requests", a.ID)
		if err != nil {
			h.WriteAppError(w, err)
			return
		}
		if _, err := h.store.Update("account-requests", a.ID, Doc{"status": "Approved", "approved_acc_role": a.ApprovedAccRole}); err != nil {
			h.WriteAppError(w, err)
			return
		}
		_, err = h.store.Create("users", Doc{
			"email":             pending["email"],
			"first_name":        pending["first_name"],
			"last_name":         pending["last_name"],
			"department":        pending["department"],
			"requested_role":    pending["requested_role"],
			"approved_acc_role": a.ApprovedAccRole,
			"status":            "Active",
		})
		if err != nil {
			h.WriteAppError(w, err)
			return
		}
	}
	h.WriteJSON(w, http.StatusOK, map[string]int{"approved": len(req.Approvals)})
}

func (h *Handler) RejectAccounts(w http.ResponseWriter, r *http.Request) {
	var req idsRequest
	if !h.DecodeJSON(w, r, &req) {
		return
	}
	if len(req.IDs) == 0 {
		h.WriteValidation(w, []transport.FieldIssue{{Loc: []string{"body", "ids"}, Msg: "field required"}})
		return
	}
	if err := h.store.UpdateMany("account-requests", req.IDs, Doc{"status": "Rejected"}); err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]int{"rejected": len(req.IDs)})
}

var notificationOutcomes = map[string]bool{"confirmed": true, "dismissed": true, "rejected": true}

// NotificationStatus moves a pending notification once; resolved ones answer 409.
func (h *Handler) NotificationStatus(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	var body struct {
		Status string `json:"status"`
	}
	if !h.DecodeJSON(w, r, &body) {
		return
	}
	if !notificationOutcomes[body.Status] {
		h.WriteValidation(w, []transport.FieldIssue{{Loc: []string{"body", "status"}, Msg: "must be confirmed, dismissed or rejected"}})
		return
	}

	current, err := h.store.Get("notifications", id)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	if current.String("status") != "pending_confirmation" {
		h.WriteError(w, http.StatusConflict, "Notification already resolved")
		return
	}
	updated, err := h.store.Update("notifications", id, Doc{"status": body.Status})
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, updated)
}
