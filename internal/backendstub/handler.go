package backendstub

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi"
	"golang.org/x/crypto/bcrypt"

	"github.com/frahmantamala/campus-resources/internal/auth"
	"github.com/frahmantamala/campus-resources/internal/transport"
)

// Resources served by the stub, keyed by their /api/<name> segment.
var Resources = []string{
	"equipment",
	"facilities",
	"supplies",
	"maintenance-checklists",
	"borrowing",
	"booking",
	"acquiring",
	"users",
	"account-requests",
	"notifications",
}

// requiredFields are rejected with a 422 detail list when missing on create.
var requiredFields = map[string][]string{
	"equipment":              {"name", "category", "status"},
	"facilities":             {"name", "facility_type", "status"},
	"supplies":               {"name", "category", "status"},
	"maintenance-checklists": {"title", "resource_type", "resource_id", "scheduled_date", "status"},
	"borrowing":              {"equipment_id", "purpose", "start_date", "end_date"},
	"booking":                {"facility_id", "purpose", "booking_date"},
	"acquiring":              {"supply_id", "quantity"},
	"users":                  {"email", "first_name", "last_name"},
}

const defaultPageSize = 10

type Handler struct {
	*transport.BaseHandler
	store  *Store
	issuer *auth.TokenIssuer
}

func NewHandler(base *transport.BaseHandler, store *Store, issuer *auth.TokenIssuer) *Handler {
	return &Handler{BaseHandler: base, store: store, issuer: issuer}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !h.DecodeJSON(w, r, &req) {
		return
	}

	account, ok := h.store.Account(strings.ToLower(strings.TrimSpace(req.Email)))
	if !ok || bcrypt.CompareHashAndPassword(account.PasswordHash, []byte(req.Password)) != nil {
		h.WriteError(w, http.StatusUnauthorized, "Incorrect email or password")
		return
	}

	token, err := h.issuer.Issue(auth.Identity{UserID: account.ID, Email: account.Email, Role: account.Role})
	if err != nil {
		h.WriteError(w, http.StatusInternalServerError, "Could not issue token")
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]string{"access_token": token, "token_type": "bearer"})
}

func (h *Handler) Verify(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	h.WriteJSON(w, http.StatusOK, claims.Identity())
}

// List answers GET /api/<resource>?page=&page_size=&<field>=<value>.
func (h *Handler) List(resource string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		page := positiveInt(query.Get("page"), 1)
		size := positiveInt(query.Get("page_size"), defaultPageSize)

		filters := make(map[string]string)
		for key, values := range query {
			if key == "page" || key == "page_size" || len(values) == 0 || values[0] == "" {
				continue
			}
			filters[key] = values[0]
		}

		rows, total, err := h.store.List(resource, page, size, filters)
		if err != nil {
			h.WriteAppError(w, err)
			return
		}
		totalPages := 0
		if total > 0 {
			totalPages = (total + size - 1) / size
		}
		h.WriteJSON(w, http.StatusOK, map[string]any{
			"data":        rows,
			"total":       total,
			"page":        page,
			"total_pages": totalPages,
		})
	}
}

func (h *Handler) Create(resource string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var doc Doc
		if !h.DecodeJSON(w, r, &doc) {
			return
		}
		if issues := missing(resource, doc, "body"); len(issues) > 0 {
			h.WriteValidation(w, issues)
			return
		}
		created, err := h.store.Create(resource, withDefaults(resource, doc))
		if err != nil {
			h.WriteAppError(w, err)
			return
		}
		h.WriteJSON(w, http.StatusCreated, created)
	}
}

func (h *Handler) Update(resource string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseID(chi.URLParam(r, "id"))
		if err != nil {
			h.WriteAppError(w, err)
			return
		}
		var doc Doc
		if !h.DecodeJSON(w, r, &doc) {
			return
		}
		updated, err := h.store.Update(resource, id, doc)
		if err != nil {
			h.WriteAppError(w, err)
			return
		}
		h.WriteJSON(w, http.StatusOK, updated)
	}
}

type idsRequest struct {
	IDs    []int64 `json:"ids"`
	Status string  `json:"status"`
}

func (h *Handler) BulkDelete(resource string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req idsRequest
		if !h.DecodeJSON(w, r, &req) {
			return
		}
		if len(req.IDs) == 0 {
			h.WriteValidation(w, []transport.FieldIssue{{Loc: []string{"body", "ids"}, Msg: "field required"}})
			return
		}
		deleted, err := h.store.Delete(resource, req.IDs)
		if err != nil {
			h.WriteAppError(w, err)
			return
		}
		h.WriteJSON(w, http.StatusOK, map[string]int{"deleted": deleted})
	}
}

func (h *Handler) BulkUpdateStatus(resource string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req idsRequest
		if !h.DecodeJSON(w, r, &req) {
			return
		}
		var issues []transport.FieldIssue
		if len(req.IDs) == 0 {
			issues = append(issues, transport.FieldIssue{Loc: []string{"body", "ids"}, Msg: "field required"})
		}
		if req.Status == "" {
			issues = append(issues, transport.FieldIssue{Loc: []string{"body", "status"}, Msg: "field required"})
		}
		if len(issues) > 0 {
			h.WriteValidation(w, issues)
			return
		}
		if err := h.store.UpdateMany(resource, req.IDs, Doc{"status": req.Status}); err != nil {
			h.WriteAppError(w, err)
			return
		}
		h.WriteJSON(w, http.StatusOK, map[string]int{"updated": len(req.IDs)})
	}
}

type bulkCreateRequest struct {
	Items []Doc `json:"items"`
}

func (h *Handler) BulkCreate(resource string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req bulkCreateRequest
		if !h.DecodeJSON(w, r, &req) {
			return
		}
		var issues []transport.FieldIssue
		for i, item := range req.Items {
			issues = append(issues, missing(resource, item, "body", "items", strconv.Itoa(i))...)
		}
		if len(issues) > 0 {
			h.WriteValidation(w, issues)
			return
		}
		docs := make([]Doc, len(req.Items))
		for i, item := range req.Items {
			docs[i] = withDefaults(resource, item)
		}
		created, err := h.store.CreateMany(resource, docs)
		if err != nil {
			h.WriteAppError(w, err)
			return
		}
		h.WriteJSON(w, http.StatusCreated, map[string]int{"created": created})
	}
}

func missing(resource string, doc Doc, loc ...string) []transport.FieldIssue {
	var issues []transport.FieldIssue
	for _, field := range requiredFields[resource] {
		v, ok := doc[field]
		if !ok || v == nil || strings.TrimSpace(doc.String(field)) == "" {
			issues = append(issues, transport.FieldIssue{
				Loc: append(append([]string{}, loc...), field),
				Msg: "field required",
			})
		}
	}
	return issues
}

func withDefaults(resource string, doc Doc) Doc {
	switch resource {
	case "borrowing", "booking", "acquiring", "account-requests":
		if doc.String("status") == "" {
			doc["status"] = "Pending"
		}
	case "notifications":
		if doc.String("status") == "" {
			doc["status"] = "pending_confirmation"
		}
	}
	return doc
}

func positiveInt(raw string, fallback int) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
