package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"kendala-hub/config"
	"kendala-hub/core/evidence"
	"kendala-hub/core/kendala"
	"kendala-hub/core/rbac"
	"kendala-hub/core/sheet"
	"kendala-hub/core/store"
	"kendala-hub/core/utils"
)

type KendalaHandler struct {
	cfg       *config.AppConfig
	kendala   store.KendalaStore
	reference store.ReferenceStore
	users     store.UsersStore
	evidence  evidence.Store
	engine    *kendala.Engine
	policy    *rbac.Policy
	audits    store.AuditStore
	logger    *utils.Logger
}

func NewKendalaHandler(cfg *config.AppConfig, ks store.KendalaStore, rs store.ReferenceStore, us store.UsersStore, ev evidence.Store, engine *kendala.Engine, policy *rbac.Policy, audits store.AuditStore, logger *utils.Logger) *KendalaHandler {
	return &KendalaHandler{
		cfg:       cfg,
		kendala:   ks,
		reference: rs,
		users:     us,
		evidence:  ev,
		engine:    engine,
		policy:    policy,
		audits:    audits,
		logger:    logger,
	}
}

// kendalaView is the list/detail DTO: the persisted record plus the state,
// label and deadline text derived at response time.
type kendalaView struct {
	kendala.Kendala
	EffectiveState kendala.State `json:"effective_state"`
	StateLabel     string        `json:"state_label"`
	DeadlineText   string        `json:"deadline_text"`
}

func (h *KendalaHandler) view(k kendala.Kendala, now time.Time) kendalaView {
	state, text := h.engine.DeriveState(&k, now)
	return kendalaView{
		Kendala:        k,
		EffectiveState: state,
		StateLabel:     state.Label(),
		DeadlineText:   text,
	}
}

// visibleItems loads the collection the session is allowed to see: everyone
// with the manage permission sees all kendala, everyone else only their own.
func (h *KendalaHandler) visibleItems(r *http.Request, sess *store.SessionRecord) ([]kendala.Kendala, error) {
	filter := store.KendalaFilter{}
	if !h.policy.AllowedRole(sess.Role, rbac.PermKendalaManage) {
		filter.UserID = sess.UserID
	}
	return h.kendala.List(r.Context(), filter)
}

func (h *KendalaHandler) List(w http.ResponseWriter, r *http.Request) {
	sess := sessionOrFail(w, r.Context())
	if sess == nil {
		return
	}
	items, err := h.visibleItems(r, sess)
	if err != nil {
		if h.logger != nil {
			h.logger.Errorf("list kendala: %v", err)
		}
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	filter, err := parseListFilter(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	now := utils.NowUTC()
	items = h.engine.FilterAndSort(items, filter, now)
	views := make([]kendalaView, 0, len(items))
	for _, k := range items {
		views = append(views, h.view(k, now))
	}
	writeJSON(w, http.StatusOK, views)
}

func parseListFilter(r *http.Request) (kendala.Filter, error) {
	q := r.URL.Query()
	filter := kendala.Filter{
		Search: q.Get("search"),
		Status: q.Get("status"),
		Sort:   kendala.SortKey(q.Get("sort")),
	}
	if month, present, ok := queryInt(r, "month"); present {
		if !ok || month < 0 || month > 11 {
			return filter, errors.New("invalid month")
		}
		filter.Month = &month
	}
	return filter, nil
}

type createKendalaRequest struct {
	TID         string `json:"tid"`
	Title       string `json:"title"`
	Description string `json:"description"`
	UserID      int64  `json:"user_id"`
}

func (h *KendalaHandler) Create(w http.ResponseWriter, r *http.Request) {
	sess := sessionOrFail(w, r.Context())
	if sess == nil {
		return
	}
	var req createKendalaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	req.TID = strings.TrimSpace(req.TID)
	req.Title = strings.TrimSpace(req.Title)
	if req.TID == "" || req.Title == "" {
		http.Error(w, "tid dan title wajib diisi", http.StatusBadRequest)
		return
	}

	ref, err := h.reference.FindByTID(r.Context(), req.TID)
	if errors.Is(err, store.ErrNotFound) {
		http.Error(w, "TID tidak ditemukan", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	operator, err := h.resolveOperator(r, req.UserID, ref.Pengelola)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	k := &kendala.Kendala{
		Title:       req.Title,
		Description: req.Description,
		CreatedAt:   utils.NowUTC(),
		Terminal:    ref.TerminalRef(),
		OperatorID:  operator.ID,
		Operator:    operator.Username,
	}
	if _, err := h.kendala.Create(r.Context(), k); err != nil {
		if h.logger != nil {
			h.logger.Errorf("create kendala tid=%s: %v", req.TID, err)
		}
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	_ = h.audits.Append(r.Context(), sess.Username, "kendala_create",
		fmt.Sprintf("id=%d tid=%s", k.ID, req.TID))
	writeJSON(w, http.StatusCreated, h.view(*k, utils.NowUTC()))
}

// resolveOperator picks the assignee: an explicit user id wins, otherwise the
// terminal's pengelola is matched against operator usernames with whitespace
// and case ignored.
func (h *KendalaHandler) resolveOperator(r *http.Request, userID int64, pengelola string) (*store.User, error) {
	if userID > 0 {
		u, err := h.users.Get(r.Context(), userID)
		if err != nil || u == nil || !u.Active {
			return nil, errors.New("user tidak ditemukan")
		}
		return u, nil
	}
	operators, err := h.users.List(r.Context(), store.RoleOperator)
	if err != nil {
		return nil, errors.New("user tidak ditemukan")
	}
	want := normalizeName(pengelola)
	for i := range operators {
		if operators[i].Active && normalizeName(operators[i].Username) == want {
			return &operators[i], nil
		}
	}
	return nil, fmt.Errorf("pengelola %q tidak memiliki akun operator", pengelola)
}

func normalizeName(s string) string {
	return strings.ToUpper(strings.Join(strings.Fields(s), ""))
}

func (h *KendalaHandler) Delete(w http.ResponseWriter, r *http.Request) {
	sess := sessionOrFail(w, r.Context())
	if sess == nil {
		return
	}
	id, ok := pathID(r, "id")
	if !ok {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}
	if err := h.kendala.Delete(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, "kendala tidak ditemukan", http.StatusNotFound)
			return
		}
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	_ = h.audits.Append(r.Context(), sess.Username, "kendala_delete", fmt.Sprintf("id=%d", id))
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *KendalaHandler) Submit(w http.ResponseWriter, r *http.Request) {
	sess := sessionOrFail(w, r.Context())
	if sess == nil {
		return
	}
	id, ok := pathID(r, "id")
	if !ok {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	k, err := h.kendala.Get(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		http.Error(w, "kendala tidak ditemukan", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	if k.OperatorID != sess.UserID {
		http.Error(w, "kendala ini bukan milik anda", http.StatusForbidden)
		return
	}
	if k.CompletedAt != nil {
		http.Error(w, "kendala sudah diselesaikan", http.StatusConflict)
		return
	}

	maxBytes := h.cfg.Evidence.UploadMaxBytes
	if maxBytes <= 0 {
		maxBytes = 10 << 20
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		http.Error(w, "file bukti terlalu besar atau tidak valid", http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file bukti wajib dilampirkan", http.StatusBadRequest)
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, "gagal membaca file bukti", http.StatusBadRequest)
		return
	}

	url, err := h.evidence.Save(r.Context(), header.Filename, data)
	if err != nil {
		if h.logger != nil {
			h.logger.Errorf("save evidence kendala=%d: %v", id, err)
		}
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	now := utils.NowUTC()
	deadline := h.engine.Deadline(k)
	state := kendala.StateCompleted
	overdueDuration := ""
	if now.After(deadline) {
		state = kendala.StateCompletedLate
		overdueDuration = kendala.OverdueBy(now.Sub(deadline))
	}
	if err := h.kendala.SubmitEvidence(r.Context(), id, now, url, state, overdueDuration); err != nil {
		if errors.Is(err, store.ErrConflict) {
			http.Error(w, "kendala sudah diselesaikan", http.StatusConflict)
			return
		}
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	_ = h.audits.Append(r.Context(), sess.Username, "kendala_submit",
		fmt.Sprintf("id=%d state=%s", id, state))
	updated, err := h.kendala.Get(r.Context(), id)
	if err != nil {
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, h.view(*updated, now))
}

func (h *KendalaHandler) Stats(w http.ResponseWriter, r *http.Request) {
	sess := sessionOrFail(w, r.Context())
	if sess == nil {
		return
	}
	items, err := h.visibleItems(r, sess)
	if err != nil {
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, h.engine.CountStats(items, utils.NowUTC()))
}

type recurringDetail struct {
	kendala.RecurrenceGroup
	Histogram []kendala.DailyCount `json:"histogram"`
}

// Recurring lists terminals hit repeatedly within one calendar month. With
// tid, year and month query parameters it returns the single matching group
// plus its per-day histogram.
func (h *KendalaHandler) Recurring(w http.ResponseWriter, r *http.Request) {
	sess := sessionOrFail(w, r.Context())
	if sess == nil {
		return
	}
	items, err := h.visibleItems(r, sess)
	if err != nil {
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	threshold := h.cfg.Kendala.RecurringThreshold
	groups := h.engine.FindRecurring(items, threshold)

	tid := strings.TrimSpace(r.URL.Query().Get("tid"))
	if tid == "" {
		writeJSON(w, http.StatusOK, groups)
		return
	}
	year, _, yearOK := queryInt(r, "year")
	month, _, monthOK := queryInt(r, "month")
	if !yearOK || !monthOK || month < 1 || month > 12 {
		http.Error(w, "invalid year/month", http.StatusBadRequest)
		return
	}
	want := kendala.GroupKey{TID: tid, Year: year, Month: time.Month(month)}
	for _, g := range groups {
		if g.Key == want {
			writeJSON(w, http.StatusOK, recurringDetail{
				RecurrenceGroup: g,
				Histogram:       h.engine.Histogram(g),
			})
			return
		}
	}
	http.Error(w, "grup tidak ditemukan", http.StatusNotFound)
}

func (h *KendalaHandler) Export(w http.ResponseWriter, r *http.Request) {
	sess := sessionOrFail(w, r.Context())
	if sess == nil {
		return
	}
	items, err := h.visibleItems(r, sess)
	if err != nil {
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	filter, err := parseListFilter(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	now := utils.NowUTC()
	items = h.engine.FilterAndSort(items, filter, now)
	rows := h.engine.ExportRows(items, now)

	var buf bytes.Buffer
	if err := sheet.WriteKendala(&buf, rows); err != nil {
		if h.logger != nil {
			h.logger.Errorf("write export: %v", err)
		}
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	filename := h.cfg.Export.Filename
	if filename == "" {
		filename = "kendala_export.xlsx"
	}
	_ = h.audits.Append(r.Context(), sess.Username, "kendala_export",
		fmt.Sprintf("rows=%d", len(rows)))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	_, _ = w.Write(buf.Bytes())
}

type bulkImportResult struct {
	Created int      `json:"created"`
	Skipped int      `json:"skipped"`
	Notes   []string `json:"notes,omitempty"`
}

// BulkImport ingests a workbook of historical kendala. Rows whose TID has no
// directory entry or whose pengelola has no operator account are skipped and
// reported rather than failing the whole upload.
func (h *KendalaHandler) BulkImport(w http.ResponseWriter, r *http.Request) {
	sess := sessionOrFail(w, r.Context())
	if sess == nil {
		return
	}
	maxBytes := h.cfg.Evidence.UploadMaxBytes
	if maxBytes <= 0 {
		maxBytes = 10 << 20
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		http.Error(w, "file terlalu besar atau tidak valid", http.StatusBadRequest)
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file excel wajib dilampirkan", http.StatusBadRequest)
		return
	}
	defer file.Close()

	loc := time.UTC
	if h.cfg.TimeZone != "" {
		if l, err := time.LoadLocation(h.cfg.TimeZone); err == nil {
			loc = l
		}
	}
	rows, err := sheet.ParseBulkImport(file, loc)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	operators, err := h.users.List(r.Context(), store.RoleOperator)
	if err != nil {
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	byName := map[string]*store.User{}
	for i := range operators {
		if operators[i].Active {
			byName[normalizeName(operators[i].Username)] = &operators[i]
		}
	}

	result := bulkImportResult{}
	for _, row := range rows {
		ref, err := h.reference.FindByTID(r.Context(), row.TID)
		if errors.Is(err, store.ErrNotFound) {
			result.Skipped++
			result.Notes = append(result.Notes, fmt.Sprintf("TID %s tidak ditemukan", row.TID))
			continue
		}
		if err != nil {
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}
		operator, ok := byName[row.Pengelola]
		if !ok {
			result.Skipped++
			result.Notes = append(result.Notes,
				fmt.Sprintf("pengelola %s (TID %s) tidak memiliki akun operator", row.Pengelola, row.TID))
			continue
		}
		k := &kendala.Kendala{
			Title:      row.Title,
			CreatedAt:  row.CreatedAt.UTC(),
			Terminal:   ref.TerminalRef(),
			OperatorID: operator.ID,
			Operator:   operator.Username,
		}
		if _, err := h.kendala.Create(r.Context(), k); err != nil {
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}
		result.Created++
	}

	_ = h.audits.Append(r.Context(), sess.Username, "kendala_bulk_import",
		fmt.Sprintf("created=%d skipped=%d", result.Created, result.Skipped))
	writeJSON(w, http.StatusOK, result)
}
