package controllers

import (
	"errors"
	"fmt"
	json "github.com/goccy/go-json"
	"github.com/gookit/validate"
	"io"
	"net/http"
	"readtrack/internal/history"
	"readtrack/internal/models"
	"readtrack/internal/providers"
	"readtrack/internal/services"
)

const maxRequestBodySize = 8 << 20 // 8 MB, legacy exports can span years

type ApiController struct {
	logger  providers.Logger
	service services.HistoryServiceInterface
	cache   providers.CacheProviderInterface
	metrics providers.MetricsProviderInterface
}

func NewApiController(logger providers.Logger, service services.HistoryServiceInterface, cache providers.CacheProviderInterface, metrics providers.MetricsProviderInterface) *ApiController {
	return &ApiController{
		logger:  logger,
		service: service,
		cache:   cache,
		metrics: metrics,
	}
}

// validateRequest keeps the history raw so that malformed fields surface as
// validation issues rather than decode errors.
type validateRequest struct {
	History json.RawMessage `json:"history"`
	Books   []string        `json:"books,omitempty"`
}

type bulkRequest struct {
	Operations []models.BulkOperation `json:"operations"`
}

// opHeader carries the fields of a bulk operation that are checked before
// the batch reaches the store.
type opHeader struct {
	Type string `validate:"required|in:add,update,remove"`
	Date string `validate:"required"`
}

type dayUpdateRequest struct {
	Date    string             `json:"date"`
	Updates models.EntryUpdate `json:"updates"`
}

type rejectionResponse struct {
	Error   string          `json:"error"`
	TxID    string          `json:"txId,omitempty"`
	Op      *int            `json:"op,omitempty"`
	Date    string          `json:"date,omitempty"`
	Issues  []models.Issue  `json:"issues,omitempty"`
	History *models.History `json:"history,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	gson, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(gson)
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, err
	}
	if len(body) == 0 {
		return nil, errors.New("empty body")
	}
	return body, nil
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	body, err := readBody(w, r)
	if err != nil {
		return err
	}
	return json.Unmarshal(body, v)
}

func (ac *ApiController) badRequest(w http.ResponseWriter, r *http.Request, err error) {
	ac.logger.Debugf(providers.GetLogTypeByRequestType(r.Method), "%s %s: bad request: %s", r.Method, r.URL.Path, err)
	writeJSON(w, http.StatusBadRequest, rejectionResponse{Error: err.Error()})
}

func (ac *ApiController) serveFromCacheOrCompute(w http.ResponseWriter, cacheKey string, compute func() (any, error)) {
	if data, ok := ac.cache.Get(cacheKey); ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
		return
	}

	result, err := compute()
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	gson, err := json.Marshal(result)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	ac.cache.Set(cacheKey, gson)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(gson)
}

func (ac *ApiController) GetHistory(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ac.service.GetSnapshot())
}

// GetReport validates the stored history. Reports are cached per history
// content, so any committed change produces a new key.
func (ac *ApiController) GetReport(w http.ResponseWriter, r *http.Request) {
	snapshot := ac.service.GetSnapshot()
	raw, err := json.Marshal(snapshot)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	ac.serveFromCacheOrCompute(w, providers.CacheKey("report", raw), func() (any, error) {
		report := ac.service.Validate(snapshot, nil)
		ac.metrics.ObserveIntegrityScore(report.Score)
		return report, nil
	})
}

func (ac *ApiController) Detect(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		ac.badRequest(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ac.service.DetectFormat(json.RawMessage(body)))
}

func (ac *ApiController) Migrate(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		ac.badRequest(w, r, err)
		return
	}
	res := ac.service.Migrate(json.RawMessage(body))
	ac.metrics.IncMigrations(string(res.Format), res.Success)

	status := http.StatusOK
	if !res.Success {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, res)
}

func (ac *ApiController) Import(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		ac.badRequest(w, r, err)
		return
	}
	res, err := ac.service.Import(json.RawMessage(body))
	ac.metrics.IncMigrations(string(res.Format), err == nil)
	if err != nil {
		ac.logger.Warnf(providers.TypeHistory, "Import rejected: %s", err)
		if errors.Is(err, history.ErrBusy) {
			writeJSON(w, http.StatusConflict, rejectionResponse{Error: err.Error()})
			return
		}
		writeJSON(w, http.StatusUnprocessableEntity, res)
		return
	}
	ac.logger.Infof(providers.TypeHistory, "Imported %s history: %d data points", res.Format, res.DataPointsMigrated)
	writeJSON(w, http.StatusOK, res)
}

func (ac *ApiController) Validate(w http.ResponseWriter, r *http.Request) {
	var req validateRequest
	if err := decodeBody(w, r, &req); err != nil {
		ac.badRequest(w, r, err)
		return
	}
	var catalog models.BookCatalog
	if req.Books != nil {
		catalog = models.NewBookSet(req.Books...)
	}
	var h *models.History
	if len(req.History) > 0 {
		// anything that is not an object validates as missing_history
		h, _ = history.DecodeHistory(req.History)
	}
	writeJSON(w, http.StatusOK, ac.service.Validate(h, catalog))
}

func (ac *ApiController) AutoFix(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		ac.badRequest(w, r, err)
		return
	}
	h, err := history.DecodeHistory(json.RawMessage(body))
	if err != nil {
		ac.badRequest(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ac.service.AutoFix(h))
}

func (ac *ApiController) Bulk(w http.ResponseWriter, r *http.Request) {
	var req bulkRequest
	if err := decodeBody(w, r, &req); err != nil {
		ac.badRequest(w, r, err)
		return
	}
	for i, op := range req.Operations {
		v := validate.Struct(&opHeader{Type: string(op.Type), Date: op.Date})
		if !v.Validate() {
			ac.badRequest(w, r, fmt.Errorf("operation %d: %s", i, v.Errors.One()))
			return
		}
	}

	h, err := ac.service.BulkApply(req.Operations)
	if err != nil {
		ac.writeMutationError(w, r, err, h)
		return
	}
	ac.logger.Infof(providers.TypeHistory, "Bulk transaction applied: %d operation(s)", len(req.Operations))
	writeJSON(w, http.StatusOK, h)
}

func (ac *ApiController) AddDay(w http.ResponseWriter, r *http.Request) {
	var e models.ReadingDayEntry
	if err := decodeBody(w, r, &e); err != nil {
		ac.badRequest(w, r, err)
		return
	}
	if e.Date == "" {
		ac.badRequest(w, r, errors.New("date is required"))
		return
	}
	saved, err := ac.service.AddDay(e.Date, e)
	if err != nil {
		ac.writeMutationError(w, r, err, nil)
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

func (ac *ApiController) UpdateDay(w http.ResponseWriter, r *http.Request) {
	var req dayUpdateRequest
	if err := decodeBody(w, r, &req); err != nil {
		ac.badRequest(w, r, err)
		return
	}
	if req.Date == "" {
		ac.badRequest(w, r, errors.New("date is required"))
		return
	}
	saved, err := ac.service.UpdateDay(req.Date, req.Updates)
	if err != nil {
		ac.writeMutationError(w, r, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (ac *ApiController) RemoveDay(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		ac.badRequest(w, r, errors.New("date is required"))
		return
	}
	if err := ac.service.RemoveDay(date); err != nil {
		ac.writeMutationError(w, r, err, nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (ac *ApiController) writeMutationError(w http.ResponseWriter, r *http.Request, err error, current *models.History) {
	logType := providers.GetLogTypeByRequestType(r.Method)

	if errors.Is(err, history.ErrBusy) {
		ac.metrics.IncBulkRejections("busy")
		ac.logger.Warnf(logType, "%s %s: %s", r.Method, r.URL.Path, err)
		writeJSON(w, http.StatusConflict, rejectionResponse{Error: err.Error()})
		return
	}

	var rejection *history.BulkRejection
	if !errors.As(err, &rejection) {
		ac.logger.Errorf(logType, "%s %s: %s", r.Method, r.URL.Path, err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	resp := rejectionResponse{
		Error:   rejection.Err.Error(),
		TxID:    rejection.TxID,
		Date:    rejection.Date,
		Issues:  rejection.Issues,
		History: current,
	}
	if rejection.Op >= 0 {
		op := rejection.Op
		resp.Op = &op
	}

	status := http.StatusUnprocessableEntity
	reason := "validation"
	switch {
	case errors.Is(err, history.ErrEntryNotFound):
		status = http.StatusNotFound
		reason = "not_found"
	case rejection.Op >= 0:
		reason = "operation"
	}
	ac.metrics.IncBulkRejections(reason)
	ac.logger.Warnf(logType, "%s", rejection)
	writeJSON(w, status, resp)
}
