package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/osmith/BadgeForge_Go/internal/domain"
	"github.com/osmith/BadgeForge_Go/internal/logger"
)

// DecodeAndValidateRequest decodes a JSON request body and validates it. If
// it returns an error the response has already been written and the handler
// should return.
func DecodeAndValidateRequest(r *http.Request, w http.ResponseWriter, req interface{}, actionName string) error {
	log := logger.FromContext(r.Context())

	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		log.Error(fmt.Sprintf("Failed to decode %s request", actionName), "error", err)
		respondError(w, http.StatusBadRequest, ErrMsgInvalidBodyError)
		return err
	}

	if err := GetValidator().ValidateStruct(req); err != nil {
		msg := FormatValidationError(err)
		log.Warn(fmt.Sprintf("Invalid %s request", actionName), "error", msg)
		respondError(w, http.StatusBadRequest, msg)
		return err
	}
	return nil
}

// Pagination bounds shared by list endpoints.
const (
	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 1000
)

// queryInt parses an optional integer query parameter
func queryInt(r *http.Request, name string, defaultValue int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return defaultValue, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", domain.ErrInvalidInput, name)
	}
	return value, nil
}

// pagination parses page/pageSize with bounds checking
func pagination(r *http.Request) (page, pageSize int, err error) {
	page, err = queryInt(r, "page", DefaultPage)
	if err != nil {
		return 0, 0, err
	}
	pageSize, err = queryInt(r, "pageSize", DefaultPageSize)
	if err != nil {
		return 0, 0, err
	}
	if page < 1 {
		return 0, 0, fmt.Errorf("%w: page must be at least 1", domain.ErrInvalidInput)
	}
	if pageSize < 1 || pageSize > MaxPageSize {
		return 0, 0, fmt.Errorf("%w: pageSize must be between 1 and %d", domain.ErrInvalidInput, MaxPageSize)
	}
	return page, pageSize, nil
}

// limitOffset parses limit/offset for event pagination
func limitOffset(r *http.Request) (limit, offset int, err error) {
	limit, err = queryInt(r, "limit", 100)
	if err != nil {
		return 0, 0, err
	}
	offset, err = queryInt(r, "offset", 0)
	if err != nil {
		return 0, 0, err
	}
	if limit < 1 || limit > MaxPageSize {
		return 0, 0, fmt.Errorf("%w: limit must be between 1 and %d", domain.ErrInvalidInput, MaxPageSize)
	}
	if offset < 0 {
		return 0, 0, fmt.Errorf("%w: offset must not be negative", domain.ErrInvalidInput)
	}
	return limit, offset, nil
}

// queryTime parses an optional RFC 3339 query parameter
func queryTime(r *http.Request, name string) (*time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be an RFC 3339 timestamp", domain.ErrInvalidInput, name)
	}
	return &t, nil
}
