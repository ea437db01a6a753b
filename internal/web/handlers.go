package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/joinery-data/joinery/internal/metadata"
	"github.com/joinery-data/joinery/internal/model"
)

const (
	defaultPage    = 1
	defaultPerPage = 25
	maxPerPage     = 100
)

// resource serves the REST operations of one entity.
type resource struct {
	facade *model.Facade
	log    *zap.Logger
}

func (res *resource) entity() *metadata.Entity {
	return res.facade.Entity()
}

// create handles POST /{resource}.
func (res *resource) create(w http.ResponseWriter, r *http.Request) {
	var fields model.Record
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		renderError(w, http.StatusBadRequest, "bad_request", "invalid JSON body")
		return
	}

	inst, err := res.facade.Create(fields)
	if err != nil {
		renderStoreError(w, err)
		return
	}
	if err := res.facade.Save(r.Context(), inst); err != nil {
		res.logFailure(r, err)
		renderStoreError(w, err)
		return
	}

	renderJSON(w, http.StatusCreated, inst.Values())
}

// list handles GET /{resource}. Remaining query parameters become
// equality filters on the entity's columns.
func (res *resource) list(w http.ResponseWriter, r *http.Request) {
	page, perPage, err := paginationParams(r)
	if err != nil {
		renderError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	filter := res.queryFilter(r)
	result, err := res.facade.FindPaginated(r.Context(), filter, page, perPage)
	if err != nil {
		res.logFailure(r, err)
		renderStoreError(w, err)
		return
	}

	renderJSON(w, http.StatusOK, &listEnvelope{
		Data:    result.Data,
		Total:   result.Total,
		Page:    page,
		PerPage: perPage,
	})
}

// show handles GET /{resource}/{id}.
func (res *resource) show(w http.ResponseWriter, r *http.Request) {
	filter, ok := res.keyFilter(w, r)
	if !ok {
		return
	}

	record, found, err := res.facade.FindOne(r.Context(), filter)
	if err != nil {
		res.logFailure(r, err)
		renderStoreError(w, err)
		return
	}
	if !found {
		renderNotFound(w, "")
		return
	}

	renderJSON(w, http.StatusOK, record)
}

// update handles PATCH /{resource}/{id} and returns the updated record.
func (res *resource) update(w http.ResponseWriter, r *http.Request) {
	filter, ok := res.keyFilter(w, r)
	if !ok {
		return
	}

	var changes model.Record
	if err := json.NewDecoder(r.Body).Decode(&changes); err != nil {
		renderError(w, http.StatusBadRequest, "bad_request", "invalid JSON body")
		return
	}

	affected, err := res.facade.Update(r.Context(), filter, changes)
	if err != nil {
		res.logFailure(r, err)
		renderStoreError(w, err)
		return
	}
	if affected == 0 {
		renderNotFound(w, "")
		return
	}

	record, found, err := res.facade.FindOne(r.Context(), filter)
	if err != nil {
		res.logFailure(r, err)
		renderStoreError(w, err)
		return
	}
	if !found {
		// The change moved the record's key, so there is nothing to
		// read back at the old address.
		w.WriteHeader(http.StatusNoContent)
		return
	}
	renderJSON(w, http.StatusOK, record)
}

// remove handles DELETE /{resource}/{id}.
func (res *resource) remove(w http.ResponseWriter, r *http.Request) {
	filter, ok := res.keyFilter(w, r)
	if !ok {
		return
	}

	affected, err := res.facade.Delete(r.Context(), filter)
	if err != nil {
		res.logFailure(r, err)
		renderStoreError(w, err)
		return
	}
	if affected == 0 {
		renderNotFound(w, "")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// keyFilter builds the primary key filter from the {id} path segment,
// coerced to the key column's type.
func (res *resource) keyFilter(w http.ResponseWriter, r *http.Request) (model.Filter, bool) {
	pk, ok := res.entity().PrimaryKey()
	if !ok {
		renderError(w, http.StatusMethodNotAllowed, "method_not_allowed",
			fmt.Sprintf("%s has no key to address records by", res.entity().Name()))
		return nil, false
	}

	raw := chi.URLParam(r, "id")
	value, err := coerceKey(pk, raw)
	if err != nil {
		renderError(w, http.StatusBadRequest, "bad_request", err.Error())
		return nil, false
	}
	return model.Filter{pk.Name(): value}, true
}

// queryFilter turns the non-pagination query parameters into an
// equality filter. Unknown column names pass through untouched so the
// facade reports them uniformly.
func (res *resource) queryFilter(r *http.Request) model.Filter {
	filter := model.Filter{}
	for key, values := range r.URL.Query() {
		if key == "page" || key == "per_page" || len(values) == 0 {
			continue
		}
		raw := values[0]

		col, ok := res.entity().Column(key)
		if !ok {
			filter[key] = raw
			continue
		}
		value, err := coerceValue(col, raw)
		if err != nil {
			filter[key] = raw
			continue
		}
		filter[key] = value
	}
	return filter
}

func (res *resource) logFailure(r *http.Request, err error) {
	res.log.Error("request failed",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.String("entity", res.entity().Name()),
		zap.Error(err))
}

func paginationParams(r *http.Request) (page, perPage int, err error) {
	page, err = positiveIntParam(r, "page", defaultPage)
	if err != nil {
		return 0, 0, err
	}
	perPage, err = positiveIntParam(r, "per_page", defaultPerPage)
	if err != nil {
		return 0, 0, err
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}
	return page, perPage, nil
}

func positiveIntParam(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%s must be a positive integer", name)
	}
	return n, nil
}

// coerceKey parses a path segment into the primary key column's type.
func coerceKey(pk metadata.Column, raw string) (interface{}, error) {
	switch pk.DataType() {
	case metadata.TypeInt, metadata.TypeBigInt:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("id must be an integer")
		}
		return n, nil
	case metadata.TypeUUID:
		if _, err := uuid.Parse(raw); err != nil {
			return nil, fmt.Errorf("id must be a UUID")
		}
		return raw, nil
	default:
		return raw, nil
	}
}

// coerceValue parses a query string value into the column's type.
func coerceValue(col metadata.Column, raw string) (interface{}, error) {
	switch col.DataType() {
	case metadata.TypeInt, metadata.TypeBigInt:
		return strconv.ParseInt(raw, 10, 64)
	case metadata.TypeFloat:
		return strconv.ParseFloat(raw, 64)
	case metadata.TypeBool:
		return strconv.ParseBool(raw)
	default:
		return raw, nil
	}
}
