// Floodwatch - Real-Time Flood Monitoring Backend
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/floodwatch-io/floodwatch

package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/goccy/go-json"
)

// maxRequestBody caps JSON request bodies at 1 MiB.
const maxRequestBody = 1 << 20

// decodeJSON reads and decodes a JSON request body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)

	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(dst); err != nil {
		return errors.New("invalid JSON body")
	}
	return nil
}

// queryInt parses an integer query parameter, returning def when absent
// and an error when present but not an integer.
func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.New("parameter '" + name + "' must be an integer")
	}
	return value, nil
}

// queryFloat parses a float query parameter. Required parameters pass
// required=true and fail when absent.
func queryFloat(r *http.Request, name string, required bool, def float64) (float64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		if required {
			return 0, errors.New("parameter '" + name + "' is required")
		}
		return def, nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, errors.New("parameter '" + name + "' must be a number")
	}
	return value, nil
}

// queryFloatAlias parses a required float that may arrive under either
// name. The dashboard sends the long form; the short alias is kept for
// hand-written queries.
func queryFloatAlias(r *http.Request, name, alias string) (float64, error) {
	if r.URL.Query().Has(name) {
		return queryFloat(r, name, true, 0)
	}
	if r.URL.Query().Has(alias) {
		return queryFloat(r, alias, true, 0)
	}
	return 0, errors.New("parameter '" + name + "' is required")
}

// pageParams holds validated skip/limit pagination values.
type pageParams struct {
	Skip  int
	Limit int
}

// parsePagination reads skip and limit query parameters, clamping limit to
// the configured maximum.
func parsePagination(r *http.Request, defaultLimit, maxLimit int) (pageParams, error) {
	skip, err := queryInt(r, "skip", 0)
	if err != nil {
		return pageParams{}, err
	}
	if skip < 0 {
		return pageParams{}, errors.New("parameter 'skip' must not be negative")
	}

	limit, err := queryInt(r, "limit", defaultLimit)
	if err != nil {
		return pageParams{}, err
	}
	if limit < 1 {
		return pageParams{}, errors.New("parameter 'limit' must be positive")
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	return pageParams{Skip: skip, Limit: limit}, nil
}
