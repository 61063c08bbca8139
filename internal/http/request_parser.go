// Package http provides HTTP server and handler implementations.
//
// This file reads handler inputs from request bodies, which HTMX sends as
// form data and API clients may send as JSON.

package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"despesas/internal/core"
	"despesas/internal/session"
)

const maxBodyBytes = 64 << 10

// RequestBodyParser reads the body once and exposes its fields whether it
// is JSON or form-encoded.
type RequestBodyParser struct {
	body     []byte
	jsonData map[string]any
	formData url.Values
	parsed   bool
	err      error
}

func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{}
	p.body, p.err = io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	return p
}

// Parse decodes the body as JSON when it looks like an object, as form data
// otherwise.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true
	if p.err != nil {
		return p.err
	}
	if len(p.body) == 0 {
		p.formData = url.Values{}
		return nil
	}
	if p.body[0] == '{' {
		p.jsonData = make(map[string]any)
		p.err = json.Unmarshal(p.body, &p.jsonData)
		return p.err
	}
	p.formData, p.err = url.ParseQuery(string(p.body))
	return p.err
}

// Get returns a trimmed, sanitized value for key.
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return sanitizeInput(stringValue(val))
		}
		return ""
	}
	if p.formData != nil {
		return sanitizeInput(p.formData.Get(key))
	}
	return ""
}

func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// sanitizeInput drops control characters and trims whitespace.
func sanitizeInput(s string) string {
	return strings.TrimSpace(strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' {
			return -1
		}
		return r
	}, s))
}

// ParseDraft reads the add-entry form. An empty priority defaults to Média;
// an unknown one is returned as an error.
func ParseDraft(p *RequestBodyParser) (session.Draft, error) {
	d := session.Draft{
		Classification: p.Get("classification"),
		RawAmount:      p.Get("amount"),
		Priority:       core.PriorityMedium,
	}
	if raw := p.Get("priority"); raw != "" {
		prio, err := core.ParsePriority(raw)
		if err != nil {
			return d, err
		}
		d.Priority = prio
	}
	return d, nil
}

var errInvalidIndex = errors.New("invalid index")

// ParseDeleteParams reads the day and the entry position of a delete.
func ParseDeleteParams(p *RequestBodyParser) (core.DateKey, int, error) {
	day, err := core.ParseDateKey(p.Get("date"))
	if err != nil {
		return "", 0, err
	}
	idx, err := strconv.Atoi(p.Get("index"))
	if err != nil {
		return "", 0, errInvalidIndex
	}
	return day, idx, nil
}

// ParseReportMonth reads ?month=YYYY-MM, defaulting to fallback's month.
func ParseReportMonth(query url.Values, fallback time.Time) (core.MonthKey, error) {
	raw := strings.TrimSpace(query.Get("month"))
	if raw == "" {
		return core.MonthKeyFor(fallback), nil
	}
	return core.ParseMonthKey(raw)
}
