// Package api provides a client for the MediaWiki action API, used to
// fetch template source text from a live wiki.
package api

import (
	"errors"
	"fmt"
)

// TemplateNamespace is the namespace number of Template: pages.
const TemplateNamespace = 10

// ErrPageNotFound is returned when the requested page does not exist.
var ErrPageNotFound = errors.New("page not found")

// QueryResponse is the envelope of action=query responses.
type QueryResponse struct {
	BatchComplete bool              `json:"batchcomplete,omitempty"`
	Continue      map[string]string `json:"continue,omitempty"`
	Query         Query             `json:"query"`
}

// Query holds the result modules of a query request.
type Query struct {
	Pages    []Page    `json:"pages,omitempty"`
	AllPages []PageRef `json:"allpages,omitempty"`
	General  *SiteInfo `json:"general,omitempty"`
}

// SiteInfo is the general section of a meta=siteinfo query.
type SiteInfo struct {
	SiteName  string `json:"sitename"`
	Generator string `json:"generator"`
	Base      string `json:"base,omitempty"`
}

// Page is one page of a prop=revisions query.
type Page struct {
	PageID    int        `json:"pageid,omitempty"`
	NS        int        `json:"ns"`
	Title     string     `json:"title"`
	Missing   bool       `json:"missing,omitempty"`
	Invalid   bool       `json:"invalid,omitempty"`
	Revisions []Revision `json:"revisions,omitempty"`
}

// Revision is a page revision.
type Revision struct {
	RevID     int             `json:"revid"`
	Timestamp string          `json:"timestamp,omitempty"`
	Slots     map[string]Slot `json:"slots"`
}

// Slot is one content slot of a revision; wikitext lives in "main".
type Slot struct {
	ContentModel  string `json:"contentmodel"`
	ContentFormat string `json:"contentformat,omitempty"`
	Content       string `json:"content"`
}

// PageRef is an entry of a list=allpages query.
type PageRef struct {
	PageID int    `json:"pageid"`
	NS     int    `json:"ns"`
	Title  string `json:"title"`
}

// ErrorResponse represents an API error.
type ErrorResponse struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code"`
	Info       string `json:"info"`
}

func (e *ErrorResponse) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Info)
	}
	if e.Info != "" {
		return e.Info
	}
	return fmt.Sprintf("API error (status %d)", e.StatusCode)
}

type errorEnvelope struct {
	Error *ErrorResponse `json:"error"`
}
