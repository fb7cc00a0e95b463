package identifiersvc

import (
	"time"

	"github.com/pkg/errors"

	"github.com/rzbill/cuidd/internal/eventlog"
	"github.com/rzbill/cuidd/internal/ledger"
	"github.com/rzbill/cuidd/pkg/cuid"
)

var (
	// ErrInvalidArgument marks malformed requests.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrNotFound marks identifiers the ledger does not know.
	ErrNotFound = errors.New("not found")
	// ErrKindNotAllowed marks kinds outside the configured registry.
	ErrKindNotAllowed = errors.New("kind not allowed")
)

// maxLabelLen bounds the free-form label stored with a record.
const maxLabelLen = 256

// defaultListLimit applies when a ListRequest has no limit.
const defaultListLimit = 100

// MintRequest asks for Count identifiers of Kind. Count 0 means 1.
type MintRequest struct {
	Kind  string `json:"kind"`
	Count int    `json:"count"`
	Label string `json:"label,omitempty"`
}

// ListRequest pages through recorded identifiers. An empty Kind lists all
// kinds. Filter is an optional CEL expression.
type ListRequest struct {
	Kind    string `json:"kind"`
	After   string `json:"after"`
	Limit   int    `json:"limit"`
	Reverse bool   `json:"reverse"`
	Filter  string `json:"filter"`
}

// ListResult is one page. NextAfter is empty on the last page.
type ListResult struct {
	Items     []ledger.Record `json:"items"`
	NextAfter string          `json:"next_after"`
}

// Inspection decodes an identifier and reports whether it was issued here.
type Inspection struct {
	ID     string         `json:"id"`
	Parts  cuid.Parts     `json:"parts"`
	Time   string         `json:"time"`
	Known  bool           `json:"known"`
	Record *ledger.Record `json:"record,omitempty"`
}

// maxEventWait bounds how long Events may block for new entries.
const maxEventWait = 30 * time.Second

// EventsRequest pages through the audit trail. After is an exclusive
// sequence. WaitMs blocks a forward read until an event newer than After
// exists.
type EventsRequest struct {
	After   uint64 `json:"after"`
	Limit   int    `json:"limit"`
	Reverse bool   `json:"reverse"`
	WaitMs  int    `json:"wait_ms"`
}

// EventsResult is one page of audit events.
type EventsResult struct {
	Items     []eventlog.Event `json:"items"`
	NextAfter uint64           `json:"next_after"`
}
