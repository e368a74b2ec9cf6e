package types

import "errors"

// Action names understood by the page-side message handler.
const (
	ActionDetectPageType = "detectPageType"
	ActionGetPreview     = "getPreview"
	ActionExtractData    = "extractData"
	ActionStopExport     = "stopExport"
)

// Message is a request sent over the extension channel.
type Message struct {
	Action string        `json:"action"`
	Config *ExportConfig `json:"config,omitempty"`
}

// Response is the reply to a Message. Which fields are set depends on the action.
type Response struct {
	Success   bool      `json:"success"`
	Error     string    `json:"error,omitempty"`
	PageType  *PageType `json:"pageType,omitempty"`
	Type      PageType  `json:"type,omitempty"`
	Data      []Record  `json:"data,omitempty"`
	TotalRows int       `json:"totalRows,omitempty"`
	RowCount  int       `json:"rowCount,omitempty"`
	Filename  string    `json:"filename,omitempty"`
}

// Failure builds an unsuccessful response carrying err's message.
func Failure(err error) Response {
	return Response{Success: false, Error: err.Error()}
}

// ErrPageNotFound is returned for a tab ID that is unknown or has expired.
var ErrPageNotFound = errors.New("page not found")

// Tab identifies an open page snapshot.
type Tab struct {
	ID       string   `json:"tabId"`
	URL      string   `json:"url"`
	PageType PageType `json:"pageType"`
}
