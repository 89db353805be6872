package dto

import (
	"strconv"
	"strings"
)

// ItemID accepts both the numeric and quoted forms GLPI emits for items_id.
type ItemID int

// UnmarshalJSON parses `123` and `"123"` alike.
func (id *ItemID) UnmarshalJSON(data []byte) error {
	n, err := strconv.Atoi(strings.Trim(string(data), `"`))
	if err != nil {
		return err
	}
	*id = ItemID(n)
	return nil
}

// WebhookEvent is one entry of the GLPI notification payload.
type WebhookEvent struct {
	Event    string `json:"event"`
	ItemType string `json:"itemtype"`
	ItemsID  ItemID `json:"items_id"`
}

// WebhookAccepted is returned once report runs have been dispatched.
type WebhookAccepted struct {
	Message   string `json:"message"`
	TicketIDs []int  `json:"ticket_ids"`
}

// RunStatusResponse mirrors the stored run record for the status endpoint.
type RunStatusResponse struct {
	RunID      string `json:"run_id"`
	TicketID   int    `json:"ticket_id"`
	State      string `json:"state"`
	Reason     string `json:"reason,omitempty"`
	Detail     string `json:"detail,omitempty"`
	ReportKey  string `json:"report_key,omitempty"`
	ReportURI  string `json:"report_uri,omitempty"`
	StartedAt  string `json:"started_at"`
	FinishedAt string `json:"finished_at,omitempty"`
}
