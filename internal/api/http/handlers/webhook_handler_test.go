package handlers

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeDispatcher struct {
	mu      sync.Mutex
	tickets []int
}

func (d *fakeDispatcher) Dispatch(ticketID int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.tickets = append(d.tickets, ticketID)
}

func (d *fakeDispatcher) dispatched() []int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]int(nil), d.tickets...)
}

func newWebhookApp(dispatcher *fakeDispatcher) *fiber.App {
	app := fiber.New()
	handler := NewWebhookHandler(dispatcher, zap.NewNop())
	app.Post("/webhook", handler.Receive)
	return app
}

func TestReceiveDispatchesTicketAdd(t *testing.T) {
	dispatcher := &fakeDispatcher{}
	app := newWebhookApp(dispatcher)

	req := httptest.NewRequest("POST", "/webhook",
		bytes.NewBufferString(`[{"event":"add","itemtype":"Ticket","items_id":12345}]`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusAccepted, resp.StatusCode)
	assert.Equal(t, []int{12345}, dispatcher.dispatched())

	var payload struct {
		Message   string `json:"message"`
		TicketIDs []int  `json:"ticket_ids"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	assert.Equal(t, []int{12345}, payload.TicketIDs)
}

func TestReceiveAcceptsBareObjectAndStringID(t *testing.T) {
	dispatcher := &fakeDispatcher{}
	app := newWebhookApp(dispatcher)

	req := httptest.NewRequest("POST", "/webhook",
		bytes.NewBufferString(`{"event":"add","itemtype":"Ticket","items_id":"678"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusAccepted, resp.StatusCode)
	assert.Equal(t, []int{678}, dispatcher.dispatched())
}

func TestReceiveDispatchesOnlyTicketAdds(t *testing.T) {
	dispatcher := &fakeDispatcher{}
	app := newWebhookApp(dispatcher)

	body := `[
		{"event":"update","itemtype":"Ticket","items_id":1},
		{"event":"add","itemtype":"Computer","items_id":2},
		{"event":"add","itemtype":"Ticket","items_id":3}
	]`
	req := httptest.NewRequest("POST", "/webhook", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusAccepted, resp.StatusCode)
	assert.Equal(t, []int{3}, dispatcher.dispatched())
}

func TestReceiveIgnoresNonTicketEvents(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "update event", body: `[{"event":"update","itemtype":"Ticket","items_id":1}]`},
		{name: "other itemtype", body: `[{"event":"add","itemtype":"Computer","items_id":1}]`},
		{name: "empty array", body: `[]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dispatcher := &fakeDispatcher{}
			app := newWebhookApp(dispatcher)

			req := httptest.NewRequest("POST", "/webhook", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")

			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, fiber.StatusOK, resp.StatusCode)
			assert.Empty(t, dispatcher.dispatched())
		})
	}
}

func TestReceiveInvalidIDRejectsWholeBatch(t *testing.T) {
	dispatcher := &fakeDispatcher{}
	app := newWebhookApp(dispatcher)

	body := `[
		{"event":"add","itemtype":"Ticket","items_id":5},
		{"event":"add","itemtype":"Ticket","items_id":0}
	]`
	req := httptest.NewRequest("POST", "/webhook", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.NotEqual(t, fiber.StatusAccepted, resp.StatusCode)
	assert.Empty(t, dispatcher.dispatched())
}

func TestReceiveRejectsBadPayload(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "malformed json", body: `{"event":`},
		{name: "zero ticket id", body: `[{"event":"add","itemtype":"Ticket","items_id":0}]`},
		{name: "non-numeric id", body: `[{"event":"add","itemtype":"Ticket","items_id":"abc"}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dispatcher := &fakeDispatcher{}
			app := newWebhookApp(dispatcher)

			req := httptest.NewRequest("POST", "/webhook", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")

			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Empty(t, dispatcher.dispatched())
			assert.NotEqual(t, fiber.StatusAccepted, resp.StatusCode)
		})
	}
}
