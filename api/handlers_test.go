package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/open-ibc/polylens/config"
	"github.com/open-ibc/polylens/packet"
	"github.com/open-ibc/polylens/store"
)

type fakeScanner struct {
	runs      int
	runErr    error
	packets   []packet.Packet
	searchErr error

	lastChannel string
	lastChain   string
	lastClient  config.ClientType
}

func (f *fakeScanner) Run(context.Context) error {
	f.runs++
	return f.runErr
}

func (f *fakeScanner) SearchChannel(_ context.Context, channelID, chain string, clientType config.ClientType) ([]packet.Packet, error) {
	f.lastChannel = channelID
	f.lastChain = chain
	f.lastClient = clientType
	return f.packets, f.searchErr
}

type fakeAlerts struct {
	created   []store.Alert
	createErr error
	deleted   []uint
	deleteErr error
	active    []store.Alert
}

func (f *fakeAlerts) Create(a *store.Alert) error {
	if f.createErr != nil {
		return f.createErr
	}
	a.ID = uint(len(f.created) + 1)
	f.created = append(f.created, *a)
	return nil
}

func (f *fakeAlerts) SoftDelete(id uint) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeAlerts) ListActiveByUser(string) ([]store.Alert, error) {
	return f.active, nil
}

func newTestServer(scanner Scanner, alerts AlertService) *Server {
	return NewServer(scanner, alerts, 0, zerolog.Nop())
}

func TestHandleHealth(t *testing.T) {
	s := newTestServer(&fakeScanner{}, &fakeAlerts{})

	rec := httptest.NewRecorder()
	s.setupRoutes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestHandleScan(t *testing.T) {
	t.Run("runs one pass", func(t *testing.T) {
		scanner := &fakeScanner{}
		s := newTestServer(scanner, &fakeAlerts{})

		rec := httptest.NewRecorder()
		s.setupRoutes().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/scan", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 1, scanner.runs)
	})

	t.Run("rejects GET", func(t *testing.T) {
		s := newTestServer(&fakeScanner{}, &fakeAlerts{})

		rec := httptest.NewRecorder()
		s.setupRoutes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/scan", nil))

		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})

	t.Run("maps pass failure to 500", func(t *testing.T) {
		s := newTestServer(&fakeScanner{runErr: fmt.Errorf("storage down")}, &fakeAlerts{})

		rec := httptest.NewRecorder()
		s.setupRoutes().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/scan", nil))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestHandleChannelSearch(t *testing.T) {
	searchURL := "/api/v1/channel/search?channelId=channel-17&chain=base&clientType=proof"

	t.Run("reports packets with pending count", func(t *testing.T) {
		scanner := &fakeScanner{packets: []packet.Packet{
			{Sequence: "1", CreateTime: 1000, EndTime: 1040},
			{Sequence: "2", CreateTime: 1010},
		}}
		s := newTestServer(scanner, &fakeAlerts{})

		rec := httptest.NewRecorder()
		s.setupRoutes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, searchURL, nil))

		require.Equal(t, http.StatusOK, rec.Code)
		var resp SearchResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.True(t, resp.Found)
		assert.Equal(t, 1, resp.Pending)
		assert.Len(t, resp.Packets, 2)

		assert.Equal(t, "channel-17", scanner.lastChannel)
		assert.Equal(t, "base", scanner.lastChain)
		assert.Equal(t, config.ClientTypeProof, scanner.lastClient)
	})

	t.Run("distinguishes an empty channel", func(t *testing.T) {
		s := newTestServer(&fakeScanner{packets: []packet.Packet{}}, &fakeAlerts{})

		rec := httptest.NewRecorder()
		s.setupRoutes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, searchURL, nil))

		require.Equal(t, http.StatusOK, rec.Code)
		var resp SearchResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.False(t, resp.Found)
		assert.Zero(t, resp.Pending)
	})

	t.Run("requires channelId, chain and a valid clientType", func(t *testing.T) {
		s := newTestServer(&fakeScanner{}, &fakeAlerts{})

		for _, url := range []string{
			"/api/v1/channel/search?chain=base&clientType=proof",
			"/api/v1/channel/search?channelId=channel-17&clientType=proof",
			"/api/v1/channel/search?channelId=channel-17&chain=base&clientType=magic",
		} {
			rec := httptest.NewRecorder()
			s.setupRoutes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, url, nil))
			assert.Equal(t, http.StatusBadRequest, rec.Code, url)
		}
	})

	t.Run("maps gateway failure to 502", func(t *testing.T) {
		s := newTestServer(&fakeScanner{searchErr: fmt.Errorf("rpc down")}, &fakeAlerts{})

		rec := httptest.NewRecorder()
		s.setupRoutes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, searchURL, nil))

		assert.Equal(t, http.StatusBadGateway, rec.Code)
	})
}

func TestHandleAlerts(t *testing.T) {
	t.Run("creates an alert", func(t *testing.T) {
		alerts := &fakeAlerts{}
		s := newTestServer(&fakeScanner{}, alerts)

		body, _ := json.Marshal(CreateAlertRequest{
			ChannelID:  "channel-17",
			Chain:      "base",
			ClientType: "proof",
			Threshold:  30,
			UserEmail:  "user@example.com",
		})
		rec := httptest.NewRecorder()
		s.setupRoutes().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/alerts", bytes.NewReader(body)))

		require.Equal(t, http.StatusCreated, rec.Code)
		require.Len(t, alerts.created, 1)
		assert.Equal(t, uint64(30), alerts.created[0].Threshold)

		var resp AlertResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.NotZero(t, resp.ID)
	})

	t.Run("maps the alert cap to 409", func(t *testing.T) {
		s := newTestServer(&fakeScanner{}, &fakeAlerts{createErr: store.ErrTooManyAlerts})

		body, _ := json.Marshal(CreateAlertRequest{
			ChannelID:  "channel-17",
			Chain:      "base",
			ClientType: "proof",
			Threshold:  30,
			UserEmail:  "user@example.com",
		})
		rec := httptest.NewRecorder()
		s.setupRoutes().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/alerts", bytes.NewReader(body)))

		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("lists a user's active alerts", func(t *testing.T) {
		alerts := &fakeAlerts{active: []store.Alert{{
			Model:      gorm.Model{ID: 3},
			ChannelID:  "channel-17",
			Chain:      "base",
			ClientType: "proof",
			Threshold:  30,
			UserEmail:  "user@example.com",
		}}}
		s := newTestServer(&fakeScanner{}, alerts)

		rec := httptest.NewRecorder()
		s.setupRoutes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/alerts?email=user@example.com", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		var resp []AlertResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp, 1)
		assert.Equal(t, uint(3), resp[0].ID)
	})

	t.Run("listing requires an email", func(t *testing.T) {
		s := newTestServer(&fakeScanner{}, &fakeAlerts{})

		rec := httptest.NewRecorder()
		s.setupRoutes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/alerts", nil))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("soft-deletes by id", func(t *testing.T) {
		alerts := &fakeAlerts{}
		s := newTestServer(&fakeScanner{}, alerts)

		rec := httptest.NewRecorder()
		s.setupRoutes().ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/v1/alerts?id=7", nil))

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, []uint{7}, alerts.deleted)
	})

	t.Run("maps unknown id to 404", func(t *testing.T) {
		s := newTestServer(&fakeScanner{}, &fakeAlerts{deleteErr: store.ErrAlertNotFound})

		rec := httptest.NewRecorder()
		s.setupRoutes().ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/v1/alerts?id=7", nil))

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
