package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/open-ibc/polylens/config"
	"github.com/open-ibc/polylens/packet"
	"github.com/open-ibc/polylens/store"
)

// handleHealth handles GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// handleScan handles POST /api/v1/scan: one full alert scan pass.
func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := s.scanner.Run(r.Context()); err != nil {
		s.logger.Error().Err(err).Msg("scan pass failed")
		writeError(w, http.StatusInternalServerError, "scan pass failed")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// handleChannelSearch handles
// GET /api/v1/channel/search?channelId=<id>&chain=<chain>&clientType=<sim|proof>
func (s *Server) handleChannelSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	channelID := r.URL.Query().Get("channelId")
	chain := r.URL.Query().Get("chain")
	if channelID == "" || chain == "" {
		writeError(w, http.StatusBadRequest, "channelId and chain parameters are required")
		return
	}
	clientType, err := config.ParseClientType(r.URL.Query().Get("clientType"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	packets, err := s.scanner.SearchChannel(r.Context(), channelID, chain, clientType)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("channel", channelID).
			Str("chain", chain).
			Msg("channel search failed")
		writeError(w, http.StatusBadGateway, "channel search failed")
		return
	}

	if packets == nil {
		packets = []packet.Packet{}
	}
	response := SearchResponse{
		Found:   len(packets) > 0,
		Packets: packets,
	}
	for _, p := range packets {
		if p.Pending() {
			response.Pending++
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// handleAlerts dispatches alert CRUD:
// GET /api/v1/alerts?email=<email>, POST /api/v1/alerts, DELETE /api/v1/alerts?id=<id>
func (s *Server) handleAlerts(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleListAlerts(w, r)
	case http.MethodPost:
		s.handleCreateAlert(w, r)
	case http.MethodDelete:
		s.handleDeleteAlert(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleListAlerts(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		writeError(w, http.StatusBadRequest, "email parameter is required")
		return
	}

	alerts, err := s.alerts.ListActiveByUser(email)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list alerts")
		writeError(w, http.StatusInternalServerError, "failed to list alerts")
		return
	}

	response := make([]AlertResponse, 0, len(alerts))
	for _, a := range alerts {
		response = append(response, toAlertResponse(a))
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

func (s *Server) handleCreateAlert(w http.ResponseWriter, r *http.Request) {
	var req CreateAlertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	a := store.Alert{
		ChannelID:  req.ChannelID,
		Chain:      req.Chain,
		ClientType: req.ClientType,
		Threshold:  req.Threshold,
		UserEmail:  req.UserEmail,
	}

	if err := s.alerts.Create(&a); err != nil {
		if errors.Is(err, store.ErrTooManyAlerts) {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(toAlertResponse(a))
}

func (s *Server) handleDeleteAlert(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(r.URL.Query().Get("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "id parameter is required")
		return
	}

	if err := s.alerts.SoftDelete(uint(id)); err != nil {
		if errors.Is(err, store.ErrAlertNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		s.logger.Error().Err(err).Msg("failed to delete alert")
		writeError(w, http.StatusInternalServerError, "failed to delete alert")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func toAlertResponse(a store.Alert) AlertResponse {
	return AlertResponse{
		ID:         a.ID,
		ChannelID:  a.ChannelID,
		Chain:      a.Chain,
		ClientType: a.ClientType,
		Threshold:  a.Threshold,
		UserEmail:  a.UserEmail,
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{Error: message})
}
