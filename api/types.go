package api

import (
	"github.com/open-ibc/polylens/packet"
)

// ErrorResponse is the JSON body for failed requests.
type ErrorResponse struct {
	Error string `json:"error"`
}

// SearchResponse answers a channel search. Found distinguishes an empty
// channel from one whose packets are merely pending.
type SearchResponse struct {
	Found   bool            `json:"found"`
	Pending int             `json:"pending"`
	Packets []packet.Packet `json:"packets"`
}

// CreateAlertRequest is the body for POST /api/v1/alerts.
type CreateAlertRequest struct {
	ChannelID  string `json:"channelId"`
	Chain      string `json:"chain"`
	ClientType string `json:"clientType"`
	Threshold  uint64 `json:"threshold"`
	UserEmail  string `json:"userEmail"`
}

// AlertResponse is one alert as returned by the API.
type AlertResponse struct {
	ID         uint   `json:"id"`
	ChannelID  string `json:"channelId"`
	Chain      string `json:"chain"`
	ClientType string `json:"clientType"`
	Threshold  uint64 `json:"threshold"`
	UserEmail  string `json:"userEmail"`
}
