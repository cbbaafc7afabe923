package model

import "time"

// NetworkRecord is one access point reported by a survey.
type NetworkRecord struct {
	SSID    string `json:"ssid"`
	RSSI    int    `json:"rssi"`
	Channel int    `json:"channel"`
	Auth    string `json:"auth"`
}

// ClientRecord is one peer associated with the local access point.
type ClientRecord struct {
	MAC  string `json:"mac"`
	RSSI int    `json:"rssi"`
}

// StatusSnapshot is the live health view served by /api/status. Field
// order is the wire key order.
type StatusSnapshot struct {
	IP      string  `json:"ip"`
	MAC     string  `json:"mac"`
	Uptime  int64   `json:"uptime"`
	Heap    uint64  `json:"heap"`
	TxPower float64 `json:"tx_power"`
	CPUFreq int     `json:"cpu_freq"`
	// TCPRexmit is nil when the host exposes no retransmit counter; the key
	// is then absent from the JSON.
	TCPRexmit   *uint64 `json:"tcp_rexmit,omitempty"`
	Disconnects uint32  `json:"disconnects"`
}

// UplinkReport describes what the station-side uplink looks like from the
// outside, as learned through STUN.
type UplinkReport struct {
	Available  bool   `json:"available"`
	PublicAddr string `json:"public_addr,omitempty"`
	NATType    string `json:"nat,omitempty"`
	Error      string `json:"error,omitempty"`
}

const (
	KindPing     = "ping"
	KindDownload = "download"
	KindUpload   = "upload"
)

// Sample is a single client-side measurement.
type Sample struct {
	Timestamp      time.Time
	Target         string
	Kind           string // ping|download|upload
	Seq            int
	RTTMs          float64
	Bytes          int64
	DurationMs     float64
	ThroughputMbps float64
	Lost           bool
}
