package radio

import (
	"math"
	"net"
	"strconv"
	"strings"
)

// ParseScan parses `iw dev <if> scan` output. Entries keep the order in
// which iw printed them.
func ParseScan(out string) []BSS {
	var (
		entries []BSS
		cur     *scanEntry
	)
	flush := func() {
		if cur != nil {
			entries = append(entries, cur.bss())
		}
	}

	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(line, "BSS ") {
			flush()
			cur = &scanEntry{}
			cur.BSSID = parseMAC(strings.TrimPrefix(line, "BSS "))
			continue
		}
		if cur == nil {
			continue
		}
		cur.parseLine(line)
	}
	flush()
	return entries
}

type section int

const (
	sectionNone section = iota
	sectionRSN
	sectionWPA
)

type scanEntry struct {
	BSS
	freq      int
	privacy   bool
	hasRSN    bool
	hasWPA    bool
	rsnSuites []string
	wpaSuites []string
	section   section
}

func (e *scanEntry) parseLine(line string) {
	depth := len(line) - len(strings.TrimLeft(line, "\t"))
	text := strings.TrimSpace(line)

	if depth == 1 {
		e.section = sectionNone
		switch {
		case strings.HasPrefix(text, "RSN:"):
			e.section = sectionRSN
			e.hasRSN = true
		case strings.HasPrefix(text, "WPA:"):
			e.section = sectionWPA
			e.hasWPA = true
		}
	}

	// Suite lines sit under RSN/WPA; the header line itself may carry the
	// first item after a tab.
	if i := strings.Index(text, "* Authentication suites:"); i >= 0 {
		suites := strings.Fields(text[i+len("* Authentication suites:"):])
		switch e.section {
		case sectionRSN:
			e.rsnSuites = append(e.rsnSuites, suites...)
		case sectionWPA:
			e.wpaSuites = append(e.wpaSuites, suites...)
		}
		return
	}

	key, value, ok := strings.Cut(text, ":")
	if !ok {
		return
	}
	value = strings.TrimSpace(value)

	switch key {
	case "SSID":
		e.SSID = value
	case "signal":
		e.RSSI = parseDBm(value)
	case "freq":
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			e.freq = int(f)
		}
	case "capability":
		e.privacy = strings.Contains(value, "Privacy")
	case "DS Parameter set":
		if ch, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(value, "channel"))); err == nil {
			e.Channel = ch
		}
	case "* primary channel":
		if e.Channel == 0 {
			if ch, err := strconv.Atoi(value); err == nil {
				e.Channel = ch
			}
		}
	}
}

func (e *scanEntry) bss() BSS {
	out := e.BSS
	if out.Channel == 0 {
		out.Channel = FreqToChannel(e.freq)
	}
	out.Auth = classifyAuth(e.privacy, e.hasRSN, e.hasWPA, e.rsnSuites, e.wpaSuites)
	return out
}

func classifyAuth(privacy, hasRSN, hasWPA bool, rsn, wpa []string) AuthMode {
	rsnPSK := containsSuite(rsn, "PSK")
	rsnSAE := containsSuite(rsn, "SAE")
	rsnEAP := containsSuite(rsn, "802.1X")
	wpaPSK := containsSuite(wpa, "PSK")

	switch {
	case hasRSN && rsnSAE && rsnPSK:
		return AuthWPA2WPA3PSK
	case hasRSN && rsnSAE:
		return AuthWPA3PSK
	case hasRSN && rsnEAP:
		return AuthWPA2Enterprise
	case hasRSN && rsnPSK && wpaPSK:
		return AuthWPAWPA2PSK
	case hasRSN && rsnPSK:
		return AuthWPA2PSK
	case hasRSN && containsSuite(rsn, "OWE"):
		return AuthOWE
	case !hasRSN && hasWPA && wpaPSK:
		return AuthWPAPSK
	case hasRSN || hasWPA:
		return AuthUnrecognized
	case privacy:
		return AuthWEP
	default:
		return AuthOpen
	}
}

func containsSuite(suites []string, want string) bool {
	for _, s := range suites {
		if s == want {
			return true
		}
	}
	return false
}

// FreqToChannel maps a centre frequency in MHz to its 802.11 channel
// number. Unknown frequencies map to 0.
func FreqToChannel(freq int) int {
	switch {
	case freq == 2484:
		return 14
	case freq >= 2412 && freq < 2484:
		return (freq - 2407) / 5
	case freq >= 5160 && freq <= 5885:
		return (freq - 5000) / 5
	case freq >= 5955 && freq <= 7115:
		return (freq - 5950) / 5
	default:
		return 0
	}
}

// ParseStationDump parses `iw dev <if> station dump` output.
func ParseStationDump(out string) []Station {
	var stations []Station
	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(line, "Station ") {
			stations = append(stations, Station{MAC: parseMAC(strings.TrimPrefix(line, "Station "))})
			continue
		}
		if len(stations) == 0 {
			continue
		}
		key, value, ok := strings.Cut(strings.TrimSpace(line), ":")
		if !ok || key != "signal" {
			continue
		}
		stations[len(stations)-1].RSSI = parseDBm(value)
	}
	return stations
}

// ParseInfo parses `iw dev <if> info` output.
func ParseInfo(out string) Info {
	var info Info
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		switch fields[0] {
		case "addr":
			info.MAC = parseMAC(fields[1])
		case "txpower":
			if dbm, err := strconv.ParseFloat(fields[1], 64); err == nil {
				info.TxPowerQuarterDBm = int(math.Round(dbm * 4))
				info.HasTxPower = true
			}
		}
	}
	return info
}

// ParseEvent parses one line of `iw event` output. ok is false for lines
// that are not interface notifications.
func ParseEvent(line string) (Event, bool) {
	head, rest, ok := strings.Cut(strings.TrimSpace(line), ": ")
	if !ok {
		return Event{}, false
	}
	fields := strings.Fields(head)
	if len(fields) == 0 {
		return Event{}, false
	}
	ev := Event{Interface: fields[0]}

	switch {
	case strings.HasPrefix(rest, "new station "):
		ev.Kind = EventStationConnected
		ev.Peer = firstField(strings.TrimPrefix(rest, "new station "))
	case strings.HasPrefix(rest, "del station "):
		ev.Kind = EventStationDisconnected
		ev.Peer = firstField(strings.TrimPrefix(rest, "del station "))
	case strings.HasPrefix(rest, "connected to "):
		ev.Kind = EventConnected
		ev.Peer = firstField(strings.TrimPrefix(rest, "connected to "))
	case strings.HasPrefix(rest, "disconnected"):
		ev.Kind = EventDisconnected
	default:
		ev.Kind = EventUnknown
	}
	return ev, true
}

func firstField(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// parseMAC reads the leading hardware address of s, e.g.
// "00:11:22:33:44:55(on wlan0)".
func parseMAC(s string) net.HardwareAddr {
	s = strings.TrimSpace(s)
	if len(s) >= 17 {
		s = s[:17]
	}
	mac, err := net.ParseMAC(s)
	if err != nil {
		return nil
	}
	return mac
}

// parseDBm reads the leading number of values like "-45.00 dBm" or
// "-42 [-44, -45] dBm".
func parseDBm(value string) int {
	f, err := strconv.ParseFloat(firstField(value), 64)
	if err != nil {
		return 0
	}
	return int(math.Round(f))
}
