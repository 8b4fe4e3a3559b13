package models

import (
	"fmt"
	"strings"
)

const (
	ProtocolTLS10 = "TLSv1.0"
	ProtocolTLS11 = "TLSv1.1"

	// PortUnknown is recorded when a port element carries no portid attribute.
	PortUnknown = "unknown"

	// ProtocolSeparator joins multiple matched protocol labels into the
	// display string stored on a record.
	ProtocolSeparator = " & "
)

// VulnerabilityRecord is one finding: a scanned service that still accepts a
// deprecated TLS protocol. Records are immutable once extracted; ordinal IDs
// are assigned at export/print time and never stored on the record.
type VulnerabilityRecord struct {
	Host      string `json:"host" yaml:"host"`
	IPAddr    string `json:"ip_addr" yaml:"ip_addr"`
	Port      string `json:"port" yaml:"port"`
	Protocols string `json:"protocols" yaml:"protocols"`
}

func (r *VulnerabilityRecord) Validate() error {
	var problems []string

	if r.Host == "" {
		problems = append(problems, "host is required")
	}
	if r.IPAddr == "" {
		problems = append(problems, "ip_addr is required")
	}
	if r.Port == "" {
		problems = append(problems, "port is required")
	}
	if r.Protocols == "" {
		problems = append(problems, "protocols is required")
	}

	if len(problems) > 0 {
		return fmt.Errorf("record validation failed:\n  - %s", strings.Join(problems, "\n  - "))
	}
	return nil
}

// ProtocolList splits the joined protocols field back into individual labels.
func (r *VulnerabilityRecord) ProtocolList() []string {
	if r.Protocols == "" {
		return nil
	}
	return strings.Split(r.Protocols, ProtocolSeparator)
}

func (r *VulnerabilityRecord) HasProtocol(label string) bool {
	for _, p := range r.ProtocolList() {
		if p == label {
			return true
		}
	}
	return false
}

func (r *VulnerabilityRecord) String() string {
	return fmt.Sprintf("%s (%s) port %s: %s", r.Host, r.IPAddr, r.Port, r.Protocols)
}
