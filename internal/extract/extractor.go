package extract

import (
	"strings"

	"github.com/bl4ck0w1/tlslynx/internal/nmap"
	"github.com/bl4ck0w1/tlslynx/pkg/models"
)

// protocolMarkers is checked in this fixed order; the order decides
// how a multi-protocol finding reads, not the order the markers appear
// in the script output.
var protocolMarkers = []string{models.ProtocolTLS10, models.ProtocolTLS11}

// Extract walks the host/port/script structure of a parsed report and
// returns one record per port whose script output mentions a deprecated
// TLS version. Hosts without a resolvable name and address are skipped
// whole; ports without script output are skipped quietly. Sparse scan
// data is expected, so none of these skips are errors.
func Extract(root *nmap.Node) []models.VulnerabilityRecord {
	var records []models.VulnerabilityRecord

	for _, host := range root.ChildrenNamed("host") {
		hostnameNode := host.First("hostnames/hostname")
		addressNode := host.First("address")
		if hostnameNode == nil || addressNode == nil {
			continue
		}

		hostname, ok := hostnameNode.Attr("name")
		if !ok {
			continue
		}
		ipAddr, ok := addressNode.Attr("addr")
		if !ok {
			continue
		}

		// Ports can sit under a <ports> wrapper or deeper, depending
		// on scanner version, so search the whole host subtree.
		for _, port := range host.Descendants("port") {
			script := port.First("script")
			if script == nil {
				continue
			}
			output := script.AttrDefault("output", "")

			var protocols []string
			for _, marker := range protocolMarkers {
				if strings.Contains(output, marker) {
					protocols = append(protocols, marker)
				}
			}
			if len(protocols) == 0 {
				continue
			}

			records = append(records, models.VulnerabilityRecord{
				Host:      hostname,
				IPAddr:    ipAddr,
				Port:      port.AttrDefault("portid", models.PortUnknown),
				Protocols: strings.Join(protocols, models.ProtocolSeparator),
			})
		}
	}

	return records
}
