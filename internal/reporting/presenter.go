package reporting

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pterm/pterm"

	"github.com/bl4ck0w1/tlslynx/pkg/models"
	"github.com/bl4ck0w1/tlslynx/pkg/utils"
)

const (
	colID   = 6
	colHost = 36
	colIP   = 20
	colPort = 8

	hostDisplayMax  = 34
	protocolsHeader = "Vulnerable Protocols"
)

// widestProtocols sizes the separator rule to the longest value the
// protocols column can carry.
var widestProtocols = models.ProtocolTLS10 + models.ProtocolSeparator + models.ProtocolTLS11

type Presenter struct {
	out    io.Writer
	pretty bool
}

func NewPresenter(out io.Writer, pretty bool) *Presenter {
	if out == nil {
		out = os.Stdout
	}
	return &Presenter{out: out, pretty: pretty}
}

// Table renders the record sequence as an aligned console listing with
// 1-based ordinals. Host names longer than 34 characters are truncated
// to keep the columns lined up.
func (p *Presenter) Table(records []models.VulnerabilityRecord) {
	if p.pretty {
		p.prettyTable(records)
		return
	}

	if len(records) == 0 {
		fmt.Fprintln(p.out, "no hosts supporting deprecated protocols found")
		return
	}

	lineLen := colID + colHost + colIP + colPort + max(len(protocolsHeader), len(widestProtocols))

	fmt.Fprintf(p.out, "\n%-*s%-*s%-*s%-*s%s\n",
		colID, "ID", colHost, "Host", colIP, "IP", colPort, "Port", protocolsHeader)
	fmt.Fprintln(p.out, strings.Repeat("-", lineLen))
	for i, r := range records {
		fmt.Fprintf(p.out, "%-*d%-*s%-*s%-*s%s\n",
			colID, i+1,
			colHost, utils.TruncateString(r.Host, hostDisplayMax),
			colIP, r.IPAddr,
			colPort, r.Port,
			r.Protocols)
	}
	fmt.Fprintln(p.out, strings.Repeat("-", lineLen))
}

func (p *Presenter) prettyTable(records []models.VulnerabilityRecord) {
	if len(records) == 0 {
		pterm.Info.WithWriter(p.out).Println("no hosts supporting deprecated protocols found")
		return
	}

	data := pterm.TableData{{"ID", "Host", "IP", "Port", protocolsHeader}}
	for i, r := range records {
		data = append(data, []string{
			fmt.Sprintf("%d", i+1),
			utils.TruncateString(r.Host, hostDisplayMax),
			r.IPAddr,
			r.Port,
			r.Protocols,
		})
	}

	if err := pterm.DefaultTable.WithWriter(p.out).WithHasHeader().WithData(data).Render(); err != nil {
		plain := &Presenter{out: p.out}
		plain.Table(records)
	}
}

// Summary prints run totals after a batch completes.
func (p *Presenter) Summary(result *models.ParseResult) {
	if result == nil {
		return
	}

	if p.pretty {
		pterm.Success.WithWriter(p.out).Printfln("parsed %d/%d files, %d records%s in %s",
			result.Stats.FilesParsed, result.Stats.FilesTotal,
			result.Stats.RecordsExtracted, protocolBreakdown(result), utils.HumanizeDuration(result.Duration()))
		if result.Stats.FilesFailed > 0 {
			pterm.Warning.WithWriter(p.out).Printfln("%d file(s) could not be parsed", result.Stats.FilesFailed)
		}
		return
	}

	fmt.Fprintf(p.out, "parsed %d/%d files, %d records%s in %s\n",
		result.Stats.FilesParsed, result.Stats.FilesTotal,
		result.Stats.RecordsExtracted, protocolBreakdown(result), utils.HumanizeDuration(result.Duration()))
	if result.Stats.FilesFailed > 0 {
		fmt.Fprintf(p.out, "%d file(s) could not be parsed\n", result.Stats.FilesFailed)
	}
}

// protocolBreakdown renders the per-protocol tally in marker order.
func protocolBreakdown(result *models.ParseResult) string {
	if len(result.Records) == 0 {
		return ""
	}
	counts := result.CountByProtocol()
	return fmt.Sprintf(" (%s: %d, %s: %d)",
		models.ProtocolTLS10, counts[models.ProtocolTLS10],
		models.ProtocolTLS11, counts[models.ProtocolTLS11])
}
