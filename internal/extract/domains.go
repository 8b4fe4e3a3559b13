package extract

import (
	"errors"
	"fmt"
	"os"

	"github.com/bl4ck0w1/tlslynx/internal/nmap"
	"github.com/bl4ck0w1/tlslynx/pkg/utils"
)

// DefaultDomainsFile is where DumpDomains writes when no output path
// is given.
const DefaultDomainsFile = "test_domain.txt"

// ErrHostnameMissing marks a host element with no hostname child.
// Unlike vulnerability extraction, the domain dump treats this as
// fatal rather than a silent skip.
var ErrHostnameMissing = errors.New("host missing hostname element")

// DumpDomains writes every hostname in the report to outputPath, one
// per line, preserving document order and duplicates. A malformed
// report or an unwritable output path is downgraded to a warning; a
// missing input file or a host without a hostname aborts the run.
// Lines already written stay on disk when an abort happens mid-file.
func DumpDomains(xmlPath, outputPath string, logger *utils.Logger) error {
	if logger == nil {
		logger = utils.DefaultLogger()
	}
	log := logger.WithComponent("domains")

	if info, err := os.Stat(xmlPath); err != nil || !info.Mode().IsRegular() {
		log.Warnf("file %s does not exist, skipping", xmlPath)
	}

	root, err := nmap.Load(xmlPath)
	if err != nil {
		if errors.Is(err, nmap.ErrMalformed) {
			log.Warnf("file %s is not valid XML, skipping: %v", xmlPath, err)
			return nil
		}
		return err
	}

	f, err := os.Create(outputPath)
	if err != nil {
		log.Warnf("cannot write file %s: %v", outputPath, err)
		return nil
	}
	defer f.Close()

	for _, host := range root.ChildrenNamed("host") {
		hostname := host.First("hostnames/hostname")
		if hostname == nil {
			return fmt.Errorf("%w: %s", ErrHostnameMissing, xmlPath)
		}
		if _, err := fmt.Fprintln(f, hostname.AttrDefault("name", "")); err != nil {
			log.Warnf("cannot write file %s: %v", outputPath, err)
			return nil
		}
	}

	return nil
}
