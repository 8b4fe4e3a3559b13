package commands

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/bl4ck0w1/tlslynx/internal/extract"
)

func NewDomainsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "domains <nmap-xml>",
		Short: "Dump every hostname in a report to a text file",
		Long: `Write every hostname found in an Nmap XML report to a text file, one
per line, in document order. Duplicates are kept as-is.`,
		Args: cobra.ExactArgs(1),
		RunE: runDomains,
	}

	cmd.Flags().StringP("output", "o", extract.DefaultDomainsFile, "Output file path")
	_ = viper.BindPFlag("domains.output", cmd.Flags().Lookup("output"))

	return cmd
}

func runDomains(cmd *cobra.Command, args []string) error {
	output := viper.GetString("domains.output")

	if err := extract.DumpDomains(args[0], output, buildLogger()); err != nil {
		return fmt.Errorf("failed to dump domains: %w", err)
	}

	logrus.Infof("Domain dump completed (target %s)", output)
	return nil
}
