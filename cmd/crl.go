package cmd

import (
	"fmt"
	"os"

	"github.com/certspan/certspan/files/pem"
	"github.com/certspan/certspan/x509der"
	"github.com/spf13/cobra"
)

// crlCmd represents the crl command
var crlCmd = &cobra.Command{
	Args: cobra.MinimumNArgs(1),
	RunE: runCRL,
	Use:  "crl [flags] filenames...",
	Long: `Print certificate revocation lists.

Takes paths to PEM files and prints out the CRLs they contain.`,
}

func init() {
	rootCmd.AddCommand(crlCmd)

	crlCmd.Flags().BoolP("json", "j", false, "Output as JSON")
}

func runCRL(cmd *cobra.Command, files []string) error {
	asJSON, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}

	crls := make(map[string][]*x509der.CertificateRevocationList)
	for _, file := range files {
		read, err := os.ReadFile(file)
		if err != nil {
			return err
		}
		these, err := pem.LoadCertificateLists(read)
		if err != nil {
			return fmt.Errorf("%s: %w", file, err)
		}
		crls[file] = these
	}

	if asJSON {
		return printJSON(crls)
	}

	for _, file := range files {
		for _, crl := range crls[file] {
			printCRL(file, crl)
		}
	}
	return nil
}

func printCRL(file string, crl *x509der.CertificateRevocationList) {
	fmt.Printf("%s:\n", file)
	fmt.Printf("  Version:    %s\n", crl.Version())
	fmt.Printf("  Issuer:     %s\n", crl.Issuer())
	fmt.Printf("  LastUpdate: %s\n", crl.LastUpdate().Time)
	if next, ok := crl.NextUpdate(); ok {
		fmt.Printf("  NextUpdate: %s\n", next.Time)
	}
	if number, ok := crl.CRLNumber(); ok {
		fmt.Printf("  Number:     %s\n", number)
	}

	revoked := crl.RevokedCertificates()
	fmt.Printf("  Revoked:    %d\n", len(revoked))
	for _, entry := range revoked {
		fmt.Printf("    %s  %s  %s\n", entry.SerialNumber, entry.RevocationDate.Time, entry.ReasonCode())
	}
}
