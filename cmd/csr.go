package cmd

import (
	"fmt"
	"os"

	"github.com/certspan/certspan/files/pem"
	"github.com/certspan/certspan/x509der"
	"github.com/spf13/cobra"
)

// csrCmd represents the csr command
var csrCmd = &cobra.Command{
	Args: cobra.MinimumNArgs(1),
	RunE: runCSR,
	Use:  "csr [flags] filenames...",
	Long: `Print certification requests.

Takes paths to PEM files and prints out the PKCS#10 requests they contain.`,
}

func init() {
	rootCmd.AddCommand(csrCmd)

	csrCmd.Flags().BoolP("json", "j", false, "Output as JSON")
}

func runCSR(cmd *cobra.Command, files []string) error {
	asJSON, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}

	csrs := make(map[string][]*x509der.CertificationRequest)
	for _, file := range files {
		read, err := os.ReadFile(file)
		if err != nil {
			return err
		}
		these, err := pem.LoadCertificateRequests(read)
		if err != nil {
			return fmt.Errorf("%s: %w", file, err)
		}
		csrs[file] = these
	}

	if asJSON {
		return printJSON(csrs)
	}

	for _, file := range files {
		for _, csr := range csrs[file] {
			printCSR(file, csr)
		}
	}
	return nil
}

func printCSR(file string, csr *x509der.CertificationRequest) {
	fmt.Printf("%s:\n", file)
	fmt.Printf("  Version:   %s\n", csr.Version())
	fmt.Printf("  Subject:   %s\n", csr.Subject())
	fmt.Printf("  Algorithm: %s\n", csr.CertificationRequestInfo.SubjectPublicKeyInfo.Algorithm.Algorithm)

	if extensions, ok := csr.RequestedExtensions(); ok {
		fmt.Printf("  Requested extensions:\n")
		for _, ext := range extensions.All() {
			critical := ""
			if ext.Critical {
				critical = " critical"
			}
			fmt.Printf("    %s%s\n", ext.OID, critical)
		}
	}
	if _, ok := csr.ChallengePassword(); ok {
		fmt.Printf("  ChallengePassword: (present)\n")
	}
}
