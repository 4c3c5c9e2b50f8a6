package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/certspan/certspan/files/pem"
	"github.com/certspan/certspan/x509der"
	"github.com/spf13/cobra"
)

const timeRounding = time.Minute

// printCmd represents the print command
var printCmd = &cobra.Command{
	Args: cobra.MinimumNArgs(1),
	RunE: runPrint,
	Use:  "print [flags] filenames...",
	Long: `Print certificates.

Takes paths to PEM files and prints out the certificates they contain.`,
}

func init() {
	rootCmd.AddCommand(printCmd)

	printCmd.Flags().BoolP("json", "j", false, "Output as JSON")
}

func runPrint(cmd *cobra.Command, files []string) error {
	asJSON, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}

	certs := make(map[string][]*x509der.Certificate)
	for _, file := range files {
		read, err := os.ReadFile(file)
		if err != nil {
			return err
		}
		these, err := pem.LoadCertificates(read)
		if err != nil {
			return fmt.Errorf("%s: %w", file, err)
		}
		certs[file] = these
	}

	if asJSON {
		return printJSON(certs)
	}

	for _, file := range files {
		for _, cert := range certs[file] {
			printCertificate(file, cert)
		}
	}
	return nil
}

func printJSON(v any) error {
	d, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(d))
	return nil
}

func printCertificate(file string, cert *x509der.Certificate) {
	fmt.Printf("%s:\n", file)
	fmt.Printf("  Version:   %s\n", cert.Version())
	fmt.Printf("  Serial:    %s\n", cert.SerialNumber())
	fmt.Printf("  Subject:   %s\n", cert.Subject())
	fmt.Printf("  Issuer:    %s\n", cert.Issuer())

	validity := cert.Validity()
	fmt.Printf("  NotBefore: %s\n", validity.NotBefore.Time)
	fmt.Printf("  NotAfter:  %s\n", validity.NotAfter.Time)
	if remaining, ok := validity.TimeToExpiration(); ok {
		fmt.Printf("  Expires:   in %s\n", remaining.Round(timeRounding))
	} else {
		fmt.Printf("  Expires:   not currently valid\n")
	}

	if cert.TBSCertificate.IsCA() {
		fmt.Printf("  CA:        true\n")
	}
	if san, _, ok := cert.TBSCertificate.SubjectAlternativeName(); ok {
		if names := san.DNSNames(); len(names) > 0 {
			fmt.Printf("  DNS:       %s\n", strings.Join(names, ", "))
		}
	}
	fmt.Printf("  Extensions:\n")
	for _, ext := range cert.Extensions().All() {
		critical := ""
		if ext.Critical {
			critical = " critical"
		}
		fmt.Printf("    %s%s\n", ext.OID, critical)
	}
}
