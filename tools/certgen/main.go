// Package main generates a Certificate Authority (CA) and a server
// certificate for the budget API, writing them under the "certs" directory.
// An existing CA in that directory is reused.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/atinyakov/ebudget/internal/certgen"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "certgen:", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	fset := flag.NewFlagSet("certgen", flag.ContinueOnError)
	fset.SetOutput(out)
	dir := fset.String("dir", "certs", "output directory")
	hosts := fset.String("hosts", "localhost,127.0.0.1", "comma separated server names")
	if err := fset.Parse(args); err != nil {
		return err
	}

	caCertPath := filepath.Join(*dir, "ca.crt")
	caKeyPath := filepath.Join(*dir, "ca.key")
	caCert, caKey, err := certgen.LoadCACredentials(caCertPath, caKeyPath)
	if errors.Is(err, fs.ErrNotExist) {
		certPEM, keyPEM, genErr := certgen.GenerateCA("ebudget CA")
		if genErr != nil {
			return genErr
		}
		if err := certgen.WritePair(*dir, "ca", certPEM, keyPEM); err != nil {
			return err
		}
		caCert, caKey, err = certgen.ParseCA(certPEM, keyPEM)
		fmt.Fprintln(out, "generated new CA")
	}
	if err != nil {
		return err
	}

	certPEM, keyPEM, err := certgen.GenerateServerCertificate(strings.Split(*hosts, ","), caCert, caKey)
	if err != nil {
		return err
	}
	if err := certgen.WritePair(*dir, "server", certPEM, keyPEM); err != nil {
		return err
	}
	fmt.Fprintf(out, "Certificates generated into %s\n", *dir)
	return nil
}
