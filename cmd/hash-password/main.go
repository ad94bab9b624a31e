// Command hash-password prints an argon2id hash for PMCELL_ADMIN_PASSWORD_HASH.
// The password is read from -password or, when that is empty, from the first
// line of stdin.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/pmcell/catalog-backend/pkg/config"
	"github.com/pmcell/catalog-backend/pkg/security"
)

func main() {
	_ = godotenv.Load()

	password := flag.String("password", "", "password to hash (default: first line of stdin)")
	flag.Parse()

	cfg, err := config.LoadPassword()
	if err != nil {
		fail("config: %v", err)
	}
	if err := run(os.Stdin, os.Stdout, *password, cfg); err != nil {
		fail("hash-password: %v", err)
	}
}

func run(in io.Reader, out io.Writer, password string, cfg config.PasswordConfig) error {
	if password == "" {
		line, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && err != io.EOF {
			return fmt.Errorf("read password: %w", err)
		}
		password = strings.TrimRight(line, "\r\n")
	}
	hash, err := security.HashPassword(password, cfg)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, hash)
	return err
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
