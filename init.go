package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/phobologic/codeexplain/internal/config"
)

// initCommand implements `codeexplain init`, which writes (or updates) an API
// key in a .env file without touching the file's other lines.
func (a *app) initCommand() *cobra.Command {
	var (
		envFile string
		varName string
		key     string
		dryRun  bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Store an API key in a .env file",
		Long: `Store an API key in a .env file. An existing assignment of the same variable
is replaced in place; every other line is preserved. The file is created if it
does not exist. Without --key the key is read from the terminal (hidden) or
from stdin.`,
		Args: cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			if varName != config.EnvGeminiKey && varName != config.EnvOpenAIKey {
				return fmt.Errorf("unsupported variable %q (want %s or %s)", varName, config.EnvGeminiKey, config.EnvOpenAIKey)
			}
			if key == "" {
				read, err := a.promptSecret("Enter " + varName + ": ")
				if err != nil {
					return err
				}
				key = read
			}
			key = strings.TrimSpace(key)
			if key == "" {
				return errors.New("no key given")
			}

			existing, err := os.ReadFile(envFile)
			if err != nil && !errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("reading %s: %w", envFile, err)
			}

			if dryRun {
				_, _ = fmt.Fprint(a.stdout, applyEnvVar(string(existing), varName, maskSecret(key)))
				return nil
			}

			updated := applyEnvVar(string(existing), varName, key)
			parsed, err := godotenv.Unmarshal(updated)
			if err != nil {
				return fmt.Errorf("%s would not parse after update: %w", envFile, err)
			}
			if parsed[varName] != key {
				return fmt.Errorf("%s: key did not round-trip", envFile)
			}

			if err := os.WriteFile(envFile, []byte(updated), 0o600); err != nil {
				return fmt.Errorf("writing %s: %w", envFile, err)
			}
			_, _ = fmt.Fprintf(a.stderr, "wrote %s to %s\n", varName, envFile)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&envFile, "env-file", ".env", "path of the .env file to update")
	f.StringVar(&varName, "var", config.EnvGeminiKey, "variable to set ("+config.EnvGeminiKey+" or "+config.EnvOpenAIKey+")")
	f.StringVar(&key, "key", "", "key value (prompted for when omitted)")
	f.BoolVar(&dryRun, "dry-run", false, "print the updated file with the key masked instead of writing it")
	return cmd
}

// promptSecret reads one line, hiding input when stdin is a terminal.
func (a *app) promptSecret(prompt string) (string, error) {
	if f, ok := a.stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		_, _ = fmt.Fprint(a.stderr, prompt)
		b, err := term.ReadPassword(int(f.Fd()))
		_, _ = fmt.Fprintln(a.stderr)
		if err != nil {
			return "", fmt.Errorf("reading key: %w", err)
		}
		return string(b), nil
	}
	line, err := bufio.NewReader(a.stdin).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("reading key: %w", err)
	}
	return line, nil
}

// applyEnvVar sets name=value in .env content, replacing an existing
// assignment (with or without "export") or appending one. It is a pure
// function for easy testing.
func applyEnvVar(content, name, value string) string {
	line := name + "=" + quoteEnvValue(value)

	var out []string
	replaced := false
	for _, l := range strings.Split(content, "\n") {
		trimmed := strings.TrimPrefix(strings.TrimSpace(l), "export ")
		if strings.HasPrefix(trimmed, name+"=") || strings.HasPrefix(trimmed, name+" =") {
			// later duplicates are dropped
			if !replaced {
				out = append(out, line)
				replaced = true
			}
			continue
		}
		out = append(out, l)
	}
	if replaced {
		return strings.Join(out, "\n")
	}

	if len(content) > 0 && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	return content + line + "\n"
}

func quoteEnvValue(v string) string {
	if !strings.ContainsAny(v, " \t#\"'\\$=") {
		return v
	}
	if !strings.Contains(v, "'") {
		return "'" + v + "'"
	}
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`)
	return `"` + r.Replace(v) + `"`
}

func maskSecret(s string) string {
	if len(s) <= 8 {
		return strings.Repeat("*", len(s))
	}
	return s[:4] + strings.Repeat("*", len(s)-8) + s[len(s)-4:]
}
