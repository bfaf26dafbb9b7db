package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/fjsync/fjsync/internal/config"
)

// newLoginCmd builds the `fjsync login` command. It either accepts an
// existing token or performs an email/password login, then persists the
// token in the config file.
func newLoginCmd() *cobra.Command {
	var withToken bool

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate with the FileJump server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLogin(cmd, withToken)
		},
	}

	cmd.Flags().BoolVar(&withToken, "with-token", false, "enter an existing access token instead of logging in")

	return cmd
}

func runLogin(cmd *cobra.Command, withToken bool) error {
	logger := buildLogger()

	client, err := newClient(logger)
	if err != nil {
		return err
	}

	if withToken {
		token, promptErr := promptSecret("Access token: ")
		if promptErr != nil {
			return promptErr
		}

		loadedCfg.Token = token
	} else {
		email, promptErr := promptLine("Email: ")
		if promptErr != nil {
			return promptErr
		}

		password, promptErr := promptSecret("Password: ")
		if promptErr != nil {
			return promptErr
		}

		// A unique token name per login keeps tokens distinguishable in
		// the user's FileJump account.
		tokenName := fmt.Sprintf("%s-%s", loadedCfg.TokenName, uuid.NewString()[:8])

		token, loginErr := client.Login(cmd.Context(), email, password, tokenName)
		if loginErr != nil {
			return fmt.Errorf("login failed: %w", loginErr)
		}

		loadedCfg.Token = token
	}

	if err := config.Save(cfgPath, loadedCfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	statusf("Logged in. Token saved to %s\n", cfgPath)

	return nil
}

// promptLine reads one line of input from stdin.
func promptLine(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)

	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("reading input: %w", err)
	}

	return strings.TrimSpace(line), nil
}

// promptSecret reads a line without echoing when stdin is a terminal.
func promptSecret(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)

	if term.IsTerminal(int(os.Stdin.Fd())) {
		secret, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(os.Stderr)

		if err != nil {
			return "", fmt.Errorf("reading secret: %w", err)
		}

		return strings.TrimSpace(string(secret)), nil
	}

	return promptLine("")
}
