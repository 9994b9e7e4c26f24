package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"jobboard/internal/secrets"
)

func newSecretsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "secrets",
		Short: "Manage the database password in the OS keychain",
	}

	account := func() (string, error) {
		acct := strings.TrimSpace(a.cfg.Store.PasswordKeyringAccount)
		if acct == "" {
			return "", errors.New("store.password_keyring_account is not set")
		}
		return acct, nil
	}

	setCmd := &cobra.Command{
		Use:   "set-db-password",
		Short: "Read the password from stdin and store it in the keychain",
		RunE: func(cmd *cobra.Command, _ []string) error {
			acct, err := account()
			if err != nil {
				return err
			}
			line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if err != nil && line == "" {
				return fmt.Errorf("read password: %w", err)
			}
			if err := secrets.SetDBPassword(acct, strings.TrimRight(line, "\r\n")); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "stored password for", acct)
			return nil
		},
	}

	deleteCmd := &cobra.Command{
		Use:   "delete-db-password",
		Short: "Remove the password from the keychain",
		RunE: func(cmd *cobra.Command, _ []string) error {
			acct, err := account()
			if err != nil {
				return err
			}
			return secrets.DeleteDBPassword(acct)
		},
	}

	cmd.AddCommand(setCmd, deleteCmd)
	return cmd
}
