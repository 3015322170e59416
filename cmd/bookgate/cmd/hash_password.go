package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/book-gate/bookgate/internal/domain/auth"
)

var hashPasswordCmd = &cobra.Command{
	Use:   "hash-password [password]",
	Short: "Generate an Argon2id hash for an account password",
	Long: `Generate an Argon2id hash of a password for use in config.

The output is a PHC-format string that goes directly into the
auth.accounts[].password_hash field.

Example:
  bookgate hash-password "s3cret"
  # Output: $argon2id$v=19$m=48128,t=1,p=1$...

Security note: The password will appear in shell history.
Consider clearing history after use or using an environment variable:
  bookgate hash-password "$MY_PASSWORD"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		hash, err := auth.HashPassword(args[0])
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}
		fmt.Println(hash)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(hashPasswordCmd)
}
