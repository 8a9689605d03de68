// AngelaMos | 2026
// keygen.go

package main

import (
	"github.com/spf13/cobra"

	"github.com/carterperez-dev/templates/blog-api/internal/auth"
)

var (
	privateKeyOut string
	publicKeyOut  string
)

var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Generate an ES256 key pair for signing access tokens",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := auth.GenerateKeyPair(privateKeyOut, publicKeyOut); err != nil {
			return err
		}

		cmd.Printf("wrote %s and %s\n", privateKeyOut, publicKeyOut)
		return nil
	},
}

func init() {
	keygenCmd.Flags().StringVar(&privateKeyOut, "private", "keys/private.pem", "private key output path")
	keygenCmd.Flags().StringVar(&publicKeyOut, "public", "keys/public.pem", "public key output path")
	rootCmd.AddCommand(keygenCmd)
}
