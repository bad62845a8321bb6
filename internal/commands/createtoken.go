package commands

import (
	"fmt"
	"time"

	"axiapac.com/backoffice/security"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	tokenUserID uint
	tokenName   string
	tokenEmail  string
	tokenTTL    time.Duration
)

var createTokenCmd = &cobra.Command{
	Use:   "create-token",
	Short: "Sign a development identity token",
	RunE: func(cmd *cobra.Command, args []string) error {
		secret, err := security.DecodeSecret(cfg.Auth.SigningSecret)
		if err != nil {
			return err
		}

		ttl := tokenTTL
		if ttl == 0 {
			ttl = cfg.Auth.TokenTTL
		}

		token, err := security.CreateIdentityToken(&security.UserIdentity{
			ID:       tokenUserID,
			UserName: tokenName,
			Email:    tokenEmail,
			Provider: "cli",
		}, secret, security.TokenOptions{
			Issuer:    cfg.Auth.Issuer,
			SessionID: uuid.NewString(),
			TTL:       ttl,
		})
		if err != nil {
			return err
		}

		fmt.Println(token)
		return nil
	},
}

func init() {
	createTokenCmd.Flags().UintVar(&tokenUserID, "user-id", 0, "user id placed in the nameid claim")
	createTokenCmd.Flags().StringVar(&tokenName, "name", "", "user name")
	createTokenCmd.Flags().StringVar(&tokenEmail, "email", "", "user email")
	createTokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 0, "token lifetime (default: auth.token_ttl)")
	createTokenCmd.MarkFlagRequired("user-id")
}
