// setup.go implements the "insight setup" command that stores credentials.
package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/asleep-ai/skills/internal/auth"
	"github.com/asleep-ai/skills/internal/config"
	"github.com/asleep-ai/skills/internal/ui"
)

var (
	userID           string
	accessToken      string
	refreshToken     string
	accessExpiresIn  int64
	refreshExpiresIn int64
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Store SleepHub credentials",
	Long: `Store the user id and token pair obtained from the SleepHub app.
Tokens are written to user.json in the state directory, readable only by
the owning user, and rotated automatically on refresh from then on.`,
	RunE: runSetup,
}

func runSetup(cmd *cobra.Command, args []string) error {
	stateDir, err := config.StateDir()
	if err != nil {
		return err
	}

	creds := &auth.Credentials{
		UserID:       userID,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}
	// Expiries are optional: when the app does not report them, validity
	// is learned reactively from the first rejected call.
	now := time.Now()
	if accessExpiresIn > 0 {
		creds.AccessExpiresAt = now.Add(time.Duration(accessExpiresIn) * time.Second)
	}
	if refreshExpiresIn > 0 {
		creds.RefreshExpiresAt = now.Add(time.Duration(refreshExpiresIn) * time.Second)
	}

	store := auth.NewStore(stateDir)
	if err := store.Save(creds); err != nil {
		return err
	}

	ui.Errorf("Setup complete. Credentials saved to %s", store.Path())
	return nil
}

func init() {
	setupCmd.Flags().StringVar(&userID, "user-id", "", "SleepHub user id")
	setupCmd.Flags().StringVar(&accessToken, "access-token", "", "Access token")
	setupCmd.Flags().StringVar(&refreshToken, "refresh-token", "", "Refresh token")
	setupCmd.Flags().Int64Var(&accessExpiresIn, "access-expires-in", 0, "Access token lifetime in seconds, if known")
	setupCmd.Flags().Int64Var(&refreshExpiresIn, "refresh-expires-in", 0, "Refresh token lifetime in seconds, if known")

	_ = setupCmd.MarkFlagRequired("user-id")
	_ = setupCmd.MarkFlagRequired("access-token")
	_ = setupCmd.MarkFlagRequired("refresh-token")
}
