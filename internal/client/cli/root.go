package cli

import (
	"fmt"
	"os"

	"github.com/dmitrijs2005/checkpay/internal/client/client"
	"github.com/spf13/cobra"
)

// ServerURLEnv overrides the default server URL.
const ServerURLEnv = "CHECKPAY_SERVER_URL"

const defaultServerURL = "http://localhost:8080"

type app struct {
	serverURL string
}

func (a *app) client() *client.HTTPClient {
	return client.NewHTTPClient(a.serverURL, nil)
}

func NewRootCmd(version, buildDate string) *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "checkpay",
		Short:         "Check payment logger CLI",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	def := defaultServerURL
	if v, ok := os.LookupEnv(ServerURLEnv); ok && v != "" {
		def = v
	}
	root.PersistentFlags().StringVar(&a.serverURL, "server", def, "Server base URL")

	root.AddCommand(newVersionCmd(version, buildDate))
	root.AddCommand(newLoginCmd(a))
	root.AddCommand(newLogoutCmd())
	root.AddCommand(newAddCmd(a))
	root.AddCommand(newListCmd(a))
	root.AddCommand(newHealthCmd(a))
	return root
}

func newVersionCmd(version, buildDate string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version info",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "checkpay %s (%s)\n", version, buildDate)
		},
	}
}
