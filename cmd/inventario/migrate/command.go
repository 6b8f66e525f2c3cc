package migrate

import (
	"github.com/spf13/cobra"

	"github.com/ipsfa/inventario-client/internal/business"
	"github.com/ipsfa/inventario-client/internal/cmdutils"
)

func Cmd(buildInfo string) *cobra.Command {
	return cmdutils.CobraCommand(
		"migrate",
		"Apply the token store migrations",
		"Creates or upgrades the client_tokens table used by the postgres token store.",
		buildInfo,
		cmdutils.RunAsJob,
		business.MigrateMain,
	)
}
