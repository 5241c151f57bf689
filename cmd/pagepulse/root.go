package main

import (
	"github.com/spf13/cobra"
)

// version is overridden at build time via -ldflags.
var version = "dev"

// NewRootCmd creates the root command for pagepulse.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pagepulse",
		Short: "Monitor page load performance via the PageSpeed Insights API",
		Long: `pagepulse audits the load performance of a configured set of web pages.

Each page is scored sequentially through the PageSpeed Insights API; the
raw result and a derived metrics CSV row are persisted per page, and a
success/failure summary is reported at the end. Failed pages can be
re-run once after confirmation.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(NewRunCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}
