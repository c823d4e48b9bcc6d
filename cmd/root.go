// Package cmd implements the command-line interface for the downloader.
package cmd

import (
	"fmt"
	"os"
	"strings"

	cc "github.com/ivanpirog/coloredcobra"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/blaqmajik/laracasts-downloader/constant"
	"github.com/blaqmajik/laracasts-downloader/icon"
	"github.com/blaqmajik/laracasts-downloader/key"
	"github.com/blaqmajik/laracasts-downloader/log"
	"github.com/blaqmajik/laracasts-downloader/version"
)

func init() {
	rootCmd.Flags().BoolP("version", "v", false, "Print the application version")

	rootCmd.PersistentFlags().StringP("icons", "I", "", "Set the visual icon variant (e.g., nerd, emoji, plain)")
	lo.Must0(rootCmd.RegisterFlagCompletionFunc("icons", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return icon.AvailableVariants(), cobra.ShellCompDirectiveDefault
	}))
	lo.Must0(viper.BindPFlag(key.IconsVariant, rootCmd.PersistentFlags().Lookup("icons")))

	rootCmd.PersistentFlags().StringP("dir", "d", "", "Destination directory for downloaded media")
	lo.Must0(viper.BindPFlag(key.DownloadsDir, rootCmd.PersistentFlags().Lookup("dir")))

	rootCmd.PersistentFlags().BoolP("retry", "r", true, "Retry failed transfers up to 3 times")
	lo.Must0(viper.BindPFlag(key.DownloadsRetry, rootCmd.PersistentFlags().Lookup("retry")))

	rootCmd.PersistentFlags().BoolP("force", "f", false, "Re-download items recorded in the ledger")
	lo.Must0(viper.BindPFlag(key.DownloadsForce, rootCmd.PersistentFlags().Lookup("force")))

	helpFunc := rootCmd.HelpFunc()
	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		helpFunc(cmd, args)
		version.Notify()
	})
}

// rootCmd defines the entry point for the lara application.
var rootCmd = &cobra.Command{
	Use:   constant.Lara,
	Short: "A command-line downloader for your screencast subscription",
	Run: func(cmd *cobra.Command, args []string) {
		if cmd.Flags().Changed("version") {
			versionCmd.Run(versionCmd, args)
			return
		}

		lo.Must0(cmd.Help())
	},
}

// Execute initializes child command routing and processes the CLI entry point.
func Execute() {
	if viper.GetBool(key.CliColored) {
		cc.Init(&cc.Config{
			RootCmd:       rootCmd,
			Headings:      cc.HiCyan + cc.Bold + cc.Underline,
			Commands:      cc.HiYellow + cc.Bold,
			Example:       cc.Italic,
			ExecName:      cc.Bold,
			Flags:         cc.Bold,
			FlagsDataType: cc.Italic + cc.HiBlue,
		})
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func handleErr(err error) {
	if err != nil {
		log.Error(err)
		_, _ = fmt.Fprintf(os.Stderr, "%s %s\n", icon.Get(icon.Fail), strings.Trim(err.Error(), " \n"))
		os.Exit(1)
	}
}
