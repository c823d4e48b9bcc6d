// Package cmd implements the command-line interface for the downloader.
package cmd

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/blaqmajik/laracasts-downloader/auth"
	"github.com/blaqmajik/laracasts-downloader/color"
	"github.com/blaqmajik/laracasts-downloader/engine"
	"github.com/blaqmajik/laracasts-downloader/icon"
	"github.com/blaqmajik/laracasts-downloader/key"
	"github.com/blaqmajik/laracasts-downloader/site"
	"github.com/blaqmajik/laracasts-downloader/style"
	"github.com/blaqmajik/laracasts-downloader/util"
)

func init() {
	rootCmd.AddCommand(episodeCmd)
	rootCmd.AddCommand(seriesCmd)
	rootCmd.AddCommand(lessonCmd)
}

// episodeCmd downloads a single episode of a series.
var episodeCmd = &cobra.Command{
	Use:   "episode [series] [number]",
	Short: "Download a single episode of a series",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		number, err := strconv.Atoi(args[1])
		handleErr(err)

		eng := authenticatedEngine()
		reportOutcome(eng.DownloadEpisode(args[0], number))
	},
}

// seriesCmd downloads every published episode of a series.
var seriesCmd = &cobra.Command{
	Use:   "series [slug]",
	Short: "Download every published episode of a series",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		eng := authenticatedEngine()
		outcomes := eng.DownloadSeries(args[0])
		if len(outcomes) == 0 {
			handleErr(fmt.Errorf("series %s has no published episodes, or does not exist", args[0]))
		}

		for _, outcome := range outcomes {
			reportOutcome(outcome)
		}

		downloaded := 0
		for _, outcome := range outcomes {
			if outcome.Status == engine.Success {
				downloaded++
			}
		}
		fmt.Printf("\n%s %s downloaded\n", icon.Get(icon.Download), util.Quantify(downloaded, "episode", "episodes"))
	},
}

// lessonCmd downloads a standalone lesson.
var lessonCmd = &cobra.Command{
	Use:   "lesson [slug]",
	Short: "Download a standalone lesson",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		eng := authenticatedEngine()
		reportOutcome(eng.DownloadLesson(args[0]))
	},
}

// authenticatedEngine builds an engine and performs the login handshake with
// the stored credentials, exiting with guidance when either is missing.
func authenticatedEngine() *engine.Engine {
	email := viper.GetString(key.SiteEmail)
	if email == "" {
		handleErr(errors.New(`no account configured, run "lara login" first`))
	}

	password, err := auth.GetPassword(email)
	if err != nil {
		handleErr(fmt.Errorf(`no stored password for %s, run "lara login": %w`, email, err))
	}

	eng := engine.New(progressLine())

	result, err := eng.Login(email, password)
	handleErr(err)
	if result != site.Authenticated {
		handleErr(fmt.Errorf("login failed: %s", result))
	}

	return eng
}

// progressLine renders the in-place transfer status line.
func progressLine() func(done, total int64) {
	return func(done, total int64) {
		line := fmt.Sprintf("%s %s / %s", icon.Get(icon.Download), humanize.Bytes(uint64(done)), humanize.Bytes(uint64(total)))
		if total > 0 {
			line += fmt.Sprintf(" (%d%%)", done*100/total)
		}

		// Clamp to the terminal so the carriage-return redraw never wraps
		// onto a second line, which would leave stale lines behind.
		if width, _, err := util.TerminalSize(); err == nil && width > 0 {
			line = line[:util.Min(len(line), width)]
		}

		fmt.Print("\r" + line)
	}
}

// reportOutcome prints a one-line human-readable summary of an operation.
func reportOutcome(outcome engine.Outcome) {
	// Terminate any in-place progress line first.
	fmt.Println()

	switch outcome.Status {
	case engine.Success:
		fmt.Printf("%s %s\n", icon.Get(icon.Success), style.Fg(color.Green)(outcome.String()))
	case engine.Skipped:
		fmt.Printf("%s %s\n", icon.Get(icon.Success), style.Faint(outcome.String()))
	case engine.NotYetAvailable:
		fmt.Printf("%s %s\n", icon.Get(icon.Clock), style.Fg(color.Yellow)(outcome.String()))
	case engine.SubscriptionInactive:
		fmt.Printf("%s %s\n", icon.Get(icon.Lock), style.Fg(color.Red)(outcome.String()))
	case engine.Failed:
		fmt.Printf("%s %s\n", icon.Get(icon.Fail), style.Fg(color.Red)(outcome.String()))
	}
}
