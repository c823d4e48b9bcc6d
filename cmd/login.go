// Package cmd implements the command-line interface for the downloader.
package cmd

import (
	"fmt"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/blaqmajik/laracasts-downloader/auth"
	"github.com/blaqmajik/laracasts-downloader/color"
	"github.com/blaqmajik/laracasts-downloader/engine"
	"github.com/blaqmajik/laracasts-downloader/icon"
	"github.com/blaqmajik/laracasts-downloader/key"
	"github.com/blaqmajik/laracasts-downloader/site"
	"github.com/blaqmajik/laracasts-downloader/style"
)

func init() {
	rootCmd.AddCommand(loginCmd)
}

// loginCmd performs the login handshake and persists the credentials:
// the email in the configuration file, the password in the system keyring.
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authenticate against the site and store the credentials",
	Run: func(cmd *cobra.Command, args []string) {
		var answers struct {
			Email    string
			Password string
		}

		questions := []*survey.Question{
			{
				Name: "email",
				Prompt: &survey.Input{
					Message: "Email:",
					Default: viper.GetString(key.SiteEmail),
				},
				Validate: survey.Required,
			},
			{
				Name:     "password",
				Prompt:   &survey.Password{Message: "Password:"},
				Validate: survey.Required,
			},
		}

		handleErr(survey.Ask(questions, &answers))

		eng := engine.New(nil)
		result, err := eng.Login(answers.Email, answers.Password)
		handleErr(err)

		if result != site.Authenticated {
			handleErr(fmt.Errorf("login failed: %s", result))
		}

		viper.Set(key.SiteEmail, answers.Email)
		handleErr(viper.WriteConfigAs(configFilePath()))
		handleErr(auth.SetPassword(answers.Email, answers.Password))

		fmt.Printf("%s %s\n", icon.Get(icon.Success), style.Fg(color.Green)("Logged in as "+answers.Email))
	},
}
