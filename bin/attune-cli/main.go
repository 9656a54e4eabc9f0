package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/useattune/attune/client"
	"github.com/useattune/attune/client/tui"
)

var rootCmd = &cobra.Command{
	Use:   "attune-cli",
	Short: "Terminal client for an attune server",
	Long: `attune-cli is the terminal face of attune: your routines and check-in
for today, and a chat with the persona of your choice.

Sign up once, keep the token, and export it as ATTUNE_TOKEN:

  attune-cli signup --email you@example.com --password ...
  attune-cli --route /chat`,
	RunE: func(_ *cobra.Command, _ []string) error {
		token := viper.GetString("token")
		if token == "" {
			return fmt.Errorf("no token; run `attune-cli login` first or set ATTUNE_TOKEN")
		}
		if err := setupLogger(viper.GetString("log")); err != nil {
			return err
		}
		api := client.New(viper.GetString("server"), client.WithToken(token))
		return tui.Run(tui.Config{
			Client: api,
			Route:  viper.GetString("route"),
		})
	},
}

var logInCmd = &cobra.Command{
	Use:   "login",
	Short: "Exchange email and password for an access token",
	RunE: func(cmd *cobra.Command, _ []string) error {
		email, _ := cmd.Flags().GetString("email")
		password, _ := cmd.Flags().GetString("password")

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		api := client.New(viper.GetString("server"))
		res, err := api.LogIn(ctx, email, password)
		if err != nil {
			return err
		}
		printToken(res)
		return nil
	},
}

var signUpCmd = &cobra.Command{
	Use:   "signup",
	Short: "Create an account and print its access token",
	RunE: func(cmd *cobra.Command, _ []string) error {
		email, _ := cmd.Flags().GetString("email")
		password, _ := cmd.Flags().GetString("password")
		nickname, _ := cmd.Flags().GetString("nickname")

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		api := client.New(viper.GetString("server"))
		res, err := api.SignUp(ctx, email, password, nickname)
		if err != nil {
			return err
		}
		fmt.Printf("welcome, %s\n", res.User.Nickname)
		printToken(res)
		return nil
	},
}

func printToken(res *client.AuthResult) {
	fmt.Printf("export ATTUNE_TOKEN=%s\n", res.Token)
}

// setupLogger sends slog to a file, or nowhere. Writing to stderr would
// scribble over the alternate screen.
func setupLogger(path string) error {
	if path == "" {
		slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
		return nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(f, nil)))
	return nil
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("server", "http://localhost:8484", "attune server URL")
	flags.String("token", "", "access token, also read from ATTUNE_TOKEN")
	flags.String("route", "/today", `starting route, e.g. "/chat" or "/chat/personas/ember"`)
	flags.String("log", "", "append logs to this file instead of discarding them")

	for _, cmd := range []*cobra.Command{logInCmd, signUpCmd} {
		cmd.Flags().String("email", "", "account email")
		cmd.Flags().String("password", "", "account password")
		_ = cmd.MarkFlagRequired("email")
		_ = cmd.MarkFlagRequired("password")
	}
	signUpCmd.Flags().String("nickname", "", "display name, defaults to the email's local part")

	rootCmd.AddCommand(logInCmd, signUpCmd)

	viper.SetEnvPrefix("attune")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		panic(err)
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
