// Package cli implements the toolrent command-line client.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
	"github.com/spf13/cobra"

	"github.com/toolrent/rental-system/internal/client/api"
	"github.com/toolrent/rental-system/internal/client/session"
)

type app struct {
	client  *api.Client
	session *session.Session
}

// NewRootCommand builds the toolrent command tree. lookuper supplies the
// environment; tests pass an envconfig.MapLookuper.
func NewRootCommand(lookuper envconfig.Lookuper) *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "toolrent",
		Short:         "Tool rental client",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig(cmd.Context(), lookuper)
			if err != nil {
				return err
			}
			apiURL, _ := cmd.Flags().GetString("api-url")
			if apiURL == "" {
				apiURL = cfg.APIURL
			}
			a.session = session.New(session.NewFileStore(cfg.TokenFile))
			a.client = api.New(apiURL, a.session, nil)
			return nil
		},
	}
	root.PersistentFlags().String("api-url", "", "API base URL (overrides TOOLRENT_API_URL)")

	root.AddCommand(
		a.signupCmd(),
		a.loginCmd(),
		a.logoutCmd(),
		a.statusCmd(),
		a.profileCmd(),
		a.productsCmd(),
	)
	return root
}

func (a *app) signupCmd() *cobra.Command {
	var name, email, password string
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			pw, err := passwordOrStdin(cmd, password)
			if err != nil {
				return err
			}
			msg, err := a.client.Signup(cmd.Context(), name, email, pw)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), msg)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&password, "password", "", "password (read from stdin when empty)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func (a *app) loginCmd() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			pw, err := passwordOrStdin(cmd, password)
			if err != nil {
				return err
			}
			user, err := a.client.Login(cmd.Context(), email, pw)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s <%s>\n", user.Name, user.Email)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&password, "password", "", "password (read from stdin when empty)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func (a *app) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.client.Logout(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
			return nil
		},
	}
}

func (a *app) statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Report whether a non-expired session token is stored",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if !a.session.IsAuthenticated() {
				fmt.Fprintln(out, "Not logged in.")
				return nil
			}
			exp, err := a.session.Expiry()
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Logged in until %s.\n", exp.Local().Format(time.RFC1123))
			return nil
		},
	}
}

func (a *app) profileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "profile",
		Short: "Show the current user",
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := a.client.Profile(cmd.Context())
			if errors.Is(err, api.ErrNotAuthenticated) {
				return errors.New("not logged in; run `toolrent login`")
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "#%d %s <%s>\n", user.UserID, user.Name, user.Email)
			return nil
		},
	}
}

func (a *app) productsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "products",
		Short: "List rentable tools",
		RunE: func(cmd *cobra.Command, args []string) error {
			tools, err := a.client.Products(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, t := range tools {
				fmt.Fprintf(out, "%4d  %-30s %8.2f  x%d\n", t.ID, t.Name, t.Price, t.Quantity)
			}
			return nil
		},
	}
}

func passwordOrStdin(cmd *cobra.Command, password string) (string, error) {
	if password != "" {
		return password, nil
	}
	fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return "", errors.New("password is required")
	}
	return line, nil
}

// Execute runs the command tree with ctx.
func Execute(ctx context.Context, root *cobra.Command) error {
	return root.ExecuteContext(ctx)
}
