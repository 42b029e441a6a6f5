package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/five82/rentme/internal/api"
	"github.com/five82/rentme/internal/app"
	"github.com/five82/rentme/internal/config"
	"github.com/five82/rentme/internal/logging"
	"github.com/five82/rentme/internal/logtail"
)

type rootFlags struct {
	configPath string
	prefsPath  string
	baseURL    string
	logLevel   string
}

func (f *rootFlags) options() app.Options {
	return app.Options{
		ConfigPath: f.configPath,
		PrefsPath:  f.prefsPath,
		BaseURL:    f.baseURL,
		LogLevel:   f.logLevel,
	}
}

// setup builds an Env for one-shot commands, logging to stderr.
func (f *rootFlags) setup(cmd *cobra.Command) (*app.Env, error) {
	opts := f.options()
	opts.LogOutput = cmd.ErrOrStderr()
	if opts.LogLevel == "" {
		opts.LogLevel = "warn"
	}
	return app.Setup(opts)
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}
	root := &cobra.Command{
		Use:           "rentme",
		Short:         "Terminal client for the rentme rental marketplace",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.Run(cmd.Context(), flags.options())
		},
	}
	pf := root.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "", "config file (default ~/.config/rentme/config.toml)")
	pf.StringVar(&flags.prefsPath, "prefs", "", "preferences file override")
	pf.StringVar(&flags.baseURL, "api", "", "API base URL override")
	pf.StringVar(&flags.logLevel, "log-level", "", "log level (trace, debug, info, warn, error)")

	root.AddCommand(
		newLoginCmd(flags),
		newLogoutCmd(flags),
		newWhoamiCmd(flags),
		newCatalogCmd(flags),
		newChatsCmd(flags),
		newMessageCmd(flags),
		newListingCmd(flags),
		newReviewsCmd(flags),
		newReviewCmd(flags),
		newBookingsCmd(flags),
		newHostCmd(flags),
		newAdminCmd(flags),
		newLogsCmd(flags),
	)
	return root
}

func newLoginCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			email, _ := cmd.Flags().GetString("email")
			password, _ := cmd.Flags().GetString("password")
			if password == "" {
				password = os.Getenv("RENTME_PASSWORD")
			}
			if password == "" {
				fmt.Fprint(cmd.ErrOrStderr(), "password: ")
				line, err := readLine(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("read password: %w", err)
				}
				password = line
			}

			env, err := flags.setup(cmd)
			if err != nil {
				return err
			}
			defer env.Close()

			user, err := env.Auth.Login(cmd.Context(), email, password)
			if err != nil {
				return describe(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s <%s>\n", displayName(user), user.Email)
			return nil
		},
	}
	cmd.Flags().String("email", "", "account email")
	cmd.Flags().String("password", "", "account password (or RENTME_PASSWORD, or stdin)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newLogoutCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the stored token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := flags.setup(cmd)
			if err != nil {
				return err
			}
			defer env.Close()
			if err := env.Auth.Logout(cmd.Context()); err != nil {
				return describe(err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
			return nil
		},
	}
}

func newWhoamiCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := flags.setup(cmd)
			if err != nil {
				return err
			}
			defer env.Close()
			user, err := env.Auth.Restore(cmd.Context())
			if err != nil {
				return describe(err)
			}
			if user == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "Not signed in")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s <%s> %s\n", displayName(*user), user.Email, strings.Join(user.Roles, ","))
			return nil
		},
	}
}

func newCatalogCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Print one catalog page for a query such as city=Brno&sort=price_desc",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			raw, _ := cmd.Flags().GetString("query")
			env, err := flags.setup(cmd)
			if err != nil {
				return err
			}
			defer env.Close()

			codec := env.Codec()
			canonical := codec.Encode(codec.Decode(raw))
			page, err := env.Client.ListListings(cmd.Context(), canonical)
			if err != nil {
				return describe(err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "query: %s\n", canonical)
			fmt.Fprintf(out, "showing %d of %d\n\n", len(page.Items), page.Meta.Total)
			return writeListings(out, page.Items)
		},
	}
	cmd.Flags().String("query", "", "catalog query string")
	return cmd
}

func newChatsCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "chats",
		Short: "List conversations, marking unread ones",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := flags.setup(cmd)
			if err != nil {
				return err
			}
			defer env.Close()
			list, err := env.Client.ListChats(cmd.Context(), api.PageQuery{})
			if err != nil {
				return describe(err)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, c := range list.Items {
				marker := " "
				if c.HasUnread {
					marker = "*"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", marker, c.ID, c.LastMessageAt, c.LastMessageText)
			}
			return tw.Flush()
		},
	}
}

func newLogsCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Print the tail of the rentme log file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			lines, _ := cmd.Flags().GetInt("lines")
			level, _ := cmd.Flags().GetString("level")
			cfg, err := config.Load(flags.configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			tail, err := logtail.Read(cfg.LogPath, lines)
			if err != nil {
				return err
			}
			if level != "" {
				tail = logtail.Filter(tail, logging.ParseLevel(level))
			}
			out := cmd.OutOrStdout()
			if len(tail) == 0 {
				fmt.Fprintf(cmd.ErrOrStderr(), "no log lines in %s\n", cfg.LogPath)
				return nil
			}
			for _, line := range tail {
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}
	cmd.Flags().IntP("lines", "n", 100, "number of lines from the end (0 for all)")
	cmd.Flags().String("level", "", "minimum level to show (debug, info, warn, error)")
	return cmd
}

func writeListings(w io.Writer, items []api.ListingRecord) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tCITY\tTYPE\tRATE\tRATING")
	for _, l := range items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d.%02d\t%.1f\n",
			l.ID, l.Title, l.City, l.PropertyType, l.NightlyRateCents/100, l.NightlyRateCents%100, l.Rating)
	}
	return tw.Flush()
}

func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func displayName(u api.UserProfile) string {
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}

// describe swaps API errors for their user-facing text. Local errors such
// as validation failures pass through.
func describe(err error) error {
	var apiErr *api.Error
	if !errors.As(err, &apiErr) {
		return err
	}
	if msg := api.Describe(err); msg != "" {
		return errors.New(msg)
	}
	return err
}

// withEnv adapts fn into a RunE that builds an Env for the call and closes
// it afterwards.
func (f *rootFlags) withEnv(fn func(cmd *cobra.Command, env *app.Env, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		env, err := f.setup(cmd)
		if err != nil {
			return err
		}
		defer env.Close()
		return describe(fn(cmd, env, args))
	}
}

func formatMoney(m api.Money) string {
	if m.Currency == "" {
		return fmt.Sprintf("%d.%02d", m.Amount/100, m.Amount%100)
	}
	return fmt.Sprintf("%d.%02d %s", m.Amount/100, m.Amount%100, m.Currency)
}
