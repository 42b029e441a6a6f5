package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/five82/rentme/internal/api"
	"github.com/five82/rentme/internal/app"
)

func newAdminCmd(flags *rootFlags) *cobra.Command {
	admin := &cobra.Command{
		Use:   "admin",
		Short: "Admin console: users and pricing model metrics",
	}
	admin.AddCommand(newAdminUsersCmd(flags), newAdminMetricsCmd(flags))
	return admin
}

func newAdminUsersCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "List users",
		Args:  cobra.NoArgs,
		RunE: flags.withEnv(func(cmd *cobra.Command, env *app.Env, _ []string) error {
			q, _ := cmd.Flags().GetString("query")
			limit, _ := cmd.Flags().GetInt("limit")
			offset, _ := cmd.Flags().GetInt("offset")
			users, err := env.Client.AdminUsers(cmd.Context(), api.AdminUserQuery{Query: q, Limit: limit, Offset: offset})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "showing %d of %d\n", len(users.Items), users.Total)
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tEMAIL\tNAME\tROLES\tBLOCKED\t")
			for _, u := range users.Items {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%t\t\n", u.ID, u.Email, u.Name, strings.Join(u.Roles, ","), u.Blocked)
			}
			return tw.Flush()
		}),
	}
	cmd.Flags().String("query", "", "email or name substring")
	cmd.Flags().Int("limit", 50, "users per page")
	cmd.Flags().Int("offset", 0, "users to skip")
	return cmd
}

func newAdminMetricsCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "metrics",
		Short: "Show pricing model accuracy",
		Args:  cobra.NoArgs,
		RunE: flags.withEnv(func(cmd *cobra.Command, env *app.Env, _ []string) error {
			m, err := env.Client.MLMetrics(cmd.Context())
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "MODEL\tMAE\tRMSE\tTRAIN\tTEST\t")
			for _, row := range []struct {
				name string
				m    api.ModelMetrics
			}{{"short_term", m.ShortTerm}, {"long_term", m.LongTerm}} {
				fmt.Fprintf(tw, "%s\t%.2f\t%.2f\t%d\t%d\t\n", row.name, row.m.MAE, row.m.RMSE, row.m.TrainSize, row.m.TestSize)
			}
			return tw.Flush()
		}),
	}
}
