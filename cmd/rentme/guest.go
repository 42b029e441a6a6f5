package main

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/five82/rentme/internal/api"
	"github.com/five82/rentme/internal/app"
)

func newMessageCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "message <user-id>",
		Short: "Open a direct conversation with a user and send a message",
		Args:  cobra.ExactArgs(1),
		RunE: flags.withEnv(func(cmd *cobra.Command, env *app.Env, args []string) error {
			text, _ := cmd.Flags().GetString("text")
			text = strings.TrimSpace(text)
			if text == "" {
				return errors.New("message text required")
			}
			conv, err := env.Client.CreateDirectConversation(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			msg, err := env.Client.SendMessage(cmd.Context(), conv.ID, text)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Sent %s in conversation %s\n", msg.ID, conv.ID)
			return nil
		}),
	}
	cmd.Flags().String("text", "", "message text")
	return cmd
}

func newListingCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "listing <listing-id>",
		Short: "Show a listing with its price, availability and latest reviews",
		Args:  cobra.ExactArgs(1),
		RunE: flags.withEnv(func(cmd *cobra.Command, env *app.Env, args []string) error {
			o, err := env.Client.ListingOverview(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			l := o.Listing
			fmt.Fprintf(out, "%s (%s)\n", l.Title, l.ID)
			fmt.Fprintf(out, "%s, %s  %s  rating %.1f\n", l.City, l.Country, l.PropertyType, l.Rating)
			if o.Host != nil {
				fmt.Fprintf(out, "host: %s (%s)\n", o.Host.Name, o.Host.ID)
			}
			if o.Price != nil {
				fmt.Fprintf(out, "price: %s %s (%s to %s)\n", formatMoney(o.Price.Total), o.Price.Unit, o.Price.CheckIn, o.Price.CheckOut)
			}
			if d := strings.TrimSpace(o.Description); d != "" {
				fmt.Fprintf(out, "\n%s\n", d)
			}
			if len(o.HouseRules) > 0 {
				fmt.Fprintf(out, "\nrules: %s\n", strings.Join(o.HouseRules, "; "))
			}
			free := 0
			for _, day := range o.Availability {
				if day.Available {
					free++
				}
			}
			if len(o.Availability) > 0 {
				fmt.Fprintf(out, "available: %d of %d days\n", free, len(o.Availability))
			}
			fmt.Fprintf(out, "\nreviews (%d)\n", o.Reviews.Total)
			return writeReviews(out, o.Reviews.Items)
		}),
	}
}

func newReviewsCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reviews <listing-id>",
		Short: "List reviews of a listing",
		Args:  cobra.ExactArgs(1),
		RunE: flags.withEnv(func(cmd *cobra.Command, env *app.Env, args []string) error {
			limit, _ := cmd.Flags().GetInt("limit")
			offset, _ := cmd.Flags().GetInt("offset")
			reviews, err := env.Client.ListingReviews(cmd.Context(), args[0], limit, offset)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "showing %d of %d\n", len(reviews.Items), reviews.Total)
			return writeReviews(cmd.OutOrStdout(), reviews.Items)
		}),
	}
	cmd.Flags().Int("limit", 20, "reviews per page")
	cmd.Flags().Int("offset", 0, "reviews to skip")
	return cmd
}

func newReviewCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "review <booking-id>",
		Short: "Review a completed stay",
		Args:  cobra.ExactArgs(1),
		RunE: flags.withEnv(func(cmd *cobra.Command, env *app.Env, args []string) error {
			rating, _ := cmd.Flags().GetInt("rating")
			text, _ := cmd.Flags().GetString("text")
			review, err := env.Client.SubmitReview(cmd.Context(), args[0], rating, strings.TrimSpace(text))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Review %s saved for listing %s\n", review.ID, review.ListingID)
			return nil
		}),
	}
	cmd.Flags().Int("rating", 0, "rating from 1 to 5")
	cmd.Flags().String("text", "", "review text")
	_ = cmd.MarkFlagRequired("rating")
	return cmd
}

func newBookingsCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "bookings",
		Short: "List your bookings as a guest",
		Args:  cobra.NoArgs,
		RunE: flags.withEnv(func(cmd *cobra.Command, env *app.Env, _ []string) error {
			bookings, err := env.Client.MyBookings(cmd.Context())
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tLISTING\tCHECK-IN\tCHECK-OUT\tGUESTS\tSTATUS\tTOTAL\t")
			for _, b := range bookings.Items {
				status := b.Status
				if b.CanReview && !b.ReviewSubmitted {
					status += " (review open)"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\t%s\t\n",
					b.ID, b.Listing.Title, b.CheckIn, b.CheckOut, b.Guests, status, formatMoney(b.Total))
			}
			return tw.Flush()
		}),
	}
}

func writeReviews(w io.Writer, items []api.Review) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, r := range items {
		fmt.Fprintf(tw, "%s\t%d/5\t%s\n", r.CreatedAt, r.Rating, r.Text)
	}
	return tw.Flush()
}
