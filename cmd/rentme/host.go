package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	"github.com/five82/rentme/internal/api"
	"github.com/five82/rentme/internal/app"
	"github.com/five82/rentme/internal/listingform"
)

func newHostCmd(flags *rootFlags) *cobra.Command {
	host := &cobra.Command{
		Use:   "host",
		Short: "Manage your listings and the bookings on them",
	}
	host.AddCommand(
		newHostListingsCmd(flags),
		newHostShowCmd(flags),
		newHostCreateCmd(flags),
		newHostUpdateCmd(flags),
		newHostPublishCmd(flags),
		newHostUnpublishCmd(flags),
		newHostPriceCmd(flags),
		newHostPhotoCmd(flags),
		newHostBookingsCmd(flags),
		newHostConfirmCmd(flags),
		newHostDeclineCmd(flags),
	)
	return host
}

func newHostListingsCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "listings",
		Short: "List your listings",
		Args:  cobra.NoArgs,
		RunE: flags.withEnv(func(cmd *cobra.Command, env *app.Env, _ []string) error {
			status, _ := cmd.Flags().GetString("status")
			limit, _ := cmd.Flags().GetInt("limit")
			offset, _ := cmd.Flags().GetInt("offset")
			page, err := env.Client.ListHostListings(cmd.Context(), api.HostListingQuery{Status: status, Limit: limit, Offset: offset})
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tTITLE\tCITY\tSTATUS\tRATE\t")
			for _, l := range page.Items {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t\n", l.ID, l.Title, l.Address.City, l.Status, l.RateRub)
			}
			return tw.Flush()
		}),
	}
	cmd.Flags().String("status", "", "only listings in this status (draft, published, unpublished)")
	cmd.Flags().Int("limit", 0, "listings per page")
	cmd.Flags().Int("offset", 0, "listings to skip")
	return cmd
}

func newHostShowCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "show <listing-id>",
		Short: "Print a listing in the file format accepted by create and update",
		Args:  cobra.ExactArgs(1),
		RunE: flags.withEnv(func(cmd *cobra.Command, env *app.Env, args []string) error {
			l, err := env.Client.HostListing(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			doc, err := listingDocument(listingform.FromListing(l))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "# %s (%s)\n", l.ID, l.Status)
			_, err = out.Write(doc)
			return err
		}),
	}
}

func newHostCreateCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a draft listing from a TOML file",
		Args:  cobra.NoArgs,
		RunE: flags.withEnv(func(cmd *cobra.Command, env *app.Env, _ []string) error {
			path, _ := cmd.Flags().GetString("file")
			publish, _ := cmd.Flags().GetBool("publish")
			form := listingform.New()
			if err := decodeListingFile(form, cmd.InOrStdin(), path); err != nil {
				return err
			}
			if err := validateListing(form, publish); err != nil {
				return err
			}
			l, err := env.Client.CreateHostListing(cmd.Context(), form.Payload())
			if err != nil {
				return err
			}
			if publish {
				if l, err = env.Client.PublishHostListing(cmd.Context(), l.ID); err != nil {
					return err
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Listing %s created (%s)\n", l.ID, l.Status)
			return nil
		}),
	}
	cmd.Flags().String("file", "", "listing TOML file, or - for stdin")
	cmd.Flags().Bool("publish", false, "publish right after creating")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newHostUpdateCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update <listing-id>",
		Short: "Patch a listing with the fields set in a TOML file",
		Args:  cobra.ExactArgs(1),
		RunE: flags.withEnv(func(cmd *cobra.Command, env *app.Env, args []string) error {
			path, _ := cmd.Flags().GetString("file")
			current, err := env.Client.HostListing(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			form := listingform.FromListing(current)
			if err := decodeListingFile(form, cmd.InOrStdin(), path); err != nil {
				return err
			}
			if err := validateListing(form, current.Status == "published"); err != nil {
				return err
			}
			l, err := env.Client.UpdateHostListing(cmd.Context(), current.ID, form.Payload())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Listing %s updated (%s)\n", l.ID, l.Status)
			return nil
		}),
	}
	cmd.Flags().String("file", "", "listing TOML file, or - for stdin")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newHostPublishCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "publish <listing-id>",
		Short: "Publish a listing to the catalog",
		Args:  cobra.ExactArgs(1),
		RunE: flags.withEnv(func(cmd *cobra.Command, env *app.Env, args []string) error {
			current, err := env.Client.HostListing(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := validateListing(listingform.FromListing(current), true); err != nil {
				return err
			}
			l, err := env.Client.PublishHostListing(cmd.Context(), current.ID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Listing %s is %s\n", l.ID, l.Status)
			return nil
		}),
	}
}

func newHostUnpublishCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "unpublish <listing-id>",
		Short: "Hide a listing from the catalog",
		Args:  cobra.ExactArgs(1),
		RunE: flags.withEnv(func(cmd *cobra.Command, env *app.Env, args []string) error {
			l, err := env.Client.UnpublishHostListing(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Listing %s is %s\n", l.ID, l.Status)
			return nil
		}),
	}
}

func newHostPriceCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "price <listing-id>",
		Short: "Ask the pricing model for a suggested rate",
		Args:  cobra.ExactArgs(1),
		RunE: flags.withEnv(func(cmd *cobra.Command, env *app.Env, args []string) error {
			checkIn, _ := cmd.Flags().GetString("check-in")
			checkOut, _ := cmd.Flags().GetString("check-out")
			guests, _ := cmd.Flags().GetInt("guests")
			s, err := env.Client.RequestPriceSuggestion(cmd.Context(), args[0], api.PriceSuggestionRequest{
				CheckIn: checkIn, CheckOut: checkOut, Guests: guests,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "suggested %d (range %d to %d, current %d)\n",
				s.SuggestedRub, s.LowerBoundRub, s.UpperBoundRub, s.CurrentRateRub)
			return nil
		}),
	}
	cmd.Flags().String("check-in", "", "check-in date (YYYY-MM-DD)")
	cmd.Flags().String("check-out", "", "check-out date (YYYY-MM-DD)")
	cmd.Flags().Int("guests", 0, "number of guests")
	return cmd
}

func newHostPhotoCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "photo <listing-id> <file>",
		Short: "Upload a photo and add it to the listing",
		Args:  cobra.ExactArgs(2),
		RunE: flags.withEnv(func(cmd *cobra.Command, env *app.Env, args []string) error {
			file, err := os.Open(args[1])
			if err != nil {
				return fmt.Errorf("open photo: %w", err)
			}
			defer file.Close()

			upload, err := env.Client.UploadListingPhoto(cmd.Context(), args[0], filepath.Base(args[1]), file)
			if err != nil {
				return err
			}
			current, err := env.Client.HostListing(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			form := listingform.FromListing(current)
			photos := append(form.Get(listingform.FieldPhotos).Items(), upload.URL)
			if err := form.Set(listingform.FieldPhotos, listingform.List(photos...)); err != nil {
				return err
			}
			if _, err := env.Client.UpdateHostListing(cmd.Context(), current.ID, form.Payload()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Uploaded %s\n", upload.URL)
			return nil
		}),
	}
}

func newHostBookingsCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bookings",
		Short: "List bookings on your listings",
		Args:  cobra.NoArgs,
		RunE: flags.withEnv(func(cmd *cobra.Command, env *app.Env, _ []string) error {
			status, _ := cmd.Flags().GetString("status")
			bookings, err := env.Client.HostBookings(cmd.Context(), status)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tLISTING\tGUEST\tCHECK-IN\tCHECK-OUT\tGUESTS\tSTATUS\tTOTAL\t")
			for _, b := range bookings.Items {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d\t%s\t%s\t\n",
					b.ID, b.Listing.Title, b.GuestID, b.CheckIn, b.CheckOut, b.Guests, b.Status, formatMoney(b.Total))
			}
			return tw.Flush()
		}),
	}
	cmd.Flags().String("status", "", "only bookings in this status (pending, confirmed, declined)")
	return cmd
}

func newHostConfirmCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "confirm <booking-id>",
		Short: "Confirm a pending booking",
		Args:  cobra.ExactArgs(1),
		RunE: flags.withEnv(func(cmd *cobra.Command, env *app.Env, args []string) error {
			d, err := env.Client.ConfirmHostBooking(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Booking %s is %s\n", d.BookingID, d.Status)
			return nil
		}),
	}
}

func newHostDeclineCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decline <booking-id>",
		Short: "Decline a pending booking",
		Args:  cobra.ExactArgs(1),
		RunE: flags.withEnv(func(cmd *cobra.Command, env *app.Env, args []string) error {
			reason, _ := cmd.Flags().GetString("reason")
			d, err := env.Client.DeclineHostBooking(cmd.Context(), args[0], reason)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Booking %s is %s\n", d.BookingID, d.Status)
			return nil
		}),
	}
	cmd.Flags().String("reason", "", "reason shown to the guest")
	return cmd
}

// decodeListingFile reads path into form; "-" reads stdin.
func decodeListingFile(form *listingform.Form, stdin io.Reader, path string) error {
	r := stdin
	if path != "-" {
		file, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("open listing file: %w", err)
		}
		defer file.Close()
		r = file
	}
	return form.Decode(r)
}

func validateListing(form *listingform.Form, publish bool) error {
	mode := listingform.ModeSave
	if publish {
		mode = listingform.ModePublish
	}
	if errs := form.Validate(mode); errs != nil {
		return fmt.Errorf("listing is not valid: %w", errs)
	}
	return nil
}

// listingDocument renders form as a TOML listing file.
func listingDocument(form *listingform.Form) ([]byte, error) {
	doc := make(map[string]any, len(listingform.Schema)+1)
	for _, field := range listingform.Fields() {
		v := form.Get(field)
		switch v.Kind() {
		case listingform.KindNumber:
			if n := v.Num(); n == float64(int64(n)) {
				doc[string(field)] = int64(n)
			} else {
				doc[string(field)] = n
			}
		case listingform.KindList:
			doc[string(field)] = v.Items()
		default:
			doc[string(field)] = v.Str()
		}
	}
	if form.NoMaxNights {
		doc["no_max_nights"] = true
	}
	return toml.Marshal(doc)
}
