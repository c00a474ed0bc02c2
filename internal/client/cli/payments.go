package cli

import (
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/dmitrijs2005/checkpay/internal/client/client"
	"github.com/dmitrijs2005/checkpay/internal/filex"
	"github.com/spf13/cobra"
)

// maxImageBytes keeps uploads below the server's default body limit once
// base64 inflates them by a third.
const maxImageBytes = 10 << 20

func newAddCmd(a *app) *cobra.Command {
	var (
		business string
		quantity int64
		image    string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Submit a check payment",
		RunE: func(cmd *cobra.Command, args []string) error {
			business = strings.TrimSpace(business)
			if business == "" {
				return errors.New("--business is required")
			}
			if quantity <= 0 {
				return errors.New("--quantity must be a positive number")
			}
			if image == "" {
				return errors.New("--image is required")
			}

			token, err := loadToken()
			if err != nil {
				return err
			}

			img, err := filex.EncodeBase64(image, maxImageBytes)
			if err != nil {
				return err
			}

			p, err := a.client().CreatePayment(cmd.Context(), token, client.CreatePaymentRequest{
				BusinessName:     business,
				QuantitySold:     quantity,
				CheckImageBase64: filex.StripDataURI(img),
			})
			if err != nil {
				return authError(err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Saved payment %s for %s (%d sold)\n", p.ID, p.BusinessName, p.QuantitySold)
			return nil
		},
	}
	cmd.Flags().StringVar(&business, "business", "", "Business name")
	cmd.Flags().Int64Var(&quantity, "quantity", 0, "Quantity sold")
	cmd.Flags().StringVar(&image, "image", "", "Path to the check image")
	return cmd
}

func newListCmd(a *app) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List your payments, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit < 0 {
				return errors.New("--limit must not be negative")
			}
			token, err := loadToken()
			if err != nil {
				return err
			}

			items, err := a.client().ListPayments(cmd.Context(), token, limit)
			if err != nil {
				return authError(err)
			}
			if len(items) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No payments yet")
				return nil
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "TIMESTAMP\tBUSINESS\tQUANTITY\tID")
			for _, p := range items {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", p.Timestamp.UTC().Format("2006-01-02 15:04:05"), p.BusinessName, p.QuantitySold, p.ID)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of payments (server default when 0)")
	return cmd
}

func newHealthCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the server is up",
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := a.client().Health(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", h.Status, h.Timestamp.UTC().Format("2006-01-02 15:04:05 UTC"))
			return nil
		},
	}
}
