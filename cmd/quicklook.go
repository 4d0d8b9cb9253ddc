package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arlaunch/arlaunch/pkg/intent"
)

// quicklookCmd builds an iOS AR Quick Look launch URL from flags.
var quicklookCmd = &cobra.Command{
	Use:   "quicklook",
	Short: "Build an AR Quick Look launch URL for a usdz model",
	RunE: func(cmd *cobra.Command, args []string) error {
		file, _ := cmd.Flags().GetString("file")
		page, _ := cmd.Flags().GetString("page")
		title, _ := cmd.Flags().GetString("title")
		subtitle, _ := cmd.Flags().GetString("subtitle")
		price, _ := cmd.Flags().GetString("price")
		fixedScale, _ := cmd.Flags().GetBool("fixed-scale")
		link, _ := cmd.Flags().GetString("link")
		applePay, _ := cmd.Flags().GetString("apple-pay-button")
		callToAction, _ := cmd.Flags().GetString("call-to-action")
		banner, _ := cmd.Flags().GetString("custom-banner")
		height, _ := cmd.Flags().GetString("custom-height")

		buttonType, err := intent.ParseApplePayButtonType(applePay)
		if err != nil {
			return err
		}
		bannerHeight, err := intent.ParseBannerHeight(height)
		if err != nil {
			return err
		}

		ql, err := intent.NewQuickLook(file, page, intent.QuickLookParams{
			Title:              title,
			CheckoutSubtitle:   subtitle,
			Price:              price,
			Resizable:          !fixedScale,
			Link:               link,
			ApplePayButtonType: buttonType,
			CallToAction:       callToAction,
			CustomBanner:       banner,
			CustomHeight:       bannerHeight,
		})
		if err != nil {
			return err
		}

		fmt.Println(ql.ToURL())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(quicklookCmd)
	quicklookCmd.Flags().StringP("file", "f", "", "usdz model URL (required)")
	quicklookCmd.Flags().StringP("page", "p", "", "Page URL relative references resolve against")
	quicklookCmd.Flags().StringP("title", "t", "", "Banner title")
	quicklookCmd.Flags().String("subtitle", "", "Banner checkout subtitle")
	quicklookCmd.Flags().String("price", "", "Formatted price string for the banner")
	quicklookCmd.Flags().Bool("fixed-scale", false, "Pin the model scale in the viewer")
	quicklookCmd.Flags().String("link", "", "Canonical web page URL for the model")
	quicklookCmd.Flags().String("apple-pay-button", "", "Apple Pay button type: plain, pay, buy, check-out, book, donate, subscribe")
	quicklookCmd.Flags().String("call-to-action", "", "Label for a plain action button")
	quicklookCmd.Flags().String("custom-banner", "", "URL of a custom banner HTML document")
	quicklookCmd.Flags().String("custom-height", "", "Custom banner height: small, medium, large")
	_ = quicklookCmd.MarkFlagRequired("file")
}
