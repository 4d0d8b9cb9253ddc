package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/arlaunch/arlaunch/internal/utils"
	"github.com/arlaunch/arlaunch/pkg/ar"
	"github.com/arlaunch/arlaunch/pkg/armode"
	"github.com/arlaunch/arlaunch/pkg/browser"
	"github.com/arlaunch/arlaunch/pkg/scan"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve [attr[=value] ...]",
	Short: "Resolve which AR mode a browser would get for a viewer configuration",
	Long: `Resolve takes model viewer attributes the way they appear in markup
(ar, ar-modes="webxr scene-viewer", src=model.glb, ...) and reports the
AR mode each device profile would get, with the launch URL it would open.`,
	Example: `  arlaunch resolve ar ar-modes="webxr scene-viewer quick-look" src=https://cdn.shop.example/rocket.glb ios-src=https://cdn.shop.example/rocket.usdz
  arlaunch resolve --profile iphone-15-safari --page https://shop.example/rocket ar src=rocket.glb ios-src=rocket.usdz`,
	RunE: func(cmd *cobra.Command, args []string) error {
		listProfiles, _ := cmd.Flags().GetBool("list-profiles")
		if listProfiles {
			printProfiles()
			return nil
		}

		if len(args) == 0 {
			return fmt.Errorf("no attributes given, expected markup attributes like: ar ar-modes=\"webxr scene-viewer\" src=model.glb")
		}

		page, _ := cmd.Flags().GetString("page")
		names, _ := cmd.Flags().GetStringSlice("profile")
		userAgent, _ := cmd.Flags().GetString("ua")

		cfg, err := ar.ConfigFromAttrs(parseAttrPairs(args))
		if err != nil {
			return err
		}

		for _, issue := range scan.Diagnose(cfg, page) {
			utils.Log.Warn(issue.String())
		}

		profiles, err := resolveTargets(names, userAgent)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "PROFILE\tMODE\tLAUNCH URL\t")
		for _, profile := range profiles {
			ev, err := scan.Evaluate(context.Background(), cfg, page, profile, armode.Gates{})
			if err != nil {
				return err
			}
			launch := ev.LaunchURL
			if launch == "" {
				launch = "-"
			}
			if ev.Note != "" {
				launch += "  (" + ev.Note + ")"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t\n", ev.Profile, ev.Mode, launch)
		}
		w.Flush()

		return nil
	},
}

// parseAttrPairs turns command line attribute tokens into the attribute
// map a markup parser would produce. A bare token is a boolean
// attribute; name=value splits on the first equals sign and surrounding
// quotes are trimmed from the value.
func parseAttrPairs(args []string) map[string]string {
	attrs := make(map[string]string, len(args))
	for _, arg := range args {
		name, value, found := strings.Cut(arg, "=")
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if found {
			attrs[name] = strings.Trim(value, `"'`)
		} else {
			attrs[name] = ""
		}
	}
	return attrs
}

// resolveTargets picks the device profiles to evaluate: an ad hoc one
// for a raw user agent, named catalog entries, or the whole catalog.
func resolveTargets(names []string, userAgent string) ([]browser.Profile, error) {
	if userAgent != "" {
		return []browser.Profile{browser.ProfileFromUA("custom-ua", userAgent)}, nil
	}
	if len(names) == 0 {
		return browser.Profiles(), nil
	}
	profiles := make([]browser.Profile, 0, len(names))
	for _, name := range names {
		profile, ok := browser.LookupProfile(name)
		if !ok {
			return nil, fmt.Errorf("unknown profile %q, try --list-profiles", name)
		}
		profiles = append(profiles, profile)
	}
	return profiles, nil
}

func printProfiles() {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "NAME\tWEBXR\tSCENE VIEWER\tQUICK LOOK\tNOTES\t")
	for _, p := range browser.Profiles() {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t\n", p.Name, yesNo(p.WebXR), yesNo(p.SceneViewer), yesNo(p.QuickLook), p.Notes)
	}
	w.Flush()
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func init() {
	rootCmd.AddCommand(resolveCmd)
	resolveCmd.Flags().StringP("page", "p", "", "Page URL the element lives on; relative model URLs resolve against it")
	resolveCmd.Flags().StringSlice("profile", nil, "Device profile to evaluate (repeatable, default: whole catalog)")
	resolveCmd.Flags().String("ua", "", "Raw user agent string to evaluate instead of catalog profiles")
	resolveCmd.Flags().Bool("list-profiles", false, "List the built in device profiles and exit")
}
