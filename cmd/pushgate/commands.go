package main

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/pushgate/pkg/device"
	"github.com/dmitrymomot/pushgate/pkg/qrcode"
	"github.com/dmitrymomot/pushgate/pkg/subscription"
)

// Version is set at build time with -ldflags.
var Version = "dev"

func newRootCmd() *cobra.Command {
	var envFiles []string

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the onboarding web server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), envFiles)
		},
	}

	root := &cobra.Command{
		Use:           "pushgate",
		Short:         "pushgate - web push onboarding",
		Long:          `pushgate walks visitors through enabling web push, including the home screen install some platforms require first.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE:          serve.RunE,
	}
	root.PersistentFlags().StringSliceVar(&envFiles, "env-file", []string{".env"}, "optional .env files, later files win")

	root.AddCommand(serve, newExplainCmd(), newGatesCmd(), newQRCmd(), newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "pushgate %s\n", Version)
		},
	}
}

// newGatesCmd validates a gate rules file and lists what it enforces.
func newGatesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "gates [file]",
		Short: "Validate a gate rules file and print its gates",
		Long:  "Without a file the built-in iOS gate is printed.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			selector, err := loadSelector(path)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "OS\tMINIMUM\tELIGIBLE\tUPGRADE")
			for _, g := range selector.Gates() {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", g.OS, g.Minimum, g.EligibleText, g.UpgradeText)
			}
			return tw.Flush()
		},
	}
}

// newExplainCmd shows which directive a device would get, without a browser.
func newExplainCmd() *cobra.Command {
	var (
		signals   device.Signals
		gatesFile string
	)
	cmd := &cobra.Command{
		Use:   "explain",
		Short: "Show the directive a device would see before subscribing",
		Example: `  pushgate explain --ua "Mozilla/5.0 (iPhone; CPU iPhone OS 16_4 like Mac OS X) ..." --display-mode browser
  pushgate explain --ua "..." --standalone true --push-api available`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if signals.UserAgent == "" {
				return errors.New("--ua is required")
			}
			selector, err := loadSelector(gatesFile)
			if err != nil {
				return err
			}

			info := device.Detect(signals)
			d := selector.Select(&info, subscription.State{Status: subscription.StatusIdle})

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintf(tw, "device\t%s\n", info.Identifier)
			fmt.Fprintf(tw, "os\t%s\n", info.DisplayOS())
			fmt.Fprintf(tw, "browser\t%s\n", info.DisplayBrowser())
			fmt.Fprintf(tw, "standalone\t%t\n", info.Standalone)
			fmt.Fprintf(tw, "push api\t%s\n", info.PushAPI)
			fmt.Fprintf(tw, "directive\t%s\n", d.Kind)
			if d.CaptionText != "" {
				fmt.Fprintf(tw, "caption\t%s\n", d.CaptionText)
			}
			return tw.Flush()
		},
	}

	f := cmd.Flags()
	f.StringVar(&signals.UserAgent, "ua", "", "User-Agent string")
	f.StringVar(&signals.DisplayMode, "display-mode", "", "display-mode media query result (browser, standalone, ...)")
	f.StringVar(&signals.NavigatorStandalone, "standalone", "", "navigator.standalone value")
	f.StringVar(&signals.PushAPI, "push-api", "", "whether the Push API is present (available, missing)")
	f.StringVar(&gatesFile, "gates", "", "gate rules file")
	return cmd
}

// newQRCmd writes the hand-off QR code for a URL, e.g. for printed material.
func newQRCmd() *cobra.Command {
	var (
		out  string
		size int
	)
	cmd := &cobra.Command{
		Use:   "qr <url>",
		Short: "Write a QR code PNG for a URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			png, err := qrcode.PNG(args[0], qrcode.WithSize(size))
			if err != nil {
				return err
			}
			if out == "-" {
				_, err = cmd.OutOrStdout().Write(png)
				return err
			}
			if err := os.WriteFile(out, png, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s (%d bytes)\n", out, len(png))
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "pushgate-qr.png", `output file, "-" for stdout`)
	cmd.Flags().IntVar(&size, "size", qrcode.DefaultSize, "image size in pixels")
	return cmd
}
