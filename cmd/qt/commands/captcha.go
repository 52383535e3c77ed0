package commands

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/krew-solutions/quantum-go/quantum/captcha"
	"github.com/krew-solutions/quantum-go/quantum/session"
	"github.com/krew-solutions/quantum-go/quantum/session/rest"
	"github.com/krew-solutions/quantum-go/quantum/telemetry"
)

var errCaptchaNotConfigured = errors.New("captcha adapter is not configured")

func newCaptchaCommand(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "captcha",
		Short: "Render and verify captcha challenges",
	}
	cmd.AddCommand(newCaptchaWidgetCommand(root))
	cmd.AddCommand(newCaptchaVerifyCommand(root))
	return cmd
}

func newCaptcha(root *rootOptions, opts ...captcha.Option) (captcha.Captcha, error) {
	if root.cfg.Captcha.Adapter == "" {
		return nil, errCaptchaNotConfigured
	}
	return captcha.New(root.cfg.Captcha.Adapter, root.cfg.Captcha.Config(), opts...)
}

func newCaptchaWidgetCommand(root *rootOptions) *cobra.Command {
	var lang string
	cmd := &cobra.Command{
		Use:   "widget <form-id>",
		Short: "Print the widget markup and script tag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newCaptcha(root)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), c.Display(args[0], nil))
			fmt.Fprint(cmd.OutOrStdout(), c.RenderJs(lang, false, ""))
			return nil
		},
	}
	cmd.Flags().StringVar(&lang, "lang", "", "widget language")
	return cmd
}

func newCaptchaVerifyCommand(root *rootOptions) *cobra.Command {
	var (
		clientIP  string
		verifyURL string
	)
	cmd := &cobra.Command{
		Use:   "verify <response>",
		Short: "Verify a challenge response token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var opts []captcha.Option
			if verifyURL != "" {
				opts = append(opts, captcha.WithVerifyURL(verifyURL))
			}
			c, err := newCaptcha(root, opts...)
			if err != nil {
				return err
			}

			pool := rest.NewSessionPool(nil, root.cfg.Captcha.Timeout)
			defer telemetry.Instrument(pool, nil, telemetry.NewRequestLogger(log.Logger), nil).Dispose()

			return pool.Session(cmd.Context(), func(s session.Session) error {
				ok, err := c.VerifyResponse(s, args[0], clientIP)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), ok)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&clientIP, "ip", "", "client IP address")
	cmd.Flags().StringVar(&verifyURL, "verify-url", "", "override the provider verification endpoint")
	return cmd
}
