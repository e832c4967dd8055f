// Command webhookctl signs and replays provider webhooks against the gateway.
package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dmitrymomot/go-env"
	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/oracle-dashboard/webhooks/payment"
	"github.com/oracle-dashboard/webhooks/webhook"
	"github.com/spf13/cobra"
)

func main() {
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		color.New(color.FgRed).Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "webhookctl",
		Short:         "Sign and replay payment provider webhooks",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newSignCmd(),
		newSendCmd(),
		newOrderIDCmd(),
	)

	return root
}

// providerSettings resolves the signature header and default secret of a provider.
func providerSettings(name string) (header, secret string, err error) {
	switch payment.Provider(strings.ToLower(strings.TrimSpace(name))) {
	case payment.ProviderNOWPayments:
		return webhook.NOWPaymentsSignatureHeader, env.GetString("NOWPAYMENTS_IPN_SECRET", ""), nil
	case payment.ProviderPaystack:
		return webhook.PaystackSignatureHeader, env.GetString("PAYSTACK_SECRET_KEY", ""), nil
	}

	return "", "", fmt.Errorf("%w: %q", webhook.ErrUnknownProvider, name)
}

// readPayload reads the payload from the file, or from stdin when the path is "-" or empty.
func readPayload(cmd *cobra.Command, path string) ([]byte, error) {
	var (
		b   []byte
		err error
	)
	if path == "" || path == "-" {
		b, err = io.ReadAll(cmd.InOrStdin())
	} else {
		b, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read payload: %w", err)
	}
	if len(b) == 0 {
		return nil, fmt.Errorf("payload is empty")
	}

	return b, nil
}
