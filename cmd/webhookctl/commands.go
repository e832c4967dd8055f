package main

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/oracle-dashboard/webhooks/payment"
	"github.com/oracle-dashboard/webhooks/utils"
	"github.com/oracle-dashboard/webhooks/webhook"
	"github.com/spf13/cobra"
)

func newSignCmd() *cobra.Command {
	var provider, secret, file string

	cmd := &cobra.Command{
		Use:   "sign",
		Short: "Print the signature header of a payload",
		RunE: func(cmd *cobra.Command, args []string) error {
			header, defaultSecret, err := providerSettings(provider)
			if err != nil {
				return err
			}
			if secret == "" {
				secret = defaultSecret
			}
			if secret == "" {
				return fmt.Errorf("secret is required")
			}

			body, err := readPayload(cmd, file)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", header, webhook.Sign(body, secret))
			return nil
		},
	}

	cmd.Flags().StringVarP(&provider, "provider", "p", string(payment.ProviderNOWPayments), "provider name: nowpayments or paystack")
	cmd.Flags().StringVarP(&secret, "secret", "s", "", "signing secret, defaults to the provider secret from the environment")
	cmd.Flags().StringVarP(&file, "file", "f", "-", "payload file, - for stdin")

	return cmd
}

func newSendCmd() *cobra.Command {
	var (
		provider, secret, file, baseURL string
		timeout                         time.Duration
	)

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Sign a payload and deliver it to the webhook endpoint",
		Long: "Sign a payload and deliver it to the webhook endpoint.\n" +
			"Useful to replay a delivery after a partial reconciliation failure.",
		RunE: func(cmd *cobra.Command, args []string) error {
			header, defaultSecret, err := providerSettings(provider)
			if err != nil {
				return err
			}
			if secret == "" {
				secret = defaultSecret
			}

			body, err := readPayload(cmd, file)
			if err != nil {
				return err
			}

			target := strings.TrimRight(baseURL, "/") + "/webhooks/" + strings.ToLower(provider)
			req, err := http.NewRequestWithContext(cmd.Context(), http.MethodPost, target, bytes.NewReader(body))
			if err != nil {
				return fmt.Errorf("failed to create request: %w", err)
			}
			req.Header.Set("Content-Type", "application/json")
			if secret != "" {
				req.Header.Set(header, webhook.Sign(body, secret))
			}

			resp, err := (&http.Client{Timeout: timeout}).Do(req)
			if err != nil {
				return fmt.Errorf("failed to deliver webhook: %w", err)
			}
			defer resp.Body.Close()

			respBody, err := io.ReadAll(resp.Body)
			if err != nil {
				return fmt.Errorf("failed to read response: %w", err)
			}

			statusColor := color.New(color.FgGreen, color.Bold)
			if resp.StatusCode >= http.StatusBadRequest {
				statusColor = color.New(color.FgRed, color.Bold)
			}
			statusColor.Fprintf(cmd.OutOrStdout(), "%s %s\n", resp.Status, target)

			if err := utils.PrettyPrint(cmd.OutOrStdout(), respBody); err != nil {
				fmt.Fprintln(cmd.OutOrStdout(), string(respBody))
			}

			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("webhook was not acknowledged: %s", resp.Status)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&provider, "provider", "p", string(payment.ProviderNOWPayments), "provider name: nowpayments or paystack")
	cmd.Flags().StringVarP(&secret, "secret", "s", "", "signing secret, defaults to the provider secret from the environment")
	cmd.Flags().StringVarP(&file, "file", "f", "-", "payload file, - for stdin")
	cmd.Flags().StringVarP(&baseURL, "url", "u", "http://localhost:8080", "gateway base url")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "request timeout")

	return cmd
}

func newOrderIDCmd() *cobra.Command {
	var order payment.Order

	cmd := &cobra.Command{
		Use:   "order-id",
		Short: "Build a crypto checkout order id",
		RunE: func(cmd *cobra.Command, args []string) error {
			orderID, err := payment.NewOrderID(order)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), orderID)
			return nil
		},
	}

	cmd.Flags().StringVar(&order.PlanID, "plan", "", "subscription plan id")
	cmd.Flags().StringVar(&order.BillingFrequency, "billing", "monthly", "billing frequency")
	cmd.Flags().StringVar(&order.UserID, "user", "", "user id")
	cmd.Flags().StringVar(&order.Nonce, "nonce", "", "order nonce, random when empty")
	_ = cmd.MarkFlagRequired("plan")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}
