package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/example/kdcpay-gateway/internal/config"
	"github.com/example/kdcpay-gateway/internal/kdcpay"
)

func newChecksumCmd(configFile *string) *cobra.Command {
	var (
		role   string
		secret string
		query  string
	)
	cmd := &cobra.Command{
		Use:   "checksum [name=value ...]",
		Short: "Print the checksum input and checksum for a payload",
		Long: `checksum recomputes what KDCpay signs, in the order given. Use it to compare
against a checksum the gateway sent or rejected. The payload comes from
name=value arguments, or from --query as a raw urlencoded string.`,
		Example: `  kdcpay checksum --role callback --secret s3cret status=success orderId=abc123 amount=500.00
  kdcpay checksum --role checkout --query 'mid=M100&orderId=abc123&totalAmount=500.00'`,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, ok := kdcpay.ParseRole(role)
			if !ok {
				return fmt.Errorf("unknown role %q (want checkout or callback)", role)
			}
			p, err := payloadFromArgs(query, args)
			if err != nil {
				return err
			}
			if secret == "" {
				cfg, err := config.Load(*configFile)
				if err != nil {
					return err
				}
				secret = cfg.Merchant.Key
			}
			if secret == "" {
				return fmt.Errorf("no secret: pass --secret or set merchant.key")
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "role:     %s\n", r)
			fmt.Fprintf(out, "input:    %s\n", kdcpay.ChecksumInput(p, r))
			fmt.Fprintf(out, "checksum: %s\n", kdcpay.Checksum(p, r, secret))
			if got, ok := p.Lookup(kdcpay.FieldChecksum); ok {
				fmt.Fprintf(out, "matches:  %t\n", got == kdcpay.Checksum(p, r, secret))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&role, "role", "callback", "checkout or callback")
	cmd.Flags().StringVar(&secret, "secret", "", "merchant key (defaults to merchant.key from config)")
	cmd.Flags().StringVar(&query, "query", "", "raw urlencoded payload")
	return cmd
}

func payloadFromArgs(query string, args []string) (*kdcpay.Payload, error) {
	p := kdcpay.ParsePayload(query)
	for _, arg := range args {
		name, value, ok := strings.Cut(arg, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("argument %q is not name=value", arg)
		}
		p.Set(name, value)
	}
	if p.Len() == 0 {
		return nil, fmt.Errorf("empty payload")
	}
	return p, nil
}
