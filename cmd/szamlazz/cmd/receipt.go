package cmd

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/billfold/szamlazz-go/pkg/szamlazz"
)

var receiptFetchTolerant bool

var receiptCmd = &cobra.Command{
	Use:   "receipt",
	Short: "Receipt operations",
}

var receiptUploadCmd = &cobra.Command{
	Use:   "upload <file.yaml>",
	Short: "Create a receipt from a YAML description",
	Args:  cobra.ExactArgs(1),
	RunE:  runReceiptUpload,
}

var receiptFetchCmd = &cobra.Command{
	Use:   "fetch <number>",
	Short: "Fetch a receipt by number",
	Args:  cobra.ExactArgs(1),
	RunE:  runReceiptFetch,
}

var receiptCancelCmd = &cobra.Command{
	Use:   "cancel <number>",
	Short: "Cancel (storno) a receipt",
	Args:  cobra.ExactArgs(1),
	RunE:  runReceiptCancel,
}

func init() {
	rootCmd.AddCommand(receiptCmd)
	receiptCmd.AddCommand(receiptUploadCmd)
	receiptCmd.AddCommand(receiptFetchCmd)
	receiptCmd.AddCommand(receiptCancelCmd)

	receiptFetchCmd.Flags().BoolVar(&receiptFetchTolerant, "if-exists", false, "Print null instead of failing when not found")
}

// receiptFile is the YAML description of an uploadable receipt.
type receiptFile struct {
	Prefix        string `yaml:"prefix"`
	PaymentMethod string `yaml:"payment_method"`
	Currency      string `yaml:"currency"`
	Comment       string `yaml:"comment"`
	CallID        string `yaml:"call_id"`

	Items []struct {
		Name         string `yaml:"name"`
		Quantity     string `yaml:"quantity"`
		QuantityUnit string `yaml:"quantity_unit"`
		NetUnitPrice string `yaml:"net_unit_price"`
		TaxRate      string `yaml:"tax_rate"`
	} `yaml:"items"`

	Payments []struct {
		Method  string `yaml:"method"`
		Amount  string `yaml:"amount"`
		Comment string `yaml:"comment"`
	} `yaml:"payments"`
}

func (f *receiptFile) toModel() (*szamlazz.Receipt, error) {
	rec := &szamlazz.Receipt{
		Header: szamlazz.ReceiptHeader{
			Prefix:        f.Prefix,
			PaymentMethod: szamlazz.PaymentMethod(f.PaymentMethod),
			Currency:      f.Currency,
			Comment:       f.Comment,
			CallID:        f.CallID,
		},
	}
	for _, item := range f.Items {
		qty, err := decimal.NewFromString(item.Quantity)
		if err != nil {
			return nil, fmt.Errorf("item %q: bad quantity: %w", item.Name, err)
		}
		unitPrice, err := decimal.NewFromString(item.NetUnitPrice)
		if err != nil {
			return nil, fmt.Errorf("item %q: bad net unit price: %w", item.Name, err)
		}
		rec.Items = append(rec.Items, szamlazz.LineItem{
			Name:         item.Name,
			Quantity:     qty,
			QuantityUnit: item.QuantityUnit,
			NetUnitPrice: unitPrice,
			TaxRate:      szamlazz.ParseTaxRate(item.TaxRate),
		})
	}
	for _, p := range f.Payments {
		amount, err := decimal.NewFromString(p.Amount)
		if err != nil {
			return nil, fmt.Errorf("payment %q: bad amount: %w", p.Method, err)
		}
		rec.Payments = append(rec.Payments, szamlazz.PaymentEntry{
			Method:  szamlazz.PaymentMethod(p.Method),
			Amount:  amount,
			Comment: p.Comment,
		})
	}
	return rec, nil
}

func runReceiptUpload(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	var file receiptFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parsing %s: %w", args[0], err)
	}
	rec, err := file.toModel()
	if err != nil {
		return err
	}

	client, err := buildClient()
	if err != nil {
		return err
	}
	fetched, err := client.UploadReceipt(cmd.Context(), rec)
	if err != nil {
		return err
	}
	return printJSON(fetched)
}

func runReceiptFetch(cmd *cobra.Command, args []string) error {
	client, err := buildClient()
	if err != nil {
		return err
	}

	var rec *szamlazz.FetchedReceipt
	if receiptFetchTolerant {
		rec, err = client.FetchReceiptIfExists(cmd.Context(), args[0])
	} else {
		rec, err = client.FetchReceipt(cmd.Context(), args[0])
	}
	if err != nil {
		return err
	}
	return printJSON(rec)
}

func runReceiptCancel(cmd *cobra.Command, args []string) error {
	client, err := buildClient()
	if err != nil {
		return err
	}
	fetched, err := client.CancelReceipt(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	return printJSON(fetched)
}
