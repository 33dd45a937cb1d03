package cmd

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/billfold/szamlazz-go/pkg/szamlazz"
)

var (
	fetchByOrder     bool
	fetchTolerant    bool
	cancelNotify     bool
	cancelEmail      string
	uploadAsProforma bool
)

var invoiceCmd = &cobra.Command{
	Use:   "invoice",
	Short: "Invoice operations",
}

var invoiceUploadCmd = &cobra.Command{
	Use:   "upload <file.yaml>",
	Short: "Create an invoice from a YAML description",
	Args:  cobra.ExactArgs(1),
	RunE:  runInvoiceUpload,
}

var invoiceFetchCmd = &cobra.Command{
	Use:   "fetch <number>",
	Short: "Fetch an invoice by invoice number or order number",
	Args:  cobra.ExactArgs(1),
	RunE:  runInvoiceFetch,
}

var invoiceCancelCmd = &cobra.Command{
	Use:   "cancel <number>",
	Short: "Cancel (storno) an invoice",
	Args:  cobra.ExactArgs(1),
	RunE:  runInvoiceCancel,
}

var proformaCmd = &cobra.Command{
	Use:   "proforma",
	Short: "Proforma invoice operations",
}

var proformaDeleteCmd = &cobra.Command{
	Use:   "delete <number>",
	Short: "Delete a proforma invoice",
	Args:  cobra.ExactArgs(1),
	RunE:  runProformaDelete,
}

func init() {
	rootCmd.AddCommand(invoiceCmd)
	invoiceCmd.AddCommand(invoiceUploadCmd)
	invoiceCmd.AddCommand(invoiceFetchCmd)
	invoiceCmd.AddCommand(invoiceCancelCmd)

	rootCmd.AddCommand(proformaCmd)
	proformaCmd.AddCommand(proformaDeleteCmd)

	invoiceUploadCmd.Flags().BoolVar(&uploadAsProforma, "proforma", false, "Create a proforma instead of an invoice")
	invoiceFetchCmd.Flags().BoolVar(&fetchByOrder, "order", false, "Treat the argument as an order number")
	invoiceFetchCmd.Flags().BoolVar(&fetchTolerant, "if-exists", false, "Print null instead of failing when not found")
	invoiceCancelCmd.Flags().BoolVar(&cancelNotify, "notify", false, "Send an e-mail notification about the storno")
	invoiceCancelCmd.Flags().StringVar(&cancelEmail, "email", "", "Customer e-mail for the notification")
}

// invoiceFile is the YAML description of an uploadable invoice.
type invoiceFile struct {
	IssueDate       string `yaml:"issue_date"`
	FulfillmentDate string `yaml:"fulfillment_date"`
	PaymentDeadline string `yaml:"payment_deadline"`
	PaymentMethod   string `yaml:"payment_method"`
	Currency        string `yaml:"currency"`
	Language        string `yaml:"language"`
	Comment         string `yaml:"comment"`
	OrderNumber     string `yaml:"order_number"`
	Prefix          string `yaml:"prefix"`

	Customer struct {
		Name       string `yaml:"name"`
		PostalCode string `yaml:"postal_code"`
		City       string `yaml:"city"`
		Address    string `yaml:"address"`
		Email      string `yaml:"email"`
		SendEmail  bool   `yaml:"send_email"`
		TaxNumber  string `yaml:"tax_number"`
	} `yaml:"customer"`

	Items []struct {
		Name         string `yaml:"name"`
		Quantity     string `yaml:"quantity"`
		QuantityUnit string `yaml:"quantity_unit"`
		NetUnitPrice string `yaml:"net_unit_price"`
		TaxRate      string `yaml:"tax_rate"`
		Comment      string `yaml:"comment"`
	} `yaml:"items"`
}

func (f *invoiceFile) toModel() (*szamlazz.Invoice, error) {
	issue, err := szamlazz.ParseDate(f.IssueDate)
	if err != nil {
		return nil, err
	}
	fulfillment, err := szamlazz.ParseDate(f.FulfillmentDate)
	if err != nil {
		return nil, err
	}
	deadline, err := szamlazz.ParseDate(f.PaymentDeadline)
	if err != nil {
		return nil, err
	}

	inv := &szamlazz.Invoice{
		Header: szamlazz.InvoiceHeader{
			IssueDate:       issue,
			FulfillmentDate: fulfillment,
			PaymentDeadline: deadline,
			PaymentMethod:   szamlazz.PaymentMethod(f.PaymentMethod),
			Currency:        f.Currency,
			Language:        f.Language,
			Comment:         f.Comment,
			OrderNumber:     f.OrderNumber,
			Prefix:          f.Prefix,
		},
		Proforma: uploadAsProforma,
	}
	inv.Customer = szamlazz.Customer{
		Name:       f.Customer.Name,
		PostalCode: f.Customer.PostalCode,
		City:       f.Customer.City,
		Address:    f.Customer.Address,
		Email:      f.Customer.Email,
		SendEmail:  f.Customer.SendEmail,
		TaxNumber:  f.Customer.TaxNumber,
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
		inv.Items = append(inv.Items, szamlazz.LineItem{
			Name:         item.Name,
			Quantity:     qty,
			QuantityUnit: item.QuantityUnit,
			NetUnitPrice: unitPrice,
			TaxRate:      szamlazz.ParseTaxRate(item.TaxRate),
			Comment:      item.Comment,
		})
	}
	return inv, nil
}

func runInvoiceUpload(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	var file invoiceFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parsing %s: %w", args[0], err)
	}
	inv, err := file.toModel()
	if err != nil {
		return err
	}

	client, err := buildClient()
	if err != nil {
		return err
	}
	result, err := client.UploadInvoice(cmd.Context(), inv)
	if err != nil {
		return err
	}
	return printJSON(result)
}

func runInvoiceFetch(cmd *cobra.Command, args []string) error {
	client, err := buildClient()
	if err != nil {
		return err
	}

	var inv *szamlazz.FetchedInvoice
	switch {
	case fetchByOrder && fetchTolerant:
		inv, err = client.FetchInvoiceByOrderNumberIfExists(cmd.Context(), args[0])
	case fetchByOrder:
		inv, err = client.FetchInvoiceByOrderNumber(cmd.Context(), args[0])
	case fetchTolerant:
		inv, err = client.FetchInvoiceIfExists(cmd.Context(), args[0])
	default:
		inv, err = client.FetchInvoice(cmd.Context(), args[0])
	}
	if err != nil {
		return err
	}
	return printJSON(inv)
}

func runInvoiceCancel(cmd *cobra.Command, args []string) error {
	client, err := buildClient()
	if err != nil {
		return err
	}
	result, err := client.CancelInvoice(cmd.Context(), &szamlazz.CancelInvoice{
		InvoiceNumber: args[0],
		NotifyByEmail: cancelNotify,
		CustomerEmail: cancelEmail,
	})
	if err != nil {
		return err
	}
	return printJSON(result)
}

func runProformaDelete(cmd *cobra.Command, args []string) error {
	client, err := buildClient()
	if err != nil {
		return err
	}
	if err := client.DeleteProforma(cmd.Context(), args[0]); err != nil {
		return err
	}
	fmt.Printf("Proforma %s deleted\n", args[0])
	return nil
}
