package cli

import (
	"fmt"
	"strings"

	"milkdesk/internal/api"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type supplierFlags struct {
	firstName         string
	lastName          string
	phone             string
	email             string
	jmbg              string
	agricultureNumber string
	bankAccount       string
	street            string
	city              string
	country           string
	zipCode           string
}

func (f *supplierFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.firstName, "first-name", "", "First name")
	fs.StringVar(&f.lastName, "last-name", "", "Last name")
	fs.StringVar(&f.phone, "phone", "", "Phone number")
	fs.StringVar(&f.email, "email", "", "Email address")
	fs.StringVar(&f.jmbg, "jmbg", "", "Personal identification number")
	fs.StringVar(&f.agricultureNumber, "agriculture-number", "", "Agricultural holding number")
	fs.StringVar(&f.bankAccount, "bank-account", "", "Bank account")
	fs.StringVar(&f.street, "street", "", "Street address")
	fs.StringVar(&f.city, "city", "", "City")
	fs.StringVar(&f.country, "country", "", "Country")
	fs.StringVar(&f.zipCode, "zip-code", "", "Zip code")
}

// apply copies the flags the user set onto s.
func (f *supplierFlags) apply(cmd *cobra.Command, s *api.Supplier) {
	fields := map[string]*string{
		"first-name":         &s.FirstName,
		"last-name":          &s.LastName,
		"phone":              &s.Phone,
		"email":              &s.Email,
		"jmbg":               &s.JMBG,
		"agriculture-number": &s.AgricultureNumber,
		"bank-account":       &s.BankAccount,
		"street":             &s.Street,
		"city":               &s.City,
		"country":            &s.Country,
		"zip-code":           &s.ZipCode,
	}
	values := map[string]string{
		"first-name":         f.firstName,
		"last-name":          f.lastName,
		"phone":              f.phone,
		"email":              f.email,
		"jmbg":               f.jmbg,
		"agriculture-number": f.agricultureNumber,
		"bank-account":       f.bankAccount,
		"street":             f.street,
		"city":               f.city,
		"country":            f.country,
		"zip-code":           f.zipCode,
	}
	for name, field := range fields {
		if cmd.Flags().Changed(name) {
			*field = strings.TrimSpace(values[name])
		}
	}
}

func (r *Runner) suppliersCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "suppliers",
		Aliases: []string{"supplier"},
		Short:   "Manage milk suppliers",
	}
	cmd.AddCommand(
		r.suppliersListCommand(),
		r.suppliersCitiesCommand(),
		r.suppliersAddCommand(),
		r.suppliersEditCommand(),
		r.suppliersDeleteCommand(),
		r.suppliersMoveCommand(),
	)
	return cmd
}

func (r *Runner) suppliersListCommand() *cobra.Command {
	var city string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List suppliers in their display order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			list, err := r.client.ListSuppliers(cmd.Context())
			if err != nil {
				return err
			}
			list = api.FilterByCity(api.SortByOrderIndex(list), city)
			if r.options.JSON {
				return writeJSON(cmd.OutOrStdout(), list)
			}
			return writeSuppliers(cmd.OutOrStdout(), list)
		},
	}
	cmd.Flags().StringVar(&city, "city", "", "Only suppliers from this city")
	return cmd
}

func (r *Runner) suppliersCitiesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "cities",
		Short: "List the cities suppliers come from",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			list, err := r.client.ListSuppliers(cmd.Context())
			if err != nil {
				return err
			}
			cities := api.Cities(list)
			if r.options.JSON {
				return writeJSON(cmd.OutOrStdout(), cities)
			}
			for _, c := range cities {
				fmt.Fprintln(cmd.OutOrStdout(), c)
			}
			return nil
		},
	}
}

func (r *Runner) suppliersAddCommand() *cobra.Command {
	var flags supplierFlags
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Register a new supplier at the end of the list",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := requireWrite(cmd); err != nil {
				return err
			}
			list, err := r.client.ListSuppliers(cmd.Context())
			if err != nil {
				return err
			}

			var s api.Supplier
			flags.apply(cmd, &s)
			for _, existing := range list {
				if existing.OrderIndex >= s.OrderIndex {
					s.OrderIndex = existing.OrderIndex + 1
				}
			}

			created, err := trackCall(r.logger, "create_supplier", []zap.Field{zap.String("name", s.FullName())}, func() (api.Supplier, error) {
				return r.client.CreateSupplier(cmd.Context(), s)
			})
			if err != nil {
				return err
			}
			if r.options.JSON {
				return writeJSON(cmd.OutOrStdout(), created)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added supplier %d %s\n", created.ID, created.FullName())
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func (r *Runner) suppliersEditCommand() *cobra.Command {
	var flags supplierFlags
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change supplier details; only the given flags are updated",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireWrite(cmd); err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			list, err := r.client.ListSuppliers(cmd.Context())
			if err != nil {
				return err
			}
			s, ok := api.FindSupplier(list, id)
			if !ok {
				return fmt.Errorf("%w: supplier %d", api.ErrNotFound, id)
			}

			flags.apply(cmd, &s)
			updated, err := trackCall(r.logger, "update_supplier", []zap.Field{zap.Int64("supplier_id", id)}, func() (api.Supplier, error) {
				return r.client.UpdateSupplier(cmd.Context(), s)
			})
			if err != nil {
				return err
			}
			if r.options.JSON {
				return writeJSON(cmd.OutOrStdout(), updated)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated supplier %d %s\n", updated.ID, updated.FullName())
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func (r *Runner) suppliersDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Remove a supplier",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireWrite(cmd); err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if _, err := trackCall(r.logger, "delete_supplier", []zap.Field{zap.Int64("supplier_id", id)}, func() (struct{}, error) {
				return struct{}{}, r.client.DeleteSupplier(cmd.Context(), id)
			}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted supplier %d\n", id)
			return nil
		},
	}
}

func (r *Runner) suppliersMoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "move <id> up|down",
		Short: "Move a supplier one place up or down the display order",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireWrite(cmd); err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			dir, err := api.ParseDirection(args[1])
			if err != nil {
				return err
			}
			list, err := r.client.ListSuppliers(cmd.Context())
			if err != nil {
				return err
			}
			order, err := api.MoveSupplier(list, id, dir)
			if err != nil {
				return err
			}
			if _, err := trackCall(r.logger, "reorder_suppliers", []zap.Field{zap.Int64("supplier_id", id), zap.Int("suppliers", len(order))}, func() (struct{}, error) {
				return struct{}{}, r.client.ReorderSuppliers(cmd.Context(), order)
			}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Moved supplier %d %s\n", id, args[1])
			return nil
		},
	}
}
