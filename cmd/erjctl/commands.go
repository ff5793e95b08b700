package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pkordes/erj-report/internal/domain"
	"github.com/pkordes/erj-report/internal/numbering"
	"github.com/pkordes/erj-report/internal/repo"
)

func newMigrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			versions, err := repo.Migrate(cmd.Context(), a.options())
			if err != nil {
				return err
			}
			if len(versions) == 0 {
				fmt.Fprintln(a.out, "database is up to date")
				return nil
			}
			for _, v := range versions {
				fmt.Fprintf(a.out, "applied %d\n", v)
			}
			return nil
		},
	}
}

// ---- report ----------------------------------------------------------------

func newReportCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Inspect, import and export reports",
	}
	cmd.AddCommand(newReportShowCmd(a), newReportExportCmd(a), newReportAnalyzeCmd(a), newReportImportCmd(a))
	return cmd
}

func newReportShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <number>",
		Short: "Print a report as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeFn, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			r, err := svc.reports.Get(cmd.Context(), numbering.FromSlug(args[0]))
			if err != nil {
				return err
			}
			return printJSON(a, r)
		},
	}
}

func newReportExportCmd(a *app) *cobra.Command {
	var format, out string
	cmd := &cobra.Command{
		Use:   "export <number>",
		Short: "Export a report as json, csv (station timing) or xlsx (R-7 manifest)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeFn, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			exp, err := svc.reports.Export(cmd.Context(), numbering.FromSlug(args[0]), domain.ExportFormat(format))
			if err != nil {
				return err
			}
			if out == "-" {
				_, err := a.out.Write(exp.Body)
				return err
			}
			if out == "" {
				out = exp.Filename
			} else if info, err := os.Stat(out); err == nil && info.IsDir() {
				out = filepath.Join(out, exp.Filename)
			}
			if err := os.WriteFile(out, exp.Body, 0o644); err != nil {
				return fmt.Errorf("write export: %w", err)
			}
			fmt.Fprintf(a.out, "wrote %s (%d bytes)\n", out, len(exp.Body))
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", string(domain.FormatJSON), "Export format: json, csv or xlsx")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file or directory (default: export filename in the current directory, - for stdout)")
	return cmd
}

func newReportAnalyzeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "analyze <number>",
		Short: "Compute and store the manifest analysis of a report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeFn, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			an, err := svc.reports.Analyze(cmd.Context(), numbering.FromSlug(args[0]))
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "length      %.2f m\n", an.Length)
			fmt.Fprintf(a.out, "mass        %.2f t (wagons %.2f, locomotives %.2f)\n", an.MassTotal, an.MassWagons, an.MassLocomotives)
			fmt.Fprintf(a.out, "brake mass  %.2f t (wagons %.2f, locomotives %.2f)\n", an.BrakeTotal, an.BrakeWagons, an.BrakeLocomotives)
			fmt.Fprintf(a.out, "braking %%   %.2f (wagons %.2f)\n", an.PctTotal, an.PctWagons)
			return nil
		},
	}
}

func newReportImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.json>",
		Short: "Import a report from a JSON export, replacing any report with the same number",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			var r domain.Report
			if err := json.Unmarshal(b, &r); err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}

			svc, closeFn, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			stored, err := svc.reports.Import(cmd.Context(), r)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "imported %s\n", stored.Number)
			return nil
		},
	}
}

// ---- user ------------------------------------------------------------------

func newUserCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage users",
	}
	cmd.AddCommand(newUserAddCmd(a), newUserListCmd(a))
	return cmd
}

func newUserAddCmd(a *app) *cobra.Command {
	var u domain.User
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, closeFn, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			created, err := svc.users.Create(cmd.Context(), u)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "created user %s (%s)\n", created.ID, created.Role)
			return nil
		},
	}
	cmd.Flags().StringVar(&u.ID, "id", "", "Employee number")
	cmd.Flags().StringVar(&u.Name, "name", "", "Display name")
	cmd.Flags().StringVar(&u.Email, "email", "", "Email address")
	cmd.Flags().StringVar(&u.Depot, "depot", "", "Home depot")
	cmd.Flags().StringVar(&u.Role, "role", domain.RoleUser, "Role: admin or user")
	return cmd
}

func newUserListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, closeFn, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			users, err := svc.users.List(cmd.Context())
			if err != nil {
				return err
			}
			for _, u := range users {
				fmt.Fprintf(a.out, "%s\t%s\t%s\t%s\t%s\n", u.ID, u.Name, u.Email, u.Role, u.Status)
			}
			return nil
		},
	}
}

// ---- phonebook -------------------------------------------------------------

func newPhonebookCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "phonebook",
		Short: "Maintain the operational phonebook",
	}
	cmd.AddCommand(newPhonebookImportCmd(a), newPhonebookRefreshCmd(a))
	return cmd
}

func newPhonebookImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Replace the phonebook with a CSV file (name,role,number,hours)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			svc, closeFn, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			entries, err := svc.phonebook.Import(cmd.Context(), f)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "imported %d entries\n", len(entries))
			return nil
		},
	}
}

func newPhonebookRefreshCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Download the phonebook from PHONEBOOK_URL, keeping the stored copy on failure",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, closeFn, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			entries, source, err := svc.phonebook.Refresh(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "%d entries (%s)\n", len(entries), source)
			return nil
		},
	}
}

// ---- discount --------------------------------------------------------------

func newDiscountCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "discount",
		Short: "Maintain the statutory discount table",
	}
	cmd.AddCommand(newDiscountListCmd(a), newDiscountImportCmd(a), newDiscountResetCmd(a))
	return cmd
}

func newDiscountListCmd(a *app) *cobra.Command {
	var typ string
	cmd := &cobra.Command{
		Use:   "list [query]",
		Short: "List discounts, optionally matching a search query",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeFn, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			var query string
			if len(args) == 1 {
				query = args[0]
			}
			ds, err := svc.discounts.List(cmd.Context(), query, typ)
			if err != nil {
				return err
			}
			for _, d := range ds {
				fmt.Fprintf(a.out, "%s\t%s\t%s\n", d.Code, d.Name, d.DisplayValue())
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&typ, "type", "t", "", "Only discounts of this type (percent, exemption)")
	return cmd
}

func newDiscountImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Replace the discount table with a CSV file (code;name;type;value;description)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			svc, closeFn, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			ds, err := svc.discounts.Import(cmd.Context(), f)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "imported %d discounts\n", len(ds))
			return nil
		},
	}
}

func newDiscountResetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Restore the default discount table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, closeFn, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			ds, err := svc.discounts.Reset(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "restored %d discounts\n", len(ds))
			return nil
		},
	}
}

// ---- helpers ---------------------------------------------------------------

func printJSON(a *app, v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
