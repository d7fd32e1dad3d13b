package commands

import (
	"context"

	"github.com/dyluth/careersync/internal/domain"
	"github.com/dyluth/careersync/internal/listing"
	"github.com/dyluth/careersync/internal/printer"
	"github.com/spf13/cobra"
)

var (
	partnersOutput     string
	partnersCategory   string
	partnersActiveOnly bool
	partnerName        string
	partnerLogo        string
	partnerWebsite     string
	partnerStatus      string
	partnerDescription string
)

var partnersCmd = &cobra.Command{
	Use:   "partners",
	Short: "Manage the partner directory",
	Long: `Manage the partner directory.

Every change is saved immediately and announced to other instances.

Examples:
  careersync partners list --category=technology --active
  careersync partners add --name="Northwind College" --category=education --website=https://northwind.example
  careersync partners toggle partner-northwind`,
}

var partnersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List partners",
	Args:  cobra.NoArgs,
	RunE:  runPartnersList,
}

var partnersAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a partner",
	Args:  cobra.NoArgs,
	RunE:  runPartnersAdd,
}

var partnersDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Remove a partner",
	Args:  cobra.ExactArgs(1),
	RunE:  runPartnersDelete,
}

var partnersToggleCmd = &cobra.Command{
	Use:   "toggle <id>",
	Short: "Switch a partner between active and inactive",
	Args:  cobra.ExactArgs(1),
	RunE:  runPartnersToggle,
}

func init() {
	partnersListCmd.Flags().StringVarP(&partnersOutput, "output", "o", "default", "Output format: default, jsonl or json")
	partnersListCmd.Flags().StringVar(&partnersCategory, "category", "", "Only partners in this category")
	partnersListCmd.Flags().BoolVar(&partnersActiveOnly, "active", false, "Only active partners")

	partnersAddCmd.Flags().StringVar(&partnerName, "name", "", "Partner name")
	partnersAddCmd.Flags().StringVar(&partnersCategory, "category", "", "Category, e.g. technology")
	partnersAddCmd.Flags().StringVar(&partnerLogo, "logo", "", "Logo URL")
	partnersAddCmd.Flags().StringVar(&partnerWebsite, "website", "", "Website URL")
	partnersAddCmd.Flags().StringVar(&partnerStatus, "status", "", "active or inactive (default active)")
	partnersAddCmd.Flags().StringVar(&partnerDescription, "description", "", "Description")
	partnersAddCmd.MarkFlagRequired("name")
	partnersAddCmd.MarkFlagRequired("category")

	partnersCmd.AddCommand(partnersListCmd, partnersAddCmd, partnersDeleteCmd, partnersToggleCmd)
	rootCmd.AddCommand(partnersCmd)
}

func runPartnersList(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	format, err := listing.ParseFormat(partnersOutput)
	if err != nil {
		return printer.Error("invalid output format", err.Error(), []string{"Valid formats: default, jsonl, json"})
	}

	repos, err := openApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer repos.Close()

	hook := repos.PartnersHook()
	list := hook.Partners()
	if partnersActiveOnly {
		list = hook.ActivePartners()
	}
	if partnersCategory != "" {
		filtered := list[:0:0]
		for _, p := range list {
			if p.Category == partnersCategory {
				filtered = append(filtered, p)
			}
		}
		list = filtered
	}

	return listing.Write(cmd.OutOrStdout(), format, list, listing.PartnerTable)
}

func runPartnersAdd(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	repos, err := openApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer repos.Close()

	p, err := repos.PartnersHook().AddPartner(ctx, domain.PartnerInput{
		Name:        partnerName,
		Logo:        partnerLogo,
		Website:     partnerWebsite,
		Category:    partnersCategory,
		Status:      domain.PartnerStatus(partnerStatus),
		Description: partnerDescription,
	})
	if err != nil {
		return validationError("failed to add partner", err)
	}

	printer.Info("id: %s\n", p.ID)
	return nil
}

func runPartnersDelete(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	repos, err := openApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer repos.Close()

	hook := repos.PartnersHook()
	id, err := resolveID("partner", partnerIDs(hook.Partners()), args[0])
	if err != nil {
		return err
	}
	return hook.DeletePartner(ctx, id)
}

func runPartnersToggle(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	repos, err := openApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer repos.Close()

	hook := repos.PartnersHook()
	id, err := resolveID("partner", partnerIDs(hook.Partners()), args[0])
	if err != nil {
		return err
	}
	_, err = hook.TogglePartnerStatus(ctx, id)
	return err
}
