package commands

import (
	"context"
	"time"

	"github.com/dyluth/careersync/internal/domain"
	"github.com/dyluth/careersync/internal/listing"
	"github.com/dyluth/careersync/internal/printer"
	"github.com/spf13/cobra"
)

var (
	contentOutput   string
	contentType     string
	contentStatus   string
	contentTitle    string
	contentSlug     string
	contentBody     string
	contentExcerpt  string
	contentLocation string
)

var contentCmd = &cobra.Command{
	Use:   "content",
	Short: "Manage CMS content items",
	Long: `Manage CMS content items (pages, blog posts, news, FAQs and events).

Every change is saved immediately and announced to other instances.

Examples:
  careersync content list --type=blog --status=published
  careersync content add --title="Spring Hiring Fair" --type=event --location=Leeds
  careersync content update 6f1c2a --excerpt="Meet 40 employers"
  careersync content publish 6f1c2a
  careersync content get about-us`,
}

var contentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List content items",
	Args:  cobra.NoArgs,
	RunE:  runContentList,
}

var contentGetCmd = &cobra.Command{
	Use:   "get <id|slug>",
	Short: "Show one content item as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runContentGet,
}

var contentAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a content item",
	Args:  cobra.NoArgs,
	RunE:  runContentAdd,
}

var contentUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Change fields of a content item",
	Args:  cobra.ExactArgs(1),
	RunE:  runContentUpdate,
}

var contentDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a content item",
	Args:  cobra.ExactArgs(1),
	RunE:  runContentDelete,
}

var contentPublishCmd = &cobra.Command{
	Use:   "publish <id>",
	Short: "Mark a content item as published",
	Args:  cobra.ExactArgs(1),
	RunE:  runContentPublish,
}

func init() {
	contentListCmd.Flags().StringVarP(&contentOutput, "output", "o", "default", "Output format: default, jsonl or json")
	contentListCmd.Flags().StringVar(&contentType, "type", "", "Only items of this type")
	contentListCmd.Flags().StringVar(&contentStatus, "status", "", "Only items with this status")

	for _, cmd := range []*cobra.Command{contentAddCmd, contentUpdateCmd} {
		cmd.Flags().StringVar(&contentTitle, "title", "", "Title")
		cmd.Flags().StringVar(&contentSlug, "slug", "", "URL slug (derived from the title when omitted)")
		cmd.Flags().StringVar(&contentType, "type", "", "page, blog, news, faq or event")
		cmd.Flags().StringVar(&contentStatus, "status", "", "draft, published or archived")
		cmd.Flags().StringVar(&contentBody, "content", "", "Body text")
		cmd.Flags().StringVar(&contentExcerpt, "excerpt", "", "Short summary")
		cmd.Flags().StringVar(&contentLocation, "location", "", "Location (events)")
	}
	contentAddCmd.MarkFlagRequired("title")
	contentAddCmd.MarkFlagRequired("type")

	contentCmd.AddCommand(contentListCmd, contentGetCmd, contentAddCmd, contentUpdateCmd, contentDeleteCmd, contentPublishCmd)
	rootCmd.AddCommand(contentCmd)
}

func runContentList(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	format, err := listing.ParseFormat(contentOutput)
	if err != nil {
		return printer.Error("invalid output format", err.Error(), []string{"Valid formats: default, jsonl, json"})
	}

	repos, err := openApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer repos.Close()

	hook := repos.ContentHook()
	items := hook.Items()
	if contentType != "" {
		items = hook.ContentByType(domain.ContentType(contentType))
	}
	if contentStatus != "" {
		filtered := items[:0:0]
		for _, c := range items {
			if c.Status == domain.ContentStatus(contentStatus) {
				filtered = append(filtered, c)
			}
		}
		items = filtered
	}

	return listing.Write(cmd.OutOrStdout(), format, items, listing.ContentTable(time.Now()))
}

func runContentGet(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	repos, err := openApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer repos.Close()

	hook := repos.ContentHook()
	if item, ok := hook.GetContentBySlug(args[0]); ok {
		return listing.FormatJSON(cmd.OutOrStdout(), item)
	}

	id, err := resolveID("content item", contentIDs(hook.Items()), args[0])
	if err != nil {
		return err
	}
	item, _ := hook.GetContent(id)
	return listing.FormatJSON(cmd.OutOrStdout(), item)
}

func runContentAdd(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	repos, err := openApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer repos.Close()

	item, err := repos.ContentHook().AddContent(ctx, domain.ContentInput{
		Title:    contentTitle,
		Slug:     contentSlug,
		Type:     domain.ContentType(contentType),
		Status:   domain.ContentStatus(contentStatus),
		Content:  contentBody,
		Excerpt:  contentExcerpt,
		Location: contentLocation,
	})
	if err != nil {
		return validationError("failed to add content", err)
	}

	printer.Info("id: %s\n", item.ID)
	return nil
}

// contentPatchFromFlags includes only the flags given on the command line.
func contentPatchFromFlags(cmd *cobra.Command) domain.ContentPatch {
	var patch domain.ContentPatch
	flags := cmd.Flags()
	if flags.Changed("title") {
		patch.Title = &contentTitle
	}
	if flags.Changed("slug") {
		patch.Slug = &contentSlug
	}
	if flags.Changed("type") {
		t := domain.ContentType(contentType)
		patch.Type = &t
	}
	if flags.Changed("status") {
		s := domain.ContentStatus(contentStatus)
		patch.Status = &s
	}
	if flags.Changed("content") {
		patch.Content = &contentBody
	}
	if flags.Changed("excerpt") {
		patch.Excerpt = &contentExcerpt
	}
	if flags.Changed("location") {
		patch.Location = &contentLocation
	}
	return patch
}

func runContentUpdate(cmd *cobra.Command, args []string) error {
	patch := contentPatchFromFlags(cmd)
	if patch.IsEmpty() {
		return printer.Error("nothing to update", "No fields were given.", []string{"Pass at least one of --title, --slug, --type, --status, --content, --excerpt, --location"})
	}

	ctx := context.Background()
	repos, err := openApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer repos.Close()

	hook := repos.ContentHook()
	id, err := resolveID("content item", contentIDs(hook.Items()), args[0])
	if err != nil {
		return err
	}
	if _, err := hook.UpdateContent(ctx, id, patch); err != nil {
		return validationError("failed to update content", err)
	}
	return nil
}

func runContentDelete(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	repos, err := openApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer repos.Close()

	hook := repos.ContentHook()
	id, err := resolveID("content item", contentIDs(hook.Items()), args[0])
	if err != nil {
		return err
	}
	return hook.DeleteContent(ctx, id)
}

func runContentPublish(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	repos, err := openApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer repos.Close()

	hook := repos.ContentHook()
	id, err := resolveID("content item", contentIDs(hook.Items()), args[0])
	if err != nil {
		return err
	}
	_, err = hook.PublishContent(ctx, id)
	return err
}
