package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/GoSim-25-26J-441/eprod/internal/client/projectstore"
	"github.com/GoSim-25-26J-441/eprod/internal/projects/domain"
)

var (
	title   string
	prompt  string
	sources []string
)

var projectsCmd = &cobra.Command{
	Use:     "projects",
	Aliases: []string{"p"},
	Short:   "List and manage projects",
	RunE:    withApp(listProjects),
}

var projectsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a project without generating an image",
	RunE: withApp(func(ctx context.Context, a *app, cmd *cobra.Command, _ []string) error {
		p, err := a.dash.Create(ctx, domain.Draft{Title: title, Prompt: prompt, SourceImageRefs: sources})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created %s %q\n", p.ID, p.Title)
		return nil
	}),
}

var projectsRenameCmd = &cobra.Command{
	Use:   "rename <id> <title>",
	Short: "Rename a project",
	Args:  cobra.ExactArgs(2),
	RunE: withApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
		p, err := a.dash.Rename(ctx, args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Renamed %s to %q\n", p.ID, p.Title)
		return nil
	}),
}

var projectsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a project",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
		if err := a.dash.Delete(ctx, args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
		return nil
	}),
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate an image from a prompt and save it as a project",
	RunE: withApp(func(ctx context.Context, a *app, cmd *cobra.Command, _ []string) error {
		p, err := a.dash.Generate(ctx, domain.Draft{Title: title, Prompt: prompt, SourceImageRefs: sources})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Generated %s %q: %s\n", p.ID, p.Title, *p.GeneratedImageRef)
		return nil
	}),
}

func listProjects(_ context.Context, a *app, cmd *cobra.Command, _ []string) error {
	snap, err := a.dash.Projects()
	if err != nil {
		return err
	}
	stats, err := a.dash.Stats()
	if err != nil {
		return err
	}
	writeProjects(cmd.OutOrStdout(), snap)
	fmt.Fprintf(cmd.OutOrStdout(), "\n%d projects, %d with images, %d this month\n", stats.Total, stats.WithImages, stats.ThisMonth)
	return nil
}

func writeProjects(out io.Writer, snap projectstore.Snapshot) {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tCREATED\tIMAGE")
	for _, it := range snap.Items {
		image := "-"
		if it.GeneratedImageRef != nil {
			image = *it.GeneratedImageRef
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", it.ID, it.Title, it.CreatedAt.Local().Format("2006-01-02 15:04"), image)
	}
	_ = w.Flush()
}

func init() {
	for _, c := range []*cobra.Command{projectsCreateCmd, generateCmd} {
		c.Flags().StringVar(&title, "title", "", "project title (defaults to a dated name)")
		c.Flags().StringVar(&prompt, "prompt", "", "description of the image")
		c.Flags().StringSliceVar(&sources, "source", nil, "source image reference (repeatable)")
		_ = c.MarkFlagRequired("prompt")
	}
	projectsCmd.AddCommand(projectsCreateCmd, projectsRenameCmd, projectsDeleteCmd)
}
