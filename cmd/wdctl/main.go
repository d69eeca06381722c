// Package main implements the wdctl CLI for scripted operations against
// the project tracker backend.
package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/workdeck/internal/api"
	"github.com/fyrsmithlabs/workdeck/internal/config"
	"github.com/fyrsmithlabs/workdeck/internal/projects"
)

var (
	// serverURL overrides the configured base URL when set
	serverURL string
	// envName picks the configured environment
	envName string
	// configPath names the YAML config file
	configPath string
	// version information
	version = "dev"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "wdctl",
	Short: "CLI for project tracker operations",
	Long: `wdctl is a command-line interface for the project tracker backend.
It lists, adds, edits, and deletes projects, and triggers the weekly
Todoist sync, against the same API the workdeck dashboard uses.`,
	Version: version,
}

var (
	addTitle       string
	addDescription string
	addTechStack   string
	addWeeklyHours int
	rmForce        bool
)

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "backend base URL (overrides the configured one)")
	rootCmd.PersistentFlags().StringVar(&envName, "env", "", "backend environment: development or production")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path (default ~/.config/workdeck/config.yaml)")

	addCmd.Flags().StringVar(&addTitle, "title", "", "project title (required)")
	addCmd.Flags().StringVar(&addDescription, "description", "", "project description")
	addCmd.Flags().StringVar(&addTechStack, "tech-stack", "", "technologies used")
	addCmd.Flags().IntVar(&addWeeklyHours, "weekly-hours", 0, "planned hours per week")
	_ = addCmd.MarkFlagRequired("title")

	rmCmd.Flags().BoolVar(&rmForce, "force", false, "skip the confirmation prompt")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(setCmd)
	rootCmd.AddCommand(rmCmd)
	rootCmd.AddCommand(syncCmd)
}

// listCmd prints the full project list
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all projects",
	Long: `List all projects tracked by the backend.

Examples:
  # List projects on the configured backend
  wdctl list

  # List projects on an explicit server
  wdctl list --server http://localhost:8000`,
	Args: cobra.NoArgs,
	RunE: runList,
}

// getCmd fetches one project
var getCmd = &cobra.Command{
	Use:   "get <title>",
	Short: "Show one project",
	Long: `Fetch a single project by title.

Examples:
  wdctl get weblog
  wdctl get "side project"`,
	Args: cobra.ExactArgs(1),
	RunE: runGet,
}

// addCmd creates a project
var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a project",
	Long: `Add a project to the tracker.

Examples:
  wdctl add --title weblog --tech-stack "go, htmx" --weekly-hours 6`,
	Args: cobra.NoArgs,
	RunE: runAdd,
}

// setCmd updates one column of a project
var setCmd = &cobra.Command{
	Use:   "set <title> <column> <value>",
	Short: "Update one field of a project",
	Long: `Update a single column of a project. Columns: title, description,
tech_stack, weekly_hours.

Examples:
  wdctl set weblog weekly_hours 8
  wdctl set weblog title journal`,
	Args: cobra.ExactArgs(3),
	RunE: runSet,
}

// rmCmd deletes a project
var rmCmd = &cobra.Command{
	Use:   "rm <title>",
	Short: "Delete a project",
	Long: `Delete a project by title. Asks before deleting unless --force is set.

Examples:
  wdctl rm weblog
  wdctl rm weblog --force`,
	Args: cobra.ExactArgs(1),
	RunE: runRm,
}

// syncCmd triggers the weekly Todoist sync
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Trigger the weekly Todoist sync",
	Long: `Trigger the weekly Todoist task sync and print the server's result.

Examples:
  wdctl sync`,
	Args: cobra.NoArgs,
	RunE: runSync,
}

// newSynchronizer builds a synchronizer for the selected backend.
// --server wins outright and needs no config; otherwise the base URL
// comes from the configured environment.
func newSynchronizer() (*projects.Synchronizer, error) {
	baseURL := serverURL
	if baseURL == "" {
		if envName != "" {
			os.Setenv("APP_ENV", envName)
		}
		cfg, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		baseURL = cfg.ActiveBaseURL()
	}

	client, err := api.New(baseURL, nil)
	if err != nil {
		return nil, err
	}
	return projects.NewSynchronizer(client, nil, nil), nil
}

// runList handles the list command
func runList(cmd *cobra.Command, args []string) error {
	sync, err := newSynchronizer()
	if err != nil {
		return err
	}

	if err := sync.Load(cmd.Context()); err != nil {
		return err
	}

	list := sync.Projects()
	if len(list) == 0 {
		fmt.Println("no projects")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tDESCRIPTION\tTECH STACK\tHRS/WK")
	for _, p := range list {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\n", p.ID, p.Title, p.Description, p.TechStack, p.WeeklyHours)
	}
	return w.Flush()
}

// runGet handles the get command
func runGet(cmd *cobra.Command, args []string) error {
	sync, err := newSynchronizer()
	if err != nil {
		return err
	}

	p, err := sync.Refresh(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	fmt.Printf("Title:       %s\n", p.Title)
	fmt.Printf("ID:          %d\n", p.ID)
	fmt.Printf("Description: %s\n", p.Description)
	fmt.Printf("Tech stack:  %s\n", p.TechStack)
	fmt.Printf("Hours/week:  %d\n", p.WeeklyHours)
	return nil
}

// runAdd handles the add command
func runAdd(cmd *cobra.Command, args []string) error {
	p := projects.Project{
		Title:       addTitle,
		Description: addDescription,
		TechStack:   addTechStack,
		WeeklyHours: addWeeklyHours,
	}
	if err := p.Validate(); err != nil {
		return err
	}

	sync, err := newSynchronizer()
	if err != nil {
		return err
	}

	if err := sync.Add(cmd.Context(), p); err != nil {
		return err
	}

	saved, _ := sync.Get(p.Title)
	fmt.Printf("Added %q (id %d)\n", saved.Title, saved.ID)
	return nil
}

// runSet handles the set command
func runSet(cmd *cobra.Command, args []string) error {
	title, column := args[0], args[1]

	// weekly_hours goes over the wire as a number, everything else as text
	var value any = args[2]
	if column == projects.ColumnWeeklyHours {
		hours, err := projects.ParseWeeklyHours(args[2])
		if err != nil {
			return err
		}
		value = hours
	}

	sync, err := newSynchronizer()
	if err != nil {
		return err
	}

	if err := sync.UpdateField(cmd.Context(), title, column, value); err != nil {
		return err
	}

	fmt.Printf("Updated %s of %q\n", column, title)
	return nil
}

// runRm handles the rm command
func runRm(cmd *cobra.Command, args []string) error {
	title := args[0]

	if !rmForce {
		fmt.Printf("Delete %q? [y/N]: ", title)
		reader := bufio.NewReader(os.Stdin)
		answer, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("failed to read confirmation: %w", err)
		}
		answer = strings.ToLower(strings.TrimSpace(answer))
		if answer != "y" && answer != "yes" {
			fmt.Println("aborted")
			return nil
		}
	}

	sync, err := newSynchronizer()
	if err != nil {
		return err
	}

	if err := sync.Delete(cmd.Context(), title); err != nil {
		return err
	}

	fmt.Printf("Deleted %q\n", title)
	return nil
}

// runSync handles the sync command
func runSync(cmd *cobra.Command, args []string) error {
	sync, err := newSynchronizer()
	if err != nil {
		return err
	}

	// A sync the server declined comes back as an error that already
	// carries the server's message.
	message, err := sync.SyncWeekly(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Println(message)
	return nil
}
