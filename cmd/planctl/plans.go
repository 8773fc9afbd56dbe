package main

import (
	"fmt"
	"net/url"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var (
	// plan command flags
	planGoal       string
	planLimit      int
	planOffset     int
	planOutputJSON bool
)

func init() {
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(healthCmd)

	getCmd.Flags().BoolVar(&planOutputJSON, "json", false, "Output results as JSON")

	listCmd.Flags().StringVar(&planGoal, "goal", "", "Look up the plan for an exact goal")
	listCmd.Flags().IntVar(&planLimit, "limit", 20, "Maximum number of plans to return")
	listCmd.Flags().IntVar(&planOffset, "offset", 0, "Number of plans to skip")
	listCmd.Flags().BoolVar(&planOutputJSON, "json", false, "Output results as JSON")
}

var getCmd = &cobra.Command{
	Use:   "get <plan-id>",
	Short: "Fetch a stored plan by id",
	Long: `Fetch a stored plan by its identifier.

Examples:
  # Fetch a plan
  planctl get 2f3c9a10-...

  # Output as JSON
  planctl get 2f3c9a10-... --json`,
	Args: cobra.ExactArgs(1),
	RunE: runGet,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored plans",
	Long: `List stored plans, newest first, or look one up by exact goal.

Examples:
  # List the 20 most recent plans
  planctl list

  # Page through older plans
  planctl list --limit 10 --offset 20

  # Look up the plan for an exact goal
  planctl list --goal "Launch a podcast about urban gardening"`,
	RunE: runList,
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check plannerd server health",
	Long: `Check the health status of the plannerd HTTP server.

Examples:
  # Check health
  planctl health

  # Check health on a different server
  planctl health --server http://localhost:8080`,
	RunE: runHealth,
}

func runGet(cmd *cobra.Command, args []string) error {
	var p plan
	if err := getJSON("/api/v1/plans/"+url.PathEscape(args[0]), &p); err != nil {
		return err
	}
	if planOutputJSON {
		return outputJSON(p)
	}
	fmt.Print(renderPlan(&p))
	return nil
}

func runList(cmd *cobra.Command, args []string) error {
	if planGoal != "" {
		var p plan
		path := "/api/v1/plans?goal=" + url.QueryEscape(planGoal)
		if err := getJSON(path, &p); err != nil {
			return err
		}
		if planOutputJSON {
			return outputJSON(p)
		}
		fmt.Print(renderPlan(&p))
		return nil
	}

	var plans []plan
	path := fmt.Sprintf("/api/v1/plans?limit=%d&offset=%d", planLimit, planOffset)
	if err := getJSON(path, &plans); err != nil {
		return err
	}
	if planOutputJSON {
		return outputJSON(plans)
	}

	if len(plans) == 0 {
		fmt.Println("No plans found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tGOAL\tTASKS\tSOURCE\tCREATED")
	for _, p := range plans {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n",
			truncate(p.ID, 12),
			truncate(p.Goal, 50),
			len(p.Tasks),
			p.Source,
			p.CreatedAt.Format("2006-01-02 15:04"),
		)
	}
	w.Flush()

	return nil
}

func runHealth(cmd *cobra.Command, args []string) error {
	var health healthResponse
	if err := getJSON("/health", &health); err != nil {
		return err
	}

	fmt.Printf("Server Status: %s\n", health.Status)
	fmt.Printf("Server URL: %s\n", serverURL)
	fmt.Printf("Providers: %d\n", health.Providers)
	fmt.Printf("Cache: %s\n", health.Cache)
	fmt.Printf("Store: %s\n", health.Store)

	return nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
