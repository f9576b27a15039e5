// Command oderctl is a small client for the extract service HTTP API.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var serverAddr string

func main() {
	root := &cobra.Command{
		Use:           "oderctl",
		Short:         "Manage and run eligibility extracts",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&serverAddr, "addr", envOr("ODER_ADDR", "http://localhost:8080"),
		"base URL of the extract service")

	root.AddCommand(listCmd(), getCmd(), runCmd(), exportCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func listCmd() *cobra.Command {
	var search string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List visible extracts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/api/v1/extracts"
			if search != "" {
				path += "?search=" + url.QueryEscape(search)
			}
			var extracts []struct {
				ID         int64  `json:"id"`
				Code       string `json:"code"`
				Name       string `json:"name"`
				LobName    string `json:"lobName"`
				SubLobName string `json:"subLobName"`
			}
			if err := getJSON(path, &extracts); err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tCODE\tNAME\tLOB\tSUB-LOB")
			for _, e := range extracts {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", e.ID, e.Code, e.Name, e.LobName, e.SubLobName)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&search, "search", "", "filter by name or code substring")
	return cmd
}

func getCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <extract-id>",
		Short: "Show an extract definition, including its generated statement",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			var raw json.RawMessage
			if err := getJSON(fmt.Sprintf("/api/v1/extracts/%d", id), &raw); err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(raw)
		},
	}
}

func runCmd() *cobra.Command {
	var page, pageSize int
	cmd := &cobra.Command{
		Use:   "run <extract-id>",
		Short: "Run an extract and print a sample page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			var result struct {
				ExtractName string               `json:"extractName"`
				Columns     []string             `json:"columns"`
				Rows        []map[string]*string `json:"rows"`
				TotalCount  int                  `json:"totalCount"`
				CurrentPage int                  `json:"currentPage"`
				HasMore     bool                 `json:"hasMore"`
			}
			path := fmt.Sprintf("/api/v1/extracts/%d/run?page=%d&pageSize=%d", id, page, pageSize)
			if err := getJSON(path, &result); err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for i, c := range result.Columns {
				if i > 0 {
					fmt.Fprint(tw, "\t")
				}
				fmt.Fprint(tw, c)
			}
			fmt.Fprintln(tw)
			for _, row := range result.Rows {
				for i, c := range result.Columns {
					if i > 0 {
						fmt.Fprint(tw, "\t")
					}
					if v := row[c]; v != nil {
						fmt.Fprint(tw, *v)
					}
				}
				fmt.Fprintln(tw)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\n%s: page %d, %d matching member(s), more=%v\n",
				result.ExtractName, result.CurrentPage, result.TotalCount, result.HasMore)
			return nil
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().IntVar(&pageSize, "page-size", 10, "rows per page")
	return cmd
}

func exportCmd() *cobra.Command {
	var outPath string
	cmd := &cobra.Command{
		Use:   "export <extract-id>",
		Short: "Download the delimited extract file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			resp, err := httpGet(fmt.Sprintf("/api/v1/extracts/%d/export", id))
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			out := cmd.OutOrStdout()
			if outPath != "" {
				f, err := os.Create(outPath)
				if err != nil {
					return err
				}
				defer f.Close()
				out = f
			}
			if _, err := io.Copy(out, resp.Body); err != nil {
				return err
			}
			if outPath != "" {
				fmt.Fprintln(cmd.OutOrStdout(), "wrote", outPath)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&outPath, "output", "o", "", "write to file instead of stdout")
	return cmd
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid extract id %q", s)
	}
	return id, nil
}

func httpGet(path string) (*http.Response, error) {
	client := &http.Client{Timeout: 2 * time.Minute}
	resp, err := client.Get(serverAddr + path)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.NewDecoder(resp.Body).Decode(&apiErr) == nil && apiErr.Error != "" {
			return nil, fmt.Errorf("%s: %s", resp.Status, apiErr.Error)
		}
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	return resp, nil
}

func getJSON(path string, v interface{}) error {
	resp, err := httpGet(path)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return json.NewDecoder(resp.Body).Decode(v)
}
