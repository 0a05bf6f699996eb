package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"socialdash/internal/domain"
	"socialdash/internal/mockdata"
	"socialdash/internal/service"
)

func newProfilesCmd(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profiles",
		Short: "List linked social profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			profiles, err := appFrom(cmd).Client.Profiles.Get(cmd.Context())
			if err != nil {
				return err
			}
			if opts.Output == "json" {
				return writeJSON(cmd.OutOrStdout(), profiles)
			}
			out := cmd.OutOrStdout()
			if len(profiles) == 0 {
				fmt.Fprintln(out, "No linked profiles.")
				return nil
			}
			for _, p := range profiles {
				state := "connected"
				if !p.Connected {
					state = "disconnected"
				}
				fmt.Fprintf(out, "%-36s %-10s %-20s %10d  %s\n", p.ID, p.Platform, p.Username, p.Followers, state)
			}
			return nil
		},
	}
	cmd.AddCommand(newProfileAddCmd(opts))
	cmd.AddCommand(newProfileDeleteCmd(opts))
	return cmd
}

func newProfileAddCmd(opts *Options) *cobra.Command {
	var in service.NewProfile
	var platform string
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Link a social profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			in.Platform = domain.Platform(strings.ToLower(platform))
			profile, err := appFrom(cmd).Client.Profiles.Add(cmd.Context(), in)
			if err != nil {
				return err
			}
			if opts.Output == "json" {
				return writeJSON(cmd.OutOrStdout(), profile)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Linked %s profile %s (%s)\n", profile.Platform, profile.Username, profile.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&platform, "platform", "", "instagram|twitter|facebook|linkedin|tiktok|youtube")
	cmd.Flags().StringVar(&in.Username, "username", "", "account handle")
	cmd.Flags().StringVar(&in.ProfileURL, "url", "", "profile URL")
	cmd.Flags().Int64Var(&in.Followers, "followers", 0, "current follower count")
	return cmd
}

func newProfileDeleteCmd(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Unlink a social profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			profile, err := appFrom(cmd).Client.Profiles.Delete(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if opts.Output == "json" {
				return writeJSON(cmd.OutOrStdout(), profile)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Unlinked %s profile %s\n", profile.Platform, profile.ID)
			return nil
		},
	}
}

func newSuggestionsCmd(opts *Options) *cobra.Command {
	var status, platform string
	cmd := &cobra.Command{
		Use:   "suggestions",
		Short: "List content suggestions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := domain.SuggestionFilter{
				Status:   domain.SuggestionStatus(strings.ToLower(status)),
				Platform: domain.Platform(strings.ToLower(platform)),
			}
			suggestions, err := appFrom(cmd).Client.Suggestions.Get(cmd.Context(), filter)
			if err != nil {
				return err
			}
			if opts.Output == "json" {
				return writeJSON(cmd.OutOrStdout(), suggestions)
			}
			out := cmd.OutOrStdout()
			if len(suggestions) == 0 {
				fmt.Fprintln(out, "No suggestions.")
				return nil
			}
			for _, s := range suggestions {
				fmt.Fprintf(out, "%-36s %-9s %-9s %3d  %s\n", s.ID, s.Status, s.Platform, s.AIGeneratedScore, s.Title)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "pending|approved|rejected|published")
	cmd.Flags().StringVar(&platform, "platform", "", "platform, or all")
	cmd.AddCommand(newSuggestionAddCmd(opts))
	cmd.AddCommand(newSetStatusCmd(opts))
	cmd.AddCommand(newSuggestionDeleteCmd(opts))
	return cmd
}

func newSuggestionAddCmd(opts *Options) *cobra.Command {
	var in service.NewSuggestion
	var platform, mediaType string
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a content suggestion",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			in.Platform = domain.Platform(strings.ToLower(platform))
			in.MediaType = domain.MediaType(strings.ToLower(mediaType))
			suggestion, err := appFrom(cmd).Client.Suggestions.Add(cmd.Context(), in)
			if err != nil {
				return err
			}
			if opts.Output == "json" {
				return writeJSON(cmd.OutOrStdout(), suggestion)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added suggestion %s (%s)\n", suggestion.ID, suggestion.Status)
			return nil
		},
	}
	cmd.Flags().StringVar(&in.Title, "title", "", "title")
	cmd.Flags().StringVar(&in.Content, "content", "", "post body")
	cmd.Flags().StringVar(&platform, "platform", string(domain.PlatformAll), "target platform, or all")
	cmd.Flags().StringVar(&mediaType, "media", string(domain.MediaText), "text|image|video|carousel|story")
	cmd.Flags().StringSliceVar(&in.Tags, "tag", nil, "tag (repeatable)")
	cmd.Flags().IntVar(&in.AIGeneratedScore, "score", 0, "score 0-100")
	return cmd
}

func newSetStatusCmd(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "set-status ID STATUS",
		Short: "Approve, reject or publish a suggestion",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			status := domain.SuggestionStatus(strings.ToLower(args[1]))
			suggestion, err := appFrom(cmd).Client.Suggestions.UpdateStatus(cmd.Context(), args[0], status)
			if err != nil {
				return err
			}
			if opts.Output == "json" {
				return writeJSON(cmd.OutOrStdout(), suggestion)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Suggestion %s is now %s\n", suggestion.ID, suggestion.Status)
			return nil
		},
	}
}

func newSuggestionDeleteCmd(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a suggestion",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			suggestion, err := appFrom(cmd).Client.Suggestions.Delete(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if opts.Output == "json" {
				return writeJSON(cmd.OutOrStdout(), suggestion)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted suggestion %s\n", suggestion.ID)
			return nil
		},
	}
}

func newMetricsCmd(opts *Options) *cobra.Command {
	var platform, since string
	cmd := &cobra.Command{
		Use:   "metrics",
		Short: "Show platform metrics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := domain.MetricsFilter{Platform: domain.Platform(strings.ToLower(platform))}
			if since != "" {
				start, err := time.Parse(time.DateOnly, since)
				if err != nil {
					return fmt.Errorf("--since: %w", err)
				}
				filter.StartDate = &start
			}
			metrics, err := appFrom(cmd).Client.Metrics.Get(cmd.Context(), filter)
			if err != nil {
				return err
			}
			if opts.Output == "json" {
				return writeJSON(cmd.OutOrStdout(), metrics)
			}
			out := cmd.OutOrStdout()
			if len(metrics) == 0 {
				fmt.Fprintln(out, "No metrics.")
				return nil
			}
			for _, m := range metrics {
				fmt.Fprintf(out, "%-10s followers=%-8d posts=%-5d likes=%-8d engagement=%.2f%%  %s\n",
					m.Platform, m.Followers, m.Posts, m.Likes, m.EngagementRate*100, m.Date.Format(time.DateOnly))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&platform, "platform", "", "platform")
	cmd.Flags().StringVar(&since, "since", "", "earliest date, YYYY-MM-DD")
	return cmd
}

func newGrowthCmd(opts *Options) *cobra.Command {
	var days int
	var platform string
	cmd := &cobra.Command{
		Use:   "growth",
		Short: "Show follower growth",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			points, err := appFrom(cmd).Client.Metrics.FollowerGrowth(cmd.Context(), days, domain.Platform(strings.ToLower(platform)))
			if err != nil {
				return err
			}
			if opts.Output == "json" {
				return writeJSON(cmd.OutOrStdout(), points)
			}
			for _, p := range points {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %-10s %d\n", p.Date.Format(time.DateOnly), p.Platform, p.Followers)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&days, "days", 30, "window: 7, 30, 90 or 365")
	cmd.Flags().StringVar(&platform, "platform", "", "platform")
	return cmd
}

func newSeedLocalCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed-local",
		Short: "Fill empty local cache keys with generated mock data",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appFrom(cmd)
			keys, err := mockdata.SeedLocal(cmd.Context(), app.Store, app.Session.All())
			if err != nil {
				return err
			}
			if len(keys) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Local cache already populated.")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %s\n", strings.Join(keys, ", "))
			return nil
		},
	}
}

func newCalendarCmd(opts *Options) *cobra.Command {
	var month, year int
	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Generate a mock content calendar",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			now := time.Now()
			if month == 0 {
				month = int(now.Month())
			}
			if year == 0 {
				year = now.Year()
			}
			entries, err := appFrom(cmd).Session.Calendar(time.Month(month), year)
			if err != nil {
				return err
			}
			if opts.Output == "json" {
				return writeJSON(cmd.OutOrStdout(), entries)
			}
			for _, e := range entries {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %-9s %-9s %s\n", e.Date.Format("Jan 02 15:04"), e.Platform, e.Status, e.Title)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&month, "month", 0, "month 1-12 (default current)")
	cmd.Flags().IntVar(&year, "year", 0, "year (default current)")
	return cmd
}
