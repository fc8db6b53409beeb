package cmd

import (
	"fmt"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/huh/spinner"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"sportsreels/internal/reel"
)

var (
	onceSubject string
	onceSport   string
	onceExtra   string

	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")).MarginBottom(1)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

var onceCmd = &cobra.Command{
	Use:   "once",
	Short: "Generate a single video inline",
	Long: `Run the full pipeline once in this process, without the queue.
Prompts interactively when no flags are given.`,
	RunE: runOnce,
}

func init() {
	onceCmd.Flags().StringVarP(&onceSubject, "subject", "s", "", "Celebrity to generate a video about")
	onceCmd.Flags().StringVarP(&onceSport, "sport", "p", "", "Sport the celebrity is known for")
	onceCmd.Flags().StringVarP(&onceExtra, "extra", "e", "", "Additional context for the script")
	rootCmd.AddCommand(onceCmd)
}

func runOnce(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	if onceSubject == "" || onceSport == "" {
		fmt.Println(titleStyle.Render("🎬 Sportsreels"))
		form := huh.NewForm(huh.NewGroup(
			huh.NewInput().
				Title("Celebrity").
				Placeholder("Michael Jordan").
				Value(&onceSubject).
				Validate(requireValue("celebrity")),
			huh.NewInput().
				Title("Sport").
				Placeholder("Basketball").
				Value(&onceSport).
				Validate(requireValue("sport")),
			huh.NewInput().
				Title("Extra context (optional)").
				Value(&onceExtra),
		))
		if err := form.Run(); err != nil {
			return err
		}
	}

	d, err := buildDeps(ctx)
	if err != nil {
		return err
	}

	req := reel.Request{
		SubjectName:    onceSubject,
		Category:       onceSport,
		AdditionalInfo: onceExtra,
	}
	id := reel.NewID(onceSubject, time.Now())

	if _, err := d.pipeline.Begin(ctx, id, req); err != nil {
		return err
	}

	var result reel.Result
	var runErr error
	err = spinner.New().
		Title(fmt.Sprintf("Generating %s video...", onceSubject)).
		Context(ctx).
		Action(func() {
			result, runErr = d.pipeline.Run(ctx, id, req)
		}).
		Run()
	if err != nil {
		return err
	}
	if runErr != nil {
		fmt.Println(errorStyle.Render("✗ Generation failed: " + runErr.Error()))
		return runErr
	}

	fmt.Println(successStyle.Render("✓ Video generated"))
	fmt.Println("  id:  " + result.VideoID)
	fmt.Println("  url: " + result.VideoURL)
	return nil
}

func requireValue(name string) func(string) error {
	return func(s string) error {
		if s == "" {
			return fmt.Errorf("%s is required", name)
		}
		return nil
	}
}
