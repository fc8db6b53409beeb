package cmd

import (
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/spf13/cobra"

	"sportsreels/internal/worker"
)

var workerConcurrency int

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Run the background generation worker",
	Long: `Consume queued generation tasks and run the full pipeline for each:
script, images, narration, compose, upload.`,
	RunE: runWorker,
}

func init() {
	workerCmd.Flags().IntVarP(&workerConcurrency, "concurrency", "c", 2, "Concurrent generation runs")
	rootCmd.AddCommand(workerCmd)
}

func runWorker(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	d, err := buildDeps(ctx)
	if err != nil {
		return err
	}

	srv := asynq.NewServer(
		asynq.RedisClientOpt{Addr: d.cfg.RedisAddr},
		asynq.Config{
			Concurrency: workerConcurrency,
		},
	)

	mux := asynq.NewServeMux()
	worker.NewHandler(d.pipeline).Register(mux)

	slog.Info("Worker running", "concurrency", workerConcurrency, "redis", d.cfg.RedisAddr)
	return srv.Run(mux)
}
