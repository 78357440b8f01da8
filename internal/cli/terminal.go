package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"go-skin-detector/internal/container"
	"go-skin-detector/internal/logger"
	"go-skin-detector/internal/tui"
)

func newTerminalCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "terminal [image]",
		Short: "Run the detector in the terminal",
		Long: `Runs the upload, countdown and verdict lifecycle as a terminal UI.

Type an image path and press enter to load it, then press 'a' to analyze,
'n' for a new image and 'q' to quit.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			imagePath := ""
			if len(args) == 1 {
				imagePath = args[0]
			}
			return runTerminal(cmd.Context(), imagePath)
		},
	}
}

func runTerminal(ctx context.Context, imagePath string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// the UI owns the screen
	logger.SetOutput(io.Discard)

	c, err := container.NewContainer(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize container: %w", err)
	}
	c.Start(ctx)
	defer c.Close()

	return tui.Run(ctx, c.Service(), imagePath)
}
