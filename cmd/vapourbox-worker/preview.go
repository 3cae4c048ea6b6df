package main

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/spf13/cobra"

	"vapourbox/internal/fileutil"
	"vapourbox/internal/logging"
	"vapourbox/internal/models"
	"vapourbox/internal/progress"
	"vapourbox/internal/services"
)

func newPreviewCommand(ctx *commandContext) *cobra.Command {
	var (
		jobPath string
		output  string
		frame   int
		seconds float64
		direct  bool
	)

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Render one processed frame as PNG",
		Long: `Render one processed frame as PNG.

By default a short clip around the target is extracted from the input and
processed; --direct instead processes a frame range of the input itself.
Without --output the PNG is written to stdout.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			frameSet := cmd.Flags().Changed("frame")
			timeSet := cmd.Flags().Changed("time")
			if frameSet == timeSet {
				return errors.New("exactly one of --frame or --time is required")
			}
			path, err := requireJobPath(jobPath)
			if err != nil {
				return err
			}
			job, err := models.LoadJob(path)
			if err != nil {
				return services.Wrap(services.ErrValidation, "", "load job", "", err)
			}

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger := ctx.newLogger(cmd.ErrOrStderr())
			generator, err := ctx.generator(logger)
			if err != nil {
				return err
			}
			controller, err := ctx.controller(generator, progress.NewReporter(io.Discard, logger), logger)
			if err != nil {
				return err
			}
			defer controller.Close()

			rate := job.FrameRate(cfg.Preview.DefaultFrameRate)
			var image []byte
			switch {
			case direct:
				target := frame
				if timeSet {
					target = int(math.Round(seconds * rate))
				}
				logger.Debug("rendering preview frame", logging.Int("frame", target))
				image, err = controller.PreviewFrame(cmd.Context(), job, target)
			default:
				at := seconds
				if frameSet {
					if frame < 0 {
						return services.Wrap(services.ErrValidation, "", "preview", fmt.Sprintf("frame %d is negative", frame), nil)
					}
					at = float64(frame) / rate
				}
				logger.Debug("rendering preview", logging.Float64("seconds", at))
				image, err = controller.Preview(cmd.Context(), job, at)
			}
			if err != nil {
				return err
			}

			if strings.TrimSpace(output) == "" {
				_, err = cmd.OutOrStdout().Write(image)
				return err
			}
			if err := fileutil.WriteFileAtomic(output, image, 0o644); err != nil {
				return fmt.Errorf("write preview: %w", err)
			}
			fmt.Fprintln(cmd.ErrOrStderr(), output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&jobPath, "job", "j", "", "Job file (JSON or YAML)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the PNG to this file instead of stdout")
	cmd.Flags().IntVar(&frame, "frame", 0, "Source frame number")
	cmd.Flags().Float64Var(&seconds, "time", 0, "Timestamp in seconds")
	cmd.Flags().BoolVar(&direct, "direct", false, "Process a frame range of the input instead of an extracted clip")
	_ = cmd.MarkFlagRequired("job")
	return cmd
}
