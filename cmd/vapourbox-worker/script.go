package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"vapourbox/internal/models"
	"vapourbox/internal/script"
	"vapourbox/internal/services"
)

func newScriptCommand(ctx *commandContext) *cobra.Command {
	var (
		jobPath    string
		preview    bool
		showStages bool
		start      int
		end        int
	)

	cmd := &cobra.Command{
		Use:   "script",
		Short: "Print the VapourSynth script generated for a job",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := requireJobPath(jobPath)
			if err != nil {
				return err
			}
			job, err := models.LoadJob(path)
			if err != nil {
				return services.Wrap(services.ErrValidation, "", "load job", "", err)
			}

			out := cmd.OutOrStdout()
			if showStages {
				fmt.Fprintln(out, renderStages(job.EffectivePipeline()))
				fmt.Fprintf(out, "Encoding: %s\n", job.Encoding.Summary())
				return nil
			}

			generator, err := ctx.generator(ctx.newLogger(cmd.ErrOrStderr()))
			if err != nil {
				return err
			}
			rangeSet := cmd.Flags().Changed("start") || cmd.Flags().Changed("end")
			switch {
			case preview && rangeSet:
				return errors.New("--preview cannot be combined with --start/--end")
			case preview:
				cfg, err := ctx.ensureConfig()
				if err != nil {
					return err
				}
				rate := job.FrameRate(cfg.Preview.DefaultFrameRate)
				fmt.Fprint(out, generator.RenderPreview(job, script.PreviewParams{
					ClipPath:   job.InputPath,
					FPSNum:     int(rate*1000 + 0.5),
					FPSDen:     1000,
					FieldBased: job.EffectivePipeline().Deinterlace.FieldBased(),
				}))
			case rangeSet:
				if start < 0 || end <= start {
					return fmt.Errorf("invalid range [%d, %d)", start, end)
				}
				fmt.Fprint(out, generator.RenderRange(job, start, end))
			default:
				fmt.Fprint(out, generator.Render(job))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&jobPath, "job", "j", "", "Job file (JSON or YAML)")
	cmd.Flags().BoolVar(&preview, "preview", false, "Render the preview variant that reads an extracted clip")
	cmd.Flags().BoolVar(&showStages, "stages", false, "List the enabled stages instead of printing the script")
	cmd.Flags().IntVar(&start, "start", 0, "First frame of a range render")
	cmd.Flags().IntVar(&end, "end", 0, "Frame after the last one of a range render")
	_ = cmd.MarkFlagRequired("job")
	return cmd
}

func renderStages(p models.Pipeline) string {
	enabled := make(map[models.Stage]bool)
	for _, stage := range p.EnabledStages() {
		enabled[stage] = true
	}
	rows := make([][]string, 0, len(models.StageOrder))
	for i, stage := range models.StageOrder {
		rows = append(rows, []string{
			fmt.Sprintf("%d", i+1),
			stage.DisplayName(),
			yesNo(enabled[stage]),
		})
	}
	var b strings.Builder
	b.WriteString(renderTable([]string{"#", "Stage", "Enabled"}, rows, []columnAlignment{alignRight, alignLeft, alignLeft}))
	if p.DoubleRate() {
		b.WriteString("\nOutput is double rate (one frame per field).")
	}
	return b.String()
}
