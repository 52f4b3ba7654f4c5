package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/secassess/pkg/config"
	"github.com/matzehuels/secassess/pkg/errors"
	"github.com/matzehuels/secassess/pkg/pipeline"
	"github.com/matzehuels/secassess/pkg/record"
	"github.com/matzehuels/secassess/pkg/report"
	"github.com/matzehuels/secassess/pkg/store/file"
)

// exportOpts holds the command-line flags for the export command.
type exportOpts struct {
	format   string // export format or alias, e.g. "pdf", "excel"
	file     string // read the record from a JSON file instead of the store
	images   string // JSON file holding captured diagram images
	sections string // comma-separated section ids; empty selects all
	pick     bool   // choose sections interactively
	output   string // output path; "-" writes to stdout
	upload   bool   // upload the artifact to S3 instead of writing it
	refresh  bool   // bypass cache reads
	noCache  bool   // disable the cache entirely
}

// exportCommand creates the export command.
func (c *CLI) exportCommand() *cobra.Command {
	opts := exportOpts{format: pipeline.DefaultFormat}

	cmd := &cobra.Command{
		Use:   "export [id]",
		Short: "Export an assessment as a report or data dump",
		Long: `Export an assessment as a report or data dump.

The record is read from the configured store by id, or from a JSON file with
--file. Formats: ` + strings.Join(pipeline.Formats, ", ") + ` ("excel" is an alias for xlsx).

Diagram images captured by the browser front end can be passed with --images
as a JSON array of {"name", "section", "width", "height", "data"} objects.

Rendered artifacts are cached locally; use --refresh to re-render.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var id string
			if len(args) == 1 {
				id = args[0]
			}
			if (id == "") == (opts.file == "") {
				return errors.New(errors.ErrCodeInvalidInput, "give either a record id or --file")
			}
			if opts.pick && opts.sections != "" {
				return errors.New(errors.ErrCodeInvalidInput, "--pick and --sections are mutually exclusive")
			}
			return c.runExport(cmd.Context(), id, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "export format: "+strings.Join(pipeline.Formats, ", "))
	cmd.Flags().StringVar(&opts.file, "file", "", "read the assessment from a JSON file")
	cmd.Flags().StringVar(&opts.images, "images", "", "JSON file with captured diagram images")
	cmd.Flags().StringVarP(&opts.sections, "sections", "s", "", "comma-separated sections to include: "+strings.Join(report.SectionNames(), ", "))
	cmd.Flags().BoolVar(&opts.pick, "pick", false, "choose sections interactively")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: <organization>.<ext>, - for stdout)")
	cmd.Flags().BoolVar(&opts.upload, "upload", false, "upload to the configured S3 bucket")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "bypass cached records and artifacts")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")

	_ = cmd.RegisterFlagCompletionFunc("format", cobra.FixedCompletions(pipeline.Formats, cobra.ShellCompDirectiveNoFileComp))
	_ = cmd.RegisterFlagCompletionFunc("sections", completeList(report.SectionNames()))

	return cmd
}

// runExport loads the record, renders it and delivers the artifact.
func (c *CLI) runExport(ctx context.Context, id string, opts exportOpts) error {
	format, err := pipeline.ParseFormat(opts.format)
	if err != nil {
		return err
	}
	sel, err := report.ParseSelector(opts.sections)
	if err != nil {
		return err
	}
	images, err := readImages(opts.images)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, opts.file == "", opts.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	closeEvents, err := c.registerEvents(cfg)
	if err != nil {
		return fmt.Errorf("connect events: %w", err)
	}
	defer closeEvents()

	var rec *record.Assessment
	if opts.file != "" {
		if rec, err = file.Load(opts.file); err != nil {
			return err
		}
	}

	if opts.pick {
		if rec == nil {
			if rec, err = runner.Load(ctx, id); err != nil {
				return err
			}
		}
		picked, ok, err := pickSections(report.Build(rec))
		if err != nil {
			return err
		}
		if !ok {
			printInfo("Export cancelled")
			return nil
		}
		sel = picked
	}

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Exporting %s...", format))
	spinner.Start()
	prog := newProgress(c.Logger)

	res, err := runner.Execute(ctx, pipeline.Options{
		RecordID: id,
		Record:   rec,
		Format:   format,
		Sections: sel,
		Images:   images,
		Refresh:  opts.refresh,
	})
	if err != nil {
		spinner.StopWithError("Export failed")
		return err
	}
	spinner.Stop()
	prog.done("export rendered", "format", res.Format, "sections", sel.String(), "cached", res.CacheInfo.RenderHit)

	if opts.upload {
		return c.uploadArtifact(ctx, cfg, res)
	}

	if opts.output == "-" {
		_, err := os.Stdout.Write(res.Artifact)
		return err
	}

	outputPath := opts.output
	if outputPath == "" {
		outputPath = res.FileName
	}
	if err := os.WriteFile(outputPath, res.Artifact, 0o644); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Exported %s", res.Model.Meta.Org)
	printFile(outputPath)
	printStats(res.Stats.Sections, res.Stats.Images, res.Stats.Size, res.CacheInfo.RenderHit)
	return nil
}

// uploadArtifact sends the artifact to S3 and prints its URL.
func (c *CLI) uploadArtifact(ctx context.Context, cfg config.Config, res *pipeline.Result) error {
	uploader, err := newUploader(ctx, cfg)
	if err != nil {
		return err
	}
	if uploader == nil {
		return errors.New(errors.ErrCodeUnsupported, "uploads are not configured (set upload.bucket)")
	}

	spinner := newSpinnerWithContext(ctx, "Uploading "+res.FileName+"...")
	spinner.Start()
	url, err := uploader.Put(ctx, res.Record.ID, res.FileName, res.ContentType, res.Artifact)
	if err != nil {
		spinner.StopWithError("Upload failed")
		return err
	}
	spinner.StopWithSuccess("Uploaded " + res.FileName)
	printKeyValue("URL", StyleLink.Render(url))
	printKeyValue("Size", formatBytes(len(res.Artifact)))
	return nil
}

// readImages loads captured diagram images from a JSON file. An empty
// path yields no images.
func readImages(path string) ([]report.Image, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "read images %s", path)
	}
	var images []report.Image
	if err := json.Unmarshal(data, &images); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode images %s", path)
	}
	return images, nil
}
