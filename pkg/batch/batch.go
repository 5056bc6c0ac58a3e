// Package batch trims every image in a directory and writes the results to
// another directory.
//
// A run is best effort: a file that cannot be read, decoded, trimmed or
// written is recorded as failed in the Summary and the run moves on. Only
// problems with the directories themselves (ErrInput, ErrOutput) fail the
// run as a whole. Files already written are never rolled back.
package batch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"github.com/samber/lo"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/menta2k/quickcrop/internal/utils"
	"github.com/menta2k/quickcrop/pkg/analyzer"
	"github.com/menta2k/quickcrop/pkg/cropper"
	"github.com/menta2k/quickcrop/pkg/processing"
	"github.com/menta2k/quickcrop/pkg/types"
)

var (
	// ErrInput reports an input directory that is missing, unreadable or
	// not a directory.
	ErrInput = errors.New("input directory")
	// ErrOutput reports an output directory that cannot be created.
	ErrOutput = errors.New("output directory")
)

// DefaultPrefix is prepended to every output file name.
const DefaultPrefix = "trimmed_"

// ManifestName is the file written into the output directory when
// Options.Manifest is set.
const ManifestName = "manifest.json"

// Options configures a Runner. The zero value of each field selects the
// default noted on it.
type Options struct {
	// Extensions selects input files by suffix, leading dot included.
	// Default: ".png".
	Extensions []string
	// CaseInsensitive matches Extensions ignoring case.
	CaseInsensitive bool
	// Prefix is prepended to output names. Default: DefaultPrefix.
	Prefix string
	// Format is the output encoding, "png" or "webp". Default: "png".
	Format   string
	Quality  int
	Lossless bool
	// Workers bounds the number of files processed at once.
	// Default: runtime.NumCPU().
	Workers int
	// Manifest writes the Summary as JSON next to the outputs.
	Manifest bool

	Analyzer  *analyzer.ImageAnalyzer
	Cropper   *cropper.AlphaCropper
	Processor *processing.Processor
	Logger    *zap.Logger
}

// Runner crops directories of images
type Runner struct {
	opts Options
}

// New creates a Runner, filling unset options with defaults
func New(opts Options) *Runner {
	if len(opts.Extensions) == 0 {
		opts.Extensions = []string{".png"}
	}
	if opts.Prefix == "" {
		opts.Prefix = DefaultPrefix
	}
	opts.Format = processing.NormalizeFormat(opts.Format)
	if opts.Quality == 0 {
		opts.Quality = 90
	}
	if opts.Workers < 1 {
		opts.Workers = runtime.NumCPU()
	}
	if opts.Analyzer == nil {
		opts.Analyzer = analyzer.New()
	}
	if opts.Cropper == nil {
		opts.Cropper = cropper.New()
	}
	if opts.Processor == nil {
		opts.Processor = processing.NewProcessor()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Runner{opts: opts}
}

// CropBatch trims every qualifying image directly inside inputDir into
// outputDir using default options.
func CropBatch(ctx context.Context, inputDir, outputDir string) (types.Summary, error) {
	return New(Options{}).CropBatch(ctx, inputDir, outputDir)
}

// job is one input file and where its output goes
type job struct {
	name   string
	input  string
	output string
	// reason is set when the job must fail without being attempted
	reason string
}

// CropBatch trims every qualifying image directly inside inputDir and
// writes the results to outputDir, creating it if needed.
//
// Files are matched by extension and visited in lexicographic order; the
// Summary lists them in that order. Per-file failures are recorded in the
// Summary and never returned as the error. Cancelling ctx stops new files
// from starting; files not started are recorded as failed with the context
// error.
func (r *Runner) CropBatch(ctx context.Context, inputDir, outputDir string) (types.Summary, error) {
	summary := types.Summary{InputDir: inputDir, OutputDir: outputDir}
	log := r.opts.Logger.With(zap.String("input_dir", inputDir), zap.String("output_dir", outputDir))

	info, err := os.Stat(inputDir)
	if err != nil {
		return summary, fmt.Errorf("%w: %w", ErrInput, err)
	}
	if !info.IsDir() {
		return summary, fmt.Errorf("%w: %s is not a directory", ErrInput, inputDir)
	}

	names, err := utils.ListFiles(inputDir, r.opts.Extensions, r.opts.CaseInsensitive)
	if err != nil {
		return summary, fmt.Errorf("%w: %w", ErrInput, err)
	}

	if err := r.prepareOutput(outputDir); err != nil {
		return summary, err
	}

	if len(names) == 0 {
		log.Warn("no matching files in input directory", zap.Strings("extensions", r.opts.Extensions))
		summary.Results = []types.FileResult{}
		summary.Failures = []types.Failure{}
		r.writeManifest(log, outputDir, summary)
		return summary, nil
	}

	jobs := r.planJobs(inputDir, outputDir, names)
	results := make([]types.FileResult, len(jobs))

	var g errgroup.Group
	g.SetLimit(r.opts.Workers)

	for i, j := range jobs {
		if err := ctx.Err(); err != nil {
			results[i] = failed(j, fmt.Errorf("skipped: %w", err))
			continue
		}
		if j.reason != "" {
			results[i] = failed(j, errors.New(j.reason))
			continue
		}

		g.Go(func() error {
			// the group never sees an error, so one bad file cannot cancel
			// the others
			if err := ctx.Err(); err != nil {
				results[i] = failed(j, fmt.Errorf("skipped: %w", err))
				return nil
			}
			results[i] = r.cropJob(j)
			return nil
		})
	}
	_ = g.Wait()

	summary = summarize(summary, results)
	for _, f := range summary.Failures {
		log.Warn("crop failed", zap.String("file", f.Name), zap.String("reason", f.Reason))
	}
	log.Info("batch finished",
		zap.Int("attempted", summary.Attempted),
		zap.Int("succeeded", summary.Succeeded),
		zap.Int("failed", summary.Failed))

	r.writeManifest(log, outputDir, summary)
	return summary, nil
}

// CropOne loads the image at path, checks it and trims it to its content.
func (r *Runner) CropOne(path string) (cropper.CropResult, error) {
	result, _, err := r.cropPath(path)
	return result, err
}

// OutputName returns the name CropBatch gives the output of inputName.
func (r *Runner) OutputName(inputName string) string {
	return utils.GenerateOutputFilename(inputName, r.opts.Prefix, r.opts.Format)
}

// cropPath trims the image at path and reports whether the source carries
// an alpha channel.
func (r *Runner) cropPath(path string) (cropper.CropResult, bool, error) {
	img, err := r.opts.Analyzer.LoadImage(path)
	if err != nil {
		return cropper.CropResult{}, false, err
	}
	result, err := r.opts.Cropper.Crop(img)
	if err != nil {
		return cropper.CropResult{}, false, err
	}
	return result, analyzer.HasAlpha(img), nil
}

// CropFile trims the image at inputPath and writes it to outputPath.
func (r *Runner) CropFile(ctx context.Context, inputPath, outputPath string) types.FileResult {
	j := job{name: filepath.Base(inputPath), input: inputPath, output: outputPath}
	if err := ctx.Err(); err != nil {
		return failed(j, err)
	}
	return r.cropJob(j)
}

func (r *Runner) cropJob(j job) types.FileResult {
	result, hasAlpha, err := r.cropPath(j.input)
	if err != nil {
		return failed(j, err)
	}

	// an opaque crop of a translucent source still gets an alpha channel
	out := result.Image
	if hasAlpha {
		out = processing.KeepAlpha(out)
	}

	err = utils.WriteFileAtomic(j.output, func(w io.Writer) error {
		return r.opts.Processor.Encode(w, out, r.opts.Format, r.opts.Quality, r.opts.Lossless)
	})
	if err != nil {
		return failed(j, fmt.Errorf("failed to write %s: %w", j.output, err))
	}

	box := result.Box
	return types.FileResult{
		Name:       j.name,
		Status:     types.StatusOK,
		OutputPath: j.output,
		Box:        &box,
		Width:      box.Width(),
		Height:     box.Height(),
	}
}

func (r *Runner) prepareOutput(outputDir string) error {
	if info, err := os.Stat(outputDir); err == nil && !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", ErrOutput, outputDir)
	}
	if err := utils.EnsureDir(outputDir); err != nil {
		return fmt.Errorf("%w: %w", ErrOutput, err)
	}
	return nil
}

// planJobs maps input names to output paths. An output that would replace
// one of the inputs, or that another input already maps to, is marked as
// failed instead.
func (r *Runner) planJobs(inputDir, outputDir string, names []string) []job {
	inputs := map[string]bool{}
	if sameDir(inputDir, outputDir) {
		inputs = lo.SliceToMap(names, func(name string) (string, bool) { return name, true })
	}

	taken := map[string]string{}
	jobs := make([]job, 0, len(names))
	for _, name := range names {
		outName := r.OutputName(name)
		j := job{
			name:   name,
			input:  filepath.Join(inputDir, name),
			output: filepath.Join(outputDir, outName),
		}
		switch {
		case inputs[outName]:
			j.reason = fmt.Sprintf("output %s would overwrite an input file", outName)
		case taken[outName] != "":
			j.reason = fmt.Sprintf("output %s already produced from %s", outName, taken[outName])
		default:
			taken[outName] = name
		}
		jobs = append(jobs, j)
	}
	return jobs
}

func (r *Runner) writeManifest(log *zap.Logger, outputDir string, summary types.Summary) {
	if !r.opts.Manifest {
		return
	}
	path := filepath.Join(outputDir, ManifestName)
	err := utils.WriteFileAtomic(path, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(summary)
	})
	if err != nil {
		log.Warn("manifest write failed", zap.String("path", path), zap.Error(err))
	}
}

func failed(j job, err error) types.FileResult {
	return types.FileResult{Name: j.name, Status: types.StatusFailed, Error: err.Error()}
}

func summarize(summary types.Summary, results []types.FileResult) types.Summary {
	summary.Results = results
	summary.Attempted = len(results)
	summary.Failures = lo.FilterMap(results, func(res types.FileResult, _ int) (types.Failure, bool) {
		return types.Failure{Name: res.Name, Reason: res.Error}, res.Status == types.StatusFailed
	})
	summary.Failed = len(summary.Failures)
	summary.Succeeded = summary.Attempted - summary.Failed
	return summary
}

func sameDir(a, b string) bool {
	ai, err := os.Stat(a)
	if err != nil {
		return false
	}
	bi, err := os.Stat(b)
	if err != nil {
		return false
	}
	return os.SameFile(ai, bi)
}
