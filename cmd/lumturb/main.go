package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"

	"lumturb/internal/models"
	"lumturb/pkg/analysis"
	"lumturb/pkg/config"
	"lumturb/pkg/luminance"
	"lumturb/pkg/report"
	"lumturb/pkg/visualization"
)

var (
	configFile string
	verbose    bool

	scales     []int
	lambda     float64
	epsilon    float64
	maxOrder   int
	workers    int
	maxSamples int
	seed       uint64
	welch      bool
	alpha      float64
	format     string
	mapsDir    string
	plot       bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "lumturb",
		Short:        "multiscale luminance roughness statistics",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "lumturb.yaml", "config file path (yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print pipeline progress")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [image]",
		Short: "compute increment statistics and structure functions of one image",
		Args:  cobra.ExactArgs(1),
		RunE:  runAnalyze,
	}
	addAnalysisFlags(analyzeCmd)

	compareCmd := &cobra.Command{
		Use:   "compare [image1] [image2]",
		Short: "compare the structure-function profiles of two images",
		Args:  cobra.ExactArgs(2),
		RunE:  runCompare,
	}
	addAnalysisFlags(compareCmd)
	compareCmd.Flags().BoolVar(&welch, "welch", false, "use the unequal-variance t-test")
	compareCmd.Flags().Float64Var(&alpha, "alpha", 0.05, "significance level")

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "manage configuration files",
	}
	configCmd.AddCommand(&cobra.Command{
		Use:   "init [path]",
		Short: "write a default configuration file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.CreateDefaultConfigFile(args[0]); err != nil {
				return err
			}
			fmt.Printf("Default configuration written to %s\n", args[0])
			return nil
		},
	})

	rootCmd.AddCommand(analyzeCmd, compareCmd, configCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addAnalysisFlags(cmd *cobra.Command) {
	cmd.Flags().IntSliceVar(&scales, "scales", append([]int(nil), models.DefaultScales...), "pixel offsets")
	cmd.Flags().Float64Var(&lambda, "lambda", 0.1, "log-normal shape divisor")
	cmd.Flags().Float64Var(&epsilon, "epsilon", 0.1, "dissipation scale")
	cmd.Flags().IntVar(&maxOrder, "orders", 5, "highest structure-function order")
	cmd.Flags().IntVar(&workers, "workers", 0, "concurrent workers (default: all cores)")
	cmd.Flags().IntVar(&maxSamples, "max-samples", 0, "subsample each scale to at most this many increments")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "subsampling seed")
	cmd.Flags().StringVar(&format, "format", config.FormatText, "report format: text, yaml or json")
	cmd.Flags().StringVar(&mapsDir, "maps-dir", "", "write increment maps of the first image to this directory")
	cmd.Flags().BoolVar(&plot, "plot", false, "plot moment profiles in the terminal")
}

// loadConfig reads the config file and applies any flag explicitly set on cmd.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("scales") {
		cfg.Analysis.Scales = scales
	}
	if flags.Changed("lambda") {
		cfg.Analysis.Lambda = lambda
	}
	if flags.Changed("epsilon") {
		cfg.Analysis.Epsilon = epsilon
	}
	if flags.Changed("orders") {
		cfg.Analysis.MaxOrder = maxOrder
	}
	if flags.Changed("workers") {
		cfg.Analysis.NumWorkers = workers
	}
	if flags.Changed("max-samples") {
		cfg.Analysis.MaxSamples = maxSamples
	}
	if flags.Changed("seed") {
		cfg.Analysis.Seed = seed
	}
	if flags.Changed("welch") {
		cfg.Compare.Welch = welch
	}
	if flags.Changed("alpha") {
		cfg.Compare.Alpha = alpha
	}
	if flags.Changed("format") {
		cfg.Output.ReportFormat = format
	}
	if flags.Changed("maps-dir") {
		cfg.Output.MapsDir = mapsDir
	}
	if verbose {
		cfg.Output.Verbose = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func newAnalyzer(cfg *config.Config) *analysis.Analyzer {
	params := analysis.ParamsFromConfig(cfg)
	if cfg.Output.Verbose {
		params.Progress = func(stage string, done, total int) {
			log.Printf("%s done (%d/%d)", stage, done, total)
		}
	}
	return analysis.NewAnalyzer(params)
}

func loadField(path string, cfg *config.Config) (*models.Field, error) {
	field, err := luminance.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load image: %w", err)
	}
	if cfg.Output.Verbose {
		log.Printf("Loaded %s: %dx%d", path, field.Width, field.Height)
	}
	return field, nil
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	field, err := loadField(args[0], cfg)
	if err != nil {
		return err
	}

	startTime := time.Now()
	profile, err := newAnalyzer(cfg).Profile(context.Background(), field)
	if err != nil {
		return err
	}
	if cfg.Output.Verbose {
		log.Printf("Analysis completed in %.2f seconds", time.Since(startTime).Seconds())
	}

	if err := saveMaps(field, cfg); err != nil {
		return err
	}

	fr, err := report.NewFieldReport(args[0], profile, cfg.Output.HistogramBins, cfg.Output.CurvePoints)
	if err != nil {
		return err
	}
	doc := report.NewDocument(fr)
	if err := report.Write(os.Stdout, cfg.Output.ReportFormat, doc); err != nil {
		return err
	}
	if plot {
		fmt.Println(report.PlotMoments(profile.Moments, args[0]))
	}
	return nil
}

func runCompare(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	first, err := loadField(args[0], cfg)
	if err != nil {
		return err
	}
	second, err := loadField(args[1], cfg)
	if err != nil {
		return err
	}

	startTime := time.Now()
	cmp, err := newAnalyzer(cfg).Compare(context.Background(), first, second)
	if err != nil {
		return err
	}
	if cfg.Output.Verbose {
		log.Printf("Comparison completed in %.2f seconds", time.Since(startTime).Seconds())
	}

	if err := saveMaps(first, cfg); err != nil {
		return err
	}

	doc := report.NewDocument()
	for i, p := range []*analysis.Profile{cmp.First, cmp.Second} {
		fr, err := report.NewFieldReport(args[i], p, cfg.Output.HistogramBins, cfg.Output.CurvePoints)
		if err != nil {
			return err
		}
		doc.Fields = append(doc.Fields, fr)
	}
	doc.SetComparison(cmp.Result, cfg.Compare.Alpha)
	if err := report.Write(os.Stdout, cfg.Output.ReportFormat, doc); err != nil {
		return err
	}
	if plot {
		fmt.Println(report.PlotMoments(cmp.First.Moments, args[0]))
		fmt.Println(report.PlotMoments(cmp.Second.Moments, args[1]))
	}
	return nil
}

func saveMaps(field *models.Field, cfg *config.Config) error {
	if cfg.Output.MapsDir == "" {
		return nil
	}
	written, err := visualization.NewViewer(field).SaveIncrementMaps(cfg.Output.MapsDir, cfg.Analysis.Scales)
	if err != nil {
		return fmt.Errorf("failed to save increment maps: %w", err)
	}
	if cfg.Output.Verbose {
		log.Printf("Saved %d increment maps to %s", len(written), cfg.Output.MapsDir)
	}
	return nil
}
