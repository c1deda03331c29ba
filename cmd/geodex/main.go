package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/Masterminds/semver/v3"
	"github.com/davecgh/go-spew/spew"
	"github.com/dustin/go-humanize"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/geodex-io/geodex/internal/appupdate"
	"github.com/geodex-io/geodex/internal/buildlog"
	"github.com/geodex-io/geodex/internal/completion"
	"github.com/geodex-io/geodex/internal/core"
	"github.com/geodex-io/geodex/internal/dataset"
	"github.com/geodex-io/geodex/internal/environment"
	"github.com/geodex-io/geodex/internal/fields"
	"github.com/geodex-io/geodex/internal/filesystem"
	"github.com/geodex-io/geodex/internal/geogrid"
	"github.com/geodex-io/geodex/internal/inspect"
	"github.com/geodex-io/geodex/internal/render"
	"github.com/geodex-io/geodex/internal/sources"
	"github.com/geodex-io/geodex/internal/styles"
)

var BUILD_VERSION = "dev"

var manifestFlag = flag.String("s", "", "path to the sources manifest")
var outputFlag = flag.String("o", "", "directory completion assets are written to")
var radiusFlag = flag.Float64("r", 20, "search radius in km for the near command")
var limitFlag = flag.Int("n", 10, "max entries printed by the runs command")
var debugFlag = flag.Bool("debug", false, "dump the derived registry to stderr")

var helpFlag = flag.Bool("h", false, "display help information")
var versionFlag = flag.Bool("ver", false, "display build version")

const helpText = `geodex - completion asset generator for geographical data sources

USAGE:
  geodex [options] <command> [args...]

COMMANDS:
  geodex generate              Derive the completion registry from the sources
                               manifest and render the shell assets
  geodex inspect               Print the derived completion vocabulary
  geodex fields <source>       List a source's completable fields
  geodex fields <source> <q>   Fuzzy-search a source's completable fields
  geodex near <source> <key>   Find rows near an indexed row
  geodex near <source> <lat> <lng>
                               Find rows near a point
  geodex runs                  List recent generation runs

The sources manifest defaults to ./sources.yaml and assets are written to
./completions. Set GEODEX_SOURCES_FILE / GEODEX_COMPLETION_DIR, or use the
-s / -o options, to override. A piped stdin serves as the data of the "feed"
source.

OPTIONS:
`

func main() {
	flag.Parse()

	if *versionFlag {
		fmt.Println(BUILD_VERSION)
		return
	}

	if *helpFlag || flag.NArg() == 0 {
		fmt.Print(helpText)
		flag.PrintDefaults()
		return
	}

	// A .env in the working directory may carry GEODEX_* overrides.
	godotenv.Load()

	logger, err := initializeLogger()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	logger.Info("-------- new geodex run --------", zap.Any("args", os.Args))

	if !environment.NoUpdateCheck() {
		startUpdateCheck(logger)
	}
	if appupdate.IsFirstRunAfterUpgrade(BUILD_VERSION) {
		fmt.Fprintln(os.Stderr, styles.NOTICE(appupdate.GetUpgradeMessage()))
	}

	err = run(logger)
	if err != nil {
		logger.Error("unhandled error", zap.Error(err))
		fmt.Fprintln(os.Stderr, styles.ERROR("geodex: "+err.Error()))
		os.Exit(1)
	}

	appupdate.UpdateVersionMarker(BUILD_VERSION)
}

func run(logger *zap.Logger) error {
	command := flag.Arg(0)
	args := flag.Args()[1:]

	switch command {
	case "generate":
		return runGenerate(logger)
	case "inspect":
		return runInspect()
	case "fields":
		return runFields(args)
	case "near":
		return runNear(logger, args)
	case "runs":
		return runRuns()
	default:
		return fmt.Errorf("unknown command %q, see geodex -h", command)
	}
}

func runGenerate(logger *zap.Logger) (err error) {
	manifestPath := resolveManifestPath()
	outputDir := resolveOutputDir()

	buildLogManager, initErr := initializeBuildLogManager()
	if initErr != nil {
		panic("failed to initialize build log manager")
	}

	record, recordErr := buildLogManager.StartRun(manifestPath)
	if recordErr != nil {
		return fmt.Errorf("failed to record generation run: %w", recordErr)
	}

	var (
		sourcesCount int
		fieldsCount  int
		assetBytes   int64
	)
	defer func() {
		if _, finishErr := buildLogManager.FinishRun(record, sourcesCount, fieldsCount, assetBytes, err); finishErr != nil {
			logger.Warn("failed to record run outcome", zap.Error(finishErr))
		}
	}()

	_, registry, err := deriveRegistry(manifestPath)
	if err != nil {
		return err
	}

	sourcesCount = registry.Len()
	for _, entry := range registry.Entries() {
		fieldsCount += len(entry.Vocabulary())
	}

	renderer := render.NewRenderer(logger, filesystem.DefaultFileSystem{})
	assets, err := renderer.Render(registry)
	if err != nil {
		return err
	}
	for _, asset := range assets {
		assetBytes += int64(len(asset.Content))
	}

	if err = renderer.Write(outputDir, assets); err != nil {
		return err
	}

	fmt.Println(styles.SUCCESS(fmt.Sprintf(
		"wrote %d completion assets for %d sources to %s (%s)",
		len(assets), sourcesCount, outputDir, humanize.Bytes(uint64(assetBytes)),
	)))
	return nil
}

func runInspect() error {
	_, registry, err := deriveRegistry(resolveManifestPath())
	if err != nil {
		return err
	}

	inspect.Render(os.Stdout, registry)
	return nil
}

func runFields(args []string) error {
	if len(args) < 1 {
		return errors.New("usage: geodex fields <source> [query]")
	}

	_, registry, err := deriveRegistry(resolveManifestPath())
	if err != nil {
		return err
	}

	if len(args) == 1 {
		vocabulary, err := fields.List(registry, args[0])
		if err != nil {
			return err
		}
		for _, field := range vocabulary {
			fmt.Println(field)
		}
		return nil
	}

	matches, err := fields.Search(registry, args[0], args[1])
	if err != nil {
		return err
	}
	for _, match := range matches {
		fmt.Println(match.Field)
	}
	return nil
}

func runNear(logger *zap.Logger, args []string) error {
	if len(args) < 2 {
		return errors.New("usage: geodex near <source> (<key> | <lat> <lng>)")
	}
	name := args[0]

	manifestPath := resolveManifestPath()
	manifest, _, err := deriveRegistry(manifestPath)
	if err != nil {
		return err
	}

	ds, err := loadDataset(logger, manifest, manifestPath, name)
	if err != nil {
		return err
	}
	if !ds.HasGeoSupport() {
		return fmt.Errorf("source %q has no geo support", name)
	}

	grid := geogrid.NewGridForRadius(*radiusFlag, logger)
	for _, row := range ds.Rows() {
		if row.Key == "" {
			continue
		}
		lat, lng, coordErr := ds.Coordinates(row)
		if coordErr != nil {
			logger.Debug("skipping row without coordinates", zap.String("key", row.Key), zap.Error(coordErr))
			continue
		}
		grid.Add(row.Key, lat, lng)
	}

	var results []geogrid.Result
	if len(args) >= 3 {
		lat, latErr := strconv.ParseFloat(args[1], 64)
		lng, lngErr := strconv.ParseFloat(args[2], 64)
		if latErr != nil || lngErr != nil {
			return fmt.Errorf("invalid coordinates %q %q", args[1], args[2])
		}
		results = grid.FindNearPoint(lat, lng, *radiusFlag, true)
	} else {
		results = grid.FindNearKey(args[1], *radiusFlag, true)
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Distance < results[j].Distance
	})
	for _, result := range results {
		row, _ := ds.Get(result.Key)
		fmt.Printf("%8.2f km  %-10s %s\n", result.Distance, result.Key, row.Get("name"))
	}
	return nil
}

func runRuns() error {
	buildLogManager, err := initializeBuildLogManager()
	if err != nil {
		panic("failed to initialize build log manager")
	}

	records, err := buildLogManager.GetRecentRuns(*limitFlag)
	if err != nil {
		return err
	}

	for _, record := range records {
		status := styles.SUCCESS("ok")
		if record.Error != "" {
			status = styles.ERROR("failed: " + record.Error)
		}
		duration := "-"
		if record.DurationMS.Valid {
			duration = fmt.Sprintf("%dms", record.DurationMS.Int64)
		}
		fmt.Printf(
			"%-15s %-24s %2d sources %4d fields %10s %8s %s\n",
			humanize.Time(record.CreatedAt),
			record.ManifestPath,
			record.Sources,
			record.Fields,
			humanize.Bytes(uint64(record.AssetBytes)),
			duration,
			status,
		)
	}
	return nil
}

// deriveRegistry loads the manifest and runs the full header derivation:
// expansion of subdelimited fields, join resolution, then the feed override.
func deriveRegistry(manifestPath string) (*sources.Manifest, *completion.Registry, error) {
	manifest, err := sources.LoadFile(manifestPath)
	if err != nil {
		return nil, nil, err
	}

	registry, err := completion.Derive(manifest)
	if err != nil {
		return nil, nil, err
	}

	if *debugFlag {
		spew.Fdump(os.Stderr, registry)
	}
	return manifest, registry, nil
}

// loadDataset reads the rows behind a source: its declared data file, or
// stdin for the feed source.
func loadDataset(logger *zap.Logger, manifest *sources.Manifest, manifestPath string, name string) (*dataset.Dataset, error) {
	src, ok := manifest.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w %q", completion.ErrUnknownSource, name)
	}

	loader := dataset.NewLoader(logger, filesystem.DefaultFileSystem{})

	if name == completion.FeedSource {
		if term.IsTerminal(int(os.Stdin.Fd())) {
			return nil, errors.New("the feed source reads rows from a piped stdin")
		}
		return loader.LoadFeed(name, src, os.Stdin)
	}

	return loader.LoadSource(name, src, filepath.Dir(manifestPath))
}

func resolveManifestPath() string {
	if *manifestFlag != "" {
		return *manifestFlag
	}
	return environment.ManifestFile()
}

func resolveOutputDir() string {
	if *outputFlag != "" {
		return *outputFlag
	}
	return environment.CompletionDir()
}

func initializeLogger() (*zap.Logger, error) {
	logLevel := environment.GetLogLevel()
	if BUILD_VERSION == "dev" {
		logLevel = zap.NewAtomicLevelAt(zap.DebugLevel)
	}

	if environment.ShouldCleanLogFile() {
		os.Remove(core.LogFile())
	}

	loggerConfig := zap.NewProductionConfig()
	loggerConfig.Level = logLevel
	loggerConfig.OutputPaths = []string{
		core.LogFile(),
	}

	// Logs go to file only, so command output stays clean for shell
	// consumption. Use `tail -f ~/.geodex/geodex.log` to monitor.
	return loggerConfig.Build()
}

func initializeBuildLogManager() (*buildlog.BuildLogManager, error) {
	buildLogManager, err := buildlog.NewBuildLogManager(core.BuildLogFile())
	if err != nil {
		return nil, err
	}

	return buildLogManager, nil
}

// startUpdateCheck kicks off the background release check and prints a notice
// when an earlier run already recorded a newer version.
func startUpdateCheck(logger *zap.Logger) {
	updater, err := appupdate.NewGitHubUpdater()
	if err != nil {
		logger.Warn("failed to initialize updater", zap.Error(err))
		return
	}

	appupdate.CheckForUpdate(
		BUILD_VERSION,
		logger,
		filesystem.DefaultFileSystem{},
		updater,
	)

	latest := appupdate.ReadLatestVersion(filesystem.DefaultFileSystem{})
	if latest == "" {
		return
	}
	latestSemVer, err := semver.NewVersion(latest)
	if err != nil {
		return
	}
	currentSemVer, err := semver.NewVersion(BUILD_VERSION)
	if err != nil {
		return
	}
	if latestSemVer.GreaterThan(currentSemVer) {
		fmt.Fprintln(os.Stderr, styles.NOTICE(fmt.Sprintf(
			"geodex %s is available (running %s)", latest, BUILD_VERSION,
		)))
	}
}
