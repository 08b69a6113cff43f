package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"github.com/df07/go-progressive-pathtracer/pkg/renderer"
	"github.com/df07/go-progressive-pathtracer/pkg/scene"
)

// Config holds the command line options
type Config struct {
	SceneType  string
	SceneFile  string
	SaveScene  string
	Width      int
	Height     int
	MaxFrames  int
	Samples    int
	MaxDepth   int
	Policy     string
	Alpha      float64
	Seed       uint64
	NumWorkers int
	TileSize   int
	Format     string
	OutputDir  string
	Help       bool
}

var errUnknownFormat = errors.New("unknown image format")

func main() {
	config := parseFlags()

	if config.Help {
		showHelp()
		return
	}

	if err := run(config); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func parseFlags() Config {
	config := Config{}
	flag.StringVar(&config.SceneType, "scene", "default", "Built-in scene: "+strings.Join(scene.Names(), ", "))
	flag.StringVar(&config.SceneFile, "scene-file", "", "Path to a JSON scene file (overrides -scene)")
	flag.StringVar(&config.SaveScene, "save-scene", "", "Write the selected scene as a JSON scene file and exit")
	flag.IntVar(&config.Width, "width", 0, "Image width (0 = scene default)")
	flag.IntVar(&config.Height, "height", 0, "Image height (0 = scene default)")
	flag.IntVar(&config.MaxFrames, "frames", 16, "Number of progressive frames")
	flag.IntVar(&config.Samples, "samples", 0, "Samples per pixel per frame (0 = scene default)")
	flag.IntVar(&config.MaxDepth, "depth", 0, "Maximum bounces per path (0 = scene default)")
	flag.StringVar(&config.Policy, "policy", "mean", "Frame blend policy: mean, decay or fixed")
	flag.Float64Var(&config.Alpha, "alpha", 0.1, "Decay floor or fixed weight for -policy decay|fixed")
	flag.Uint64Var(&config.Seed, "seed", 1, "Seed for the per-pixel random generators")
	flag.IntVar(&config.NumWorkers, "workers", 0, "Number of parallel workers (0 = CPU count)")
	flag.IntVar(&config.TileSize, "tile", 64, "Tile size in pixels")
	flag.StringVar(&config.Format, "format", "png", "Output format: png, bmp or tiff")
	flag.StringVar(&config.OutputDir, "out", "output", "Output directory")
	flag.BoolVar(&config.Help, "help", false, "Show help information")
	flag.Parse()
	return config
}

func showHelp() {
	fmt.Println("Progressive Path Tracer")
	fmt.Println("Usage: pathtracer [options]")
	fmt.Println()
	fmt.Println("Options:")
	flag.PrintDefaults()
	fmt.Println()
	fmt.Println("Available scenes:")
	for _, name := range scene.Names() {
		fmt.Printf("  %s\n", name)
	}
	fmt.Println()
	fmt.Println("Output will be saved to <out>/<scene>/render_<timestamp>.<format>")
}

func run(config Config) error {
	fmt.Println("Starting Progressive Path Tracer...")

	sceneObj, err := createScene(config)
	if err != nil {
		return err
	}

	if config.SaveScene != "" {
		if err := sceneObj.Save(config.SaveScene); err != nil {
			return fmt.Errorf("failed to save scene: %w", err)
		}
		fmt.Printf("Scene saved as %s\n", config.SaveScene)
		return nil
	}

	policy, err := renderer.ParseBlendPolicy(config.Policy, float32(config.Alpha))
	if err != nil {
		return err
	}
	encode, ext, err := imageEncoder(config.Format)
	if err != nil {
		return err
	}

	progressiveConfig := renderer.DefaultProgressiveConfig()
	progressiveConfig.MaxFrames = config.MaxFrames
	progressiveConfig.NumWorkers = config.NumWorkers
	progressiveConfig.TileSize = config.TileSize
	progressiveConfig.Seed = config.Seed
	progressiveConfig.Policy = policy

	width, height := sceneObj.SamplingConfig.Width, sceneObj.SamplingConfig.Height
	fmt.Printf("Rendering %s at %dx%d, %d frames of %d samples (max depth %d, %s blending)\n",
		sceneObj.Name, width, height, config.MaxFrames,
		sceneObj.SamplingConfig.SamplesPerPixel, sceneObj.SamplingConfig.MaxDepth, policy)

	pr, err := renderer.NewProgressiveRenderer(sceneObj, width, height, progressiveConfig, renderer.NewDefaultLogger())
	if err != nil {
		return err
	}

	startTime := time.Now()
	img, err := renderFrames(context.Background(), pr)
	if err != nil {
		return err
	}
	fmt.Printf("Render completed in %v\n", time.Since(startTime))

	outputDir := createOutputDir(config.OutputDir, sceneID(config))
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("error creating output directory: %w", err)
	}

	timestamp := time.Now().Format("20060102_150405")
	filename := filepath.Join(outputDir, fmt.Sprintf("render_%s.%s", timestamp, ext))
	if err := saveImage(filename, img, encode); err != nil {
		return err
	}

	fmt.Printf("Render saved as %s\n", filename)
	return nil
}

// createScene builds the selected scene and applies the sampling flags
func createScene(config Config) (*scene.Scene, error) {
	var sceneObj *scene.Scene
	var err error
	if config.SceneFile != "" {
		sceneObj, err = scene.NewFileScene(config.SceneFile)
	} else {
		sceneObj, err = scene.New(config.SceneType)
	}
	if err != nil {
		return nil, err
	}

	sceneObj.SamplingConfig = scene.MergeSamplingConfig(sceneObj.SamplingConfig, scene.SamplingConfig{
		Width:           config.Width,
		Height:          config.Height,
		SamplesPerPixel: config.Samples,
		MaxDepth:        config.MaxDepth,
	})
	return sceneObj, nil
}

// renderFrames drains the progressive render and returns the last frame
func renderFrames(ctx context.Context, pr *renderer.ProgressiveRenderer) (image.Image, error) {
	frames, _, errs := pr.RenderProgressive(ctx, renderer.RenderOptions{})

	var last image.Image
	for frame := range frames {
		last = frame.Image
	}
	if err := <-errs; err != nil {
		return nil, err
	}
	if last == nil {
		return nil, fmt.Errorf("no frames rendered")
	}
	return last, nil
}

// sceneID names the output subdirectory for the selected scene
func sceneID(config Config) string {
	if config.SceneFile != "" {
		return strings.TrimSuffix(filepath.Base(config.SceneFile), filepath.Ext(config.SceneFile))
	}
	return config.SceneType
}

func createOutputDir(base, sceneID string) string {
	return filepath.Join(base, sceneID)
}

type encodeFunc func(io.Writer, image.Image) error

// imageEncoder returns the encoder and file extension for a format name
func imageEncoder(format string) (encodeFunc, string, error) {
	switch strings.ToLower(format) {
	case "png", "":
		return png.Encode, "png", nil
	case "bmp":
		return bmp.Encode, "bmp", nil
	case "tiff", "tif":
		return func(w io.Writer, img image.Image) error {
			return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
		}, "tiff", nil
	default:
		return nil, "", fmt.Errorf("%w: %q", errUnknownFormat, format)
	}
}

func saveImage(filename string, img image.Image, encode encodeFunc) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("error creating file: %w", err)
	}
	defer file.Close()

	if err := encode(file, img); err != nil {
		return fmt.Errorf("error encoding image: %w", err)
	}
	return nil
}
