package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/df07/go-optics-tracer/pkg/core"
	"github.com/df07/go-optics-tracer/pkg/renderer"
	"github.com/df07/go-optics-tracer/pkg/scene"
	"github.com/df07/go-optics-tracer/pkg/termview"
)

func main() {
	// Parse command line flags
	levelName := flag.String("level", "basic", "Built-in level name or path to a level JSON file")
	out := flag.String("out", "", "PNG output path (default output/<level>/render_<timestamp>.png)")
	term := flag.Bool("term", false, "Open the interactive terminal viewer")
	maxBounces := flag.Int("max-bounces", renderer.DefaultConfig().MaxBounces, "Maximum interactions per beam")
	minIntensity := flag.Float64("min-intensity", renderer.DefaultConfig().MinIntensity, "Intensity below which beams are dropped")
	list := flag.Bool("list", false, "List available levels and exit")
	help := flag.Bool("help", false, "Show help information")
	flag.Parse()

	if *help {
		fmt.Println("Optics Tracer")
		fmt.Println("Usage: optics-tracer [options]")
		fmt.Println()
		fmt.Println("Options:")
		flag.PrintDefaults()
		fmt.Println()
		printLevels()
		fmt.Println()
		fmt.Println("Output will be saved to output/<level>/render_<timestamp>.png unless -out is given")
		return
	}

	if *list {
		printLevels()
		return
	}

	level, err := createLevel(*levelName)
	if err != nil {
		fmt.Printf("Error loading level: %v\n", err)
		os.Exit(1)
	}

	s, err := level.Build()
	if err != nil {
		fmt.Printf("Error building level: %v\n", err)
		os.Exit(1)
	}

	config := renderer.DefaultConfig().WithSettings(level.Settings)
	// Explicit flags win over level settings
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "max-bounces":
			config.MaxBounces = *maxBounces
		case "min-intensity":
			config.MinIntensity = *minIntensity
		}
	})

	if config.MaxBounces < 0 || config.MaxBounces > scene.MaxBounceLimit {
		fmt.Printf("Error: -max-bounces must be between 0 and %d\n", scene.MaxBounceLimit)
		os.Exit(1)
	}
	if config.MinIntensity < scene.MinIntensityFloor || config.MinIntensity > 1 {
		fmt.Printf("Error: -min-intensity must be between %v and 1\n", scene.MinIntensityFloor)
		os.Exit(1)
	}

	logger := core.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)), slog.LevelDebug)
	raycaster := renderer.NewRaycaster(s, config, logger)

	if *term {
		if err := runTerminal(raycaster, level.Name); err != nil {
			fmt.Printf("Error running terminal viewer: %v\n", err)
			os.Exit(1)
		}
		return
	}

	filename := *out
	if filename == "" {
		outputDir := createOutputDir(*levelName)
		if err := os.MkdirAll(outputDir, 0755); err != nil {
			fmt.Printf("Error creating output directory: %v\n", err)
			os.Exit(1)
		}
		timestamp := time.Now().Format("20060102_150405")
		filename = filepath.Join(outputDir, fmt.Sprintf("render_%s.png", timestamp))
	}

	fmt.Printf("Tracing level %q...\n", level.Name)
	startTime := time.Now()
	segments := raycaster.TraceAll()
	traceTime := time.Since(startTime)

	hit, total := s.TargetsHit()
	fmt.Printf("Trace completed in %v\n", traceTime)
	fmt.Printf("Stats: %s\n", raycaster.Stats())
	fmt.Printf("Targets hit: %d/%d\n", hit, total)
	if s.Complete() {
		fmt.Println("Level complete!")
	}

	opts := renderer.DefaultImageOptions()
	opts.Width, opts.Height = int(s.Width), int(s.Height)
	img := renderer.RenderImage(segments, s, opts)
	if err := renderer.SavePNG(img, filename); err != nil {
		fmt.Printf("Error saving PNG: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Render saved as %s\n", filename)
}

// createLevel resolves a built-in level name or a level file
func createLevel(name string) (*scene.Level, error) {
	if name == "" {
		return nil, fmt.Errorf("no level given")
	}

	if level, err := scene.Builtin(name); err == nil {
		return level, nil
	}

	if level := tryLoadLevelFile(name); level != nil {
		return level, nil
	}

	return nil, fmt.Errorf("unknown level %q (try -list)", name)
}

// tryLoadLevelFile loads name as a path, then as levels/<name>.json
func tryLoadLevelFile(name string) *scene.Level {
	candidates := []string{name}
	if !strings.HasSuffix(name, ".json") {
		candidates = append(candidates, filepath.Join("levels", name+".json"))
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		level, err := scene.LoadLevelFile(path)
		if err != nil {
			fmt.Printf("Warning: %v\n", err)
			continue
		}
		if level.ID == "" {
			level.ID = "file:" + strings.TrimSuffix(filepath.Base(path), ".json")
		}
		return level
	}
	return nil
}

// createOutputDir returns output/<level> for built-ins and the file's base name otherwise
func createOutputDir(levelName string) string {
	base := strings.TrimSuffix(filepath.Base(levelName), ".json")
	if base == "" || base == "." || base == string(filepath.Separator) {
		base = "level"
	}
	return filepath.Join("output", base)
}

func printLevels() {
	levels, err := scene.ListAllLevels("levels")
	if err != nil {
		fmt.Printf("Error listing levels: %v\n", err)
		return
	}
	for _, group := range levels.Groups {
		fmt.Printf("%s:\n", group.Name)
		for _, info := range group.Levels {
			name := info.ID
			if info.FilePath != "" {
				name = info.FilePath
			}
			fmt.Printf("  %-24s %s\n", name, info.Description)
		}
	}
}

func runTerminal(raycaster *renderer.Raycaster, title string) error {
	screen, err := termview.Open()
	if err != nil {
		return err
	}
	defer screen.Fini()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	termview.New(screen, raycaster, title).Run(ctx)
	return nil
}
