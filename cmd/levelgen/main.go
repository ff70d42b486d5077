// levelgen writes the blueprints the generator produces for a range of
// levels to a YAML file, for reviewing layouts and difficulty curves.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/trijam/forcerun/internal/config"
	"github.com/trijam/forcerun/internal/data"
	"github.com/trijam/forcerun/internal/game"
	"github.com/trijam/forcerun/internal/gen"
	"github.com/trijam/forcerun/internal/level"
	"github.com/trijam/forcerun/internal/scripting"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

type ObstacleEntry struct {
	Type             string  `yaml:"type"`
	X                float64 `yaml:"x"`
	Z                float64 `yaml:"z"`
	DestructionValue float64 `yaml:"destruction_value,omitempty"`
	Width            float64 `yaml:"width"`
	Height           float64 `yaml:"height"`
	Destructible     bool    `yaml:"destructible"`
	Tier             string  `yaml:"tier"`
}

type LevelEntry struct {
	Level            int             `yaml:"level"`
	Name             string          `yaml:"name"`
	Difficulty       string          `yaml:"difficulty"`
	DifficultyScore  float64         `yaml:"difficulty_score"`
	Density          float64         `yaml:"density"`
	RecommendedForce float64         `yaml:"recommended_force"`
	Length           float64         `yaml:"length"`
	Obstacles        []ObstacleEntry `yaml:"obstacles"`
}

type BlueprintFile struct {
	Seed   int64        `yaml:"seed"`
	Levels []LevelEntry `yaml:"levels"`
}

func main() {
	fs := flag.NewFlagSet("levelgen", flag.ExitOnError)
	cfgPath := fs.String("config", "config/forcerun.toml", "configuration file")
	seed := fs.Int64("seed", 1, "generator seed")
	from := fs.Int("from", 1, "first level")
	to := fs.Int("to", 10, "last level")
	_ = fs.Parse(os.Args[1:])

	if fs.NArg() < 1 || *from < 1 || *to < *from {
		fmt.Fprintln(os.Stderr, "Usage: levelgen [-config path] [-seed n] [-from n] [-to n] <output.yaml>")
		os.Exit(1)
	}
	outputPath := fs.Arg(0)

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading config: %v\n", err)
		os.Exit(1)
	}
	levels, err := data.LoadLevelTable(cfg.Data.LevelsPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading levels: %v\n", err)
		os.Exit(1)
	}
	colors, err := data.LoadColorTable(cfg.Data.ColorsPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading colors: %v\n", err)
		os.Exit(1)
	}
	engine, err := scripting.NewEngine(cfg.Data.ScriptsDir, zap.NewNop())
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading scripts: %v\n", err)
		os.Exit(1)
	}
	defer engine.Close()

	opts := game.OptionsFromConfig(cfg, zap.NewNop())
	g := gen.NewGenerator(opts.Layout, colors.Classifier(), gen.NewRandom(*seed), zap.NewNop())
	g.SetCurve(engine)

	out := BlueprintFile{Seed: *seed, Levels: dump(level.NewProvider(levels), g, *from, *to)}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "error creating output directory: %v\n", err)
		os.Exit(1)
	}
	yamlData, err := yaml.Marshal(&out)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error marshalling YAML: %v\n", err)
		os.Exit(1)
	}
	header := fmt.Sprintf("# Generated blueprints for levels %d-%d\n\n", *from, *to)
	if err := os.WriteFile(outputPath, append([]byte(header), yamlData...), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "error writing %s: %v\n", outputPath, err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %d level blueprints to %s\n", len(out.Levels), outputPath)
}

func dump(p *level.Provider, g *gen.Generator, from, to int) []LevelEntry {
	var entries []LevelEntry
	for n := from; n <= to; n++ {
		ld := p.GetLevelData(n)
		bp := g.Blueprint(n, ld)
		e := LevelEntry{
			Level:            n,
			Name:             ld.Name,
			Difficulty:       bp.Difficulty.String(),
			DifficultyScore:  bp.DifficultyScore,
			Density:          bp.Density,
			RecommendedForce: bp.RecommendedForce,
			Length:           bp.LevelLength,
		}
		for _, s := range bp.Specs {
			e.Obstacles = append(e.Obstacles, ObstacleEntry{
				Type:             s.Type.String(),
				X:                s.Position.X,
				Z:                s.Position.Z,
				DestructionValue: s.DestructionValue,
				Width:            s.Width,
				Height:           s.Height,
				Destructible:     s.Destructible,
				Tier:             s.Tier.String(),
			})
		}
		entries = append(entries, e)
	}
	return entries
}
