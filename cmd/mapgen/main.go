// mapgen generates an Ashfall map file from a seed.
//
// Usage:
//
//	go run ./cmd/mapgen -out data/ashfall.map
//	go run ./cmd/mapgen -out data/ashfall.map -width 1024 -height 1024 -seed 7
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/hollowmere/ashfall/internal/world"
)

func main() {
	out := flag.String("out", "data/ashfall.map", "output map file")
	width := flag.Int("width", 512, "map width in cells")
	height := flag.Int("height", 512, "map height in cells")
	seed := flag.Int64("seed", 1, "generator seed")
	flag.Parse()

	if err := generate(*out, int32(*width), int32(*height), *seed); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func generate(out string, width, height int32, seed int64) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("invalid dimensions %dx%d", width, height)
	}

	md := world.Generate(world.DefaultGenConfig(width, height, seed))

	if err := world.WriteMap(out, md); err != nil {
		return fmt.Errorf("writing %s: %w", out, err)
	}

	walkable := 0
	for _, c := range md.Cells {
		if c.Terrain.Walkable() {
			walkable++
		}
	}
	total := len(md.Cells)

	info, err := os.Stat(out)
	if err != nil {
		return err
	}

	fmt.Printf("map written: %s\n", out)
	fmt.Printf("dimensions:  %dx%d (seed %d)\n", width, height, seed)
	fmt.Printf("walkable:    %d/%d cells (%.1f%%)\n",
		walkable, total, 100*float64(walkable)/float64(total))
	fmt.Printf("file size:   %d bytes\n", info.Size())
	return nil
}
