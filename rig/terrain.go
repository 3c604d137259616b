package rig

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/lixenwraith/strider/config"
	"github.com/lixenwraith/strider/physics"
)

// TerrainHeight is the rolling ground profile generated for cfg, zero amplitude is flat
func TerrainHeight(cfg config.Terrain) func(x, z float64) float64 {
	k := 2 * math.Pi / cfg.Wavelength
	return func(x, z float64) float64 {
		return cfg.Amplitude * (math.Sin(k*z) + 0.5*math.Sin(k*x/1.7)) / 1.5
	}
}

// BuildTerrain creates a square heightfield centred on the origin plus one box per configured step,
// all on layer
func BuildTerrain(cfg config.Terrain, layer int) (*physics.World, error) {
	cells := int(math.Ceil(cfg.Size / cfg.CellSize))
	if cells < 1 {
		return nil, fmt.Errorf("terrain size %.2f smaller than cell %.2f", cfg.Size, cfg.CellSize)
	}
	half := float64(cells) * cfg.CellSize / 2

	field, err := physics.GenerateHeightfield(
		mgl64.Vec3{-half, 0, -half}, cfg.CellSize, cells+1, cells+1, layer, TerrainHeight(cfg),
	)
	if err != nil {
		return nil, fmt.Errorf("generate terrain: %w", err)
	}

	world := physics.NewWorld(field)
	for _, s := range cfg.Steps {
		world.Add(physics.NewBox(config.Vec3(s.Min), config.Vec3(s.Max), layer))
	}
	return world, nil
}
