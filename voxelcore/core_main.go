package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/chewxy/math32"
	"github.com/gekko3d/chunkvox"
	"github.com/gekko3d/chunkvox/voxelcore/chunks"
	"github.com/gekko3d/chunkvox/voxelcore/debugview"
	"github.com/gekko3d/chunkvox/voxelcore/editor"
	"github.com/gekko3d/chunkvox/voxelcore/generation"
	"github.com/gekko3d/chunkvox/voxelcore/geometry"
	"github.com/gekko3d/chunkvox/voxelcore/voxeltypes"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
)

const maxCarveSteps = 200

func main() {
	configPath := flag.String("config", "", "YAML config file")
	radius := flag.Float64("radius", 4, "Radius of the larger lobe in world units")
	carve := flag.Float64("carve", 1, "Radius of the capsule carved through the neck, 0 to skip")
	slicePath := flag.String("slice", "", "Write a PNG cross-section of the largest object")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	if err := run(*configPath, float32(*radius), float32(*carve), *slicePath, *debug); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(configPath string, radius, carve float32, slicePath string, debug bool) error {
	cfg := chunkvox.DefaultConfig()
	if configPath != "" {
		loaded, err := chunkvox.LoadConfig(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	logger := chunkvox.NewLogger(cfg.Logging)
	if debug {
		logger.SetDebug(true)
	}

	registry, err := loadRegistry(cfg)
	if err != nil {
		return err
	}

	// Two lobes joined by a neck along x, in voxel units.
	extent := float32(cfg.VoxelExtent)
	r := radius / extent
	neckX := 1.6 * r
	root := generation.Union{
		A: generation.Union{
			A: generation.SphereSDF{Radius: r},
			B: generation.Translated{Child: generation.SphereSDF{Radius: 0.6 * r}, Offset: mgl32.Vec3{2.6 * r, 0, 0}},
		},
		B: generation.Translated{
			Child:  generation.BoxSDF{Extents: mgl32.Vec3{1.6 * r, 0.3 * r, 0.3 * r}},
			Offset: mgl32.Vec3{1.3 * r, 0, 0},
		},
		Smoothness: 1,
	}
	types := generation.LayeredVoxelTypes{Axis: 1, Thickness: max(1, int(r)), Types: layerTypes(registry)}

	obj, origin, err := chunkvox.GenerateVoxelObject(context.Background(), cfg, root, types, logger)
	if err != nil {
		return err
	}
	if obj == nil {
		return fmt.Errorf("radius %g gives an empty object", radius)
	}

	manager := chunkvox.NewVoxelObjectManager(cfg.BroadphaseCellSize, logger)
	densities := registry.MassDensities()
	chunkvox.NewDynamicVoxelObject(manager, obj, densities, origin)

	system := chunkvox.NewAbsorptionSystem(densities, cfg.Absorption, logger)
	if carve > 0 {
		x := float64(neckX * extent)
		z := float64(radius)
		capsule := chunkvox.AbsorbingCapsuleBetween(mgl64.Vec3{x, 0, -z}, mgl64.Vec3{x, 0, z}, carve, cfg.Absorption.Rate)
		for step := 0; step < maxCarveSteps; step++ {
			outcome := system.Apply(manager, nil, []editor.AbsorbingCapsule{capsule}, 0.1)
			if len(outcome.Created) > 0 {
				logger.Infof("Neck cut after %d steps", step+1)
				break
			}
		}
	}
	diffs := manager.SyncMeshes()
	logger.Debugf("Synced %d meshes", len(diffs))

	absorbed := system.Tracker.Total()
	fmt.Printf("absorbed %d voxels (%.3f units³)\n", absorbed.Count, absorbed.Volume)
	var largest *chunks.ChunkedVoxelObject
	for _, id := range manager.IDs() {
		meshed, physics, _ := manager.GetWithPhysicsContext(id)
		fmt.Printf("%s: %d voxels, %d regions, %d triangles, mass %.2f, %d KiB\n",
			id, meshed.Object.NonEmptyVoxelCount(), meshed.Object.CountRegions(), meshed.Mesh.TriangleCount(), physics.Body.Mass,
			meshed.Object.MemoryUsage()/1024)
		if largest == nil || meshed.Object.NonEmptyVoxelCount() > largest.NonEmptyVoxelCount() {
			largest = meshed.Object
		}
	}

	printGroundContacts(manager, extent)

	if slicePath != "" && largest != nil {
		ranges := largest.OccupiedVoxelRanges()
		index := (ranges[2].Start + ranges[2].End) / 2
		img, err := debugview.RenderSlice(largest, 2, index, debugview.SliceOptions{Scale: 4, Palette: registry.Color, Label: true})
		if err != nil {
			return err
		}
		if err := debugview.WritePNG(slicePath, img); err != nil {
			return err
		}
		logger.Infof("Wrote slice z=%d to %s", index, slicePath)
	}
	return nil
}

func loadRegistry(cfg chunkvox.Config) (*voxeltypes.Registry, error) {
	if cfg.VoxelTypesPath != "" {
		return voxeltypes.LoadRegistry(cfg.VoxelTypesPath)
	}
	return voxeltypes.NewRegistry([]voxeltypes.Specification{
		{Name: "granite", MassDensity: 2700, Color: [3]uint8{150, 140, 135}},
		{Name: "sandstone", MassDensity: 2300, Color: [3]uint8{210, 180, 120}},
		{Name: "ice", MassDensity: 917, Color: [3]uint8{190, 225, 245}},
	})
}

func layerTypes(registry *voxeltypes.Registry) []chunks.VoxelType {
	types := make([]chunks.VoxelType, registry.Len())
	for i := range types {
		types[i] = chunks.VoxelType(i)
	}
	return types
}

// printGroundContacts counts the corner voxels touching a ground plane a
// quarter voxel above the lowest point of any object.
func printGroundContacts(manager *chunkvox.VoxelObjectManager, extent float32) {
	ids := manager.IDs()
	if len(ids) == 0 {
		return
	}
	lowest := math32.Inf(1)
	for _, id := range ids {
		box, _ := manager.WorldAABB(id)
		lowest = min(lowest, box.Min.Y())
	}
	ground := geometry.NewPlane(mgl32.Vec3{0, 1, 0}, lowest+0.25*extent)
	counts := make(map[chunkvox.VoxelObjectID]int)
	manager.ForEachPlaneContact(ground, func(c chunkvox.VoxelContact) { counts[c.Object]++ })
	for _, id := range ids {
		if n := counts[id]; n > 0 {
			fmt.Printf("%s: %d ground contacts\n", id, n)
		}
	}
}
