package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/joshuapare/kheap/internal/format"
	"github.com/joshuapare/kheap/mm"
)

var (
	mapPath string
	mapDump bool
)

func init() {
	cmd := newMemmapCmd()
	cmd.Flags().BoolVar(&mapDump, "dump", false, "Print the map as a YAML memory map file")
	rootCmd.AddCommand(cmd)
}

// addMapFlag registers --map on commands that boot a machine.
func addMapFlag(cmd *cobra.Command) {
	cmd.Flags().StringVar(&mapPath, "map", "", "YAML memory map file (default: built-in QEMU map)")
}

func newMemmapCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "memmap",
		Short: "Show the firmware memory map",
		Long: `The memmap command loads a memory map and prints its regions together with
the number of whole usable frames the boot frame allocator can hand out.

Memory map files are YAML:

  regions:
    - start: 0x0
      end: 0x9fc00
      kind: usable
    - start: 0x9fc00
      end: 0xa0000
      kind: reserved

Example:
  heapctl memmap
  heapctl memmap --map board.yaml --json
  heapctl memmap --dump > qemu.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMemmap()
		},
	}
	addMapFlag(cmd)
	return cmd
}

// hexAddr is an address that reads any integer literal and writes hex.
type hexAddr uintptr

// UnmarshalYAML implements yaml.Unmarshaler.
func (a *hexAddr) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: address must be a scalar", value.Line)
	}
	n, err := strconv.ParseUint(value.Value, 0, 64)
	if err != nil {
		return fmt.Errorf("line %d: bad address %q", value.Line, value.Value)
	}
	*a = hexAddr(n)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (a hexAddr) MarshalYAML() (any, error) {
	return fmt.Sprintf("%#x", uintptr(a)), nil
}

type mapRegion struct {
	Start hexAddr `yaml:"start" json:"start"`
	End   hexAddr `yaml:"end" json:"end"`
	Kind  string  `yaml:"kind" json:"kind"`
}

type mapFile struct {
	Regions []mapRegion `yaml:"regions"`
}

var errEmptyMap = errors.New("memory map has no regions")

// parseMemoryMap decodes a YAML memory map file.
func parseMemoryMap(data []byte) (mm.MemoryMap, error) {
	var f mapFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse memory map: %w", err)
	}
	if len(f.Regions) == 0 {
		return nil, errEmptyMap
	}

	m := make(mm.MemoryMap, 0, len(f.Regions))
	for i, r := range f.Regions {
		kind, err := mm.ParseRegionKind(r.Kind)
		if err != nil {
			return nil, fmt.Errorf("region %d: %w", i, err)
		}
		m = append(m, mm.MemoryRegion{Start: uintptr(r.Start), End: uintptr(r.End), Kind: kind})
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// loadMemoryMap reads path, or returns the QEMU map when path is empty.
func loadMemoryMap(path string) (mm.MemoryMap, error) {
	if path == "" {
		return mm.QEMUMemoryMap(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read memory map: %w", err)
	}
	return parseMemoryMap(data)
}

func toMapFile(m mm.MemoryMap) mapFile {
	f := mapFile{Regions: make([]mapRegion, len(m))}
	for i, r := range m {
		f.Regions[i] = mapRegion{Start: hexAddr(r.Start), End: hexAddr(r.End), Kind: r.Kind.String()}
	}
	return f
}

type memmapResult struct {
	Regions       []memmapRegion `json:"regions"`
	UsableBytes   uint64         `json:"usable_bytes"`
	UsableFrames  uint64         `json:"usable_frames"`
	PhysicalBytes uint64         `json:"physical_bytes"`
}

type memmapRegion struct {
	Start  uintptr `json:"start"`
	End    uintptr `json:"end"`
	Kind   string  `json:"kind"`
	Length uintptr `json:"length"`
}

func runMemmap() error {
	m, err := loadMemoryMap(mapPath)
	if err != nil {
		return err
	}

	if mapDump {
		out, err := yaml.Marshal(toMapFile(m))
		if err != nil {
			return fmt.Errorf("encode memory map: %w", err)
		}
		_, err = os.Stdout.Write(out)
		return err
	}

	res := memmapResult{
		UsableBytes:   uint64(m.TotalUsable()),
		UsableFrames:  m.UsableFrames(),
		PhysicalBytes: uint64(m.End()),
	}
	for _, r := range m {
		res.Regions = append(res.Regions, memmapRegion{Start: r.Start, End: r.End, Kind: r.Kind.String(), Length: r.Len()})
	}

	if jsonOut {
		return printJSON(res)
	}

	printInfo("\nMemory Map:\n")
	for _, r := range res.Regions {
		printInfo("  %#012x - %#012x  %-16s %d bytes\n", r.Start, r.End, r.Kind, r.Length)
	}
	printInfo("\nUsable: %s in %d frames\n", format.Size(res.UsableBytes), res.UsableFrames)
	printVerbose("Physical memory needed: %s\n", format.Size(res.PhysicalBytes))
	return nil
}
