package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joshuapare/kheap/internal/format"
	"github.com/joshuapare/kheap/mm/alloc"
	"github.com/joshuapare/kheap/mm/kheap"
	"github.com/joshuapare/kheap/mm/machine"
)

var (
	heapKind    string
	heapSize    string
	heapStart   string
	heapClasses string
)

var sizeClassConfigs = map[string]alloc.SizeClassConfig{
	"small":    alloc.ConfigSmall,
	"standard": alloc.ConfigStandard,
	"page":     alloc.ConfigPage,
}

func init() {
	rootCmd.AddCommand(newBootCmd())
}

// addHeapFlags registers the heap configuration flags.
func addHeapFlags(cmd *cobra.Command) {
	addMapFlag(cmd)
	cmd.Flags().StringVar(&heapKind, "kind", kheap.DefaultKind.String(), "Allocator: bump, freelist or sizeclass")
	cmd.Flags().StringVar(&heapSize, "heap-size", format.Size(kheap.HeapSize).String(), "Heap size (page multiple)")
	cmd.Flags().StringVar(&heapStart, "heap-start", fmt.Sprintf("%#x", kheap.HeapStart), "Heap virtual base address")
	cmd.Flags().StringVar(&heapClasses, "classes", "standard", "Size classes for sizeclass: small, standard or page")
}

// heapConfig builds a kheap.Config from the heap flags.
func heapConfig() (kheap.Config, error) {
	cfg := kheap.DefaultConfig()

	kind, err := kheap.ParseKind(heapKind)
	if err != nil {
		return cfg, err
	}
	size, err := format.ParseSize(heapSize)
	if err != nil {
		return cfg, fmt.Errorf("--heap-size: %w", err)
	}
	start, err := format.ParseSize(heapStart)
	if err != nil {
		return cfg, fmt.Errorf("--heap-start: %w", err)
	}
	classes, ok := sizeClassConfigs[strings.ToLower(heapClasses)]
	if !ok {
		return cfg, fmt.Errorf("--classes: unknown size class set %q", heapClasses)
	}

	cfg.Kind = kind
	cfg.Size = uintptr(size)
	cfg.Start = uintptr(start)
	cfg.SizeClasses = classes
	return cfg, nil
}

// bootMachine loads the memory map and boots a heap from the flags.
func bootMachine() (*machine.Machine, kheap.Config, error) {
	cfg, err := heapConfig()
	if err != nil {
		return nil, cfg, err
	}
	memMap, err := loadMemoryMap(mapPath)
	if err != nil {
		return nil, cfg, err
	}

	printVerbose("Booting %s heap at %#x (%s)\n", cfg.Kind, cfg.Start, format.Size(cfg.Size))
	m, err := machine.Boot(memMap, cfg)
	if err != nil {
		return nil, cfg, fmt.Errorf("boot failed: %w", err)
	}
	return m, cfg, nil
}

func newBootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "boot",
		Short: "Map and initialize the heap, then report its layout",
		Long: `The boot command runs the heap bootstrap on a simulated machine: frames
are taken from the usable regions of the memory map, every heap page is
mapped present and writable, and the chosen allocator is initialized over
the mapped range.

Example:
  heapctl boot
  heapctl boot --kind freelist --heap-size 1MiB
  heapctl boot --map board.yaml --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBoot()
		},
	}
	addHeapFlags(cmd)
	return cmd
}

type bootResult struct {
	Kind            string    `json:"kind"`
	Start           uintptr   `json:"start"`
	Size            uintptr   `json:"size"`
	Pages           int       `json:"pages"`
	FramesUsed      uint64    `json:"frames_used"`
	FramesRemaining uint64    `json:"frames_remaining"`
	FreeBytes       uintptr   `json:"free_bytes"`
	FreeBlocks      int       `json:"free_blocks"`
	FirstFrame      uintptr   `json:"first_frame"`
	Classes         []uintptr `json:"classes,omitempty"`
}

func runBoot() error {
	m, cfg, err := bootMachine()
	if err != nil {
		return err
	}
	defer m.Close()

	snap := m.Heap.Snapshot()
	res := bootResult{
		Kind:            snap.Kind.String(),
		Start:           snap.Start,
		Size:            snap.Size,
		Pages:           m.Table.Mapped(),
		FramesUsed:      m.Frames.Allocated(),
		FramesRemaining: m.Frames.Remaining(),
		FreeBytes:       snap.FreeBytes,
		FreeBlocks:      len(snap.FreeBlocks),
	}
	for _, c := range snap.Classes {
		res.Classes = append(res.Classes, c.Size)
	}
	if phys, ok := m.Table.Translate(cfg.Start); ok {
		res.FirstFrame = phys
	}

	if jsonOut {
		return printJSON(res)
	}

	printInfo("\nHeap:\n")
	printInfo("  Allocator: %s\n", res.Kind)
	printInfo("  Range: %#x - %#x (%s)\n", res.Start, res.Start+res.Size, format.Size(res.Size))
	printInfo("  Pages mapped: %d\n", res.Pages)
	printInfo("  First frame: %#x\n", res.FirstFrame)
	printInfo("  Frames remaining: %d\n", res.FramesRemaining)
	printInfo("  Free: %d bytes in %d block(s)\n", res.FreeBytes, res.FreeBlocks)
	if len(res.Classes) > 0 {
		printInfo("  Size classes (%s): %v\n", cfg.SizeClasses.Name, res.Classes)
	}
	return nil
}
