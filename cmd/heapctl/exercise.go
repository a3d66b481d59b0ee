package main

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/spf13/cobra"

	"github.com/joshuapare/kheap/internal/logger"
	"github.com/joshuapare/kheap/mm/alloc"
	"github.com/joshuapare/kheap/mm/kheap"
)

var (
	workload  string
	ops       int
	seed      int64
	maxSize   int
	longLived bool
	freeAtEnd bool
)

func init() {
	rootCmd.AddCommand(newExerciseCmd())
}

func newExerciseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "exercise",
		Short: "Run an allocation workload against a freshly booted heap",
		Long: `The exercise command boots a heap and runs one of the workloads below,
then prints allocator counters and the final free-space layout.

Workloads:
  random  seeded mix of allocations (random size and alignment) and frees
  boxes   allocate and immediately free one word, --ops times
  vec     push --ops words onto a growable vector and sum them

Example:
  heapctl exercise --workload random --ops 10000 --seed 7
  heapctl exercise --workload boxes --kind freelist --long-lived
  heapctl exercise --workload vec --ops 1000 --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExercise()
		},
	}
	addHeapFlags(cmd)
	cmd.Flags().StringVar(&workload, "workload", "random", "Workload: random, boxes or vec")
	cmd.Flags().IntVar(&ops, "ops", 1000, "Number of operations")
	cmd.Flags().Int64Var(&seed, "seed", 42, "Random seed for the random workload")
	cmd.Flags().IntVar(&maxSize, "max-size", 512, "Largest request of the random workload")
	cmd.Flags().BoolVar(&longLived, "long-lived", false, "Keep one box alive for the whole boxes workload")
	cmd.Flags().BoolVar(&freeAtEnd, "free-all", true, "Free everything still live when the random workload ends")
	return cmd
}

type exerciseResult struct {
	Workload    string        `json:"workload"`
	Kind        string        `json:"kind"`
	Ops         int           `json:"ops"`
	Failed      int           `json:"failed"`
	PeakInUse   uint64        `json:"peak_in_use"`
	Live        int           `json:"live"`
	Checksum    uint64        `json:"checksum,omitempty"`
	Stats       alloc.Stats   `json:"stats"`
	FreeBytes   uintptr       `json:"free_bytes"`
	FreeBlocks  int           `json:"free_blocks"`
	LargestFree uintptr       `json:"largest_free"`
	Classes     []classResult `json:"classes,omitempty"`
}

type classResult struct {
	Size uintptr `json:"size"`
	Free int     `json:"free"`
}

func runExercise() error {
	if ops < 0 || maxSize <= 0 {
		return errors.New("--ops must be >= 0 and --max-size > 0")
	}

	m, cfg, err := bootMachine()
	if err != nil {
		return err
	}
	defer m.Close()

	res := exerciseResult{Workload: workload, Kind: cfg.Kind.String(), Ops: ops}
	switch workload {
	case "random":
		err = runRandom(m.Heap, &res)
	case "boxes":
		err = runBoxes(m.Heap, &res)
	case "vec":
		err = runVec(m.Heap, &res)
	default:
		return fmt.Errorf("unknown workload %q", workload)
	}
	if err != nil {
		return err
	}

	snap := m.Heap.Snapshot()
	logger.Info("workload finished", "workload", workload, "heap", snap)
	res.Stats = snap.Stats
	res.FreeBytes = snap.FreeBytes
	res.FreeBlocks = len(snap.FreeBlocks)
	for _, b := range snap.FreeBlocks {
		res.LargestFree = max(res.LargestFree, b.Size)
	}
	for _, c := range snap.Classes {
		res.Classes = append(res.Classes, classResult{Size: c.Size, Free: c.Free})
	}

	if jsonOut {
		return printJSON(res)
	}
	printExercise(res)
	return nil
}

type liveBlock struct {
	addr, size, align uintptr
}

func runRandom(h *kheap.Heap, res *exerciseResult) error {
	rng := rand.New(rand.NewSource(seed))
	var live []liveBlock

	for range ops {
		if len(live) > 0 && rng.Intn(5) < 2 {
			i := rng.Intn(len(live))
			b := live[i]
			h.Free(b.addr, b.size, b.align)
			live[i] = live[len(live)-1]
			live = live[:len(live)-1]
			continue
		}

		size := uintptr(1 + rng.Intn(maxSize))
		align := uintptr(1) << rng.Intn(7)
		addr, err := h.Alloc(size, align)
		if errors.Is(err, alloc.ErrOutOfMemory) {
			res.Failed++
			continue
		}
		if err != nil {
			return err
		}
		live = append(live, liveBlock{addr, size, align})
		res.PeakInUse = max(res.PeakInUse, h.Stats().BytesInUse)
	}

	if freeAtEnd {
		for _, b := range live {
			h.Free(b.addr, b.size, b.align)
		}
		live = nil
	}
	res.Live = len(live)
	return nil
}

func runBoxes(h *kheap.Heap, res *exerciseResult) error {
	var keep *kheap.Box
	if longLived {
		b, err := kheap.NewBox(h, 1)
		if err != nil {
			return err
		}
		keep = b
	}

	for i := range uint64(ops) {
		b, err := kheap.NewBox(h, i)
		if errors.Is(err, alloc.ErrOutOfMemory) {
			res.Failed++
			continue
		}
		if err != nil {
			return err
		}
		if b.Get() != i {
			return fmt.Errorf("box %d read back %d", i, b.Get())
		}
		b.Free()
	}

	if keep != nil {
		if keep.Get() != 1 {
			return fmt.Errorf("long-lived box overwritten: %d", keep.Get())
		}
		res.Live = 1
	}
	res.PeakInUse = h.Stats().BytesInUse
	return nil
}

func runVec(h *kheap.Heap, res *exerciseResult) error {
	v := kheap.NewVec(h)
	for i := range uint64(ops) {
		if err := v.Push(i); err != nil {
			return err
		}
	}
	res.Checksum = v.Sum()
	res.PeakInUse = h.Stats().BytesInUse
	printVerbose("Vector: %d elements, capacity %d at %#x\n", v.Len(), v.Cap(), v.Addr())
	v.Free()
	return nil
}

func printExercise(res exerciseResult) {
	printInfo("\nWorkload: %s on %s heap (%d ops)\n", res.Workload, res.Kind, res.Ops)
	if res.Checksum != 0 {
		printInfo("  Checksum: %d\n", res.Checksum)
	}
	printInfo("  Failed allocations: %d\n", res.Failed)
	printInfo("  Peak in use: %d bytes\n", res.PeakInUse)
	printInfo("  Still live: %d\n", res.Live)

	st := res.Stats
	printInfo("\nCounters:\n")
	printInfo("  Alloc calls: %d\n", st.AllocCalls)
	printInfo("  Free calls: %d\n", st.FreeCalls)
	printInfo("  Bytes in use: %d\n", st.BytesInUse)
	switch res.Kind {
	case kheap.KindBump.String():
		printInfo("  Cursor resets: %d\n", st.BumpResets)
	default:
		printInfo("  Splits: %d\n", st.Splits)
		printInfo("  Coalesced: %d forward, %d backward\n", st.CoalesceForward, st.CoalesceBackward)
		printInfo("  Wasted tails: %d bytes\n", st.WastedBytes)
	}
	if res.Kind == kheap.KindSizeClass.String() {
		printInfo("  Class hits: %d, refills: %d, fallback: %d\n", st.ClassHits, st.ClassRefills, st.FallbackAllocs)
	}

	printInfo("\nFree space:\n")
	printInfo("  %d bytes in %d block(s), largest %d\n", res.FreeBytes, res.FreeBlocks, res.LargestFree)
	for _, c := range res.Classes {
		printVerbose("  class %5d: %d free\n", c.Size, c.Free)
	}
}
