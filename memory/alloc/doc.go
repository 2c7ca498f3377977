// Package alloc implements the allocator variants of the simulator.
//
// # Overview
//
// Every variant owns a memory.Space and implements the Allocator interface:
//
//   - Allocate(pid, size, strategy): reserve size cells for a process
//   - Deallocate(pid): release everything the process holds
//   - Dump(): one line per cell
//   - Fragmentation(): the legacy fragmentation percentage
//
// # Implementations
//
// Fixed: equal partitions of partitionSize cells
//
//   - A request larger than a partition fails with ErrCapacityExceeded
//   - The unused tail of a partition is internal waste
//
// Unequal: partitions of declared sizes, offsets are prefix sums
//
// Dynamic: no partitions; requests are carved directly out of free runs
//
// Buddy: power-of-two blocks with split and merge (or the legacy
// non-splitting scheme via WithLegacyBuddy)
//
// Paged: whole pages, not necessarily contiguous
//
// # Usage Example
//
//	f, err := alloc.NewFixed(100, 20)
//	if err != nil {
//	    return err
//	}
//	if err := f.Allocate(1, 10, placement.FirstFit); err != nil {
//	    return err
//	}
//	fmt.Print(f.Dump())
//	_ = f.Deallocate(1)
//
// # Errors
//
// Allocate and Deallocate return wrapped sentinel errors; test them with
// errors.Is:
//
//	ErrCapacityExceeded    request larger than any unit the variant can hand out
//	ErrNoFit               nothing free fits under the chosen strategy
//	ErrUnknownProcess      deallocation for a pid with no allocations
//	ErrMisconfigured       constructor parameters rejected
//	ErrInvalidSize         size <= 0
//	ErrUnsupportedStrategy strategy outside first/best/next fit
//
// A failed call never changes allocator state.
//
// # Thread Safety
//
// Allocator instances are not thread-safe. Callers must synchronize access
// externally, for example through sim.Session.
package alloc
