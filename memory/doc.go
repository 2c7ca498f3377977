// Package memory provides the address space and process table that every
// allocator variant mutates.
//
// # Overview
//
// A Space is a fixed-length sequence of cells. Each cell is either free or
// owned by a process identifier (PID). Alongside the cells, a Space keeps a
// process table mapping every PID to the half-open ranges it currently owns.
//
//	s := memory.NewSpace(16)
//	s.Mark(1, 0, 4)        // cells 0..3 owned by process 1
//	s.IsRangeFree(4, 16)   // true
//	ranges, ok := s.Release(1)
//
// # Invariants
//
//   - Every owned cell is covered by a range recorded for its owner.
//   - Ranges are half-open, Start < End, and never overlap across the table.
//
// Mark and Clear do not enforce the second invariant; allocator variants are
// responsible for only marking free ranges. The verify package checks both.
//
// # Thread Safety
//
// Space is not thread-safe. Callers must synchronize access externally.
package memory
