/*
Package vm implements a pedagogical von Neumann virtual machine.

The goal is to mirror, in idiomatic Go, a machine you would find described in an introductory
systems course: a fetch-decode-execute CPU, a word-addressed main memory with base/limit
protection between a privileged OS region and a user region, a small static interrupt vector, a
bus-arbitrated DMA controller, and a track/cylinder/sector disk store.

# Words #

The machine's only datum is a Word: eight ASCII digits encoding a sign and a seven-digit magnitude,
or one of a handful of reserved sentinel strings used to mark faults and uninitialized cells. A word
is never a native integer at rest -- it is decoded through ToInt/ToWord at the point of use, the way
the original machine's memory dumps and disk sectors are always printable text.

# CPU #

The CPU is extraordinarily simple. It has:

  - an accumulator, a memory address/data register pair, and an instruction register
  - a base and limit register pair governing logical-to-physical translation
  - an index register and a stack pointer
  - a program counter mirrored into the processor status word

# Memory and interrupts #

The memory unit mediates every access through translate, and raises INT_INVALID_ADDRESS on any
failure rather than panicking. The interrupt controller holds a fixed nine-slot vector; handlers run
synchronously from HandlePending, called once per CPU cycle.

# DMA #

The DMA controller moves words between memory and disk on a background goroutine, serialized by a
bus mutex and joined via a WaitGroup rather than left detached.
*/
package vm
