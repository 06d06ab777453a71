package vm

// disk.go is the disk store: a track/cylinder/sector array of 8-character words, with no head
// motion simulation. Grounded in the teacher's flat PhysicalMemory array plus bounds checking, and
// in spec.md section 4.4.
//
// Sectors are stored as plain strings, not the fixed-width Word type: spec.md requires that a
// write whose length isn't 8 characters logs a warning but still proceeds, which only makes sense
// if the storage can actually hold a non-8-character value.

import (
	"errors"
	"fmt"
)

// Disk geometry.
const (
	Tracks        = 10
	Cylinders     = 10
	SectorsPerCyl = 100
	SectorLen     = 8
)

// ErrDisk is the sentinel wrapped by disk errors.
var ErrDisk = errors.New("disk error")

// Head is the disk's current head position. It is updated only by an explicit seek; the core
// defines no seek instruction, so it never moves on its own -- it exists for the "disk" console
// command to report, per spec.md section 3.
type Head struct {
	Track, Cylinder, Sector int
}

// Disk is the 4-D sector store: track x cylinder x sector, each cell an 8-character string.
type Disk struct {
	sectors [Tracks][Cylinders][SectorsPerCyl]string
	head    Head

	log Logger
}

// NewDisk creates a disk and fills every sector with "00000000".
func NewDisk(log Logger) *Disk {
	d := &Disk{log: log}
	d.Init()

	return d
}

// Init fills every sector with eight zero characters.
func (d *Disk) Init() {
	for t := range d.sectors {
		for c := range d.sectors[t] {
			for s := range d.sectors[t][c] {
				d.sectors[t][c][s] = "00000000"
			}
		}
	}

	d.head = Head{}
}

func validCoord(track, cyl, sector int) bool {
	return track >= 0 && track < Tracks &&
		cyl >= 0 && cyl < Cylinders &&
		sector >= 0 && sector < SectorsPerCyl
}

// ReadSector reads one sector. On an invalid coordinate it logs an error and returns the literal
// string "ERROR" rather than the requested data.
func (d *Disk) ReadSector(track, cyl, sector int) string {
	if !validCoord(track, cyl, sector) {
		d.log.Error("disk: invalid sector coordinate", "track", track, "cyl", cyl, "sector", sector)
		return "ERROR"
	}

	return d.sectors[track][cyl][sector]
}

// WriteSector writes one sector. On an invalid coordinate it logs an error and the write is
// skipped. A data string whose length is not 8 characters logs a warning but is written anyway, per
// spec.md section 4.4.
func (d *Disk) WriteSector(track, cyl, sector int, data string) error {
	if !validCoord(track, cyl, sector) {
		d.log.Error("disk: invalid sector coordinate", "track", track, "cyl", cyl, "sector", sector)
		return fmt.Errorf("%w: bad coordinate (%d,%d,%d)", ErrDisk, track, cyl, sector)
	}

	if len(data) != SectorLen {
		d.log.Warn("disk: sector data is not 8 characters", "len", len(data), "data", data)
	}

	d.sectors[track][cyl][sector] = data

	return nil
}

// HeadPosition returns the disk's current head position.
func (d *Disk) HeadPosition() Head {
	return d.head
}

// Geometry returns the disk's fixed dimensions, for the "disk" console command.
func (d *Disk) Geometry() (tracks, cylinders, sectorsPerCyl int) {
	return Tracks, Cylinders, SectorsPerCyl
}
