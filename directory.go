package icopack

import (
	"encoding/binary"
	"math"
	"strconv"
	"strings"
)

const (
	iconDirSize      = 6
	iconDirEntrySize = 16

	// MaxIconSize is the largest edge length an icon directory entry can describe.
	MaxIconSize = 256
)

// Resource types of the icon directory header.
const (
	TypeIcon   uint16 = 1
	TypeCursor uint16 = 2
)

// IconDir is the header opening every icon container.
type IconDir struct {
	Reserved uint16 // must be 0
	Type     uint16
	Count    uint16
}

func (d IconDir) put(b []byte) {
	binary.LittleEndian.PutUint16(b[0:], d.Reserved)
	binary.LittleEndian.PutUint16(b[2:], d.Type)
	binary.LittleEndian.PutUint16(b[4:], d.Count)
}

// IconDirEntry describes one image of the container.
type IconDirEntry struct {
	Width       uint8 // 0 means 256
	Height      uint8 // 0 means 256
	ColorCount  uint8 // 0 when the image is not palette indexed
	Reserved    uint8
	Planes      uint16
	BitCount    uint16
	BytesInRes  uint32
	ImageOffset uint32
}

func (e IconDirEntry) put(b []byte) {
	b[0] = e.Width
	b[1] = e.Height
	b[2] = e.ColorCount
	b[3] = e.Reserved
	binary.LittleEndian.PutUint16(b[4:], e.Planes)
	binary.LittleEndian.PutUint16(b[6:], e.BitCount)
	binary.LittleEndian.PutUint32(b[8:], e.BytesInRes)
	binary.LittleEndian.PutUint32(b[12:], e.ImageOffset)
}

// Dimensions returns the pixel size described by the entry.
func (e IconDirEntry) Dimensions() (int, int) {
	w, h := int(e.Width), int(e.Height)
	if w == 0 {
		w = MaxIconSize
	}
	if h == 0 {
		h = MaxIconSize
	}
	return w, h
}

// dirByte stores an edge length as a single byte, 256 wrapping to 0.
func dirByte(size int) uint8 {
	if size >= MaxIconSize {
		return 0
	}
	return uint8(size)
}

// ValidateSizes checks that the list is non-empty, fits in one directory and
// that every size is in the [1, 256] range.
func ValidateSizes(sizes []int) error {
	if len(sizes) == 0 {
		return invalidArgf("no icon sizes requested")
	}
	if len(sizes) > math.MaxUint16 {
		return invalidArgf("too many icon sizes: %d", len(sizes))
	}
	for _, s := range sizes {
		if s < 1 || s > MaxIconSize {
			return invalidArgf("icon size %d out of range [1, %d]", s, MaxIconSize)
		}
	}
	return nil
}

// BuildEntries computes the directory entries for the requested sizes.
// payloadSizes holds the byte length of each payload block, in the same order.
// The first payload starts right after the header and all entries, every
// following one right after its predecessor.
func BuildEntries(sizes, payloadSizes []int) ([]IconDirEntry, error) {
	if err := ValidateSizes(sizes); err != nil {
		return nil, err
	}
	if len(sizes) != len(payloadSizes) {
		return nil, invalidArgf("got %d payload sizes for %d icon sizes", len(payloadSizes), len(sizes))
	}

	entries := make([]IconDirEntry, len(sizes))
	offset := uint64(iconDirSize + iconDirEntrySize*len(sizes))
	for i, s := range sizes {
		n := payloadSizes[i]
		if n <= 0 {
			return nil, invalidArgf("payload size %d of entry %d must be positive", n, i)
		}
		if offset+uint64(n) > math.MaxUint32 {
			return nil, invalidArgf("icon container exceeds the 4GiB offset range")
		}
		entries[i] = IconDirEntry{
			Width:       dirByte(s),
			Height:      dirByte(s),
			Planes:      1,
			BitCount:    bitsPerPixel,
			BytesInRes:  uint32(n),
			ImageOffset: uint32(offset),
		}
		offset += uint64(n)
	}
	return entries, nil
}

// ParseSizes parses a comma or space separated list of icon sizes, like "16,32,48".
// Empty items, as in "16,,32", are rejected.
func ParseSizes(s string) ([]int, error) {
	var sizes []int
	if strings.TrimSpace(s) != "" {
		for i, item := range strings.Split(s, ",") {
			fields := strings.Fields(item)
			if len(fields) == 0 {
				return nil, invalidArgf("empty icon size at position %d", i+1)
			}
			for _, f := range fields {
				n, err := strconv.Atoi(f)
				if err != nil {
					if _, ferr := strconv.ParseFloat(f, 64); ferr == nil {
						return nil, invalidArgf("icon size %q is not an integer", f)
					}
					return nil, invalidArgf("malformed icon size %q", f)
				}
				sizes = append(sizes, n)
			}
		}
	}
	if err := ValidateSizes(sizes); err != nil {
		return nil, err
	}
	return sizes, nil
}
