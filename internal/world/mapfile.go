package world

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"

	"github.com/hollowmere/ashfall/internal/model"
)

// Map file format (.amap): 4-byte magic and a version word in the clear,
// then a zstd stream holding the dimension header and one 3-byte record per
// cell (terrain byte, elevation int16 LE).
const (
	mapMagic   = "AMAP"
	mapVersion = 1

	// Allocation guard against corrupt dimension headers.
	maxMapCells = 1 << 26
)

// MapData is the serialized form of a grid's terrain layer.
type MapData struct {
	Width  int32
	Height int32
	MinZ   int32
	MaxZ   int32
	Cells  []Cell
}

// WriteMap writes map data to path, creating parent directories as needed.
func WriteMap(path string, md *MapData) error {
	if err := validateMapData(md); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.Write([]byte(mapMagic)); err != nil {
		return err
	}
	var ver [2]byte
	binary.LittleEndian.PutUint16(ver[:], mapVersion)
	if _, err := f.Write(ver[:]); err != nil {
		return err
	}

	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	bw := bufio.NewWriterSize(enc, 256*1024)

	var hdr [16]byte
	binary.LittleEndian.PutUint32(hdr[0:4], uint32(md.Width))
	binary.LittleEndian.PutUint32(hdr[4:8], uint32(md.Height))
	binary.LittleEndian.PutUint32(hdr[8:12], uint32(md.MinZ))
	binary.LittleEndian.PutUint32(hdr[12:16], uint32(md.MaxZ))
	if _, err := bw.Write(hdr[:]); err != nil {
		enc.Close()
		return err
	}

	var rec [3]byte
	for i, c := range md.Cells {
		if c.Elevation < -32768 || c.Elevation > 32767 {
			enc.Close()
			return fmt.Errorf("cell %d: elevation %d does not fit int16", i, c.Elevation)
		}
		rec[0] = byte(c.Terrain)
		binary.LittleEndian.PutUint16(rec[1:3], uint16(int16(c.Elevation)))
		if _, err := bw.Write(rec[:]); err != nil {
			enc.Close()
			return err
		}
	}

	if err := bw.Flush(); err != nil {
		enc.Close()
		return err
	}
	return enc.Close()
}

// ReadMap loads map data from path.
func ReadMap(path string) (*MapData, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var magic [4]byte
	if _, err := io.ReadFull(f, magic[:]); err != nil {
		return nil, fmt.Errorf("map magic: %w", err)
	}
	if string(magic[:]) != mapMagic {
		return nil, fmt.Errorf("not a map file: magic %q", magic[:])
	}
	var ver [2]byte
	if _, err := io.ReadFull(f, ver[:]); err != nil {
		return nil, fmt.Errorf("map version: %w", err)
	}
	if v := binary.LittleEndian.Uint16(ver[:]); v != mapVersion {
		return nil, fmt.Errorf("unsupported map version %d", v)
	}

	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	br := bufio.NewReaderSize(dec, 256*1024)

	var hdr [16]byte
	if _, err := io.ReadFull(br, hdr[:]); err != nil {
		return nil, fmt.Errorf("map header: %w", err)
	}
	md := &MapData{
		Width:  int32(binary.LittleEndian.Uint32(hdr[0:4])),
		Height: int32(binary.LittleEndian.Uint32(hdr[4:8])),
		MinZ:   int32(binary.LittleEndian.Uint32(hdr[8:12])),
		MaxZ:   int32(binary.LittleEndian.Uint32(hdr[12:16])),
	}
	if md.Width <= 0 || md.Height <= 0 || md.MinZ > md.MaxZ {
		return nil, fmt.Errorf("invalid map dimensions %dx%d z=[%d..%d]", md.Width, md.Height, md.MinZ, md.MaxZ)
	}
	n := int64(md.Width) * int64(md.Height)
	if n > maxMapCells {
		return nil, fmt.Errorf("map too large: %d cells (limit %d)", n, maxMapCells)
	}

	body := make([]byte, n*3)
	if _, err := io.ReadFull(br, body); err != nil {
		return nil, fmt.Errorf("map body: %w", err)
	}
	md.Cells = make([]Cell, n)
	for i := range md.Cells {
		t := model.TerrainType(body[i*3])
		if !t.Valid() {
			return nil, fmt.Errorf("cell %d: unknown terrain %d", i, body[i*3])
		}
		md.Cells[i] = Cell{
			Terrain:   t,
			Elevation: int32(int16(binary.LittleEndian.Uint16(body[i*3+1 : i*3+3]))),
		}
	}
	return md, nil
}

func validateMapData(md *MapData) error {
	if md.Width <= 0 || md.Height <= 0 {
		return fmt.Errorf("invalid map dimensions %dx%d", md.Width, md.Height)
	}
	if md.MinZ > md.MaxZ {
		return fmt.Errorf("invalid z range [%d..%d]", md.MinZ, md.MaxZ)
	}
	if want := int(md.Width) * int(md.Height); len(md.Cells) != want {
		return fmt.Errorf("cell count %d does not match %dx%d", len(md.Cells), md.Width, md.Height)
	}
	return nil
}
