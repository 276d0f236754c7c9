package voxtree

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	xxhash "github.com/cespare/xxhash/v2"
	"github.com/klauspost/compress/zstd"
)

// Compression selects the codec for the grid payload inside a .vxt file.
type Compression uint8

const (
	CompNone Compression = 0
	CompZlib Compression = 1
	CompZstd Compression = 2
)

const (
	fileMagic   = "VXTF"
	fileVersion = 1
)

// EncodeGridFile wraps raw grid bytes into the .vxt container:
//
//	"VXTF" | ver u8 | comp u8 | xxhash64 of raw grid | payload len u32 | payload
//
// The checksum always covers the uncompressed grid so corruption is caught
// regardless of codec.
func EncodeGridFile(grid []byte, comp Compression) ([]byte, error) {
	var payload []byte
	switch comp {
	case CompNone:
		payload = grid
	case CompZlib:
		payload = zlibCompress(grid)
	case CompZstd:
		enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return nil, err
		}
		payload = enc.EncodeAll(grid, nil)
		_ = enc.Close()
	default:
		return nil, fmt.Errorf("unsupported compression: %d", comp)
	}

	var out bytes.Buffer
	out.WriteString(fileMagic)
	_ = binary.Write(&out, binary.LittleEndian, uint8(fileVersion))
	_ = binary.Write(&out, binary.LittleEndian, uint8(comp))
	_ = binary.Write(&out, binary.LittleEndian, xxhash.Sum64(grid))
	_ = binary.Write(&out, binary.LittleEndian, uint32(len(payload)))
	_, _ = out.Write(payload)
	return out.Bytes(), nil
}

// DecodeGridFile unwraps a .vxt container and returns the raw grid bytes.
func DecodeGridFile(data []byte) ([]byte, error) {
	if len(data) < 18 || string(data[:4]) != fileMagic {
		return nil, fmt.Errorf("not a VXTF file")
	}
	if data[4] != fileVersion {
		return nil, fmt.Errorf("unsupported VXTF version: %d", data[4])
	}
	comp := Compression(data[5])
	sum := binary.LittleEndian.Uint64(data[6:])
	plen := binary.LittleEndian.Uint32(data[14:])
	if uint32(len(data)-18) != plen {
		return nil, fmt.Errorf("invalid payload length (expected %d, have %d)", plen, len(data)-18)
	}
	payload := data[18:]

	var grid []byte
	switch comp {
	case CompNone:
		grid = payload
	case CompZlib:
		var err error
		grid, err = zlibDecompress(payload)
		if err != nil {
			return nil, err
		}
	case CompZstd:
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, err
		}
		grid, err = dec.DecodeAll(payload, nil)
		dec.Close()
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported compression: %d", comp)
	}

	if got := xxhash.Sum64(grid); got != sum {
		return nil, fmt.Errorf("grid checksum mismatch: %016x != %016x", got, sum)
	}
	return grid, nil
}

// SaveGridFile writes raw grid bytes to path as a .vxt container.
func SaveGridFile(grid []byte, path string, comp Compression) error {
	data, err := EncodeGridFile(grid, comp)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// LoadGridFromBytes opens a grid from .vxt container bytes.
func LoadGridFromBytes(data []byte) (*Grid, error) {
	grid, err := DecodeGridFile(data)
	if err != nil {
		return nil, err
	}
	return NewGrid(grid)
}

// LoadGridFile opens a grid from a .vxt file on disk.
func LoadGridFile(path string) (*Grid, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return LoadGridFromBytes(data)
}

func zlibCompress(b []byte) []byte {
	var buf bytes.Buffer
	zw, _ := zlib.NewWriterLevel(&buf, zlib.BestCompression)
	_, _ = zw.Write(b)
	_ = zw.Close()
	return buf.Bytes()
}

func zlibDecompress(b []byte) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	return io.ReadAll(zr)
}
