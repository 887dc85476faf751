package snapshot

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
)

// FormatVersion is bumped whenever the on-disk layout changes. Readers
// fail closed on any other version.
const FormatVersion = 1

var (
	ErrUnsupportedVersion = errors.New("unsupported snapshot version")
	ErrCorrupt            = errors.New("corrupt snapshot")
)

// Header is the uncompressed-meaningful first line of a snapshot: a
// single JSON object terminated by '\n', followed by binary chunk
// records. The whole file, header line included, is one zstd stream.
type Header struct {
	Version   int   `json:"version"`
	ChunkSize int   `json:"chunk_size"`
	Chunks    int   `json:"chunks"`
	Seed      int64 `json:"seed,omitempty"`
	SavedUnix int64 `json:"saved_unix,omitempty"`
}

// ChunkRecord is one chunk's worth of payload: the chunk coordinate
// triple followed by ChunkSize³ block ids in flat (x*S+y)*S+z order,
// little-endian.
type ChunkRecord struct {
	CX, CY, CZ int
	Blocks     []uint16
}

type Snapshot struct {
	Header Header
	Chunks []ChunkRecord
}

// Write serializes a snapshot to path. The file is written to a
// temporary sibling and renamed into place, so a failed save leaves any
// previous snapshot untouched and repeated saves fully overwrite.
func Write(path string, snap Snapshot) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".save-*")
	if err != nil {
		return err
	}
	defer func() {
		if tmp != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if err := writeTo(tmp, snap); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	name := tmp.Name()
	if err := tmp.Close(); err != nil {
		tmp = nil
		_ = os.Remove(name)
		return err
	}
	tmp = nil
	if err := os.Rename(name, path); err != nil {
		_ = os.Remove(name)
		return err
	}
	return nil
}

func writeTo(f *os.File, snap Snapshot) error {
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}

	bw := bufio.NewWriterSize(enc, 256*1024)

	hdr := snap.Header
	hdr.Version = FormatVersion
	hdr.Chunks = len(snap.Chunks)
	hb, _ := json.Marshal(hdr)
	if _, err := bw.Write(hb); err != nil {
		return err
	}
	if err := bw.WriteByte('\n'); err != nil {
		return err
	}

	volume := hdr.ChunkSize * hdr.ChunkSize * hdr.ChunkSize
	rec := make([]byte, 12+2*volume)
	for _, ch := range snap.Chunks {
		if len(ch.Blocks) != volume {
			return fmt.Errorf("chunk (%d,%d,%d): blocks length %d, want %d",
				ch.CX, ch.CY, ch.CZ, len(ch.Blocks), volume)
		}
		binary.LittleEndian.PutUint32(rec[0:], uint32(int32(ch.CX)))
		binary.LittleEndian.PutUint32(rec[4:], uint32(int32(ch.CY)))
		binary.LittleEndian.PutUint32(rec[8:], uint32(int32(ch.CZ)))
		for i, b := range ch.Blocks {
			binary.LittleEndian.PutUint16(rec[12+2*i:], b)
		}
		if _, err := bw.Write(rec); err != nil {
			return err
		}
	}

	if err := bw.Flush(); err != nil {
		return err
	}
	return enc.Close()
}

// Read loads a snapshot. Missing files surface as os.IsNotExist errors;
// anything unreadable beyond that is reported as ErrCorrupt or
// ErrUnsupportedVersion and never as a partial snapshot.
func Read(path string) (Snapshot, error) {
	var snap Snapshot
	f, err := os.Open(path)
	if err != nil {
		return snap, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return snap, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	defer dec.Close()

	br := bufio.NewReaderSize(dec, 256*1024)

	line, err := br.ReadBytes('\n')
	if err != nil {
		return snap, fmt.Errorf("%w: header: %v", ErrCorrupt, err)
	}
	if err := json.Unmarshal(line, &snap.Header); err != nil {
		return snap, fmt.Errorf("%w: header: %v", ErrCorrupt, err)
	}
	if snap.Header.Version != FormatVersion {
		return Snapshot{}, fmt.Errorf("%w: got %d, want %d",
			ErrUnsupportedVersion, snap.Header.Version, FormatVersion)
	}
	if snap.Header.ChunkSize <= 0 || snap.Header.Chunks < 0 {
		return Snapshot{}, fmt.Errorf("%w: header values out of range", ErrCorrupt)
	}

	volume := snap.Header.ChunkSize * snap.Header.ChunkSize * snap.Header.ChunkSize
	rec := make([]byte, 12+2*volume)
	snap.Chunks = make([]ChunkRecord, 0, snap.Header.Chunks)
	for i := 0; i < snap.Header.Chunks; i++ {
		if _, err := io.ReadFull(br, rec); err != nil {
			return Snapshot{}, fmt.Errorf("%w: record %d: %v", ErrCorrupt, i, err)
		}
		ch := ChunkRecord{
			CX:     int(int32(binary.LittleEndian.Uint32(rec[0:]))),
			CY:     int(int32(binary.LittleEndian.Uint32(rec[4:]))),
			CZ:     int(int32(binary.LittleEndian.Uint32(rec[8:]))),
			Blocks: make([]uint16, volume),
		}
		for j := range ch.Blocks {
			ch.Blocks[j] = binary.LittleEndian.Uint16(rec[12+2*j:])
		}
		snap.Chunks = append(snap.Chunks, ch)
	}
	return snap, nil
}
