package services

import (
	"encoding/binary"
	"encoding/hex"
	"io"

	"golang.org/x/crypto/blake2b"

	"tabscan/internal/exporter"
	"tabscan/internal/table"
)

// Fingerprint returns the BLAKE2b-256 content hash of a table as a hex
// string. Two tables fingerprint equal exactly when name, labels,
// schema, and cell contents match, so the value doubles as the
// dataset's ETag and as a cheap duplicate-load detector.
func Fingerprint(t *table.Table) string {
	h, _ := blake2b.New256(nil)

	writeString(h, t.Name())
	writeInt(h, len(t.Labels()))
	for _, label := range t.Labels() {
		writeString(h, label)
	}

	writeInt(h, t.NumCols())
	for _, col := range t.Columns() {
		writeString(h, col.Name())
		writeString(h, col.DType().String())
		writeInt(h, col.Len())
		for i := 0; i < col.Len(); i++ {
			c := col.Cell(i)
			if c.IsMissing() {
				h.Write([]byte{0})
				continue
			}
			h.Write([]byte{1})
			writeString(h, exporter.FormatValue(c.MustValue()))
		}
	}

	return hex.EncodeToString(h.Sum(nil))
}

// writeString length-prefixes the text so adjacent fields cannot run
// together and collide.
func writeString(w io.Writer, s string) {
	writeInt(w, len(s))
	io.WriteString(w, s)
}

func writeInt(w io.Writer, n int) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(n))
	w.Write(buf[:])
}
