package jvmflow

import (
	"bufio"
	"fmt"
	"io"

	"github.com/mpyw/jvmflow/internal/debug"
	"github.com/mpyw/jvmflow/internal/listing"
	"github.com/mpyw/jvmflow/internal/snapshot"
)

// WriteText writes results as listings annotated with the frame before each
// instruction. Failed methods are written as comments. The output parses
// back as a listing.
func WriteText(w io.Writer, results []Result) error {
	bw := bufio.NewWriter(w)
	owner := ""
	for i, r := range results {
		if i > 0 {
			bw.WriteByte('\n')
		}
		if r.Method.Owner != owner {
			owner = r.Method.Owner
			fmt.Fprintf(bw, ".class %s\n", owner)
		}
		if r.Failed() {
			fmt.Fprintf(bw, "// %s: error: %v\n", r.Method.ID(), r.Err)
			continue
		}
		if err := listing.Print(bw, r.Method, r.Analysis.Frames); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteCBOR writes results as one CBOR array of snapshots.
func WriteCBOR(w io.Writer, results []Result) error {
	snaps := make([]*snapshot.Snapshot, len(results))
	for i, r := range results {
		if r.Failed() {
			snaps[i] = snapshot.FromError(r.Method.ID(), r.Err)
			continue
		}
		snaps[i] = snapshot.FromAnalysis(r.Analysis, r.Dead)
	}
	data, err := snapshot.MarshalAll(snaps)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// WriteDebug writes the debug dump of every result that has one.
func WriteDebug(w io.Writer, results []Result) error {
	var infos []*debug.Info
	for _, r := range results {
		if r.Debug != nil {
			infos = append(infos, r.Debug)
		}
	}
	_, err := io.WriteString(w, debug.FormatAll(infos))
	return err
}
