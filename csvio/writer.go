package csvio

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/warp/payments-engine/engine"
)

var outputHeader = []string{"client", "available", "held", "total", "locked"}

// WriteSnapshots renders the final account snapshots as CSV, header first,
// one row per account in the order given.
func WriteSnapshots(w io.Writer, snaps []engine.Snapshot) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(outputHeader); err != nil {
		return err
	}
	for _, s := range snaps {
		row := []string{
			strconv.FormatUint(uint64(s.Client), 10),
			s.Available.String(),
			s.Held.String(),
			s.Total.String(),
			strconv.FormatBool(s.Locked),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
