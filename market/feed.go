package market

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ulikunitz/xz"
)

// Accepted datetime layouts, tried in order.
var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseTime parses a bar timestamp in any of the accepted layouts.
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: bad datetime %q", ErrInvalidBar, s)
}

// ReadBars parses CSV rows of the form
//
//	datetime,open,high,low,close,volume[,symbol]
//
// into bars. A single header row is allowed. Short or empty rows are an
// error: a malformed feed must fail before simulation, not during it.
func ReadBars(r io.Reader, symbol string) ([]Bar, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	var bars []Bar
	sawFirst := false

	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read bars: %w", err)
		}
		if len(row) == 0 {
			continue
		}

		if !sawFirst {
			sawFirst = true
			if strings.EqualFold(strings.TrimSpace(row[0]), "datetime") ||
				strings.EqualFold(strings.TrimSpace(row[0]), "time") {
				continue
			}
		}

		b, err := parseBarRow(row, symbol)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", len(bars)+1, err)
		}
		bars = append(bars, b)
	}
	return bars, nil
}

func parseBarRow(row []string, symbol string) (Bar, error) {
	if len(row) < 6 {
		return Bar{}, fmt.Errorf("%w: want 6 fields (datetime,open,high,low,close,volume), got %d", ErrInvalidBar, len(row))
	}

	t, err := ParseTime(row[0])
	if err != nil {
		return Bar{}, err
	}

	vals := make([]float64, 5)
	names := [5]string{"open", "high", "low", "close", "volume"}
	for i := 0; i < 5; i++ {
		v, err := strconv.ParseFloat(strings.TrimSpace(row[i+1]), 64)
		if err != nil {
			return Bar{}, fmt.Errorf("%w: bad %s %q", ErrInvalidBar, names[i], row[i+1])
		}
		vals[i] = v
	}

	sym := symbol
	if len(row) > 6 && strings.TrimSpace(row[6]) != "" {
		sym = strings.TrimSpace(row[6])
	}

	return Bar{
		Time:   t,
		Open:   vals[0],
		High:   vals[1],
		Low:    vals[2],
		Close:  vals[3],
		Volume: vals[4],
		Symbol: sym,
	}, nil
}

// LoadFile reads a bar CSV from disk. Files ending in .xz are decompressed
// on the fly. The returned series is validated; a bad file never reaches
// the engine.
func LoadFile(path, symbol string) ([]Bar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("load bars: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".xz") {
		xr, err := xz.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("load bars %s: %w", path, err)
		}
		r = xr
	}

	bars, err := ReadBars(r, symbol)
	if err != nil {
		return nil, fmt.Errorf("load bars %s: %w", path, err)
	}
	if err := ValidateSeries(bars); err != nil {
		return nil, fmt.Errorf("load bars %s: %w", path, err)
	}
	return bars, nil
}
