package trace

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// WriteTxt writes the trace into a plain text database directory:
// one file per variable under a Chain_<n> subdirectory, a header
// describing the variable and one comma-separated row per sample.
func WriteTxt(t *Trace, dir string, chain int) error {
	cdir := filepath.Join(dir, fmt.Sprintf("Chain_%d", chain))
	if err := os.MkdirAll(cdir, 0777); err != nil {
		return errors.Wrapf(err, "Could not create trace directory %s", cdir)
	}
	path := filepath.Join(cdir, t.Name()+".txt")
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "Could not create trace file %s", path)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	fmt.Fprintf(w, "# Variable: %s\n", t.Name())
	if t.Dim() == 1 {
		fmt.Fprintf(w, "# Sample shape: (%d,)\n", t.Len())
	} else {
		fmt.Fprintf(w, "# Sample shape: (%d, %d)\n", t.Len(), t.Dim())
	}
	fmt.Fprintf(w, "# Date: %s\n", time.Now().Format(time.RFC3339))
	for i := 0; i < t.Len(); i++ {
		for j, v := range t.Sample(i) {
			if j > 0 {
				w.WriteByte(',')
			}
			w.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
		}
		w.WriteByte('\n')
	}
	if err := w.Flush(); err != nil {
		return errors.Wrapf(err, "Could not write trace file %s", path)
	}
	log.Debugf("Wrote %d samples of %s to %s", t.Len(), t.Name(), path)
	return nil
}

// ReadTxt loads one trace file written by WriteTxt. The variable
// name is taken from the header when present, the file name
// otherwise; the dimension comes from the first sample row.
func ReadTxt(path string) (*Trace, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "Could not open trace file %s", path)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)
	name := strings.TrimSuffix(filepath.Base(path), ".txt")
	dim := 0
	var t *Trace
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "#") {
			if strings.HasPrefix(line, "# Variable:") {
				name = strings.TrimSpace(strings.TrimPrefix(line, "# Variable:"))
			}
			continue
		}
		fields := strings.Split(line, ",")
		row := make([]float64, 0, len(fields))
		for _, fld := range fields {
			fld = strings.TrimSpace(fld)
			if fld == "" {
				continue
			}
			v, err := strconv.ParseFloat(fld, 64)
			if err != nil {
				return nil, errors.Wrapf(err, "Could not parse trace value %q in %s", fld, path)
			}
			row = append(row, v)
		}
		if t == nil {
			dim = len(row)
			if dim == 0 {
				return nil, errors.Errorf("Empty sample row in %s", path)
			}
			t = New(name, dim)
		} else if len(row) != dim {
			return nil, errors.Errorf("Inconsistent row length %d in %s, want %d", len(row), path, dim)
		}
		t.Tally(row)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "Could not read trace file %s", path)
	}
	if t == nil {
		return nil, errors.Errorf("No samples in trace file %s", path)
	}
	return t, nil
}
