package m

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Dataset files hold one sample per line:
//
//	classIndex;v0;v1;...;vN-1
//
// Values use a dot decimal separator regardless of locale. Unlabeled samples
// are written with classIndex == classCount.

// Save writes ds to path, replacing any existing file.
func (ds *Dataset) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := ds.Write(f); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}

func (ds *Dataset) Write(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for _, s := range ds.Samples {
		class := int(s.Actual)
		if !s.Labeled() {
			class = len(s.Target)
		}
		bw.WriteString(strconv.Itoa(class))
		for _, v := range s.Input {
			bw.WriteByte(';')
			bw.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// LoadDataset reads a dataset file. classCount sizes the one-hot targets.
func LoadDataset(path string, classCount int) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	ds, err := ReadDataset(f, classCount)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return ds, nil
}

func ReadDataset(r io.Reader, classCount int) (*Dataset, error) {
	ds := &Dataset{}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)

	var lineNum int
	for scanner.Scan() {
		lineNum++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		splits := strings.Split(text, ";")
		if len(splits) < 2 {
			return ds, errInvalidLine{lineNum: lineNum, reason: "no input values"}
		}

		classIndex, err := strconv.Atoi(splits[0])
		if err != nil || classIndex < 0 || classIndex > classCount {
			return ds, errInvalidLine{lineNum: lineNum, reason: fmt.Sprintf("class index %q outside [0, %d]", splits[0], classCount)}
		}
		class := Class(classIndex)
		if classIndex == classCount {
			class = Unlabeled
		}

		input := make([]float64, len(splits)-1)
		for i, split := range splits[1:] {
			input[i], err = strconv.ParseFloat(split, 64)
			if err != nil {
				return ds, errInvalidLine{lineNum: lineNum, reason: fmt.Sprintf("value %d: %v", i, err)}
			}
		}
		ds.Add(NewSample(input, classCount, class))
	}
	return ds, scanner.Err()
}

type errInvalidLine struct {
	lineNum int
	reason  string
}

func (e errInvalidLine) Error() string {
	return fmt.Sprintf("at line %d, %s", e.lineNum, e.reason)
}
