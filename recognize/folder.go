package recognize

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"golang.org/x/exp/rand"

	"symrec/m"
	"symrec/preprocess"
)

// LoadFolder builds a labeled dataset from a directory tree of drawings:
//
//	root/00_Play/*.png
//	root/01_Stop/*.png
//	...
//
// The class is the number in the first two characters of the directory
// name. Directories without one are skipped.
func LoadFolder(root string, cfg preprocess.Config, classCount int) (*m.Dataset, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	ds := &m.Dataset{}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		class, ok := folderClass(entry.Name())
		if !ok {
			continue
		}
		if int(class) >= classCount {
			return nil, fmt.Errorf("folder %s: class %d outside [0, %d)", entry.Name(), class, classCount)
		}

		files, err := filepath.Glob(filepath.Join(root, entry.Name(), "*.png"))
		if err != nil {
			return nil, err
		}
		sort.Strings(files)
		for _, f := range files {
			img, err := LoadImage(f)
			if err != nil {
				return nil, err
			}
			ds.Add(m.NewSample(cfg.Vector(img), classCount, class))
		}
	}
	return ds, nil
}

func folderClass(name string) (m.Class, bool) {
	if len(name) < 2 {
		return m.Unlabeled, false
	}
	id, err := strconv.Atoi(name[:2])
	if err != nil || id < 0 {
		return m.Unlabeled, false
	}
	return m.Class(id), true
}

// Augment adds, for every labeled sample in ds, the given number of noisy and
// shifted variants. Sample inputs must be size×size bitmaps.
func Augment(ds *m.Dataset, size, copies, maxShift int, noise float64, rng *rand.Rand) error {
	originals := append([]*m.Sample(nil), ds.Samples...)
	for _, s := range originals {
		if !s.Labeled() {
			continue
		}
		b, err := preprocess.FromVector(s.Input, size)
		if err != nil {
			return err
		}
		for _, v := range preprocess.Augment(b, copies, maxShift, noise, rng) {
			ds.Add(m.NewSample(v.Vector(), len(s.Target), s.Actual))
		}
	}
	return nil
}
