package mp4io

import (
	"github.com/tyrese/isobox/utils/bits/pio"
)

// readWeighted reads one signed byte per weight from a sub reader and
// returns the weighted sum.
func readWeighted(r *pio.Reader, weights ...float64) (v float64, err error) {
	err = r.WithSlice(len(weights), func(sub *pio.Reader) error {
		for _, w := range weights {
			b, err := sub.ReadI8()
			if err != nil {
				return err
			}
			v += float64(b) * w
		}
		return nil
	})
	return
}

func readFixed8_8(r *pio.Reader) (v float64, err error) {
	var i int16
	if i, err = r.ReadI16BE(); err != nil {
		return
	}
	v = float64(i) / 256.0
	return
}

// readMatrix reads a 3x3 row major transform. The last column is 2.30,
// the rest 16.16.
func readMatrix(r *pio.Reader) (m [9]float64, err error) {
	for i := range m {
		if i%3 == 2 {
			m[i], err = r.ReadFixed2_30()
		} else {
			m[i], err = r.ReadFixed16_16()
		}
		if err != nil {
			return
		}
	}
	return
}
