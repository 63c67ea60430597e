package usecase

import (
	"archive/zip"
	"bytes"
	"fmt"
	"path"

	"github.com/hy-sato/picket/pkg/domain/model"
	"github.com/m-mizutani/goerr/v2"
)

// BuildArchive packs the resolved image sets into one ZIP blob. Entries use
// the Store method: the images are already compressed and re-compressing
// them only burns CPU.
//
// Every image is written twice: under its set's zero-padded folder ("01",
// "02", ...) and under the shared "all" folder. Both entries carry the
// display timestamp, the set index and the 1-based image position in their
// name, so the two views stay collision-free and sort stably.
func BuildArchive(sets []model.ImageSet, timestamp string) ([]byte, error) {
	buf := &bytes.Buffer{}
	zw := zip.NewWriter(buf)

	for i, set := range sets {
		folder := fmt.Sprintf("%02d", i+1)
		for j, raw := range set {
			name := fmt.Sprintf("%s_%s_%d.jpeg", timestamp, folder, j+1)
			for _, entry := range []string{path.Join(folder, name), path.Join("all", name)} {
				w, err := zw.CreateHeader(&zip.FileHeader{
					Name:   entry,
					Method: zip.Store,
				})
				if err != nil {
					return nil, goerr.Wrap(err, "failed to create archive entry",
						goerr.V("entry", entry))
				}
				if _, err := w.Write(raw); err != nil {
					return nil, goerr.Wrap(err, "failed to write archive entry",
						goerr.V("entry", entry))
				}
			}
		}
	}

	if err := zw.Close(); err != nil {
		return nil, goerr.Wrap(err, "failed to finalize archive")
	}
	return buf.Bytes(), nil
}
