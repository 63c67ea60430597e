package usecase_test

import (
	"archive/zip"
	"bytes"
	"io"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/hy-sato/picket/pkg/domain/model"
	"github.com/hy-sato/picket/pkg/usecase"
)

func TestBuildArchive(t *testing.T) {
	sets := []model.ImageSet{
		{[]byte("first-1"), []byte("first-2"), []byte("first-3")},
		{[]byte("second-1"), []byte("second-2")},
	}
	ts := "2026_08_30_12_00_00"

	blob, err := usecase.BuildArchive(sets, ts)
	gt.NoError(t, err)

	zr := gt.R1(zip.NewReader(bytes.NewReader(blob), int64(len(blob)))).NoError(t)

	// one per-set entry and one combined entry per image
	gt.Array(t, zr.File).Length(10)

	contents := map[string][]byte{}
	for _, f := range zr.File {
		gt.Value(t, f.Method).Equal(zip.Store)
		rc := gt.R1(f.Open()).NoError(t)
		data := gt.R1(io.ReadAll(rc)).NoError(t)
		rc.Close()
		contents[f.Name] = data
	}

	wantEntries := map[string][]byte{
		"01/2026_08_30_12_00_00_01_1.jpeg":  []byte("first-1"),
		"01/2026_08_30_12_00_00_01_2.jpeg":  []byte("first-2"),
		"01/2026_08_30_12_00_00_01_3.jpeg":  []byte("first-3"),
		"02/2026_08_30_12_00_00_02_1.jpeg":  []byte("second-1"),
		"02/2026_08_30_12_00_00_02_2.jpeg":  []byte("second-2"),
		"all/2026_08_30_12_00_00_01_1.jpeg": []byte("first-1"),
		"all/2026_08_30_12_00_00_01_2.jpeg": []byte("first-2"),
		"all/2026_08_30_12_00_00_01_3.jpeg": []byte("first-3"),
		"all/2026_08_30_12_00_00_02_1.jpeg": []byte("second-1"),
		"all/2026_08_30_12_00_00_02_2.jpeg": []byte("second-2"),
	}
	for name, want := range wantEntries {
		got, ok := contents[name]
		gt.True(t, ok)
		gt.Value(t, string(got)).Equal(string(want))
	}
}

func TestBuildArchiveEmpty(t *testing.T) {
	t.Run("no sets", func(t *testing.T) {
		blob, err := usecase.BuildArchive(nil, "ts")
		gt.NoError(t, err)

		zr := gt.R1(zip.NewReader(bytes.NewReader(blob), int64(len(blob)))).NoError(t)
		gt.Array(t, zr.File).Length(0)
	})

	t.Run("empty set still advances the folder index", func(t *testing.T) {
		sets := []model.ImageSet{{}, {[]byte("x")}}
		blob, err := usecase.BuildArchive(sets, "ts")
		gt.NoError(t, err)

		zr := gt.R1(zip.NewReader(bytes.NewReader(blob), int64(len(blob)))).NoError(t)
		gt.Array(t, zr.File).Length(2)
		gt.Value(t, zr.File[0].Name).Equal("02/ts_02_1.jpeg")
		gt.Value(t, zr.File[1].Name).Equal("all/ts_02_1.jpeg")
	})
}
