package firmware

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moffa90/go-legacydfu/protocol"
)

type member struct {
	name string
	data []byte
}

func buildZip(t *testing.T, members ...member) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, m := range members {
		w, err := zw.Create(m.name)
		require.NoError(t, err)
		_, err = w.Write(m.data)
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func parseBytes(data []byte, opts ...ParseOption) (*Image, error) {
	return ParseReader(bytes.NewReader(data), int64(len(data)), opts...)
}

func TestParseReader(t *testing.T) {
	initPacket := []byte{0x01, 0x02, 0x03}
	app := bytes.Repeat([]byte{0xA5}, 47)

	tests := []struct {
		name      string
		members   []member
		wantInit  []byte
		wantApp   []byte
		wantField string
	}{
		{
			name:     "suffix match",
			members:  []member{{"app.dat", initPacket}, {"app.bin", app}},
			wantInit: initPacket,
			wantApp:  app,
		},
		{
			name:     "upper case suffix",
			members:  []member{{"APP.DAT", initPacket}, {"APP.BIN", app}},
			wantInit: initPacket,
			wantApp:  app,
		},
		{
			name: "manifest selects members",
			members: []member{
				{"other.bin", []byte{0x00}},
				{"other.dat", []byte{0x00}},
				{"pinetime-app.dat", initPacket},
				{"pinetime-app.bin", app},
				{"manifest.json", []byte(`{"manifest":{"application":{"bin_file":"pinetime-app.bin","dat_file":"pinetime-app.dat"}}}`)},
			},
			wantInit: initPacket,
			wantApp:  app,
		},
		{
			name: "manifest without application falls back to suffix",
			members: []member{
				{"manifest.json", []byte(`{"manifest":{}}`)},
				{"a.dat", initPacket},
				{"a.bin", app},
			},
			wantInit: initPacket,
			wantApp:  app,
		},
		{
			name:      "missing dat",
			members:   []member{{"app.bin", app}},
			wantField: "package",
		},
		{
			name:      "missing bin",
			members:   []member{{"app.dat", initPacket}},
			wantField: "package",
		},
		{
			name:      "empty bin",
			members:   []member{{"app.dat", initPacket}, {"app.bin", nil}},
			wantField: "application image",
		},
		{
			name:      "invalid manifest",
			members:   []member{{"manifest.json", []byte("{")}, {"app.dat", initPacket}, {"app.bin", app}},
			wantField: "manifest",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := parseBytes(buildZip(t, tt.members...))
			if tt.wantField != "" {
				var verr *ValidationError
				require.ErrorAs(t, err, &verr)
				assert.Equal(t, tt.wantField, verr.Field)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantInit, img.InitPacket())
			assert.Equal(t, tt.wantApp, img.Application())
		})
	}
}

func TestParseReaderNotZip(t *testing.T) {
	_, err := parseBytes([]byte("definitely not a zip archive"))

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "package", verr.Field)
}

func TestParseReaderCRCCheck(t *testing.T) {
	app := bytes.Repeat([]byte{0x5A}, 200)
	crc := protocol.CalculateImageCRC(app)

	good := buildZip(t, member{"a.dat", buildInitPacket(1, []uint16{0x008C}, crc)}, member{"a.bin", app})
	_, err := parseBytes(good, WithCRCCheck())
	require.NoError(t, err)

	bad := buildZip(t, member{"a.dat", buildInitPacket(1, []uint16{0x008C}, crc+1)}, member{"a.bin", app})
	_, err = parseBytes(bad)
	require.NoError(t, err, "CRC is only checked when requested")

	_, err = parseBytes(bad, WithCRCCheck())
	var mismatch *CRCMismatchError
	require.ErrorAs(t, err, &mismatch)
}

func TestParse(t *testing.T) {
	dir := t.TempDir()
	data := buildZip(t, member{"app.dat", []byte{0x01}}, member{"app.bin", []byte{0x02, 0x03}})

	zipPath := filepath.Join(dir, "firmware.zip")
	require.NoError(t, os.WriteFile(zipPath, data, 0o600))

	t.Run("valid path", func(t *testing.T) {
		img, err := Parse(zipPath)
		require.NoError(t, err)
		assert.Equal(t, 2, img.Len())
	})

	t.Run("quoted path", func(t *testing.T) {
		img, err := Parse(`"` + zipPath + `"`)
		require.NoError(t, err)
		assert.Equal(t, 2, img.Len())
	})

	t.Run("not a zip name", func(t *testing.T) {
		_, err := Parse(filepath.Join(dir, "firmware.bin"))
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Parse(filepath.Join(dir, "missing.zip"))
		require.ErrorIs(t, err, os.ErrNotExist)
	})
}
