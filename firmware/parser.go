package firmware

import (
	"archive/zip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path"
	"strings"
)

// Package member suffixes and names.
const (
	// InitPacketSuffix is the file suffix of the init packet member
	InitPacketSuffix = ".dat"

	// ApplicationSuffix is the file suffix of the application image member
	ApplicationSuffix = ".bin"

	// ManifestName is the nrfutil manifest member
	ManifestName = "manifest.json"

	// maxMemberSize bounds a single member read from the archive
	maxMemberSize = 16 << 20
)

type parseConfig struct {
	verifyCRC bool
}

// ParseOption configures Parse and ParseReader.
type ParseOption func(*parseConfig)

// WithCRCCheck verifies the application CRC16 against the init packet after loading.
//
// Example:
//
//	img, err := firmware.Parse("app-dfu.zip", firmware.WithCRCCheck())
func WithCRCCheck() ParseOption {
	return func(c *parseConfig) {
		c.verifyCRC = true
	}
}

// manifest is the subset of the nrfutil manifest.json this package reads.
type manifest struct {
	Manifest struct {
		Application *struct {
			BinFile string `json:"bin_file"`
			DatFile string `json:"dat_file"`
		} `json:"application"`
	} `json:"manifest"`
}

// Parse loads a firmware package from a zip file path.
//
// Example:
//
//	img, err := firmware.Parse("firmware.zip")
//	if err != nil {
//	    log.Fatal(err)
//	}
func Parse(filePath string, opts ...ParseOption) (*Image, error) {
	filePath = strings.Trim(strings.TrimSpace(filePath), `"`)
	if !strings.EqualFold(path.Ext(filePath), ".zip") {
		return nil, &ValidationError{Field: "package", Reason: "firmware file must be a zip archive"}
	}

	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	st, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	return ParseReader(f, st.Size(), opts...)
}

// ParseReader loads a firmware package from any io.ReaderAt holding a zip archive.
// This is useful for testing and for packages that are already in memory.
//
// Example:
//
//	img, err := firmware.ParseReader(bytes.NewReader(zipBytes), int64(len(zipBytes)))
func ParseReader(r io.ReaderAt, size int64, opts ...ParseOption) (*Image, error) {
	var cfg parseConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, &ValidationError{Field: "package", Reason: fmt.Sprintf("not a zip archive: %v", err)}
	}

	datFile, binFile, err := selectMembers(zr)
	if err != nil {
		return nil, err
	}

	initPacket, err := readMember(datFile)
	if err != nil {
		return nil, err
	}
	application, err := readMember(binFile)
	if err != nil {
		return nil, err
	}

	img, err := NewImage(initPacket, application)
	if err != nil {
		return nil, err
	}

	if cfg.verifyCRC {
		if err := img.VerifyCRC(); err != nil {
			return nil, err
		}
	}

	return img, nil
}

// selectMembers picks the init packet and application members, preferring the
// names listed in manifest.json.
func selectMembers(zr *zip.Reader) (dat, bin *zip.File, err error) {
	if mf := findByName(zr, ManifestName); mf != nil {
		raw, err := readMember(mf)
		if err != nil {
			return nil, nil, err
		}

		var m manifest
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, nil, &ValidationError{Field: "manifest", Reason: fmt.Sprintf("invalid JSON: %v", err)}
		}
		if app := m.Manifest.Application; app != nil {
			dat = findByName(zr, app.DatFile)
			bin = findByName(zr, app.BinFile)
		}
	}

	if dat == nil {
		dat = findBySuffix(zr, InitPacketSuffix)
	}
	if bin == nil {
		bin = findBySuffix(zr, ApplicationSuffix)
	}

	if dat == nil {
		return nil, nil, &ValidationError{Field: "package", Reason: "DAT file cannot be found"}
	}
	if bin == nil {
		return nil, nil, &ValidationError{Field: "package", Reason: "BIN file cannot be found"}
	}
	return dat, bin, nil
}

func findByName(zr *zip.Reader, name string) *zip.File {
	if name == "" {
		return nil
	}
	for _, f := range zr.File {
		if f.Name == name || path.Base(f.Name) == name {
			return f
		}
	}
	return nil
}

func findBySuffix(zr *zip.Reader, suffix string) *zip.File {
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		if strings.HasSuffix(strings.ToLower(f.Name), suffix) {
			return f
		}
	}
	return nil
}

func readMember(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", f.Name, err)
	}
	defer func() { _ = rc.Close() }()

	data, err := io.ReadAll(io.LimitReader(rc, maxMemberSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", f.Name, err)
	}
	if len(data) > maxMemberSize {
		return nil, &ValidationError{Field: f.Name, Reason: fmt.Sprintf("larger than %d bytes", maxMemberSize)}
	}
	return data, nil
}
