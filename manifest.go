package bimrsid

import (
	"encoding/binary"
	"fmt"
	"os"

	"github.com/carbocation/genomisc"
	"github.com/carbocation/pfx"
)

// ManifestMagicNumber contains the value required to confirm that a file is
// an Illumina BPM array manifest
const ManifestMagicNumber = "BPM"

const (
	offsetManifestMagic   = 0
	offsetManifestVersion = 3
	offsetManifestFormat  = 4

	// manifestFormatFlag is OR-ed into the format version by newer writers.
	manifestFormatFlag = 0x1000
)

// Manifest holds the header of a BPM file. Only the header is read; the
// locus entries are not needed to reconcile identifiers.
type Manifest struct {
	FilePath      string
	Version       uint8
	FormatVersion uint32
}

// ValidateManifest returns ErrManifestMagicNumber when path does not begin
// with the BPM magic number. It has no other effect.
func ValidateManifest(path string) error {
	_, err := ReadManifestHeader(path)
	return err
}

func ReadManifestHeader(path string) (*Manifest, error) {
	path = genomisc.ExpandHome(path)
	m := &Manifest{
		FilePath: path,
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, pfx.Err(err)
	}
	defer file.Close()

	buffer := make([]byte, 4)

	if _, err := file.ReadAt(buffer[:len(ManifestMagicNumber)], offsetManifestMagic); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrManifestMagicNumber, path, err)
	}
	if ManifestMagicNumber != string(buffer[:len(ManifestMagicNumber)]) {
		return nil, fmt.Errorf("%w: the header of %s at offset %d is expected to resolve to the Magic Number %s (%v when printed as a byte slice), but instead resolved to byte slice %v", ErrManifestMagicNumber, path, offsetManifestMagic, ManifestMagicNumber, []byte(ManifestMagicNumber), buffer[:len(ManifestMagicNumber)])
	}

	if _, err := file.ReadAt(buffer[:1], offsetManifestVersion); err != nil {
		return nil, pfx.Err(err)
	}
	m.Version = buffer[0]

	if _, err := file.ReadAt(buffer, offsetManifestFormat); err != nil {
		return nil, pfx.Err(err)
	}
	m.FormatVersion = binary.LittleEndian.Uint32(buffer) &^ manifestFormatFlag

	return m, nil
}
