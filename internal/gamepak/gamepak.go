// Package gamepak parses a cartridge image: the ROM, the header the BIOS
// checks at boot and the kind of backup storage the game expects.
package gamepak

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/Div9851/gba-core/internal/logger"
)

// BackupType is the save storage named by the library string in the ROM.
type BackupType int

const (
	EEPROM BackupType = iota
	SRAM
	FLASH64KB
	FLASH128KB
	None
)

func (t BackupType) String() string {
	switch t {
	case EEPROM:
		return "EEPROM"
	case SRAM:
		return "SRAM"
	case FLASH64KB:
		return "FLASH 64KB"
	case FLASH128KB:
		return "FLASH 128KB"
	}
	return "none"
}

const (
	headerSize = 0xC0
	MaxROMSize = 32 * 1024 * 1024
	SRAMSize   = 64 * 1024
)

var (
	ErrTooSmall = errors.New("image smaller than the cartridge header")
	ErrTooLarge = errors.New("image larger than 32MB")
)

type Header struct {
	Title     string
	GameCode  string
	MakerCode string
	Version   uint8
	Checksum  uint8
}

type GamePak struct {
	ROM        []byte
	SRAM       []byte
	Header     Header
	BackupType BackupType
}

func GetBackupType(data []byte) BackupType {
	switch {
	case bytes.Contains(data, []byte("EEPROM_V")):
		return EEPROM
	case bytes.Contains(data, []byte("SRAM_V")):
		return SRAM
	case bytes.Contains(data, []byte("FLASH1M_V")):
		return FLASH128KB
	case bytes.Contains(data, []byte("FLASH_V")), bytes.Contains(data, []byte("FLASH512_V")):
		return FLASH64KB
	}
	return None
}

// HeaderChecksum computes the complement check over 0xA0-0xBC.
func HeaderChecksum(data []byte) uint8 {
	var sum uint8
	for _, b := range data[0xA0:0xBD] {
		sum -= b
	}
	return sum - 0x19
}

// Parse copies the image into a new GamePak. A bad header checksum is logged
// but not an error: the BIOS would refuse to boot it, a skipped BIOS doesn't
// care.
func Parse(data []byte) (*GamePak, error) {
	if len(data) < headerSize {
		return nil, fmt.Errorf("gamepak: %d bytes: %w", len(data), ErrTooSmall)
	}
	if len(data) > MaxROMSize {
		return nil, fmt.Errorf("gamepak: %d bytes: %w", len(data), ErrTooLarge)
	}

	gamepak := &GamePak{
		ROM:  bytes.Clone(data),
		SRAM: make([]byte, SRAMSize),
		Header: Header{
			Title:     headerString(data[0xA0:0xAC]),
			GameCode:  headerString(data[0xAC:0xB0]),
			MakerCode: headerString(data[0xB0:0xB2]),
			Version:   data[0xBC],
			Checksum:  data[0xBD],
		},
		BackupType: GetBackupType(data),
	}
	if !gamepak.ValidChecksum() {
		logger.Logf("gamepak", "header checksum %02x, expected %02x", gamepak.Header.Checksum, HeaderChecksum(data))
	}
	return gamepak, nil
}

func headerString(b []byte) string {
	return strings.TrimRight(string(b), "\x00 ")
}

// ValidChecksum reports whether the header complement check matches.
func (g *GamePak) ValidChecksum() bool {
	return HeaderChecksum(g.ROM) == g.Header.Checksum
}

func (g *GamePak) String() string {
	return fmt.Sprintf("%s [%s] %dKB %s", g.Header.Title, g.Header.GameCode, len(g.ROM)/1024, g.BackupType)
}
