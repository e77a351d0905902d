package pdf

import (
	"fmt"
	"strings"
)

// Preset is a ghostscript PDFSETTINGS quality level.
type Preset string

const (
	PresetScreen   Preset = "screen"
	PresetEbook    Preset = "ebook"
	PresetPrinter  Preset = "printer"
	PresetPrepress Preset = "prepress"
	PresetDefault  Preset = "default"
)

// compressionLevels maps the configured CompressionLevel names onto presets.
var compressionLevels = map[string]Preset{
	"high":   PresetScreen,
	"medium": PresetEbook,
	"low":    PresetPrinter,
}

// ParsePreset resolves a configured compression level into a preset.
// Level names (High, Medium, Low) and raw preset names are both accepted,
// case-insensitively.
func ParsePreset(level string) (Preset, error) {
	key := strings.ToLower(strings.TrimSpace(level))
	if p, ok := compressionLevels[key]; ok {
		return p, nil
	}

	switch p := Preset(key); p {
	case PresetScreen, PresetEbook, PresetPrinter, PresetPrepress, PresetDefault:
		return p, nil
	}

	return "", fmt.Errorf("unknown compression level %q", level)
}

func (p Preset) String() string {
	return string(p)
}
