package geo

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gcodekit5/gcodekit5/internal/core"
)

const mmPerInch = 25.4

// FormatLength renders an mm value in the requested display system. Metric
// is plain decimal millimeters; imperial renders decimal inches.
func FormatLength(mm float64, system core.MeasurementSystem) string {
	if system == core.Inches {
		return fmt.Sprintf("%.4f\"", mm/mmPerInch)
	}
	return fmt.Sprintf("%.4fmm", mm)
}

// ParseLength parses a length string in the given display system back into
// mm. Imperial accepts decimal ("1.5"), fractional ("1/4"), and mixed
// ("1 1/2") forms, with an optional trailing quote mark. Metric accepts
// plain decimals with an optional "mm" suffix.
func ParseLength(text string, system core.MeasurementSystem) (float64, error) {
	s := strings.TrimSpace(text)
	if s == "" {
		return 0, core.New(core.KindInputValidation, "ParseLength", "empty input", nil)
	}
	if system == core.Millimeters {
		s = strings.TrimSuffix(strings.TrimSpace(s), "mm")
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return 0, core.New(core.KindInputValidation, "ParseLength", "invalid metric length "+text, err)
		}
		return v, nil
	}

	s = strings.TrimSuffix(s, "\"")
	s = strings.TrimSpace(s)
	inches, err := parseImperialInches(s)
	if err != nil {
		return 0, core.New(core.KindInputValidation, "ParseLength", "invalid imperial length "+text, err)
	}
	return inches * mmPerInch, nil
}

// parseImperialInches handles "1", "1.", "1/4", "1 1/2".
func parseImperialInches(s string) (float64, error) {
	fields := strings.Fields(s)
	switch len(fields) {
	case 1:
		return parseImperialToken(fields[0])
	case 2:
		whole, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return 0, err
		}
		frac, err := parseFraction(fields[1])
		if err != nil {
			return 0, err
		}
		if whole < 0 {
			return whole - frac, nil
		}
		return whole + frac, nil
	default:
		return 0, fmt.Errorf("unrecognized imperial length %q", s)
	}
}

func parseImperialToken(tok string) (float64, error) {
	if strings.Contains(tok, "/") {
		return parseFraction(tok)
	}
	tok = strings.TrimSuffix(tok, ".")
	return strconv.ParseFloat(tok, 64)
}

func parseFraction(tok string) (float64, error) {
	parts := strings.SplitN(tok, "/", 2)
	if len(parts) != 2 {
		return strconv.ParseFloat(tok, 64)
	}
	num, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return 0, err
	}
	den, err := strconv.ParseFloat(parts[1], 64)
	if err != nil || den == 0 {
		return 0, fmt.Errorf("invalid fraction %q", tok)
	}
	return num / den, nil
}
