package cam

import (
	"strings"
	"testing"
)

func TestSetWCSOffsetAxisAwareness(t *testing.T) {
	three := NewProgram("Grbl", 3)
	three.SetWCSOffset(false, 54, 10, 20, -5)
	if !strings.Contains(three.String(), "G10 L2 P1 X10.000 Y20.000 Z-5.000") {
		t.Errorf("3-axis G10 line wrong: %q", three.String())
	}

	two := NewProgram("Grbl", 2)
	two.SetWCSOffset(false, 54, 10, 20, -5)
	if strings.Contains(two.String(), "Z") {
		t.Errorf("2-axis machines get no Z word on G10: %q", two.String())
	}

	l20 := NewProgram("Grbl", 3)
	l20.SetWCSOffset(true, 59, 0, 0, 0)
	if !strings.Contains(l20.String(), "G10 L20 P6") {
		t.Errorf("L20/P slot mapping wrong: %q", l20.String())
	}
}

func TestProgramCommentStyle(t *testing.T) {
	p := NewProgram("Grbl", 3)
	p.Comment("hello")
	if p.String() != "; hello\n" {
		t.Errorf("comment = %q", p.String())
	}
}

func TestHeaderSpindleAndSafeZ(t *testing.T) {
	p := NewProgram("Grbl", 3)
	p.Header("Test", testParams())
	out := p.String()
	if !strings.Contains(out, "M3 S12000") {
		t.Errorf("spindle start missing: %q", out)
	}
	if !strings.Contains(out, "G0 Z5.000") {
		t.Errorf("initial safe Z retract missing: %q", out)
	}
}

func TestFooterSubstitutesSafeZ(t *testing.T) {
	p := NewProgram("Grbl", 3)
	p.Footer(7.5)
	if !strings.Contains(p.String(), "G0 Z7.500") {
		t.Errorf("[SafeZ] placeholder not substituted: %q", p.String())
	}
	if strings.Contains(p.String(), "[SafeZ]") {
		t.Error("placeholder left in output")
	}
}
